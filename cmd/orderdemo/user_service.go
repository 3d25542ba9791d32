package main

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/totegamma/orderdemo"
	"github.com/totegamma/orderdemo/internal/config"
	"github.com/totegamma/orderdemo/internal/domain"
	"github.com/totegamma/orderdemo/internal/infra/database"
	"github.com/totegamma/orderdemo/internal/infra/repository"
	"github.com/totegamma/orderdemo/internal/present/rest"
	"github.com/totegamma/orderdemo/internal/service"
	"github.com/totegamma/orderdemo/internal/usecase"
)

var userStore string

var userServiceCmd = &cobra.Command{
	Use:   "user-service",
	Short: "Serve the user store over HTTP",
	RunE:  runUserService,
}

func init() {
	rootCmd.AddCommand(userServiceCmd)
	userServiceCmd.Flags().StringVar(&userStore, "store", "", "user store backend (memory, postgres, redis)")
}

func runUserService(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(cmd)
	defer cancel()

	a, err := setup(ctx, orderdemo.UserServiceName, func(c *config.Config) error {
		if userStore != "" {
			c.UserService.Store = userStore
		}
		return nil
	})
	if err != nil {
		return err
	}

	repo, events, err := newUserRepository(ctx, a.conf.UserService)
	if err != nil {
		return err
	}

	users := usecase.NewUserUsecase(repo, events)
	if err := users.Seed(ctx); err != nil {
		return errors.Wrap(err, "failed to seed users")
	}

	e := a.newEcho(orderdemo.UserServiceName)
	rest.NewUserHandler(users).RegisterRoutes(e)

	return a.serve(ctx, e, a.conf.UserService.Listen)
}

// newUserRepository opens the configured store. The redis store also
// publishes user events on the same connection.
func newUserRepository(ctx context.Context, conf config.UserService) (usecase.UserRepository, usecase.UserEventPublisher, error) {
	slog.Info("opening user store", slog.String("store", conf.Store), slog.String("module", "main"))

	switch conf.Store {
	case domain.UserStorePostgres:
		db, err := database.NewPostgres(conf.PostgresDsn)
		if err != nil {
			return nil, nil, errors.Wrap(err, "failed to connect database")
		}
		if err := database.MigratePostgres(db); err != nil {
			return nil, nil, errors.Wrap(err, "failed to migrate database")
		}
		return repository.NewPostgresUserRepository(db), nil, nil
	case domain.UserStoreRedis:
		rdb := database.NewRedis(conf.RedisAddr, "", conf.RedisDB)
		if err := database.PingRedis(ctx, rdb); err != nil {
			return nil, nil, err
		}
		return repository.NewRedisUserRepository(rdb), service.NewSignalService(rdb), nil
	default:
		return repository.NewMemoryUserRepository(), nil, nil
	}
}

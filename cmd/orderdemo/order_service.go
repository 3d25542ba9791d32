package main

import (
	"github.com/spf13/cobra"

	"github.com/totegamma/orderdemo/internal/config"
	"github.com/totegamma/orderdemo/internal/infra/gateway"
	"github.com/totegamma/orderdemo/internal/infra/repository"
	"github.com/totegamma/orderdemo/internal/present/rest"
	"github.com/totegamma/orderdemo/internal/usecase"
)

const orderServiceName = "order-service"

var orderProfile string

var orderServiceCmd = &cobra.Command{
	Use:   "order-service",
	Short: "Serve orders enriched with users from the bound user client",
	Long: `Serve orders enriched with users from the bound user client.

The user client is chosen once at startup by --profile, the
ORDERDEMO_PROFILE environment variable or orderService.userClient.type:
  stub   in-process table, no network
  rest   HTTP calls to the user-service with timeouts and retries
Starting without any of them is an error.`,
	RunE: runOrderService,
}

func init() {
	rootCmd.AddCommand(orderServiceCmd)
	orderServiceCmd.Flags().StringVarP(&orderProfile, "profile", "p", "", "user client to bind (stub, rest)")
}

func runOrderService(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(cmd)
	defer cancel()

	a, err := setup(ctx, orderServiceName, func(c *config.Config) error {
		if orderProfile != "" {
			c.OrderService.UserClient.Type = orderProfile
		}
		return c.OrderService.UserClient.Validate()
	})
	if err != nil {
		return err
	}

	users, err := gateway.NewUserClient(a.conf.OrderService.UserClient, a.metrics)
	if err != nil {
		return err
	}

	orders := usecase.NewOrderUsecase(repository.NewSeededOrderRepository(), users)

	e := a.newEcho(orderServiceName)
	rest.NewOrderHandler(orders).RegisterRoutes(e)

	return a.serve(ctx, e, a.conf.OrderService.Listen)
}

package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"github.com/totegamma/orderdemo"
	"github.com/totegamma/orderdemo/internal/domain"
	"github.com/totegamma/orderdemo/internal/logging"
)

// UserUsecase is the user store served to remote clients.
type UserUsecase struct {
	repo   UserRepository
	events UserEventPublisher
}

// NewUserUsecase builds the usecase. events may be nil.
func NewUserUsecase(repo UserRepository, events UserEventPublisher) *UserUsecase {
	return &UserUsecase{repo: repo, events: events}
}

func (uc *UserUsecase) Get(ctx context.Context, id int64) (orderdemo.User, error) {
	user, err := uc.repo.Get(ctx, id)
	if err != nil {
		return orderdemo.User{}, err
	}
	return user, nil
}

func (uc *UserUsecase) List(ctx context.Context) (map[int64]orderdemo.User, error) {
	start := time.Now()

	users, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	logging.Performance(ctx, "fetch_all_users", time.Since(start), slog.Int("user_count", len(users)))
	return users, nil
}

// Create is an upsert: a user already stored under the same id is
// replaced. The email must not belong to another user. A missing status
// is ACTIVE.
func (uc *UserUsecase) Create(ctx context.Context, user orderdemo.User) (orderdemo.User, error) {
	if user.Status == "" {
		user.Status = orderdemo.UserStatusActive
	} else {
		status, err := domain.ParseUserStatus(user.Status)
		if err != nil {
			return orderdemo.User{}, err
		}
		user.Status = status
	}

	err := uc.repo.Put(ctx, user)
	if err != nil {
		uc.warnDuplicate(ctx, err, user.Email)
		return orderdemo.User{}, err
	}

	logging.Event(
		ctx, domain.UserCreated,
		slog.Int64("user_id", user.ID),
		slog.String("user_email", user.Email),
		slog.String("user_name", user.Name),
		slog.String("user_status", user.Status),
	)
	uc.publish(ctx, domain.UserCreated, user.ID, &user)
	return user, nil
}

// Update replaces name, email and phone of the user stored under id. The
// id of the payload is ignored in favour of id and the status is kept.
func (uc *UserUsecase) Update(ctx context.Context, id int64, user orderdemo.User) (orderdemo.User, error) {
	updated, err := uc.repo.Update(ctx, id, func(current *orderdemo.User) {
		current.Name = user.Name
		current.Email = user.Email
		current.Phone = user.Phone
	})
	if err != nil {
		uc.warnDuplicate(ctx, err, user.Email)
		return orderdemo.User{}, err
	}

	logging.Event(
		ctx, domain.UserUpdated,
		slog.Int64("user_id", updated.ID),
		slog.String("user_email", updated.Email),
	)
	uc.publish(ctx, domain.UserUpdated, updated.ID, &updated)
	return updated, nil
}

// ChangeStatus sets the status of the user stored under id.
func (uc *UserUsecase) ChangeStatus(ctx context.Context, id int64, status string) (orderdemo.User, error) {
	status, err := domain.ParseUserStatus(status)
	if err != nil {
		return orderdemo.User{}, err
	}

	var previous string
	updated, err := uc.repo.Update(ctx, id, func(current *orderdemo.User) {
		previous = current.Status
		current.Status = status
	})
	if err != nil {
		return orderdemo.User{}, err
	}

	logging.Event(
		ctx, domain.UserStatusChanged,
		slog.Int64("user_id", id),
		slog.String("old_status", previous),
		slog.String("new_status", status),
	)
	uc.publish(ctx, domain.UserStatusChanged, id, &updated)
	return updated, nil
}

// SimulateError fails on purpose so the error path of the log pipeline
// can be checked end to end.
func (uc *UserUsecase) SimulateError(ctx context.Context) error {
	slog.WarnContext(ctx, "simulating an error", slog.String("module", "user"))

	err := errors.New("simulated error for log pipeline testing")
	logging.Error(
		ctx, "simulated error occurred", err,
		slog.String("error_kind", "simulated"),
		slog.Bool("test_purpose", true),
	)
	return err
}

func (uc *UserUsecase) warnDuplicate(ctx context.Context, err error, email string) {
	if errors.Is(err, domain.ErrDuplicateEmail) {
		slog.WarnContext(ctx, "email already exists", slog.String("user_email", email), slog.String("module", "user"))
	}
}

// Delete is idempotent.
func (uc *UserUsecase) Delete(ctx context.Context, id int64) error {
	err := uc.repo.Delete(ctx, id)
	if err != nil {
		return err
	}

	logging.Event(ctx, domain.UserDeleted, slog.Int64("user_id", id))
	uc.publish(ctx, domain.UserDeleted, id, nil)
	return nil
}

// publish never fails the mutation that triggered it.
func (uc *UserUsecase) publish(ctx context.Context, kind string, id int64, user *orderdemo.User) {
	if uc.events == nil {
		return
	}
	var snapshot *orderdemo.User
	if user != nil {
		u := *user
		snapshot = &u
	}
	err := uc.events.PublishUserEvent(ctx, domain.UserEvent{
		Type:      kind,
		UserID:    id,
		User:      snapshot,
		Timestamp: time.Now(),
	})
	if err != nil {
		slog.WarnContext(
			ctx, "failed to publish user event",
			slog.String("type", kind),
			slog.Int64("user_id", id),
			slog.String("error", err.Error()),
			slog.String("module", "user"),
		)
	}
}

// SeedUsers are loaded into an empty user store on startup.
func SeedUsers() []orderdemo.User {
	return []orderdemo.User{
		{ID: 1, Name: "Kim Cheolsu", Email: "kim@example.com", Phone: "010-1234-5678", Status: orderdemo.UserStatusActive},
		{ID: 2, Name: "Lee Younghee", Email: "lee@example.com", Phone: "010-2345-6789", Status: orderdemo.UserStatusActive},
		{ID: 3, Name: "Park Minsu", Email: "park@example.com", Phone: "010-3456-7890", Status: orderdemo.UserStatusActive},
	}
}

// Seed writes SeedUsers into the store when it holds no users yet.
func (uc *UserUsecase) Seed(ctx context.Context) error {
	users, err := uc.repo.List(ctx)
	if err != nil {
		return err
	}
	if len(users) > 0 {
		return nil
	}
	for _, u := range SeedUsers() {
		if err := uc.repo.Put(ctx, u); err != nil {
			return err
		}
	}
	slog.InfoContext(ctx, "seeded user store", slog.Int("user_count", len(SeedUsers())), slog.String("module", "user"))
	return nil
}


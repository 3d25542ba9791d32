package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/totegamma/orderdemo"
	"github.com/totegamma/orderdemo/internal/domain"
)

type mockUserRepo struct {
	users map[int64]orderdemo.User
	puts  int
}

func (m *mockUserRepo) Get(ctx context.Context, id int64) (orderdemo.User, error) {
	u, ok := m.users[id]
	if !ok {
		return orderdemo.User{}, domain.NotFoundError{Resource: "user", ID: id}
	}
	return u, nil
}

func (m *mockUserRepo) List(ctx context.Context) (map[int64]orderdemo.User, error) {
	result := make(map[int64]orderdemo.User, len(m.users))
	for k, v := range m.users {
		result[k] = v
	}
	return result, nil
}

func (m *mockUserRepo) Put(ctx context.Context, u orderdemo.User) error {
	if domain.EmailTaken(m.users, u.ID, u.Email) {
		return domain.DuplicateEmailError{Email: u.Email}
	}
	m.puts++
	m.users[u.ID] = u
	return nil
}

func (m *mockUserRepo) Update(ctx context.Context, id int64, mutate func(*orderdemo.User)) (orderdemo.User, error) {
	u, ok := m.users[id]
	if !ok {
		return orderdemo.User{}, domain.NotFoundError{Resource: "user", ID: id}
	}
	mutate(&u)
	u.ID = id
	if domain.EmailTaken(m.users, id, u.Email) {
		return orderdemo.User{}, domain.DuplicateEmailError{Email: u.Email}
	}
	m.users[id] = u
	return u, nil
}

func (m *mockUserRepo) Delete(ctx context.Context, id int64) error {
	delete(m.users, id)
	return nil
}

type mockPublisher struct {
	events []domain.UserEvent
	err    error
}

func (m *mockPublisher) PublishUserEvent(ctx context.Context, event domain.UserEvent) error {
	m.events = append(m.events, event)
	return m.err
}

func seededUserUsecase(t *testing.T) (*UserUsecase, *mockUserRepo) {
	t.Helper()
	repo := &mockUserRepo{users: map[int64]orderdemo.User{}}
	uc := NewUserUsecase(repo, nil)
	if err := uc.Seed(context.Background()); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	return uc, repo
}

func TestUserUsecaseSeedOnlyWhenEmpty(t *testing.T) {
	uc, repo := seededUserUsecase(t)
	if len(repo.users) != 3 {
		t.Fatalf("expected 3 seeded users got %d", len(repo.users))
	}

	repo.users[1] = orderdemo.User{ID: 1, Name: "changed"}
	if err := uc.Seed(context.Background()); err != nil {
		t.Fatalf("reseed failed: %v", err)
	}
	if repo.users[1].Name != "changed" {
		t.Fatalf("seed must not overwrite a populated store")
	}
}

func TestUserUsecaseCreateIsUpsert(t *testing.T) {
	uc, repo := seededUserUsecase(t)

	_, err := uc.Create(context.Background(), orderdemo.User{ID: 2, Name: "Replaced", Email: "new@example.com"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if repo.users[2].Name != "Replaced" {
		t.Fatalf("expected user 2 to be overwritten, got %+v", repo.users[2])
	}
}

func TestUserUsecaseUpdateForcesID(t *testing.T) {
	uc, repo := seededUserUsecase(t)

	updated, err := uc.Update(context.Background(), 3, orderdemo.User{ID: 77, Name: "Park Updated"})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.ID != 3 || repo.users[3].Name != "Park Updated" {
		t.Fatalf("unexpected update result %+v", updated)
	}
	if _, ok := repo.users[77]; ok {
		t.Fatalf("payload id must be ignored")
	}
}

func TestUserUsecaseUpdateUnknown(t *testing.T) {
	uc, repo := seededUserUsecase(t)

	_, err := uc.Update(context.Background(), 9, orderdemo.User{Name: "ghost"})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, ok := repo.users[9]; ok {
		t.Fatalf("update must not create a user")
	}
}

func TestUserUsecaseDeleteIsIdempotent(t *testing.T) {
	uc, repo := seededUserUsecase(t)

	for i := 0; i < 2; i++ {
		if err := uc.Delete(context.Background(), 1); err != nil {
			t.Fatalf("delete #%d failed: %v", i+1, err)
		}
	}
	if err := uc.Delete(context.Background(), 404); err != nil {
		t.Fatalf("deleting an unknown user failed: %v", err)
	}
	if _, ok := repo.users[1]; ok {
		t.Fatalf("user 1 should be gone")
	}
}

func TestUserUsecasePublishesEvents(t *testing.T) {
	repo := &mockUserRepo{users: map[int64]orderdemo.User{}}
	events := &mockPublisher{}
	uc := NewUserUsecase(repo, events)
	ctx := context.Background()

	user := orderdemo.User{ID: 5, Name: "Choi"}
	if _, err := uc.Create(ctx, user); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := uc.Update(ctx, 5, orderdemo.User{Name: "Choi Updated"}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if err := uc.Delete(ctx, 5); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	want := []string{domain.UserCreated, domain.UserUpdated, domain.UserDeleted}
	if len(events.events) != len(want) {
		t.Fatalf("expected %d events got %d", len(want), len(events.events))
	}
	for i, e := range events.events {
		if e.Type != want[i] || e.UserID != 5 {
			t.Fatalf("unexpected event %d: %+v", i, e)
		}
	}
	if events.events[1].User == nil || events.events[1].User.Name != "Choi Updated" {
		t.Fatalf("update event should carry the new user, got %+v", events.events[1].User)
	}
	if events.events[2].User != nil {
		t.Fatalf("delete event must not carry a user")
	}
}

func TestUserUsecasePublishFailureDoesNotFailMutation(t *testing.T) {
	repo := &mockUserRepo{users: map[int64]orderdemo.User{}}
	uc := NewUserUsecase(repo, &mockPublisher{err: errors.New("redis down")})

	if _, err := uc.Create(context.Background(), orderdemo.User{ID: 1, Name: "Kim"}); err != nil {
		t.Fatalf("create should succeed despite the publisher, got %v", err)
	}
	if _, ok := repo.users[1]; !ok {
		t.Fatalf("user should be stored")
	}
}

func TestUserUsecaseUpdateWritesThroughRepositoryUpdate(t *testing.T) {
	uc, repo := seededUserUsecase(t)
	puts := repo.puts

	if _, err := uc.Update(context.Background(), 2, orderdemo.User{Name: "Lee Updated", Email: "lee@example.com"}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if repo.puts != puts {
		t.Fatalf("update must not go through Put, which would re-create a deleted user")
	}
	if repo.users[2].Status != orderdemo.UserStatusActive {
		t.Fatalf("update must keep the status, got %+v", repo.users[2])
	}
}

func TestUserUsecaseCreateDefaultsStatus(t *testing.T) {
	uc, _ := seededUserUsecase(t)

	created, err := uc.Create(context.Background(), orderdemo.User{ID: 4, Name: "Choi", Email: "choi@example.com"})
	if err != nil || created.Status != orderdemo.UserStatusActive {
		t.Fatalf("expected ACTIVE, got %+v %v", created, err)
	}
	if _, err := uc.Create(context.Background(), orderdemo.User{ID: 5, Status: "gone"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUserUsecaseDuplicateEmail(t *testing.T) {
	uc, repo := seededUserUsecase(t)
	ctx := context.Background()

	_, err := uc.Create(ctx, orderdemo.User{ID: 4, Name: "Fake Kim", Email: "kim@example.com"})
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected duplicate email, got %v", err)
	}
	if _, ok := repo.users[4]; ok {
		t.Fatalf("user 4 must not be stored")
	}

	if _, err := uc.Create(ctx, orderdemo.User{ID: 1, Name: "Kim Again", Email: "kim@example.com"}); err != nil {
		t.Fatalf("upserting a user with its own email failed: %v", err)
	}

	_, err = uc.Update(ctx, 3, orderdemo.User{Name: "Park", Email: "lee@example.com"})
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected duplicate email on update, got %v", err)
	}
	if repo.users[3].Email != "park@example.com" {
		t.Fatalf("user 3 must be unchanged, got %+v", repo.users[3])
	}
}

func TestUserUsecaseChangeStatus(t *testing.T) {
	repo := &mockUserRepo{users: map[int64]orderdemo.User{}}
	events := &mockPublisher{}
	uc := NewUserUsecase(repo, events)
	ctx := context.Background()
	if err := uc.Seed(ctx); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	updated, err := uc.ChangeStatus(ctx, 1, "suspended")
	if err != nil {
		t.Fatalf("change status failed: %v", err)
	}
	if updated.Status != orderdemo.UserStatusSuspended || updated.Name != "Kim Cheolsu" {
		t.Fatalf("unexpected user %+v", updated)
	}
	if len(events.events) != 1 || events.events[0].Type != domain.UserStatusChanged {
		t.Fatalf("expected one status event, got %+v", events.events)
	}

	if _, err := uc.ChangeStatus(ctx, 1, "deleted"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := uc.ChangeStatus(ctx, 42, orderdemo.UserStatusActive); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, ok := repo.users[42]; ok {
		t.Fatalf("status change must not create a user")
	}
}

func TestUserUsecaseSimulateError(t *testing.T) {
	uc, _ := seededUserUsecase(t)
	if err := uc.SimulateError(context.Background()); err == nil {
		t.Fatalf("expected the simulated error")
	}
}

package gateway

import (
	"context"
	"log/slog"
	"sync"

	"github.com/totegamma/orderdemo"
	"github.com/totegamma/orderdemo/internal/domain"
	"github.com/totegamma/orderdemo/internal/usecase"
)

// StubUserClient answers from an in-process table. It never touches the
// network and is deterministic.
type StubUserClient struct {
	mu    sync.Mutex
	users map[int64]orderdemo.User
}

var _ usecase.UserClient = (*StubUserClient)(nil)

// StubUsers is the table a new StubUserClient starts with.
func StubUsers() []orderdemo.User {
	return []orderdemo.User{
		{ID: 1, Name: "Kim Cheolsu (stub)", Email: "kimStub@example.com", Phone: "010-1111-1111"},
		{ID: 2, Name: "Lee Younghee (stub)", Email: "leeStub@example.com", Phone: "010-2222-2222"},
		{ID: 3, Name: "Park Minsu (stub)", Email: "parkStub@example.com", Phone: "010-3333-3333"},
	}
}

func NewStubUserClient() *StubUserClient {
	users := map[int64]orderdemo.User{}
	for _, u := range StubUsers() {
		users[u.ID] = u
	}
	return &StubUserClient{users: users}
}

func (s *StubUserClient) GetUser(ctx context.Context, id int64) (orderdemo.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	slog.DebugContext(ctx, "stub get user", slog.Int64("userId", id), slog.String("module", "stub"))

	user, ok := s.users[id]
	if !ok {
		return orderdemo.User{}, domain.NotFoundError{Resource: "user", ID: id}
	}
	return user, nil
}

func (s *StubUserClient) GetAllUsers(ctx context.Context) (map[int64]orderdemo.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make(map[int64]orderdemo.User, len(s.users))
	for id, u := range s.users {
		result[id] = u
	}
	return result, nil
}

// CreateUser replaces any user stored under the same id.
func (s *StubUserClient) CreateUser(ctx context.Context, user orderdemo.User) (orderdemo.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	slog.DebugContext(ctx, "stub create user", slog.Int64("userId", user.ID), slog.String("module", "stub"))
	s.users[user.ID] = user
	return user, nil
}

func (s *StubUserClient) UpdateUser(ctx context.Context, id int64, user orderdemo.User) (orderdemo.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return orderdemo.User{}, domain.NotFoundError{Resource: "user", ID: id}
	}
	user.ID = id
	s.users[id] = user
	return user, nil
}

func (s *StubUserClient) DeleteUser(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.users, id)
	return nil
}

package usecase

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/totegamma/orderdemo"
	"github.com/totegamma/orderdemo/internal/domain"
)

// --- mocks ---

type mockUserClient struct {
	users   map[int64]orderdemo.User
	fetches map[int64]int
	failing map[int64]error
}

func newMockUserClient() *mockUserClient {
	return &mockUserClient{
		users: map[int64]orderdemo.User{
			1: {ID: 1, Name: "Kim", Email: "kim@example.com"},
			2: {ID: 2, Name: "Lee", Email: "lee@example.com"},
			3: {ID: 3, Name: "Park", Email: "park@example.com"},
		},
		fetches: map[int64]int{},
		failing: map[int64]error{},
	}
}

func (m *mockUserClient) totalFetches() int {
	n := 0
	for _, c := range m.fetches {
		n += c
	}
	return n
}

func (m *mockUserClient) GetUser(ctx context.Context, id int64) (orderdemo.User, error) {
	m.fetches[id]++
	if err, ok := m.failing[id]; ok {
		return orderdemo.User{}, err
	}
	u, ok := m.users[id]
	if !ok {
		return orderdemo.User{}, domain.NotFoundError{Resource: "user", ID: id}
	}
	return u, nil
}

func (m *mockUserClient) GetAllUsers(ctx context.Context) (map[int64]orderdemo.User, error) {
	return m.users, nil
}

func (m *mockUserClient) CreateUser(ctx context.Context, u orderdemo.User) (orderdemo.User, error) {
	m.users[u.ID] = u
	return u, nil
}

func (m *mockUserClient) UpdateUser(ctx context.Context, id int64, u orderdemo.User) (orderdemo.User, error) {
	u.ID = id
	m.users[id] = u
	return u, nil
}

func (m *mockUserClient) DeleteUser(ctx context.Context, id int64) error {
	delete(m.users, id)
	return nil
}

type mockOrderRepo struct {
	orders map[int64]domain.Order
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{orders: map[int64]domain.Order{
		1: {ID: 1, UserID: 1, ProductName: "Laptop", Quantity: 1, Price: 1500000},
		2: {ID: 2, UserID: 2, ProductName: "Mouse", Quantity: 2, Price: 30000},
		3: {ID: 3, UserID: 1, ProductName: "Keyboard", Quantity: 1, Price: 120000},
	}}
}

func (m *mockOrderRepo) Get(ctx context.Context, id int64) (domain.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return domain.Order{}, domain.NotFoundError{Resource: "order", ID: id}
	}
	return o, nil
}

func (m *mockOrderRepo) List(ctx context.Context) ([]domain.Order, error) {
	result := make([]domain.Order, 0, len(m.orders))
	for _, o := range m.orders {
		result = append(result, o)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockOrderRepo) Put(ctx context.Context, o domain.Order) error {
	m.orders[o.ID] = o
	return nil
}

// --- tests ---

func TestOrderUsecaseGetEnriches(t *testing.T) {
	users := newMockUserClient()
	uc := NewOrderUsecase(newMockOrderRepo(), users)

	order, err := uc.Get(context.Background(), 2)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if order.User == nil || order.User.ID != 2 || order.User.Name != "Lee" {
		t.Fatalf("expected order to carry user 2, got %+v", order.User)
	}
	if users.fetches[2] != 1 {
		t.Fatalf("expected one fetch, got %d", users.fetches[2])
	}
}

func TestOrderUsecaseGetUnknownOrder(t *testing.T) {
	users := newMockUserClient()
	uc := NewOrderUsecase(newMockOrderRepo(), users)

	_, err := uc.Get(context.Background(), 99)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if users.totalFetches() != 0 {
		t.Fatalf("expected no user fetch for a missing order")
	}
}

func TestOrderUsecaseGetPropagatesRemoteFailure(t *testing.T) {
	users := newMockUserClient()
	users.failing[1] = domain.RemoteUnavailableError{Service: "user-service", Attempts: 3, Err: errors.New("connection refused")}
	uc := NewOrderUsecase(newMockOrderRepo(), users)

	_, err := uc.Get(context.Background(), 1)
	if !errors.Is(err, domain.ErrRemoteUnavailable) {
		t.Fatalf("expected remote unavailable, got %v", err)
	}
}

func TestOrderUsecaseGetDoesNotCache(t *testing.T) {
	users := newMockUserClient()
	uc := NewOrderUsecase(newMockOrderRepo(), users)

	if _, err := uc.Get(context.Background(), 1); err != nil {
		t.Fatalf("first get failed: %v", err)
	}
	users.failing[1] = domain.RemoteUnavailableError{Service: "user-service"}
	if _, err := uc.Get(context.Background(), 1); !errors.Is(err, domain.ErrRemoteUnavailable) {
		t.Fatalf("expected the second read to fetch again and fail, got %v", err)
	}
}

func TestOrderUsecaseListFetchesPerOrder(t *testing.T) {
	users := newMockUserClient()
	uc := NewOrderUsecase(newMockOrderRepo(), users)

	orders, err := uc.List(context.Background())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(orders) != 3 {
		t.Fatalf("expected 3 orders got %d", len(orders))
	}
	for _, o := range orders {
		if o.User == nil || o.User.ID != o.UserID {
			t.Fatalf("order %d not enriched with its owner: %+v", o.ID, o.User)
		}
	}
	if *orders[0].User != *orders[2].User {
		t.Fatalf("orders 1 and 3 should carry identical user data")
	}
	if users.fetches[1] != 2 || users.fetches[2] != 1 {
		t.Fatalf("expected independent fetches per order, got %v", users.fetches)
	}
}

func TestOrderUsecaseListAbortsOnFailure(t *testing.T) {
	users := newMockUserClient()
	delete(users.users, 2)
	uc := NewOrderUsecase(newMockOrderRepo(), users)

	orders, err := uc.List(context.Background())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if orders != nil {
		t.Fatalf("expected no partial result, got %v", orders)
	}
}

func TestOrderUsecaseListByUserWithoutOrders(t *testing.T) {
	users := newMockUserClient()
	uc := NewOrderUsecase(newMockOrderRepo(), users)

	orders, err := uc.ListByUser(context.Background(), 3)
	if err != nil {
		t.Fatalf("list by user failed: %v", err)
	}
	if orders == nil || len(orders) != 0 {
		t.Fatalf("expected an empty, non-nil slice, got %v", orders)
	}
	if users.totalFetches() != 1 || users.fetches[3] != 1 {
		t.Fatalf("expected exactly one fetch of user 3, got %v", users.fetches)
	}
}

func TestOrderUsecaseListByUserUnknownUser(t *testing.T) {
	users := newMockUserClient()
	delete(users.users, 1)
	uc := NewOrderUsecase(newMockOrderRepo(), users)

	_, err := uc.ListByUser(context.Background(), 1)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found even though orders reference user 1, got %v", err)
	}
}

func TestOrderUsecaseListByUserSharesFetchedUser(t *testing.T) {
	users := newMockUserClient()
	uc := NewOrderUsecase(newMockOrderRepo(), users)

	orders, err := uc.ListByUser(context.Background(), 1)
	if err != nil {
		t.Fatalf("list by user failed: %v", err)
	}
	if len(orders) != 2 || orders[0].ID != 1 || orders[1].ID != 3 {
		t.Fatalf("unexpected orders %+v", orders)
	}
	if users.fetches[1] != 1 {
		t.Fatalf("expected one fetch, got %d", users.fetches[1])
	}
}

func TestOrderUsecaseCreate(t *testing.T) {
	users := newMockUserClient()
	repo := newMockOrderRepo()
	uc := NewOrderUsecase(repo, users)

	created, err := uc.Create(context.Background(), domain.Order{ID: 1, UserID: 3, ProductName: "Monitor", Quantity: 2, Price: 300000})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.User == nil || created.User.ID != 3 {
		t.Fatalf("expected created order to carry user 3")
	}
	stored := repo.orders[1]
	if stored.ProductName != "Monitor" {
		t.Fatalf("expected order 1 to be overwritten, got %+v", stored)
	}
	if stored.User != nil {
		t.Fatalf("user must not be persisted with the order")
	}
}

func TestOrderUsecaseCreateUnknownUser(t *testing.T) {
	users := newMockUserClient()
	repo := newMockOrderRepo()
	uc := NewOrderUsecase(repo, users)

	_, err := uc.Create(context.Background(), domain.Order{ID: 10, UserID: 42, ProductName: "Desk", Quantity: 1})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, ok := repo.orders[10]; ok {
		t.Fatalf("order must not be stored when the user is unknown")
	}
}

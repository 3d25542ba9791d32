package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/totegamma/orderdemo/internal/domain"
	"github.com/totegamma/orderdemo/internal/usecase"
)

type OrderRepository struct {
	mu     sync.RWMutex
	orders map[int64]domain.Order
}

var _ usecase.OrderRepository = (*OrderRepository)(nil)

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{orders: map[int64]domain.Order{}}
}

// SeedOrders are the orders an order-service starts with.
func SeedOrders() []domain.Order {
	return []domain.Order{
		{ID: 1, UserID: 1, ProductName: "Laptop", Quantity: 1, Price: 1500000},
		{ID: 2, UserID: 2, ProductName: "Mouse", Quantity: 2, Price: 30000},
		{ID: 3, UserID: 1, ProductName: "Keyboard", Quantity: 1, Price: 120000},
	}
}

// NewSeededOrderRepository returns a repository holding SeedOrders.
func NewSeededOrderRepository() *OrderRepository {
	r := NewOrderRepository()
	for _, o := range SeedOrders() {
		r.orders[o.ID] = o
	}
	return r
}

func (r *OrderRepository) Get(ctx context.Context, id int64) (domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return domain.Order{}, domain.NotFoundError{Resource: "order", ID: id}
	}
	return order, nil
}

// List returns every order ordered by id.
func (r *OrderRepository) List(ctx context.Context) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Order, 0, len(r.orders))
	for _, o := range r.orders {
		result = append(result, o)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *OrderRepository) Put(ctx context.Context, order domain.Order) error {
	order.User = nil

	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[order.ID] = order
	return nil
}

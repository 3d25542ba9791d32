package repository

import (
	"context"
	"strconv"
	"sync"

	"github.com/patrickmn/go-cache"

	"github.com/totegamma/orderdemo"
	"github.com/totegamma/orderdemo/internal/domain"
	"github.com/totegamma/orderdemo/internal/usecase"
)

// MemoryUserRepository keeps users in a go-cache table that never expires.
// Writers hold mu so the email check and the write see the same table.
type MemoryUserRepository struct {
	mu    sync.Mutex
	cache *cache.Cache
}

var _ usecase.UserRepository = (*MemoryUserRepository)(nil)

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		cache: cache.New(cache.NoExpiration, 0),
	}
}

func userKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

func (r *MemoryUserRepository) Get(ctx context.Context, id int64) (orderdemo.User, error) {
	cached, found := r.cache.Get(userKey(id))
	if !found {
		return orderdemo.User{}, domain.NotFoundError{Resource: "user", ID: id}
	}
	return cached.(orderdemo.User), nil
}

func (r *MemoryUserRepository) List(ctx context.Context) (map[int64]orderdemo.User, error) {
	items := r.cache.Items()
	result := make(map[int64]orderdemo.User, len(items))
	for _, item := range items {
		user := item.Object.(orderdemo.User)
		result[user.ID] = user
	}
	return result, nil
}

func (r *MemoryUserRepository) Put(ctx context.Context, user orderdemo.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, _ := r.List(ctx)
	if domain.EmailTaken(users, user.ID, user.Email) {
		return domain.DuplicateEmailError{Email: user.Email}
	}

	r.cache.Set(userKey(user.ID), user, cache.NoExpiration)
	return nil
}

func (r *MemoryUserRepository) Update(ctx context.Context, id int64, mutate func(*orderdemo.User)) (orderdemo.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, err := r.Get(ctx, id)
	if err != nil {
		return orderdemo.User{}, err
	}
	mutate(&user)
	user.ID = id

	users, _ := r.List(ctx)
	if domain.EmailTaken(users, id, user.Email) {
		return orderdemo.User{}, domain.DuplicateEmailError{Email: user.Email}
	}

	err = r.cache.Replace(userKey(id), user, cache.NoExpiration)
	if err != nil {
		return orderdemo.User{}, domain.NotFoundError{Resource: "user", ID: id}
	}
	return user, nil
}

func (r *MemoryUserRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cache.Delete(userKey(id))
	return nil
}

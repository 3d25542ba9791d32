package repository

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/totegamma/orderdemo"
	"github.com/totegamma/orderdemo/internal/domain"
	"github.com/totegamma/orderdemo/internal/usecase"
)

const (
	usersHashKey = "orderdemo:users"

	maxWatchRetries = 10
)

// RedisUserRepository stores every user as a JSON field of one hash.
// Writes that read first run under WATCH on the hash and are retried when
// another client touched it in between.
type RedisUserRepository struct {
	rdb *redis.Client
}

var _ usecase.UserRepository = (*RedisUserRepository)(nil)

func NewRedisUserRepository(rdb *redis.Client) *RedisUserRepository {
	return &RedisUserRepository{rdb: rdb}
}

func (r *RedisUserRepository) Get(ctx context.Context, id int64) (orderdemo.User, error) {
	raw, err := r.rdb.HGet(ctx, usersHashKey, userKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return orderdemo.User{}, domain.NotFoundError{Resource: "user", ID: id}
		}
		return orderdemo.User{}, errors.Wrap(err, "failed to get user")
	}

	var user orderdemo.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return orderdemo.User{}, errors.Wrap(err, "failed to decode user")
	}
	return user, nil
}

func (r *RedisUserRepository) List(ctx context.Context) (map[int64]orderdemo.User, error) {
	fields, err := r.rdb.HGetAll(ctx, usersHashKey).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failed to list users")
	}
	return decodeUsers(fields)
}

func (r *RedisUserRepository) Put(ctx context.Context, user orderdemo.User) error {
	return r.watch(ctx, func(tx *redis.Tx) error {
		users, err := r.snapshot(ctx, tx)
		if err != nil {
			return err
		}
		if domain.EmailTaken(users, user.ID, user.Email) {
			return domain.DuplicateEmailError{Email: user.Email}
		}
		return r.store(ctx, tx, user)
	})
}

func (r *RedisUserRepository) Update(ctx context.Context, id int64, mutate func(*orderdemo.User)) (orderdemo.User, error) {
	var updated orderdemo.User
	err := r.watch(ctx, func(tx *redis.Tx) error {
		users, err := r.snapshot(ctx, tx)
		if err != nil {
			return err
		}
		user, ok := users[id]
		if !ok {
			return domain.NotFoundError{Resource: "user", ID: id}
		}
		mutate(&user)
		user.ID = id

		if domain.EmailTaken(users, id, user.Email) {
			return domain.DuplicateEmailError{Email: user.Email}
		}
		if err := r.store(ctx, tx, user); err != nil {
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		return orderdemo.User{}, err
	}
	return updated, nil
}

func (r *RedisUserRepository) Delete(ctx context.Context, id int64) error {
	err := r.rdb.HDel(ctx, usersHashKey, userKey(id)).Err()
	if err != nil {
		return errors.Wrap(err, "failed to delete user")
	}
	return nil
}

func (r *RedisUserRepository) watch(ctx context.Context, fn func(*redis.Tx) error) error {
	for i := 0; i < maxWatchRetries; i++ {
		err := r.rdb.Watch(ctx, fn, usersHashKey)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return errors.New("users hash kept changing, giving up")
}

func (r *RedisUserRepository) snapshot(ctx context.Context, tx *redis.Tx) (map[int64]orderdemo.User, error) {
	fields, err := tx.HGetAll(ctx, usersHashKey).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failed to list users")
	}
	return decodeUsers(fields)
}

func (r *RedisUserRepository) store(ctx context.Context, tx *redis.Tx, user orderdemo.User) error {
	serialized, err := json.Marshal(user)
	if err != nil {
		return errors.Wrap(err, "failed to encode user")
	}
	_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, usersHashKey, userKey(user.ID), serialized)
		return nil
	})
	if err != nil {
		if errors.Is(err, redis.TxFailedErr) {
			return err
		}
		return errors.Wrap(err, "failed to store user")
	}
	return nil
}

func decodeUsers(fields map[string]string) (map[int64]orderdemo.User, error) {
	result := make(map[int64]orderdemo.User, len(fields))
	for field, raw := range fields {
		id, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "malformed user field %q", field)
		}
		var user orderdemo.User
		if err := json.Unmarshal([]byte(raw), &user); err != nil {
			return nil, errors.Wrapf(err, "failed to decode user %d", id)
		}
		result[id] = user
	}
	return result, nil
}

package repository

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/totegamma/orderdemo"
	"github.com/totegamma/orderdemo/internal/domain"
	"github.com/totegamma/orderdemo/internal/infra/database/models"
	"github.com/totegamma/orderdemo/internal/usecase"
)

type PostgresUserRepository struct {
	db *gorm.DB
}

var _ usecase.UserRepository = (*PostgresUserRepository)(nil)

func NewPostgresUserRepository(db *gorm.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) Get(ctx context.Context, id int64) (orderdemo.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return orderdemo.User{}, domain.NotFoundError{Resource: "user", ID: id}
		}
		return orderdemo.User{}, errors.Wrap(err, "failed to get user")
	}
	return fromUserModel(user), nil
}

func (r *PostgresUserRepository) List(ctx context.Context) (map[int64]orderdemo.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).Order("id ASC").Find(&users).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list users")
	}

	result := make(map[int64]orderdemo.User, len(users))
	for _, u := range users {
		result[u.ID] = fromUserModel(u)
	}
	return result, nil
}

func (r *PostgresUserRepository) Put(ctx context.Context, user orderdemo.User) error {
	model := toUserModel(user)

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "email", "phone", "status", "m_date"}),
	}).Create(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.DuplicateEmailError{Email: user.Email}
		}
		return errors.Wrap(err, "failed to upsert user")
	}
	return nil
}

// Update locks the row for the length of the transaction, so a
// concurrent delete either happens before (NotFound) or waits.
func (r *PostgresUserRepository) Update(ctx context.Context, id int64, mutate func(*orderdemo.User)) (orderdemo.User, error) {
	var updated orderdemo.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.User
		err := tx.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).Where("id = ?", id).Take(&current).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NotFoundError{Resource: "user", ID: id}
			}
			return errors.Wrap(err, "failed to get user")
		}

		user := fromUserModel(current)
		mutate(&user)
		user.ID = id

		result := tx.Model(&models.User{}).Where("id = ?", id).Updates(map[string]any{
			"name":   user.Name,
			"email":  user.Email,
			"phone":  user.Phone,
			"status": user.Status,
		})
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
				return domain.DuplicateEmailError{Email: user.Email}
			}
			return errors.Wrap(result.Error, "failed to update user")
		}
		if result.RowsAffected == 0 {
			return domain.NotFoundError{Resource: "user", ID: id}
		}

		updated = user
		return nil
	})
	if err != nil {
		return orderdemo.User{}, err
	}
	return updated, nil
}

func (r *PostgresUserRepository) Delete(ctx context.Context, id int64) error {
	err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.User{}).Error
	if err != nil {
		return errors.Wrap(err, "failed to delete user")
	}
	return nil
}

func toUserModel(u orderdemo.User) models.User {
	status := u.Status
	if status == "" {
		status = orderdemo.UserStatusActive
	}
	return models.User{
		ID:     u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Phone:  u.Phone,
		Status: status,
	}
}

func fromUserModel(m models.User) orderdemo.User {
	return orderdemo.User{
		ID:     m.ID,
		Name:   m.Name,
		Email:  m.Email,
		Phone:  m.Phone,
		Status: m.Status,
	}
}

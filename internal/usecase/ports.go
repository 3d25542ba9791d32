package usecase

import (
	"context"

	"github.com/totegamma/orderdemo"
	"github.com/totegamma/orderdemo/internal/domain"
)

// UserClient is the contract against the user store, whatever transport
// backs it. GetUser and UpdateUser fail with domain.ErrNotFound for an
// unknown id. CreateUser overwrites an existing user with the same id.
// DeleteUser on an unknown id succeeds.
type UserClient interface {
	GetUser(ctx context.Context, id int64) (orderdemo.User, error)
	GetAllUsers(ctx context.Context) (map[int64]orderdemo.User, error)
	CreateUser(ctx context.Context, user orderdemo.User) (orderdemo.User, error)
	UpdateUser(ctx context.Context, id int64, user orderdemo.User) (orderdemo.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

// OrderRepository stores orders without their transient user field.
type OrderRepository interface {
	Get(ctx context.Context, id int64) (domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
	Put(ctx context.Context, order domain.Order) error
}

// UserRepository is the storage behind the user service. Put and Update
// fail with domain.ErrDuplicateEmail when the email belongs to another
// user.
type UserRepository interface {
	Get(ctx context.Context, id int64) (orderdemo.User, error)
	List(ctx context.Context) (map[int64]orderdemo.User, error)
	// Put inserts user or replaces the one stored under the same id.
	Put(ctx context.Context, user orderdemo.User) error
	// Update applies mutate to the user stored under id and writes the
	// result as one step. An absent id is domain.ErrNotFound; Update never
	// creates a user.
	Update(ctx context.Context, id int64, mutate func(*orderdemo.User)) (orderdemo.User, error)
	Delete(ctx context.Context, id int64) error
}

// BoardRepository keeps posts, comments and the comment to post index
// consistent with each other.
type BoardRepository interface {
	CreatePost(ctx context.Context, post domain.Post) (domain.Post, error)
	GetPost(ctx context.Context, id int64) (domain.Post, error)
	ListPosts(ctx context.Context) ([]domain.Post, error)
	UpdatePost(ctx context.Context, id int64, title, content string) (domain.Post, error)
	DeletePost(ctx context.Context, id int64) error

	AddComment(ctx context.Context, postID int64, comment domain.Comment) (domain.Comment, error)
	GetComment(ctx context.Context, id int64) (domain.Comment, error)
	ListComments(ctx context.Context, postID int64) ([]domain.Comment, error)
	UpdateComment(ctx context.Context, id int64, content string) (domain.Comment, error)
	RemoveComment(ctx context.Context, id int64) error
}

// UserEventPublisher announces committed user store changes.
type UserEventPublisher interface {
	PublishUserEvent(ctx context.Context, event domain.UserEvent) error
}

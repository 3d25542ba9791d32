package gateway

import (
	"context"
	"net/http"

	"github.com/pkg/errors"

	"github.com/totegamma/orderdemo"
	"github.com/totegamma/orderdemo/client"
	"github.com/totegamma/orderdemo/internal/domain"
	"github.com/totegamma/orderdemo/internal/usecase"
)

// RestUserClient talks to a user-service over HTTP. Every call goes
// through the retry policy of the underlying client, mutations included.
type RestUserClient struct {
	client *client.Client
}

var _ usecase.UserClient = (*RestUserClient)(nil)

func NewRestUserClient(cl *client.Client) *RestUserClient {
	return &RestUserClient{client: cl}
}

func (g *RestUserClient) GetUser(ctx context.Context, id int64) (orderdemo.User, error) {
	ctx, span := tracer.Start(ctx, "Gateway.RestUserClient.GetUser")
	defer span.End()

	var user orderdemo.User
	err := g.client.HttpRequest(ctx, http.MethodGet, orderdemo.UserPath(id), nil, &user)
	if err != nil {
		span.RecordError(err)
		return orderdemo.User{}, translate(err, id, "failed to get user")
	}
	return user, nil
}

func (g *RestUserClient) GetAllUsers(ctx context.Context) (map[int64]orderdemo.User, error) {
	ctx, span := tracer.Start(ctx, "Gateway.RestUserClient.GetAllUsers")
	defer span.End()

	users := map[int64]orderdemo.User{}
	err := g.client.HttpRequest(ctx, http.MethodGet, orderdemo.UsersPath, nil, &users)
	if err != nil {
		span.RecordError(err)
		return nil, translate(err, 0, "failed to list users")
	}
	return users, nil
}

func (g *RestUserClient) CreateUser(ctx context.Context, user orderdemo.User) (orderdemo.User, error) {
	ctx, span := tracer.Start(ctx, "Gateway.RestUserClient.CreateUser")
	defer span.End()

	var created orderdemo.User
	err := g.client.HttpRequest(ctx, http.MethodPost, orderdemo.UsersPath, user, &created)
	if err != nil {
		span.RecordError(err)
		return orderdemo.User{}, translate(err, user.ID, "failed to create user")
	}
	return created, nil
}

func (g *RestUserClient) UpdateUser(ctx context.Context, id int64, user orderdemo.User) (orderdemo.User, error) {
	ctx, span := tracer.Start(ctx, "Gateway.RestUserClient.UpdateUser")
	defer span.End()

	var updated orderdemo.User
	err := g.client.HttpRequest(ctx, http.MethodPut, orderdemo.UserPath(id), user, &updated)
	if err != nil {
		span.RecordError(err)
		return orderdemo.User{}, translate(err, id, "failed to update user")
	}
	return updated, nil
}

func (g *RestUserClient) DeleteUser(ctx context.Context, id int64) error {
	ctx, span := tracer.Start(ctx, "Gateway.RestUserClient.DeleteUser")
	defer span.End()

	err := g.client.HttpRequest(ctx, http.MethodDelete, orderdemo.UserPath(id), nil, nil)
	if err != nil {
		span.RecordError(err)
		return translate(err, id, "failed to delete user")
	}
	return nil
}

// translate maps transport failures onto domain errors. A 404 becomes
// NotFound, a 409 DuplicateEmail and an exhausted retry budget
// RemoteUnavailable; the rest is wrapped as is.
func translate(err error, id int64, msg string) error {
	if client.IsStatus(err, http.StatusNotFound) {
		return domain.NotFoundError{Resource: "user", ID: id}
	}
	if client.IsStatus(err, http.StatusConflict) {
		return errors.Wrap(domain.ErrDuplicateEmail, msg)
	}

	var unavailable *client.UnavailableError
	if errors.As(err, &unavailable) {
		return domain.RemoteUnavailableError{
			Service:  orderdemo.UserServiceName,
			Attempts: unavailable.Attempts,
			Err:      unavailable.Err,
		}
	}

	return errors.Wrap(err, msg)
}

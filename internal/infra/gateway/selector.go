package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/totegamma/orderdemo"
	"github.com/totegamma/orderdemo/client"
	"github.com/totegamma/orderdemo/internal/config"
	"github.com/totegamma/orderdemo/internal/domain"
	"github.com/totegamma/orderdemo/internal/infra/metrics"
	"github.com/totegamma/orderdemo/internal/usecase"
)

var tracer = otel.Tracer("gateway")

// NewUserClient builds the user client named by conf.Type. It is called
// once at startup; the result is never swapped. m may be nil.
func NewUserClient(conf config.UserClient, m *metrics.Metrics) (usecase.UserClient, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}

	var uc usecase.UserClient
	switch conf.Type {
	case domain.UserClientStub:
		uc = NewStubUserClient()
	case domain.UserClientRest:
		opts := conf.ClientOptions()
		if m != nil {
			opts.OnRetry = m.OnRetry
		}
		uc = NewRestUserClient(client.New(conf.URL, opts))
	default:
		return nil, fmt.Errorf("unknown user client type %q", conf.Type)
	}

	slog.Info(
		"user client selected",
		slog.String("type", conf.Type),
		slog.String("url", conf.URL),
		slog.String("module", "gateway"),
	)

	if m == nil {
		return uc, nil
	}
	return &meteredUserClient{next: uc, kind: conf.Type, metrics: m}, nil
}

type meteredUserClient struct {
	next    usecase.UserClient
	kind    string
	metrics *metrics.Metrics
}

func (c *meteredUserClient) observe(op string, start time.Time, err error) {
	c.metrics.ObserveUserClient(c.kind, op, time.Since(start), err)
}

func (c *meteredUserClient) GetUser(ctx context.Context, id int64) (orderdemo.User, error) {
	start := time.Now()
	user, err := c.next.GetUser(ctx, id)
	c.observe("GetUser", start, err)
	return user, err
}

func (c *meteredUserClient) GetAllUsers(ctx context.Context) (map[int64]orderdemo.User, error) {
	start := time.Now()
	users, err := c.next.GetAllUsers(ctx)
	c.observe("GetAllUsers", start, err)
	return users, err
}

func (c *meteredUserClient) CreateUser(ctx context.Context, user orderdemo.User) (orderdemo.User, error) {
	start := time.Now()
	created, err := c.next.CreateUser(ctx, user)
	c.observe("CreateUser", start, err)
	return created, err
}

func (c *meteredUserClient) UpdateUser(ctx context.Context, id int64, user orderdemo.User) (orderdemo.User, error) {
	start := time.Now()
	updated, err := c.next.UpdateUser(ctx, id, user)
	c.observe("UpdateUser", start, err)
	return updated, err
}

func (c *meteredUserClient) DeleteUser(ctx context.Context, id int64) error {
	start := time.Now()
	err := c.next.DeleteUser(ctx, id)
	c.observe("DeleteUser", start, err)
	return err
}

package usecase

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/totegamma/orderdemo/internal/domain"
)

var tracer = otel.Tracer("usecase")

// OrderUsecase decorates stored orders with their owner fetched through
// the bound UserClient. Every read fetches again; nothing is cached and no
// fallback user is ever substituted.
type OrderUsecase struct {
	repo  OrderRepository
	users UserClient
}

func NewOrderUsecase(repo OrderRepository, users UserClient) *OrderUsecase {
	return &OrderUsecase{repo: repo, users: users}
}

func (uc *OrderUsecase) Get(ctx context.Context, id int64) (domain.Order, error) {
	ctx, span := tracer.Start(ctx, "Order.Usecase.Get")
	defer span.End()
	span.SetAttributes(attribute.Int64("orderId", id))

	order, err := uc.repo.Get(ctx, id)
	if err != nil {
		span.RecordError(err)
		return domain.Order{}, err
	}

	user, err := uc.users.GetUser(ctx, order.UserID)
	if err != nil {
		span.RecordError(err)
		return domain.Order{}, err
	}

	return order.WithUser(user), nil
}

// List fetches the owner of every order independently. One failed fetch
// fails the whole listing.
func (uc *OrderUsecase) List(ctx context.Context) ([]domain.Order, error) {
	ctx, span := tracer.Start(ctx, "Order.Usecase.List")
	defer span.End()

	orders, err := uc.repo.List(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	result := make([]domain.Order, 0, len(orders))
	for _, order := range orders {
		user, err := uc.users.GetUser(ctx, order.UserID)
		if err != nil {
			span.RecordError(err)
			slog.WarnContext(
				ctx, "failed to enrich order",
				slog.Int64("orderId", order.ID),
				slog.Int64("userId", order.UserID),
				slog.String("error", err.Error()),
				slog.String("module", "order"),
			)
			return nil, err
		}
		result = append(result, order.WithUser(user))
	}

	return result, nil
}

// ListByUser validates the user before filtering, so an unknown user is
// reported as not found even when orders reference it.
func (uc *OrderUsecase) ListByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	ctx, span := tracer.Start(ctx, "Order.Usecase.ListByUser")
	defer span.End()
	span.SetAttributes(attribute.Int64("userId", userID))

	user, err := uc.users.GetUser(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	orders, err := uc.repo.List(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	result := []domain.Order{}
	for _, order := range orders {
		if order.UserID != userID {
			continue
		}
		result = append(result, order.WithUser(user))
	}

	return result, nil
}

// Create stores order under its own id, replacing any order already
// stored there, once its owner is known to exist.
func (uc *OrderUsecase) Create(ctx context.Context, order domain.Order) (domain.Order, error) {
	ctx, span := tracer.Start(ctx, "Order.Usecase.Create")
	defer span.End()
	span.SetAttributes(attribute.Int64("orderId", order.ID), attribute.Int64("userId", order.UserID))

	user, err := uc.users.GetUser(ctx, order.UserID)
	if err != nil {
		span.RecordError(err)
		return domain.Order{}, err
	}

	order.User = nil
	err = uc.repo.Put(ctx, order)
	if err != nil {
		span.RecordError(err)
		return domain.Order{}, err
	}

	return order.WithUser(user), nil
}

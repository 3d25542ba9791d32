package rest

import (
	"github.com/labstack/echo/v4"

	"github.com/totegamma/orderdemo"
	"github.com/totegamma/orderdemo/internal/domain"
	"github.com/totegamma/orderdemo/internal/present/rest/presenter"
	"github.com/totegamma/orderdemo/internal/usecase"
)

type OrderHandler struct {
	order *usecase.OrderUsecase
}

func NewOrderHandler(order *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{order: order}
}

func (h *OrderHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/orders")
	g.GET("", h.handleList)
	g.GET("/:id", h.handleGet)
	g.GET("/user/:userId", h.handleListByUser)
	g.POST("", h.handleCreate)
}

func (h *OrderHandler) handleGet(c echo.Context) error {
	id, err := orderdemo.ParseID(c.Param("id"))
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	order, err := h.order.Get(c.Request().Context(), id)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, order)
}

func (h *OrderHandler) handleList(c echo.Context) error {
	orders, err := h.order.List(c.Request().Context())
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, orders)
}

func (h *OrderHandler) handleListByUser(c echo.Context) error {
	userID, err := orderdemo.ParseID(c.Param("userId"))
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	orders, err := h.order.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, orders)
}

func (h *OrderHandler) handleCreate(c echo.Context) error {
	var order domain.Order
	err := c.Bind(&order)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid order payload")
	}
	order.User = nil

	err = order.Validate()
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	created, err := h.order.Create(c.Request().Context(), order)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, created)
}

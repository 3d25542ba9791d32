package rest

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/totegamma/orderdemo"
	"github.com/totegamma/orderdemo/internal/present/rest/presenter"
	"github.com/totegamma/orderdemo/internal/usecase"
)

// UserHandler is the HTTP face of the user store. It is what the rest
// user client talks to.
type UserHandler struct {
	user *usecase.UserUsecase
}

func NewUserHandler(user *usecase.UserUsecase) *UserHandler {
	return &UserHandler{user: user}
}

func (h *UserHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group(orderdemo.UsersPath)
	g.GET("", h.handleList)
	g.GET("/test/error", h.handleSimulateError)
	g.GET("/:id", h.handleGet)
	g.POST("", h.handleCreate)
	g.PUT("/:id", h.handleUpdate)
	g.DELETE("/:id", h.handleDelete)
	g.PATCH("/:id/status", h.handleChangeStatus)
}

func (h *UserHandler) handleList(c echo.Context) error {
	users, err := h.user.List(c.Request().Context())
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, users)
}

func (h *UserHandler) handleGet(c echo.Context) error {
	id, err := orderdemo.ParseID(c.Param("id"))
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	user, err := h.user.Get(c.Request().Context(), id)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, user)
}

func (h *UserHandler) handleCreate(c echo.Context) error {
	var user orderdemo.User
	err := c.Bind(&user)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid user payload")
	}
	if user.ID <= 0 {
		return presenter.BadRequestMessage(c, "id must be positive")
	}

	created, err := h.user.Create(c.Request().Context(), user)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, created)
}

func (h *UserHandler) handleUpdate(c echo.Context) error {
	id, err := orderdemo.ParseID(c.Param("id"))
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	var user orderdemo.User
	err = c.Bind(&user)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid user payload")
	}

	updated, err := h.user.Update(c.Request().Context(), id, user)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, updated)
}

func (h *UserHandler) handleDelete(c echo.Context) error {
	id, err := orderdemo.ParseID(c.Param("id"))
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	err = h.user.Delete(c.Request().Context(), id)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.NoContent(c)
}

// handleChangeStatus takes the new status from the status query
// parameter.
func (h *UserHandler) handleChangeStatus(c echo.Context) error {
	id, err := orderdemo.ParseID(c.Param("id"))
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	user, err := h.user.ChangeStatus(c.Request().Context(), id, c.QueryParam("status"))
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, user)
}

func (h *UserHandler) handleSimulateError(c echo.Context) error {
	err := h.user.SimulateError(c.Request().Context())
	if err != nil {
		return presenter.Error(c, err)
	}
	return c.NoContent(http.StatusOK)
}

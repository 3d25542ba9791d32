package rest

import (
	"fmt"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/totegamma/orderdemo"
	"github.com/totegamma/orderdemo/internal/present/rest/presenter"
	"github.com/totegamma/orderdemo/internal/usecase"
)

type BoardHandler struct {
	board *usecase.BoardUsecase
}

func NewBoardHandler(board *usecase.BoardUsecase) *BoardHandler {
	return &BoardHandler{board: board}
}

func (h *BoardHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/posts")
	g.GET("", h.handleListPosts)
	g.POST("", h.handleCreatePost)
	g.GET("/search", h.handleSearchPosts)
	g.GET("/:id", h.handleGetPost)
	g.PUT("/:id", h.handleUpdatePost)
	g.DELETE("/:id", h.handleDeletePost)
	g.GET("/:id/comments", h.handleListComments)
	g.POST("/:id/comments", h.handleCreateComment)
	g.PUT("/:id/comments/:commentId", h.handleUpdateComment)
	g.DELETE("/:id/comments/:commentId", h.handleDeleteComment)
}

func queryInt(c echo.Context, name string, def int) (int, error) {
	v := c.QueryParam(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("%s must not be negative", name)
	}
	return n, nil
}

func (h *BoardHandler) handleListPosts(c echo.Context) error {
	page, err := queryInt(c, "page", 0)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid page parameter")
	}
	size, err := queryInt(c, "size", usecase.DefaultPageSize)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid size parameter")
	}

	result, err := h.board.ListPosts(c.Request().Context(), usecase.PageRequest{
		Page:      page,
		Size:      size,
		SortBy:    c.QueryParam("sortBy"),
		Direction: c.QueryParam("direction"),
	})
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, result)
}

func (h *BoardHandler) handleSearchPosts(c echo.Context) error {
	keyword := c.QueryParam("keyword")
	if keyword == "" {
		return presenter.BadRequestMessage(c, "keyword parameter is required")
	}
	page, err := queryInt(c, "page", 0)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid page parameter")
	}
	size, err := queryInt(c, "size", usecase.DefaultPageSize)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid size parameter")
	}

	result, err := h.board.SearchPosts(c.Request().Context(), keyword, page, size)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, result)
}

func (h *BoardHandler) handleGetPost(c echo.Context) error {
	id, err := orderdemo.ParseID(c.Param("id"))
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	post, err := h.board.GetPost(c.Request().Context(), id)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, post)
}

func (h *BoardHandler) handleCreatePost(c echo.Context) error {
	var in usecase.PostInput
	err := c.Bind(&in)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid post payload")
	}

	post, err := h.board.CreatePost(c.Request().Context(), in)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.Created(c, post)
}

func (h *BoardHandler) handleUpdatePost(c echo.Context) error {
	id, err := orderdemo.ParseID(c.Param("id"))
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	var in usecase.PostInput
	err = c.Bind(&in)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid post payload")
	}

	post, err := h.board.UpdatePost(c.Request().Context(), id, in.Title, in.Content)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, post)
}

func (h *BoardHandler) handleDeletePost(c echo.Context) error {
	id, err := orderdemo.ParseID(c.Param("id"))
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	err = h.board.DeletePost(c.Request().Context(), id)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.NoContent(c)
}

func (h *BoardHandler) handleListComments(c echo.Context) error {
	postID, err := orderdemo.ParseID(c.Param("id"))
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	comments, err := h.board.ListComments(c.Request().Context(), postID)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, comments)
}

func (h *BoardHandler) handleCreateComment(c echo.Context) error {
	postID, err := orderdemo.ParseID(c.Param("id"))
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	var in usecase.CommentInput
	err = c.Bind(&in)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid comment payload")
	}

	comment, err := h.board.CreateComment(c.Request().Context(), postID, in)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.Created(c, comment)
}

func (h *BoardHandler) handleUpdateComment(c echo.Context) error {
	postID, err := orderdemo.ParseID(c.Param("id"))
	if err != nil {
		return presenter.BadRequest(c, err)
	}
	commentID, err := orderdemo.ParseID(c.Param("commentId"))
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	var in usecase.CommentInput
	err = c.Bind(&in)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid comment payload")
	}

	comment, err := h.board.UpdateComment(c.Request().Context(), postID, commentID, in.Content)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, comment)
}

func (h *BoardHandler) handleDeleteComment(c echo.Context) error {
	postID, err := orderdemo.ParseID(c.Param("id"))
	if err != nil {
		return presenter.BadRequest(c, err)
	}
	commentID, err := orderdemo.ParseID(c.Param("commentId"))
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	err = h.board.DeleteComment(c.Request().Context(), postID, commentID)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.NoContent(c)
}

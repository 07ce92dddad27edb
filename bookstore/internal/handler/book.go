package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Astemirdum/bookstore-service/bookstore/internal/model"
)

// ListBooks godoc
// @Summary list books filtered by category and title
// @Tags books
// @Produce json
// @Param category query string false "exact category"
// @Param title query string false "title substring"
// @Param page query int false "page"
// @Param size query int false "size"
// @Success 200 {object} model.ListBooks
// @Security Bearer
// @Router /api/v1/books [get]
func (h *Handler) ListBooks(c echo.Context) error {
	page, size, err := pageParams(c)
	if err != nil {
		return err
	}
	books, err := h.svc.ListBooks(c.Request().Context(), model.BookFilter{
		Category: c.QueryParam("category"),
		Title:    c.QueryParam("title"),
		Page:     page,
		Size:     size,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, books)
}

func (h *Handler) GetBook(c echo.Context) error {
	book, err := h.svc.GetBook(c.Request().Context(), c.Param("isbn"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, book)
}

// AddBook godoc
// @Summary add a book, creating its supplier when needed
// @Tags books
// @Accept json
// @Produce json
// @Param request body model.AddBookRequest true "book"
// @Success 201 {object} model.Book
// @Failure 400,409 {object} echo.HTTPError
// @Security Bearer
// @Router /api/v1/books [post]
func (h *Handler) AddBook(c echo.Context) error {
	var req model.AddBookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	book, err := h.svc.AddBook(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, book)
}

func (h *Handler) UpdateBook(c echo.Context) error {
	var req model.FieldUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.UpdateBookField(c.Request().Context(), c.Param("isbn"), req.Field, req.Value); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) DeleteBook(c echo.Context) error {
	if err := h.svc.DeleteBook(c.Request().Context(), c.Param("isbn")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Categories(c echo.Context) error {
	categories, err := h.svc.Categories(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, categories)
}

func (h *Handler) LowStock(c echo.Context) error {
	books, err := h.svc.LowStock(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, books)
}

func (h *Handler) ListSuppliers(c echo.Context) error {
	suppliers, err := h.svc.ListSuppliers(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, suppliers)
}

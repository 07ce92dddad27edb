package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Astemirdum/bookstore-service/bookstore/internal/model"
)

// CreateBill godoc
// @Summary sell the selected books
// @Tags bills
// @Accept json
// @Produce json
// @Param request body model.CreateBillRequest true "selected books"
// @Success 201 {object} model.Bill
// @Failure 400,404,409 {object} echo.HTTPError
// @Security Bearer
// @Router /api/v1/bills [post]
func (h *Handler) CreateBill(c echo.Context) error {
	var req model.CreateBillRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	username, _ := principal(c)
	bill, err := h.svc.CreateBill(c.Request().Context(), username, req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, bill)
}

func (h *Handler) ListBills(c echo.Context) error {
	page, size, err := pageParams(c)
	if err != nil {
		return err
	}
	username, role := principal(c)
	bills, err := h.svc.ListBills(c.Request().Context(), username, role, page, size)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, bills)
}

func (h *Handler) GetBill(c echo.Context) error {
	orderID, err := strconv.ParseInt(c.Param("orderId"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "orderId is invalid")
	}
	username, role := principal(c)
	bill, err := h.svc.GetBill(c.Request().Context(), username, role, orderID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, bill)
}

func (h *Handler) GetSalesStats(c echo.Context) error {
	stats, err := h.svc.GetSalesStats(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, stats)
}

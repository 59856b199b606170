package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"eshop-backend/internal/models"
	"eshop-backend/internal/order"
	"eshop-backend/internal/store"
)

type OrderHandler struct {
	Pipeline *order.Pipeline
	Orders   store.OrderStore
	Producer Publisher
}

type orderResponse struct {
	models.Order
	Items []models.OrderItem `json:"items"`
}

func (h *OrderHandler) GetOrders(c echo.Context) error {
	userID, err := UserID(c)
	if err != nil {
		return err
	}
	if Role(c) == "admin" {
		userID = 0 // admins see every order
	}

	orders, err := h.Orders.ListOrders(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	ctx := c.Request().Context()
	ord, err := h.Orders.FindOrder(ctx, uint(id))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	items, err := h.Pipeline.Resolve(ctx, ord)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusOK, orderResponse{Order: *ord, Items: items})
}

func (h *OrderHandler) CreateOrder(c echo.Context) error {
	userID, err := UserID(c)
	if err != nil {
		return err
	}

	var req struct {
		Items []order.Item `json:"order_items"`
		order.Shipping
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}

	ord, err := h.Pipeline.Submit(c.Request().Context(), req.Items, req.Shipping, userID)
	if err != nil {
		return orderError(err)
	}

	publish(c, h.Producer, "order_events", fmt.Sprint(ord.ID), map[string]any{
		"type":    "order_submitted",
		"orderID": ord.ID,
		"userID":  userID,
		"total":   ord.TotalPrice,
	})

	return c.JSON(http.StatusCreated, ord)
}

func (h *OrderHandler) PatchOrderStatus(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}
	if !models.ValidOrderStatus(req.Status) {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order status")
	}

	ord, err := h.Orders.UpdateOrderStatus(c.Request().Context(), uint(id), req.Status)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	publish(c, h.Producer, "order_events", fmt.Sprint(ord.ID), map[string]any{
		"type":    "order_status_changed",
		"orderID": ord.ID,
		"status":  ord.Status,
	})

	return c.JSON(http.StatusOK, ord)
}

func (h *OrderHandler) DeleteOrder(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	if err := h.Pipeline.Delete(c.Request().Context(), uint(id)); err != nil {
		return orderError(err)
	}

	publish(c, h.Producer, "order_events", fmt.Sprint(id), map[string]any{
		"type":    "order_deleted",
		"orderID": id,
	})

	return c.JSON(http.StatusOK, echo.Map{"message": "order deleted successfully"})
}

func orderError(err error) error {
	switch {
	case errors.Is(err, order.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, order.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

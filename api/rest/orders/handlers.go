package orders

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"codeberg.org/starterkit/server/api/rest/pagination"
	"codeberg.org/starterkit/server/api/rest/response"
	"codeberg.org/starterkit/server/internal/auth"
	"codeberg.org/starterkit/server/internal/errors"
	"codeberg.org/starterkit/server/storefront/orders"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// CreateOrderHandler godoc
// @Summary Create an order
// @Tags orders
// @Accept json
// @Produce json
// @Param request body orders.CreateOrderRequest true "Order"
// @Success 201 {object} response.Envelope{data=orders.Order}
// @Failure 400 {object} errors.Envelope
// @Failure 401 {object} errors.Envelope
// @Router /api/v1/orders [post]
// @Security BearerAuth
func CreateOrderHandler(orderRepo *orders.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := auth.GetUserID(c)
		if !exists {
			errors.Abort(c, errors.Unauthorized("not authenticated"))
			return
		}

		var req orders.CreateOrderRequest
		if err := errors.BindJSON(c, &req); err != nil {
			errors.Abort(c, err)
			return
		}

		order, err := orderRepo.Create(c.Request.Context(), userID, req)
		if err != nil {
			errors.Abort(c, err)
			return
		}

		response.JSON(c, http.StatusCreated, order)
	}
}

// ListOrdersHandler godoc
// @Summary List orders
// @Description Admins see every order, other users only their own
// @Tags orders
// @Produce json
// @Param status query string false "Filter by status" Enums(pending, processing, shipped, delivered, cancelled)
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} response.Envelope{data=OrdersListResponse}
// @Failure 401 {object} errors.Envelope
// @Router /api/v1/orders [get]
// @Security BearerAuth
func ListOrdersHandler(orderRepo *orders.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		params := pagination.FromQuery(c, defaultPageSize, maxPageSize)

		filter := orders.ListFilter{
			CreatedBy: ownerScope(c),
			Status:    c.Query("status"),
		}

		list, total, err := orderRepo.List(c.Request.Context(), filter, params.Limit, params.Offset)
		if err != nil {
			errors.Abort(c, err)
			return
		}

		response.JSON(c, http.StatusOK, OrdersListResponse{
			Orders:     list,
			Pagination: pagination.NewMeta(params, total),
		})
	}
}

// GetOrderHandler godoc
// @Summary Get an order
// @Tags orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} response.Envelope{data=orders.Order}
// @Failure 400 {object} errors.Envelope
// @Failure 404 {object} errors.Envelope
// @Router /api/v1/orders/{id} [get]
// @Security BearerAuth
func GetOrderHandler(orderRepo *orders.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, err := orderRepo.Get(c.Request.Context(), c.Param("id"), ownerScope(c))
		if err != nil {
			errors.Abort(c, err)
			return
		}

		response.JSON(c, http.StatusOK, order)
	}
}

// UpdateOrderHandler godoc
// @Summary Update an order
// @Tags orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param request body orders.UpdateOrderRequest true "Changes"
// @Success 200 {object} response.Envelope{data=orders.Order}
// @Failure 400 {object} errors.Envelope
// @Failure 404 {object} errors.Envelope
// @Router /api/v1/orders/{id} [patch]
// @Security BearerAuth
func UpdateOrderHandler(orderRepo *orders.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req orders.UpdateOrderRequest
		if err := errors.BindJSON(c, &req); err != nil {
			errors.Abort(c, err)
			return
		}

		order, err := orderRepo.Update(c.Request.Context(), c.Param("id"), ownerScope(c), req)
		if err != nil {
			errors.Abort(c, err)
			return
		}

		response.JSON(c, http.StatusOK, order)
	}
}

// DeleteOrderHandler godoc
// @Summary Delete an order
// @Tags orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} response.Envelope{data=response.Message}
// @Failure 404 {object} errors.Envelope
// @Router /api/v1/orders/{id} [delete]
// @Security BearerAuth
func DeleteOrderHandler(orderRepo *orders.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := orderRepo.Delete(c.Request.Context(), c.Param("id"), ownerScope(c)); err != nil {
			errors.Abort(c, err)
			return
		}

		response.JSON(c, http.StatusOK, response.Message{Message: "Order deleted successfully"})
	}
}

// admins act on every order; everyone else only on their own
func ownerScope(c *gin.Context) string {
	if role, _ := auth.GetRole(c); role == auth.RoleAdmin {
		return ""
	}

	userID, _ := auth.GetUserID(c)

	return userID
}

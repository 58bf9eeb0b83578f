package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	orderdomain "github.com/smallbiznis/storefront/internal/order/domain"
)

func (s *Server) CreateOrder(c *gin.Context) {
	var req orderdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("body", "invalid_json", err.Error()))
		return
	}

	resp, err := s.orderSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (s *Server) ListOrders(c *gin.Context) {
	req := orderdomain.ListRequest{
		PageToken:  c.Query("page_token"),
		StoreID:    c.Query("store_id"),
		CustomerID: c.Query("customer_id"),
	}

	if raw := c.Query("page_size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			AbortWithError(c, newValidationError("page_size", "invalid_int", raw))
			return
		}
		req.PageSize = size
	}
	if raw := c.Query("created_from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			AbortWithError(c, newValidationError("created_from", "invalid_timestamp", raw))
			return
		}
		req.CreatedFrom = &from
	}
	if raw := c.Query("created_to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			AbortWithError(c, newValidationError("created_to", "invalid_timestamp", raw))
			return
		}
		req.CreatedTo = &to
	}

	resp, err := s.orderSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetOrderByID(c *gin.Context) {
	resp, err := s.orderSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) DeleteOrder(c *gin.Context) {
	if err := s.orderSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) AddOrderItem(c *gin.Context) {
	var item orderdomain.ItemRequest
	if err := c.ShouldBindJSON(&item); err != nil {
		AbortWithError(c, newValidationError("body", "invalid_json", err.Error()))
		return
	}

	resp, err := s.orderSvc.AddItem(c.Request.Context(), c.Param("id"), item)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (s *Server) UpdateOrderItem(c *gin.Context) {
	var body struct {
		Quantity int64 `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, newValidationError("body", "invalid_json", err.Error()))
		return
	}

	resp, err := s.orderSvc.UpdateItemQuantity(c.Request.Context(), c.Param("id"), c.Param("product_id"), body.Quantity)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) RemoveOrderItem(c *gin.Context) {
	resp, err := s.orderSvc.RemoveItem(c.Request.Context(), c.Param("id"), c.Param("product_id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

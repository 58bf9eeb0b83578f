package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/storefront/internal/integrity"
	productdomain "github.com/smallbiznis/storefront/internal/product/domain"
)

func (s *Server) CreateProduct(c *gin.Context) {
	var req productdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("body", "invalid_json", err.Error()))
		return
	}

	resp, err := s.productSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (s *Server) ListProducts(c *gin.Context) {
	req := productdomain.ListRequest{
		Name:     c.Query("name"),
		StoreID:  c.Query("store_id"),
		Currency: c.Query("currency"),
	}

	resp, err := s.productSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": resp})
}

func (s *Server) GetProductByID(c *gin.Context) {
	resp, err := s.productSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) UpdateProduct(c *gin.Context) {
	var req productdomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("body", "invalid_json", err.Error()))
		return
	}
	req.ID = c.Param("id")

	resp, err := s.productSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) DeleteProduct(c *gin.Context) {
	if err := s.productSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ProductLabels returns the derived display labels for one product, computed
// for the requester named by the X-Requester-ID header.
func (s *Server) ProductLabels(c *gin.Context) {
	requester, err := requesterID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	id, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		AbortWithError(c, productdomain.ErrInvalidID)
		return
	}

	ctx := c.Request.Context()
	record, err := s.prodRepo.FindByID(ctx, s.db, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if record == nil {
		AbortWithError(c, integrity.ErrNotFound)
		return
	}

	store, err := s.displaySvc.DescribeProductStore(ctx, *record, requester)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"store": store})
}

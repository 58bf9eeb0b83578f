package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/storefront/internal/integrity"
	storedomain "github.com/smallbiznis/storefront/internal/store/domain"
)

func (s *Server) CreateStore(c *gin.Context) {
	var req storedomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("body", "invalid_json", err.Error()))
		return
	}

	resp, err := s.storeSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (s *Server) ListStores(c *gin.Context) {
	req := storedomain.ListRequest{
		Name:    c.Query("name"),
		AdminID: c.Query("admin_id"),
	}

	resp, err := s.storeSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stores": resp})
}

func (s *Server) GetStoreByID(c *gin.Context) {
	resp, err := s.storeSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) UpdateStore(c *gin.Context) {
	var req storedomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("body", "invalid_json", err.Error()))
		return
	}
	req.ID = c.Param("id")

	resp, err := s.storeSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) DeleteStore(c *gin.Context) {
	if err := s.storeSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// StoreLabels returns the derived display labels for one store, computed for
// the requester named by the X-Requester-ID header.
func (s *Server) StoreLabels(c *gin.Context) {
	requester, err := requesterID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	id, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		AbortWithError(c, storedomain.ErrInvalidID)
		return
	}

	ctx := c.Request.Context()
	record, err := s.storeRepo.FindByID(ctx, s.db, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if record == nil {
		AbortWithError(c, integrity.ErrNotFound)
		return
	}

	admin, err := s.displaySvc.DescribeStoreAdmin(ctx, *record, requester)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	managers, err := s.displaySvc.DescribeStoreManagerCount(ctx, *record, requester)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	products, err := s.displaySvc.DescribeStoreProductCount(ctx, *record, requester)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"admin":         admin,
		"manager_count": managers,
		"product_count": products,
	})
}

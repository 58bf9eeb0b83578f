package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	userdomain "github.com/smallbiznis/storefront/internal/user/domain"
)

func (s *Server) CreateUser(c *gin.Context) {
	var req userdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("body", "invalid_json", err.Error()))
		return
	}

	resp, err := s.userSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (s *Server) ListUsers(c *gin.Context) {
	req := userdomain.ListRequest{
		Username: c.Query("username"),
		Role:     c.Query("role"),
	}

	resp, err := s.userSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": resp})
}

func (s *Server) GetUserByID(c *gin.Context) {
	resp, err := s.userSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) DeleteUser(c *gin.Context) {
	if err := s.userSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

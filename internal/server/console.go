package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/storefront/internal/console"
	"github.com/smallbiznis/storefront/internal/integrity"
)

const defaultBrowseLimit = 100

// BrowseEntity lists records for any registered entity. Query parameters
// matching the entity's filter columns narrow the listing; q= runs a
// substring search over its search fields.
func (s *Server) BrowseEntity(c *gin.Context) {
	def, ok := s.registry.Get(c.Param("entity"))
	if !ok {
		AbortWithError(c, integrity.ErrNotFound)
		return
	}

	limit := defaultBrowseLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			AbortWithError(c, newValidationError("limit", "invalid_int", raw))
			return
		}
		limit = parsed
	}

	req := console.BrowseRequest{
		Filters: c.Request.URL.Query(),
		Search:  c.Query("q"),
		Limit:   limit,
	}

	rows, err := console.Browse(c.Request.Context(), s.db, def, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"entity":  def.Name,
		"columns": def.ListDisplay,
		"rows":    rows,
	})
}

// EntityDetail fetches one record, plus inline rows when the entity declares
// them.
func (s *Server) EntityDetail(c *gin.Context) {
	def, ok := s.registry.Get(c.Param("entity"))
	if !ok {
		AbortWithError(c, integrity.ErrNotFound)
		return
	}

	row, inline, err := console.Detail(c.Request.Context(), s.db, def, c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	body := gin.H{"entity": def.Name, "record": row}
	if def.Inline != nil {
		body[def.Inline.Name] = inline
	}
	c.JSON(http.StatusOK, body)
}

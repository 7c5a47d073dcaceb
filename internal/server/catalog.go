package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	catalogdomain "github.com/odontix/odontix/internal/catalog/domain"
)

type createModuleRequest struct {
	Key          string         `json:"key"`
	Name         string         `json:"name"`
	Description  *string        `json:"description"`
	Category     string         `json:"category"`
	DisplayOrder int            `json:"display_order"`
	Enabled      *bool          `json:"enabled"`
	Metadata     map[string]any `json:"metadata"`
}

type updateModuleRequest struct {
	Name         *string        `json:"name,omitempty"`
	Description  *string        `json:"description,omitempty"`
	Category     *string        `json:"category,omitempty"`
	DisplayOrder *int           `json:"display_order,omitempty"`
	Enabled      *bool          `json:"enabled,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

func (s *Server) CreateCatalogModule(c *gin.Context) {
	var req createModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.catalogSvc.Create(c.Request.Context(), catalogdomain.CreateRequest{
		Key:          strings.TrimSpace(req.Key),
		Name:         strings.TrimSpace(req.Name),
		Description:  req.Description,
		Category:     strings.TrimSpace(req.Category),
		DisplayOrder: req.DisplayOrder,
		Enabled:      req.Enabled,
		Metadata:     req.Metadata,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateCatalogModule(c *gin.Context) {
	key := strings.TrimSpace(c.Param("key"))

	var req updateModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.catalogSvc.Update(c.Request.Context(), catalogdomain.UpdateRequest{
		Key:          key,
		Name:         req.Name,
		Description:  req.Description,
		Category:     req.Category,
		DisplayOrder: req.DisplayOrder,
		Enabled:      req.Enabled,
		Metadata:     req.Metadata,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListCatalogModules(c *gin.Context) {
	var query struct {
		Category string `form:"category"`
		Enabled  string `form:"enabled"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var enabled *bool
	if raw := strings.TrimSpace(query.Enabled); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			AbortWithError(c, newValidationError("enabled", "invalid_enabled", "invalid enabled"))
			return
		}
		enabled = &parsed
	}

	resp, err := s.catalogSvc.List(c.Request.Context(), catalogdomain.ListRequest{
		Category: strings.TrimSpace(query.Category),
		Enabled:  enabled,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DisableCatalogModule(c *gin.Context) {
	key := strings.TrimSpace(c.Param("key"))

	resp, err := s.catalogSvc.Disable(c.Request.Context(), key)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

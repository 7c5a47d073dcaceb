package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	activationdomain "github.com/odontix/odontix/internal/activation/domain"
)

// ListTenantModules returns the full annotated module list for the calling
// tenant.
func (s *Server) ListTenantModules(c *gin.Context) {
	tenantID := c.GetString(ctxKeyTenantID)

	views, err := s.activationSvc.ListModules(c.Request.Context(), tenantID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": views})
}

// ToggleModule flips the module's activation state for the calling tenant.
// The contract is flip-from-current, not set-to-target: toggling an active
// module deactivates it.
func (s *Server) ToggleModule(c *gin.Context) {
	key := strings.TrimSpace(c.Param("key"))
	if key == "" {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.activationSvc.Toggle(c.Request.Context(), activationdomain.ToggleRequest{
		TenantID:  c.GetString(ctxKeyTenantID),
		ModuleKey: key,
		ActorID:   c.GetString(ctxKeyActorID),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

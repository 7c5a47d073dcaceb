package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	subscriptiondomain "github.com/odontix/odontix/internal/subscription/domain"
)

type grantModuleRequest struct {
	ModuleKey string `json:"module_key"`
	Activate  bool   `json:"activate"`
}

func (s *Server) GrantModule(c *gin.Context) {
	tenantID := strings.TrimSpace(c.Param("tenantId"))

	var req grantModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.subscriptionSvc.Grant(c.Request.Context(), subscriptiondomain.GrantRequest{
		TenantID:  tenantID,
		ModuleKey: strings.TrimSpace(req.ModuleKey),
		Activate:  req.Activate,
		ActorID:   strings.TrimSpace(c.GetHeader(headerActorID)),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RevokeModule(c *gin.Context) {
	tenantID := strings.TrimSpace(c.Param("tenantId"))
	key := strings.TrimSpace(c.Param("key"))

	if err := s.subscriptionSvc.Revoke(c.Request.Context(), tenantID, key); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"revoked": true}})
}

func (s *Server) ListTenantSubscriptions(c *gin.Context) {
	tenantID := strings.TrimSpace(c.Param("tenantId"))

	resp, err := s.subscriptionSvc.ListForTenant(c.Request.Context(), tenantID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

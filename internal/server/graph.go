package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	graphdomain "github.com/odontix/odontix/internal/graph/domain"
)

type addDependencyRequest struct {
	ModuleKey    string `json:"module_key"`
	DependsOnKey string `json:"depends_on_key"`
}

func (s *Server) AddDependency(c *gin.Context) {
	var req addDependencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.graphSvc.AddEdge(c.Request.Context(), graphdomain.AddEdgeRequest{
		ModuleKey:    strings.TrimSpace(req.ModuleKey),
		DependsOnKey: strings.TrimSpace(req.DependsOnKey),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RemoveDependency(c *gin.Context) {
	moduleKey := strings.TrimSpace(c.Param("key"))
	dependsOnKey := strings.TrimSpace(c.Param("dependsOn"))

	if err := s.graphSvc.RemoveEdge(c.Request.Context(), moduleKey, dependsOnKey); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"removed": true}})
}

func (s *Server) ListDependencies(c *gin.Context) {
	resp, err := s.graphSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

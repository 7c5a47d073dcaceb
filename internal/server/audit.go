package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/odontix/odontix/internal/audit/domain"
	"github.com/odontix/odontix/pkg/db/pagination"
)

type listAuditLogsRequest struct {
	PageToken string `form:"page_token"`
	PageSize  int32  `form:"page_size"`
	Action    string `form:"action"`
	ModuleKey string `form:"module_key"`
	StartAt   string `form:"start_at"`
	EndAt     string `form:"end_at"`
}

func (s *Server) ListAuditLogs(c *gin.Context) {
	tenantID := strings.TrimSpace(c.Param("tenantId"))

	var req listAuditLogsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	listReq := auditdomain.ListRequest{
		Pagination: pagination.Pagination{
			PageToken: req.PageToken,
			PageSize:  req.PageSize,
		},
		TenantID:  tenantID,
		Action:    strings.TrimSpace(req.Action),
		ModuleKey: strings.TrimSpace(req.ModuleKey),
	}

	if req.StartAt != "" {
		t, err := time.Parse(time.RFC3339, req.StartAt)
		if err != nil {
			AbortWithError(c, newValidationError("start_at", "invalid_timestamp", "must be an RFC 3339 timestamp"))
			return
		}
		listReq.StartAt = &t
	}
	if req.EndAt != "" {
		t, err := time.Parse(time.RFC3339, req.EndAt)
		if err != nil {
			AbortWithError(c, newValidationError("end_at", "invalid_timestamp", "must be an RFC 3339 timestamp"))
			return
		}
		listReq.EndAt = &t
	}

	resp, err := s.auditSvc.List(c.Request.Context(), listReq)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

package ops

import (
	"strconv"
	"strings"

	handlershared "github.com/lonqui-express/internal/http/handlers/shared"
	"github.com/lonqui-express/internal/http/response"
	"github.com/lonqui-express/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListAuditLogs 审计日志列表，仅管理员路由挂载
func (h *Handler) ListAuditLogs(c *gin.Context) {
	if _, ok := getActor(c); !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	action := strings.TrimSpace(c.Query("action"))
	entityType := strings.TrimSpace(c.Query("entity_type"))
	outcome := strings.TrimSpace(c.Query("outcome"))
	actorIDStr := strings.TrimSpace(c.Query("actor_id"))
	entityIDStr := strings.TrimSpace(c.Query("entity_id"))
	createdFromRaw := strings.TrimSpace(c.Query("created_from"))
	createdToRaw := strings.TrimSpace(c.Query("created_to"))

	createdFrom, err := parseTimeNullable(createdFromRaw)
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid created_from, expected RFC3339", err)
		return
	}
	createdTo, err := parseTimeNullable(createdToRaw)
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid created_to, expected RFC3339", err)
		return
	}

	var actorID, entityID uint
	if actorIDStr != "" {
		if parsed, err := strconv.ParseUint(actorIDStr, 10, 64); err == nil {
			actorID = uint(parsed)
		}
	}
	if entityIDStr != "" {
		if parsed, err := strconv.ParseUint(entityIDStr, 10, 64); err == nil {
			entityID = uint(parsed)
		}
	}

	logs, total, err := h.AuditService.ListForAdmin(repository.AuditLogListFilter{
		Page:        page,
		PageSize:    pageSize,
		ActorID:     actorID,
		Action:      action,
		EntityType:  entityType,
		EntityID:    entityID,
		Outcome:     outcome,
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "failed to fetch audit logs", err)
		return
	}

	response.SuccessWithPage(c, logs, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	})
}

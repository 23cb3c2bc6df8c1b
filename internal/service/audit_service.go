package service

import (
	"strings"
	"time"

	"github.com/lonqui-express/internal/constants"
	"github.com/lonqui-express/internal/logger"
	"github.com/lonqui-express/internal/models"
	"github.com/lonqui-express/internal/repository"
)

// AuditRecordInput 审计记录输入
type AuditRecordInput struct {
	Actor     Actor
	Action    string
	EntityID  uint
	Before    models.JSON
	After     models.JSON
	Outcome   string
	Detail    string
	RequestID string
}

// AuditService 审计服务。记录每一次变更尝试，成功与失败都留痕。
type AuditService struct {
	repo repository.AuditLogRepository
}

// NewAuditService 创建审计服务
func NewAuditService(repo repository.AuditLogRepository) *AuditService {
	return &AuditService{repo: repo}
}

// Record 写入一条审计记录。审计失败只记日志，绝不向调用方上抛。
func (s *AuditService) Record(input AuditRecordInput) {
	if s == nil || s.repo == nil {
		return
	}
	if strings.TrimSpace(input.Action) == "" {
		return
	}
	outcome := input.Outcome
	if outcome == "" {
		outcome = constants.AuditOutcomeSuccess
	}

	item := &models.AuditLog{
		ActorID:    input.Actor.ID,
		ActorRole:  strings.TrimSpace(input.Actor.Role),
		Action:     strings.TrimSpace(input.Action),
		EntityType: constants.AuditEntityShipment,
		EntityID:   input.EntityID,
		BeforeJSON: input.Before,
		AfterJSON:  input.After,
		Outcome:    outcome,
		Detail:     strings.TrimSpace(input.Detail),
		RequestID:  strings.TrimSpace(input.RequestID),
		CreatedAt:  time.Now(),
	}
	if err := s.repo.Create(item); err != nil {
		logger.Errorw("audit_record_failed",
			"actor_id", input.Actor.ID,
			"action", input.Action,
			"entity_id", input.EntityID,
			"error", err,
		)
	}
}

// ListForAdmin 管理端查询审计日志
func (s *AuditService) ListForAdmin(filter repository.AuditLogListFilter) ([]models.AuditLog, int64, error) {
	if s == nil || s.repo == nil {
		return []models.AuditLog{}, 0, nil
	}
	return s.repo.List(filter)
}

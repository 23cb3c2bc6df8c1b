package ops

import (
	"errors"
	"strconv"

	handlershared "github.com/lonqui-express/internal/http/handlers/shared"
	"github.com/lonqui-express/internal/http/response"
	"github.com/lonqui-express/internal/repository"
	"github.com/lonqui-express/internal/service"

	"github.com/gin-gonic/gin"
)

// ListNotifications 当前用户的通知列表
func (h *Handler) ListNotifications(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)
	onlyUnread := c.Query("only_unread") == "true"

	notifications, total, err := h.NotificationService.ListForUser(repository.NotificationListFilter{
		Page:       page,
		PageSize:   pageSize,
		UserID:     actor.ID,
		OnlyUnread: onlyUnread,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "failed to fetch notifications", err)
		return
	}

	response.SuccessWithPage(c, notifications, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	})
}

// MarkNotificationRead 将通知标记为已读，只能操作属于自己的通知
func (h *Handler) MarkNotificationRead(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	notificationID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	if err := h.NotificationService.MarkRead(actor.ID, notificationID); err != nil {
		if errors.Is(err, service.ErrNotificationRefInvalid) {
			respondError(c, response.CodeNotFound, "notification not found or already read", nil)
			return
		}
		respondError(c, response.CodeInternal, "failed to mark notification read", err)
		return
	}

	response.Success(c, nil)
}

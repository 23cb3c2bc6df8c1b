package public

import (
	"errors"
	"strings"

	handlershared "github.com/lonqui-express/internal/http/handlers/shared"
	"github.com/lonqui-express/internal/http/response"
	"github.com/lonqui-express/internal/service"

	"github.com/gin-gonic/gin"
)

// TrackShipment 按追踪码查询运单公开快照
func (h *Handler) TrackShipment(c *gin.Context) {
	code := strings.TrimSpace(c.Param("code"))
	if code == "" {
		handlershared.RespondError(c, response.CodeBadRequest, "tracking code is required", nil)
		return
	}

	snapshot, err := h.TrackingService.PublicSnapshot(c.Request.Context(), code)
	if err != nil {
		if errors.Is(err, service.ErrShipmentNotFound) {
			handlershared.RespondError(c, response.CodeNotFound, "no shipment matches this tracking code", nil)
			return
		}
		handlershared.RespondError(c, response.CodeInternal, "failed to fetch tracking information", err)
		return
	}

	response.Success(c, snapshot)
}

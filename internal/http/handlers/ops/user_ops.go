package ops

import (
	"errors"
	"strconv"
	"strings"

	handlershared "github.com/lonqui-express/internal/http/handlers/shared"
	"github.com/lonqui-express/internal/http/response"
	"github.com/lonqui-express/internal/service"

	"github.com/gin-gonic/gin"
)

// ListDrivers 在岗司机目录，供运营端指派运单时挑选
func (h *Handler) ListDrivers(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)
	keyword := strings.TrimSpace(c.Query("keyword"))

	drivers, total, err := h.UserService.ListDrivers(actor, keyword, page, pageSize)
	if err != nil {
		if errors.Is(err, service.ErrUnauthorized) {
			respondError(c, response.CodeForbidden, "operation not allowed for this actor", nil)
			return
		}
		respondError(c, response.CodeInternal, "failed to fetch drivers", err)
		return
	}

	response.SuccessWithPage(c, drivers, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	})
}

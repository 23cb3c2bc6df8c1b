package ops

import "github.com/lonqui-express/internal/provider"

// Handler 鉴权接口处理器入口
// 说明：该处理器用于操作员、司机与管理员侧 API。
type Handler struct {
	*provider.Container
}

// New 创建处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}

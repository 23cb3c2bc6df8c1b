package service

import (
	"strings"

	"github.com/lonqui-express/internal/constants"
	"github.com/lonqui-express/internal/models"
	"github.com/lonqui-express/internal/repository"
)

// UserService 用户目录服务。指派运单时运营端从这里挑选在岗司机。
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService 创建用户目录服务
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// ListDrivers 查询可指派的在岗司机，仅运营/管理员可见。
func (s *UserService) ListDrivers(actor Actor, keyword string, page, pageSize int) ([]models.User, int64, error) {
	if !actor.CanManageShipments() {
		return nil, 0, ErrUnauthorized
	}
	return s.userRepo.List(repository.UserListFilter{
		Role:     constants.RoleDriver,
		Status:   constants.UserStatusActive,
		Keyword:  strings.TrimSpace(keyword),
		Page:     page,
		PageSize: pageSize,
	})
}

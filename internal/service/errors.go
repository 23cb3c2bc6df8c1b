package service

import "errors"

// 业务错误，handler 层据此映射响应码。
var (
	// 校验类错误
	ErrSenderRequired         = errors.New("sender name, address and city are required")
	ErrRecipientRequired      = errors.New("recipient name, address and city are required")
	ErrDescriptionRequired    = errors.New("description is required")
	ErrDeclaredValueInvalid   = errors.New("declared value must not be negative")
	ErrReceiverNameRequired   = errors.New("receiver name is required")
	ErrReasonRequired         = errors.New("reason is required")
	ErrDriverRequired         = errors.New("driver id is required")
	ErrShipmentRefRequired    = errors.New("shipment id or tracking code is required")
	ErrNotificationRefInvalid = errors.New("invalid notification id")

	// 资源类错误
	ErrShipmentNotFound = errors.New("shipment not found")
	ErrDriverNotFound   = errors.New("driver not found")
	ErrUserNotFound     = errors.New("user not found")

	// 权限与状态类错误
	ErrUnauthorized      = errors.New("actor is not allowed to perform this operation")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrConflict          = errors.New("shipment was modified concurrently")

	// 依赖类错误
	ErrStoreUnavailable      = errors.New("shipment store unavailable")
	ErrTrackingCodeExhausted = errors.New("unable to generate a unique tracking code")

	// 身份凭证错误
	ErrTokenInvalid = errors.New("invalid or expired token")

	// 邮件错误
	ErrEmailServiceDisabled      = errors.New("email service is disabled")
	ErrEmailServiceNotConfigured = errors.New("email service is not configured")
	ErrInvalidEmail              = errors.New("invalid email address")
)

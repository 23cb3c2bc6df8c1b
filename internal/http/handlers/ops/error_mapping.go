package ops

import (
	"errors"

	"github.com/lonqui-express/internal/http/response"
	"github.com/lonqui-express/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	msg    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackMsg string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.msg, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackMsg, err)
}

func concatMappedHandlerErrors(groups ...[]mappedHandlerError) []mappedHandlerError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]mappedHandlerError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

var shipmentCommonErrorRules = []mappedHandlerError{
	{target: service.ErrShipmentRefRequired, code: response.CodeBadRequest, msg: "shipment id or tracking code is required"},
	{target: service.ErrShipmentNotFound, code: response.CodeNotFound, msg: "shipment not found"},
	{target: service.ErrUnauthorized, code: response.CodeForbidden, msg: "operation not allowed for this actor"},
	{target: service.ErrInvalidTransition, code: response.CodeConflict, msg: "shipment status does not allow this operation"},
	{target: service.ErrConflict, code: response.CodeConflict, msg: "shipment was modified concurrently, retry"},
}

var shipmentCreateErrorRules = []mappedHandlerError{
	{target: service.ErrSenderRequired, code: response.CodeBadRequest, msg: "sender name, address and city are required"},
	{target: service.ErrRecipientRequired, code: response.CodeBadRequest, msg: "recipient name, address and city are required"},
	{target: service.ErrDescriptionRequired, code: response.CodeBadRequest, msg: "description is required"},
	{target: service.ErrDeclaredValueInvalid, code: response.CodeBadRequest, msg: "declared value must not be negative"},
	{target: service.ErrTrackingCodeExhausted, code: response.CodeInternal, msg: "could not assign a tracking code, retry"},
}

var shipmentAssignErrorRules = []mappedHandlerError{
	{target: service.ErrDriverRequired, code: response.CodeBadRequest, msg: "driver id is required"},
	{target: service.ErrDriverNotFound, code: response.CodeNotFound, msg: "driver not found or not active"},
}

var shipmentDeliverErrorRules = []mappedHandlerError{
	{target: service.ErrReceiverNameRequired, code: response.CodeBadRequest, msg: "receiver name is required"},
}

var shipmentReasonErrorRules = []mappedHandlerError{
	{target: service.ErrReasonRequired, code: response.CodeBadRequest, msg: "reason is required"},
}

func respondShipmentCreateError(c *gin.Context, err error) {
	respondWithMappedError(c, err, concatMappedHandlerErrors(shipmentCreateErrorRules, shipmentCommonErrorRules), response.CodeInternal, "failed to create shipment")
}

func respondShipmentAssignError(c *gin.Context, err error) {
	respondWithMappedError(c, err, concatMappedHandlerErrors(shipmentAssignErrorRules, shipmentCommonErrorRules), response.CodeInternal, "failed to assign driver")
}

func respondShipmentTransitionError(c *gin.Context, err error) {
	respondWithMappedError(c, err, concatMappedHandlerErrors(shipmentDeliverErrorRules, shipmentReasonErrorRules, shipmentCommonErrorRules), response.CodeInternal, "failed to update shipment")
}

func respondShipmentFetchError(c *gin.Context, err error) {
	respondWithMappedError(c, err, shipmentCommonErrorRules, response.CodeInternal, "failed to fetch shipment")
}

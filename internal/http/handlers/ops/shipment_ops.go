package ops

import (
	"strconv"
	"strings"
	"time"

	handlershared "github.com/lonqui-express/internal/http/handlers/shared"
	"github.com/lonqui-express/internal/http/response"
	"github.com/lonqui-express/internal/models"
	"github.com/lonqui-express/internal/repository"
	"github.com/lonqui-express/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// PartyRequest 收发件方请求载荷
type PartyRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
	City    string `json:"city"`
	TaxID   string `json:"tax_id"`
}

func (r PartyRequest) toModel() models.Party {
	return models.Party{
		Name:    r.Name,
		Phone:   r.Phone,
		Email:   r.Email,
		Address: r.Address,
		City:    r.City,
		TaxID:   r.TaxID,
	}
}

// CreateShipmentRequest 创建运单请求
type CreateShipmentRequest struct {
	Sender        PartyRequest     `json:"sender"`
	Recipient     PartyRequest     `json:"recipient"`
	Description   string           `json:"description"`
	Weight        *decimal.Decimal `json:"weight"`
	DeclaredValue decimal.Decimal  `json:"declared_value"`
}

// AssignDriverRequest 指派司机请求
type AssignDriverRequest struct {
	DriverID uint `json:"driver_id"`
}

// MarkInTransitRequest 开始运输请求
type MarkInTransitRequest struct {
	Note      string   `json:"note"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// MarkDeliveredRequest 确认交付请求
type MarkDeliveredRequest struct {
	ReceiverName  string   `json:"receiver_name"`
	ReceiverTaxID string   `json:"receiver_tax_id"`
	ProofRef      string   `json:"proof_ref"`
	Notes         string   `json:"notes"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
}

// MarkNotDeliveredRequest 交付失败请求
type MarkNotDeliveredRequest struct {
	Reason    string   `json:"reason"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// CancelShipmentRequest 取消运单请求
type CancelShipmentRequest struct {
	Reason string `json:"reason"`
}

// ShipmentHistoryResponse 运单履历返回
type ShipmentHistoryResponse struct {
	Shipment *models.Shipment       `json:"shipment"`
	Events   []models.TrackingEvent `json:"events"`
	Count    int64                  `json:"count"`
}

// CreateShipment 创建运单
func (h *Handler) CreateShipment(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	var req CreateShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request payload", err)
		return
	}

	shipment, err := h.ShipmentService.Create(actor, service.CreateShipmentInput{
		Sender:        req.Sender.toModel(),
		Recipient:     req.Recipient.toModel(),
		Description:   req.Description,
		Weight:        req.Weight,
		DeclaredValue: req.DeclaredValue,
		RequestID:     getRequestID(c),
	})
	if err != nil {
		respondShipmentCreateError(c, err)
		return
	}

	response.Success(c, shipment)
}

// AssignDriver 指派司机
func (h *Handler) AssignDriver(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	shipmentID, ok := parseUintParam(c, "ref")
	if !ok {
		return
	}

	var req AssignDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request payload", err)
		return
	}

	shipment, err := h.ShipmentService.AssignDriver(actor, service.AssignDriverInput{
		ShipmentID: shipmentID,
		DriverID:   req.DriverID,
		RequestID:  getRequestID(c),
	})
	if err != nil {
		respondShipmentAssignError(c, err)
		return
	}

	response.Success(c, shipment)
}

// MarkInTransit 开始运输
func (h *Handler) MarkInTransit(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	shipmentID, ok := parseUintParam(c, "ref")
	if !ok {
		return
	}

	var req MarkInTransitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request payload", err)
		return
	}

	shipment, err := h.ShipmentService.MarkInTransit(actor, service.MarkInTransitInput{
		ShipmentID: shipmentID,
		Note:       req.Note,
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
		RequestID:  getRequestID(c),
	})
	if err != nil {
		respondShipmentTransitionError(c, err)
		return
	}

	response.Success(c, shipment)
}

// MarkDelivered 确认交付
func (h *Handler) MarkDelivered(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	shipmentID, ok := parseUintParam(c, "ref")
	if !ok {
		return
	}

	var req MarkDeliveredRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request payload", err)
		return
	}

	shipment, err := h.ShipmentService.MarkDelivered(actor, service.MarkDeliveredInput{
		ShipmentID:    shipmentID,
		ReceiverName:  req.ReceiverName,
		ReceiverTaxID: req.ReceiverTaxID,
		ProofRef:      req.ProofRef,
		Notes:         req.Notes,
		Latitude:      req.Latitude,
		Longitude:     req.Longitude,
		RequestID:     getRequestID(c),
	})
	if err != nil {
		respondShipmentTransitionError(c, err)
		return
	}

	response.Success(c, shipment)
}

// MarkNotDelivered 交付失败
func (h *Handler) MarkNotDelivered(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	shipmentID, ok := parseUintParam(c, "ref")
	if !ok {
		return
	}

	var req MarkNotDeliveredRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request payload", err)
		return
	}

	shipment, err := h.ShipmentService.MarkNotDelivered(actor, service.MarkNotDeliveredInput{
		ShipmentID: shipmentID,
		Reason:     req.Reason,
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
		RequestID:  getRequestID(c),
	})
	if err != nil {
		respondShipmentTransitionError(c, err)
		return
	}

	response.Success(c, shipment)
}

// CancelShipment 取消运单
func (h *Handler) CancelShipment(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	shipmentID, ok := parseUintParam(c, "ref")
	if !ok {
		return
	}

	var req CancelShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request payload", err)
		return
	}

	shipment, err := h.ShipmentService.Cancel(actor, service.CancelShipmentInput{
		ShipmentID: shipmentID,
		Reason:     req.Reason,
		RequestID:  getRequestID(c),
	})
	if err != nil {
		respondShipmentTransitionError(c, err)
		return
	}

	response.Success(c, shipment)
}

// ListShipments 运单列表，司机只能看到指派给自己的运单
func (h *Handler) ListShipments(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	status := strings.TrimSpace(c.Query("status"))
	trackingCode := strings.TrimSpace(c.Query("tracking_code"))
	driverIDStr := strings.TrimSpace(c.Query("driver_id"))
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
	var driverID uint
	if driverIDStr != "" {
		if parsed, err := strconv.ParseUint(driverIDStr, 10, 64); err == nil {
			driverID = uint(parsed)
		}
	}

	shipments, total, err := h.ShipmentQueryService.List(actor, repository.ShipmentListFilter{
		Page:         page,
		PageSize:     pageSize,
		Status:       status,
		TrackingCode: trackingCode,
		DriverID:     driverID,
		CreatedFrom:  createdFrom,
		CreatedTo:    createdTo,
	})
	if err != nil {
		respondShipmentFetchError(c, err)
		return
	}

	response.SuccessWithPage(c, shipments, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	})
}

// GetShipment 运单详情，:ref 可为数字 ID 或追踪码
func (h *Handler) GetShipment(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	ref := strings.TrimSpace(c.Param("ref"))
	shipment, err := h.ShipmentQueryService.GetByIDOrCode(actor, ref)
	if err != nil {
		respondShipmentFetchError(c, err)
		return
	}

	response.Success(c, shipment)
}

// GetShipmentHistory 运单追踪流水
func (h *Handler) GetShipmentHistory(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	ref := strings.TrimSpace(c.Param("ref"))
	shipment, err := h.ShipmentQueryService.GetByIDOrCode(actor, ref)
	if err != nil {
		respondShipmentFetchError(c, err)
		return
	}

	events, err := h.TrackingService.History(actor, shipment.ID)
	if err != nil {
		respondShipmentFetchError(c, err)
		return
	}
	count, err := h.TrackingService.HistoryCount(actor, shipment.ID)
	if err != nil {
		respondShipmentFetchError(c, err)
		return
	}

	response.Success(c, ShipmentHistoryResponse{
		Shipment: shipment,
		Events:   events,
		Count:    count,
	})
}

// GetShipmentStats 运单统计
func (h *Handler) GetShipmentStats(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	stats, err := h.ShipmentQueryService.Stats(actor)
	if err != nil {
		respondShipmentFetchError(c, err)
		return
	}

	response.Success(c, stats)
}

func parseTimeNullable(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

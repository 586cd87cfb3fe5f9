package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"catering/internal/auth"
	"catering/internal/domain"
	"catering/internal/dto"
	apperrors "catering/internal/errors"
)

var deliveryHourPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

type OrderUseCase interface {
	CreateOrder(ctx context.Context, ownerID uint, spec dto.CreateOrderSpec) (*domain.Order, error)
	GetOrder(ctx context.Context, id uint, requester domain.Requester) (*domain.Order, error)
	ListOrders(ctx context.Context, requester domain.Requester, filter dto.ListOrdersFilter, page dto.PageRequest) (*dto.OrderPage, error)
	UpdateOrderDetails(ctx context.Context, id uint, patch dto.UpdateOrderDetails, requester domain.Requester) (*domain.Order, error)
	CancelOrder(ctx context.Context, id uint, requester domain.Requester, reason string) (*domain.Order, error)
	TransitionStatus(ctx context.Context, id uint, newStatus domain.Status, notes *string) (*domain.Order, error)
	GetStatusHistory(ctx context.Context, id uint, requester domain.Requester) ([]domain.StatusHistoryEntry, error)
}

type OrderController struct {
	useCase OrderUseCase
	logger  *zap.Logger
}

func NewOrderController(useCase OrderUseCase, logger *zap.Logger) *OrderController {
	return &OrderController{
		useCase: useCase,
		logger:  logger,
	}
}

func (c *OrderController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	requester, ok := auth.RequesterFromContext(r.Context())
	if !ok {
		c.writeErrorResponse(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing requester", logger)
		return
	}

	var req dto.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	spec, validationErr := c.validateCreateOrderRequest(req)
	if validationErr != nil {
		ve, _ := apperrors.IsValidationError(validationErr)
		c.writeValidationError(w, ve.Message, ve.Details...)
		return
	}

	order, err := c.useCase.CreateOrder(r.Context(), requester.ID, *spec)
	if err != nil {
		c.handleUseCaseError(w, err, logger)
		return
	}

	c.writeJSON(w, http.StatusCreated, toOrderResponse(order))
}

func (c *OrderController) GetOrder(w http.ResponseWriter, r *http.Request) {
	logger := c.logger.With(zap.String("traceId", uuid.New().String()))

	requester, orderID, ok := c.requesterAndOrderID(w, r, logger)
	if !ok {
		return
	}

	order, err := c.useCase.GetOrder(r.Context(), orderID, requester)
	if err != nil {
		c.handleUseCaseError(w, err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, toOrderResponse(order))
}

func (c *OrderController) ListOrders(w http.ResponseWriter, r *http.Request) {
	logger := c.logger.With(zap.String("traceId", uuid.New().String()))

	requester, ok := auth.RequesterFromContext(r.Context())
	if !ok {
		c.writeErrorResponse(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing requester", logger)
		return
	}

	var filter dto.ListOrdersFilter
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := domain.Status(raw)
		if !status.IsValid() {
			c.writeValidationError(w, "validation failed", apperrors.ValidationDetail{
				Field:   "status",
				Message: "unknown status value",
			})
			return
		}
		filter.Status = &status
	}
	if raw := r.URL.Query().Get("ownerId"); raw != "" {
		ownerID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.writeValidationError(w, "validation failed", apperrors.ValidationDetail{
				Field:   "ownerId",
				Message: "ownerId must be a positive integer",
			})
			return
		}
		id := uint(ownerID)
		filter.OwnerID = &id
	}

	var page dto.PageRequest
	if raw := r.URL.Query().Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil {
			c.writeValidationError(w, "validation failed", apperrors.ValidationDetail{
				Field:   "offset",
				Message: "offset must be an integer",
			})
			return
		}
		page.Offset = offset
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			c.writeValidationError(w, "validation failed", apperrors.ValidationDetail{
				Field:   "limit",
				Message: "limit must be an integer",
			})
			return
		}
		page.Limit = limit
	}

	result, err := c.useCase.ListOrders(r.Context(), requester, filter, page)
	if err != nil {
		c.handleUseCaseError(w, err, logger)
		return
	}

	items := make([]dto.OrderResponse, len(result.Items))
	for i := range result.Items {
		items[i] = toOrderResponse(&result.Items[i])
	}

	c.writeJSON(w, http.StatusOK, dto.OrderListResponse{
		Items:  items,
		Total:  result.Total,
		Offset: result.Offset,
		Limit:  result.Limit,
	})
}

func (c *OrderController) UpdateOrderDetails(w http.ResponseWriter, r *http.Request) {
	logger := c.logger.With(zap.String("traceId", uuid.New().String()))

	requester, orderID, ok := c.requesterAndOrderID(w, r, logger)
	if !ok {
		return
	}

	var req dto.UpdateOrderDetailsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	patch, validationErr := c.validateUpdateOrderRequest(req)
	if validationErr != nil {
		ve, _ := apperrors.IsValidationError(validationErr)
		c.writeValidationError(w, ve.Message, ve.Details...)
		return
	}

	order, err := c.useCase.UpdateOrderDetails(r.Context(), orderID, *patch, requester)
	if err != nil {
		c.handleUseCaseError(w, err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, toOrderResponse(order))
}

// TransitionStatus is the staff endpoint for moving an order through its
// lifecycle. Customers cancel through the cancel endpoint instead.
func (c *OrderController) TransitionStatus(w http.ResponseWriter, r *http.Request) {
	logger := c.logger.With(zap.String("traceId", uuid.New().String()))

	requester, orderID, ok := c.requesterAndOrderID(w, r, logger)
	if !ok {
		return
	}

	if !requester.Role.IsStaff() {
		c.writeErrorResponse(w, http.StatusForbidden, "FORBIDDEN", "only staff may change order status", logger)
		return
	}

	var req dto.TransitionStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	newStatus := domain.Status(req.Status)
	if !newStatus.IsValid() {
		c.writeValidationError(w, "validation failed", apperrors.ValidationDetail{
			Field:   "status",
			Message: "unknown status value",
		})
		return
	}

	order, err := c.useCase.TransitionStatus(r.Context(), orderID, newStatus, req.Notes)
	if err != nil {
		c.handleUseCaseError(w, err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, toOrderResponse(order))
}

func (c *OrderController) CancelOrder(w http.ResponseWriter, r *http.Request) {
	logger := c.logger.With(zap.String("traceId", uuid.New().String()))

	requester, orderID, ok := c.requesterAndOrderID(w, r, logger)
	if !ok {
		return
	}

	var req dto.CancelOrderRequest
	if r.Body != nil {
		// The reason is optional; an empty body cancels without a note.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	order, err := c.useCase.CancelOrder(r.Context(), orderID, requester, req.Reason)
	if err != nil {
		c.handleUseCaseError(w, err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, toOrderResponse(order))
}

func (c *OrderController) GetStatusHistory(w http.ResponseWriter, r *http.Request) {
	logger := c.logger.With(zap.String("traceId", uuid.New().String()))

	requester, orderID, ok := c.requesterAndOrderID(w, r, logger)
	if !ok {
		return
	}

	entries, err := c.useCase.GetStatusHistory(r.Context(), orderID, requester)
	if err != nil {
		c.handleUseCaseError(w, err, logger)
		return
	}

	response := dto.StatusHistoryResponse{
		OrderID: orderID,
		Entries: make([]dto.StatusHistoryEntryResponse, len(entries)),
	}
	for i, entry := range entries {
		response.Entries[i] = dto.StatusHistoryEntryResponse{
			ID:        entry.ID,
			OrderID:   entry.OrderID,
			OldStatus: entry.OldStatus.String(),
			NewStatus: entry.NewStatus.String(),
			Notes:     entry.Notes,
			ChangedAt: entry.ChangedAt,
		}
	}

	c.writeJSON(w, http.StatusOK, response)
}

func (c *OrderController) requesterAndOrderID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (domain.Requester, uint, bool) {
	requester, ok := auth.RequesterFromContext(r.Context())
	if !ok {
		c.writeErrorResponse(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing requester", logger)
		return domain.Requester{}, 0, false
	}

	orderIDStr := chi.URLParam(r, "orderId")
	orderID, err := strconv.ParseUint(orderIDStr, 10, 64)
	if err != nil || orderID == 0 {
		logger.Warn("invalid orderId in path", zap.String("orderId", orderIDStr))
		c.writeValidationError(w, "validation failed", apperrors.ValidationDetail{
			Field:   "orderId",
			Message: "orderId must be a positive integer",
		})
		return domain.Requester{}, 0, false
	}

	return requester, uint(orderID), true
}

func (c *OrderController) validateCreateOrderRequest(req dto.CreateOrderRequest) (*dto.CreateOrderSpec, error) {
	var details []apperrors.ValidationDetail

	deliveryDate, err := time.Parse("2006-01-02", req.DeliveryDate)
	if err != nil {
		details = append(details, apperrors.ValidationDetail{
			Field:   "deliveryDate",
			Message: "deliveryDate must be a date in YYYY-MM-DD format",
		})
	}

	if !deliveryHourPattern.MatchString(req.DeliveryHour) {
		details = append(details, apperrors.ValidationDetail{
			Field:   "deliveryHour",
			Message: "deliveryHour must be a time in HH:MM format",
		})
	}

	if req.DeliveryAddress == "" {
		details = append(details, apperrors.ValidationDetail{
			Field:   "deliveryAddress",
			Message: "deliveryAddress is required",
		})
	}

	if req.PersonCount < 1 || req.PersonCount > 10000 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "personCount",
			Message: "personCount must be between 1 and 10000",
		})
	}

	if req.MenuPrice < 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "menuPrice",
			Message: "menuPrice must be non-negative",
		})
	}

	if len(details) > 0 {
		return nil, apperrors.NewValidationError("validation failed", details...)
	}

	return &dto.CreateOrderSpec{
		DeliveryDate:        deliveryDate,
		DeliveryHour:        req.DeliveryHour,
		DeliveryAddress:     req.DeliveryAddress,
		PersonCount:         req.PersonCount,
		MenuPrice:           req.MenuPrice,
		SpecialInstructions: req.SpecialInstructions,
	}, nil
}

func (c *OrderController) validateUpdateOrderRequest(req dto.UpdateOrderDetailsRequest) (*dto.UpdateOrderDetails, error) {
	var details []apperrors.ValidationDetail
	var patch dto.UpdateOrderDetails

	if req.DeliveryDate != nil {
		parsed, err := time.Parse("2006-01-02", *req.DeliveryDate)
		if err != nil {
			details = append(details, apperrors.ValidationDetail{
				Field:   "deliveryDate",
				Message: "deliveryDate must be a date in YYYY-MM-DD format",
			})
		} else {
			patch.DeliveryDate = &parsed
		}
	}

	if req.DeliveryHour != nil {
		if !deliveryHourPattern.MatchString(*req.DeliveryHour) {
			details = append(details, apperrors.ValidationDetail{
				Field:   "deliveryHour",
				Message: "deliveryHour must be a time in HH:MM format",
			})
		} else {
			patch.DeliveryHour = req.DeliveryHour
		}
	}

	if req.DeliveryAddress != nil {
		if *req.DeliveryAddress == "" {
			details = append(details, apperrors.ValidationDetail{
				Field:   "deliveryAddress",
				Message: "deliveryAddress must not be empty",
			})
		} else {
			patch.DeliveryAddress = req.DeliveryAddress
		}
	}

	if req.PersonCount != nil {
		if *req.PersonCount < 1 || *req.PersonCount > 10000 {
			details = append(details, apperrors.ValidationDetail{
				Field:   "personCount",
				Message: "personCount must be between 1 and 10000",
			})
		} else {
			patch.PersonCount = req.PersonCount
		}
	}

	if req.MenuPrice != nil {
		if *req.MenuPrice < 0 {
			details = append(details, apperrors.ValidationDetail{
				Field:   "menuPrice",
				Message: "menuPrice must be non-negative",
			})
		} else {
			patch.MenuPrice = req.MenuPrice
		}
	}

	patch.SpecialInstructions = req.SpecialInstructions

	if len(details) > 0 {
		return nil, apperrors.NewValidationError("validation failed", details...)
	}

	return &patch, nil
}

func (c *OrderController) handleUseCaseError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if ve, ok := apperrors.IsValidationError(err); ok {
		c.writeValidationError(w, ve.Message, ve.Details...)
		return
	}

	if _, ok := apperrors.IsNotFoundError(err); ok {
		c.writeErrorResponse(w, http.StatusNotFound, "NOT_FOUND", err.Error(), logger)
		return
	}

	if _, ok := apperrors.IsForbiddenError(err); ok {
		c.writeErrorResponse(w, http.StatusForbidden, "FORBIDDEN", err.Error(), logger)
		return
	}

	if _, ok := apperrors.IsConflictError(err); ok {
		c.writeErrorResponse(w, http.StatusConflict, "CONFLICT", err.Error(), logger)
		return
	}

	if _, ok := apperrors.IsInvalidTransitionError(err); ok {
		c.writeErrorResponse(w, http.StatusUnprocessableEntity, "INVALID_TRANSITION", err.Error(), logger)
		return
	}

	if _, ok := apperrors.IsNotEditableError(err); ok {
		c.writeErrorResponse(w, http.StatusUnprocessableEntity, "NOT_EDITABLE", err.Error(), logger)
		return
	}

	logger.Error("unexpected error", zap.Error(err))
	c.writeErrorResponse(w, http.StatusInternalServerError, "INTERNAL_ERROR", "an unexpected error occurred", logger)
}

func toOrderResponse(order *domain.Order) dto.OrderResponse {
	return dto.OrderResponse{
		ID:                  order.ID,
		OrderNumber:         order.OrderNumber,
		OwnerID:             order.OwnerID,
		Status:              order.Status.String(),
		DeliveryDate:        order.DeliveryDate.Format("2006-01-02"),
		DeliveryHour:        order.DeliveryHour,
		DeliveryAddress:     order.DeliveryAddress,
		PersonCount:         order.PersonCount,
		MenuPrice:           order.MenuPrice,
		TotalPrice:          order.TotalPrice,
		SpecialInstructions: order.SpecialInstructions,
		CancellationReason:  order.CancellationReason,
		ConfirmedAt:         order.ConfirmedAt,
		DeliveredAt:         order.DeliveredAt,
		CancelledAt:         order.CancelledAt,
		CreatedAt:           order.CreatedAt,
		UpdatedAt:           order.UpdatedAt,
	}
}

type validationErrorResponse struct {
	Error   string                       `json:"error"`
	Message string                       `json:"message"`
	Details []apperrors.ValidationDetail `json:"details"`
}

func (c *OrderController) writeValidationError(w http.ResponseWriter, message string, details ...apperrors.ValidationDetail) {
	response := validationErrorResponse{
		Error:   "VALIDATION_ERROR",
		Message: message,
		Details: details,
	}

	c.writeJSON(w, http.StatusBadRequest, response)
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (c *OrderController) writeErrorResponse(w http.ResponseWriter, statusCode int, code string, message string, logger *zap.Logger) {
	c.writeJSON(w, statusCode, errorResponse{
		Error:   code,
		Message: message,
	})
}

func (c *OrderController) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		c.logger.Error("failed to encode response", zap.Error(err))
	}
}

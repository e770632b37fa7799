package http

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/certify-dev/practices-service/internal/http/middleware"
	"github.com/certify-dev/practices-service/internal/model"
	"github.com/certify-dev/practices-service/internal/pricing"
	"github.com/certify-dev/practices-service/internal/service"
)

const maxReceiptSize = 10 << 20 // 10 MiB

type Handler struct {
	practices *service.PracticeService
	log       zerolog.Logger
}

func NewHandler(practices *service.PracticeService, log zerolog.Logger) *Handler {
	return &Handler{practices: practices, log: log}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	protected := router.Group("/")
	protected.Use(authMiddleware)

	protected.POST("/pricing/quote", h.quote)
	protected.GET("/catalog/contract-types", h.listContractTypes)
	protected.GET("/catalog/price-rules", h.listPriceRules)

	protected.POST("/practices", h.createPractice)
	protected.GET("/practices", h.listPractices)
	protected.GET("/practices/:id", h.getPractice)
	protected.POST("/practices/:id/payment", h.initiatePayment)
	protected.POST("/practices/:id/receipt", h.attachReceipt)
	protected.POST("/practices/:id/submit", h.submitToCommission)
	protected.POST("/practices/:id/claim", h.claim)
	protected.GET("/practices/:id/comments", h.listComments)
	protected.POST("/practices/:id/comments", h.comment)
	protected.POST("/practices/:id/resolve", h.resolve)
	protected.GET("/practices/:id/quote.pdf", h.quotePDF)
	protected.POST("/practices/export", h.exportRegister)
}

type selectionRequest struct {
	ContractTypeID string  `json:"contract_type_id" binding:"required"`
	Quantity       int     `json:"quantity"`
	ContractValue  float64 `json:"contract_value"`
	IsOdcec        bool    `json:"is_odcec"`
	IsRenewal      bool    `json:"is_renewal"`
	ConventionCode *string `json:"convention_code"`
}

func (req selectionRequest) toSelection() (pricing.Selection, error) {
	contractTypeID, err := uuid.Parse(strings.TrimSpace(req.ContractTypeID))
	if err != nil {
		return pricing.Selection{}, err
	}
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}
	return pricing.Selection{
		ContractTypeID: contractTypeID,
		Quantity:       quantity,
		ContractValue:  req.ContractValue,
		IsOdcec:        req.IsOdcec,
		IsRenewal:      req.IsRenewal,
		ConventionCode: req.ConventionCode,
	}, nil
}

func (h *Handler) quote(c *gin.Context) {
	var req selectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sel, err := req.toSelection()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract_type_id"})
		return
	}

	breakdown, err := h.practices.Quote(c.Request.Context(), sel)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBreakdownResponse(*breakdown))
}

func (h *Handler) listContractTypes(c *gin.Context) {
	types, err := h.practices.ListContractTypes(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	response := make([]gin.H, 0, len(types))
	for _, contractType := range types {
		response = append(response, gin.H{
			"id":   contractType.ID,
			"name": contractType.Name,
			"code": contractType.Code,
		})
	}
	c.JSON(http.StatusOK, gin.H{"contract_types": response})
}

func (h *Handler) listPriceRules(c *gin.Context) {
	var contractTypeID *uuid.UUID
	if raw := strings.TrimSpace(c.Query("contract_type_id")); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract_type_id"})
			return
		}
		contractTypeID = &parsed
	}

	rules, err := h.practices.ListPriceRules(c.Request.Context(), contractTypeID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response := make([]gin.H, 0, len(rules))
	for _, rule := range rules {
		response = append(response, gin.H{
			"id":                 rule.ID,
			"contract_type_id":   rule.ContractTypeID,
			"min_quantity":       rule.MinQuantity,
			"max_quantity":       rule.MaxQuantity,
			"base_price":         rule.BasePrice,
			"is_percentage_rule": rule.IsPercentageRule,
			"percentage_value":   rule.PercentageValue,
			"threshold_value":    rule.ThresholdValue,
			"is_odcec":           rule.IsOdcec,
			"is_renewal":         rule.IsRenewal,
		})
	}
	c.JSON(http.StatusOK, gin.H{"price_rules": response})
}

func (h *Handler) createPractice(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	practice, err := h.practices.CreatePractice(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toPracticeResponse(*practice))
}

func (h *Handler) listPractices(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var filter service.PracticeFilter
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status := model.PracticeStatus(strings.ToUpper(raw))
		if !status.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
		filter.Status = &status
	}

	practices, err := h.practices.ListPractices(c.Request.Context(), principal, filter)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response := make([]practiceResponse, 0, len(practices))
	for _, practice := range practices {
		response = append(response, toPracticeResponse(practice))
	}
	c.JSON(http.StatusOK, gin.H{"practices": response})
}

func (h *Handler) getPractice(c *gin.Context) {
	principal, practiceID, ok := h.principalAndID(c)
	if !ok {
		return
	}

	practice, err := h.practices.GetPractice(c.Request.Context(), principal, practiceID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPracticeResponse(*practice))
}

func (h *Handler) initiatePayment(c *gin.Context) {
	principal, practiceID, ok := h.principalAndID(c)
	if !ok {
		return
	}

	var req selectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sel, err := req.toSelection()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract_type_id"})
		return
	}

	practice, err := h.practices.InitiatePayment(c.Request.Context(), principal, practiceID, sel)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPracticeResponse(*practice))
}

func (h *Handler) attachReceipt(c *gin.Context) {
	principal, practiceID, ok := h.principalAndID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("receipt")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "receipt file is required"})
		return
	}
	if fileHeader.Size > maxReceiptSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "receipt file is too large"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read receipt file"})
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxReceiptSize))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read receipt file"})
		return
	}

	practice, err := h.practices.AttachReceipt(c.Request.Context(), principal, practiceID, fileHeader.Filename, content)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPracticeResponse(*practice))
}

func (h *Handler) submitToCommission(c *gin.Context) {
	principal, practiceID, ok := h.principalAndID(c)
	if !ok {
		return
	}

	practice, err := h.practices.SubmitToCommission(c.Request.Context(), principal, practiceID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPracticeResponse(*practice))
}

func (h *Handler) claim(c *gin.Context) {
	principal, practiceID, ok := h.principalAndID(c)
	if !ok {
		return
	}

	practice, err := h.practices.Claim(c.Request.Context(), principal, practiceID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPracticeResponse(*practice))
}

type commentRequest struct {
	Kind    string `json:"kind" binding:"required"`
	Content string `json:"content" binding:"required"`
}

func (h *Handler) comment(c *gin.Context) {
	principal, practiceID, ok := h.principalAndID(c)
	if !ok {
		return
	}

	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	kind := model.CommentKind(strings.ToUpper(strings.TrimSpace(req.Kind)))
	comment, err := h.practices.Comment(c.Request.Context(), principal, practiceID, kind, req.Content)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toCommentResponse(*comment))
}

func (h *Handler) listComments(c *gin.Context) {
	principal, practiceID, ok := h.principalAndID(c)
	if !ok {
		return
	}

	comments, err := h.practices.ListComments(c.Request.Context(), principal, practiceID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response := make([]commentResponse, 0, len(comments))
	for _, comment := range comments {
		response = append(response, toCommentResponse(comment))
	}
	c.JSON(http.StatusOK, gin.H{"comments": response})
}

type resolveRequest struct {
	Approved *bool `json:"approved" binding:"required"`
}

func (h *Handler) resolve(c *gin.Context) {
	principal, practiceID, ok := h.principalAndID(c)
	if !ok {
		return
	}

	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	practice, err := h.practices.Resolve(c.Request.Context(), principal, practiceID, *req.Approved)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPracticeResponse(*practice))
}

func (h *Handler) quotePDF(c *gin.Context) {
	principal, practiceID, ok := h.principalAndID(c)
	if !ok {
		return
	}

	result, err := h.practices.QuotePDF(c.Request.Context(), principal, practiceID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, "application/pdf", result.Content)
}

type exportRegisterRequest struct {
	PeriodStart string `json:"period_start" binding:"required"`
	PeriodEnd   string `json:"period_end" binding:"required"`
	Status      string `json:"status"`
}

func (h *Handler) exportRegister(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var req exportRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	start, err := parseDate(req.PeriodStart)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid period_start"})
		return
	}
	end, err := parseDate(req.PeriodEnd)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid period_end"})
		return
	}

	input := service.ExportRegisterInput{PeriodStart: start, PeriodEnd: end}
	if raw := strings.TrimSpace(req.Status); raw != "" {
		status := model.PracticeStatus(strings.ToUpper(raw))
		if !status.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
		input.Status = &status
	}

	result, err := h.practices.ExportRegister(c.Request.Context(), principal, input)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", result.Content)
}

func (h *Handler) principalAndID(c *gin.Context) (model.Principal, uuid.UUID, bool) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return model.Principal{}, uuid.Nil, false
	}

	practiceID, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid practice id"})
		return model.Principal{}, uuid.Nil, false
	}
	return principal, practiceID, true
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, pricing.ErrInvalidSelection),
		errors.Is(err, pricing.ErrNoApplicableTariff),
		errors.Is(err, pricing.ErrInvalidConventionCode):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrAlreadyAssigned),
		errors.Is(err, service.ErrNotAssignedReviewer),
		errors.Is(err, service.ErrMissingReceipt):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrCollaboratorUnavailable),
		errors.Is(err, pricing.ErrCatalogUnavailable):
		h.log.Error().Err(err).Msg("collaborator failure")
		c.JSON(http.StatusBadGateway, gin.H{"error": "collaborator unavailable"})
	default:
		h.log.Error().Err(err).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, service.ErrInvalidInput
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, service.ErrInvalidInput
}

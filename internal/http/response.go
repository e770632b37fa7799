package http

import (
	"time"

	"github.com/google/uuid"

	"github.com/certify-dev/practices-service/internal/model"
)

type breakdownResponse struct {
	BaseAmount                   float64  `json:"base_amount"`
	SurchargeAmount              float64  `json:"surcharge_amount"`
	OdcecAdjustedAmount          *float64 `json:"odcec_adjusted_amount,omitempty"`
	RenewalDiscountApplied       bool     `json:"renewal_discount_applied"`
	ConventionCode               *string  `json:"convention_code,omitempty"`
	ConventionDiscountPercentage *float64 `json:"convention_discount_percentage,omitempty"`
	NetBeforeVAT                 float64  `json:"net_before_vat"`
	VATRate                      float64  `json:"vat_rate"`
	VATAmount                    float64  `json:"vat_amount"`
	GrossTotal                   float64  `json:"gross_total"`
}

func toBreakdownResponse(breakdown model.PriceBreakdown) breakdownResponse {
	return breakdownResponse{
		BaseAmount:                   breakdown.BaseAmount,
		SurchargeAmount:              breakdown.SurchargeAmount,
		OdcecAdjustedAmount:          breakdown.OdcecAdjustedAmount,
		RenewalDiscountApplied:       breakdown.RenewalDiscountApplied,
		ConventionCode:               breakdown.ConventionCode,
		ConventionDiscountPercentage: breakdown.ConventionDiscountPercentage,
		NetBeforeVAT:                 breakdown.NetBeforeVAT,
		VATRate:                      breakdown.VATRate,
		VATAmount:                    breakdown.VATAmount,
		GrossTotal:                   breakdown.GrossTotal,
	}
}

type practiceResponse struct {
	ID                   uuid.UUID          `json:"id"`
	SubmitterID          uuid.UUID          `json:"submitter_id"`
	ContractTypeID       *uuid.UUID         `json:"contract_type_id,omitempty"`
	Quantity             int                `json:"quantity"`
	ContractValue        float64            `json:"contract_value"`
	IsOdcec              bool               `json:"is_odcec"`
	IsRenewal            bool               `json:"is_renewal"`
	ConventionCode       *string            `json:"convention_code,omitempty"`
	Breakdown            *breakdownResponse `json:"price_breakdown,omitempty"`
	Status               string             `json:"status"`
	AssignedReviewerID   *uuid.UUID         `json:"assigned_reviewer_id,omitempty"`
	ReceiptDocumentRef   *string            `json:"receipt_document_ref,omitempty"`
	CreatedAt            time.Time          `json:"created_at"`
	SubmittedToPaymentAt *time.Time         `json:"submitted_to_payment_at,omitempty"`
	SubmittedToReviewAt  *time.Time         `json:"submitted_to_review_at,omitempty"`
	ResolvedAt           *time.Time         `json:"resolved_at,omitempty"`
}

func toPracticeResponse(practice model.Practice) practiceResponse {
	response := practiceResponse{
		ID:                   practice.ID,
		SubmitterID:          practice.SubmitterID,
		ContractTypeID:       practice.ContractTypeID,
		Quantity:             practice.Quantity,
		ContractValue:        practice.ContractValue,
		IsOdcec:              practice.IsOdcec,
		IsRenewal:            practice.IsRenewal,
		ConventionCode:       practice.ConventionCode,
		Status:               practice.Status.String(),
		AssignedReviewerID:   practice.AssignedReviewerID,
		ReceiptDocumentRef:   practice.ReceiptDocumentRef,
		CreatedAt:            practice.CreatedAt,
		SubmittedToPaymentAt: practice.SubmittedToPaymentAt,
		SubmittedToReviewAt:  practice.SubmittedToReviewAt,
		ResolvedAt:           practice.ResolvedAt,
	}
	if practice.Breakdown != nil {
		breakdown := toBreakdownResponse(*practice.Breakdown)
		response.Breakdown = &breakdown
	}
	return response
}

type commentResponse struct {
	ID         uuid.UUID `json:"id"`
	PracticeID uuid.UUID `json:"practice_id"`
	AuthorID   uuid.UUID `json:"author_id"`
	Kind       string    `json:"kind"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

func toCommentResponse(comment model.ReviewComment) commentResponse {
	return commentResponse{
		ID:         comment.ID,
		PracticeID: comment.PracticeID,
		AuthorID:   comment.AuthorID,
		Kind:       string(comment.Kind),
		Content:    comment.Content,
		CreatedAt:  comment.CreatedAt,
	}
}

package model

import (
	"time"

	"github.com/google/uuid"
)

type PracticeStatus string

const (
	PracticeStatusDraft                 PracticeStatus = "DRAFT"
	PracticeStatusPendingPayment        PracticeStatus = "PENDING_PAYMENT"
	PracticeStatusReceiptUploaded       PracticeStatus = "RECEIPT_UPLOADED"
	PracticeStatusSubmittedToCommission PracticeStatus = "SUBMITTED_TO_COMMISSION"
	PracticeStatusInProgress            PracticeStatus = "IN_PROGRESS"
	PracticeStatusCompleted             PracticeStatus = "COMPLETED"
	PracticeStatusRejected              PracticeStatus = "REJECTED"
)

func (s PracticeStatus) IsValid() bool {
	switch s {
	case PracticeStatusDraft,
		PracticeStatusPendingPayment,
		PracticeStatusReceiptUploaded,
		PracticeStatusSubmittedToCommission,
		PracticeStatusInProgress,
		PracticeStatusCompleted,
		PracticeStatusRejected:
		return true
	}
	return false
}

func (s PracticeStatus) IsTerminal() bool {
	return s == PracticeStatusCompleted || s == PracticeStatusRejected
}

func (s PracticeStatus) String() string {
	return string(s)
}

// PriceBreakdown is the price computed at payment initiation. It is frozen
// into the practice row and never recomputed, even if the tariff catalog
// changes afterwards.
type PriceBreakdown struct {
	BaseAmount                   float64
	SurchargeAmount              float64
	OdcecAdjustedAmount          *float64
	RenewalDiscountApplied       bool
	ConventionCode               *string
	ConventionDiscountPercentage *float64
	NetBeforeVAT                 float64
	VATRate                      float64
	VATAmount                    float64
	GrossTotal                   float64
}

type Practice struct {
	ID                   uuid.UUID
	SubmitterID          uuid.UUID
	ContractTypeID       *uuid.UUID
	Quantity             int
	ContractValue        float64
	IsOdcec              bool
	IsRenewal            bool
	ConventionCode       *string
	Breakdown            *PriceBreakdown
	Status               PracticeStatus
	AssignedReviewerID   *uuid.UUID
	ReceiptDocumentRef   *string
	CreatedAt            time.Time
	SubmittedToPaymentAt *time.Time
	SubmittedToReviewAt  *time.Time
	ResolvedAt           *time.Time
}

type CommentKind string

const (
	CommentKindRequestDocuments     CommentKind = "REQUEST_DOCUMENTS"
	CommentKindRequestClarification CommentKind = "REQUEST_CLARIFICATION"
	CommentKindStatusUpdate         CommentKind = "STATUS_UPDATE"
	CommentKindApproval             CommentKind = "APPROVAL"
	CommentKindRejection            CommentKind = "REJECTION"
	CommentKindRequestHearing       CommentKind = "REQUEST_HEARING"
)

func (k CommentKind) IsValid() bool {
	switch k {
	case CommentKindRequestDocuments,
		CommentKindRequestClarification,
		CommentKindStatusUpdate,
		CommentKindApproval,
		CommentKindRejection,
		CommentKindRequestHearing:
		return true
	}
	return false
}

type ReviewComment struct {
	ID         uuid.UUID
	PracticeID uuid.UUID
	AuthorID   uuid.UUID
	Kind       CommentKind
	Content    string
	CreatedAt  time.Time
}

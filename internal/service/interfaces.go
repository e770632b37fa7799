package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/certify-dev/practices-service/internal/model"
	"github.com/certify-dev/practices-service/internal/pricing"
)

// PaymentInitiation carries everything frozen into the practice row when
// payment starts: the validated selection plus the computed breakdown.
type PaymentInitiation struct {
	ContractTypeID uuid.UUID
	Quantity       int
	ContractValue  float64
	IsOdcec        bool
	IsRenewal      bool
	ConventionCode *string
	Breakdown      model.PriceBreakdown
	SubmittedAt    time.Time
}

type PracticeFilter struct {
	SubmitterID *uuid.UUID
	Status      *model.PracticeStatus
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// PracticeRepository persists practices and their comments. Conditional
// methods return ok=false when the guard matched no row; they must apply the
// guard and the write in a single statement so concurrent callers cannot
// interleave between check and update.
type PracticeRepository interface {
	Create(ctx context.Context, submitterID uuid.UUID) (*model.Practice, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Practice, error)
	List(ctx context.Context, filter PracticeFilter) ([]model.Practice, error)

	InitiatePayment(ctx context.Context, id uuid.UUID, initiation PaymentInitiation) (*model.Practice, bool, error)
	AttachReceipt(ctx context.Context, id uuid.UUID, documentRef string) (*model.Practice, bool, error)
	SubmitToCommission(ctx context.Context, id uuid.UUID, at time.Time) (*model.Practice, bool, error)
	Claim(ctx context.Context, id uuid.UUID, reviewerID uuid.UUID) (*model.Practice, bool, error)
	Resolve(ctx context.Context, id uuid.UUID, reviewerID uuid.UUID, status model.PracticeStatus, at time.Time) (*model.Practice, bool, error)

	AddComment(ctx context.Context, comment model.ReviewComment) (*model.ReviewComment, error)
	ListComments(ctx context.Context, practiceID uuid.UUID) ([]model.ReviewComment, error)
}

// PriceComputer is the pricing engine as seen by the lifecycle.
type PriceComputer interface {
	ComputePrice(ctx context.Context, sel pricing.Selection) (*model.PriceBreakdown, error)
}

// DocumentStore keeps uploaded receipts. The lifecycle only ever records
// the returned opaque reference.
type DocumentStore interface {
	StoreReceipt(ctx context.Context, practiceID uuid.UUID, fileName string, content []byte) (string, error)
}

// NotificationSink delivers user notifications. Delivery is best effort:
// a failed notification never rolls back the state transition it follows.
type NotificationSink interface {
	Notify(ctx context.Context, userID uuid.UUID, kind string, payload map[string]any) error
}

type ExcelGenerator interface {
	Generate(register model.PracticeRegister) ([]byte, error)
}

type PDFGenerator interface {
	Generate(doc model.QuoteDocument) ([]byte, error)
}

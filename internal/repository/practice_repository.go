package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/certify-dev/practices-service/internal/model"
	"github.com/certify-dev/practices-service/internal/service"
)

type PracticeRepository struct {
	db *gorm.DB
}

func NewPracticeRepository(db *gorm.DB) *PracticeRepository {
	return &PracticeRepository{db: db}
}

const practiceColumns = `
	id,
	submitter_id,
	contract_type_id,
	quantity,
	contract_value,
	is_odcec,
	is_renewal,
	convention_code,
	base_amount,
	surcharge_amount,
	odcec_adjusted_amount,
	renewal_discount_applied,
	convention_discount_percentage,
	net_before_vat,
	vat_rate,
	vat_amount,
	gross_total,
	status,
	assigned_reviewer_id,
	receipt_document_ref,
	created_at,
	submitted_to_payment_at,
	submitted_to_review_at,
	resolved_at`

type practiceRow struct {
	ID                           uuid.UUID
	SubmitterID                  uuid.UUID
	ContractTypeID               *uuid.UUID
	Quantity                     int
	ContractValue                float64
	IsOdcec                      bool
	IsRenewal                    bool
	ConventionCode               *string
	BaseAmount                   *float64
	SurchargeAmount              *float64
	OdcecAdjustedAmount          *float64
	RenewalDiscountApplied       *bool
	ConventionDiscountPercentage *float64
	NetBeforeVat                 *float64
	VatRate                      *float64
	VatAmount                    *float64
	GrossTotal                   *float64
	Status                       model.PracticeStatus
	AssignedReviewerID           *uuid.UUID
	ReceiptDocumentRef           *string
	CreatedAt                    time.Time
	SubmittedToPaymentAt         *time.Time
	SubmittedToReviewAt          *time.Time
	ResolvedAt                   *time.Time
}

func (row practiceRow) toPractice() *model.Practice {
	practice := &model.Practice{
		ID:                   row.ID,
		SubmitterID:          row.SubmitterID,
		ContractTypeID:       row.ContractTypeID,
		Quantity:             row.Quantity,
		ContractValue:        row.ContractValue,
		IsOdcec:              row.IsOdcec,
		IsRenewal:            row.IsRenewal,
		ConventionCode:       row.ConventionCode,
		Status:               row.Status,
		AssignedReviewerID:   row.AssignedReviewerID,
		ReceiptDocumentRef:   row.ReceiptDocumentRef,
		CreatedAt:            row.CreatedAt,
		SubmittedToPaymentAt: row.SubmittedToPaymentAt,
		SubmittedToReviewAt:  row.SubmittedToReviewAt,
		ResolvedAt:           row.ResolvedAt,
	}
	// A frozen breakdown is present exactly when net_before_vat is set.
	if row.NetBeforeVat != nil {
		renewalApplied := false
		if row.RenewalDiscountApplied != nil {
			renewalApplied = *row.RenewalDiscountApplied
		}
		practice.Breakdown = &model.PriceBreakdown{
			BaseAmount:                   valueOrZero(row.BaseAmount),
			SurchargeAmount:              valueOrZero(row.SurchargeAmount),
			OdcecAdjustedAmount:          row.OdcecAdjustedAmount,
			RenewalDiscountApplied:       renewalApplied,
			ConventionCode:               row.ConventionCode,
			ConventionDiscountPercentage: row.ConventionDiscountPercentage,
			NetBeforeVAT:                 *row.NetBeforeVat,
			VATRate:                      valueOrZero(row.VatRate),
			VATAmount:                    valueOrZero(row.VatAmount),
			GrossTotal:                   valueOrZero(row.GrossTotal),
		}
	}
	return practice
}

func valueOrZero(value *float64) float64 {
	if value == nil {
		return 0
	}
	return *value
}

func (r *PracticeRepository) Create(ctx context.Context, submitterID uuid.UUID) (*model.Practice, error) {
	var row practiceRow
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO practices (submitter_id, status)
		VALUES (?, 'DRAFT')
		RETURNING`+practiceColumns, submitterID).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return row.toPractice(), nil
}

func (r *PracticeRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Practice, error) {
	var row practiceRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT`+practiceColumns+`
		FROM practices
		WHERE id = ?
		LIMIT 1`, id).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return row.toPractice(), nil
}

func (r *PracticeRepository) List(ctx context.Context, filter service.PracticeFilter) ([]model.Practice, error) {
	baseQuery := `
		SELECT` + practiceColumns + `
		FROM practices
		WHERE 1 = 1`
	var args []interface{}
	var filters []string

	if filter.SubmitterID != nil {
		filters = append(filters, "submitter_id = ?")
		args = append(args, *filter.SubmitterID)
	}
	if filter.Status != nil {
		filters = append(filters, "status = ?")
		args = append(args, *filter.Status)
	}
	if filter.CreatedFrom != nil {
		filters = append(filters, "created_at >= ?")
		args = append(args, *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		filters = append(filters, "created_at < ?")
		args = append(args, *filter.CreatedTo)
	}

	if len(filters) > 0 {
		baseQuery += " AND " + strings.Join(filters, " AND ")
	}
	baseQuery += " ORDER BY created_at DESC"

	var rows []practiceRow
	if err := r.db.WithContext(ctx).Raw(baseQuery, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}

	practices := make([]model.Practice, 0, len(rows))
	for _, row := range rows {
		practices = append(practices, *row.toPractice())
	}
	return practices, nil
}

func (r *PracticeRepository) InitiatePayment(ctx context.Context, id uuid.UUID, initiation service.PaymentInitiation) (*model.Practice, bool, error) {
	breakdown := initiation.Breakdown
	var row practiceRow
	err := r.db.WithContext(ctx).Raw(`
		UPDATE practices SET
			contract_type_id = ?,
			quantity = ?,
			contract_value = ?,
			is_odcec = ?,
			is_renewal = ?,
			convention_code = ?,
			base_amount = ?,
			surcharge_amount = ?,
			odcec_adjusted_amount = ?,
			renewal_discount_applied = ?,
			convention_discount_percentage = ?,
			net_before_vat = ?,
			vat_rate = ?,
			vat_amount = ?,
			gross_total = ?,
			status = 'PENDING_PAYMENT',
			submitted_to_payment_at = ?
		WHERE id = ? AND status = 'DRAFT'
		RETURNING`+practiceColumns,
		initiation.ContractTypeID,
		initiation.Quantity,
		initiation.ContractValue,
		initiation.IsOdcec,
		initiation.IsRenewal,
		initiation.ConventionCode,
		breakdown.BaseAmount,
		breakdown.SurchargeAmount,
		breakdown.OdcecAdjustedAmount,
		breakdown.RenewalDiscountApplied,
		breakdown.ConventionDiscountPercentage,
		breakdown.NetBeforeVAT,
		breakdown.VATRate,
		breakdown.VATAmount,
		breakdown.GrossTotal,
		initiation.SubmittedAt,
		id,
	).Scan(&row).Error
	if err != nil {
		return nil, false, err
	}
	if row.ID == uuid.Nil {
		return nil, false, nil
	}
	return row.toPractice(), true, nil
}

func (r *PracticeRepository) AttachReceipt(ctx context.Context, id uuid.UUID, documentRef string) (*model.Practice, bool, error) {
	var row practiceRow
	err := r.db.WithContext(ctx).Raw(`
		UPDATE practices SET
			receipt_document_ref = ?,
			status = 'RECEIPT_UPLOADED'
		WHERE id = ? AND status = 'PENDING_PAYMENT'
		RETURNING`+practiceColumns, documentRef, id).Scan(&row).Error
	if err != nil {
		return nil, false, err
	}
	if row.ID == uuid.Nil {
		return nil, false, nil
	}
	return row.toPractice(), true, nil
}

func (r *PracticeRepository) SubmitToCommission(ctx context.Context, id uuid.UUID, at time.Time) (*model.Practice, bool, error) {
	var row practiceRow
	err := r.db.WithContext(ctx).Raw(`
		UPDATE practices SET
			status = 'SUBMITTED_TO_COMMISSION',
			submitted_to_review_at = ?
		WHERE id = ? AND status = 'RECEIPT_UPLOADED' AND receipt_document_ref IS NOT NULL
		RETURNING`+practiceColumns, at, id).Scan(&row).Error
	if err != nil {
		return nil, false, err
	}
	if row.ID == uuid.Nil {
		return nil, false, nil
	}
	return row.toPractice(), true, nil
}

// Claim is a single conditional update against "currently unassigned", so
// concurrent claims cannot both succeed.
func (r *PracticeRepository) Claim(ctx context.Context, id uuid.UUID, reviewerID uuid.UUID) (*model.Practice, bool, error) {
	var row practiceRow
	err := r.db.WithContext(ctx).Raw(`
		UPDATE practices SET
			status = 'IN_PROGRESS',
			assigned_reviewer_id = ?
		WHERE id = ? AND status = 'SUBMITTED_TO_COMMISSION' AND assigned_reviewer_id IS NULL
		RETURNING`+practiceColumns, reviewerID, id).Scan(&row).Error
	if err != nil {
		return nil, false, err
	}
	if row.ID == uuid.Nil {
		return nil, false, nil
	}
	return row.toPractice(), true, nil
}

func (r *PracticeRepository) Resolve(ctx context.Context, id uuid.UUID, reviewerID uuid.UUID, status model.PracticeStatus, at time.Time) (*model.Practice, bool, error) {
	if !status.IsTerminal() {
		return nil, false, fmt.Errorf("resolve target status must be terminal, got %s", status)
	}

	var row practiceRow
	err := r.db.WithContext(ctx).Raw(`
		UPDATE practices SET
			status = ?,
			resolved_at = ?
		WHERE id = ? AND status = 'IN_PROGRESS' AND assigned_reviewer_id = ?
		RETURNING`+practiceColumns, status, at, id, reviewerID).Scan(&row).Error
	if err != nil {
		return nil, false, err
	}
	if row.ID == uuid.Nil {
		return nil, false, nil
	}
	return row.toPractice(), true, nil
}

func (r *PracticeRepository) AddComment(ctx context.Context, comment model.ReviewComment) (*model.ReviewComment, error) {
	var saved model.ReviewComment
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO review_comments (practice_id, author_id, kind, content)
		VALUES (?, ?, ?, ?)
		RETURNING id, practice_id, author_id, kind, content, created_at`,
		comment.PracticeID,
		comment.AuthorID,
		comment.Kind,
		comment.Content,
	).Scan(&saved).Error
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *PracticeRepository) ListComments(ctx context.Context, practiceID uuid.UUID) ([]model.ReviewComment, error) {
	var comments []model.ReviewComment
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, practice_id, author_id, kind, content, created_at
		FROM review_comments
		WHERE practice_id = ?
		ORDER BY created_at ASC`, practiceID).Scan(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

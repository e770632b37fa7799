package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/certify-dev/practices-service/internal/model"
	"github.com/certify-dev/practices-service/internal/pricing"
)

const (
	NotificationKindComment  = "practice_comment"
	NotificationKindResolved = "practice_resolved"
)

type PracticeService struct {
	repo    PracticeRepository
	prices  PriceComputer
	catalog pricing.TariffCatalog
	docs    DocumentStore
	sink    NotificationSink
	excel   ExcelGenerator
	pdf     PDFGenerator
	log     zerolog.Logger
}

func NewPracticeService(
	repo PracticeRepository,
	prices PriceComputer,
	catalog pricing.TariffCatalog,
	docs DocumentStore,
	sink NotificationSink,
	excel ExcelGenerator,
	pdf PDFGenerator,
	log zerolog.Logger,
) *PracticeService {
	return &PracticeService{
		repo:    repo,
		prices:  prices,
		catalog: catalog,
		docs:    docs,
		sink:    sink,
		excel:   excel,
		pdf:     pdf,
		log:     log,
	}
}

func (s *PracticeService) Quote(ctx context.Context, sel pricing.Selection) (*model.PriceBreakdown, error) {
	return s.prices.ComputePrice(ctx, sel)
}

func (s *PracticeService) CreatePractice(ctx context.Context, principal model.Principal) (*model.Practice, error) {
	return s.repo.Create(ctx, principal.UserID)
}

func (s *PracticeService) GetPractice(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.Practice, error) {
	practice, err := s.getPractice(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.canView(principal, practice) {
		return nil, ErrPermissionDenied
	}
	return practice, nil
}

func (s *PracticeService) ListPractices(ctx context.Context, principal model.Principal, filter PracticeFilter) ([]model.Practice, error) {
	if principal.IsSubmitter() {
		// Submitters only ever see their own practices.
		filter.SubmitterID = &principal.UserID
	}
	return s.repo.List(ctx, filter)
}

// InitiatePayment computes the price for the selection and freezes it into
// the practice, moving it to PENDING_PAYMENT. The stored breakdown is never
// recomputed afterwards, even if the catalog changes.
func (s *PracticeService) InitiatePayment(ctx context.Context, principal model.Principal, id uuid.UUID, sel pricing.Selection) (*model.Practice, error) {
	practice, err := s.getOwned(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	if practice.Status != model.PracticeStatusDraft {
		return nil, transitionError("initiate_payment", practice.Status)
	}

	breakdown, err := s.prices.ComputePrice(ctx, sel)
	if err != nil {
		return nil, err
	}

	updated, ok, err := s.repo.InitiatePayment(ctx, id, PaymentInitiation{
		ContractTypeID: sel.ContractTypeID,
		Quantity:       sel.Quantity,
		ContractValue:  sel.ContractValue,
		IsOdcec:        sel.IsOdcec,
		IsRenewal:      sel.IsRenewal,
		ConventionCode: sel.ConventionCode,
		Breakdown:      *breakdown,
		SubmittedAt:    time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, s.transitionFailure(ctx, id, "initiate_payment")
	}
	return updated, nil
}

func (s *PracticeService) AttachReceipt(ctx context.Context, principal model.Principal, id uuid.UUID, fileName string, content []byte) (*model.Practice, error) {
	practice, err := s.getOwned(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	if len(content) == 0 {
		return nil, fmt.Errorf("%w: receipt file is empty", ErrInvalidInput)
	}
	if practice.Status != model.PracticeStatusPendingPayment {
		return nil, transitionError("attach_receipt", practice.Status)
	}

	documentRef, err := s.docs.StoreReceipt(ctx, id, fileName, content)
	if err != nil {
		return nil, fmt.Errorf("%w: document store: %v", ErrCollaboratorUnavailable, err)
	}

	updated, ok, err := s.repo.AttachReceipt(ctx, id, documentRef)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, s.transitionFailure(ctx, id, "attach_receipt")
	}
	return updated, nil
}

func (s *PracticeService) SubmitToCommission(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.Practice, error) {
	practice, err := s.getOwned(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	if practice.Status != model.PracticeStatusReceiptUploaded {
		return nil, transitionError("submit_to_commission", practice.Status)
	}
	if practice.ReceiptDocumentRef == nil || *practice.ReceiptDocumentRef == "" {
		return nil, fmt.Errorf("%w: practice %s has no receipt attached", ErrMissingReceipt, id)
	}

	updated, ok, err := s.repo.SubmitToCommission(ctx, id, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, s.transitionFailure(ctx, id, "submit_to_commission")
	}
	return updated, nil
}

// Claim assigns the practice to the calling reviewer. The repository applies
// the assignment as a single conditional update, so of any number of
// concurrent claims exactly one succeeds and the rest see AlreadyAssigned.
func (s *PracticeService) Claim(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.Practice, error) {
	if !principal.IsCommission() && !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}

	updated, ok, err := s.repo.Claim(ctx, id, principal.UserID)
	if err != nil {
		return nil, err
	}
	if ok {
		return updated, nil
	}

	practice, err := s.getPractice(ctx, id)
	if err != nil {
		return nil, err
	}
	if practice.AssignedReviewerID != nil {
		return nil, fmt.Errorf("%w: held by reviewer %s", ErrAlreadyAssigned, *practice.AssignedReviewerID)
	}
	return nil, transitionError("claim", practice.Status)
}

func (s *PracticeService) Comment(ctx context.Context, principal model.Principal, id uuid.UUID, kind model.CommentKind, content string) (*model.ReviewComment, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: unknown comment kind %q", ErrInvalidInput, kind)
	}
	if content == "" {
		return nil, fmt.Errorf("%w: comment content is empty", ErrInvalidInput)
	}

	practice, err := s.getPractice(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.canComment(principal, practice) {
		return nil, ErrPermissionDenied
	}
	if practice.Status != model.PracticeStatusInProgress {
		return nil, transitionError("comment", practice.Status)
	}

	comment, err := s.repo.AddComment(ctx, model.ReviewComment{
		PracticeID: id,
		AuthorID:   principal.UserID,
		Kind:       kind,
		Content:    content,
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, practice.SubmitterID, NotificationKindComment, map[string]any{
		"practice_id": id.String(),
		"kind":        string(kind),
	})
	return comment, nil
}

func (s *PracticeService) Resolve(ctx context.Context, principal model.Principal, id uuid.UUID, approved bool) (*model.Practice, error) {
	practice, err := s.getPractice(ctx, id)
	if err != nil {
		return nil, err
	}
	if practice.Status != model.PracticeStatusInProgress {
		return nil, transitionError("resolve", practice.Status)
	}
	if practice.AssignedReviewerID == nil || *practice.AssignedReviewerID != principal.UserID {
		return nil, fmt.Errorf("%w: practice %s", ErrNotAssignedReviewer, id)
	}

	status := model.PracticeStatusRejected
	if approved {
		status = model.PracticeStatusCompleted
	}

	updated, ok, err := s.repo.Resolve(ctx, id, principal.UserID, status, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, s.transitionFailure(ctx, id, "resolve")
	}

	s.notify(ctx, updated.SubmitterID, NotificationKindResolved, map[string]any{
		"practice_id": id.String(),
		"status":      updated.Status.String(),
	})
	return updated, nil
}

func (s *PracticeService) ListComments(ctx context.Context, principal model.Principal, id uuid.UUID) ([]model.ReviewComment, error) {
	practice, err := s.getPractice(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.canView(principal, practice) {
		return nil, ErrPermissionDenied
	}
	return s.repo.ListComments(ctx, id)
}

func (s *PracticeService) ListContractTypes(ctx context.Context) ([]model.ContractType, error) {
	return s.catalog.ListContractTypes(ctx)
}

func (s *PracticeService) ListPriceRules(ctx context.Context, contractTypeID *uuid.UUID) ([]model.PriceRule, error) {
	return s.catalog.ListPriceRules(ctx, contractTypeID)
}

type GenerateResult struct {
	FileName string
	Content  []byte
}

// QuotePDF renders the frozen breakdown as a printable payment summary.
func (s *PracticeService) QuotePDF(ctx context.Context, principal model.Principal, id uuid.UUID) (*GenerateResult, error) {
	practice, err := s.GetPractice(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	if practice.Breakdown == nil {
		return nil, fmt.Errorf("%w: price has not been frozen yet", ErrInvalidTransition)
	}

	doc := model.QuoteDocument{Practice: *practice}
	if practice.ContractTypeID != nil {
		types, err := s.catalog.ListContractTypes(ctx)
		if err != nil {
			return nil, err
		}
		for _, contractType := range types {
			if contractType.ID == *practice.ContractTypeID {
				doc.ContractType = contractType
				break
			}
		}
	}

	content, err := s.pdf.Generate(doc)
	if err != nil {
		return nil, err
	}
	return &GenerateResult{
		FileName: fmt.Sprintf("payment-quote-%s.pdf", practice.ID),
		Content:  content,
	}, nil
}

type ExportRegisterInput struct {
	PeriodStart time.Time
	PeriodEnd   time.Time
	Status      *model.PracticeStatus
}

// ExportRegister builds the commission's xlsx register of practices created
// in the period.
func (s *PracticeService) ExportRegister(ctx context.Context, principal model.Principal, input ExportRegisterInput) (*GenerateResult, error) {
	if !principal.IsCommission() && !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	if input.PeriodStart.IsZero() || input.PeriodEnd.IsZero() {
		return nil, fmt.Errorf("%w: period dates are required", ErrInvalidInput)
	}

	periodStart := dateOnly(input.PeriodStart)
	periodEnd := dateOnly(input.PeriodEnd)
	if periodStart.After(periodEnd) {
		return nil, fmt.Errorf("%w: period_start must be before or equal to period_end", ErrInvalidInput)
	}
	endExclusive := periodEnd.Add(24 * time.Hour)

	practices, err := s.repo.List(ctx, PracticeFilter{
		Status:      input.Status,
		CreatedFrom: &periodStart,
		CreatedTo:   &endExclusive,
	})
	if err != nil {
		return nil, err
	}

	register := buildRegister(periodStart, periodEnd, practices)
	content, err := s.excel.Generate(register)
	if err != nil {
		return nil, err
	}

	fileName := fmt.Sprintf("practices-%s-%s.xlsx",
		periodStart.Format("20060102"), periodEnd.Format("20060102"))
	return &GenerateResult{FileName: fileName, Content: content}, nil
}

func (s *PracticeService) getPractice(ctx context.Context, id uuid.UUID) (*model.Practice, error) {
	practice, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return practice, nil
}

func (s *PracticeService) getOwned(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.Practice, error) {
	practice, err := s.getPractice(ctx, id)
	if err != nil {
		return nil, err
	}
	if practice.SubmitterID != principal.UserID && !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	return practice, nil
}

func (s *PracticeService) canView(principal model.Principal, practice *model.Practice) bool {
	if principal.IsCommission() || principal.IsAdmin() {
		return true
	}
	return practice.SubmitterID == principal.UserID
}

func (s *PracticeService) canComment(principal model.Principal, practice *model.Practice) bool {
	if practice.SubmitterID == principal.UserID {
		return true
	}
	return practice.AssignedReviewerID != nil && *practice.AssignedReviewerID == principal.UserID
}

// transitionFailure reports why a conditional update matched no row. The row
// is re-read because the practice may have moved concurrently since the
// caller's guard check.
func (s *PracticeService) transitionFailure(ctx context.Context, id uuid.UUID, operation string) error {
	practice, err := s.getPractice(ctx, id)
	if err != nil {
		return err
	}
	if operation == "submit_to_commission" &&
		practice.Status == model.PracticeStatusReceiptUploaded &&
		(practice.ReceiptDocumentRef == nil || *practice.ReceiptDocumentRef == "") {
		return fmt.Errorf("%w: practice %s has no receipt attached", ErrMissingReceipt, id)
	}
	return transitionError(operation, practice.Status)
}

func (s *PracticeService) notify(ctx context.Context, userID uuid.UUID, kind string, payload map[string]any) {
	if err := s.sink.Notify(ctx, userID, kind, payload); err != nil {
		// The transition is already committed; the notification is best
		// effort.
		s.log.Warn().Err(err).Str("kind", kind).Str("user_id", userID.String()).
			Msg("notification delivery failed")
	}
}

func transitionError(operation string, from model.PracticeStatus) error {
	return fmt.Errorf("%w: cannot %s from status %s", ErrInvalidTransition, operation, from)
}

func buildRegister(periodStart, periodEnd time.Time, practices []model.Practice) model.PracticeRegister {
	order := []model.PracticeStatus{
		model.PracticeStatusDraft,
		model.PracticeStatusPendingPayment,
		model.PracticeStatusReceiptUploaded,
		model.PracticeStatusSubmittedToCommission,
		model.PracticeStatusInProgress,
		model.PracticeStatusCompleted,
		model.PracticeStatusRejected,
	}

	byStatus := make(map[model.PracticeStatus][]model.Practice)
	totalGross := 0.0
	for _, practice := range practices {
		byStatus[practice.Status] = append(byStatus[practice.Status], practice)
		if practice.Breakdown != nil {
			totalGross += practice.Breakdown.GrossTotal
		}
	}

	groups := make([]model.RegisterGroup, 0, len(byStatus))
	for _, status := range order {
		if rows, ok := byStatus[status]; ok {
			groups = append(groups, model.RegisterGroup{Status: status, Practices: rows})
		}
	}

	return model.PracticeRegister{
		PeriodStart:    periodStart,
		PeriodEnd:      periodEnd,
		TotalPractices: len(practices),
		TotalGross:     totalGross,
		Groups:         groups,
	}
}

func dateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/certify-dev/practices-service/internal/model"
	"github.com/certify-dev/practices-service/internal/pricing"
)

// fakePracticeRepo mirrors the conditional-update semantics of the Postgres
// repository: every guarded transition checks and writes under one lock.
type fakePracticeRepo struct {
	mu        sync.Mutex
	practices map[uuid.UUID]*model.Practice
	comments  []model.ReviewComment
}

func newFakePracticeRepo() *fakePracticeRepo {
	return &fakePracticeRepo{practices: make(map[uuid.UUID]*model.Practice)}
}

func (r *fakePracticeRepo) Create(_ context.Context, submitterID uuid.UUID) (*model.Practice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	practice := &model.Practice{
		ID:          uuid.New(),
		SubmitterID: submitterID,
		Quantity:    1,
		Status:      model.PracticeStatusDraft,
		CreatedAt:   time.Now().UTC(),
	}
	r.practices[practice.ID] = practice
	return copyPractice(practice), nil
}

func (r *fakePracticeRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Practice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	practice, ok := r.practices[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return copyPractice(practice), nil
}

func (r *fakePracticeRepo) List(_ context.Context, filter PracticeFilter) ([]model.Practice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []model.Practice
	for _, practice := range r.practices {
		if filter.SubmitterID != nil && practice.SubmitterID != *filter.SubmitterID {
			continue
		}
		if filter.Status != nil && practice.Status != *filter.Status {
			continue
		}
		if filter.CreatedFrom != nil && practice.CreatedAt.Before(*filter.CreatedFrom) {
			continue
		}
		if filter.CreatedTo != nil && !practice.CreatedAt.Before(*filter.CreatedTo) {
			continue
		}
		result = append(result, *copyPractice(practice))
	}
	return result, nil
}

func (r *fakePracticeRepo) InitiatePayment(_ context.Context, id uuid.UUID, initiation PaymentInitiation) (*model.Practice, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	practice, ok := r.practices[id]
	if !ok || practice.Status != model.PracticeStatusDraft {
		return nil, false, nil
	}
	breakdown := initiation.Breakdown
	submittedAt := initiation.SubmittedAt
	practice.ContractTypeID = &initiation.ContractTypeID
	practice.Quantity = initiation.Quantity
	practice.ContractValue = initiation.ContractValue
	practice.IsOdcec = initiation.IsOdcec
	practice.IsRenewal = initiation.IsRenewal
	practice.ConventionCode = initiation.ConventionCode
	practice.Breakdown = &breakdown
	practice.Status = model.PracticeStatusPendingPayment
	practice.SubmittedToPaymentAt = &submittedAt
	return copyPractice(practice), true, nil
}

func (r *fakePracticeRepo) AttachReceipt(_ context.Context, id uuid.UUID, documentRef string) (*model.Practice, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	practice, ok := r.practices[id]
	if !ok || practice.Status != model.PracticeStatusPendingPayment {
		return nil, false, nil
	}
	practice.ReceiptDocumentRef = &documentRef
	practice.Status = model.PracticeStatusReceiptUploaded
	return copyPractice(practice), true, nil
}

func (r *fakePracticeRepo) SubmitToCommission(_ context.Context, id uuid.UUID, at time.Time) (*model.Practice, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	practice, ok := r.practices[id]
	if !ok || practice.Status != model.PracticeStatusReceiptUploaded || practice.ReceiptDocumentRef == nil {
		return nil, false, nil
	}
	practice.Status = model.PracticeStatusSubmittedToCommission
	practice.SubmittedToReviewAt = &at
	return copyPractice(practice), true, nil
}

func (r *fakePracticeRepo) Claim(_ context.Context, id uuid.UUID, reviewerID uuid.UUID) (*model.Practice, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	practice, ok := r.practices[id]
	if !ok || practice.Status != model.PracticeStatusSubmittedToCommission || practice.AssignedReviewerID != nil {
		return nil, false, nil
	}
	practice.Status = model.PracticeStatusInProgress
	practice.AssignedReviewerID = &reviewerID
	return copyPractice(practice), true, nil
}

func (r *fakePracticeRepo) Resolve(_ context.Context, id uuid.UUID, reviewerID uuid.UUID, status model.PracticeStatus, at time.Time) (*model.Practice, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	practice, ok := r.practices[id]
	if !ok || practice.Status != model.PracticeStatusInProgress ||
		practice.AssignedReviewerID == nil || *practice.AssignedReviewerID != reviewerID {
		return nil, false, nil
	}
	practice.Status = status
	practice.ResolvedAt = &at
	return copyPractice(practice), true, nil
}

func (r *fakePracticeRepo) AddComment(_ context.Context, comment model.ReviewComment) (*model.ReviewComment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	comment.ID = uuid.New()
	comment.CreatedAt = time.Now().UTC()
	r.comments = append(r.comments, comment)
	return &comment, nil
}

func (r *fakePracticeRepo) ListComments(_ context.Context, practiceID uuid.UUID) ([]model.ReviewComment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []model.ReviewComment
	for _, comment := range r.comments {
		if comment.PracticeID == practiceID {
			result = append(result, comment)
		}
	}
	return result, nil
}

func copyPractice(practice *model.Practice) *model.Practice {
	clone := *practice
	if practice.Breakdown != nil {
		breakdown := *practice.Breakdown
		clone.Breakdown = &breakdown
	}
	return &clone
}

type fakePriceComputer struct {
	breakdown model.PriceBreakdown
	err       error
	calls     int
}

func (f *fakePriceComputer) ComputePrice(_ context.Context, _ pricing.Selection) (*model.PriceBreakdown, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	breakdown := f.breakdown
	return &breakdown, nil
}

type fakeCatalog struct{}

func (fakeCatalog) ListPriceRules(_ context.Context, _ *uuid.UUID) ([]model.PriceRule, error) {
	return nil, nil
}

func (fakeCatalog) ListContractTypes(_ context.Context) ([]model.ContractType, error) {
	return nil, nil
}

type fakeDocStore struct {
	ref string
	err error
}

func (f *fakeDocStore) StoreReceipt(_ context.Context, _ uuid.UUID, _ string, _ []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.ref, nil
}

type fakeSink struct {
	mu    sync.Mutex
	err   error
	calls []string
}

func (f *fakeSink) Notify(_ context.Context, _ uuid.UUID, kind string, _ map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, kind)
	return f.err
}

type fakeExcel struct{}

func (fakeExcel) Generate(_ model.PracticeRegister) ([]byte, error) { return []byte("xlsx"), nil }

type fakePDF struct{}

func (fakePDF) Generate(_ model.QuoteDocument) ([]byte, error) { return []byte("%PDF"), nil }

type testEnv struct {
	service *PracticeService
	repo    *fakePracticeRepo
	prices  *fakePriceComputer
	docs    *fakeDocStore
	sink    *fakeSink
}

func newTestEnv() *testEnv {
	repo := newFakePracticeRepo()
	prices := &fakePriceComputer{breakdown: model.PriceBreakdown{
		BaseAmount:   750,
		NetBeforeVAT: 750,
		VATRate:      22,
		VATAmount:    165,
		GrossTotal:   915,
	}}
	docs := &fakeDocStore{ref: "receipts/test.pdf"}
	sink := &fakeSink{}
	svc := NewPracticeService(repo, prices, fakeCatalog{}, docs, sink, fakeExcel{}, fakePDF{}, zerolog.Nop())
	return &testEnv{service: svc, repo: repo, prices: prices, docs: docs, sink: sink}
}

func submitterPrincipal() model.Principal {
	return model.Principal{UserID: uuid.New(), Role: model.RoleSubmitter}
}

func commissionPrincipal() model.Principal {
	return model.Principal{UserID: uuid.New(), Role: model.RoleCommission}
}

func testSelection() pricing.Selection {
	return pricing.Selection{ContractTypeID: uuid.New(), Quantity: 3}
}

// advance drives a practice through the lifecycle up to the wanted status.
func advance(t *testing.T, env *testEnv, submitter model.Principal, reviewer model.Principal, until model.PracticeStatus) *model.Practice {
	t.Helper()
	ctx := context.Background()

	practice, err := env.service.CreatePractice(ctx, submitter)
	require.NoError(t, err)
	if until == model.PracticeStatusDraft {
		return practice
	}

	practice, err = env.service.InitiatePayment(ctx, submitter, practice.ID, testSelection())
	require.NoError(t, err)
	if until == model.PracticeStatusPendingPayment {
		return practice
	}

	practice, err = env.service.AttachReceipt(ctx, submitter, practice.ID, "bonifico.pdf", []byte("receipt-bytes"))
	require.NoError(t, err)
	if until == model.PracticeStatusReceiptUploaded {
		return practice
	}

	practice, err = env.service.SubmitToCommission(ctx, submitter, practice.ID)
	require.NoError(t, err)
	if until == model.PracticeStatusSubmittedToCommission {
		return practice
	}

	practice, err = env.service.Claim(ctx, reviewer, practice.ID)
	require.NoError(t, err)
	return practice
}

func TestLifecycle_HappyPath(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	submitter := submitterPrincipal()
	reviewer := commissionPrincipal()

	practice, err := env.service.CreatePractice(ctx, submitter)
	require.NoError(t, err)
	assert.Equal(t, model.PracticeStatusDraft, practice.Status)
	assert.Nil(t, practice.Breakdown)

	practice, err = env.service.InitiatePayment(ctx, submitter, practice.ID, testSelection())
	require.NoError(t, err)
	assert.Equal(t, model.PracticeStatusPendingPayment, practice.Status)
	require.NotNil(t, practice.Breakdown)
	assert.InDelta(t, 915, practice.Breakdown.GrossTotal, 1e-9)
	require.NotNil(t, practice.SubmittedToPaymentAt)

	practice, err = env.service.AttachReceipt(ctx, submitter, practice.ID, "bonifico.pdf", []byte("receipt-bytes"))
	require.NoError(t, err)
	assert.Equal(t, model.PracticeStatusReceiptUploaded, practice.Status)
	require.NotNil(t, practice.ReceiptDocumentRef)
	assert.Equal(t, "receipts/test.pdf", *practice.ReceiptDocumentRef)

	practice, err = env.service.SubmitToCommission(ctx, submitter, practice.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PracticeStatusSubmittedToCommission, practice.Status)
	require.NotNil(t, practice.SubmittedToReviewAt)

	practice, err = env.service.Claim(ctx, reviewer, practice.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PracticeStatusInProgress, practice.Status)
	require.NotNil(t, practice.AssignedReviewerID)
	assert.Equal(t, reviewer.UserID, *practice.AssignedReviewerID)

	comment, err := env.service.Comment(ctx, reviewer, practice.ID, model.CommentKindRequestDocuments, "please attach the signed annex")
	require.NoError(t, err)
	assert.Equal(t, reviewer.UserID, comment.AuthorID)
	assert.Contains(t, env.sink.calls, NotificationKindComment)

	practice, err = env.service.Resolve(ctx, reviewer, practice.ID, true)
	require.NoError(t, err)
	assert.Equal(t, model.PracticeStatusCompleted, practice.Status)
	require.NotNil(t, practice.ResolvedAt)
	assert.Contains(t, env.sink.calls, NotificationKindResolved)
}

func TestInitiatePayment_FreezesBreakdownOnce(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	submitter := submitterPrincipal()

	practice := advance(t, env, submitter, commissionPrincipal(), model.PracticeStatusPendingPayment)
	frozen := *practice.Breakdown

	// Catalog changes after freezing must not touch the stored snapshot.
	env.prices.breakdown.GrossTotal = 9999

	_, err := env.service.InitiatePayment(ctx, submitter, practice.ID, testSelection())
	assert.ErrorIs(t, err, ErrInvalidTransition)

	reloaded, err := env.service.GetPractice(ctx, submitter, practice.ID)
	require.NoError(t, err)
	assert.Equal(t, frozen, *reloaded.Breakdown)
}

func TestInitiatePayment_PricingErrorKeepsDraft(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	submitter := submitterPrincipal()

	practice, err := env.service.CreatePractice(ctx, submitter)
	require.NoError(t, err)

	env.prices.err = pricing.ErrNoApplicableTariff
	_, err = env.service.InitiatePayment(ctx, submitter, practice.ID, testSelection())
	assert.ErrorIs(t, err, pricing.ErrNoApplicableTariff)

	reloaded, err := env.service.GetPractice(ctx, submitter, practice.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PracticeStatusDraft, reloaded.Status)
	assert.Nil(t, reloaded.Breakdown)
}

func TestAttachReceipt_Guards(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	submitter := submitterPrincipal()

	practice, err := env.service.CreatePractice(ctx, submitter)
	require.NoError(t, err)

	_, err = env.service.AttachReceipt(ctx, submitter, practice.ID, "r.pdf", []byte("x"))
	assert.ErrorIs(t, err, ErrInvalidTransition)

	practice = advance(t, env, submitter, commissionPrincipal(), model.PracticeStatusPendingPayment)
	_, err = env.service.AttachReceipt(ctx, submitter, practice.ID, "r.pdf", nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAttachReceipt_DocumentStoreFailure(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	submitter := submitterPrincipal()

	practice := advance(t, env, submitter, commissionPrincipal(), model.PracticeStatusPendingPayment)

	env.docs.err = errors.New("disk full")
	_, err := env.service.AttachReceipt(ctx, submitter, practice.ID, "r.pdf", []byte("x"))
	assert.ErrorIs(t, err, ErrCollaboratorUnavailable)

	// The failed upload must not advance the practice.
	reloaded, err := env.service.GetPractice(ctx, submitter, practice.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PracticeStatusPendingPayment, reloaded.Status)
}

func TestSubmitToCommission_Guards(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	submitter := submitterPrincipal()

	// From PENDING_PAYMENT the submit is an invalid transition, not a
	// missing receipt.
	practice := advance(t, env, submitter, commissionPrincipal(), model.PracticeStatusPendingPayment)
	_, err := env.service.SubmitToCommission(ctx, submitter, practice.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// RECEIPT_UPLOADED without a stored ref reports the missing receipt.
	env.repo.mu.Lock()
	stored := env.repo.practices[practice.ID]
	stored.Status = model.PracticeStatusReceiptUploaded
	stored.ReceiptDocumentRef = nil
	env.repo.mu.Unlock()

	_, err = env.service.SubmitToCommission(ctx, submitter, practice.ID)
	assert.ErrorIs(t, err, ErrMissingReceipt)
}

func TestClaim_Guards(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	submitter := submitterPrincipal()
	reviewer := commissionPrincipal()

	practice, err := env.service.CreatePractice(ctx, submitter)
	require.NoError(t, err)

	_, err = env.service.Claim(ctx, submitter, practice.ID)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = env.service.Claim(ctx, reviewer, practice.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = env.service.Claim(ctx, reviewer, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClaim_SecondReviewerRejected(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	submitter := submitterPrincipal()
	first := commissionPrincipal()
	second := commissionPrincipal()

	practice := advance(t, env, submitter, first, model.PracticeStatusSubmittedToCommission)

	_, err := env.service.Claim(ctx, first, practice.ID)
	require.NoError(t, err)

	_, err = env.service.Claim(ctx, second, practice.ID)
	assert.ErrorIs(t, err, ErrAlreadyAssigned)
}

func TestClaim_ConcurrentExactlyOneWins(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	submitter := submitterPrincipal()

	practice := advance(t, env, submitter, commissionPrincipal(), model.PracticeStatusSubmittedToCommission)

	const reviewers = 16
	var wg sync.WaitGroup
	var mu sync.Mutex
	var wins, alreadyAssigned int

	for i := 0; i < reviewers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.service.Claim(ctx, commissionPrincipal(), practice.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, ErrAlreadyAssigned):
				alreadyAssigned++
			default:
				t.Errorf("unexpected claim error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, reviewers-1, alreadyAssigned)
}

func TestComment_Guards(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	submitter := submitterPrincipal()
	reviewer := commissionPrincipal()

	practice := advance(t, env, submitter, reviewer, model.PracticeStatusSubmittedToCommission)

	_, err := env.service.Comment(ctx, reviewer, practice.ID, model.CommentKindStatusUpdate, "hello")
	assert.ErrorIs(t, err, ErrPermissionDenied) // not yet the assigned reviewer

	_, err = env.service.Comment(ctx, submitter, practice.ID, model.CommentKindStatusUpdate, "hello")
	assert.ErrorIs(t, err, ErrInvalidTransition) // not in progress yet

	_, err = env.service.Claim(ctx, reviewer, practice.ID)
	require.NoError(t, err)

	_, err = env.service.Comment(ctx, reviewer, practice.ID, model.CommentKind("SHOUT"), "hello")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = env.service.Comment(ctx, reviewer, practice.ID, model.CommentKindStatusUpdate, "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = env.service.Resolve(ctx, reviewer, practice.ID, false)
	require.NoError(t, err)

	_, err = env.service.Comment(ctx, reviewer, practice.ID, model.CommentKindStatusUpdate, "post-mortem")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestComment_NotificationFailureDoesNotFail(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	submitter := submitterPrincipal()
	reviewer := commissionPrincipal()

	practice := advance(t, env, submitter, reviewer, model.PracticeStatusInProgress)

	env.sink.err = errors.New("smtp down")
	comment, err := env.service.Comment(ctx, reviewer, practice.ID, model.CommentKindRequestHearing, "hearing on monday")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, comment.ID)

	comments, err := env.service.ListComments(ctx, submitter, practice.ID)
	require.NoError(t, err)
	assert.Len(t, comments, 1)
}

func TestResolve_Guards(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	submitter := submitterPrincipal()
	reviewer := commissionPrincipal()
	other := commissionPrincipal()

	practice := advance(t, env, submitter, reviewer, model.PracticeStatusSubmittedToCommission)

	// Resolving before any claim is an invalid transition.
	_, err := env.service.Resolve(ctx, reviewer, practice.ID, true)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = env.service.Claim(ctx, reviewer, practice.ID)
	require.NoError(t, err)

	// Only the assigned reviewer can resolve.
	_, err = env.service.Resolve(ctx, other, practice.ID, true)
	assert.ErrorIs(t, err, ErrNotAssignedReviewer)

	resolved, err := env.service.Resolve(ctx, reviewer, practice.ID, false)
	require.NoError(t, err)
	assert.Equal(t, model.PracticeStatusRejected, resolved.Status)

	// Terminal states accept no further resolution.
	_, err = env.service.Resolve(ctx, reviewer, practice.ID, true)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestResolve_NotificationFailureKeepsTransition(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	submitter := submitterPrincipal()
	reviewer := commissionPrincipal()

	practice := advance(t, env, submitter, reviewer, model.PracticeStatusInProgress)

	env.sink.err = errors.New("smtp down")
	resolved, err := env.service.Resolve(ctx, reviewer, practice.ID, true)
	require.NoError(t, err)
	assert.Equal(t, model.PracticeStatusCompleted, resolved.Status)

	reloaded, err := env.service.GetPractice(ctx, submitter, practice.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PracticeStatusCompleted, reloaded.Status)
}

func TestVisibility(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	owner := submitterPrincipal()
	stranger := submitterPrincipal()
	reviewer := commissionPrincipal()

	practice, err := env.service.CreatePractice(ctx, owner)
	require.NoError(t, err)

	_, err = env.service.GetPractice(ctx, stranger, practice.ID)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = env.service.GetPractice(ctx, reviewer, practice.ID)
	assert.NoError(t, err)

	// Submitters only list their own practices.
	listed, err := env.service.ListPractices(ctx, stranger, PracticeFilter{})
	require.NoError(t, err)
	assert.Empty(t, listed)

	listed, err = env.service.ListPractices(ctx, owner, PracticeFilter{})
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestExportRegister(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	submitter := submitterPrincipal()
	reviewer := commissionPrincipal()

	advance(t, env, submitter, reviewer, model.PracticeStatusPendingPayment)
	advance(t, env, submitter, reviewer, model.PracticeStatusInProgress)

	now := time.Now().UTC()
	input := ExportRegisterInput{
		PeriodStart: now.Add(-24 * time.Hour),
		PeriodEnd:   now,
	}

	_, err := env.service.ExportRegister(ctx, submitter, input)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	result, err := env.service.ExportRegister(ctx, reviewer, input)
	require.NoError(t, err)
	assert.NotEmpty(t, result.Content)
	assert.Contains(t, result.FileName, "practices-")

	_, err = env.service.ExportRegister(ctx, reviewer, ExportRegisterInput{PeriodEnd: now})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = env.service.ExportRegister(ctx, reviewer, ExportRegisterInput{
		PeriodStart: now,
		PeriodEnd:   now.Add(-48 * time.Hour),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestQuotePDF(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	submitter := submitterPrincipal()

	practice, err := env.service.CreatePractice(ctx, submitter)
	require.NoError(t, err)

	_, err = env.service.QuotePDF(ctx, submitter, practice.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	practice = advance(t, env, submitter, commissionPrincipal(), model.PracticeStatusPendingPayment)
	result, err := env.service.QuotePDF(ctx, submitter, practice.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, result.Content)
	assert.Contains(t, result.FileName, practice.ID.String())
}

func TestBuildRegister_GroupsInCanonicalOrder(t *testing.T) {
	now := time.Now().UTC()
	practices := []model.Practice{
		{ID: uuid.New(), Status: model.PracticeStatusCompleted, Breakdown: &model.PriceBreakdown{GrossTotal: 915}},
		{ID: uuid.New(), Status: model.PracticeStatusDraft},
		{ID: uuid.New(), Status: model.PracticeStatusCompleted, Breakdown: &model.PriceBreakdown{GrossTotal: 85}},
	}

	register := buildRegister(now, now, practices)

	assert.Equal(t, 3, register.TotalPractices)
	assert.InDelta(t, 1000, register.TotalGross, 1e-9)
	require.Len(t, register.Groups, 2)
	assert.Equal(t, model.PracticeStatusDraft, register.Groups[0].Status)
	assert.Equal(t, model.PracticeStatusCompleted, register.Groups[1].Status)
	assert.Len(t, register.Groups[1].Practices, 2)
}

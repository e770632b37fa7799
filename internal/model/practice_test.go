package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPracticeStatusIsValid(t *testing.T) {
	valid := []PracticeStatus{
		PracticeStatusDraft,
		PracticeStatusPendingPayment,
		PracticeStatusReceiptUploaded,
		PracticeStatusSubmittedToCommission,
		PracticeStatusInProgress,
		PracticeStatusCompleted,
		PracticeStatusRejected,
	}
	for _, status := range valid {
		assert.True(t, status.IsValid(), "status %s", status)
	}

	invalid := []PracticeStatus{"", "draft", "APPROVED", "PENDING"}
	for _, status := range invalid {
		assert.False(t, status.IsValid(), "status %q", status)
	}
}

func TestPracticeStatusIsTerminal(t *testing.T) {
	tests := []struct {
		status   PracticeStatus
		terminal bool
	}{
		{PracticeStatusDraft, false},
		{PracticeStatusPendingPayment, false},
		{PracticeStatusReceiptUploaded, false},
		{PracticeStatusSubmittedToCommission, false},
		{PracticeStatusInProgress, false},
		{PracticeStatusCompleted, true},
		{PracticeStatusRejected, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.terminal, tt.status.IsTerminal(), "status %s", tt.status)
	}
}

func TestCommentKindIsValid(t *testing.T) {
	valid := []CommentKind{
		CommentKindRequestDocuments,
		CommentKindRequestClarification,
		CommentKindStatusUpdate,
		CommentKindApproval,
		CommentKindRejection,
		CommentKindRequestHearing,
	}
	for _, kind := range valid {
		assert.True(t, kind.IsValid(), "kind %s", kind)
	}

	assert.False(t, CommentKind("").IsValid())
	assert.False(t, CommentKind("NOTE").IsValid())
}

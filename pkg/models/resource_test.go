package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidStatus(t *testing.T) {
	for _, s := range []ResourceStatus{StatusDraft, StatusPending, StatusApproved, StatusRejected, StatusTerminated} {
		assert.True(t, ValidStatus(s), string(s))
	}
	assert.False(t, ValidStatus("archived"))
	assert.False(t, ValidStatus(""))
}

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		status      ResourceStatus
		canSubmit   bool
		canResubmit bool
		canReview   bool
		editable    bool
	}{
		{status: StatusDraft, canSubmit: true, editable: true},
		{status: StatusPending, canReview: true, editable: true},
		{status: StatusApproved, editable: true},
		{status: StatusRejected, canResubmit: true, editable: true},
		{status: StatusTerminated},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.canSubmit, CanSubmit(tt.status))
			assert.Equal(t, tt.canResubmit, CanResubmit(tt.status))
			assert.Equal(t, tt.canReview, CanReview(tt.status))
			assert.Equal(t, tt.editable, EditableBy(tt.status))
		})
	}
}

func TestValidateReview(t *testing.T) {
	tests := []struct {
		name    string
		req     ReviewRequest
		wantErr error
	}{
		{
			name: "approve needs no reason",
			req:  ReviewRequest{Status: StatusApproved},
		},
		{
			name: "reject with reason",
			req:  ReviewRequest{Status: StatusRejected, RejectReason: "dead link"},
		},
		{
			name:    "reject without reason",
			req:     ReviewRequest{Status: StatusRejected},
			wantErr: ErrMissingReason,
		},
		{
			name:    "reject with whitespace reason",
			req:     ReviewRequest{Status: StatusRejected, RejectReason: "   "},
			wantErr: ErrMissingReason,
		},
		{
			name:    "verdict cannot target pending",
			req:     ReviewRequest{Status: StatusPending},
			wantErr: ErrInvalidTransition,
		},
		{
			name:    "verdict cannot target terminated",
			req:     ReviewRequest{Status: StatusTerminated},
			wantErr: ErrInvalidTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateReview(tt.req)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNormalizeTags(t *testing.T) {
	tests := []struct {
		name     string
		tags     []string
		expected []string
	}{
		{name: "nil input", tags: nil, expected: nil},
		{name: "trims whitespace", tags: []string{" folk ", "jazz"}, expected: []string{"folk", "jazz"}},
		{name: "drops empties", tags: []string{"", "  ", "folk"}, expected: []string{"folk"}},
		{
			name:     "dedupes keeping first occurrence order",
			tags:     []string{"folk", "jazz", "folk ", "blues", "jazz"},
			expected: []string{"folk", "jazz", "blues"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeTags(tt.tags))
		})
	}
}

func TestTransitionErrorCarriesCurrentStatus(t *testing.T) {
	err := NewTransitionError(StatusApproved, "submit")

	assert.ErrorIs(t, err, ErrInvalidTransition)

	var transitionErr *TransitionError
	assert.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, StatusApproved, transitionErr.Current)
}

package models

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ResourceStatus string

const (
	StatusDraft      ResourceStatus = "draft"
	StatusPending    ResourceStatus = "pending"
	StatusApproved   ResourceStatus = "approved"
	StatusRejected   ResourceStatus = "rejected"
	StatusTerminated ResourceStatus = "terminated"
)

// Resource is a user-submitted record pointing at an external link, subject to
// admin review before it becomes publicly visible.
//
// Category is a reference by id only. The legacy backend stored it as either a
// plain string or an embedded object, which corrupted documents once the
// object serialized wrong; the typed reference makes that unrepresentable.
type Resource struct {
	ID            primitive.ObjectID  `bson:"_id" json:"id"`
	Title         string              `bson:"title" json:"title"`
	Description   string              `bson:"description" json:"description"`
	Link          string              `bson:"link" json:"link"`
	Slug          string              `bson:"slug" json:"slug"`
	Uploader      primitive.ObjectID  `bson:"uploader" json:"uploader"`
	Category      *primitive.ObjectID `bson:"category" json:"category"`
	Tags          []string            `bson:"tags" json:"tags"`
	DownloadCount int                 `bson:"download_count" json:"downloadCount"`
	Rating        float64             `bson:"rating" json:"rating"`
	RatingCount   int                 `bson:"rating_count" json:"ratingCount"`
	Status        ResourceStatus      `bson:"status" json:"status"`
	ReviewedBy    *primitive.ObjectID `bson:"reviewed_by" json:"reviewedBy"`
	ReviewedAt    *time.Time          `bson:"reviewed_at" json:"reviewedAt"`
	RejectReason  string              `bson:"reject_reason" json:"rejectReason,omitempty"`
	Version       int                 `bson:"version" json:"version"`
	IsPublic      bool                `bson:"is_public" json:"isPublic"`
	LastCheckedAt *time.Time          `bson:"last_checked_at" json:"lastCheckedAt,omitempty"`
	CreatedAt     time.Time           `bson:"created_at" json:"createdAt"`
	UpdatedAt     time.Time           `bson:"updated_at" json:"updatedAt"`
}

type ResourceRequest struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Description string   `json:"description" validate:"max=2000"`
	Link        string   `json:"link" validate:"required,url"`
	Category    *string  `json:"category"`
	Tags        []string `json:"tags"`
	Draft       bool     `json:"draft"`
}

type ResourceUpdateRequest struct {
	Title       *string  `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string  `json:"description" validate:"omitempty,max=2000"`
	Link        *string  `json:"link" validate:"omitempty,url"`
	Category    *string  `json:"category"`
	Tags        []string `json:"tags"`
}

// ReviewRequest is the admin review verdict body.
type ReviewRequest struct {
	Status       ResourceStatus `json:"status" validate:"required,oneof=approved rejected"`
	RejectReason string         `json:"rejectReason"`
}

// ResourceFilter narrows resource list queries.
type ResourceFilter struct {
	Status     string
	Category   string
	Tags       []string
	UploaderID string
	Keyword    string
}

// ValidStatus reports whether s names a known resource status.
func ValidStatus(s ResourceStatus) bool {
	switch s {
	case StatusDraft, StatusPending, StatusApproved, StatusRejected, StatusTerminated:
		return true
	}
	return false
}

// CanReview reports whether an approve/reject verdict may land. Only pending
// resources are reviewable.
func CanReview(current ResourceStatus) bool {
	return current == StatusPending
}

// CanSubmit reports whether the uploader may move a draft into review.
func CanSubmit(current ResourceStatus) bool {
	return current == StatusDraft
}

// CanResubmit reports whether the uploader may re-enter review after a
// rejection. Terminated resources stay terminal; they come back only as a new
// upload.
func CanResubmit(current ResourceStatus) bool {
	return current == StatusRejected
}

// EditableBy reports whether the uploader may still change content fields.
// Terminated resources are frozen.
func EditableBy(current ResourceStatus) bool {
	switch current {
	case StatusDraft, StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// ValidateReview enforces the verdict shape: status must be approved or
// rejected, and a rejection carries a non-empty reason.
func ValidateReview(req ReviewRequest) error {
	if req.Status != StatusApproved && req.Status != StatusRejected {
		return errors.Wrapf(ErrInvalidTransition, "review verdict must be approved or rejected, got %q", req.Status)
	}
	if req.Status == StatusRejected && strings.TrimSpace(req.RejectReason) == "" {
		return ErrMissingReason
	}
	return nil
}

// NormalizeTags trims, drops empties, and deduplicates while keeping first
// occurrence order.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	var out []string
	for _, tag := range tags {
		trimmed := strings.TrimSpace(tag)
		if trimmed == "" {
			continue
		}
		if _, dup := seen[trimmed]; dup {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}

package services

import (
	"context"

	"cultureshare-api-io/api/pkg/models"
	"cultureshare-api-io/api/pkg/util"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CategoryService maintains the category hierarchy and its invariants: name
// uniqueness, active parents, materialized path/level consistency, and refusal
// to delete nodes that still anchor children or resources.
type CategoryService interface {
	Create(ctx context.Context, req models.CategoryRequest) (*models.Category, error)
	Update(ctx context.Context, id primitive.ObjectID, req models.CategoryUpdateRequest) (*models.Category, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error)
	ListFlat(ctx context.Context, activeOnly bool) ([]*models.Category, error)
	ListTree(ctx context.Context, activeOnly bool) ([]*models.Category, error)
	// ResourcesIn lists approved resources filed under the category or any of
	// its descendants.
	ResourcesIn(ctx context.Context, id primitive.ObjectID, pagination util.PaginationArgs) ([]models.Resource, int64, error)
}

// ResourceService owns the resource lifecycle, including every status
// transition of the review workflow. Transitions are single conditional
// updates filtered on the expected current status, so concurrent admin actions
// on the same resource serialize: the loser observes an invalid transition.
type ResourceService interface {
	Create(ctx context.Context, uploader primitive.ObjectID, req models.ResourceRequest) (*models.Resource, error)
	Get(ctx context.Context, id primitive.ObjectID) (*ResourceDetail, error)
	List(ctx context.Context, filter models.ResourceFilter, pagination util.PaginationArgs) ([]models.Resource, int64, error)
	Update(ctx context.Context, id, userID primitive.ObjectID, req models.ResourceUpdateRequest) (*models.Resource, error)
	Delete(ctx context.Context, id, userID primitive.ObjectID) error

	Submit(ctx context.Context, id, userID primitive.ObjectID) (*models.Resource, error)
	Resubmit(ctx context.Context, id, userID primitive.ObjectID) (*models.Resource, error)
	Review(ctx context.Context, id, reviewerID primitive.ObjectID, req models.ReviewRequest) (*models.Resource, error)

	IncrementDownload(ctx context.Context, id primitive.ObjectID) (int, error)
	PendingQueue(ctx context.Context, pagination util.PaginationArgs) ([]models.Resource, int64, error)
	ByUploader(ctx context.Context, uploaderID primitive.ObjectID, status string, pagination util.PaginationArgs) ([]models.Resource, int64, error)
}

// ResourceDetail is a resource joined with its uploader and category.
type ResourceDetail struct {
	models.Resource `bson:",inline"`
	UploaderInfo    *models.PublicUser `bson:"uploader_info" json:"uploaderInfo,omitempty"`
	CategoryInfo    *models.Category   `bson:"category_info" json:"categoryInfo,omitempty"`
}

// LinkCheckResult reports one outbound probe.
type LinkCheckResult struct {
	ResourceID primitive.ObjectID    `json:"resourceId"`
	Link       string                `json:"link"`
	Reachable  bool                  `json:"reachable"`
	Cause      string                `json:"cause,omitempty"`
	Status     models.ResourceStatus `json:"status"`
}

// BatchCheckSummary aggregates a sweep over all approved resources.
type BatchCheckSummary struct {
	Total            int               `json:"total"`
	Checked          int               `json:"checked"`
	Valid            int               `json:"valid"`
	Invalid          int               `json:"invalid"`
	Failed           int               `json:"failed"`
	InvalidResources []LinkCheckResult `json:"invalidResources"`
}

// LinkCheckService probes resource links and terminates approved resources
// whose links have gone dead.
type LinkCheckService interface {
	CheckResource(ctx context.Context, id primitive.ObjectID) (*LinkCheckResult, error)
	CheckAllApproved(ctx context.Context) (*BatchCheckSummary, error)
}

// SystemStats is the admin dashboard rollup, recomputed on every call.
type SystemStats struct {
	TotalUsers             int64              `json:"totalUsers"`
	TotalResources         int64              `json:"totalResources"`
	TotalApprovedResources int64              `json:"totalApprovedResources"`
	TotalPendingResources  int64              `json:"totalPendingResources"`
	TotalRejectedResources int64              `json:"totalRejectedResources"`
	TotalCategories        int64              `json:"totalCategories"`
	TotalTags              int64              `json:"totalTags"`
	TotalRatings           int64              `json:"totalRatings"`
	TotalFavorites         int64              `json:"totalFavorites"`
	TotalDownloads         int64              `json:"totalDownloads"`
	RecentUsers            []models.User      `json:"recentUsers"`
	RecentResources        []models.Resource  `json:"recentResources"`
}

// UserStats is the per-user breakdown.
type UserStats struct {
	TotalResourcesUploaded int64             `json:"totalResourcesUploaded"`
	UploadsByStatus        map[string]int64  `json:"uploadsByStatus"`
	TotalFavorites         int64             `json:"totalFavorites"`
	TotalDownloads         int64             `json:"totalDownloads"`
	TotalRatings           int64             `json:"totalRatings"`
	RecentUploads          []models.Resource `json:"recentUploads"`
}

// StatsService computes read-only rollups over the collections.
type StatsService interface {
	SystemStats(ctx context.Context) (*SystemStats, error)
	UserStats(ctx context.Context, userID primitive.ObjectID) (*UserStats, error)
}

// NotificationService records uploader notifications for review outcomes and
// link terminations, and serves the uploader's inbox.
type NotificationService interface {
	NotifyReviewedAsync(resource models.Resource, verdict models.ResourceStatus, reason string)
	NotifyTerminatedAsync(resource models.Resource, reason string)
	List(ctx context.Context, userID primitive.ObjectID, pagination util.PaginationArgs) ([]models.Notification, int64, error)
	MarkRead(ctx context.Context, userID, notificationID primitive.ObjectID) error
}

// UserService covers accounts: registration, token issuance, profile, and the
// admin user-management surface.
type UserService interface {
	CreateUser(ctx context.Context, req models.CreateUserRequest) (primitive.ObjectID, error)
	AuthenticateUser(ctx context.Context, req models.LoginRequest) (*models.User, string, int64, error)
	AuthenticateGoogleUser(ctx context.Context, idToken string) (*models.User, string, int64, error)
	Logout(ctx context.Context, token string) error

	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, req models.UpdateProfileRequest) error
	UpdateAvatar(ctx context.Context, id primitive.ObjectID, avatarURL string) error

	SetUserStatus(ctx context.Context, id primitive.ObjectID, active bool) error
	ListUsers(ctx context.Context, pagination util.PaginationArgs) ([]models.User, int64, error)
}

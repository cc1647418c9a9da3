package services

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"cultureshare-api-io/api/internal/common"
	"cultureshare-api-io/api/pkg/models"
	"cultureshare-api-io/api/pkg/util"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"
)

type linkCheckService struct {
	resourceCollection *mongo.Collection
	notifications      NotificationService
	client             *http.Client
}

func NewLinkCheckService(db *mongo.Database, notifications NotificationService) LinkCheckService {
	return &linkCheckService{
		resourceCollection: util.GetCollection(db, "Resource"),
		notifications:      notifications,
		client: &http.Client{
			Timeout: common.LINK_CHECK_TIMEOUT,
		},
	}
}

// CheckResource probes one approved resource's link. A dead link terminates
// the resource; a live one just stamps last_checked_at.
func (s *linkCheckService) CheckResource(ctx context.Context, id primitive.ObjectID) (*LinkCheckResult, error) {
	var resource models.Resource
	err := s.resourceCollection.FindOne(ctx, bson.M{"_id": id}).Decode(&resource)
	if err == mongo.ErrNoDocuments {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "finding resource")
	}

	if resource.Status != models.StatusApproved {
		return nil, models.NewTransitionError(resource.Status, "link-check")
	}

	return s.probeAndApply(ctx, resource)
}

// CheckAllApproved sweeps every approved resource with bounded concurrency so
// a large catalog doesn't flood egress or the target hosts.
func (s *linkCheckService) CheckAllApproved(ctx context.Context) (*BatchCheckSummary, error) {
	cursor, err := s.resourceCollection.Find(ctx, bson.M{"status": models.StatusApproved})
	if err != nil {
		return nil, errors.Wrap(err, "listing approved resources")
	}

	var resources []models.Resource
	if err := cursor.All(ctx, &resources); err != nil {
		return nil, err
	}

	summary := &BatchCheckSummary{Total: len(resources)}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(common.LINK_CHECK_CONCURRENCY)

	for _, resource := range resources {
		resource := resource
		g.Go(func() error {
			result, err := s.probeAndApply(gctx, resource)

			mu.Lock()
			defer mu.Unlock()
			summary.Checked++
			if err != nil {
				summary.Failed++
				util.LogError("batch link check", err)
				return nil
			}
			if result.Reachable {
				summary.Valid++
			} else {
				summary.Invalid++
				summary.InvalidResources = append(summary.InvalidResources, *result)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return summary, nil
}

func (s *linkCheckService) probeAndApply(ctx context.Context, resource models.Resource) (*LinkCheckResult, error) {
	reachable, cause := s.probe(ctx, resource.Link)
	now := time.Now()

	result := &LinkCheckResult{
		ResourceID: resource.ID,
		Link:       resource.Link,
		Reachable:  reachable,
		Cause:      cause,
		Status:     resource.Status,
	}

	if reachable {
		_, err := s.resourceCollection.UpdateOne(ctx,
			bson.M{"_id": resource.ID},
			bson.M{"$set": bson.M{"last_checked_at": now}},
		)
		if err != nil {
			return nil, errors.Wrap(err, "stamping link check")
		}
		return result, nil
	}

	reason := TerminationReason(now, cause)

	// Conditional on status so a concurrent review or edit wins cleanly; the
	// reviewer fields stay untouched because termination is machine-caused,
	// not a reviewer verdict.
	res, err := s.resourceCollection.UpdateOne(ctx,
		bson.M{"_id": resource.ID, "status": models.StatusApproved},
		bson.M{"$set": bson.M{
			"status":          models.StatusTerminated,
			"reject_reason":   reason,
			"last_checked_at": now,
			"updated_at":      now,
		}},
	)
	if err != nil {
		return nil, errors.Wrap(err, "terminating resource")
	}

	if res.MatchedCount > 0 {
		util.LogWarning("terminated resource " + resource.ID.Hex() + ": " + reason)
		result.Status = models.StatusTerminated
		resource.Status = models.StatusTerminated
		s.notifications.NotifyTerminatedAsync(resource, reason)
	}

	return result, nil
}

// probe issues a bounded HEAD and retries once with GET, since some hosts
// reject HEAD outright.
func (s *linkCheckService) probe(ctx context.Context, link string) (bool, string) {
	ok, cause := s.request(ctx, http.MethodHead, link)
	if ok {
		return true, ""
	}

	ok, cause = s.request(ctx, http.MethodGet, link)
	if ok {
		return true, ""
	}

	return false, cause
}

func (s *linkCheckService) request(ctx context.Context, method, link string) (bool, string) {
	req, err := http.NewRequestWithContext(ctx, method, link, nil)
	if err != nil {
		return false, fmt.Sprintf("invalid link: %v", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return false, fmt.Sprintf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if !ReachableStatus(resp.StatusCode) {
		return false, fmt.Sprintf("link returned status code %d", resp.StatusCode)
	}

	return true, ""
}

// ReachableStatus treats 2xx and 3xx as alive; anything 400+ is a dead link.
func ReachableStatus(code int) bool {
	return code < 400
}

// TerminationReason is the machine-readable reject reason stored when a link
// check kills a resource.
func TerminationReason(at time.Time, cause string) string {
	return fmt.Sprintf("link unreachable as of %s: %s", at.UTC().Format(time.RFC3339), cause)
}

package services

import (
	"context"
	"testing"
	"time"

	"cultureshare-api-io/api/pkg/models"
	"cultureshare-api-io/api/pkg/util"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

const resourceNS = "cultureshare.Resource"

// recordingNotifier satisfies NotificationService without a store, capturing
// what the service would have told the uploader.
type recordingNotifier struct {
	reviewed   []models.ResourceStatus
	terminated []string
}

func (n *recordingNotifier) NotifyReviewedAsync(_ models.Resource, verdict models.ResourceStatus, _ string) {
	n.reviewed = append(n.reviewed, verdict)
}

func (n *recordingNotifier) NotifyTerminatedAsync(_ models.Resource, reason string) {
	n.terminated = append(n.terminated, reason)
}

func (n *recordingNotifier) List(context.Context, primitive.ObjectID, util.PaginationArgs) ([]models.Notification, int64, error) {
	return nil, 0, nil
}

func (n *recordingNotifier) MarkRead(context.Context, primitive.ObjectID, primitive.ObjectID) error {
	return nil
}

func toDoc(t *testing.T, v interface{}) bson.D {
	t.Helper()
	raw, err := bson.Marshal(v)
	assert.NoError(t, err)
	var doc bson.D
	assert.NoError(t, bson.Unmarshal(raw, &doc))
	return doc
}

func updateResponse(matched int) bson.D {
	return mtest.CreateSuccessResponse(
		bson.E{Key: "n", Value: matched},
		bson.E{Key: "nModified", Value: matched},
	)
}

func resourceInStatus(uploader primitive.ObjectID, status models.ResourceStatus) models.Resource {
	now := time.Now().Truncate(time.Millisecond)
	return models.Resource{
		ID:        primitive.NewObjectID(),
		Title:     "Folk tales archive",
		Slug:      "folk-tales-archive",
		Link:      "https://example.com/folk-tales",
		Uploader:  uploader,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestReviewRefusesNonPendingResource(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	defer mt.Close()

	mt.Run("verdict on an approved resource", func(mt *mtest.T) {
		notifier := &recordingNotifier{}
		svc := NewResourceService(mt.DB, notifier)

		res := resourceInStatus(primitive.NewObjectID(), models.StatusApproved)
		mt.AddMockResponses(
			updateResponse(0),
			mtest.CreateCursorResponse(0, resourceNS, mtest.FirstBatch, toDoc(mt.T, res)),
		)

		_, err := svc.Review(context.Background(), res.ID, primitive.NewObjectID(),
			models.ReviewRequest{Status: models.StatusApproved})

		var te *models.TransitionError
		assert.ErrorAs(mt.T, err, &te)
		assert.Equal(mt.T, models.StatusApproved, te.Current)
		assert.ErrorIs(mt.T, err, models.ErrInvalidTransition)
		assert.Empty(mt.T, notifier.reviewed)
	})
}

// Two admins racing on the same pending resource serialize through the
// conditional update: the winner's write matches, the loser's matches nothing
// and reports the state the winner left behind.
func TestReviewConcurrentVerdicts(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	defer mt.Close()

	mt.Run("winning approve lands and notifies", func(mt *mtest.T) {
		notifier := &recordingNotifier{}
		svc := NewResourceService(mt.DB, notifier)

		approved := resourceInStatus(primitive.NewObjectID(), models.StatusApproved)
		mt.AddMockResponses(
			updateResponse(1),
			mtest.CreateCursorResponse(0, resourceNS, mtest.FirstBatch, toDoc(mt.T, approved)),
		)

		reviewed, err := svc.Review(context.Background(), approved.ID, primitive.NewObjectID(),
			models.ReviewRequest{Status: models.StatusApproved})

		assert.NoError(mt.T, err)
		assert.Equal(mt.T, models.StatusApproved, reviewed.Status)
		assert.Equal(mt.T, []models.ResourceStatus{models.StatusApproved}, notifier.reviewed)
	})

	mt.Run("losing reject observes the approval", func(mt *mtest.T) {
		notifier := &recordingNotifier{}
		svc := NewResourceService(mt.DB, notifier)

		approved := resourceInStatus(primitive.NewObjectID(), models.StatusApproved)
		mt.AddMockResponses(
			updateResponse(0),
			mtest.CreateCursorResponse(0, resourceNS, mtest.FirstBatch, toDoc(mt.T, approved)),
		)

		_, err := svc.Review(context.Background(), approved.ID, primitive.NewObjectID(),
			models.ReviewRequest{Status: models.StatusRejected, RejectReason: "broken link"})

		var te *models.TransitionError
		assert.ErrorAs(mt.T, err, &te)
		assert.Equal(mt.T, models.StatusApproved, te.Current)
		assert.Empty(mt.T, notifier.reviewed)
	})
}

// An uploader edit decides its status handling from a read, so the write is
// conditional on that same status: a termination landing in between must not
// be stomped back to pending.
func TestUpdateLosesRaceToTermination(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	defer mt.Close()

	mt.Run("edit against a just-terminated resource", func(mt *mtest.T) {
		svc := NewResourceService(mt.DB, &recordingNotifier{})

		uploader := primitive.NewObjectID()
		approved := resourceInStatus(uploader, models.StatusApproved)
		terminated := approved
		terminated.Status = models.StatusTerminated
		terminated.RejectReason = "link unreachable"

		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, resourceNS, mtest.FirstBatch, toDoc(mt.T, approved)),
			updateResponse(0),
			mtest.CreateCursorResponse(0, resourceNS, mtest.FirstBatch, toDoc(mt.T, terminated)),
		)

		title := "Folk tales archive, revised"
		_, err := svc.Update(context.Background(), approved.ID, uploader,
			models.ResourceUpdateRequest{Title: &title})

		var te *models.TransitionError
		assert.ErrorAs(mt.T, err, &te)
		assert.Equal(mt.T, models.StatusTerminated, te.Current)
	})
}

func TestSubmitMissIsExplained(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	defer mt.Close()

	mt.Run("someone else's resource", func(mt *mtest.T) {
		svc := NewResourceService(mt.DB, &recordingNotifier{})

		draft := resourceInStatus(primitive.NewObjectID(), models.StatusDraft)
		mt.AddMockResponses(
			updateResponse(0),
			mtest.CreateCursorResponse(0, resourceNS, mtest.FirstBatch, toDoc(mt.T, draft)),
		)

		_, err := svc.Submit(context.Background(), draft.ID, primitive.NewObjectID())
		assert.ErrorIs(mt.T, err, models.ErrForbidden)
	})

	mt.Run("already pending", func(mt *mtest.T) {
		svc := NewResourceService(mt.DB, &recordingNotifier{})

		uploader := primitive.NewObjectID()
		pending := resourceInStatus(uploader, models.StatusPending)
		mt.AddMockResponses(
			updateResponse(0),
			mtest.CreateCursorResponse(0, resourceNS, mtest.FirstBatch, toDoc(mt.T, pending)),
		)

		_, err := svc.Submit(context.Background(), pending.ID, uploader)

		var te *models.TransitionError
		assert.ErrorAs(mt.T, err, &te)
		assert.Equal(mt.T, models.StatusPending, te.Current)
	})
}

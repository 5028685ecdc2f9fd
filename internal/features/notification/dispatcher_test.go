package notification

import (
	"context"
	"testing"

	"go-hrops/internal/common/models"
	"go-hrops/internal/features/approval"
	"go-hrops/internal/features/member"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type recordingRepo struct {
	NotificationRepository
	created []Notification
}

func (r *recordingRepo) CreateMany(_ context.Context, notifications []Notification) error {
	r.created = append(r.created, notifications...)
	return nil
}

type staticMembers struct {
	member.MemberRepository
}

func (staticMembers) FindByID(context.Context, primitive.ObjectID) (*models.Member, error) {
	return &models.Member{Name: "Requester", Email: "requester@test"}, nil
}

func completedEvent(requesterID primitive.ObjectID) approval.Event {
	return approval.Event{
		Kind:        approval.EventCompleted,
		TenantID:    primitive.NewObjectID(),
		Module:      approval.ModuleLeaveRequest,
		EntityID:    primitive.NewObjectID(),
		RequesterID: requesterID,
	}
}

func TestDispatcherDeliversBufferedEvents(t *testing.T) {
	repo := &recordingRepo{}
	d := NewDispatcher(repo, staticMembers{}, nil, nil, zap.NewNop())

	requesterID := primitive.NewObjectID()
	d.Publish(completedEvent(requesterID))
	d.Close()

	if len(repo.created) != 1 {
		t.Fatalf("created %d notifications, want 1", len(repo.created))
	}
	if repo.created[0].MemberID != requesterID {
		t.Errorf("notification member = %s, want the requester", repo.created[0].MemberID.Hex())
	}
}

func TestDispatcherPublishAfterClose(t *testing.T) {
	repo := &recordingRepo{}
	d := NewDispatcher(repo, staticMembers{}, nil, nil, zap.NewNop())

	d.Close()
	d.Publish(completedEvent(primitive.NewObjectID()))
	d.Close()

	if len(repo.created) != 0 {
		t.Errorf("created %d notifications after close, want 0", len(repo.created))
	}
}

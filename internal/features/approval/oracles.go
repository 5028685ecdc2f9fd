package approval

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Data-integrity failures. Business outcomes (denied, already processed,
// no chain) are result values, not errors.
var (
	ErrStepNotFound         = errors.New("approval step not found")
	ErrStepAlreadyProcessed = errors.New("approval step already processed")
	ErrMemberNotFound       = errors.New("member not found")
)

// EligibilityOracle answers whether any approver exists for a role at chain
// initialization time. Implemented by the member directory.
type EligibilityOracle interface {
	HasApproverForRole(ctx context.Context, role ApproverRole, tenantID, requesterID primitive.ObjectID) (bool, error)
}

// AuthorizationOracle answers whether a specific member may act on a step.
type AuthorizationOracle interface {
	CanMemberApprove(ctx context.Context, memberID primitive.ObjectID, step *ApprovalStep) (Authorization, error)
}

// ApproverDirectory resolves the concrete members able to act at a level,
// excluding the requester, for notification addressing.
type ApproverDirectory interface {
	GetApproversForRole(ctx context.Context, role ApproverRole, tenantID, requesterID primitive.ObjectID) ([]Approver, error)
	MemberName(ctx context.Context, id primitive.ObjectID) (string, error)
}

// EventKind classifies outbound approval events.
type EventKind string

const (
	EventAdvanced  EventKind = "ApprovalAdvanced"
	EventCompleted EventKind = "ApprovalCompleted"
	EventRejected  EventKind = "ApprovalRejected"
	EventBypassed  EventKind = "ApprovalBypassed"
)

// Event is published after a state transition commits. Consumers (in-app
// notifications, email, websocket) run asynchronously; their failure never
// fails the transition.
type Event struct {
	Kind        EventKind            `json:"kind"`
	TenantID    primitive.ObjectID   `json:"tenant_id"`
	Module      Module               `json:"module"`
	EntityID    primitive.ObjectID   `json:"entity_id"`
	EntityTitle string               `json:"entity_title,omitempty"`
	RequesterID primitive.ObjectID   `json:"requester_id"`
	ActorID     primitive.ObjectID   `json:"actor_id"`
	LevelOrder  int                  `json:"level_order"`
	NextRole    ApproverRole         `json:"next_role,omitempty"`
	Addressees  []Approver           `json:"addressees,omitempty"`
	Notes       string               `json:"notes,omitempty"`
	Timestamp   time.Time            `json:"timestamp"`
}

// EventPublisher decouples the engine from notification channels.
type EventPublisher interface {
	Publish(event Event)
}

// EntityMeta is the minimal entity projection the engine needs for events.
type EntityMeta struct {
	Title       string
	RequesterID primitive.ObjectID
}

// EntityResolver maps the polymorphic (module, id) reference back to the
// concrete request collection. Each entity feature registers one.
type EntityResolver interface {
	Module() Module
	Resolve(ctx context.Context, entityID primitive.ObjectID) (*EntityMeta, error)
}

package approval

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Module tags the business entity a policy or step belongs to. Steps reference
// their entity polymorphically by (module, entity id) instead of a typed
// foreign key, since each module keeps its requests in its own collection.
type Module string

const (
	ModuleLeaveRequest    Module = "LEAVE_REQUEST"
	ModulePurchaseRequest Module = "PURCHASE_REQUEST"
	ModuleAssetRequest    Module = "ASSET_REQUEST"
)

// ApproverRole is the abstract role required to act at one level of a chain.
type ApproverRole string

const (
	RoleManager        ApproverRole = "MANAGER"
	RoleHRManager      ApproverRole = "HR_MANAGER"
	RoleFinanceManager ApproverRole = "FINANCE_MANAGER"
	RoleDirector       ApproverRole = "DIRECTOR"
	RoleEmployee       ApproverRole = "EMPLOYEE"
)

type StepStatus string

const (
	StepStatusPending  StepStatus = "PENDING"
	StepStatusApproved StepStatus = "APPROVED"
	StepStatusRejected StepStatus = "REJECTED"
	StepStatusSkipped  StepStatus = "SKIPPED"
)

// ChainStatus is derived from the steps of one entity, never stored.
type ChainStatus string

const (
	ChainStatusNotStarted ChainStatus = "NOT_STARTED"
	ChainStatusPending    ChainStatus = "PENDING"
	ChainStatusApproved   ChainStatus = "APPROVED"
	ChainStatusRejected   ChainStatus = "REJECTED"
)

type Action string

const (
	ActionApprove Action = "APPROVE"
	ActionReject  Action = "REJECT"
)

// ApprovalLevel is one rung of a policy. LevelOrder is 1-based and contiguous.
type ApprovalLevel struct {
	LevelOrder int          `bson:"level_order" json:"level_order"`
	Role       ApproverRole `bson:"role" json:"role"`
}

// ApprovalPolicy is a named, tenant-scoped rule set for one module. Threshold
// bounds are half-open on both sides: a nil min means 0, a nil max means
// unbounded. Editing a policy never touches chains already initialized from it.
type ApprovalPolicy struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TenantID primitive.ObjectID `bson:"tenant_id" json:"tenant_id"`
	Module   Module             `bson:"module" json:"module"`
	Name     string             `bson:"name" json:"name"`
	IsActive bool               `bson:"is_active" json:"is_active"`
	Priority int                `bson:"priority" json:"priority"`

	MinDays   *float64 `bson:"min_days,omitempty" json:"min_days,omitempty"`
	MaxDays   *float64 `bson:"max_days,omitempty" json:"max_days,omitempty"`
	MinAmount *float64 `bson:"min_amount,omitempty" json:"min_amount,omitempty"`
	MaxAmount *float64 `bson:"max_amount,omitempty" json:"max_amount,omitempty"`

	// CriteriaScript is an optional Tengo expression evaluated against the
	// entity's data; when set, the policy matches only if it yields true.
	CriteriaScript string `bson:"criteria_script,omitempty" json:"criteria_script,omitempty"`

	Levels    []ApprovalLevel `bson:"levels" json:"levels"`
	CreatedAt time.Time       `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time       `bson:"updated_at" json:"updated_at"`
}

// ApprovalStep is the live unit of work: one row per (module, entity, level).
type ApprovalStep struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	TenantID     primitive.ObjectID  `bson:"tenant_id" json:"tenant_id"`
	Module       Module              `bson:"module" json:"module"`
	EntityID     primitive.ObjectID  `bson:"entity_id" json:"entity_id"`
	RequesterID  primitive.ObjectID  `bson:"requester_id" json:"requester_id"`
	LevelOrder   int                 `bson:"level_order" json:"level_order"`
	RequiredRole ApproverRole        `bson:"required_role" json:"required_role"`
	Status       StepStatus          `bson:"status" json:"status"`
	ApproverID   *primitive.ObjectID `bson:"approver_id,omitempty" json:"approver_id,omitempty"`
	ApproverName string              `bson:"-" json:"approver_name,omitempty"`
	ActionAt     *time.Time          `bson:"action_at,omitempty" json:"action_at,omitempty"`
	Notes        string              `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt    time.Time           `bson:"created_at" json:"created_at"`
}

// ChainSummary condenses a chain for list views. CompletedSteps counts every
// resolved (non-PENDING) step regardless of branch.
type ChainSummary struct {
	TotalSteps     int         `json:"total_steps"`
	CompletedSteps int         `json:"completed_steps"`
	CurrentStep    int         `json:"current_step"`
	Status         ChainStatus `json:"status"`
}

// Authorization is the structured outcome of an authorization check. Denial is
// a value, never an error.
type Authorization struct {
	CanApprove bool   `json:"can_approve"`
	Reason     string `json:"reason,omitempty"`
}

// ProcessResult reports the outcome of one approval action on a chain.
type ProcessResult struct {
	ChainExists     bool           `json:"chain_exists"`
	StepProcessed   bool           `json:"step_processed"`
	IsChainComplete bool           `json:"is_chain_complete"`
	AllApproved     bool           `json:"all_approved"`
	Chain           []ApprovalStep `json:"chain,omitempty"`
	Summary         *ChainSummary  `json:"summary,omitempty"`
	Error           string         `json:"error,omitempty"`
}

// MatchInput carries the threshold value and entity data for policy matching.
// Days applies to leave, Amount to spend modules; both nil means "first
// active policy" (administrative lookup).
type MatchInput struct {
	Days       *float64
	Amount     *float64
	EntityData map[string]interface{}
}

// Approver identifies a member able to act at a level, used to address
// notifications.
type Approver struct {
	ID    primitive.ObjectID `json:"id"`
	Email string             `json:"email"`
	Name  string             `json:"name"`
}

package leave

import (
	"time"

	"go-hrops/internal/common/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type LeaveType string

const (
	LeaveTypeAnnual    LeaveType = "ANNUAL"
	LeaveTypeSick      LeaveType = "SICK"
	LeaveTypeUnpaid    LeaveType = "UNPAID"
	LeaveTypePersonal  LeaveType = "PERSONAL"
	LeaveTypeMaternity LeaveType = "MATERNITY"
)

// LeaveRequest is the employee-facing record; its approval chain lives in the
// approval feature keyed by (LEAVE_REQUEST, ID).
type LeaveRequest struct {
	ID         primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	TenantID   primitive.ObjectID   `bson:"tenant_id" json:"tenant_id"`
	MemberID   primitive.ObjectID   `bson:"member_id" json:"member_id"`
	MemberName string               `bson:"-" json:"member_name,omitempty"`
	Type       LeaveType            `bson:"type" json:"type"`
	StartDate  time.Time            `bson:"start_date" json:"start_date"`
	EndDate    time.Time            `bson:"end_date" json:"end_date"`
	Days       float64              `bson:"days" json:"days"`
	Reason     string               `bson:"reason" json:"reason"`
	Status     models.RequestStatus `bson:"status" json:"status"`
	CreatedAt  time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time            `bson:"updated_at" json:"updated_at"`
}

// LeaveBalance tracks per-member allowance for one calendar year. Used days
// accrue only when a request reaches final approval.
type LeaveBalance struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TenantID  primitive.ObjectID `bson:"tenant_id" json:"tenant_id"`
	MemberID  primitive.ObjectID `bson:"member_id" json:"member_id"`
	Year      int                `bson:"year" json:"year"`
	Allowance float64            `bson:"allowance" json:"allowance"`
	Used      float64            `bson:"used" json:"used"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

const defaultAnnualAllowance = 25

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ContextKey string

const (
	TenantIDKey ContextKey = "tenant_id"
)

type AuditAction string

const (
	AuditActionCreate   AuditAction = "CREATE"
	AuditActionUpdate   AuditAction = "UPDATE"
	AuditActionDelete   AuditAction = "DELETE"
	AuditActionLogin    AuditAction = "LOGIN"
	AuditActionApproval AuditAction = "APPROVAL"
	AuditActionPolicy   AuditAction = "POLICY"
	AuditActionSettings AuditAction = "SETTINGS"
	AuditActionReport   AuditAction = "REPORT"
)

type Change struct {
	Old interface{} `bson:"old" json:"old"`
	New interface{} `bson:"new" json:"new"`
}

type AuditLog struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TenantID  primitive.ObjectID `bson:"tenant_id,omitempty" json:"tenant_id,omitempty"`
	Action    AuditAction        `bson:"action" json:"action"`
	Module    string             `bson:"module" json:"module"`
	RecordID  string             `bson:"record_id" json:"record_id"`
	ActorID   string             `bson:"actor_id" json:"actor_id"`
	ActorName string             `bson:"-" json:"actor_name,omitempty"`
	Changes   map[string]Change  `bson:"changes,omitempty" json:"changes,omitempty"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
}

type Organization struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Slug      string             `bson:"slug" json:"slug"`
	Plan      string             `bson:"plan" json:"plan"`
	OwnerID   primitive.ObjectID `bson:"owner_id" json:"owner_id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// MemberStatus mirrors the directory lifecycle: only active members can approve.
type MemberStatus string

const (
	MemberStatusActive   MemberStatus = "active"
	MemberStatusInactive MemberStatus = "inactive"
)

// Member is a tenant-scoped employee record. The access flags and the manager
// reference drive approver eligibility and authorization.
type Member struct {
	ID               primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	TenantID         primitive.ObjectID  `bson:"tenant_id" json:"tenant_id"`
	Email            string              `bson:"email" json:"email"`
	Name             string              `bson:"name" json:"name"`
	Password         string              `bson:"password" json:"-"`
	Status           MemberStatus        `bson:"status" json:"status"`
	IsAdmin          bool                `bson:"is_admin" json:"is_admin"`
	IsOwner          bool                `bson:"is_owner" json:"is_owner"`
	HasHRAccess      bool                `bson:"has_hr_access" json:"has_hr_access"`
	HasFinanceAccess bool                `bson:"has_finance_access" json:"has_finance_access"`
	ManagerID        *primitive.ObjectID `bson:"manager_id,omitempty" json:"manager_id,omitempty"`
	Deleted          bool                `bson:"deleted" json:"-"`
	DeletedAt        *time.Time          `bson:"deleted_at,omitempty" json:"-"`
	LastLogin        *time.Time          `bson:"last_login,omitempty" json:"last_login,omitempty"`
	CreatedAt        time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time           `bson:"updated_at" json:"updated_at"`
}

// RequestStatus is the business status carried by leave/purchase/asset requests.
// The approval engine never sets it; the owning service flips it when the
// chain reports completion.
type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "PENDING"
	RequestStatusApproved  RequestStatus = "APPROVED"
	RequestStatusRejected  RequestStatus = "REJECTED"
	RequestStatusCancelled RequestStatus = "CANCELLED"
)

type Log struct {
	Message      string    `bson:"message" json:"message"`
	IpAddress    string    `bson:"ip_address" json:"ip_address"`
	TenantId     string    `bson:"tenant_id" json:"tenant_id"`
	LogLevelId   int       `bson:"log_level_id" json:"log_level_id"`
	CreatedOnUtc time.Time `bson:"created_on_utc" json:"created_on_utc"`
}

package asset

import (
	"time"

	"go-hrops/internal/common/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AssetType string

const (
	AssetTypeLaptop     AssetType = "LAPTOP"
	AssetTypeMonitor    AssetType = "MONITOR"
	AssetTypePhone      AssetType = "PHONE"
	AssetTypeFurniture  AssetType = "FURNITURE"
	AssetTypePeripheral AssetType = "PERIPHERAL"
	AssetTypeOther      AssetType = "OTHER"
)

type AssetRequest struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	TenantID      primitive.ObjectID   `bson:"tenant_id" json:"tenant_id"`
	MemberID      primitive.ObjectID   `bson:"member_id" json:"member_id"`
	MemberName    string               `bson:"-" json:"member_name,omitempty"`
	Type          AssetType            `bson:"type" json:"type"`
	Description   string               `bson:"description" json:"description"`
	EstimatedCost float64              `bson:"estimated_cost" json:"estimated_cost"`
	Justification string               `bson:"justification,omitempty" json:"justification,omitempty"`
	Status        models.RequestStatus `bson:"status" json:"status"`
	CreatedAt     time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time            `bson:"updated_at" json:"updated_at"`
}

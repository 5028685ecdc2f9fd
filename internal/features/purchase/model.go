package purchase

import (
	"time"

	"go-hrops/internal/common/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PurchaseCategory string

const (
	CategorySoftware PurchaseCategory = "SOFTWARE"
	CategoryHardware PurchaseCategory = "HARDWARE"
	CategoryTravel   PurchaseCategory = "TRAVEL"
	CategoryServices PurchaseCategory = "SERVICES"
	CategoryOther    PurchaseCategory = "OTHER"
)

type PurchaseRequest struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	TenantID    primitive.ObjectID   `bson:"tenant_id" json:"tenant_id"`
	MemberID    primitive.ObjectID   `bson:"member_id" json:"member_id"`
	MemberName  string               `bson:"-" json:"member_name,omitempty"`
	Title       string               `bson:"title" json:"title"`
	Description string               `bson:"description" json:"description"`
	Amount      float64              `bson:"amount" json:"amount"`
	Currency    string               `bson:"currency" json:"currency"`
	Category    PurchaseCategory     `bson:"category" json:"category"`
	Vendor      string               `bson:"vendor,omitempty" json:"vendor,omitempty"`
	Status      models.RequestStatus `bson:"status" json:"status"`
	CreatedAt   time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time            `bson:"updated_at" json:"updated_at"`
}

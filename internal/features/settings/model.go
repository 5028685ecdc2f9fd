package settings

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SettingsType string

const (
	SettingsTypeEmail   SettingsType = "email"
	SettingsTypeGeneral SettingsType = "general"
)

type EmailConfig struct {
	SMTPHost     string `json:"smtp_host" bson:"smtp_host"`
	SMTPPort     int    `json:"smtp_port" bson:"smtp_port"`
	SMTPUser     string `json:"smtp_user" bson:"smtp_user"`
	SMTPPassword string `json:"smtp_password" bson:"smtp_password"`
	FromEmail    string `json:"from_email" bson:"from_email"`
	FromName     string `json:"from_name" bson:"from_name"`
	Secure       bool   `json:"secure" bson:"secure"`
}

type GeneralConfig struct {
	AppName      string `json:"app_name" bson:"app_name"`
	AppURL       string `json:"app_url" bson:"app_url"`
	SupportEmail string `json:"support_email" bson:"support_email"`
	Timezone     string `json:"timezone" bson:"timezone"`
}

// Settings documents are unique per (tenant_id, type).
type Settings struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	TenantID  primitive.ObjectID `json:"tenant_id" bson:"tenant_id"`
	Type      SettingsType       `json:"type" bson:"type"`
	Email     *EmailConfig       `json:"email,omitempty" bson:"email,omitempty"`
	General   *GeneralConfig     `json:"general,omitempty" bson:"general,omitempty"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

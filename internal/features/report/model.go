package report

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RunType string

const (
	RunTypeManual    RunType = "manual"
	RunTypeScheduled RunType = "scheduled"
)

// ReportLog records one warehouse export run.
type ReportLog struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RunType        RunType            `bson:"run_type" json:"run_type"`
	StartTime      time.Time          `bson:"start_time" json:"start_time"`
	EndTime        time.Time          `bson:"end_time" json:"end_time"`
	Status         string             `bson:"status" json:"status"`
	StepsExported  int                `bson:"steps_exported" json:"steps_exported"`
	AuditExported  int                `bson:"audit_exported" json:"audit_exported"`
	Error          string             `bson:"error,omitempty" json:"error,omitempty"`
}

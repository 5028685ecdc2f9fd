package report

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	common_models "go-hrops/internal/common/models"
	"go-hrops/internal/config"
	"go-hrops/internal/database"
	"go-hrops/internal/features/approval"

	"github.com/xuri/excelize/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type stepRow struct {
	ID           string
	TenantID     string
	Module       string
	EntityID     string
	RequesterID  string
	LevelOrder   int
	RequiredRole string
	Status       string
	ApproverID   sql.NullString
	ActionAt     sql.NullTime
	Notes        string
}

type auditRow struct {
	ID         string
	TenantID   string
	Action     string
	Module     string
	RecordID   string
	ActorID    string
	OccurredAt time.Time
}

type ReportService interface {
	RunExport(ctx context.Context, runType RunType) (*ReportLog, error)
	ListLogs(ctx context.Context, limit int64) ([]ReportLog, error)
	ExportChainsExcel(ctx context.Context, tenantID primitive.ObjectID) ([]byte, error)
}

type ReportServiceImpl struct {
	LogRepo ReportLogRepository
	Steps   *mongo.Collection
	Audit   *mongo.Collection
	Config  *config.Config
	Logger  *zap.Logger
}

func NewReportService(logRepo ReportLogRepository, mongodb *database.MongodbDB, cfg *config.Config, logger *zap.Logger) ReportService {
	return &ReportServiceImpl{
		LogRepo: logRepo,
		Steps:   mongodb.DB.Collection("approval_steps"),
		Audit:   mongodb.DB.Collection("audit_logs"),
		Config:  cfg,
		Logger:  logger,
	}
}

// RunExport pushes resolved approval steps and audit entries into the
// Postgres warehouse. Runs are incremental: only documents touched since the
// last successful run are exported.
func (s *ReportServiceImpl) RunExport(ctx context.Context, runType RunType) (*ReportLog, error) {
	if s.Config.ReportDBURL == "" {
		return nil, fmt.Errorf("report database is not configured")
	}

	run := &ReportLog{
		RunType:   runType,
		StartTime: time.Now(),
		Status:    "in_progress",
	}
	_ = s.LogRepo.Create(ctx, run)

	var since time.Time
	if last, err := s.LogRepo.LastSuccessfulRun(ctx); err == nil && last != nil {
		since = last.StartTime
	}

	var runErr error
	defer func() {
		run.EndTime = time.Now()
		if runErr != nil {
			run.Status = "failed"
			run.Error = runErr.Error()
		} else {
			run.Status = "success"
		}
		_ = s.LogRepo.Update(ctx, run)
	}()

	w, err := openWarehouse(s.Config.ReportDBURL)
	if err != nil {
		runErr = err
		return run, runErr
	}
	defer w.close()

	run.StepsExported, runErr = s.exportSteps(ctx, w, since)
	if runErr != nil {
		return run, runErr
	}

	run.AuditExported, runErr = s.exportAudit(ctx, w, since)
	return run, runErr
}

func (s *ReportServiceImpl) exportSteps(ctx context.Context, w *warehouse, since time.Time) (int, error) {
	filter := bson.M{
		"status":    bson.M{"$ne": approval.StepStatusPending},
		"action_at": bson.M{"$gt": since},
	}

	cursor, err := s.Steps.Find(ctx, filter, options.Find().SetSort(bson.M{"action_at": 1}))
	if err != nil {
		return 0, fmt.Errorf("failed to fetch resolved steps: %w", err)
	}
	defer cursor.Close(ctx)

	count := 0
	for cursor.Next(ctx) {
		var step approval.ApprovalStep
		if err := cursor.Decode(&step); err != nil {
			return count, err
		}

		row := stepRow{
			ID:           step.ID.Hex(),
			TenantID:     step.TenantID.Hex(),
			Module:       string(step.Module),
			EntityID:     step.EntityID.Hex(),
			RequesterID:  step.RequesterID.Hex(),
			LevelOrder:   step.LevelOrder,
			RequiredRole: string(step.RequiredRole),
			Status:       string(step.Status),
			Notes:        step.Notes,
		}
		if step.ApproverID != nil {
			row.ApproverID = sql.NullString{String: step.ApproverID.Hex(), Valid: true}
		}
		if step.ActionAt != nil {
			row.ActionAt = sql.NullTime{Time: *step.ActionAt, Valid: true}
		}

		if err := w.upsertStep(row); err != nil {
			return count, fmt.Errorf("failed to upsert step %s: %w", row.ID, err)
		}
		count++
	}
	return count, cursor.Err()
}

func (s *ReportServiceImpl) exportAudit(ctx context.Context, w *warehouse, since time.Time) (int, error) {
	filter := bson.M{"timestamp": bson.M{"$gt": since}}

	cursor, err := s.Audit.Find(ctx, filter, options.Find().SetSort(bson.M{"timestamp": 1}))
	if err != nil {
		return 0, fmt.Errorf("failed to fetch audit entries: %w", err)
	}
	defer cursor.Close(ctx)

	count := 0
	for cursor.Next(ctx) {
		var entry common_models.AuditLog
		if err := cursor.Decode(&entry); err != nil {
			return count, err
		}

		row := auditRow{
			ID:         entry.ID.Hex(),
			TenantID:   entry.TenantID.Hex(),
			Action:     string(entry.Action),
			Module:     entry.Module,
			RecordID:   entry.RecordID,
			ActorID:    entry.ActorID,
			OccurredAt: entry.Timestamp,
		}
		if err := w.upsertAudit(row); err != nil {
			return count, fmt.Errorf("failed to upsert audit entry %s: %w", row.ID, err)
		}
		count++
	}
	return count, cursor.Err()
}

func (s *ReportServiceImpl) ListLogs(ctx context.Context, limit int64) ([]ReportLog, error) {
	return s.LogRepo.List(ctx, limit)
}

// ExportChainsExcel renders the tenant's approval steps as a spreadsheet.
func (s *ReportServiceImpl) ExportChainsExcel(ctx context.Context, tenantID primitive.ObjectID) ([]byte, error) {
	cursor, err := s.Steps.Find(ctx, bson.M{"tenant_id": tenantID},
		options.Find().SetSort(bson.D{{Key: "entity_id", Value: 1}, {Key: "level_order", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Approvals"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Module", "Entity ID", "Requester", "Level", "Role", "Status", "Approver", "Acted At", "Notes"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	rowNum := 2
	for cursor.Next(ctx) {
		var step approval.ApprovalStep
		if err := cursor.Decode(&step); err != nil {
			return nil, err
		}

		approver := ""
		if step.ApproverID != nil {
			approver = step.ApproverID.Hex()
		}
		actedAt := ""
		if step.ActionAt != nil {
			actedAt = step.ActionAt.Format(time.RFC3339)
		}

		values := []interface{}{
			string(step.Module), step.EntityID.Hex(), step.RequesterID.Hex(),
			step.LevelOrder, string(step.RequiredRole), string(step.Status),
			approver, actedAt, step.Notes,
		}
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, rowNum)
			_ = f.SetCellValue(sheet, cell, v)
		}
		rowNum++
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

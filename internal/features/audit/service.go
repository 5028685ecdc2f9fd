package audit

import (
	"context"
	"time"

	common_models "go-hrops/internal/common/models"
	"go-hrops/pkg/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemberFinder breaks the import cycle with the member feature; the member
// repository satisfies it.
type MemberFinder interface {
	FindByIDs(ctx context.Context, ids []string) ([]common_models.Member, error)
}

type AuditService interface {
	LogChange(ctx context.Context, action common_models.AuditAction, module string, recordID string, changes map[string]common_models.Change) error
	ListLogs(ctx context.Context, filters map[string]interface{}, page, limit int64) ([]common_models.AuditLog, error)
}

type AuditServiceImpl struct {
	Repo       AuditRepository
	MemberRepo MemberFinder
}

func NewAuditService(repo AuditRepository, memberRepo MemberFinder) AuditService {
	return &AuditServiceImpl{
		Repo:       repo,
		MemberRepo: memberRepo,
	}
}

func (s *AuditServiceImpl) LogChange(ctx context.Context, action common_models.AuditAction, module string, recordID string, changes map[string]common_models.Change) error {
	actorID := "system"
	var tenantID primitive.ObjectID
	if claims := utils.ClaimsFromContext(ctx); claims != nil {
		actorID = claims.MemberID
		if oid, err := primitive.ObjectIDFromHex(claims.TenantID); err == nil {
			tenantID = oid
		}
	}

	log := common_models.AuditLog{
		ID:        primitive.NewObjectID(),
		TenantID:  tenantID,
		Action:    action,
		Module:    module,
		RecordID:  recordID,
		ActorID:   actorID,
		Changes:   changes,
		Timestamp: time.Now(),
	}

	return s.Repo.Create(ctx, log)
}

func (s *AuditServiceImpl) ListLogs(ctx context.Context, filters map[string]interface{}, page, limit int64) ([]common_models.AuditLog, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	offset := (page - 1) * limit
	logs, err := s.Repo.List(ctx, filters, limit, offset)
	if err != nil {
		return nil, err
	}

	// Collect Actor IDs
	actorIDs := make([]string, 0)
	uniqueIDs := make(map[string]bool)
	for _, log := range logs {
		if log.ActorID != "system" && log.ActorID != "" && !uniqueIDs[log.ActorID] {
			uniqueIDs[log.ActorID] = true
			actorIDs = append(actorIDs, log.ActorID)
		}
	}

	// Batch fetch actors and populate names
	memberMap := make(map[string]string)
	if len(actorIDs) > 0 {
		members, err := s.MemberRepo.FindByIDs(ctx, actorIDs)
		if err == nil {
			for _, m := range members {
				memberMap[m.ID.Hex()] = m.Name
			}
		}
	}

	for i, log := range logs {
		if log.ActorID == "system" || log.ActorID == "" {
			logs[i].ActorName = "System"
		} else if name, ok := memberMap[log.ActorID]; ok {
			logs[i].ActorName = name
		} else {
			logs[i].ActorName = "Unknown Member"
		}
	}

	return logs, nil
}

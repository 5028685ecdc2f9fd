package asset

import (
	"context"
	"errors"
	"fmt"

	"go-hrops/internal/common/models"
	"go-hrops/internal/features/approval"
	"go-hrops/internal/features/audit"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type CreateAssetInput struct {
	Type          AssetType `json:"type"`
	Description   string    `json:"description"`
	EstimatedCost float64   `json:"estimated_cost"`
	Justification string    `json:"justification"`
}

type AssetService interface {
	CreateRequest(ctx context.Context, tenantID, memberID primitive.ObjectID, input CreateAssetInput) (*AssetRequest, error)
	GetRequest(ctx context.Context, tenantID, id primitive.ObjectID) (*AssetRequest, error)
	ListRequests(ctx context.Context, tenantID primitive.ObjectID, filter bson.M, limit, skip int64) ([]AssetRequest, error)
	Decide(ctx context.Context, tenantID, id, approverID primitive.ObjectID, action approval.Action, notes string) (*approval.ProcessResult, error)
	Cancel(ctx context.Context, tenantID, id, memberID primitive.ObjectID) error
}

type AssetServiceImpl struct {
	Repo            AssetRepository
	ApprovalService approval.ApprovalService
	AuditService    audit.AuditService
	Logger          *zap.Logger
}

func NewAssetService(
	repo AssetRepository,
	approvalService approval.ApprovalService,
	auditService audit.AuditService,
	logger *zap.Logger,
) AssetService {
	return &AssetServiceImpl{
		Repo:            repo,
		ApprovalService: approvalService,
		AuditService:    auditService,
		Logger:          logger,
	}
}

func (s *AssetServiceImpl) CreateRequest(ctx context.Context, tenantID, memberID primitive.ObjectID, input CreateAssetInput) (*AssetRequest, error) {
	if input.Type == "" {
		return nil, errors.New("asset type is required")
	}
	if input.Description == "" {
		return nil, errors.New("description is required")
	}

	req := &AssetRequest{
		TenantID:      tenantID,
		MemberID:      memberID,
		Type:          input.Type,
		Description:   input.Description,
		EstimatedCost: input.EstimatedCost,
		Justification: input.Justification,
		Status:        models.RequestStatusPending,
	}
	if err := s.Repo.Create(ctx, req); err != nil {
		return nil, err
	}

	cost := input.EstimatedCost
	policy, err := s.ApprovalService.FindApplicablePolicy(ctx, tenantID, approval.ModuleAssetRequest, approval.MatchInput{
		Amount: &cost,
		EntityData: map[string]interface{}{
			"type":           string(input.Type),
			"estimated_cost": cost,
		},
	})
	if err != nil {
		return nil, err
	}

	if policy == nil {
		if err := s.Repo.UpdateStatus(ctx, req.ID, models.RequestStatusApproved); err != nil {
			return nil, err
		}
		req.Status = models.RequestStatusApproved
	} else {
		if _, err := s.ApprovalService.InitializeChain(ctx, approval.ModuleAssetRequest, req.ID, policy, tenantID, memberID); err != nil {
			return nil, err
		}
	}

	_ = s.AuditService.LogChange(ctx, models.AuditActionCreate, "asset_requests", req.ID.Hex(), map[string]models.Change{
		"asset": {New: fmt.Sprintf("%s: %s", req.Type, req.Description)},
	})

	return req, nil
}

func (s *AssetServiceImpl) GetRequest(ctx context.Context, tenantID, id primitive.ObjectID) (*AssetRequest, error) {
	req, err := s.Repo.FindByID(ctx, id)
	if err != nil || req == nil {
		return req, err
	}
	if req.TenantID != tenantID {
		return nil, nil
	}
	return req, nil
}

func (s *AssetServiceImpl) ListRequests(ctx context.Context, tenantID primitive.ObjectID, filter bson.M, limit, skip int64) ([]AssetRequest, error) {
	return s.Repo.List(ctx, tenantID, filter, limit, skip)
}

func (s *AssetServiceImpl) Decide(ctx context.Context, tenantID, id, approverID primitive.ObjectID, action approval.Action, notes string) (*approval.ProcessResult, error) {
	req, err := s.GetRequest(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, errors.New("asset request not found")
	}
	if req.Status != models.RequestStatusPending {
		return nil, fmt.Errorf("asset request is already %s", req.Status)
	}

	result, err := s.ApprovalService.ProcessEntityApproval(ctx, approval.ModuleAssetRequest, id, approverID, action, notes)
	if err != nil {
		return nil, err
	}
	if !result.StepProcessed {
		return result, nil
	}

	if action == approval.ActionReject {
		if err := s.Repo.UpdateStatus(ctx, id, models.RequestStatusRejected); err != nil {
			return nil, err
		}
	} else if result.IsChainComplete && result.AllApproved {
		if err := s.Repo.UpdateStatus(ctx, id, models.RequestStatusApproved); err != nil {
			return nil, err
		}
	}

	return result, nil
}

func (s *AssetServiceImpl) Cancel(ctx context.Context, tenantID, id, memberID primitive.ObjectID) error {
	req, err := s.GetRequest(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if req == nil {
		return errors.New("asset request not found")
	}
	if req.MemberID != memberID {
		return errors.New("only the requester can cancel an asset request")
	}
	if req.Status != models.RequestStatusPending {
		return fmt.Errorf("cannot cancel a request that is already %s", req.Status)
	}

	if err := s.ApprovalService.DeleteApprovalChain(ctx, approval.ModuleAssetRequest, id); err != nil {
		return err
	}
	if err := s.Repo.UpdateStatus(ctx, id, models.RequestStatusCancelled); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, models.AuditActionUpdate, "asset_requests", id.Hex(), map[string]models.Change{
		"status": {Old: string(models.RequestStatusPending), New: string(models.RequestStatusCancelled)},
	})
	return nil
}

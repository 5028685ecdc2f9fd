package purchase

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

type CreatePurchaseInput struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Amount      float64          `json:"amount"`
	Currency    string           `json:"currency"`
	Category    PurchaseCategory `json:"category"`
	Vendor      string           `json:"vendor"`
}

type PurchaseService interface {
	CreateRequest(ctx context.Context, tenantID, memberID primitive.ObjectID, input CreatePurchaseInput) (*PurchaseRequest, error)
	GetRequest(ctx context.Context, tenantID, id primitive.ObjectID) (*PurchaseRequest, error)
	ListRequests(ctx context.Context, tenantID primitive.ObjectID, filter bson.M, limit, skip int64) ([]PurchaseRequest, error)
	Decide(ctx context.Context, tenantID, id, approverID primitive.ObjectID, action approval.Action, notes string) (*approval.ProcessResult, error)
	Cancel(ctx context.Context, tenantID, id, memberID primitive.ObjectID) error
}

type PurchaseServiceImpl struct {
	Repo            PurchaseRepository
	ApprovalService approval.ApprovalService
	AuditService    audit.AuditService
	Logger          *zap.Logger
}

func NewPurchaseService(
	repo PurchaseRepository,
	approvalService approval.ApprovalService,
	auditService audit.AuditService,
	logger *zap.Logger,
) PurchaseService {
	return &PurchaseServiceImpl{
		Repo:            repo,
		ApprovalService: approvalService,
		AuditService:    auditService,
		Logger:          logger,
	}
}

func (s *PurchaseServiceImpl) CreateRequest(ctx context.Context, tenantID, memberID primitive.ObjectID, input CreatePurchaseInput) (*PurchaseRequest, error) {
	if input.Title == "" {
		return nil, errors.New("title is required")
	}
	if input.Amount <= 0 {
		return nil, errors.New("amount must be positive")
	}
	if input.Currency == "" {
		input.Currency = "USD"
	}
	if input.Category == "" {
		input.Category = CategoryOther
	}

	req := &PurchaseRequest{
		TenantID:    tenantID,
		MemberID:    memberID,
		Title:       input.Title,
		Description: input.Description,
		Amount:      input.Amount,
		Currency:    input.Currency,
		Category:    input.Category,
		Vendor:      input.Vendor,
		Status:      models.RequestStatusPending,
	}
	if err := s.Repo.Create(ctx, req); err != nil {
		return nil, err
	}

	amount := input.Amount
	policy, err := s.ApprovalService.FindApplicablePolicy(ctx, tenantID, approval.ModulePurchaseRequest, approval.MatchInput{
		Amount: &amount,
		EntityData: map[string]interface{}{
			"amount":   amount,
			"currency": input.Currency,
			"category": string(input.Category),
			"vendor":   input.Vendor,
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
		if _, err := s.ApprovalService.InitializeChain(ctx, approval.ModulePurchaseRequest, req.ID, policy, tenantID, memberID); err != nil {
			return nil, err
		}
	}

	_ = s.AuditService.LogChange(ctx, models.AuditActionCreate, "purchase_requests", req.ID.Hex(), map[string]models.Change{
		"purchase": {New: fmt.Sprintf("%s %.2f %s", req.Title, req.Amount, req.Currency)},
	})

	return req, nil
}

func (s *PurchaseServiceImpl) GetRequest(ctx context.Context, tenantID, id primitive.ObjectID) (*PurchaseRequest, error) {
	req, err := s.Repo.FindByID(ctx, id)
	if err != nil || req == nil {
		return req, err
	}
	if req.TenantID != tenantID {
		return nil, nil
	}
	return req, nil
}

func (s *PurchaseServiceImpl) ListRequests(ctx context.Context, tenantID primitive.ObjectID, filter bson.M, limit, skip int64) ([]PurchaseRequest, error) {
	return s.Repo.List(ctx, tenantID, filter, limit, skip)
}

func (s *PurchaseServiceImpl) Decide(ctx context.Context, tenantID, id, approverID primitive.ObjectID, action approval.Action, notes string) (*approval.ProcessResult, error) {
	req, err := s.GetRequest(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, errors.New("purchase request not found")
	}
	if req.Status != models.RequestStatusPending {
		return nil, fmt.Errorf("purchase request is already %s", req.Status)
	}

	result, err := s.ApprovalService.ProcessEntityApproval(ctx, approval.ModulePurchaseRequest, id, approverID, action, notes)
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

func (s *PurchaseServiceImpl) Cancel(ctx context.Context, tenantID, id, memberID primitive.ObjectID) error {
	req, err := s.GetRequest(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if req == nil {
		return errors.New("purchase request not found")
	}
	if req.MemberID != memberID {
		return errors.New("only the requester can cancel a purchase request")
	}
	if req.Status != models.RequestStatusPending {
		return fmt.Errorf("cannot cancel a request that is already %s", req.Status)
	}

	if err := s.ApprovalService.DeleteApprovalChain(ctx, approval.ModulePurchaseRequest, id); err != nil {
		return err
	}
	if err := s.Repo.UpdateStatus(ctx, id, models.RequestStatusCancelled); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, models.AuditActionUpdate, "purchase_requests", id.Hex(), map[string]models.Change{
		"status": {Old: string(models.RequestStatusPending), New: string(models.RequestStatusCancelled)},
	})
	return nil
}

package approval

import (
	"context"
	"errors"
	"fmt"
	"math"

	common_models "go-hrops/internal/common/models"
	"go-hrops/internal/features/audit"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type ApprovalService interface {
	// Policy administration
	CreatePolicy(ctx context.Context, policy *ApprovalPolicy) error
	UpdatePolicy(ctx context.Context, tenantID primitive.ObjectID, id string, policy *ApprovalPolicy) error
	GetPolicy(ctx context.Context, tenantID primitive.ObjectID, id string) (*ApprovalPolicy, error)
	ListPolicies(ctx context.Context, tenantID primitive.ObjectID) ([]ApprovalPolicy, error)
	DeletePolicy(ctx context.Context, tenantID primitive.ObjectID, id string) error
	SeedDefaultPolicies(ctx context.Context, tenantID primitive.ObjectID) error

	// Policy matching
	FindApplicablePolicy(ctx context.Context, tenantID primitive.ObjectID, module Module, input MatchInput) (*ApprovalPolicy, error)

	// Chain initialization
	InitializeChain(ctx context.Context, module Module, entityID primitive.ObjectID, policy *ApprovalPolicy, tenantID, requesterID primitive.ObjectID) ([]ApprovalStep, error)

	// Chain queries
	GetApprovalChain(ctx context.Context, module Module, entityID primitive.ObjectID) ([]ApprovalStep, error)
	GetCurrentPendingStep(ctx context.Context, module Module, entityID primitive.ObjectID) (*ApprovalStep, error)
	HasApprovalChain(ctx context.Context, module Module, entityID primitive.ObjectID) (bool, error)
	IsFullyApproved(ctx context.Context, module Module, entityID primitive.ObjectID) (bool, error)
	WasRejected(ctx context.Context, module Module, entityID primitive.ObjectID) (bool, error)
	DeleteApprovalChain(ctx context.Context, module Module, entityID primitive.ObjectID) error
	GetApprovalChainSummary(ctx context.Context, module Module, entityID primitive.ObjectID) (*ChainSummary, error)
	GetApproversForRole(ctx context.Context, role ApproverRole, tenantID, requesterID primitive.ObjectID) ([]Approver, error)

	// Step processing
	CanMemberApprove(ctx context.Context, memberID primitive.ObjectID, stepID primitive.ObjectID) (Authorization, error)
	ProcessStep(ctx context.Context, stepID primitive.ObjectID, approverID primitive.ObjectID, action Action, notes string) (*ProcessResult, error)
	ProcessEntityApproval(ctx context.Context, module Module, entityID, approverID primitive.ObjectID, action Action, notes string) (*ProcessResult, error)
	AdminBypassApproval(ctx context.Context, module Module, entityID, adminID primitive.ObjectID, note string) (*ProcessResult, error)
}

type ApprovalServiceImpl struct {
	PolicyRepo   PolicyRepository
	StepRepo     StepRepository
	Eligibility  EligibilityOracle
	Authorizer   AuthorizationOracle
	Directory    ApproverDirectory
	Publisher    EventPublisher
	Resolvers    map[Module]EntityResolver
	AuditService audit.AuditService
	Logger       *zap.Logger
}

func NewApprovalService(
	policyRepo PolicyRepository,
	stepRepo StepRepository,
	eligibility EligibilityOracle,
	authorizer AuthorizationOracle,
	directory ApproverDirectory,
	publisher EventPublisher,
	resolvers []EntityResolver,
	auditService audit.AuditService,
	logger *zap.Logger,
) ApprovalService {
	byModule := make(map[Module]EntityResolver, len(resolvers))
	for _, res := range resolvers {
		byModule[res.Module()] = res
	}
	return &ApprovalServiceImpl{
		PolicyRepo:   policyRepo,
		StepRepo:     stepRepo,
		Eligibility:  eligibility,
		Authorizer:   authorizer,
		Directory:    directory,
		Publisher:    publisher,
		Resolvers:    byModule,
		AuditService: auditService,
		Logger:       logger,
	}
}

func (s *ApprovalServiceImpl) CreatePolicy(ctx context.Context, policy *ApprovalPolicy) error {
	if err := validatePolicy(policy); err != nil {
		return err
	}

	if err := s.PolicyRepo.Create(ctx, policy); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionPolicy, string(policy.Module), policy.ID.Hex(), map[string]common_models.Change{
		"policy": {New: policy.Name},
	})
	return nil
}

func (s *ApprovalServiceImpl) UpdatePolicy(ctx context.Context, tenantID primitive.ObjectID, id string, policy *ApprovalPolicy) error {
	if err := validatePolicy(policy); err != nil {
		return err
	}

	existing, err := s.PolicyRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return errors.New("policy not found")
	}

	if err := s.PolicyRepo.Update(ctx, tenantID, id, policy); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionPolicy, string(existing.Module), id, map[string]common_models.Change{
		"policy": {Old: existing.Name, New: policy.Name},
	})
	return nil
}

func (s *ApprovalServiceImpl) GetPolicy(ctx context.Context, tenantID primitive.ObjectID, id string) (*ApprovalPolicy, error) {
	return s.PolicyRepo.GetByID(ctx, tenantID, id)
}

func (s *ApprovalServiceImpl) ListPolicies(ctx context.Context, tenantID primitive.ObjectID) ([]ApprovalPolicy, error) {
	return s.PolicyRepo.List(ctx, tenantID)
}

func (s *ApprovalServiceImpl) DeletePolicy(ctx context.Context, tenantID primitive.ObjectID, id string) error {
	return s.PolicyRepo.Delete(ctx, tenantID, id)
}

// validatePolicy enforces level ordering and bound sanity before persisting.
func validatePolicy(policy *ApprovalPolicy) error {
	if policy.Name == "" {
		return errors.New("policy name is required")
	}
	if len(policy.Levels) == 0 {
		return errors.New("policy requires at least one level")
	}
	for i, level := range policy.Levels {
		if level.LevelOrder != i+1 {
			return fmt.Errorf("level orders must be contiguous from 1, got %d at position %d", level.LevelOrder, i)
		}
		if level.Role == RoleEmployee {
			return errors.New("EMPLOYEE is not an approver role")
		}
	}
	if policy.MinDays != nil && policy.MaxDays != nil && *policy.MinDays > *policy.MaxDays {
		return errors.New("min_days exceeds max_days")
	}
	if policy.MinAmount != nil && policy.MaxAmount != nil && *policy.MinAmount > *policy.MaxAmount {
		return errors.New("min_amount exceeds max_amount")
	}
	return nil
}

// SeedDefaultPolicies installs a starter rule set for a fresh tenant. It is a
// no-op when the tenant already has policies.
func (s *ApprovalServiceImpl) SeedDefaultPolicies(ctx context.Context, tenantID primitive.ObjectID) error {
	count, err := s.PolicyRepo.CountByTenant(ctx, tenantID)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	two := 2.0
	zero := 0.0

	defaults := []*ApprovalPolicy{
		{
			TenantID: tenantID,
			Module:   ModuleLeaveRequest,
			Name:     "Short leave",
			IsActive: true,
			Priority: 10,
			MinDays:  &zero,
			MaxDays:  &two,
			Levels:   []ApprovalLevel{{LevelOrder: 1, Role: RoleManager}},
		},
		{
			TenantID: tenantID,
			Module:   ModuleLeaveRequest,
			Name:     "Extended leave",
			IsActive: true,
			Priority: 5,
			MinDays:  &two,
			Levels: []ApprovalLevel{
				{LevelOrder: 1, Role: RoleManager},
				{LevelOrder: 2, Role: RoleHRManager},
			},
		},
		{
			TenantID: tenantID,
			Module:   ModulePurchaseRequest,
			Name:     "Purchase approval",
			IsActive: true,
			Priority: 1,
			Levels: []ApprovalLevel{
				{LevelOrder: 1, Role: RoleManager},
				{LevelOrder: 2, Role: RoleFinanceManager},
			},
		},
		{
			TenantID: tenantID,
			Module:   ModuleAssetRequest,
			Name:     "Asset approval",
			IsActive: true,
			Priority: 1,
			Levels:   []ApprovalLevel{{LevelOrder: 1, Role: RoleManager}},
		},
	}

	for _, policy := range defaults {
		if err := s.PolicyRepo.Create(ctx, policy); err != nil {
			return err
		}
	}
	return nil
}

// FindApplicablePolicy returns the highest-priority active policy whose bounds
// contain the given threshold value, the first active policy when no value is
// supplied, or nil when nothing matches.
func (s *ApprovalServiceImpl) FindApplicablePolicy(ctx context.Context, tenantID primitive.ObjectID, module Module, input MatchInput) (*ApprovalPolicy, error) {
	policies, err := s.PolicyRepo.ListActive(ctx, tenantID, module)
	if err != nil {
		return nil, err
	}

	var value *float64
	if module == ModuleLeaveRequest {
		value = input.Days
	} else {
		value = input.Amount
	}

	for i := range policies {
		policy := &policies[i]

		if value != nil {
			var min, max *float64
			if module == ModuleLeaveRequest {
				min, max = policy.MinDays, policy.MaxDays
			} else {
				min, max = policy.MinAmount, policy.MaxAmount
			}
			if !boundsContain(min, max, *value) {
				continue
			}
		}

		if policy.CriteriaScript != "" {
			matched, err := evalCriteriaScript(ctx, policy.CriteriaScript, module, input.EntityData)
			if err != nil {
				s.Logger.Warn("policy criteria script disqualified policy",
					zap.String("policy", policy.ID.Hex()),
					zap.Error(err))
				continue
			}
			if !matched {
				continue
			}
		}

		return policy, nil
	}

	return nil, nil
}

// boundsContain treats a missing min as 0 and a missing max as +Inf. minDays=0
// therefore admits half-day requests.
func boundsContain(min, max *float64, value float64) bool {
	lo := 0.0
	if min != nil {
		lo = *min
	}
	hi := math.Inf(1)
	if max != nil {
		hi = *max
	}
	return value >= lo && value <= hi
}

// InitializeChain expands a policy's levels into persisted PENDING steps for
// one entity. Levels with no eligible approver are dropped; when every level
// drops, a single DIRECTOR level is synthesized so the chain can always be
// resolved (an admin or owner exists in every tenant). Surviving levels are
// renumbered contiguously from 1.
func (s *ApprovalServiceImpl) InitializeChain(ctx context.Context, module Module, entityID primitive.ObjectID, policy *ApprovalPolicy, tenantID, requesterID primitive.ObjectID) ([]ApprovalStep, error) {
	var eligible []ApprovalLevel
	for _, level := range policy.Levels {
		ok, err := s.Eligibility.HasApproverForRole(ctx, level.Role, tenantID, requesterID)
		if err != nil {
			return nil, err
		}
		if ok {
			eligible = append(eligible, level)
		}
	}

	if len(eligible) == 0 {
		eligible = []ApprovalLevel{{LevelOrder: 1, Role: RoleDirector}}
	}

	steps := make([]ApprovalStep, 0, len(eligible))
	for i, level := range eligible {
		steps = append(steps, ApprovalStep{
			TenantID:     tenantID,
			Module:       module,
			EntityID:     entityID,
			RequesterID:  requesterID,
			LevelOrder:   i + 1,
			RequiredRole: level.Role,
			Status:       StepStatusPending,
		})
	}

	if err := s.StepRepo.BulkInsert(ctx, steps); err != nil {
		return nil, err
	}

	s.Logger.Info("approval chain initialized",
		zap.String("module", string(module)),
		zap.String("entity", entityID.Hex()),
		zap.Int("steps", len(steps)))

	return s.GetApprovalChain(ctx, module, entityID)
}

func (s *ApprovalServiceImpl) GetApprovalChain(ctx context.Context, module Module, entityID primitive.ObjectID) ([]ApprovalStep, error) {
	steps, err := s.StepRepo.ListByEntity(ctx, module, entityID)
	if err != nil {
		return nil, err
	}

	for i := range steps {
		if steps[i].ApproverID == nil {
			continue
		}
		if name, err := s.Directory.MemberName(ctx, *steps[i].ApproverID); err == nil {
			steps[i].ApproverName = name
		}
	}
	return steps, nil
}

func (s *ApprovalServiceImpl) GetCurrentPendingStep(ctx context.Context, module Module, entityID primitive.ObjectID) (*ApprovalStep, error) {
	return s.StepRepo.CurrentPending(ctx, module, entityID)
}

func (s *ApprovalServiceImpl) HasApprovalChain(ctx context.Context, module Module, entityID primitive.ObjectID) (bool, error) {
	count, err := s.StepRepo.CountByEntity(ctx, module, entityID)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *ApprovalServiceImpl) IsFullyApproved(ctx context.Context, module Module, entityID primitive.ObjectID) (bool, error) {
	steps, err := s.StepRepo.ListByEntity(ctx, module, entityID)
	if err != nil {
		return false, err
	}
	if len(steps) == 0 {
		return false, nil
	}
	for _, step := range steps {
		if step.Status != StepStatusApproved {
			return false, nil
		}
	}
	return true, nil
}

func (s *ApprovalServiceImpl) WasRejected(ctx context.Context, module Module, entityID primitive.ObjectID) (bool, error) {
	steps, err := s.StepRepo.ListByEntity(ctx, module, entityID)
	if err != nil {
		return false, err
	}
	for _, step := range steps {
		if step.Status == StepStatusRejected {
			return true, nil
		}
	}
	return false, nil
}

func (s *ApprovalServiceImpl) DeleteApprovalChain(ctx context.Context, module Module, entityID primitive.ObjectID) error {
	return s.StepRepo.DeleteByEntity(ctx, module, entityID)
}

func (s *ApprovalServiceImpl) GetApproversForRole(ctx context.Context, role ApproverRole, tenantID, requesterID primitive.ObjectID) ([]Approver, error) {
	return s.Directory.GetApproversForRole(ctx, role, tenantID, requesterID)
}

// GetApprovalChainSummary derives the chain-level state from the steps: any
// rejection wins, then fully-resolved means approved, otherwise the chain is
// pending at the lowest unresolved level.
func (s *ApprovalServiceImpl) GetApprovalChainSummary(ctx context.Context, module Module, entityID primitive.ObjectID) (*ChainSummary, error) {
	steps, err := s.StepRepo.ListByEntity(ctx, module, entityID)
	if err != nil {
		return nil, err
	}
	return summarize(steps), nil
}

func summarize(steps []ApprovalStep) *ChainSummary {
	summary := &ChainSummary{TotalSteps: len(steps)}

	if len(steps) == 0 {
		summary.Status = ChainStatusNotStarted
		return summary
	}

	pending := 0
	for _, step := range steps {
		switch step.Status {
		case StepStatusPending:
			pending++
		default:
			summary.CompletedSteps++
		}
	}

	for _, step := range steps {
		if step.Status == StepStatusRejected {
			summary.Status = ChainStatusRejected
			summary.CurrentStep = step.LevelOrder
			return summary
		}
	}

	if pending == 0 {
		summary.Status = ChainStatusApproved
		return summary
	}

	summary.Status = ChainStatusPending
	for _, step := range steps {
		if step.Status == StepStatusPending {
			summary.CurrentStep = step.LevelOrder
			break
		}
	}
	return summary
}

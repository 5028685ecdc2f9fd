package approval

import (
	"context"
	"errors"
	"time"

	common_models "go-hrops/internal/common/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const bypassDefaultNote = "Approved by admin (bypass)"

// CanMemberApprove resolves the authorization oracle for a step. The outcome
// is a value in both the allowed and denied cases; only a missing step or
// member surfaces as an error.
func (s *ApprovalServiceImpl) CanMemberApprove(ctx context.Context, memberID primitive.ObjectID, stepID primitive.ObjectID) (Authorization, error) {
	step, err := s.StepRepo.FindByID(ctx, stepID)
	if err != nil {
		return Authorization{}, err
	}
	return s.Authorizer.CanMemberApprove(ctx, memberID, step)
}

// ProcessStep authorizes and transitions a single step by id.
func (s *ApprovalServiceImpl) ProcessStep(ctx context.Context, stepID primitive.ObjectID, approverID primitive.ObjectID, action Action, notes string) (*ProcessResult, error) {
	step, err := s.StepRepo.FindByID(ctx, stepID)
	if err != nil {
		if errors.Is(err, ErrStepNotFound) {
			return &ProcessResult{ChainExists: false, Error: "approval step not found"}, nil
		}
		return nil, err
	}
	return s.process(ctx, step, approverID, action, notes)
}

// ProcessEntityApproval transitions the current pending step of an entity's
// chain. This is the entry point the entity services use.
func (s *ApprovalServiceImpl) ProcessEntityApproval(ctx context.Context, module Module, entityID, approverID primitive.ObjectID, action Action, notes string) (*ProcessResult, error) {
	count, err := s.StepRepo.CountByEntity(ctx, module, entityID)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return &ProcessResult{ChainExists: false, Error: "no approval chain for entity"}, nil
	}

	step, err := s.StepRepo.CurrentPending(ctx, module, entityID)
	if err != nil {
		return nil, err
	}
	if step == nil {
		return &ProcessResult{ChainExists: true, StepProcessed: false, Error: "step already processed"}, nil
	}
	return s.process(ctx, step, approverID, action, notes)
}

func (s *ApprovalServiceImpl) process(ctx context.Context, step *ApprovalStep, approverID primitive.ObjectID, action Action, notes string) (*ProcessResult, error) {
	if step.Status != StepStatusPending {
		return &ProcessResult{ChainExists: true, StepProcessed: false, Error: "step already processed"}, nil
	}

	authz, err := s.Authorizer.CanMemberApprove(ctx, approverID, step)
	if err != nil {
		return nil, err
	}
	if !authz.CanApprove {
		return &ProcessResult{ChainExists: true, StepProcessed: false, Error: authz.Reason}, nil
	}

	// Compare-and-set transition: only the first actor to resolve the step
	// wins; a lost race reports "already processed" instead of erroring.
	switch action {
	case ActionApprove:
		err = s.StepRepo.ResolveStep(ctx, step.ID, StepStatusApproved, approverID, notes)
	case ActionReject:
		err = s.StepRepo.RejectCascade(ctx, step, approverID, notes)
	default:
		return nil, errors.New("unknown approval action")
	}
	if err != nil {
		if errors.Is(err, ErrStepAlreadyProcessed) {
			return &ProcessResult{ChainExists: true, StepProcessed: false, Error: "step already processed"}, nil
		}
		return nil, err
	}

	pending, err := s.StepRepo.CountPending(ctx, step.Module, step.EntityID)
	if err != nil {
		return nil, err
	}

	result := &ProcessResult{
		ChainExists:     true,
		StepProcessed:   true,
		IsChainComplete: pending == 0,
	}

	chain, err := s.GetApprovalChain(ctx, step.Module, step.EntityID)
	if err != nil {
		return nil, err
	}
	result.Chain = chain
	result.Summary = summarize(chain)
	result.AllApproved = result.Summary.Status == ChainStatusApproved

	s.auditDecision(ctx, step, approverID, action, notes)
	s.publishOutcome(ctx, step, approverID, action, notes, result)

	return result, nil
}

// AdminBypassApproval force-approves every outstanding step of a chain in one
// shot. It performs no authorization check itself; the HTTP route guards with
// the admin middleware.
func (s *ApprovalServiceImpl) AdminBypassApproval(ctx context.Context, module Module, entityID, adminID primitive.ObjectID, note string) (*ProcessResult, error) {
	count, err := s.StepRepo.CountByEntity(ctx, module, entityID)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return &ProcessResult{ChainExists: false, Error: "no approval chain for entity"}, nil
	}

	if note == "" {
		note = bypassDefaultNote
	}

	modified, err := s.StepRepo.ApproveAllPending(ctx, module, entityID, adminID, note)
	if err != nil {
		return nil, err
	}

	chain, err := s.GetApprovalChain(ctx, module, entityID)
	if err != nil {
		return nil, err
	}

	result := &ProcessResult{
		ChainExists:     true,
		StepProcessed:   modified > 0,
		IsChainComplete: true,
		Chain:           chain,
	}
	result.Summary = summarize(chain)
	result.AllApproved = result.Summary.Status == ChainStatusApproved

	s.Logger.Info("admin bypass approval",
		zap.String("module", string(module)),
		zap.String("entity", entityID.Hex()),
		zap.Int64("steps", modified))

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionApproval, string(module), entityID.Hex(), map[string]common_models.Change{
		"bypass": {New: note},
	})

	s.publishEvent(ctx, Event{
		Kind:     EventBypassed,
		TenantID: tenantOfChain(chain),
		Module:   module,
		EntityID: entityID,
		ActorID:  adminID,
		Notes:    note,
	})

	return result, nil
}

func (s *ApprovalServiceImpl) auditDecision(ctx context.Context, step *ApprovalStep, approverID primitive.ObjectID, action Action, notes string) {
	change := common_models.Change{Old: string(StepStatusPending)}
	if action == ActionApprove {
		change.New = string(StepStatusApproved)
	} else {
		change.New = string(StepStatusRejected)
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionApproval, string(step.Module), step.EntityID.Hex(), map[string]common_models.Change{
		"step_status": change,
		"notes":       {New: notes},
	})
}

// publishOutcome emits the event matching the transition: rejection, chain
// completion, or advancement addressed to the next level's approvers.
func (s *ApprovalServiceImpl) publishOutcome(ctx context.Context, step *ApprovalStep, approverID primitive.ObjectID, action Action, notes string, result *ProcessResult) {
	event := Event{
		TenantID:    step.TenantID,
		Module:      step.Module,
		EntityID:    step.EntityID,
		RequesterID: step.RequesterID,
		ActorID:     approverID,
		LevelOrder:  step.LevelOrder,
		Notes:       notes,
	}

	switch {
	case action == ActionReject:
		event.Kind = EventRejected
	case result.IsChainComplete:
		event.Kind = EventCompleted
	default:
		event.Kind = EventAdvanced
		if next, err := s.StepRepo.CurrentPending(ctx, step.Module, step.EntityID); err == nil && next != nil {
			event.NextRole = next.RequiredRole
			addressees, err := s.Directory.GetApproversForRole(ctx, next.RequiredRole, step.TenantID, step.RequesterID)
			if err != nil {
				s.Logger.Warn("could not resolve next-level approvers",
					zap.String("role", string(next.RequiredRole)),
					zap.Error(err))
			} else {
				event.Addressees = addressees
			}
		}
	}

	s.publishEvent(ctx, event)
}

func (s *ApprovalServiceImpl) publishEvent(ctx context.Context, event Event) {
	if s.Publisher == nil {
		return
	}

	event.Timestamp = time.Now()

	if resolver, ok := s.Resolvers[event.Module]; ok {
		if meta, err := resolver.Resolve(ctx, event.EntityID); err == nil && meta != nil {
			event.EntityTitle = meta.Title
			if event.RequesterID.IsZero() {
				event.RequesterID = meta.RequesterID
			}
		}
	}

	s.Publisher.Publish(event)
}

func tenantOfChain(chain []ApprovalStep) primitive.ObjectID {
	if len(chain) == 0 {
		return primitive.NilObjectID
	}
	return chain[0].TenantID
}

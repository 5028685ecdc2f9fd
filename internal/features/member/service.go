package member

import (
	"context"
	"errors"

	"go-hrops/internal/common/models"
	"go-hrops/internal/features/audit"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

type CreateMemberInput struct {
	Email            string  `json:"email"`
	Name             string  `json:"name"`
	Password         string  `json:"password"`
	IsAdmin          bool    `json:"is_admin"`
	HasHRAccess      bool    `json:"has_hr_access"`
	HasFinanceAccess bool    `json:"has_finance_access"`
	ManagerID        *string `json:"manager_id"`
}

type UpdateMemberInput struct {
	Name             *string `json:"name"`
	Status           *string `json:"status"`
	IsAdmin          *bool   `json:"is_admin"`
	HasHRAccess      *bool   `json:"has_hr_access"`
	HasFinanceAccess *bool   `json:"has_finance_access"`
	ManagerID        *string `json:"manager_id"`
}

type MemberService interface {
	Create(ctx context.Context, tenantID primitive.ObjectID, input CreateMemberInput) (*models.Member, error)
	Get(ctx context.Context, tenantID, id primitive.ObjectID) (*models.Member, error)
	List(ctx context.Context, tenantID primitive.ObjectID) ([]models.Member, error)
	Update(ctx context.Context, tenantID, id primitive.ObjectID, input UpdateMemberInput) error
	Delete(ctx context.Context, tenantID, id primitive.ObjectID) error
}

type MemberServiceImpl struct {
	Repo         MemberRepository
	AuditService audit.AuditService
}

func NewMemberService(repo MemberRepository, auditService audit.AuditService) MemberService {
	return &MemberServiceImpl{Repo: repo, AuditService: auditService}
}

func (s *MemberServiceImpl) Create(ctx context.Context, tenantID primitive.ObjectID, input CreateMemberInput) (*models.Member, error) {
	if input.Email == "" || input.Password == "" {
		return nil, errors.New("email and password are required")
	}

	existing, err := s.Repo.FindByEmailGlobal(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errors.New("a member with this email already exists")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	member := &models.Member{
		TenantID:         tenantID,
		Email:            input.Email,
		Name:             input.Name,
		Password:         string(hashed),
		Status:           models.MemberStatusActive,
		IsAdmin:          input.IsAdmin,
		HasHRAccess:      input.HasHRAccess,
		HasFinanceAccess: input.HasFinanceAccess,
	}

	if input.ManagerID != nil && *input.ManagerID != "" {
		managerOID, err := primitive.ObjectIDFromHex(*input.ManagerID)
		if err != nil {
			return nil, errors.New("invalid manager id")
		}
		member.ManagerID = &managerOID
	}

	if err := s.Repo.Create(ctx, member); err != nil {
		return nil, err
	}

	_ = s.AuditService.LogChange(ctx, models.AuditActionCreate, "members", member.ID.Hex(), map[string]models.Change{
		"member": {New: member.Email},
	})

	return member, nil
}

func (s *MemberServiceImpl) Get(ctx context.Context, tenantID, id primitive.ObjectID) (*models.Member, error) {
	member, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if member == nil || member.TenantID != tenantID {
		return nil, nil
	}
	return member, nil
}

func (s *MemberServiceImpl) List(ctx context.Context, tenantID primitive.ObjectID) ([]models.Member, error) {
	return s.Repo.List(ctx, tenantID)
}

func (s *MemberServiceImpl) Update(ctx context.Context, tenantID, id primitive.ObjectID, input UpdateMemberInput) error {
	member, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if member == nil {
		return errors.New("member not found")
	}

	updates := bson.M{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Status != nil {
		updates["status"] = models.MemberStatus(*input.Status)
	}
	if input.IsAdmin != nil {
		updates["is_admin"] = *input.IsAdmin
	}
	if input.HasHRAccess != nil {
		updates["has_hr_access"] = *input.HasHRAccess
	}
	if input.HasFinanceAccess != nil {
		updates["has_finance_access"] = *input.HasFinanceAccess
	}
	if input.ManagerID != nil {
		if *input.ManagerID == "" {
			updates["manager_id"] = nil
		} else {
			managerOID, err := primitive.ObjectIDFromHex(*input.ManagerID)
			if err != nil {
				return errors.New("invalid manager id")
			}
			updates["manager_id"] = managerOID
		}
	}
	if len(updates) == 0 {
		return nil
	}

	if err := s.Repo.Update(ctx, id, updates); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, models.AuditActionUpdate, "members", id.Hex(), map[string]models.Change{
		"member": {Old: member.Email, New: updates},
	})
	return nil
}

func (s *MemberServiceImpl) Delete(ctx context.Context, tenantID, id primitive.ObjectID) error {
	member, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if member == nil {
		return errors.New("member not found")
	}
	if member.IsOwner {
		return errors.New("the tenant owner cannot be deleted")
	}

	if err := s.Repo.SoftDelete(ctx, id); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, models.AuditActionDelete, "members", id.Hex(), map[string]models.Change{
		"member": {Old: member.Email},
	})
	return nil
}

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-hrops/internal/common/models"
	"go-hrops/internal/features/approval"
	"go-hrops/internal/features/audit"
	"go-hrops/internal/features/member"
	"go-hrops/internal/features/organization"
	"go-hrops/pkg/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Register(ctx context.Context, name, email, password, orgName string) (*models.Member, error)
	Login(ctx context.Context, email, password string) (string, error)
}

type AuthServiceImpl struct {
	MemberRepo       member.MemberRepository
	OrganizationRepo organization.OrganizationRepository
	ApprovalService  approval.ApprovalService
	AuditService     audit.AuditService
}

func NewAuthService(
	memberRepo member.MemberRepository,
	orgRepo organization.OrganizationRepository,
	approvalService approval.ApprovalService,
	auditService audit.AuditService,
) AuthService {
	return &AuthServiceImpl{
		MemberRepo:       memberRepo,
		OrganizationRepo: orgRepo,
		ApprovalService:  approvalService,
		AuditService:     auditService,
	}
}

// Register bootstraps a new tenant: organization, owner member (admin+owner)
// and the default approval policies.
func (s *AuthServiceImpl) Register(ctx context.Context, name, email, password, orgName string) (*models.Member, error) {
	if email == "" || password == "" {
		return nil, errors.New("email and password are required")
	}

	existing, err := s.MemberRepo.FindByEmailGlobal(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errors.New("a member with this email already exists")
	}

	if orgName == "" {
		orgName = fmt.Sprintf("%s's Organization", name)
	}

	ownerID := primitive.NewObjectID()
	org := &models.Organization{
		ID:      primitive.NewObjectID(),
		Name:    orgName,
		Slug:    utils.Slugify(orgName) + "-" + primitive.NewObjectID().Hex()[:4],
		Plan:    "standard",
		OwnerID: ownerID,
	}
	if err := s.OrganizationRepo.Create(ctx, org); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	owner := &models.Member{
		ID:       ownerID,
		TenantID: org.ID,
		Email:    email,
		Name:     name,
		Password: string(hashed),
		Status:   models.MemberStatusActive,
		IsAdmin:  true,
		IsOwner:  true,
	}
	if err := s.MemberRepo.Create(ctx, owner); err != nil {
		return nil, err
	}

	ctx = context.WithValue(ctx, models.TenantIDKey, org.ID.Hex())
	if err := s.ApprovalService.SeedDefaultPolicies(ctx, org.ID); err != nil {
		return nil, err
	}

	_ = s.AuditService.LogChange(ctx, models.AuditActionCreate, "organizations", org.ID.Hex(), map[string]models.Change{
		"organization": {New: org.Name},
	})

	return owner, nil
}

func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (string, error) {
	m, err := s.MemberRepo.FindByEmailGlobal(ctx, email)
	if err != nil {
		return "", err
	}
	if m == nil || m.Status != models.MemberStatusActive {
		return "", errors.New("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(m.Password), []byte(password)); err != nil {
		return "", errors.New("invalid credentials")
	}

	token, err := utils.GenerateToken(m.ID, m.TenantID, m.IsAdmin)
	if err != nil {
		return "", err
	}

	now := time.Now()
	_ = s.MemberRepo.Update(ctx, m.ID, bson.M{"last_login": now})

	_ = s.AuditService.LogChange(ctx, models.AuditActionLogin, "members", m.ID.Hex(), nil)

	return token, nil
}

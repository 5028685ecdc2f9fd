package settings

import (
	"context"
	"time"

	common_models "go-hrops/internal/common/models"
	"go-hrops/internal/features/audit"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SettingsService interface {
	GetEmailConfig(ctx context.Context, tenantID primitive.ObjectID) (*EmailConfig, error)
	UpdateEmailConfig(ctx context.Context, tenantID primitive.ObjectID, config EmailConfig) error
	GetGeneralConfig(ctx context.Context, tenantID primitive.ObjectID) (*GeneralConfig, error)
	UpdateGeneralConfig(ctx context.Context, tenantID primitive.ObjectID, config GeneralConfig) error
}

type SettingsServiceImpl struct {
	Repo         SettingsRepository
	AuditService audit.AuditService
}

func NewSettingsService(repo SettingsRepository, auditService audit.AuditService) SettingsService {
	return &SettingsServiceImpl{
		Repo:         repo,
		AuditService: auditService,
	}
}

func (s *SettingsServiceImpl) GetEmailConfig(ctx context.Context, tenantID primitive.ObjectID) (*EmailConfig, error) {
	settings, err := s.Repo.GetByType(ctx, tenantID, SettingsTypeEmail)
	if err != nil {
		return nil, err
	}
	if settings == nil || settings.Email == nil {
		return nil, nil
	}
	return settings.Email, nil
}

func (s *SettingsServiceImpl) UpdateEmailConfig(ctx context.Context, tenantID primitive.ObjectID, config EmailConfig) error {
	oldConfig, _ := s.GetEmailConfig(ctx, tenantID)

	settings := &Settings{
		TenantID:  tenantID,
		Type:      SettingsTypeEmail,
		Email:     &config,
		UpdatedAt: time.Now(),
	}
	err := s.Repo.Upsert(ctx, settings)
	if err == nil {
		redacted := config
		redacted.SMTPPassword = ""
		var oldRedacted interface{}
		if oldConfig != nil {
			o := *oldConfig
			o.SMTPPassword = ""
			oldRedacted = o
		}
		_ = s.AuditService.LogChange(ctx, common_models.AuditActionSettings, "settings", "email_config", map[string]common_models.Change{
			"email_config": {
				Old: oldRedacted,
				New: redacted,
			},
		})
	}
	return err
}

func (s *SettingsServiceImpl) GetGeneralConfig(ctx context.Context, tenantID primitive.ObjectID) (*GeneralConfig, error) {
	settings, err := s.Repo.GetByType(ctx, tenantID, SettingsTypeGeneral)
	if err != nil {
		return nil, err
	}
	if settings == nil || settings.General == nil {
		return &GeneralConfig{
			AppName: "HR Ops",
		}, nil
	}
	return settings.General, nil
}

func (s *SettingsServiceImpl) UpdateGeneralConfig(ctx context.Context, tenantID primitive.ObjectID, config GeneralConfig) error {
	oldConfig, _ := s.GetGeneralConfig(ctx, tenantID)

	settings := &Settings{
		TenantID:  tenantID,
		Type:      SettingsTypeGeneral,
		General:   &config,
		UpdatedAt: time.Now(),
	}
	err := s.Repo.Upsert(ctx, settings)
	if err == nil {
		_ = s.AuditService.LogChange(ctx, common_models.AuditActionSettings, "settings", "general_config", map[string]common_models.Change{
			"general_config": {
				Old: oldConfig,
				New: config,
			},
		})
	}
	return err
}

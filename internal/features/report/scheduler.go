package report

import (
	"context"

	"go-hrops/internal/config"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler triggers warehouse exports on the configured cron expression.
// An empty expression disables scheduled runs.
type Scheduler struct {
	cron    *cron.Cron
	service ReportService
	logger  *zap.Logger
	spec    string
}

func NewScheduler(service ReportService, cfg *config.Config, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		service: service,
		logger:  logger,
		spec:    cfg.ReportCron,
	}
}

func (s *Scheduler) Start() error {
	if s.spec == "" {
		s.logger.Info("report scheduler disabled, no cron expression configured")
		return nil
	}

	_, err := s.cron.AddFunc(s.spec, func() {
		run, err := s.service.RunExport(context.Background(), RunTypeScheduled)
		if err != nil {
			s.logger.Error("scheduled report export failed", zap.Error(err))
			return
		}
		s.logger.Info("scheduled report export finished",
			zap.Int("steps", run.StepsExported),
			zap.Int("audit", run.AuditExported))
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("report scheduler started", zap.String("spec", s.spec))
	return nil
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

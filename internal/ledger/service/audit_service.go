package service

import (
	"context"
	"fmt"
	"time"

	"golang-stock-ledger/internal/entity"
	"golang-stock-ledger/internal/ledger/dto"
	"golang-stock-ledger/internal/ledger/repository"
	"golang-stock-ledger/pkg/logger"

	"github.com/robfig/cron/v3"
)

const (
	AuditCheckNonPositiveLots  = "non_positive_lots"
	AuditCheckNegativeBalances = "negative_balances"
	AuditCheckOrphanLots       = "orphan_lots"
)

// AuditService checks the ledger tables for rows breaking the bookkeeping rules.
type AuditService interface {
	Run(ctx context.Context) (*dto.AuditReport, error)
	Start(ctx context.Context, schedule string, timeout time.Duration) error
}

// NewAuditService creates a new audit service.
func NewAuditService(repo repository.Repository, eventRepo repository.EventRepository, logger *logger.Logger) AuditService {
	return &auditService{
		repo:       repo,
		eventRepo:  eventRepo,
		logger:     logger,
		cronParser: cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
	}
}

type auditService struct {
	repo       repository.Repository
	eventRepo  repository.EventRepository
	logger     *logger.Logger
	cronParser cron.Parser
}

// Run counts lots with a non-positive quantity, accounts with a negative
// balance and lots no BUY order accounts for. Each failing check is
// published as an alert.
func (s *auditService) Run(ctx context.Context) (*dto.AuditReport, error) {
	report := &dto.AuditReport{CheckedAt: time.Now().UTC()}

	var err error
	if report.NonPositiveLots, err = s.repo.Holdings().CountNonPositive(ctx); err != nil {
		return nil, fmt.Errorf("failed to count non-positive lots: %w", err)
	}
	if report.NegativeBalances, err = s.repo.Accounts().CountNegativeBalances(ctx); err != nil {
		return nil, fmt.Errorf("failed to count negative balances: %w", err)
	}
	if report.OrphanLots, err = s.repo.Holdings().CountOrphans(ctx); err != nil {
		return nil, fmt.Errorf("failed to count orphan lots: %w", err)
	}

	if report.Clean() {
		s.logger.InfoContext(ctx, "Ledger audit passed")
		return report, nil
	}

	checks := []struct {
		name   string
		count  int64
		detail string
	}{
		{AuditCheckNonPositiveLots, report.NonPositiveLots, "lots with zero or negative quantity"},
		{AuditCheckNegativeBalances, report.NegativeBalances, "accounts with a negative balance"},
		{AuditCheckOrphanLots, report.OrphanLots, "lots without a matching BUY order"},
	}
	for _, check := range checks {
		if check.count == 0 {
			continue
		}
		s.logger.WarnContext(ctx, "Ledger audit violation", logger.StringField("check", check.name), logger.Int64Field("count", check.count))
		alert := &entity.AuditAlert{
			Check:      check.name,
			Count:      check.count,
			Detail:     check.detail,
			DetectedAt: report.CheckedAt,
		}
		if err := s.eventRepo.PublishAuditAlert(ctx, alert); err != nil {
			s.logger.ErrorContext(ctx, "Failed to publish audit alert", logger.ErrorField(err), logger.StringField("check", check.name))
		}
	}
	return report, nil
}

// Start runs the audit on the given cron schedule until ctx is done.
// Each run is bounded by timeout when it is positive.
func (s *auditService) Start(ctx context.Context, schedule string, timeout time.Duration) error {
	cronSchedule, err := s.cronParser.Parse(schedule)
	if err != nil {
		return fmt.Errorf("invalid audit schedule %q: %w", schedule, err)
	}

	s.logger.Info("Ledger audit scheduled", logger.StringField("schedule", schedule))
	for {
		next := cronSchedule.Next(time.Now())
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("Ledger audit stopping")
			return nil
		case <-timer.C:
			s.runWithTimeout(ctx, timeout)
		}
	}
}

func (s *auditService) runWithTimeout(ctx context.Context, timeout time.Duration) {
	runCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if _, err := s.Run(runCtx); err != nil {
		s.logger.Error("Ledger audit failed", logger.ErrorField(err))
	}
}

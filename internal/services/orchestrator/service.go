// Package orchestrator runs advisory requests end to end: validation,
// entitlement, risk enrichment and the advisory stream.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/bobmcallan/riskgate/internal/common"
	"github.com/bobmcallan/riskgate/internal/interfaces"
	"github.com/bobmcallan/riskgate/internal/models"
	"github.com/bobmcallan/riskgate/internal/services/advisory"
	"github.com/bobmcallan/riskgate/internal/services/risk"
)

const DefaultMaxPromptChars = 8000

// Service implements Orchestrator
type Service struct {
	entitlements   interfaces.EntitlementService
	portfolios     interfaces.PortfolioService
	profiles       interfaces.ProfileService
	relay          *advisory.Relay
	maxPromptChars int
	logger         *common.Logger
}

var _ interfaces.Orchestrator = (*Service)(nil)

// Option configures the service
type Option func(*Service)

// WithRelay sets the advisory relay. Without one, advisory requests fail
// with ErrUpstreamGeneration before any stream starts.
func WithRelay(relay *advisory.Relay) Option {
	return func(s *Service) {
		s.relay = relay
	}
}

// WithProfiles enables investor profile context in prompts
func WithProfiles(profiles interfaces.ProfileService) Option {
	return func(s *Service) {
		s.profiles = profiles
	}
}

// WithMaxPromptChars caps the user prompt length
func WithMaxPromptChars(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxPromptChars = n
		}
	}
}

// NewService creates a new orchestrator
func NewService(entitlements interfaces.EntitlementService, portfolios interfaces.PortfolioService, logger *common.Logger, opts ...Option) *Service {
	s := &Service{
		entitlements:   entitlements,
		portfolios:     portfolios,
		maxPromptChars: DefaultMaxPromptChars,
		logger:         logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HandleAdvisoryRequest validates req, checks entitlement, computes risk
// metrics and opens the advisory stream. Every error is returned before a
// chunk is produced. Entitlement fails closed: a ledger failure is logged
// and reported as ErrNotEntitled.
func (s *Service) HandleAdvisoryRequest(ctx context.Context, req models.AdvisoryRequest) (interfaces.AdvisorySession, error) {
	sess := newSession(s.logger)
	sess.address = strings.TrimSpace(req.Address)
	log := sess.logger

	reject := func(err error) (interfaces.AdvisorySession, error) {
		sess.transition(models.StateRejected)
		log.Info().Err(err).Msg("Advisory request rejected")
		return nil, err
	}

	prompt := strings.TrimSpace(req.Prompt)
	if sess.address == "" {
		return reject(common.InvalidInputf("address is required"))
	}
	if prompt == "" {
		return reject(common.InvalidInputf("prompt is required"))
	}
	if n := utf8.RuneCountInString(prompt); n > s.maxPromptChars {
		return reject(common.InvalidInputf("prompt is %d characters, limit is %d", n, s.maxPromptChars))
	}

	portfolio, err := s.resolvePortfolio(ctx, sess.address, req.Portfolio)
	if err != nil {
		if errors.Is(err, common.ErrLedgerUnavailable) {
			log.Warn().Err(err).Msg("Portfolio lookup failed, denying")
			return reject(common.ErrNotEntitled)
		}
		return reject(err)
	}
	if err := risk.Validate(portfolio.Assets); err != nil {
		return reject(err)
	}
	sess.transition(models.StateValidated)

	entitled, err := s.entitlements.IsEntitled(ctx, sess.address)
	if err != nil {
		log.Warn().Err(err).Msg("Entitlement check failed, denying")
		return reject(common.ErrNotEntitled)
	}
	if !entitled {
		return reject(common.ErrNotEntitled)
	}
	sess.transition(models.StateAuthorized)

	metrics, err := risk.Compute(portfolio.Assets)
	if err != nil {
		return reject(err)
	}

	pc := advisory.PromptContext{Portfolio: portfolio, Metrics: &metrics}
	if s.profiles != nil {
		if profile, err := s.profiles.Latest(ctx, sess.address); err == nil {
			pc.Profile = profile
		} else if !errors.Is(err, common.ErrNotFound) {
			log.Debug().Err(err).Msg("Profile lookup failed, continuing without it")
		}
	}

	if s.relay == nil {
		sess.transition(models.StateFailed)
		log.Error().Msg("Advisory engine not configured")
		return nil, fmt.Errorf("%w: advisory engine not configured", common.ErrUpstreamGeneration)
	}

	sess.stream = s.relay.Open(ctx, advisory.ComposePrompt(prompt, pc))
	sess.transition(models.StateStreaming)
	return sess, nil
}

// resolvePortfolio returns the request portfolio or, when absent, the latest stored one.
func (s *Service) resolvePortfolio(ctx context.Context, address string, p *models.Portfolio) (*models.Portfolio, error) {
	if p != nil {
		if p.Assets == nil {
			return nil, common.InvalidInputf("portfolio.assets is required")
		}
		return p, nil
	}

	latest, err := s.portfolios.Latest(ctx, address)
	if errors.Is(err, common.ErrNotFound) {
		return nil, common.InvalidInputf("no portfolio supplied or on record for %s", address)
	}
	if err != nil {
		return nil, err
	}
	return latest, nil
}

// ComputeRisk derives risk metrics for assets.
func (s *Service) ComputeRisk(assets []models.Asset) (models.RiskMetrics, error) {
	return risk.Compute(assets)
}

// LatestRisk returns the newest snapshot for wallet with freshly computed metrics.
func (s *Service) LatestRisk(ctx context.Context, wallet string) (*models.Portfolio, error) {
	latest, err := s.portfolios.Latest(ctx, wallet)
	if err != nil {
		return nil, err
	}
	metrics, err := risk.Compute(latest.Assets)
	if err != nil {
		return nil, err
	}
	out := *latest
	out.RiskMetrics = &metrics
	return &out, nil
}

package interfaces

import (
	"context"

	"github.com/bobmcallan/riskgate/internal/models"
)

// EntitlementService gates the advisory feature on recorded payment claims.
type EntitlementService interface {
	// IsEntitled reports the latest recorded claim for address. No records means false.
	IsEntitled(ctx context.Context, address string) (bool, error)

	// RecordPayment appends a new claim. Claims are never deduplicated.
	RecordPayment(ctx context.Context, address string, confirmed bool) (*models.EntitlementRecord, error)

	// History returns all claims for address in append order.
	History(ctx context.Context, address string) ([]*models.EntitlementRecord, error)

	// Status summarises the latest claim for address.
	Status(ctx context.Context, address string) (*models.EntitlementStatus, error)
}

// PortfolioService records and reads portfolio snapshots.
type PortfolioService interface {
	Record(ctx context.Context, p *models.Portfolio) (*models.Portfolio, error)
	History(ctx context.Context, wallet string) ([]*models.Portfolio, error)
	Latest(ctx context.Context, wallet string) (*models.Portfolio, error)
}

// ProfileService records and reads user profiles.
type ProfileService interface {
	Save(ctx context.Context, p *models.UserProfile) (*models.UserProfile, error)
	History(ctx context.Context, wallet string) ([]*models.UserProfile, error)
	Latest(ctx context.Context, wallet string) (*models.UserProfile, error)
}

// ChunkSink receives advisory chunks in order. A write error means the
// consumer is gone.
type ChunkSink interface {
	WriteChunk(chunk models.AdvisoryChunk) error
}

// AdvisorySession is an authorized in-flight advisory stream.
type AdvisorySession interface {
	ID() string
	State() models.RequestState

	// Run pipes the stream into sink until it ends, the sink fails or ctx is
	// done, and returns the terminal state.
	Run(ctx context.Context, sink ChunkSink) models.RequestState

	// Close abandons a session that will not be run.
	Close()
}

// Orchestrator runs advisory and risk requests end to end.
type Orchestrator interface {
	// HandleAdvisoryRequest validates, authorizes and opens a stream. Errors
	// are returned before any chunk is produced.
	HandleAdvisoryRequest(ctx context.Context, req models.AdvisoryRequest) (AdvisorySession, error)

	ComputeRisk(assets []models.Asset) (models.RiskMetrics, error)
	LatestRisk(ctx context.Context, wallet string) (*models.Portfolio, error)
}

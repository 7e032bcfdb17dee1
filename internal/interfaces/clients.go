package interfaces

import (
	"context"
	"iter"

	"github.com/bobmcallan/riskgate/internal/models"
)

// SessionConfig carries per-stream engine settings.
type SessionConfig struct {
	SystemInstruction string
	CodeExecution     bool
}

// AdvisoryEngine produces advisory text incrementally. Cancelling ctx must
// stop generation and release upstream resources promptly.
type AdvisoryEngine interface {
	Generate(ctx context.Context, prompt string, cfg SessionConfig) iter.Seq2[models.Fragment, error]
}

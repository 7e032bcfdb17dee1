package orchestrator

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/riskgate/internal/common"
	"github.com/bobmcallan/riskgate/internal/interfaces"
	"github.com/bobmcallan/riskgate/internal/models"
	"github.com/bobmcallan/riskgate/internal/services/advisory"
)

// Session is one advisory request. It is never persisted.
type Session struct {
	id      string
	address string
	stream  *advisory.Stream
	state   atomic.Value // models.RequestState
	created time.Time
	logger  *common.Logger
}

var _ interfaces.AdvisorySession = (*Session)(nil)

func newSession(logger *common.Logger) *Session {
	id := uuid.NewString()
	s := &Session{
		id:      id,
		created: time.Now(),
		logger:  &common.Logger{Logger: logger.With().Str("session_id", id).Logger()},
	}
	s.state.Store(models.StateReceived)
	return s
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) State() models.RequestState {
	return s.state.Load().(models.RequestState)
}

func (s *Session) transition(to models.RequestState) {
	from := s.State()
	s.state.Store(to)
	s.logger.Debug().
		Str("from", string(from)).
		Str("to", string(to)).
		Str("address", s.address).
		Msg("Advisory request state")
}

// Run pipes the stream to sink and records how it ended.
func (s *Session) Run(ctx context.Context, sink interfaces.ChunkSink) models.RequestState {
	out := s.stream.Pipe(ctx, sink)
	s.transition(out.State)

	event := s.logger.Info()
	if out.State == models.StateFailed {
		event = s.logger.Warn()
	}
	event.
		Err(out.Err).
		Str("address", s.address).
		Str("state", string(out.State)).
		Int("chunks", out.Chunks).
		Dur("elapsed", time.Since(s.created)).
		Msg("Advisory stream finished")

	return out.State
}

// Close abandons the stream without running it.
func (s *Session) Close() {
	if s.stream == nil {
		return
	}
	s.stream.Close()
	if !s.State().Terminal() {
		s.transition(models.StateCancelled)
	}
}

// Package advisory relays incrementally generated advice to a consumer
// as an ordered, cancellable stream of chunks.
package advisory

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/bobmcallan/riskgate/internal/common"
	"github.com/bobmcallan/riskgate/internal/interfaces"
	"github.com/bobmcallan/riskgate/internal/models"
)

const (
	DefaultIdleTimeout = 5 * time.Minute

	// Messages shown to the consumer. Upstream error detail is only logged.
	GenerationFailedMessage = "advisory generation failed"
	StalledMessage          = "advisory stream stalled"
)

// ErrStalled is reported when no chunk arrives within the idle timeout.
var ErrStalled = errors.New("advisory stream stalled")

// Relay opens advisory streams against an engine.
type Relay struct {
	engine      interfaces.AdvisoryEngine
	session     interfaces.SessionConfig
	idleTimeout time.Duration
	logger      *common.Logger
}

// RelayOption configures the relay
type RelayOption func(*Relay)

// WithIdleTimeout sets how long a stream may go without a chunk
func WithIdleTimeout(d time.Duration) RelayOption {
	return func(r *Relay) {
		if d > 0 {
			r.idleTimeout = d
		}
	}
}

// WithSessionConfig sets the per-stream engine settings
func WithSessionConfig(cfg interfaces.SessionConfig) RelayOption {
	return func(r *Relay) {
		r.session = cfg
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) RelayOption {
	return func(r *Relay) {
		r.logger = logger
	}
}

// NewRelay creates a relay over engine
func NewRelay(engine interfaces.AdvisoryEngine, opts ...RelayOption) *Relay {
	r := &Relay{
		engine:      engine,
		session:     interfaces.SessionConfig{SystemInstruction: DefaultSystemInstruction},
		idleTimeout: DefaultIdleTimeout,
		logger:      common.NewSilentLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Stream is one in-flight generation. A single producer goroutine hands
// chunks over an unbuffered channel, so at most one chunk is pending.
type Stream struct {
	chunks      chan models.AdvisoryChunk
	cancel      context.CancelFunc
	done        chan struct{}
	once        sync.Once
	idleTimeout time.Duration
}

// Open starts generating for prompt. The stream is cancelled when ctx is
// done or Close is called; callers must always Close it.
func (r *Relay) Open(ctx context.Context, prompt string) *Stream {
	ctx, cancel := context.WithCancel(ctx)
	s := &Stream{
		chunks:      make(chan models.AdvisoryChunk),
		cancel:      cancel,
		done:        make(chan struct{}),
		idleTimeout: r.idleTimeout,
	}
	go r.produce(ctx, prompt, s)
	return s
}

func (r *Relay) produce(ctx context.Context, prompt string, s *Stream) {
	defer close(s.done)
	defer close(s.chunks)

	start := time.Now()
	fragments := 0

	for frag, err := range r.engine.Generate(ctx, prompt, r.session) {
		if err != nil {
			if ctx.Err() != nil {
				r.logger.Debug().Int("fragments", fragments).Msg("Advisory generation cancelled")
				return
			}
			r.logger.Warn().Err(err).Int("fragments", fragments).Msg("Advisory engine failed")
			s.emit(ctx, models.ErrorChunk(GenerationFailedMessage))
			return
		}
		if frag.Text == "" {
			continue
		}
		if !s.emit(ctx, models.ContentChunk(frag.Origin, frag.Text)) {
			r.logger.Debug().Int("fragments", fragments).Msg("Advisory consumer gone")
			return
		}
		fragments++
	}

	if ctx.Err() != nil {
		return
	}
	if s.emit(ctx, models.DoneChunk()) {
		r.logger.Info().
			Int("fragments", fragments).
			Dur("elapsed", time.Since(start)).
			Msg("Advisory generation complete")
	}
}

func (s *Stream) emit(ctx context.Context, c models.AdvisoryChunk) bool {
	select {
	case s.chunks <- c:
		return true
	case <-ctx.Done():
		return false
	}
}

// Next blocks for the next chunk. It returns io.EOF once the producer has
// exited, and ctx.Err() if ctx is done first.
func (s *Stream) Next(ctx context.Context) (models.AdvisoryChunk, error) {
	select {
	case c, ok := <-s.chunks:
		if !ok {
			return models.AdvisoryChunk{}, io.EOF
		}
		return c, nil
	case <-ctx.Done():
		return models.AdvisoryChunk{}, ctx.Err()
	}
}

// Close cancels generation and waits for the producer to exit. Safe to call
// more than once.
func (s *Stream) Close() {
	s.once.Do(s.cancel)
	<-s.done
}

// Outcome is how a piped stream ended.
type Outcome struct {
	State  models.RequestState
	Chunks int
	Err    error
}

// Pipe forwards chunks to sink as they arrive until a terminal chunk, a sink
// failure, ctx done or the idle timeout. The stream is closed on return.
func (s *Stream) Pipe(ctx context.Context, sink interfaces.ChunkSink) Outcome {
	defer s.Close()

	idle := time.NewTimer(s.idleTimeout)
	defer idle.Stop()

	var out Outcome
	for {
		select {
		case <-ctx.Done():
			out.State = models.StateCancelled
			out.Err = ctx.Err()
			return out

		case <-idle.C:
			s.Close()
			if err := sink.WriteChunk(models.ErrorChunk(StalledMessage)); err != nil {
				out.State = models.StateCancelled
				out.Err = err
				return out
			}
			out.State = models.StateFailed
			out.Err = ErrStalled
			return out

		case c, ok := <-s.chunks:
			if !ok {
				// Producer exited without a terminal chunk: upstream was cancelled
				out.State = models.StateCancelled
				out.Err = context.Canceled
				return out
			}
			if err := sink.WriteChunk(c); err != nil {
				out.State = models.StateCancelled
				out.Err = err
				return out
			}
			switch c.Kind {
			case models.ChunkDone:
				out.State = models.StateCompleted
				return out
			case models.ChunkError:
				out.State = models.StateFailed
				out.Err = errors.New(c.Text)
				return out
			}
			out.Chunks++
			idle.Reset(s.idleTimeout)
		}
	}
}

package advisory

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bobmcallan/riskgate/internal/common"
	"github.com/bobmcallan/riskgate/internal/interfaces"
	"github.com/bobmcallan/riskgate/internal/models"
)

// SSE event types on the wire.
const (
	EventAgent = "agent"
	EventTools = "tools"
	EventError = "error"

	doneSentinel = "[DONE]"
)

// Event is the JSON payload of one SSE data line.
type Event struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// EncodeChunk renders c as one SSE frame.
func EncodeChunk(c models.AdvisoryChunk) ([]byte, error) {
	var ev Event
	switch c.Kind {
	case models.ChunkDone:
		return []byte("data: " + doneSentinel + "\n\n"), nil
	case models.ChunkError:
		ev = Event{Type: EventError, Content: c.Text}
	case models.ChunkContent:
		ev = Event{Type: EventAgent, Content: c.Text}
		if c.Origin == models.OriginTool {
			ev.Type = EventTools
		}
	default:
		return nil, fmt.Errorf("unknown chunk kind %d", c.Kind)
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("failed to encode chunk: %w", err)
	}
	return []byte("data: " + string(data) + "\n\n"), nil
}

// SSEWriter is a ChunkSink over an HTTP response. Headers and the 200
// status are committed with the first chunk; until then the caller may
// still send an ordinary error response.
type SSEWriter struct {
	w       http.ResponseWriter
	rc      *http.ResponseController
	started bool
}

var _ interfaces.ChunkSink = (*SSEWriter)(nil)

func NewSSEWriter(w http.ResponseWriter) *SSEWriter {
	return &SSEWriter{w: w, rc: http.NewResponseController(w)}
}

// Started reports whether the stream headers have been written.
func (s *SSEWriter) Started() bool {
	return s.started
}

// Start commits the SSE headers. Long-lived streams opt out of the server write timeout.
func (s *SSEWriter) Start() error {
	if s.started {
		return nil
	}
	h := s.w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	s.w.WriteHeader(http.StatusOK)
	s.started = true

	// Not every writer supports deadlines (httptest.ResponseRecorder doesn't)
	_ = s.rc.SetWriteDeadline(time.Time{})
	return s.rc.Flush()
}

func (s *SSEWriter) WriteChunk(c models.AdvisoryChunk) error {
	frame, err := EncodeChunk(c)
	if err != nil {
		return err
	}
	if err := s.Start(); err != nil {
		return fmt.Errorf("failed to start stream: %w", err)
	}
	if _, err := s.w.Write(frame); err != nil {
		return fmt.Errorf("failed to write chunk: %w", err)
	}
	if err := s.rc.Flush(); err != nil {
		return fmt.Errorf("failed to flush chunk: %w", err)
	}
	return nil
}

// Decoder reads chunks back out of an SSE body.
type Decoder struct {
	scanner *bufio.Scanner
	logger  *common.Logger
	done    bool
}

func NewDecoder(r io.Reader, logger *common.Logger) *Decoder {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Decoder{scanner: scanner, logger: logger}
}

// Next returns the next chunk. After [DONE] it returns the Done chunk once
// and io.EOF afterwards. Undecodable payloads are logged and skipped.
func (d *Decoder) Next() (models.AdvisoryChunk, error) {
	if d.done {
		return models.AdvisoryChunk{}, io.EOF
	}

	for d.scanner.Scan() {
		line := d.scanner.Text()
		payload, ok := strings.CutPrefix(line, "data:")
		if !ok {
			continue
		}
		payload = strings.TrimSpace(payload)
		if payload == "" {
			continue
		}
		if payload == doneSentinel {
			d.done = true
			return models.DoneChunk(), nil
		}

		var ev Event
		if err := json.Unmarshal([]byte(payload), &ev); err != nil {
			d.logger.Warn().Err(err).Str("payload", truncate(payload, 120)).Msg("Skipping malformed SSE payload")
			continue
		}

		switch ev.Type {
		case EventAgent:
			return models.ContentChunk(models.OriginAdvisory, ev.Content), nil
		case EventTools:
			return models.ContentChunk(models.OriginTool, ev.Content), nil
		case EventError:
			return models.ErrorChunk(ev.Content), nil
		default:
			d.logger.Warn().Str("type", ev.Type).Msg("Skipping unknown SSE event type")
		}
	}

	if err := d.scanner.Err(); err != nil {
		return models.AdvisoryChunk{}, fmt.Errorf("failed to read stream: %w", err)
	}
	return models.AdvisoryChunk{}, io.EOF
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

package models

// Origin tags a piece of advisory output with who produced it.
type Origin string

const (
	OriginAdvisory Origin = "advisory"
	OriginTool     Origin = "tool"
)

// Fragment is one increment yielded by an advisory engine.
type Fragment struct {
	Origin Origin
	Text   string
}

// ChunkKind distinguishes the variants of AdvisoryChunk.
type ChunkKind int

const (
	ChunkContent ChunkKind = iota
	ChunkDone
	ChunkError
)

func (k ChunkKind) String() string {
	switch k {
	case ChunkContent:
		return "content"
	case ChunkDone:
		return "done"
	case ChunkError:
		return "error"
	default:
		return "unknown"
	}
}

// AdvisoryChunk is one unit delivered to a stream consumer. Content chunks
// carry Origin and Text, Error chunks carry Text as the message.
type AdvisoryChunk struct {
	Kind   ChunkKind
	Origin Origin
	Text   string
}

func ContentChunk(origin Origin, text string) AdvisoryChunk {
	return AdvisoryChunk{Kind: ChunkContent, Origin: origin, Text: text}
}

func DoneChunk() AdvisoryChunk {
	return AdvisoryChunk{Kind: ChunkDone}
}

func ErrorChunk(message string) AdvisoryChunk {
	return AdvisoryChunk{Kind: ChunkError, Text: message}
}

// Terminal reports whether no further chunks follow this one.
func (c AdvisoryChunk) Terminal() bool {
	return c.Kind == ChunkDone || c.Kind == ChunkError
}

// RequestState tracks an advisory request through its lifecycle.
type RequestState string

const (
	StateReceived   RequestState = "received"
	StateValidated  RequestState = "validated"
	StateAuthorized RequestState = "authorized"
	StateStreaming  RequestState = "streaming"
	StateCompleted  RequestState = "completed"
	StateCancelled  RequestState = "cancelled"
	StateFailed     RequestState = "failed"
	StateRejected   RequestState = "rejected"
)

// Terminal reports whether the state is final.
func (s RequestState) Terminal() bool {
	switch s {
	case StateCompleted, StateCancelled, StateFailed, StateRejected:
		return true
	}
	return false
}

// AdvisoryRequest is what a caller submits to start an advisory stream.
// Portfolio is optional; the latest stored snapshot is used when absent.
type AdvisoryRequest struct {
	Address   string     `json:"address"`
	Prompt    string     `json:"prompt"`
	Portfolio *Portfolio `json:"portfolio,omitempty"`
}

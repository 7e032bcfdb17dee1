// Package gemini provides an advisory engine backed by the Google Gemini API
package gemini

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"google.golang.org/genai"

	"github.com/bobmcallan/riskgate/internal/common"
	"github.com/bobmcallan/riskgate/internal/interfaces"
	"github.com/bobmcallan/riskgate/internal/models"
)

const (
	DefaultModel       = "gemini-2.0-flash"
	DefaultTemperature = float32(0.4)
)

// Client implements interfaces.AdvisoryEngine
type Client struct {
	client      *genai.Client
	model       string
	temperature float32
	logger      *common.Logger
}

var _ interfaces.AdvisoryEngine = (*Client)(nil)

// ClientOption configures the client
type ClientOption func(*Client)

// WithModel sets the model to use
func WithModel(model string) ClientOption {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithTemperature sets the sampling temperature
func WithTemperature(t float32) ClientOption {
	return func(c *Client) {
		c.temperature = t
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new Gemini client
func NewClient(ctx context.Context, apiKey string, opts ...ClientOption) (*Client, error) {
	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	c := &Client{
		client:      genaiClient,
		model:       DefaultModel,
		temperature: DefaultTemperature,
		logger:      common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Generate streams fragments for prompt. Model text becomes advisory
// fragments; executed code, its output and function calls become tool
// fragments. Cancelling ctx aborts the underlying HTTP stream.
func (c *Client) Generate(ctx context.Context, prompt string, cfg interfaces.SessionConfig) iter.Seq2[models.Fragment, error] {
	return func(yield func(models.Fragment, error) bool) {
		c.logger.Debug().Str("model", c.model).Int("prompt_chars", len(prompt)).Msg("Starting advisory stream")

		for resp, err := range c.client.Models.GenerateContentStream(ctx, c.model, genai.Text(prompt), c.contentConfig(cfg)) {
			if err != nil {
				yield(models.Fragment{}, fmt.Errorf("gemini stream: %w", err))
				return
			}
			for _, frag := range fragmentsFromResponse(resp) {
				if !yield(frag, nil) {
					return
				}
			}
		}
	}
}

func (c *Client) contentConfig(cfg interfaces.SessionConfig) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(c.temperature),
	}
	if cfg.SystemInstruction != "" {
		config.SystemInstruction = genai.NewContentFromText(cfg.SystemInstruction, genai.RoleUser)
	}
	if cfg.CodeExecution {
		config.Tools = []*genai.Tool{{CodeExecution: &genai.ToolCodeExecution{}}}
	}
	return config
}

// fragmentsFromResponse maps the parts of the first candidate to fragments.
func fragmentsFromResponse(resp *genai.GenerateContentResponse) []models.Fragment {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}

	var out []models.Fragment
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		switch {
		case part.ExecutableCode != nil:
			out = append(out, models.Fragment{Origin: models.OriginTool, Text: part.ExecutableCode.Code})
		case part.CodeExecutionResult != nil:
			out = append(out, models.Fragment{Origin: models.OriginTool, Text: part.CodeExecutionResult.Output})
		case part.FunctionCall != nil:
			out = append(out, models.Fragment{Origin: models.OriginTool, Text: describeCall(part.FunctionCall)})
		case part.Text != "":
			out = append(out, models.Fragment{Origin: models.OriginAdvisory, Text: part.Text})
		}
	}
	return out
}

func describeCall(fc *genai.FunctionCall) string {
	if len(fc.Args) == 0 {
		return fc.Name + "()"
	}
	args := make([]string, 0, len(fc.Args))
	for k, v := range fc.Args {
		args = append(args, fmt.Sprintf("%s=%v", k, v))
	}
	return fc.Name + "(" + strings.Join(args, ", ") + ")"
}

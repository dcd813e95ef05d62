package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"golang.org/x/sync/errgroup"
)

// reasoningFamilyPrefix identifies model families whose extended reasoning
// mode is disabled per call for latency. The flag rides in a
// provider-specific extension block; OpenAI-compatible servers that do not
// know it ignore it.
const reasoningFamilyPrefix = "glm-4"

// GenerateOptions holds per-call generation parameters.
type GenerateOptions struct {
	SystemPrompt string // optional leading system message
	MaxTokens    int
	Temperature  float64
}

// Result carries the outcome of an asynchronous generation.
type Result struct {
	Text string
	Err  error
}

// Engine wraps an OpenAI-compatible chat completion client. It performs no
// retries: a failed call fails once and the caller falls back immediately.
type Engine struct {
	client     openai.Client
	model      string
	observer   Observer
	configured bool
}

// NewEngine creates an Engine for the given credential, model, and optional
// endpoint override. An empty API key is acceptable when a base URL points
// at a provider that needs no credential (e.g. a local server); with neither
// set, every call returns ErrNotConfigured.
func NewEngine(apiKey, model, baseURL string, observer Observer) *Engine {
	if observer == nil {
		observer = NoopObserver{}
	}

	// No retries anywhere in this layer: a failed call fails once and the
	// caller falls back immediately.
	opts := []option.RequestOption{option.WithMaxRetries(0)}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &Engine{
		client:     openai.NewClient(opts...),
		model:      model,
		observer:   observer,
		configured: apiKey != "" || baseURL != "",
	}
}

// Model returns the configured model identifier.
func (e *Engine) Model() string {
	return e.model
}

// Configured reports whether the engine can reach a provider at all.
func (e *Engine) Configured() bool {
	return e.configured
}

// Generate performs one blocking completion round trip and returns the
// trimmed text. An empty completion is reported as ErrEmptyCompletion so the
// caller can choose its fallback.
func (e *Engine) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	start := time.Now()
	text, err := e.generate(ctx, prompt, opts)
	e.observe("generate", start, err)
	return text, err
}

func (e *Engine) generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	if !e.configured {
		return "", ErrNotConfigured
	}

	resp, err := e.client.Chat.Completions.New(ctx, e.buildParams(prompt, opts), e.callOptions()...)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}

// GenerateStream starts a streaming completion and returns a lazy, finite,
// non-restartable fragment sequence. The caller must Close the stream on
// every exit path; Close releases the underlying connection even when the
// consumer stops pulling early.
func (e *Engine) GenerateStream(ctx context.Context, prompt string, opts GenerateOptions) (*Stream, error) {
	if !e.configured {
		return nil, ErrNotConfigured
	}

	inner := e.client.Chat.Completions.NewStreaming(ctx, e.buildParams(prompt, opts), e.callOptions()...)
	return &Stream{inner: inner, onDone: func(start time.Time, err error) {
		e.observe("stream", start, err)
	}, start: time.Now()}, nil
}

// GenerateAsync runs a non-streaming call off the calling goroutine. The
// returned channel delivers exactly one Result and is then closed.
func (e *Engine) GenerateAsync(ctx context.Context, prompt string, opts GenerateOptions) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		defer close(ch)
		text, err := e.Generate(ctx, prompt, opts)
		ch <- Result{Text: text, Err: err}
	}()
	return ch
}

// GenerateParallel issues one request per prompt concurrently and waits for
// all of them. Results are in input order regardless of completion order.
// The batch is all-or-nothing: the first failure cancels the remaining
// requests and fails the whole call.
func (e *Engine) GenerateParallel(ctx context.Context, prompts []string, opts GenerateOptions) ([]string, error) {
	start := time.Now()

	results := make([]string, len(prompts))
	g, ctx := errgroup.WithContext(ctx)
	for i, prompt := range prompts {
		g.Go(func() error {
			text, err := e.generate(ctx, prompt, opts)
			if err != nil {
				return fmt.Errorf("prompt %d: %w", i, err)
			}
			results[i] = text
			return nil
		})
	}

	err := g.Wait()
	e.observe("parallel", start, err)
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (e *Engine) buildParams(prompt string, opts GenerateOptions) openai.ChatCompletionNewParams {
	var messages []openai.ChatCompletionMessageParamUnion
	if opts.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(opts.SystemPrompt))
	}
	messages = append(messages, openai.UserMessage(prompt))

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(e.model),
		Messages: messages,
	}
	if opts.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(opts.MaxTokens))
	}
	if opts.Temperature > 0 {
		params.Temperature = openai.Float(opts.Temperature)
	}
	return params
}

// callOptions injects provider-specific request extensions. Checked on every
// call as a pure function of the model name.
func (e *Engine) callOptions() []option.RequestOption {
	if !strings.HasPrefix(e.model, reasoningFamilyPrefix) {
		return nil
	}
	return []option.RequestOption{
		option.WithJSONSet("thinking", map[string]string{"type": "disabled"}),
	}
}

func (e *Engine) observe(op string, start time.Time, err error) {
	e.observer.OnCallComplete(CallEvent{
		Op:        op,
		Model:     e.model,
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   err == nil,
		ErrorCode: errorCode(err),
	})
}

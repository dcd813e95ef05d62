package feedback

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"justdo/internal/analyzer"
	"justdo/internal/llm"
	"justdo/internal/profile"
)

// TaskFact is the read-only view of a task the orchestrator consumes. It
// never mutates task records.
type TaskFact struct {
	ID       int64
	Text     string
	Priority string
	Done     bool
}

// Suggestion is the result of the suggest path. Exactly one of Message and
// Stream is set; when Stream is non-nil the caller owns it and must Close.
type Suggestion struct {
	Message string
	Stream  *llm.Stream
}

// celebratoryMessage is returned when there is nothing left to suggest.
const celebratoryMessage = "🎉 All tasks are done. Enjoy the moment!"

// unavailablePrefix marks locally synthesized fallback text for failed
// feedback generation.
const unavailablePrefix = "(AI temporarily unavailable: "

// Orchestrator composes classifier output, profile context, and scenario
// templates into model requests. It holds no per-request state; every
// invocation is independent.
type Orchestrator struct {
	engine      *llm.Engine
	profilePath string
	now         func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithClock overrides the time source used for time-of-day context.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// New creates an Orchestrator backed by the given engine. profilePath
// locates the user profile consulted (best-effort) for prompt context.
func New(engine *llm.Engine, profilePath string, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		engine:      engine,
		profilePath: profilePath,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// profileSummary loads the behavioral summary for prompt context. The bool
// result makes the best-effort nature explicit: false means no usable data,
// never an error the caller has to handle.
func (o *Orchestrator) profileSummary() (string, bool) {
	if o.profilePath == "" {
		return "", false
	}
	summary := profile.Open(o.profilePath, profile.WithClock(o.now)).ContextSummary()
	return summary, summary != ""
}

// prepareContext fills in the ambient values every template may reference:
// time-of-day and the profile summary. Caller-supplied values win.
func (o *Orchestrator) prepareContext(values map[string]string) map[string]string {
	prepared := make(map[string]string, len(values)+2)
	for k, v := range values {
		prepared[k] = v
	}
	if _, ok := prepared["time_context"]; !ok {
		prepared["time_context"] = string(analyzer.TimeOfDay(o.now().Hour()))
	}
	if _, ok := prepared["user_profile"]; !ok {
		summary, ok := o.profileSummary()
		if !ok {
			summary = ""
		}
		prepared["user_profile"] = summary
	}
	return prepared
}

// Feedback generates the natural-language reaction for a named event.
// Provider failures never surface as errors: they degrade to a marked
// fallback string. Unknown events, missing placeholders, and a missing
// credential are real errors.
func (o *Orchestrator) Feedback(ctx context.Context, event string, values map[string]string) (string, error) {
	scenario, ok := ScenarioByName(event)
	if !ok {
		return "", fmt.Errorf("unknown feedback event %q", event)
	}

	prompt, err := formatTemplate(scenario.Template, o.prepareContext(values))
	if err != nil {
		return "", err
	}

	text, err := o.engine.Generate(ctx, prompt, llm.GenerateOptions{
		MaxTokens:   scenario.MaxTokens,
		Temperature: scenario.Temperature,
	})
	if err != nil {
		if errors.Is(err, llm.ErrNotConfigured) {
			return "", err
		}
		return fallbackText(err), nil
	}
	return text, nil
}

// Enhance rewrites task text through the model. Enhancement is an optional
// embellishment: any runtime failure or empty completion silently returns
// the original text. Only a missing credential is reported.
func (o *Orchestrator) Enhance(ctx context.Context, text string) (string, error) {
	prompt, err := formatTemplate(promptEnhance, map[string]string{"text": text})
	if err != nil {
		return text, err
	}

	enhanced, err := o.engine.Generate(ctx, prompt, llm.GenerateOptions{
		MaxTokens:   100,
		Temperature: 0.7,
	})
	if err != nil {
		if errors.Is(err, llm.ErrNotConfigured) {
			return text, err
		}
		return text, nil
	}
	return enhanced, nil
}

// Suggest streams a next-action recommendation over the pending tasks. With
// zero pending tasks it short-circuits to a fixed celebratory message before
// any model call.
func (o *Orchestrator) Suggest(ctx context.Context, tasks []TaskFact) (Suggestion, error) {
	pending := make([]TaskFact, 0, len(tasks))
	for _, task := range tasks {
		if !task.Done {
			pending = append(pending, task)
		}
	}
	if len(pending) == 0 {
		return Suggestion{Message: celebratoryMessage}, nil
	}

	scenario, _ := ScenarioByName(EventSuggest)
	prompt, err := formatTemplate(scenario.Template, o.prepareContext(map[string]string{
		"todos": todosBlock(pending),
	}))
	if err != nil {
		return Suggestion{}, err
	}

	opts := llm.GenerateOptions{MaxTokens: scenario.MaxTokens, Temperature: scenario.Temperature}
	stream, err := o.engine.GenerateStream(ctx, prompt, opts)
	if err != nil {
		if errors.Is(err, llm.ErrNotConfigured) {
			return Suggestion{}, err
		}
		return Suggestion{Message: fallbackText(err)}, nil
	}
	return Suggestion{Stream: stream}, nil
}

// Chat answers a free-form question with the task list as context. Provider
// failures degrade to a marked fallback string; a missing credential is an
// error because chat is a user-requested answer.
func (o *Orchestrator) Chat(ctx context.Context, message string, tasks []TaskFact) (string, error) {
	system := fmt.Sprintf(chatSystemPrompt, todosBlock(tasks))

	text, err := o.engine.Generate(ctx, message, llm.GenerateOptions{
		SystemPrompt: system,
		MaxTokens:    300,
		Temperature:  0.8,
	})
	if err != nil {
		if errors.Is(err, llm.ErrNotConfigured) {
			return "", err
		}
		return fallbackText(err), nil
	}
	return text, nil
}

// todosBlock renders tasks the way prompts expect them, one per line.
func todosBlock(tasks []TaskFact) string {
	if len(tasks) == 0 {
		return "(no tasks)"
	}
	var b strings.Builder
	for _, task := range tasks {
		state := "open"
		if task.Done {
			state = "done"
		}
		b.WriteString("- [")
		b.WriteString(strconv.FormatInt(task.ID, 10))
		b.WriteString("] ")
		b.WriteString(task.Text)
		b.WriteString(" (priority: ")
		b.WriteString(task.Priority)
		b.WriteString(", ")
		b.WriteString(state)
		b.WriteString(")\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func fallbackText(err error) string {
	return unavailablePrefix + err.Error() + ")"
}

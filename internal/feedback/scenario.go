package feedback

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Scenario pairs a prompt template with its generation parameters for one
// kind of feedback event. Scenarios are defined at startup and never mutated.
type Scenario struct {
	Name        string
	Template    string
	MaxTokens   int
	Temperature float64
	Stream      bool
}

// Event names accepted by the orchestrator.
const (
	EventTaskAdded     = "task_added"
	EventTaskCompleted = "task_completed"
	EventListCleared   = "list_cleared"
	EventSuggest       = "suggest"
)

// scenarios is the fixed registry. Adding a scenario is a deployment-time
// change, not a request-time one.
var scenarios = map[string]Scenario{
	EventTaskAdded: {
		Name:        "task added",
		Template:    promptTaskAdded,
		MaxTokens:   60,
		Temperature: 0.8,
	},
	EventTaskCompleted: {
		Name:        "task completed",
		Template:    promptTaskCompleted,
		MaxTokens:   60,
		Temperature: 0.8,
	},
	EventListCleared: {
		Name:        "list cleared",
		Template:    promptListCleared,
		MaxTokens:   200,
		Temperature: 0.8,
	},
	EventSuggest: {
		Name:        "suggest next",
		Template:    promptSuggest,
		MaxTokens:   300,
		Temperature: 0.8,
		Stream:      true,
	},
}

// ScenarioByName looks up a registered scenario.
func ScenarioByName(name string) (Scenario, bool) {
	s, ok := scenarios[name]
	return s, ok
}

// ErrMissingPlaceholder reports a template placeholder with no value in the
// supplied context. This is a programming error, not a user-facing condition,
// so it is never converted into fallback text.
var ErrMissingPlaceholder = errors.New("prompt template placeholder missing")

var placeholderPattern = regexp.MustCompile(`\{([a-z0-9_]+)\}`)

// formatTemplate substitutes {name} placeholders from values. Every
// placeholder in the template must be present in values.
func formatTemplate(template string, values map[string]string) (string, error) {
	var missing []string
	out := placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		key := match[1 : len(match)-1]
		value, ok := values[key]
		if !ok {
			missing = append(missing, key)
			return match
		}
		return value
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("%w: %s", ErrMissingPlaceholder, strings.Join(missing, ", "))
	}
	return out, nil
}

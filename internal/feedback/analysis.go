package feedback

import (
	"context"
	"fmt"
	"strings"

	"justdo/internal/llm"
)

// Analysis sources, recorded so callers can tell a model answer from a
// locally synthesized one.
const (
	SourceModel         = "llm"
	SourceFallbackParse = "fallback_parse"
	SourceFallbackError = "fallback_error"
)

// AnalysisStats is the snapshot of behavioral counters fed to the unified
// analysis prompt.
type AnalysisStats struct {
	TotalTasks     int
	CompletedTasks int
	CurrentStreak  int
	LongestStreak  int
	CategoryStats  string
	HourlyActivity string

	TaskText       string
	TaskPriority   string
	TodayCompleted int
	TodayTotal     int
	RemainingCount int
}

// UserType labels the user's working pattern along three axes.
type UserType struct {
	ExecutionPattern string `json:"execution_pattern"`
	TimePreference   string `json:"time_preference"`
	ActivityPattern  string `json:"activity_pattern"`
}

// StrengthsWeaknesses summarizes observed habits and what to try next.
type StrengthsWeaknesses struct {
	Strengths   []string `json:"strengths"`
	Weaknesses  []string `json:"weaknesses"`
	Suggestions []string `json:"suggestions"`
}

// Analysis is the unified behavioral analysis document. Source tells the
// caller whether the model produced it or a fallback did.
type Analysis struct {
	UserType            UserType            `json:"user_type"`
	StrengthsWeaknesses StrengthsWeaknesses `json:"strengths_weaknesses"`
	RiskAlerts          []string            `json:"risk_alerts"`
	TaskFeedback        string              `json:"task_feedback"`
	Source              string              `json:"-"`
}

// placeholderAnalysis is the shape returned when nothing usable came back
// from the model. Every field carries a neutral "not enough data" value so
// rendering code never has to nil-check.
func placeholderAnalysis(source, taskFeedback string) *Analysis {
	return &Analysis{
		UserType: UserType{
			ExecutionPattern: "observing",
			TimePreference:   "observing",
			ActivityPattern:  "observing",
		},
		StrengthsWeaknesses: StrengthsWeaknesses{
			Strengths:   []string{"still gathering data"},
			Weaknesses:  []string{"still gathering data"},
			Suggestions: []string{"keep going"},
		},
		RiskAlerts:   []string{},
		TaskFeedback: taskFeedback,
		Source:       source,
	}
}

// UnifiedAnalysis runs the single-call behavioral analysis. It never returns
// an error: a failed call yields a placeholder tagged fallback_error, and a
// completion the extractor cannot parse yields one tagged fallback_parse
// whose TaskFeedback is the raw text so the completion is not wasted.
func (o *Orchestrator) UnifiedAnalysis(ctx context.Context, stats AnalysisStats) *Analysis {
	values := o.prepareContext(map[string]string{
		"total_tasks":     fmt.Sprintf("%d", stats.TotalTasks),
		"completed_tasks": fmt.Sprintf("%d", stats.CompletedTasks),
		"completion_rate": completionRate(stats),
		"current_streak":  fmt.Sprintf("%d", stats.CurrentStreak),
		"longest_streak":  fmt.Sprintf("%d", stats.LongestStreak),
		"category_stats":  orDefault(stats.CategoryStats, "(none)"),
		"hourly_activity": orDefault(stats.HourlyActivity, "(none)"),
		"task_text":       stats.TaskText,
		"task_priority":   stats.TaskPriority,
		"today_completed": fmt.Sprintf("%d", stats.TodayCompleted),
		"today_total":     fmt.Sprintf("%d", stats.TodayTotal),
		"remaining_count": fmt.Sprintf("%d", stats.RemainingCount),
	})

	prompt, err := formatTemplate(promptUnifiedAnalysis, values)
	if err != nil {
		return placeholderAnalysis(SourceFallbackError, "keep going")
	}

	raw, err := o.engine.Generate(ctx, prompt, llm.GenerateOptions{
		MaxTokens:   500,
		Temperature: 0.7,
	})
	if err != nil {
		return placeholderAnalysis(SourceFallbackError, "keep going")
	}

	analysis, err := llm.ExtractJSON[Analysis](raw, validateAnalysis)
	if err != nil {
		// Salvage the completion as feedback even though the structure failed.
		return placeholderAnalysis(SourceFallbackParse, truncate(raw, 50))
	}

	analysis.Source = SourceModel
	if analysis.RiskAlerts == nil {
		analysis.RiskAlerts = []string{}
	}
	return &analysis
}

func validateAnalysis(a Analysis) error {
	if a.TaskFeedback == "" {
		return fmt.Errorf("task_feedback is empty")
	}
	if a.UserType.ExecutionPattern == "" {
		return fmt.Errorf("user_type.execution_pattern is empty")
	}
	return nil
}

func completionRate(stats AnalysisStats) string {
	if stats.TotalTasks == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.0f%%", float64(stats.CompletedTasks)/float64(stats.TotalTasks)*100)
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func truncate(s string, max int) string {
	runes := []rune(strings.TrimSpace(s))
	if len(runes) <= max {
		return string(runes)
	}
	return string(runes[:max]) + "…"
}

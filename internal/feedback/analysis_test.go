package feedback

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleStats() AnalysisStats {
	return AnalysisStats{
		TotalTasks:     12,
		CompletedTasks: 9,
		CurrentStreak:  3,
		LongestStreak:  5,
		CategoryStats:  "work: 7, life: 5",
		HourlyActivity: "9:00 x4, 21:00 x5",
		TaskText:       "fix login bug",
		TaskPriority:   "high",
		TodayCompleted: 2,
		TodayTotal:     4,
		RemainingCount: 3,
	}
}

func TestUnifiedAnalysis_ModelAnswer(t *testing.T) {
	payload := `Here you go:
{
  "user_type": {"execution_pattern": "steady finisher", "time_preference": "night owl", "activity_pattern": "bursty"},
  "strengths_weaknesses": {"strengths": ["consistent streaks"], "weaknesses": ["late starts"], "suggestions": ["front-load mornings"]},
  "risk_alerts": [],
  "task_feedback": "Solid work knocking out the login bug."
}`
	o := newTestOrchestrator(t, respondWith(payload))

	analysis := o.UnifiedAnalysis(context.Background(), sampleStats())
	require.NotNil(t, analysis)
	assert.Equal(t, SourceModel, analysis.Source)
	assert.Equal(t, "steady finisher", analysis.UserType.ExecutionPattern)
	assert.Equal(t, []string{"consistent streaks"}, analysis.StrengthsWeaknesses.Strengths)
	assert.NotNil(t, analysis.RiskAlerts)
	assert.Equal(t, "Solid work knocking out the login bug.", analysis.TaskFeedback)
}

func TestUnifiedAnalysis_UnparseableCompletionSalvagedAsFeedback(t *testing.T) {
	o := newTestOrchestrator(t, respondWith("Great job on that bug, keep the streak alive!"))

	analysis := o.UnifiedAnalysis(context.Background(), sampleStats())
	assert.Equal(t, SourceFallbackParse, analysis.Source)
	assert.Equal(t, "Great job on that bug, keep the streak alive!", analysis.TaskFeedback)
	assert.Equal(t, "observing", analysis.UserType.ExecutionPattern)
}

func TestUnifiedAnalysis_LongSalvageIsTruncated(t *testing.T) {
	long := "This completion rambles on far past any reasonable feedback length and has no JSON in it at all."
	o := newTestOrchestrator(t, respondWith(long))

	analysis := o.UnifiedAnalysis(context.Background(), sampleStats())
	assert.Equal(t, SourceFallbackParse, analysis.Source)
	assert.LessOrEqual(t, len([]rune(analysis.TaskFeedback)), 51)
}

func TestUnifiedAnalysis_ProviderFailureYieldsPlaceholder(t *testing.T) {
	o := newTestOrchestrator(t, failWith500)

	analysis := o.UnifiedAnalysis(context.Background(), sampleStats())
	assert.Equal(t, SourceFallbackError, analysis.Source)
	assert.Equal(t, "keep going", analysis.TaskFeedback)
	assert.Equal(t, []string{"still gathering data"}, analysis.StrengthsWeaknesses.Strengths)
	assert.Empty(t, analysis.RiskAlerts)
}

func TestUnifiedAnalysis_ValidatorRejectsEmptyFeedback(t *testing.T) {
	payload := `{
  "user_type": {"execution_pattern": "steady", "time_preference": "morning", "activity_pattern": "even"},
  "strengths_weaknesses": {"strengths": [], "weaknesses": [], "suggestions": []},
  "risk_alerts": [],
  "task_feedback": ""
}`
	o := newTestOrchestrator(t, respondWith(payload))

	analysis := o.UnifiedAnalysis(context.Background(), sampleStats())
	assert.Equal(t, SourceFallbackParse, analysis.Source)
}

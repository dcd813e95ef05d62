package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"justdo/internal/feedback"
	"justdo/internal/profile"
	"justdo/internal/task"
)

func newSuggestCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "suggest",
		Short: "Ask the model what to do next",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			items, err := app.Store.List(ctx)
			if err != nil {
				return err
			}

			got, err := app.Orchestrator.Suggest(ctx, taskFacts(items))
			if err != nil {
				return err
			}

			if got.Stream == nil {
				fmt.Println(render(styleGood, got.Message))
				return nil
			}
			defer got.Stream.Close()

			// Fragments print as they arrive.
			for got.Stream.Next() {
				fmt.Print(got.Stream.Text())
			}
			fmt.Println()
			if err := got.Stream.Err(); err != nil {
				return err
			}
			return nil
		},
	}
}

func newChatCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "chat <message>",
		Short: "Ask the assistant about your tasks",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			message := strings.Join(args, " ")

			items, err := app.Store.List(ctx)
			if err != nil {
				return err
			}

			reply, err := app.Orchestrator.Chat(ctx, message, taskFacts(items))
			if err != nil {
				return err
			}
			fmt.Println(render(styleAI, reply))
			return nil
		},
	}
}

func newInsightCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "insight",
		Short: "Show behavioral stats and, with AI, a working-pattern analysis",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store := profile.Open(app.ProfilePath)
			p := store.Profile()

			var b strings.Builder
			fmt.Fprintf(&b, "%s\n", render(styleTitle, "your habits"))
			fmt.Fprintf(&b, "tasks: %d added, %d completed (%.0f%%)\n",
				p.Stats.TotalTasks, p.Stats.CompletedTasks, store.CompletionRate()*100)
			fmt.Fprintf(&b, "streak: %d day(s), longest %d\n",
				p.Stats.CurrentStreak, p.Stats.LongestStreak)
			if peaks := store.PeakHours(3); len(peaks) > 0 {
				hours := make([]string, len(peaks))
				for i, h := range peaks {
					hours[i] = fmt.Sprintf("%d:00", h)
				}
				fmt.Fprintf(&b, "peak hours: %s\n", strings.Join(hours, ", "))
			}
			for _, line := range categoryLines(p) {
				b.WriteString(line)
				b.WriteString("\n")
			}
			fmt.Println(strings.TrimRight(b.String(), "\n"))

			if !app.AIEnabled {
				fmt.Println(render(styleMuted, "set OPENAI_API_KEY for a deeper analysis"))
				return nil
			}

			analysis := app.Orchestrator.UnifiedAnalysis(ctx, analysisStats(ctx, app, store))
			printAnalysis(analysis)
			return nil
		},
	}
}

func categoryLines(p *profile.Profile) []string {
	var lines []string
	for _, category := range []string{"work", "study", "exercise", "life", "other"} {
		stat, ok := p.TaskCategories[category]
		if !ok {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %d added, %d completed",
			category, stat.Count, stat.Completed))
	}
	return lines
}

func analysisStats(ctx context.Context, app *App, store *profile.Store) feedback.AnalysisStats {
	p := store.Profile()
	total, completed := app.counts(ctx)

	var categories []string
	for _, line := range categoryLines(p) {
		categories = append(categories, line)
	}

	var hours []string
	for _, h := range store.PeakHours(3) {
		hours = append(hours, fmt.Sprintf("%d:00 x%d", h, p.HourlyActivity[h]))
	}

	return feedback.AnalysisStats{
		TotalTasks:     p.Stats.TotalTasks,
		CompletedTasks: p.Stats.CompletedTasks,
		CurrentStreak:  p.Stats.CurrentStreak,
		LongestStreak:  p.Stats.LongestStreak,
		CategoryStats:  strings.Join(categories, "; "),
		HourlyActivity: strings.Join(hours, ", "),
		TaskText:       "(none)",
		TaskPriority:   "(none)",
		TodayCompleted: completed,
		TodayTotal:     total,
		RemainingCount: total - completed,
	}
}

func printAnalysis(a *feedback.Analysis) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s / %s / %s\n", render(styleTitle, "pattern:"),
		a.UserType.ExecutionPattern, a.UserType.TimePreference, a.UserType.ActivityPattern)
	for _, s := range a.StrengthsWeaknesses.Strengths {
		fmt.Fprintf(&b, "%s %s\n", render(styleGood, "+"), s)
	}
	for _, s := range a.StrengthsWeaknesses.Weaknesses {
		fmt.Fprintf(&b, "%s %s\n", render(styleWarn, "-"), s)
	}
	for _, s := range a.StrengthsWeaknesses.Suggestions {
		fmt.Fprintf(&b, "%s %s\n", render(styleMuted, ">"), s)
	}
	for _, s := range a.RiskAlerts {
		fmt.Fprintf(&b, "%s %s\n", render(styleWarn, "!"), s)
	}
	b.WriteString(render(styleAI, a.TaskFeedback))

	out := strings.TrimRight(b.String(), "\n")
	if stdoutIsTerminal() {
		out = stylePanel.Render(out)
	}
	fmt.Println(out)
}

func taskFacts(items []*task.Item) []feedback.TaskFact {
	facts := make([]feedback.TaskFact, len(items))
	for i, item := range items {
		facts[i] = feedback.TaskFact{
			ID:       item.ID,
			Text:     item.Text,
			Priority: item.Priority,
			Done:     item.Done,
		}
	}
	return facts
}

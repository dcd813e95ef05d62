package cli

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"justdo/internal/feedback"
	"justdo/internal/profile"
	"justdo/internal/task"
)

func newAddCmd(app *App) *cobra.Command {
	var priority string
	var enhance bool

	cmd := &cobra.Command{
		Use:   "add <text>",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			text := strings.TrimSpace(strings.Join(args, " "))
			if text == "" {
				return fmt.Errorf("task text is empty")
			}
			if !task.ValidPriority(priority) {
				return fmt.Errorf("priority must be high, medium, or low")
			}

			if enhance && app.AIEnabled {
				enhanced, err := app.Orchestrator.Enhance(ctx, text)
				if err == nil && enhanced != text {
					fmt.Printf("%s %s\n", render(styleMuted, "refined:"), enhanced)
					text = enhanced
				}
			}

			item, err := app.Store.Add(ctx, text, priority)
			if err != nil {
				return err
			}

			app.recordProfile(item.Text, profile.ActionAdd)
			fmt.Printf("%s #%d %s\n", render(styleGood, "added"), item.ID, item.Text)

			app.printEventFeedback(ctx, feedback.EventTaskAdded, app.addedValues(ctx, item))
			return nil
		},
	}

	cmd.Flags().StringVarP(&priority, "priority", "p", task.PriorityMedium, "Priority: high, medium, or low")
	cmd.Flags().BoolVar(&enhance, "ai", false, "Let the model refine the task text first")

	return cmd
}

func newListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := app.Store.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Println(render(styleMuted, "nothing here; add a task with: justdo add <text>"))
				return nil
			}

			// High priority first, then insertion order.
			sort.SliceStable(items, func(i, j int) bool {
				return task.PriorityWeight(items[i].Priority) > task.PriorityWeight(items[j].Priority)
			})

			fmt.Println(render(styleTitle, "tasks"))
			for _, item := range items {
				fmt.Println(formatItem(item))
			}
			return nil
		},
	}
}

func formatItem(item *task.Item) string {
	if item.Done {
		return render(styleMuted, fmt.Sprintf("%3d [x] %s", item.ID, item.Text))
	}
	line := fmt.Sprintf("%3d [ ] %s", item.ID, item.Text)
	if item.Priority == task.PriorityHigh {
		return render(styleWarn, line) + " " + render(styleGold, "!")
	}
	if item.Priority == task.PriorityLow {
		return line + " " + render(styleMuted, "·")
	}
	return line
}

func newDoneCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Mark a task as completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}

			item, err := app.Store.MarkDone(ctx, id)
			if err != nil {
				return err
			}

			app.recordProfile(item.Text, profile.ActionComplete)
			fmt.Printf("%s #%d %s\n", render(styleGood, "done"), item.ID, item.Text)

			app.printEventFeedback(ctx, feedback.EventTaskCompleted, app.completedValues(ctx, item))
			return nil
		},
	}
}

func newRmCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}

			item, err := app.Store.Delete(cmd.Context(), id)
			if err != nil {
				return err
			}

			app.recordProfile(item.Text, profile.ActionDelete)
			fmt.Printf("%s #%d %s\n", render(styleMuted, "removed"), item.ID, item.Text)
			return nil
		},
	}
}

func newClearCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			n, err := app.Store.Clear(ctx)
			if err != nil {
				return err
			}

			fmt.Printf("%s %d task(s)\n", render(styleMuted, "cleared"), n)
			if n > 0 {
				app.printEventFeedback(ctx, feedback.EventListCleared, map[string]string{
					"cleared_count": strconv.FormatInt(n, 10),
				})
			}
			return nil
		},
	}
}

// printEventFeedback runs one best-effort feedback generation and prints it.
// Failures are silent: enrichment must never break a command.
func (app *App) printEventFeedback(ctx context.Context, event string, values map[string]string) {
	if !app.AIEnabled {
		return
	}
	msg, err := app.Orchestrator.Feedback(ctx, event, values)
	if err != nil || msg == "" {
		return
	}
	fmt.Println(render(styleAI, msg))
}

func (app *App) addedValues(ctx context.Context, item *task.Item) map[string]string {
	total, completed := app.counts(ctx)
	return map[string]string{
		"task_text":        item.Text,
		"task_priority":    item.Priority,
		"incomplete_count": strconv.Itoa(total - completed),
		"total_count":      strconv.Itoa(total),
	}
}

func (app *App) completedValues(ctx context.Context, item *task.Item) map[string]string {
	total, completed := app.counts(ctx)
	return map[string]string{
		"task_text":       item.Text,
		"task_priority":   item.Priority,
		"today_completed": strconv.Itoa(completed),
		"today_total":     strconv.Itoa(total),
		"remaining_count": strconv.Itoa(total - completed),
	}
}

func (app *App) counts(ctx context.Context) (total, completed int) {
	total, completed, err := app.Store.Counts(ctx)
	if err != nil {
		return 0, 0
	}
	return total, completed
}

func parseTaskID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid task id %q", arg)
	}
	return id, nil
}

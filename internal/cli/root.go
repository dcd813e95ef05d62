package cli

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"justdo/internal/feedback"
	"justdo/internal/profile"
	"justdo/internal/task"
)

// App holds the wired dependencies CLI commands run against.
type App struct {
	Store        *task.Store
	Orchestrator *feedback.Orchestrator
	ProfilePath  string
	AIEnabled    bool
	Port         int
	Log          *logrus.Logger
}

// NewRootCmd creates the top-level "justdo" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "justdo",
		Short:         "Todo list with an encouraging AI sidekick",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newAddCmd(app),
		newListCmd(app),
		newDoneCmd(app),
		newRmCmd(app),
		newClearCmd(app),
		newSuggestCmd(app),
		newChatCmd(app),
		newInsightCmd(app),
		newServeCmd(app),
	)

	return root
}

// recordProfile applies one mutation to the behavioral profile and persists
// it. Failures are logged and swallowed so analytics never break a command.
func (app *App) recordProfile(text string, action profile.Action) {
	store := profile.Open(app.ProfilePath)
	store.Record(text, action)
	if err := store.Save(); err != nil {
		app.Log.WithError(err).Warn("saving profile")
	}
}

package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"justdo/internal/cli"
	"justdo/internal/config"
	"justdo/internal/feedback"
	"justdo/internal/llm"
	"justdo/internal/task"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.WarnLevel)

	database, err := task.OpenDB(cfg.DBPath())
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()
	store := task.NewStore(database)

	var observer llm.Observer = llm.NoopObserver{}
	if cfg.LogLLMCalls {
		observer = llm.NewLogObserver(os.Stderr)
	}
	engine := llm.NewEngine(cfg.APIKey, cfg.Model, cfg.BaseURL, observer)

	orchestrator := feedback.New(engine, cfg.ProfilePath())

	app := &cli.App{
		Store:        store,
		Orchestrator: orchestrator,
		ProfilePath:  cfg.ProfilePath(),
		AIEnabled:    cfg.AIEnabled(),
		Port:         cfg.Port,
		Log:          log,
	}

	return cli.NewRootCmd(app).Execute()
}

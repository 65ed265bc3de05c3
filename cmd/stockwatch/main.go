package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/stockwatch/internal/app"
	"github.com/nhle/stockwatch/internal/model"
	"github.com/nhle/stockwatch/internal/store"
)

func main() {
	configPath := flag.String("config", model.DefaultConfigPath(), "path to config file")
	flag.Parse()

	// The TUI owns the terminal, so background log output goes to a
	// file when requested and is discarded otherwise.
	if logPath := os.Getenv("STOCKWATCH_LOG"); logPath != "" {
		f, err := tea.LogToFile(logPath, "stockwatch")
		if err != nil {
			fmt.Fprintf(os.Stderr, "opening log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	cfg, err := model.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}

	cache, err := store.NewSQLiteStore(cfg.Cache.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "opening snapshot cache: %v\n", err)
		os.Exit(1)
	}
	defer cache.Close()

	m := app.New(cfg, cache)

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"lms-timetable/internal/apiclient"
	"lms-timetable/internal/config"
	"lms-timetable/internal/tui"
)

func main() {
	cfg, err := config.LoadClient()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	client := apiclient.New(cfg.APIURL, cfg.Token, apiclient.DefaultHTTPClient())
	p := tea.NewProgram(
		tui.New(client, tui.WithFetchTimeout(cfg.Timeout)),
		tea.WithAltScreen(),
	)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}

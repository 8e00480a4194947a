package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

// initCmd interactively generates a starter configuration file.
func initCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Interactively generate a configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			path := "tiermem.yaml"
			if len(args) == 1 {
				path = args[0]
			}

			if _, err := os.Stat(path); err == nil {
				overwrite, err := promptConfirm(fmt.Sprintf("%s already exists. Overwrite?", path), false)
				if err != nil {
					return err
				}
				if !overwrite {
					return nil
				}
			}

			mode, err := promptSelect("Retrieval mode", []selectOption[string]{
				{Label: "hybrid — tiered with confidence escalation (recommended)", Value: "hybrid"},
				{Label: "aggressive — tiered, no escalation", Value: "aggressive"},
				{Label: "full — always serve full content", Value: "full"},
			}, 0)
			if err != nil {
				return err
			}

			cacheEnabled, err := promptConfirm("Enable the query result cache?", true)
			if err != nil {
				return err
			}

			bind, err := promptString("Gateway bind address", "host:port for the HTTP API", "127.0.0.1:8080")
			if err != nil {
				return err
			}

			token, err := promptPassword("API bearer token", "Leave empty to disable the authenticated API")
			if err != nil {
				return err
			}

			content := renderConfig(mode, cacheEnabled, bind, token)
			if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}

			fmt.Printf("Wrote %s\n", path)
			fmt.Println("Start the service with: tiermem start -c", path)
			return nil
		},
	}
	return cmd
}

func renderConfig(mode string, cacheEnabled bool, bind, token string) string {
	authBlock := ""
	if token != "" {
		authBlock = fmt.Sprintf("    auth:\n      bearer_token: %q\n", token)
	}

	return fmt.Sprintf(`version: "1"

memory:
  mode: %s
  token_optimization: true
  auto_summarize: true
  min_confidence: 0.6
  layers:
    short_max_chars: 100
    overview_max_chars: 500
    full_preserve_original: true
  cache:
    enabled: %t
    ttl_seconds: 300
  monitoring:
    enabled: true
    log_level: info

modules:
  store.sqlite: {}
  monitor.cron: {}
  gateway.http:
    bind: %q
%s`, mode, cacheEnabled, bind, authBlock)
}

// runWithHelp wraps a huh field in a Form with help hints visible at the bottom.
func runWithHelp(fields ...huh.Field) error {
	return huh.NewForm(huh.NewGroup(fields...)).WithShowHelp(true).Run()
}

func promptString(title, description, defaultVal string) (string, error) {
	var value string
	inp := huh.NewInput().
		Title(title).
		Value(&value)

	if description != "" {
		inp = inp.Description(description)
	}
	if defaultVal != "" {
		inp = inp.Placeholder(defaultVal)
	}

	if err := runWithHelp(inp); err != nil {
		return "", err
	}
	if value == "" {
		return defaultVal, nil
	}
	return value, nil
}

func promptPassword(title, description string) (string, error) {
	var value string
	inp := huh.NewInput().
		Title(title).
		EchoMode(huh.EchoModePassword).
		Value(&value)

	if description != "" {
		inp = inp.Description(description)
	}

	if err := runWithHelp(inp); err != nil {
		return "", err
	}
	return value, nil
}

type selectOption[T any] struct {
	Label string
	Value T
}

func promptSelect[T comparable](title string, options []selectOption[T], defaultIdx int) (T, error) {
	var value T

	huhOpts := make([]huh.Option[T], len(options))
	for i, opt := range options {
		huhOpts[i] = huh.NewOption(opt.Label, opt.Value)
	}
	if defaultIdx >= 0 && defaultIdx < len(options) {
		huhOpts[defaultIdx] = huhOpts[defaultIdx].Selected(true)
	}

	sel := huh.NewSelect[T]().
		Title(title).
		Options(huhOpts...).
		Value(&value)

	if err := runWithHelp(sel); err != nil {
		var zero T
		return zero, err
	}
	return value, nil
}

func promptConfirm(title string, defaultYes bool) (bool, error) {
	value := defaultYes

	c := huh.NewConfirm().
		Title(title).
		Affirmative("Yes").
		Negative("No").
		Value(&value)

	if err := runWithHelp(c); err != nil {
		return false, err
	}
	return value, nil
}

// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// liteclaw-ctl is a command-line tool for controlling a running LiteClaw supervisor.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/wingedpig/liteclaw/pkg/client"
)

var (
	version    = "0.1.0"
	apiURL     = "http://127.0.0.1:8764"
	jsonOutput = false

	// API client instance
	apiClient *client.Client

	out io.Writer = os.Stdout
)

func main() {
	// Check for LITECLAW_API environment variable
	if env := os.Getenv("LITECLAW_API"); env != "" {
		apiURL = strings.TrimSuffix(env, "/")
	}

	// Parse global flags and filter them out
	var filteredArgs []string
	for _, arg := range os.Args[1:] {
		if arg == "-json" {
			jsonOutput = true
		} else {
			filteredArgs = append(filteredArgs, arg)
		}
	}

	apiClient = client.New(apiURL)

	if len(filteredArgs) < 1 {
		printUsage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, filteredArgs[0], filteredArgs[1:])
	stop()
	if err == errUnknownCommand {
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", filteredArgs[0])
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var errUnknownCommand = errors.New("unknown command")

func run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "status":
		return cmdStatus(ctx)
	case "config":
		return cmdConfig(ctx)
	case "folders":
		return cmdFolders(ctx, args)
	case "shell":
		return cmdShell(ctx, args)
	case "retry":
		return cmdRetry(ctx)
	case "logs":
		return cmdLogs(ctx, args)
	case "events":
		return cmdEvents(ctx, args)
	case "version", "-v", "--version":
		fmt.Fprintf(out, "liteclaw-ctl %s\n", version)
		return nil
	case "help", "-h", "--help":
		printUsage()
		return nil
	default:
		return errUnknownCommand
	}
}

func printUsage() {
	fmt.Fprintln(out, `liteclaw-ctl - Control a running LiteClaw supervisor

Usage:
  liteclaw-ctl [-json] <command> [arguments]

Global Flags:
  -json          Output in JSON format

Environment:
  LITECLAW_API   Base URL of the control API (default: http://127.0.0.1:8764)

Commands:
  status                   Show backend phase, URL and last error
  config                   Show the local config read by the backend
  folders add <path>       Allow the backend to access a folder
  folders remove <path>    Revoke access to a folder
  shell on|off             Enable or disable backend shell access
  retry                    Restart the backend with a new port and token

  logs [options]           Show the tail of the backend log
    -n N                   Number of lines (default: 100)
    -grep <pattern>        Only lines matching the regex

  events [options]         Show recent supervisor events
    -n N                   Number of events (default: 50)
    -type <type>           Filter by event type (can repeat)
    -since <duration>      Only events newer than this (e.g. 10m)
    -f [pattern]           Stream events as they happen (default pattern: *)

  version                  Show version
  help                     Show this help`)
}

// printJSON outputs any value as formatted JSON
func printJSON(v interface{}) {
	data, _ := json.MarshalIndent(v, "", "  ")
	fmt.Fprintln(out, string(data))
}

func cmdStatus(ctx context.Context) error {
	info, err := apiClient.Connection.Get(ctx)
	if err != nil {
		return err
	}

	if jsonOutput {
		printJSON(info)
		return nil
	}

	printConnection(info)
	return nil
}

func printConnection(info *client.ConnectionInfo) {
	fmt.Fprintf(out, "%-10s %s\n", "Phase:", info.Phase)
	fmt.Fprintf(out, "%-10s %t\n", "Ready:", info.BackendReady)
	fmt.Fprintf(out, "%-10s %s\n", "URL:", info.BaseURL)
	pid := "-"
	if info.PID > 0 {
		pid = strconv.Itoa(info.PID)
	}
	fmt.Fprintf(out, "%-10s %s\n", "PID:", pid)
	if !info.StartedAt.IsZero() {
		fmt.Fprintf(out, "%-10s %s\n", "Started:", info.StartedAt.Local().Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintf(out, "%-10s %s\n", "Log:", info.LogPath)
	if info.LastError != "" {
		fmt.Fprintf(out, "%-10s %s\n", "Error:", info.LastError)
	}
}

func cmdConfig(ctx context.Context) error {
	cfg, err := apiClient.Config.Get(ctx)
	if err != nil {
		return err
	}
	return printConfig(cfg)
}

func printConfig(cfg *client.LocalConfig) error {
	if jsonOutput {
		printJSON(cfg)
		return nil
	}

	shell := "off"
	if cfg.Shell.Enabled {
		shell = "on"
	}
	fmt.Fprintf(out, "Shell:   %s\n", shell)
	fmt.Fprintf(out, "History: %t\n", cfg.HistoryEnabled)
	fmt.Fprintln(out, "Allowed folders:")
	if len(cfg.AllowedFolders) == 0 {
		fmt.Fprintln(out, "  (none)")
	}
	for _, folder := range cfg.AllowedFolders {
		fmt.Fprintf(out, "  %s\n", folder)
	}
	return nil
}

func cmdFolders(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: liteclaw-ctl folders add|remove <path>")
	}

	// The daemon resolves paths against its own working directory.
	path, err := filepath.Abs(args[1])
	if err != nil {
		return fmt.Errorf("invalid path %q: %w", args[1], err)
	}

	var cfg *client.LocalConfig
	switch args[0] {
	case "add":
		cfg, err = apiClient.Config.AddFolder(ctx, path)
	case "remove", "rm":
		cfg, err = apiClient.Config.RemoveFolder(ctx, path)
	default:
		return fmt.Errorf("unknown folders subcommand: %s", args[0])
	}
	if err != nil {
		return err
	}
	return printConfig(cfg)
}

func cmdShell(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: liteclaw-ctl shell on|off")
	}

	var enabled bool
	switch strings.ToLower(args[0]) {
	case "on", "true", "enable":
		enabled = true
	case "off", "false", "disable":
		enabled = false
	default:
		return fmt.Errorf("expected on or off, got %q", args[0])
	}

	cfg, err := apiClient.Config.SetShell(ctx, enabled)
	if err != nil {
		return err
	}
	return printConfig(cfg)
}

func cmdRetry(ctx context.Context) error {
	info, err := apiClient.Backend.Retry(ctx)
	if err != nil {
		return err
	}

	if jsonOutput {
		printJSON(info)
		return nil
	}

	fmt.Fprintln(out, "Backend restarted")
	printConnection(info)
	return nil
}

func cmdLogs(ctx context.Context, args []string) error {
	lines := 100
	var pattern *regexp.Regexp

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-n":
			if i+1 >= len(args) {
				return fmt.Errorf("-n requires a value")
			}
			n, err := strconv.Atoi(args[i+1])
			if err != nil || n < 1 {
				return fmt.Errorf("invalid line count: %s", args[i+1])
			}
			lines = n
			i++
		case "-grep":
			if i+1 >= len(args) {
				return fmt.Errorf("-grep requires a pattern")
			}
			re, err := regexp.Compile(args[i+1])
			if err != nil {
				return fmt.Errorf("invalid grep pattern: %w", err)
			}
			pattern = re
			i++
		default:
			return fmt.Errorf("unknown logs option: %s", args[i])
		}
	}

	logs, err := apiClient.Backend.Logs(ctx, lines)
	if err != nil {
		return err
	}

	content := logs.Content
	if pattern != nil {
		var kept []string
		for _, line := range strings.Split(content, "\n") {
			if pattern.MatchString(line) {
				kept = append(kept, line)
			}
		}
		content = strings.Join(kept, "\n")
		logs = &client.Logs{Lines: logs.Lines, Content: content}
	}

	if jsonOutput {
		printJSON(logs)
		return nil
	}

	if content != "" {
		fmt.Fprintln(out, content)
	}
	return nil
}

func cmdEvents(ctx context.Context, args []string) error {
	opts := &client.ListOptions{Limit: 50}
	follow := false
	pattern := "*"

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-n":
			if i+1 < len(args) {
				if n, err := strconv.Atoi(args[i+1]); err == nil && n > 0 {
					opts.Limit = n
				}
				i++
			}
		case "-type":
			if i+1 >= len(args) {
				return fmt.Errorf("-type requires a value")
			}
			opts.Types = append(opts.Types, args[i+1])
			i++
		case "-since":
			if i+1 >= len(args) {
				return fmt.Errorf("-since requires a duration")
			}
			d, err := time.ParseDuration(args[i+1])
			if err != nil {
				return fmt.Errorf("invalid duration: %s", args[i+1])
			}
			opts.Since = time.Now().Add(-d)
			i++
		case "-f":
			follow = true
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				pattern = args[i+1]
				i++
			}
		default:
			return fmt.Errorf("unknown events option: %s", args[i])
		}
	}

	if follow {
		err := apiClient.Events.Stream(ctx, pattern, func(evt client.Event) error {
			printEvent(evt)
			return nil
		})
		if ctx.Err() != nil {
			return nil
		}
		return err
	}

	events, err := apiClient.Events.List(ctx, opts)
	if err != nil {
		return err
	}

	if jsonOutput {
		printJSON(events)
		return nil
	}

	fmt.Fprintf(out, "%-20s %-22s %s\n", "TIME", "TYPE", "DETAILS")
	fmt.Fprintln(out, strings.Repeat("-", 80))
	for _, evt := range events {
		printEvent(evt)
	}
	return nil
}

func printEvent(evt client.Event) {
	if jsonOutput {
		data, _ := json.Marshal(evt)
		fmt.Fprintln(out, string(data))
		return
	}
	fmt.Fprintf(out, "%-20s %-22s %s\n",
		evt.Timestamp.Local().Format("2006-01-02 15:04:05"),
		evt.Type,
		formatPayload(evt.Payload),
	)
}

// formatPayload renders a payload as sorted key=value pairs.
func formatPayload(payload map[string]interface{}) string {
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, payload[k]))
	}
	return strings.Join(parts, " ")
}

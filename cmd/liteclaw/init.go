// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/wingedpig/liteclaw/internal/config"
)

const initUsage = `Usage: liteclaw init [options]

Create a commented liteclaw.hjson settings file in the current directory.

Options:
  -y           Accept all defaults without prompting
  -h, -help    Show this help message

The command asks about:
  - Data directory (config.json, logs, pid file)
  - Control API port
  - Backend command
  - Whether to restart the backend when its files change`

// initAnswers are the values written into a new settings file.
type initAnswers struct {
	DataDir string
	Port    int
	Command []string
	Watch   bool
}

func defaultAnswers() initAnswers {
	return initAnswers{
		DataDir: config.Default().DataDir,
		Port:    config.DefaultServerPort,
		Command: config.DefaultCommand,
	}
}

// runInit handles the "liteclaw init" command
func runInit(args []string) error {
	initFlags := flag.NewFlagSet("init", flag.ExitOnError)
	showHelp := initFlags.Bool("help", false, "Show help for init command")
	initFlags.BoolVar(showHelp, "h", false, "Show help for init command")
	acceptDefaults := initFlags.Bool("y", false, "Accept all defaults")
	initFlags.Parse(args)

	if *showHelp {
		fmt.Println(initUsage)
		return nil
	}

	configFile := config.FileNames[0]
	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("%s already exists; remove it first or use a different directory", configFile)
	}

	answers := defaultAnswers()
	if !*acceptDefaults {
		fmt.Println("LiteClaw Setup")
		fmt.Println("==============")
		fmt.Println("Press Enter to accept defaults shown in [brackets].")
		fmt.Println()
		answers = ask(bufio.NewReader(os.Stdin), os.Stdout, answers)
	}

	if err := os.WriteFile(configFile, []byte(generateConfig(answers)), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Println()
	fmt.Printf("Created %s\n", configFile)
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  1. Review and edit " + configFile + " as needed")
	fmt.Println("  2. Run: liteclaw")
	fmt.Println("  3. Check: liteclaw-ctl status")
	return nil
}

func ask(reader *bufio.Reader, out io.Writer, answers initAnswers) initAnswers {
	answers.DataDir = prompt(reader, out, "Data directory", answers.DataDir)

	portStr := prompt(reader, out, "Control API port", strconv.Itoa(answers.Port))
	if port, err := strconv.Atoi(portStr); err == nil {
		answers.Port = port
	}

	command := prompt(reader, out, "Backend command", strings.Join(answers.Command, " "))
	if fields := strings.Fields(command); len(fields) > 0 {
		answers.Command = fields
	}

	watch := prompt(reader, out, "Restart the backend when its files change? (y/n)", "n")
	answers.Watch = strings.ToLower(watch) == "y"
	return answers
}

func prompt(reader *bufio.Reader, out io.Writer, question, defaultVal string) string {
	if defaultVal != "" {
		fmt.Fprintf(out, "%s [%s]: ", question, defaultVal)
	} else {
		fmt.Fprintf(out, "%s: ", question)
	}
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return defaultVal
	}
	return input
}

// escapeHJSONValue escapes a string for safe inclusion in an HJSON double-quoted value.
func escapeHJSONValue(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return s
}

func generateConfig(a initAnswers) string {
	quoted := make([]string, len(a.Command))
	for i, arg := range a.Command {
		quoted[i] = `"` + escapeHJSONValue(arg) + `"`
	}

	var sb strings.Builder
	sb.WriteString(`{
  // LiteClaw supervisor settings (HJSON: JSON with comments).
  //
  // Backend command, work_dir and env values may use:
  //   {{.DataDir}}    - the data directory below
  //   {{.ConfigDir}}  - the directory holding this file
  //   {{.Home}}       - the user's home directory

  // Holds config.json (read by the backend), logs/backend.log and backend.pid.
  data_dir: "`)
	sb.WriteString(escapeHJSONValue(a.DataDir))
	sb.WriteString(`"

  // Control API used by the desktop UI and liteclaw-ctl. Loopback only.
  server: {
    host: "127.0.0.1"
    port: `)
	sb.WriteString(strconv.Itoa(a.Port))
	sb.WriteString(`
  }

  backend: {
    // Launched with LITECLAW_AUTH_TOKEN, LITECLAW_DATA_DIR and LITECLAW_PORT set.
    command: [`)
	sb.WriteString(strings.Join(quoted, ", "))
	sb.WriteString(`]

    // Working directory for the backend (default: inherited).
    // work_dir: "{{.ConfigDir}}"

    // Extra environment variables.
    // env: {
    //   PYTHONUNBUFFERED: "1"
    // }

    // How long to wait for GET /v1/health, and how often to poll.
    health_timeout: "5s"
    health_interval: "250ms"

    // Restart the backend when its executable or script changes.
    watch: `)
	sb.WriteString(strconv.FormatBool(a.Watch))
	sb.WriteString(`
    watch_debounce: "500ms"
  }

  // Ports scanned for the backend, starting at first.
  ports: {
    first: 8765
    count: 100
  }

  events: {
    history: {
      max_events: 1000
      max_age: "1h"
    }
  }
}
`)
	return sb.String()
}

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
)

const shellPrompt = "novaheap> "

func newShellCmd(a *app) *cobra.Command {
	var histPath string
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Run commands interactively against one open database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.database()
			if err != nil {
				return err
			}

			rl, err := readline.NewEx(&readline.Config{
				Prompt:          shellPrompt,
				HistoryFile:     histPath,
				InterruptPrompt: "^C",
				EOFPrompt:       "exit",
				AutoComplete:    newCompleter(a),
			})
			if err != nil {
				return fmt.Errorf("readline: %w", err)
			}
			defer func() { _ = rl.Close() }()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "novaheap %s, data dir %s\n", version, db.DataDir())
			fmt.Fprintln(out, `type \help for help`)

			for {
				line, err := rl.Readline()
				if errors.Is(err, readline.ErrInterrupt) {
					continue
				}
				if errors.Is(err, io.EOF) {
					return nil
				}
				if err != nil {
					return fmt.Errorf("readline: %w", err)
				}
				if done := runShellLine(a, out, line); done {
					return nil
				}
			}
		},
	}
	cmd.Flags().StringVar(&histPath, "history", defaultHistoryPath(), "history file path")
	return cmd
}

// runShellLine executes one shell line and reports whether the shell should exit.
func runShellLine(a *app, out io.Writer, line string) bool {
	line = strings.TrimSpace(line)
	switch line {
	case "":
		return false
	case `\q`, "quit", "exit":
		return true
	case `\help`, "help":
		printShellHelp(a, out)
		return false
	}

	args, err := splitArgs(line)
	if err != nil {
		fmt.Fprintln(out, "error:", err)
		return false
	}

	root := newShellRoot(a)
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(out)
	if err := root.Execute(); err != nil {
		a.log.Error("command failed", "command", args[0], "error", err)
		fmt.Fprintln(out, "error:", err)
	}
	return false
}

// newShellRoot is a fresh command tree per line so flag values do not leak
// between commands.
func newShellRoot(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "novaheap",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(dataCommands(a)...)
	root.AddCommand(newVersionCmd())
	return root
}

func printShellHelp(a *app, out io.Writer) {
	fmt.Fprintln(out, `meta commands:
  \q | quit | exit       quit
  \help                  show help

commands (flags as on the command line):`)
	for _, c := range newShellRoot(a).Commands() {
		if c.Hidden || c.Name() == "help" || c.Name() == "completion" {
			continue
		}
		fmt.Fprintf(out, "  %-22s %s\n", c.Name(), c.Short)
	}
}

func newCompleter(a *app) *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface
	for _, c := range newShellRoot(a).Commands() {
		items = append(items, readline.PcItem(c.Name()))
	}
	items = append(items, readline.PcItem(`\help`), readline.PcItem(`\q`))
	return readline.NewPrefixCompleter(items...)
}

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".novaheap_history"
	}
	return filepath.Join(home, ".novaheap_history")
}

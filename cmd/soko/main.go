// File: cmd/soko/main.go
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/xkilldash9x/soko-cli/cmd"
	"github.com/xkilldash9x/soko-cli/internal/observability"
)

const panicLogFile = "soko-panic.log"

const banner = `
   ____   ___  _  _____
  / ___| / _ \| |/ / _ \     SOKO OSINT
  \___ \| | | | ' / | | |    username investigations
   ___) | |_| | . \ |_| |
  |____/ \___/|_|\_\___/     type "help" for commands

`

// Function variables so tests can replace process-level effects.
var (
	osWriteFile = os.WriteFile
	osExit      = os.Exit
	// newRootCommand builds the command tree for lines the shell does not handle.
	newRootCommand = cmd.NewRootCommand
)

// main is the entry point of the application.
func main() {
	defer handlePanic()

	// Cancel in-flight requests on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// With arguments, run one command and exit.
	if len(os.Args) > 1 {
		if err := cmd.Execute(ctx); err != nil {
			// cmd.Execute already reported the error.
			if errors.Is(err, context.Canceled) {
				osExit(0)
			} else {
				osExit(1)
			}
		}
		return
	}

	if err := runInteractive(ctx, os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		osExit(1)
	}
}

// runInteractive is the shell loop. The config file may be given through
// SOKO_CONFIG since there are no flags in this mode.
func runInteractive(ctx context.Context, in io.Reader, out, errOut io.Writer) error {
	cfg, err := cmd.LoadConfig(os.Getenv("SOKO_CONFIG"))
	if err != nil {
		return err
	}
	observability.InitializeLogger(cfg.Logger)
	defer observability.Sync()
	logger := observability.GetLogger()

	scanner := bufio.NewScanner(in)
	// The delete prompt reads its answer from the same input as the shell.
	confirm := func(prompt string) bool {
		fmt.Fprintf(out, "%s [y/N]: ", prompt)
		if !scanner.Scan() {
			return false
		}
		answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
		return answer == "y" || answer == "yes"
	}

	session, err := cmd.NewSession(cfg, logger, out, confirm)
	if err != nil {
		return err
	}
	defer session.Close()

	fmt.Fprint(out, banner)
	if err := session.Start(ctx); err != nil {
		return err
	}

	for {
		fmt.Fprint(out, session.Prompt())
		if !scanner.Scan() {
			break // EOF (Ctrl+D)
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		handled, err := session.Handle(ctx, line)
		if err != nil {
			logger.Debug("Shell command failed", zap.String("line", line), zap.Error(err))
			fmt.Fprintln(errOut, "Error:", err)
		}
		if !handled {
			executeInteractiveCommand(ctx, line, out, errOut)
		}
		if ctx.Err() != nil {
			break
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading from stdin: %w", err)
	}
	fmt.Fprintln(out, "Exiting soko.")
	return nil
}

// executeInteractiveCommand runs a line as a regular soko command.
func executeInteractiveCommand(ctx context.Context, line string, out, errOut io.Writer) {
	// A new command tree per line keeps flags from leaking into the next one.
	rootCmd := newRootCommand()
	rootCmd.SetArgs(strings.Fields(line))
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	// A panicking command must not take the shell down with it.
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(errOut, "Error: command panicked: %v\n", r)
		}
	}()
	if err := rootCmd.ExecuteContext(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(errOut, "Error:", err)
	}
}

// handlePanic records a crash of the one-shot mode before exiting.
func handlePanic() {
	r := recover()
	if r == nil {
		return
	}
	observability.Sync()

	panicMessage := fmt.Sprintf("panic: %v\n\n%s", r, debug.Stack())
	if err := osWriteFile(panicLogFile, []byte(panicMessage), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL: Failed to write panic log: %v\n", err)
		fmt.Fprintf(os.Stderr, "Panic details:\n%s\n", panicMessage)
		osExit(1)
		return
	}
	fmt.Fprintf(os.Stderr, "soko crashed. Details logged to %s\n", panicLogFile)
	osExit(1)
}

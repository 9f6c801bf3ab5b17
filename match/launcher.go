/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package match

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mikeb26/cutematch/uci"
)

const (
	ExitOK      = 0
	ExitFailure = 1 // tool status could not be determined
	// ExitPreflight is returned when settings or engines are rejected and
	// the tool is never started.
	ExitPreflight = 2
	// ExitSpawn follows the shell convention for "command not found".
	ExitSpawn = 127
)

// ErrGroupInterrupted is the cancellation cause to use when the interrupt
// came from the terminal. The terminal delivers it to the whole foreground
// process group, so the tool already has it and is not signalled again.
var ErrGroupInterrupted = errors.New("interrupted from terminal")

// SpawnError reports that the tournament manager could not be started.
type SpawnError struct {
	Tool string
	Err  error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to start %v: %v", e.Tool, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// PreflightError reports an engine that could not be resolved or did not
// complete the UCI handshake.
type PreflightError struct {
	Engine string
	Err    error
}

func (e *PreflightError) Error() string {
	return fmt.Sprintf("engine %v failed preflight: %v", e.Engine, e.Err)
}

func (e *PreflightError) Unwrap() error { return e.Err }

// ProbeFunc performs the UCI handshake with each engine command.
type ProbeFunc func(ctx context.Context, cmds ...string) ([]uci.EngineID, error)

// Launcher runs the tournament manager as a child process. Nil streams are
// connected to the null device; NewLauncher wires the process's own.
type Launcher struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// WaitDelay bounds how long Run waits for the child after ctx is
	// cancelled and the child has been interrupted.
	WaitDelay time.Duration

	Probe ProbeFunc
}

func NewLauncher() *Launcher {
	return &Launcher{
		Stdin:     os.Stdin,
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
		WaitDelay: 10 * time.Second,
		Probe:     uci.ProbeAll,
	}
}

// Run starts the tool with Args(cfg), waits for it, and returns its exit
// status. A non-nil error is returned only when the tool could not be run
// at all (*SpawnError, *PreflightError); a tool that runs and fails yields
// its exit status and a nil error.
func (l *Launcher) Run(ctx context.Context, cfg TournamentConfig) (int, error) {
	logger := log.With().Str("component", "launcher").Str("tool", cfg.Tool).Logger()

	if cfg.Preflight {
		ids, err := l.preflight(ctx, cfg)
		if err != nil {
			return ExitPreflight, err
		}
		for _, id := range ids {
			logger.Debug().Str("engine", id.Cmd).Str("id", id.String()).Msg("preflight ok")
		}
	}

	args := Args(cfg)
	cmd := exec.CommandContext(ctx, cfg.Tool, args...)
	cmd.Stdin = l.Stdin
	cmd.Stdout = l.Stdout
	cmd.Stderr = l.Stderr
	// give the tool the chance to finish writing the PGN
	cmd.Cancel = func() error {
		if errors.Is(context.Cause(ctx), ErrGroupInterrupted) {
			return nil
		}
		return cmd.Process.Signal(os.Interrupt)
	}
	cmd.WaitDelay = l.WaitDelay

	logger.Debug().Strs("args", args).Msg("starting")
	if err := cmd.Start(); err != nil {
		return ExitSpawn, &SpawnError{Tool: cfg.Tool, Err: err}
	}

	waitErr := cmd.Wait()
	code, err := exitStatus(cmd.ProcessState, waitErr)
	logger.Debug().Int("status", code).Msg("tool exited")

	return code, err
}

// exitStatus prefers the child's own status over wait errors: a tool that
// exits cleanly after being interrupted still reports 0.
func exitStatus(state *os.ProcessState, err error) (int, error) {
	if state != nil {
		if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			return 128 + int(ws.Signal()), nil
		}
		if code := state.ExitCode(); code >= 0 {
			return code, nil
		}
	}
	if err == nil {
		return ExitFailure, nil
	}

	return ExitFailure, fmt.Errorf("match.run: wait failed: %w", err)
}

func (l *Launcher) preflight(ctx context.Context, cfg TournamentConfig) ([]uci.EngineID, error) {
	var cmds []string
	seen := make(map[string]bool)
	for _, e := range cfg.Engines() {
		if seen[e.Cmd] {
			continue
		}
		seen[e.Cmd] = true
		if _, err := exec.LookPath(e.Cmd); err != nil {
			return nil, &PreflightError{Engine: e.Cmd, Err: err}
		}
		cmds = append(cmds, e.Cmd)
	}

	probe := l.Probe
	if probe == nil {
		probe = uci.ProbeAll
	}
	ids, err := probe(ctx, cmds...)
	if err != nil {
		engine := strings.Join(cmds, ", ")
		var probeErr *uci.ProbeError
		if errors.As(err, &probeErr) {
			engine = probeErr.Cmd
		}
		return ids, &PreflightError{Engine: engine, Err: err}
	}

	return ids, nil
}

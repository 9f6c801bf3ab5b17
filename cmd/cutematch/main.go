/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"context"
	_ "embed"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog/log"

	"github.com/mikeb26/cutematch/internal"
	"github.com/mikeb26/cutematch/match"
	"github.com/mikeb26/cutematch/pgn"
	"github.com/mikeb26/cutematch/uci"
)

//go:embed help.txt
var helpText string

// cmdHandler runs one subcommand and returns the process exit status.
type cmdHandler func(ctx context.Context, args []string) int

// commands maps command names to their respective handler functions.
var commands = map[string]cmdHandler{
	"help":      handleHelp,
	"run":       handleRun,
	"args":      handleArgs,
	"preflight": handlePreflight,
	"summary":   handleSummary,
}

func main() {
	internal.ConfigureLogging(internal.LogProfileRuntime)

	ctx, cancel := context.WithCancelCause(context.Background())
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		cancel(interruptCause(sig, isatty.IsTerminal(os.Stdin.Fd())))
	}()

	code := dispatch(ctx, os.Args[1:])
	signal.Stop(sigs)
	cancel(nil)
	os.Exit(code)
}

// interruptCause records how the launcher was stopped. Ctrl-C on a terminal
// already reached the child through the process group.
func interruptCause(sig os.Signal, terminal bool) error {
	if sig == os.Interrupt && terminal {
		return match.ErrGroupInterrupted
	}

	return fmt.Errorf("received %v", sig)
}

func dispatch(ctx context.Context, args []string) int {
	cmd := "run"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd = args[0]
		args = args[1:]
	}
	handler, ok := commands[cmd]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		usage(os.Stderr)
		return match.ExitPreflight
	}

	return handler(ctx, args)
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "%v", helpText)
}

func handleHelp(ctx context.Context, args []string) int {
	usage(os.Stdout)
	return 0
}

func parseMatchFlags(name string, args []string) (settings, int, bool) {
	f := newMatchFlags(name)
	if err := f.fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return settings{}, 0, false
		}
		return settings{}, match.ExitPreflight, false
	}
	s, err := f.settings(os.Getenv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v: %v\n", name, err)
		return s, match.ExitPreflight, false
	}

	return s, 0, true
}

func handleRun(ctx context.Context, args []string) int {
	s, code, ok := parseMatchFlags("run", args)
	if !ok {
		return code
	}

	openings, err := resolveBook(ctx, s)
	if err != nil {
		fmt.Fprintf(os.Stderr, "run: %v\n", err)
		return match.ExitPreflight
	}
	s.Match.Openings = openings

	launcher := match.NewLauncher()
	launcher.Probe = func(ctx context.Context, cmds ...string) ([]uci.EngineID, error) {
		pctx, cancel := context.WithTimeout(ctx, s.PreflightTimeout)
		defer cancel()
		return uci.ProbeAll(pctx, cmds...)
	}

	status, err := launcher.Run(ctx, s.Match)
	if err != nil {
		fmt.Fprintf(os.Stderr, "run: %v\n", err)
		return status
	}

	afterMatch(context.WithoutCancel(ctx), s, status)

	return status
}

func handleArgs(ctx context.Context, args []string) int {
	s, code, ok := parseMatchFlags("args", args)
	if !ok {
		return code
	}

	fmt.Println(s.Match.Tool)
	for _, arg := range match.Args(s.Match) {
		fmt.Println(arg)
	}

	return 0
}

func handlePreflight(ctx context.Context, args []string) int {
	s, code, ok := parseMatchFlags("preflight", args)
	if !ok {
		return code
	}

	engines := s.Match.Engines()
	pctx, cancel := context.WithTimeout(ctx, s.PreflightTimeout)
	defer cancel()
	ids, err := uci.ProbeAll(pctx, engines[0].Cmd, engines[1].Cmd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "preflight: %v\n", err)
		return match.ExitPreflight
	}
	for i, id := range ids {
		fmt.Printf("engine%d: %s (%s, %d options)\n", i+1, id, id.Cmd,
			len(id.Options))
	}

	return 0
}

func handleSummary(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("summary", flag.ContinueOnError)
	path := fs.String("pgn", match.DefaultConfig().PGNOut, "PGN file to summarize")
	player := fs.String("player", "", "Player whose perspective to report (default: first White)")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return match.ExitPreflight
	}

	sum, err := summarizeFile(*path, *player)
	if err != nil {
		log.Error().Err(err).Str("pgn", *path).Msg("summary failed")
		return match.ExitFailure
	}
	fmt.Print(pgn.BuildSummaryOutput(sum))

	return 0
}

func summarizeFile(path string, player string) (pgn.Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return pgn.Summary{}, err
	}
	defer f.Close()

	games, err := pgn.ReadAll(f)
	if err != nil {
		return pgn.Summary{}, err
	}

	return pgn.Summarize(games, player), nil
}

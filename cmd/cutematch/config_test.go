/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/mikeb26/cutematch/internal"
	"github.com/mikeb26/cutematch/match"
)

func noEnv(string) string { return "" }

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestSettingsDefaults(t *testing.T) {
	f := newMatchFlags("run")
	if err := f.fs.Parse(nil); err != nil {
		t.Fatalf("parse: %v", err)
	}
	s, err := f.settings(noEnv)
	if err != nil {
		t.Fatalf("settings: %v", err)
	}
	want := match.DefaultConfig()
	if s.Match != want {
		t.Errorf("defaults differ:\n got %+v\nwant %+v", s.Match, want)
	}
	if s.Match.Engine1.Cmd != internal.DefaultEngineCmd || s.Match.Rounds != 1000 {
		t.Errorf("unexpected defaults %+v", s.Match)
	}
}

func TestLoadExampleConfig(t *testing.T) {
	s := defaultSettings()
	if err := loadFile("ex.config.toml", &s); err != nil {
		t.Fatalf("load config: %v", err)
	}
	cfg := s.Match
	if cfg.Rounds != 500 || cfg.Concurrency != 8 || cfg.TimePerGame != 0.25 ||
		cfg.TimeMarginMs != 100 {
		t.Errorf("unexpected numbers %+v", cfg)
	}
	if cfg.Engine1 != (match.Engine{Cmd: "../target/release/kittycat", Name: "kittycat"}) {
		t.Errorf("engine1 = %+v", cfg.Engine1)
	}
	if cfg.Engine2 != (match.Engine{Cmd: "../baseline/kittycat", Name: "kittycat-base"}) {
		t.Errorf("engine2 = %+v", cfg.Engine2)
	}
	if cfg.Openings.Order != match.BookOrderSequential {
		t.Errorf("order = %q", cfg.Openings.Order)
	}
	// format was not set in the file, so the default survives
	if cfg.Openings.Format != match.BookFormatEPD {
		t.Errorf("format = %q", cfg.Openings.Format)
	}
	if !cfg.Preflight || s.PreflightTimeout != 3*time.Second {
		t.Errorf("preflight = %v, %v", cfg.Preflight, s.PreflightTimeout)
	}
	if s.Archive != (archiveSettings{Bucket: "kittycat-matches", Prefix: "nightly", Gzip: true}) {
		t.Errorf("archive = %+v", s.Archive)
	}
	if s.Title != "kittycat nightly" || !strings.Contains(s.DiscordWebhook, "/webhooks/123/") {
		t.Errorf("discord = %q, %q", s.Title, s.DiscordWebhook)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"bad duration", `preflight_timeout = "soon"`},
		{"unknown key", `roundz = 5`},
		{"bad toml", `rounds = `},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := defaultSettings()
			if err := loadFile(writeConfig(t, c.content), &s); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestSettingsPrecedence(t *testing.T) {
	path := writeConfig(t, `
rounds = 10
concurrency = 3
pgn_out = "file.pgn"

[engine1]
cmd = "/file/engine"
`)
	env := envMap(map[string]string{
		EnvRounds:    "20",
		EnvEngineCmd: "/env/engine",
	})

	f := newMatchFlags("run")
	if err := f.fs.Parse([]string{"-config", path, "-rounds", "30"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	s, err := f.settings(env)
	if err != nil {
		t.Fatalf("settings: %v", err)
	}
	if s.Match.Rounds != 30 {
		t.Errorf("flag should win: rounds = %d", s.Match.Rounds)
	}
	if s.Match.Engine1.Cmd != "/env/engine" {
		t.Errorf("env should beat file: engine1 = %q", s.Match.Engine1.Cmd)
	}
	if s.Match.Concurrency != 3 || s.Match.PGNOut != "file.pgn" {
		t.Errorf("file values lost: %+v", s.Match)
	}
	if got := s.Match.Engines()[1].Cmd; got != "/env/engine" {
		t.Errorf("engine2 should follow engine1, got %q", got)
	}
}

func TestApplyEnvBadNumber(t *testing.T) {
	s := defaultSettings()
	err := applyEnv(envMap(map[string]string{EnvConcurrency: "many"}), &s)
	if err == nil || !strings.Contains(err.Error(), EnvConcurrency) {
		t.Fatalf("expected %v parse error, got %v", EnvConcurrency, err)
	}
}

func TestSettingsStrict(t *testing.T) {
	f := newMatchFlags("run")
	if err := f.fs.Parse([]string{"-strict", "-concurrency", "0"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := f.settings(noEnv); err == nil {
		t.Fatalf("expected strict validation error")
	}

	// without -strict values pass through untouched
	f = newMatchFlags("run")
	if err := f.fs.Parse([]string{"-concurrency", "0"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	s, err := f.settings(noEnv)
	if err != nil || s.Match.Concurrency != 0 {
		t.Fatalf("settings = %+v, %v", s.Match, err)
	}
}

func TestMatchTitle(t *testing.T) {
	s := defaultSettings()
	if got := matchTitle(s); got != "kittycat vs kittycat" {
		t.Errorf("matchTitle = %q", got)
	}
	s.Match.Engine2 = match.Engine{Cmd: "/x/dev", Name: "dev"}
	if got := matchTitle(s); got != "kittycat vs dev" {
		t.Errorf("matchTitle = %q", got)
	}
	s.Title = "nightly"
	if got := matchTitle(s); got != "nightly" {
		t.Errorf("matchTitle = %q", got)
	}
}

func TestInterruptCause(t *testing.T) {
	cases := []struct {
		sig      os.Signal
		terminal bool
		group    bool
	}{
		{os.Interrupt, true, true},
		{os.Interrupt, false, false},
		{syscall.SIGTERM, true, false},
		{syscall.SIGTERM, false, false},
	}
	for _, c := range cases {
		err := interruptCause(c.sig, c.terminal)
		if err == nil {
			t.Errorf("interruptCause(%v, %v) = nil", c.sig, c.terminal)
			continue
		}
		if got := errors.Is(err, match.ErrGroupInterrupted); got != c.group {
			t.Errorf("interruptCause(%v, %v) = %v; group interrupt %v", c.sig,
				c.terminal, err, c.group)
		}
	}
}

func TestDispatchUnknownCommand(t *testing.T) {
	if code := dispatch(context.Background(), []string{"bogus"}); code == 0 {
		t.Errorf("expected non-zero status for unknown command")
	}
}

func TestResolveBookLocalPassThrough(t *testing.T) {
	s := defaultSettings()
	o, err := resolveBook(context.Background(), s)
	if err != nil {
		t.Fatalf("resolveBook: %v", err)
	}
	if o != s.Match.Openings {
		t.Errorf("local book should pass through: %+v", o)
	}
}

func TestSummarizeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "games.pgn")
	content := "[White \"a\"]\n[Black \"b\"]\n[Result \"1-0\"]\n\n1. e4 1-0\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write pgn: %v", err)
	}
	sum, err := summarizeFile(path, "b")
	if err != nil {
		t.Fatalf("summarizeFile: %v", err)
	}
	if sum.Player1 != "b" || sum.Player2 != "a" || sum.Record.Losses != 1 {
		t.Errorf("unexpected summary %+v", sum)
	}
	if _, err := summarizeFile(filepath.Join(t.TempDir(), "none.pgn"), ""); err == nil {
		t.Errorf("expected error for missing file")
	}
}

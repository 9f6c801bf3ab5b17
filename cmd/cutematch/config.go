/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"flag"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/mikeb26/cutematch/match"
)

const (
	EnvEngineCmd   = "ENGINE_CMD"
	EnvEngine2Cmd  = "ENGINE2_CMD"
	EnvRounds      = "ROUNDS"
	EnvConcurrency = "CONCURRENCY"
	EnvTool        = "CUTECHESS"
	EnvPGNOut      = "PGN_OUT"
)

type archiveSettings struct {
	Bucket string
	Prefix string
	Gzip   bool
}

type settings struct {
	Match match.TournamentConfig

	Strict           bool
	PreflightTimeout time.Duration

	BookCacheDir    string
	BookCacheBucket string

	Archive        archiveSettings
	DiscordWebhook string
	Title          string
}

func defaultSettings() settings {
	return settings{
		Match:            match.DefaultConfig(),
		PreflightTimeout: 5 * time.Second,
		BookCacheDir:     ".cutematch/books",
		Archive:          archiveSettings{Prefix: "cutematch", Gzip: true},
	}
}

type fileEngine struct {
	Cmd  string `toml:"cmd"`
	Name string `toml:"name"`
}

type fileOpenings struct {
	File        string `toml:"file"`
	Format      string `toml:"format"`
	Order       string `toml:"order"`
	CacheDir    string `toml:"cache_dir"`
	CacheBucket string `toml:"cache_bucket"`
}

type fileArchive struct {
	Bucket string `toml:"bucket"`
	Prefix string `toml:"prefix"`
	Gzip   bool   `toml:"gzip"`
}

type fileDiscord struct {
	Webhook string `toml:"webhook"`
	Title   string `toml:"title"`
}

type fileConfig struct {
	Tool             string       `toml:"tool"`
	Engine1          fileEngine   `toml:"engine1"`
	Engine2          fileEngine   `toml:"engine2"`
	Rounds           int          `toml:"rounds"`
	TimePerGame      float64      `toml:"time_per_game"`
	TimeMarginMs     int          `toml:"time_margin_ms"`
	Protocol         string       `toml:"protocol"`
	Repeat           int          `toml:"repeat"`
	Concurrency      int          `toml:"concurrency"`
	PGNOut           string       `toml:"pgn_out"`
	Preflight        bool         `toml:"preflight"`
	PreflightTimeout string       `toml:"preflight_timeout"`
	Strict           bool         `toml:"strict"`
	Openings         fileOpenings `toml:"openings"`
	Archive          fileArchive  `toml:"archive"`
	Discord          fileDiscord  `toml:"discord"`
}

// loadFile overlays only the keys present in the TOML file at path.
func loadFile(path string, s *settings) error {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("load config %v: unknown keys %v", path, undecoded)
	}

	cfg := &s.Match
	if meta.IsDefined("tool") {
		cfg.Tool = strings.TrimSpace(raw.Tool)
	}
	if meta.IsDefined("engine1", "cmd") {
		cfg.Engine1.Cmd = strings.TrimSpace(raw.Engine1.Cmd)
	}
	if meta.IsDefined("engine1", "name") {
		cfg.Engine1.Name = strings.TrimSpace(raw.Engine1.Name)
	}
	if meta.IsDefined("engine2", "cmd") {
		cfg.Engine2.Cmd = strings.TrimSpace(raw.Engine2.Cmd)
	}
	if meta.IsDefined("engine2", "name") {
		cfg.Engine2.Name = strings.TrimSpace(raw.Engine2.Name)
	}
	if meta.IsDefined("rounds") {
		cfg.Rounds = raw.Rounds
	}
	if meta.IsDefined("time_per_game") {
		cfg.TimePerGame = raw.TimePerGame
	}
	if meta.IsDefined("time_margin_ms") {
		cfg.TimeMarginMs = raw.TimeMarginMs
	}
	if meta.IsDefined("protocol") {
		cfg.Protocol = strings.TrimSpace(raw.Protocol)
	}
	if meta.IsDefined("repeat") {
		cfg.Repeat = raw.Repeat
	}
	if meta.IsDefined("concurrency") {
		cfg.Concurrency = raw.Concurrency
	}
	if meta.IsDefined("pgn_out") {
		cfg.PGNOut = strings.TrimSpace(raw.PGNOut)
	}
	if meta.IsDefined("preflight") {
		cfg.Preflight = raw.Preflight
	}
	if meta.IsDefined("preflight_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.PreflightTimeout))
		if err != nil {
			return fmt.Errorf("parse preflight_timeout: %w", err)
		}
		s.PreflightTimeout = d
	}
	if meta.IsDefined("strict") {
		s.Strict = raw.Strict
	}

	if meta.IsDefined("openings", "file") {
		cfg.Openings.File = strings.TrimSpace(raw.Openings.File)
	}
	if meta.IsDefined("openings", "format") {
		cfg.Openings.Format = match.BookFormat(strings.ToLower(strings.TrimSpace(raw.Openings.Format)))
	}
	if meta.IsDefined("openings", "order") {
		cfg.Openings.Order = match.BookOrder(strings.ToLower(strings.TrimSpace(raw.Openings.Order)))
	}
	if meta.IsDefined("openings", "cache_dir") {
		s.BookCacheDir = strings.TrimSpace(raw.Openings.CacheDir)
	}
	if meta.IsDefined("openings", "cache_bucket") {
		s.BookCacheBucket = strings.TrimSpace(raw.Openings.CacheBucket)
	}

	if meta.IsDefined("archive", "bucket") {
		s.Archive.Bucket = strings.TrimSpace(raw.Archive.Bucket)
	}
	if meta.IsDefined("archive", "prefix") {
		s.Archive.Prefix = strings.TrimSpace(raw.Archive.Prefix)
	}
	if meta.IsDefined("archive", "gzip") {
		s.Archive.Gzip = raw.Archive.Gzip
	}

	if meta.IsDefined("discord", "webhook") {
		s.DiscordWebhook = strings.TrimSpace(raw.Discord.Webhook)
	}
	if meta.IsDefined("discord", "title") {
		s.Title = strings.TrimSpace(raw.Discord.Title)
	}

	return nil
}

func applyEnv(getenv func(string) string, s *settings) error {
	if v := strings.TrimSpace(getenv(EnvEngineCmd)); v != "" {
		s.Match.Engine1.Cmd = v
	}
	if v := strings.TrimSpace(getenv(EnvEngine2Cmd)); v != "" {
		s.Match.Engine2.Cmd = v
	}
	if v := strings.TrimSpace(getenv(EnvTool)); v != "" {
		s.Match.Tool = v
	}
	if v := strings.TrimSpace(getenv(EnvPGNOut)); v != "" {
		s.Match.PGNOut = v
	}
	if v := strings.TrimSpace(getenv(EnvRounds)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse %v: %w", EnvRounds, err)
		}
		s.Match.Rounds = n
	}
	if v := strings.TrimSpace(getenv(EnvConcurrency)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse %v: %w", EnvConcurrency, err)
		}
		s.Match.Concurrency = n
	}

	return nil
}

// matchFlags are shared by every subcommand that builds a match config.
type matchFlags struct {
	fs *flag.FlagSet

	configPath  string
	tool        string
	engine1     string
	engine2     string
	name1       string
	name2       string
	rounds      int
	repeat      int
	st          float64
	margin      int
	concurrency int
	openings    string
	format      string
	order       string
	pgnOut      string
	preflight   bool
	strict      bool
	webhook     string
	archive     string
}

func newMatchFlags(name string) *matchFlags {
	d := match.DefaultConfig()
	f := &matchFlags{fs: flag.NewFlagSet(name, flag.ContinueOnError)}
	f.fs.StringVar(&f.configPath, "config", "", "TOML config file")
	f.fs.StringVar(&f.tool, "tool", d.Tool, "Tournament manager executable")
	f.fs.StringVar(&f.engine1, "engine1", d.Engine1.Cmd, "First engine command")
	f.fs.StringVar(&f.engine2, "engine2", "", "Second engine command (defaults to -engine1)")
	f.fs.StringVar(&f.name1, "name1", "", "First engine display name")
	f.fs.StringVar(&f.name2, "name2", "", "Second engine display name")
	f.fs.IntVar(&f.rounds, "rounds", d.Rounds, "Number of rounds")
	f.fs.IntVar(&f.repeat, "repeat", d.Repeat, "Games per opening")
	f.fs.Float64Var(&f.st, "st", d.TimePerGame, "Seconds per move")
	f.fs.IntVar(&f.margin, "timemargin", d.TimeMarginMs, "Time margin in milliseconds")
	f.fs.IntVar(&f.concurrency, "concurrency", d.Concurrency, "Games run in parallel")
	f.fs.StringVar(&f.openings, "openings", d.Openings.File, "Opening book path or http(s) URL")
	f.fs.StringVar(&f.format, "format", string(d.Openings.Format), "Opening book format: epd|pgn")
	f.fs.StringVar(&f.order, "order", string(d.Openings.Order), "Opening order: random|sequential")
	f.fs.StringVar(&f.pgnOut, "pgnout", d.PGNOut, "PGN output path")
	f.fs.BoolVar(&f.preflight, "preflight", false, "Handshake with both engines before starting")
	f.fs.BoolVar(&f.strict, "strict", false, "Reject invalid settings before starting")
	f.fs.StringVar(&f.webhook, "discord-webhook", "", "Discord webhook URL for results")
	f.fs.StringVar(&f.archive, "archive-bucket", "", "S3 bucket to archive the PGN to")
	return f
}

// settings resolves defaults < config file < environment < explicit flags.
func (f *matchFlags) settings(getenv func(string) string) (settings, error) {
	s := defaultSettings()
	if f.configPath != "" {
		if err := loadFile(f.configPath, &s); err != nil {
			return s, err
		}
	}
	if err := applyEnv(getenv, &s); err != nil {
		return s, err
	}

	cfg := &s.Match
	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "tool":
			cfg.Tool = f.tool
		case "engine1":
			cfg.Engine1.Cmd = f.engine1
		case "engine2":
			cfg.Engine2.Cmd = f.engine2
		case "name1":
			cfg.Engine1.Name = f.name1
		case "name2":
			cfg.Engine2.Name = f.name2
		case "rounds":
			cfg.Rounds = f.rounds
		case "repeat":
			cfg.Repeat = f.repeat
		case "st":
			cfg.TimePerGame = f.st
		case "timemargin":
			cfg.TimeMarginMs = f.margin
		case "concurrency":
			cfg.Concurrency = f.concurrency
		case "openings":
			cfg.Openings.File = f.openings
		case "format":
			cfg.Openings.Format = match.BookFormat(f.format)
		case "order":
			cfg.Openings.Order = match.BookOrder(f.order)
		case "pgnout":
			cfg.PGNOut = f.pgnOut
		case "preflight":
			cfg.Preflight = f.preflight
		case "strict":
			s.Strict = f.strict
		case "discord-webhook":
			s.DiscordWebhook = f.webhook
		case "archive-bucket":
			s.Archive.Bucket = f.archive
		}
	})

	if s.Strict {
		if err := cfg.Validate(); err != nil {
			return s, fmt.Errorf("invalid settings: %w", err)
		}
	}

	return s, nil
}

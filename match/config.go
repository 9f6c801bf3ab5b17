/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package match

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mikeb26/cutematch/internal"
)

type BookFormat string

const (
	BookFormatEPD BookFormat = "epd"
	BookFormatPGN BookFormat = "pgn"
)

type BookOrder string

const (
	BookOrderRandom     BookOrder = "random"
	BookOrderSequential BookOrder = "sequential"
)

const ProtocolUCI = "uci"

// Engine identifies one participant. Name is optional; the tournament
// manager derives one from the engine's UCI id when it is empty.
type Engine struct {
	Cmd  string
	Name string
}

type Openings struct {
	File   string
	Format BookFormat
	Order  BookOrder
}

// TournamentConfig is everything needed to build one tournament manager
// invocation.
type TournamentConfig struct {
	Tool string

	Engine1 Engine
	// Engine2.Cmd defaults to Engine1.Cmd when empty
	Engine2 Engine

	Rounds       int
	TimePerGame  float64 // seconds
	TimeMarginMs int
	Protocol     string
	Repeat       int
	Openings     Openings
	Concurrency  int
	PGNOut       string

	// Preflight resolves and handshakes both engines before the tool is
	// started.
	Preflight bool
}

func DefaultConfig() TournamentConfig {
	return TournamentConfig{
		Tool:         internal.DefaultTool,
		Engine1:      Engine{Cmd: internal.DefaultEngineCmd},
		Rounds:       1000,
		TimePerGame:  0.5,
		TimeMarginMs: 50,
		Protocol:     ProtocolUCI,
		Repeat:       2,
		Openings: Openings{
			File:   "book.epd",
			Format: BookFormatEPD,
			Order:  BookOrderRandom,
		},
		Concurrency: 5,
		PGNOut:      "games.pgn",
	}
}

// Engines returns both participants with Engine2's command defaulted.
func (cfg TournamentConfig) Engines() [2]Engine {
	e2 := cfg.Engine2
	if strings.TrimSpace(e2.Cmd) == "" {
		e2.Cmd = cfg.Engine1.Cmd
	}
	return [2]Engine{cfg.Engine1, e2}
}

// Validate reports every field that the tournament manager would reject.
// The launcher itself does not require a valid config; values are passed
// through unchanged.
func (cfg TournamentConfig) Validate() error {
	var errs []error
	if strings.TrimSpace(cfg.Tool) == "" {
		errs = append(errs, errors.New("tool is required"))
	}
	if strings.TrimSpace(cfg.Engine1.Cmd) == "" {
		errs = append(errs, errors.New("engine1 cmd is required"))
	}
	if cfg.Rounds < 1 {
		errs = append(errs, fmt.Errorf("rounds must be >= 1 (got %d)", cfg.Rounds))
	}
	if cfg.TimePerGame <= 0 {
		errs = append(errs, fmt.Errorf("time per game must be > 0 (got %v)", cfg.TimePerGame))
	}
	if cfg.TimeMarginMs < 0 {
		errs = append(errs, fmt.Errorf("time margin must be >= 0 (got %d)", cfg.TimeMarginMs))
	}
	if strings.TrimSpace(cfg.Protocol) == "" {
		errs = append(errs, errors.New("protocol is required"))
	}
	if cfg.Repeat < 1 {
		errs = append(errs, fmt.Errorf("repeat must be >= 1 (got %d)", cfg.Repeat))
	}
	if strings.TrimSpace(cfg.Openings.File) == "" {
		errs = append(errs, errors.New("openings file is required"))
	}
	switch cfg.Openings.Format {
	case BookFormatEPD, BookFormatPGN:
	default:
		errs = append(errs, fmt.Errorf("unknown openings format %q", cfg.Openings.Format))
	}
	switch cfg.Openings.Order {
	case BookOrderRandom, BookOrderSequential:
	default:
		errs = append(errs, fmt.Errorf("unknown openings order %q", cfg.Openings.Order))
	}
	if cfg.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("concurrency must be >= 1 (got %d)", cfg.Concurrency))
	}
	if strings.TrimSpace(cfg.PGNOut) == "" {
		errs = append(errs, errors.New("pgn output path is required"))
	}

	return errors.Join(errs...)
}

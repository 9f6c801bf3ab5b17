/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package pgn

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// Record is a win/loss/draw tally from one side's point of view.
type Record struct {
	Wins   int
	Losses int
	Draws  int
}

func (r Record) Games() int {
	return r.Wins + r.Losses + r.Draws
}

// Score is the points fraction in [0,1]; zero games yields 0.5.
func (r Record) Score() float64 {
	n := r.Games()
	if n == 0 {
		return 0.5
	}
	return (float64(r.Wins) + float64(r.Draws)/2) / float64(n)
}

// Elo returns the rating difference implied by the score and its 95%
// confidence half-width. Either may be infinite for one-sided results.
func (r Record) Elo() (diff float64, margin float64) {
	n := float64(r.Games())
	if n == 0 {
		return 0, math.Inf(1)
	}
	s := r.Score()
	if s == 0 || s == 1 {
		return eloFromScore(s), math.Inf(1)
	}
	variance := (float64(r.Wins)*math.Pow(1-s, 2) +
		float64(r.Draws)*math.Pow(0.5-s, 2) +
		float64(r.Losses)*math.Pow(s, 2)) / n
	stderr := math.Sqrt(variance / n)

	lo := eloFromScore(s - 1.96*stderr)
	hi := eloFromScore(s + 1.96*stderr)

	return eloFromScore(s), (hi - lo) / 2
}

func eloFromScore(s float64) float64 {
	if s <= 0 {
		return math.Inf(-1)
	}
	if s >= 1 {
		return math.Inf(1)
	}
	return 400 * math.Log10(s/(1-s))
}

// Summary aggregates a match between two players.
type Summary struct {
	Player1 string
	Player2 string

	// Player1's record against Player2. Only meaningful when the two names
	// differ; self-play matches are described by the color tallies.
	Record Record

	WhiteWins  int
	BlackWins  int
	Draws      int
	Unfinished int

	Terminations map[string]int

	First time.Time
	Last  time.Time
}

func (s Summary) Games() int {
	return s.WhiteWins + s.BlackWins + s.Draws
}

func (s Summary) SelfPlay() bool {
	return s.Player1 == s.Player2
}

// Summarize tallies games from player1's perspective. An empty player1
// means the White player of the first game.
func Summarize(games []Game, player1 string) Summary {
	sum := Summary{Player1: player1, Terminations: make(map[string]int)}
	if sum.Player1 == "" && len(games) > 0 {
		sum.Player1 = games[0].White()
	}

	for _, g := range games {
		white, black := g.White(), g.Black()
		if sum.Player2 == "" {
			if white == sum.Player1 {
				sum.Player2 = black
			} else if black == sum.Player1 {
				sum.Player2 = white
			}
		}

		if d := g.Date(); !d.IsZero() {
			if sum.First.IsZero() || d.Before(sum.First) {
				sum.First = d
			}
			if d.After(sum.Last) {
				sum.Last = d
			}
		}

		var p1Points float64
		switch g.Result() {
		case ResultWhiteWin:
			sum.WhiteWins++
			p1Points = 1
		case ResultBlackWin:
			sum.BlackWins++
			p1Points = 0
		case ResultDraw:
			sum.Draws++
			p1Points = 0.5
		default:
			sum.Unfinished++
			continue
		}
		if t := g.Tag("Termination"); t != "" {
			sum.Terminations[t]++
		}

		if white != sum.Player1 && black != sum.Player1 {
			continue
		}
		if black == sum.Player1 && white != sum.Player1 {
			p1Points = 1 - p1Points
		}
		switch p1Points {
		case 1:
			sum.Record.Wins++
		case 0:
			sum.Record.Losses++
		default:
			sum.Record.Draws++
		}
	}

	return sum
}

// BuildSummaryOutput formats a summary for terminal display.
func BuildSummaryOutput(s Summary) string {
	var sb strings.Builder

	if s.SelfPlay() {
		sb.WriteString(fmt.Sprintf("Self-play match: %s\n", s.Player1))
	} else {
		sb.WriteString(fmt.Sprintf("Match: %s vs %s\n", s.Player1, s.Player2))
	}
	if !s.First.IsZero() {
		sb.WriteString(fmt.Sprintf("Dates: %s to %s\n", s.First.Format("2006-01-02"),
			s.Last.Format("2006-01-02")))
	}
	sb.WriteString(fmt.Sprintf("Games: %d", s.Games()))
	if s.Unfinished > 0 {
		sb.WriteString(fmt.Sprintf(" (+%d unfinished)", s.Unfinished))
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("White wins: %d  Black wins: %d  Draws: %d\n",
		s.WhiteWins, s.BlackWins, s.Draws))

	if !s.SelfPlay() && s.Record.Games() > 0 {
		diff, margin := s.Record.Elo()
		sb.WriteString(fmt.Sprintf("%s: +%d -%d =%d  score %.1f%%\n", s.Player1,
			s.Record.Wins, s.Record.Losses, s.Record.Draws, 100*s.Record.Score()))
		sb.WriteString(fmt.Sprintf("Elo difference: %s +/- %s\n", formatElo(diff),
			formatElo(margin)))
	}

	if len(s.Terminations) > 0 {
		var reasons []string
		for r := range s.Terminations {
			reasons = append(reasons, r)
		}
		sort.Strings(reasons)
		sb.WriteString("Terminations:\n")
		for _, r := range reasons {
			sb.WriteString(fmt.Sprintf("  %-20s %d\n", r, s.Terminations[r]))
		}
	}

	return sb.String()
}

func formatElo(v float64) string {
	if math.IsInf(v, 1) {
		return "inf"
	}
	if math.IsInf(v, -1) {
		return "-inf"
	}
	if math.IsNaN(v) {
		return "nan"
	}
	return fmt.Sprintf("%.1f", v)
}

/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package pgn

import (
	"io"
	"math"
	"reflect"
	"strings"
	"testing"
	"time"
)

const matchPGN = `[Event "?"]
[Site "?"]
[Date "2026.10.19"]
[Round "1"]
[White "kittycat"]
[Black "kittycat-dev"]
[Result "1-0"]
[Termination "adjudication"]

1. e4 {+0.30/12 0.05s} e5 {-0.25/11 0.04s
continued [comment]} 2. Nf3 1-0

[Event "?"]
[Date "2026.10.20"]
[Round "1"]
[White "kittycat-dev"]
[Black "kittycat"]
[Result "1/2-1/2"]

1. d4 d5 1/2-1/2

[Event "?"]
[Date "????.??.??"]
[Round "2"]
[White "kittycat"]
[Black "kittycat-dev"]
[Result "0-1"]
[Termination "time forfeit"]
1. e4 c5 0-1
[Event "?"]
[White "kittycat-dev"]
[Black "kittycat"]
[Result "*"]

1. c4 *
`

func TestReadAll(t *testing.T) {
	games, err := ReadAll(strings.NewReader(matchPGN))
	if err != nil {
		t.Fatalf("ReadAll error: %v", err)
	}
	if len(games) != 4 {
		t.Fatalf("expected 4 games, got %d", len(games))
	}
	if games[0].White() != "kittycat" || games[0].Result() != ResultWhiteWin {
		t.Errorf("game 1 tags: %+v", games[0].Tags)
	}
	if games[0].Line != 1 || games[1].Line != 13 {
		t.Errorf("unexpected game lines: %d, %d", games[0].Line, games[1].Line)
	}
	if games[2].Tag("Termination") != "time forfeit" {
		t.Errorf("game 3 tags: %+v", games[2].Tags)
	}
	if !games[2].Date().IsZero() {
		t.Errorf("placeholder date should be zero")
	}
	want := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	if !games[0].Date().Equal(want) {
		t.Errorf("game 1 date = %v", games[0].Date())
	}
}

func TestReaderNextEOF(t *testing.T) {
	r := NewReader(strings.NewReader("\n\n"))
	if _, err := r.Next(); err != io.EOF {
		t.Fatalf("expected io.EOF, got %v", err)
	}
	if _, err := r.Next(); err != io.EOF {
		t.Fatalf("expected sticky io.EOF, got %v", err)
	}
}

func TestParseTagLine(t *testing.T) {
	cases := []struct {
		line    string
		want    []tagPair
		wantErr bool
	}{
		{`[White "kittycat"]`, []tagPair{{"White", "kittycat"}}, false},
		{`[Event "Say \"hi\" \\ bye"]`, []tagPair{{"Event", `Say "hi" \ bye`}}, false},
		{`[Site ""]`, []tagPair{{"Site", ""}}, false},
		{`[White "a"] [Black "b"]`, []tagPair{{"White", "a"}, {"Black", "b"}}, false},
		{`[White "a"]  [Black "b"] `, []tagPair{{"White", "a"}, {"Black", "b"}}, false},
		{`[White "a"] b"]`, nil, true},
		{`[White "a"] junk`, nil, true},
		{`[White kittycat]`, nil, true},
		{`[White "kittycat"`, nil, true},
		{`[White "kittycat]`, nil, true},
		{`["kittycat"]`, nil, true},
	}
	for _, c := range cases {
		tags, err := parseTagLine(c.line)
		if (err != nil) != c.wantErr {
			t.Errorf("parseTagLine(%q) err = %v; wantErr %v", c.line, err, c.wantErr)
			continue
		}
		if !reflect.DeepEqual(tags, c.want) {
			t.Errorf("parseTagLine(%q) = %+v; want %+v", c.line, tags, c.want)
		}
	}
}

func TestReadAllGameBoundaries(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "tags without movetext",
			input: "[White \"a\"]\n[Black \"b\"]\n\n[White \"c\"]\n[Black \"d\"]\n",
			want:  []string{"a-b", "c-d"},
		},
		{
			name:  "several tags per line",
			input: "[White \"a\"] [Black \"b\"]\n[Result \"1-0\"]\n\n1. e4 1-0\n",
			want:  []string{"a-b"},
		},
		{
			name:  "repeated tag mid line",
			input: "[White \"a\"] [Black \"b\"] [White \"c\"] [Black \"d\"]\n",
			want:  []string{"a-b", "c-d"},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			games, err := ReadAll(strings.NewReader(c.input))
			if err != nil {
				t.Fatalf("ReadAll error: %v", err)
			}
			var got []string
			for _, g := range games {
				got = append(got, g.White()+"-"+g.Black())
			}
			if !reflect.DeepEqual(got, c.want) {
				t.Errorf("games = %v; want %v", got, c.want)
			}
		})
	}
}

func TestReadAllMalformedTag(t *testing.T) {
	_, err := ReadAll(strings.NewReader("[White \"a\"]\n[Black b]\n\n1-0\n"))
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Fatalf("expected line 2 error, got %v", err)
	}
}

func TestSummarize(t *testing.T) {
	games, err := ReadAll(strings.NewReader(matchPGN))
	if err != nil {
		t.Fatalf("ReadAll error: %v", err)
	}
	s := Summarize(games, "")

	if s.Player1 != "kittycat" || s.Player2 != "kittycat-dev" {
		t.Errorf("players = %q, %q", s.Player1, s.Player2)
	}
	if s.WhiteWins != 1 || s.BlackWins != 1 || s.Draws != 1 || s.Unfinished != 1 {
		t.Errorf("color tallies: %+v", s)
	}
	if s.Record != (Record{Wins: 1, Losses: 1, Draws: 1}) {
		t.Errorf("record = %+v", s.Record)
	}
	if s.Terminations["adjudication"] != 1 || s.Terminations["time forfeit"] != 1 {
		t.Errorf("terminations = %+v", s.Terminations)
	}
	if s.First.Day() != 19 || s.Last.Day() != 20 {
		t.Errorf("date range = %v..%v", s.First, s.Last)
	}

	out := BuildSummaryOutput(s)
	for _, want := range []string{"Match: kittycat vs kittycat-dev",
		"Games: 3 (+1 unfinished)", "score 50.0%", "Elo difference: 0.0"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestSummarizeSelfPlay(t *testing.T) {
	games := []Game{
		{Tags: map[string]string{"White": "kittycat", "Black": "kittycat", "Result": "1-0"}},
		{Tags: map[string]string{"White": "kittycat", "Black": "kittycat", "Result": "1-0"}},
		{Tags: map[string]string{"White": "kittycat", "Black": "kittycat", "Result": "0-1"}},
	}
	s := Summarize(games, "")
	if !s.SelfPlay() {
		t.Fatalf("expected self-play")
	}
	if s.WhiteWins != 2 || s.BlackWins != 1 {
		t.Errorf("color tallies: %+v", s)
	}
	out := BuildSummaryOutput(s)
	if !strings.Contains(out, "Self-play match: kittycat") || strings.Contains(out, "Elo") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestRecordElo(t *testing.T) {
	cases := []struct {
		name     string
		rec      Record
		wantDiff float64
		infDiff  int
		infMarg  bool
	}{
		{"even", Record{Wins: 10, Losses: 10, Draws: 10}, 0, 0, false},
		{"75 percent", Record{Wins: 100, Losses: 0, Draws: 100}, 190.85, 0, false},
		{"all wins", Record{Wins: 4}, 0, 1, true},
		{"all losses", Record{Losses: 4}, 0, -1, true},
		{"no games", Record{}, 0, 0, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			diff, margin := c.rec.Elo()
			if c.infDiff != 0 {
				if !math.IsInf(diff, c.infDiff) {
					t.Errorf("diff = %v; want inf(%d)", diff, c.infDiff)
				}
			} else if math.Abs(diff-c.wantDiff) > 0.1 {
				t.Errorf("diff = %v; want %v", diff, c.wantDiff)
			}
			if c.infMarg != math.IsInf(margin, 1) {
				t.Errorf("margin = %v", margin)
			}
			if !c.infMarg && (margin <= 0 || math.IsNaN(margin)) {
				t.Errorf("margin should be positive: %v", margin)
			}
		})
	}
}

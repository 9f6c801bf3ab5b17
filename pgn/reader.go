/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package pgn

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mikeb26/cutematch/internal"
)

const (
	ResultWhiteWin = "1-0"
	ResultBlackWin = "0-1"
	ResultDraw     = "1/2-1/2"
	ResultOngoing  = "*"
)

// Game holds the tag pairs of one game. Movetext is skipped.
type Game struct {
	Tags map[string]string
	// Line is where the game's first tag appears, 1-based
	Line int
}

func (g Game) Tag(name string) string {
	return g.Tags[name]
}

func (g Game) White() string  { return g.Tags["White"] }
func (g Game) Black() string  { return g.Tags["Black"] }
func (g Game) Result() string { return g.Tags["Result"] }

// Date returns the game date, or zero if it is absent or a placeholder.
func (g Game) Date() time.Time {
	d, err := internal.ParseDateOrZero(g.Tags["Date"])
	if err != nil {
		return time.Time{}
	}
	return d
}

// Reader scans PGN games from a stream.
type Reader struct {
	scanner *bufio.Scanner
	line    int

	pending *Game
	err     error
}

func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	return &Reader{scanner: scanner}
}

// Next returns the next game, or io.EOF when the stream is exhausted.
func (r *Reader) Next() (*Game, error) {
	if r.err != nil {
		return nil, r.err
	}

	game := r.pending
	r.pending = nil
	inMoves := false
	commentDepth := 0

	for r.scanner.Scan() {
		r.line++
		line := strings.TrimSpace(r.scanner.Text())
		if r.line == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		if line == "" || (commentDepth == 0 && strings.HasPrefix(line, "%")) {
			continue
		}

		if commentDepth == 0 && strings.HasPrefix(line, "[") {
			tags, err := parseTagLine(line)
			if err != nil {
				r.err = fmt.Errorf("pgn: line %d: %w", r.line, err)
				return nil, r.err
			}
			var next *Game
			for _, tag := range tags {
				if next == nil && game != nil {
					// movetext or a repeated tag ends the current game
					if _, dup := game.Tags[tag.name]; dup || inMoves {
						next = &Game{Tags: make(map[string]string), Line: r.line}
					}
				}
				if next != nil {
					next.Tags[tag.name] = tag.value
					continue
				}
				if game == nil {
					game = &Game{Tags: make(map[string]string), Line: r.line}
				}
				game.Tags[tag.name] = tag.value
			}
			if next != nil {
				r.pending = next
				return game, nil
			}
			continue
		}

		if game == nil {
			game = &Game{Tags: make(map[string]string), Line: r.line}
		}
		inMoves = true
		commentDepth += strings.Count(line, "{") - strings.Count(line, "}")
		if commentDepth < 0 {
			commentDepth = 0
		}
	}
	if err := r.scanner.Err(); err != nil {
		r.err = fmt.Errorf("pgn: %w", err)
		return nil, r.err
	}

	r.err = io.EOF
	if game == nil {
		return nil, io.EOF
	}

	return game, nil
}

// ReadAll reads every game from rd.
func ReadAll(rd io.Reader) ([]Game, error) {
	r := NewReader(rd)
	var games []Game
	for {
		g, err := r.Next()
		if err == io.EOF {
			return games, nil
		}
		if err != nil {
			return games, err
		}
		games = append(games, *g)
	}
}

type tagPair struct {
	name  string
	value string
}

// parseTagLine reads every tag pair on line; anything else on the line is
// an error.
func parseTagLine(line string) ([]tagPair, error) {
	var tags []tagPair
	for rest := line; rest != ""; {
		name, value, tail, err := parseTag(rest)
		if err != nil {
			return nil, err
		}
		tags = append(tags, tagPair{name: name, value: value})
		rest = strings.TrimSpace(tail)
	}

	return tags, nil
}

// parseTag reads one `[Name "value"]` from the start of s, undoing \" and
// \\ escapes, and returns the text following it.
func parseTag(s string) (string, string, string, error) {
	if !strings.HasPrefix(s, "[") {
		return "", "", "", fmt.Errorf("malformed tag %q", s)
	}
	body := strings.TrimLeft(s[1:], " \t")
	sp := strings.IndexAny(body, " \t\"")
	if sp <= 0 {
		return "", "", "", fmt.Errorf("malformed tag %q", s)
	}
	name := body[:sp]
	raw := strings.TrimLeft(body[sp:], " \t")
	if raw == "" || raw[0] != '"' {
		return "", "", "", fmt.Errorf("malformed tag value %q", s)
	}

	var sb strings.Builder
	i := 1
	for ; i < len(raw) && raw[i] != '"'; i++ {
		if raw[i] == '\\' && i+1 < len(raw) {
			i++
		}
		sb.WriteByte(raw[i])
	}
	if i >= len(raw) {
		return "", "", "", fmt.Errorf("unterminated tag value %q", s)
	}
	tail := strings.TrimLeft(raw[i+1:], " \t")
	if !strings.HasPrefix(tail, "]") {
		return "", "", "", fmt.Errorf("unterminated tag %q", s)
	}

	return name, sb.String(), tail[1:], nil
}

/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package uci

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	CmdUCI     = "uci"
	CmdIsReady = "isready"
	CmdQuit    = "quit"

	RespUCIOk   = "uciok"
	RespReadyOk = "readyok"
)

var (
	// ProbeTimeout bounds a handshake when the caller's context has no
	// deadline of its own.
	ProbeTimeout = 5 * time.Second

	// QuitGrace is how long an engine gets to exit after "quit" before it
	// is killed.
	QuitGrace = time.Second
)

var ErrEngineExited = errors.New("engine exited during handshake")

// ProbeError identifies the engine command whose handshake failed.
type ProbeError struct {
	Cmd string
	Err error
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("uci.probe %v: %v", e.Cmd, e.Err)
}

func (e *ProbeError) Unwrap() error { return e.Err }

// EngineID is what an engine reports about itself in response to "uci".
type EngineID struct {
	Cmd     string
	Name    string
	Author  string
	Options []string
}

func (id EngineID) String() string {
	name := id.Name
	if name == "" {
		name = "?"
	}
	if id.Author == "" {
		return name
	}
	return fmt.Sprintf("%s by %s", name, id.Author)
}

type session struct {
	stdin io.WriteCloser
	lines <-chan string
}

func (s *session) send(cmd string) error {
	_, err := io.WriteString(s.stdin, cmd+"\n")
	return err
}

// drain discards output until the engine closes stdout. It reports false
// if timeout fires first; a nil timeout waits indefinitely.
func (s *session) drain(timeout <-chan time.Time) bool {
	for {
		select {
		case _, ok := <-s.lines:
			if !ok {
				return true
			}
		case <-timeout:
			return false
		}
	}
}

// expect consumes lines until one equals token, handing every other line
// to onLine.
func (s *session) expect(ctx context.Context, token string,
	onLine func(string)) error {

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for %s: %w", token, ctx.Err())
		case line, ok := <-s.lines:
			if !ok {
				return fmt.Errorf("waiting for %s: %w", token, ErrEngineExited)
			}
			if line == token {
				return nil
			}
			if onLine != nil {
				onLine(line)
			}
		}
	}
}

// Probe starts the engine at cmd, performs the uci/isready handshake and
// asks it to quit.
func Probe(ctx context.Context, cmd string) (EngineID, error) {
	id := EngineID{Cmd: cmd}
	logger := log.With().Str("component", "uci").Str("engine", cmd).Logger()

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ProbeTimeout)
		defer cancel()
	}

	proc := exec.CommandContext(ctx, cmd)
	stdin, err := proc.StdinPipe()
	if err != nil {
		return id, &ProbeError{Cmd: cmd, Err: err}
	}
	stdout, err := proc.StdoutPipe()
	if err != nil {
		return id, &ProbeError{Cmd: cmd, Err: err}
	}
	if err := proc.Start(); err != nil {
		return id, &ProbeError{Cmd: cmd, Err: err}
	}

	lines := make(chan string)
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		defer close(lines)
		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			select {
			case lines <- strings.TrimSpace(scanner.Text()):
			case <-ctx.Done():
				// drain so the engine never blocks on a full pipe
				io.Copy(io.Discard, stdout)
				return
			}
		}
	}()

	sess := &session{stdin: stdin, lines: lines}
	err = handshake(ctx, sess, &id)
	if err != nil {
		logger.Debug().Err(err).Msg("handshake failed")
	}

	sess.send(CmdQuit)
	stdin.Close()
	if !sess.drain(time.After(QuitGrace)) {
		logger.Debug().Msg("engine ignored quit; killing")
		proc.Process.Kill()
		sess.drain(nil)
	}
	<-readerDone
	proc.Wait()

	if err != nil {
		return id, &ProbeError{Cmd: cmd, Err: err}
	}
	logger.Debug().Str("id", id.String()).Int("options", len(id.Options)).Msg("handshake ok")

	return id, nil
}

func handshake(ctx context.Context, sess *session, id *EngineID) error {
	if err := sess.send(CmdUCI); err != nil {
		return err
	}
	err := sess.expect(ctx, RespUCIOk, func(line string) {
		parseIdentity(line, id)
	})
	if err != nil {
		return err
	}
	if err := sess.send(CmdIsReady); err != nil {
		return err
	}
	return sess.expect(ctx, RespReadyOk, nil)
}

func parseIdentity(line string, id *EngineID) {
	switch {
	case strings.HasPrefix(line, "id name "):
		id.Name = strings.TrimSpace(strings.TrimPrefix(line, "id name "))
	case strings.HasPrefix(line, "id author "):
		id.Author = strings.TrimSpace(strings.TrimPrefix(line, "id author "))
	case strings.HasPrefix(line, "option name "):
		name := strings.TrimPrefix(line, "option name ")
		if idx := strings.Index(name, " type "); idx != -1 {
			name = name[:idx]
		}
		id.Options = append(id.Options, strings.TrimSpace(name))
	}
}

// ProbeAll probes every command concurrently. Results are in input order;
// the first failure cancels the remaining probes and is returned as a
// *ProbeError naming its engine.
func ProbeAll(ctx context.Context, cmds ...string) ([]EngineID, error) {
	ids := make([]EngineID, len(cmds))
	g, gctx := errgroup.WithContext(ctx)
	for i, cmd := range cmds {
		i, cmd := i, cmd
		g.Go(func() error {
			id, err := Probe(gctx, cmd)
			ids[i] = id
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return ids, err
	}

	return ids, nil
}

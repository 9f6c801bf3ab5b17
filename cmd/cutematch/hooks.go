/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mikeb26/cutematch/book"
	"github.com/mikeb26/cutematch/internal"
	"github.com/mikeb26/cutematch/match"
	"github.com/mikeb26/cutematch/notify"
	"github.com/mikeb26/cutematch/s3store"
)

func resolveBook(ctx context.Context, s settings) (match.Openings, error) {
	if !book.IsRemote(s.Match.Openings.File) && s.Match.Openings.Format != "" {
		return s.Match.Openings, nil
	}
	client := internal.NewCachedHttpClient(ctx, s.BookCacheBucket, internal.BookCacheTTL)

	return book.Resolve(ctx, client, s.Match.Openings, s.BookCacheDir)
}

func matchTitle(s settings) string {
	if s.Title != "" {
		return s.Title
	}
	engines := s.Match.Engines()
	label := func(e match.Engine) string {
		if e.Name != "" {
			return e.Name
		}
		return filepath.Base(e.Cmd)
	}

	return fmt.Sprintf("%s vs %s", label(engines[0]), label(engines[1]))
}

// afterMatch runs the optional archive and notification hooks. Failures are
// logged and never change the exit status.
func afterMatch(ctx context.Context, s settings, status int) {
	if s.Archive.Bucket == "" && s.DiscordWebhook == "" {
		return
	}
	logger := log.With().Str("component", "hooks").Str("pgn", s.Match.PGNOut).Logger()

	if s.Archive.Bucket != "" {
		if key, err := archivePGN(ctx, s); err != nil {
			logger.Warn().Err(err).Msg("archive failed")
		} else {
			logger.Info().Str("bucket", s.Archive.Bucket).Str("key", key).Msg("archived")
		}
	}

	if s.DiscordWebhook != "" {
		sum, err := summarizeFile(s.Match.PGNOut, s.Match.Engine1.Name)
		if err != nil {
			logger.Warn().Err(err).Msg("cannot summarize for notification")
			return
		}
		d, err := notify.NewDiscord(s.DiscordWebhook)
		if err != nil {
			logger.Warn().Err(err).Msg("notification disabled")
			return
		}
		if err := d.PostSummary(matchTitle(s), status, sum); err != nil {
			logger.Warn().Err(err).Msg("notification failed")
		}
	}
}

func archivePGN(ctx context.Context, s settings) (string, error) {
	f, err := os.Open(s.Match.PGNOut)
	if err != nil {
		return "", err
	}
	defer f.Close()

	store := s3store.New(ctx, s.Archive.Bucket, s.Archive.Gzip)
	if err := store.Init(); err != nil {
		return "", err
	}
	prefix := path.Join(s.Archive.Prefix, time.Now().UTC().Format("20060102T150405Z"))

	return store.Upload(ctx, prefix, s.Match.PGNOut, f)
}

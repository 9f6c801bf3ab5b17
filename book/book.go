/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package book

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/mikeb26/cutematch/internal"
	"github.com/mikeb26/cutematch/match"
)

// IsRemote reports whether file names an http(s) resource rather than a
// local path.
func IsRemote(file string) bool {
	u, err := url.Parse(file)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// InferFormat guesses the book format from the file or URL path extension.
func InferFormat(file string) (match.BookFormat, bool) {
	if IsRemote(file) {
		if u, err := url.Parse(file); err == nil {
			file = u.Path
		}
	}
	switch strings.ToLower(path.Ext(file)) {
	case ".epd":
		return match.BookFormatEPD, true
	case ".pgn":
		return match.BookFormatPGN, true
	default:
		return "", false
	}
}

// Resolve makes the opening book usable by the tournament manager. Local
// files are returned as-is; remote books are downloaded with client into
// dir. An empty format is filled in from the file extension.
func Resolve(ctx context.Context, client *http.Client, o match.Openings,
	dir string) (match.Openings, error) {

	if o.Format == "" {
		format, ok := InferFormat(o.File)
		if !ok {
			return o, fmt.Errorf("book: cannot infer format of %v", o.File)
		}
		o.Format = format
	}

	if !IsRemote(o.File) {
		return o, nil
	}

	local, err := fetch(ctx, client, o.File, dir)
	if err != nil {
		return o, err
	}
	o.File = local

	return o, nil
}

func fetch(ctx context.Context, client *http.Client, rawURL string,
	dir string) (string, error) {

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("book: bad url %v: %w", rawURL, err)
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" || name == "" {
		name = "openings"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("book: %w", err)
	}
	req.Header.Set("User-Agent", internal.UserAgent)
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("book: fetch %v: %w", rawURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("book: fetch %v: unexpected status %v", rawURL,
			resp.Status)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("book: %w", err)
	}
	dest := filepath.Join(dir, name)
	tmp, err := os.CreateTemp(dir, name+".*.part")
	if err != nil {
		return "", fmt.Errorf("book: %w", err)
	}
	n, err := io.Copy(tmp, resp.Body)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("book: write %v: %w", dest, err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("book: %w", err)
	}

	log.Debug().Str("component", "book").Str("url", rawURL).Str("path", dest).
		Int64("bytes", n).Bool("cached", resp.Header.Get("X-From-Cache") == "1").
		Msg("opening book ready")

	return dest, nil
}

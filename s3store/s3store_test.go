/* Copyright (c) 2025-2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package s3store

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/gregjones/httpcache/test"
)

const envTestBucket = "CUTEMATCH_TEST_BUCKET"

func newTestStore(t *testing.T, gzip bool) *Store {
	t.Helper()
	bucket := os.Getenv(envTestBucket)
	if bucket == "" {
		t.Skipf("Skipping test because %v is not set", envTestBucket)
	}
	store := New(context.Background(), bucket, gzip)
	if err := store.Init(); err != nil {
		t.Skipf("Skipping test due to lack of access to %v: %v", bucket, err)
	}
	return store
}

func TestS3Store(t *testing.T) {
	test.Cache(t, newTestStore(t, false))
}

func TestS3StoreWithGzip(t *testing.T) {
	test.Cache(t, newTestStore(t, true))
}

func TestUpload(t *testing.T) {
	store := newTestStore(t, true)
	key, err := store.Upload(context.Background(), "cutematch-test",
		"/tmp/games.pgn", strings.NewReader("[Result \"1-0\"]\n\n1-0\n"))
	if err != nil {
		t.Fatalf("Upload error: %v", err)
	}
	if key != "cutematch-test/games.pgn.gz" {
		t.Errorf("unexpected key %q", key)
	}
}

func TestObjectKey(t *testing.T) {
	cases := []struct {
		prefix string
		name   string
		gzip   bool
		want   string
	}{
		{"", "games.pgn", false, "games.pgn"},
		{"matches/", "out/games.pgn", false, "matches/games.pgn"},
		{"/a/b/", "games.pgn", true, "a/b/games.pgn.gz"},
	}
	for _, c := range cases {
		if got := ObjectKey(c.prefix, c.name, c.gzip); got != c.want {
			t.Errorf("ObjectKey(%q, %q, %v) = %q; want %q", c.prefix, c.name,
				c.gzip, got, c.want)
		}
	}
}

func TestCacheObjectKey(t *testing.T) {
	plain := New(context.Background(), "b", false)
	zipped := New(context.Background(), "b", true)

	k := plain.cacheObjectKey("https://example.com/book.epd")
	if !strings.HasPrefix(k, "/s3cache/") || len(k) != len("/s3cache/")+32 {
		t.Errorf("unexpected cache key %q", k)
	}
	if zipped.cacheObjectKey("https://example.com/book.epd") != k+".gz" {
		t.Errorf("gzip key should extend plain key")
	}
}

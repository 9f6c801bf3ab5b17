/* Copyright (c) 2013 The s3cache AUTHORS. All rights reserved.
 * Copyright (c) 2025-2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 *
 * Package s3store keeps match artifacts in Amazon S3. A Store serves two
 * roles: it is an httpcache.Cache for downloaded opening books, and it
 * archives finished PGN game logs under a configurable prefix.
 */
package s3store

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const cachePrefix = "s3cache"

// Store reads and writes objects in a single S3 bucket.
type Store struct {
	// Config is the Amazon S3 configuration.
	Config aws.Config

	// Client is initialized in Init() from the default Config; callers may
	// override it with their own client.
	Client *s3.Client

	bucketName string

	// gzip compresses objects on write and decompresses cache entries on
	// read. Object keys get a ".gz" suffix.
	gzip bool

	ctx    context.Context
	logger zerolog.Logger
}

// New returns a Store for bucketName. Callers must invoke Init() before use.
func New(ctx context.Context, bucketName string, gzip bool) *Store {
	return &Store{
		ctx:        ctx,
		bucketName: bucketName,
		gzip:       gzip,
		logger:     log.With().Str("component", "s3store").Str("bucket", bucketName).Logger(),
	}
}

func (s *Store) Bucket() string {
	return s.bucketName
}

// Init loads credentials from the default sources (environment, shared
// config and credentials files) and checks that the bucket is reachable.
func (s *Store) Init() error {
	var err error
	s.Config, err = config.LoadDefaultConfig(s.ctx)
	if err != nil {
		return fmt.Errorf("s3store.init: failed to load AWS config: %w", err)
	}
	s.Client = s3.NewFromConfig(s.Config)

	if _, err = s.Client.HeadBucket(s.ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucketName),
	}); err != nil {
		return fmt.Errorf("s3store.init: head bucket failed for %s: %w", s.bucketName, err)
	}

	return nil
}

// Get implements httpcache.Cache.
func (s *Store) Get(key string) ([]byte, bool) {
	input := &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(s.cacheObjectKey(key)),
	}

	resp, err := s.Client.GetObject(s.ctx, input)
	if err != nil {
		var apiErr smithy.APIError
		// NoSuchKey is a plain miss
		if !(errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchKey") {
			s.logger.Warn().Err(err).Str("key", *input.Key).Msg("get failed")
		}
		return nil, false
	}
	defer resp.Body.Close()

	rdr := resp.Body
	if s.gzip {
		rdr, err = gzip.NewReader(rdr)
		if err != nil {
			s.logger.Warn().Err(err).Str("key", *input.Key).Msg("open compressed object failed")
			return nil, false
		}
		defer rdr.Close()
	}
	data, err := io.ReadAll(rdr)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", *input.Key).Msg("read failed")
		return nil, false
	}

	return data, true
}

// Set implements httpcache.Cache.
func (s *Store) Set(key string, data []byte) {
	if err := s.put(s.ctx, s.cacheObjectKey(key), bytes.NewReader(data)); err != nil {
		s.logger.Warn().Err(err).Msg("cache set failed")
	}
}

// Delete implements httpcache.Cache.
func (s *Store) Delete(key string) {
	_, err := s.Client.DeleteObject(s.ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(s.cacheObjectKey(key)),
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("cache delete failed")
	}
}

// Upload stores the contents of r under prefix/name and returns the final
// object key.
func (s *Store) Upload(ctx context.Context, prefix string, name string,
	r io.Reader) (string, error) {

	key := ObjectKey(prefix, name, s.gzip)
	if err := s.put(ctx, key, r); err != nil {
		return "", fmt.Errorf("s3store.upload: %w", err)
	}
	s.logger.Debug().Str("key", key).Msg("uploaded")

	return key, nil
}

func (s *Store) put(ctx context.Context, key string, r io.Reader) error {
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	}

	if s.gzip {
		var buf bytes.Buffer
		gw := gzip.NewWriter(&buf)
		if _, err := io.Copy(gw, r); err != nil {
			return fmt.Errorf("gzip %v: %w", key, err)
		}
		if err := gw.Close(); err != nil {
			return fmt.Errorf("gzip close %v: %w", key, err)
		}
		input.Body = &buf
		input.ContentEncoding = aws.String("gzip")
	} else {
		data, err := io.ReadAll(r)
		if err != nil {
			return fmt.Errorf("read %v: %w", key, err)
		}
		input.Body = bytes.NewReader(data)
	}

	if _, err := s.Client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("put %v/%v: %w", s.bucketName, key, err)
	}

	return nil
}

func (s *Store) cacheObjectKey(key string) string {
	h := md5.New()
	io.WriteString(h, key)
	objKey := fmt.Sprintf("/%v/%v", cachePrefix, hex.EncodeToString(h.Sum(nil)))
	if s.gzip {
		objKey += ".gz"
	}

	return objKey
}

// ObjectKey joins an archive prefix and file name into an S3 key.
func ObjectKey(prefix string, name string, gzip bool) string {
	key := path.Join(strings.Trim(prefix, "/"), path.Base(name))
	if gzip {
		key += ".gz"
	}
	return key
}

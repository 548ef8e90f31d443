// Package storage writes user-requested bookmark snapshots to local disk or
// to an S3-compatible bucket.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bilgisen/veritas/internal/config"
	"github.com/bilgisen/veritas/internal/models"
)

// Sink stores a named blob and returns where it ended up.
type Sink interface {
	Put(ctx context.Context, name string, data []byte) (string, error)
}

// Snapshot is the exported document.
type Snapshot struct {
	ExportedAt time.Time        `json:"exported_at"`
	Count      int              `json:"count"`
	Articles   []models.Article `json:"articles"`
}

// NewSink returns an S3Sink when R2 credentials are configured and a FileSink otherwise.
func NewSink(ctx context.Context, cfg *config.Config) (Sink, error) {
	if cfg.S3Enabled() {
		s3Sink, err := NewS3Sink(ctx, S3Options{
			Endpoint:  cfg.R2Endpoint,
			Region:    cfg.R2Region,
			AccessKey: cfg.R2AccessKey,
			SecretKey: cfg.R2SecretKey,
			Bucket:    cfg.R2Bucket,
		})
		if err != nil {
			return nil, err
		}
		return s3Sink, nil
	}

	fileSink, err := NewFileSink(cfg.ExportPath)
	if err != nil {
		return nil, err
	}
	return fileSink, nil
}

// ExportBookmarks writes one JSON snapshot of list to sink.
func ExportBookmarks(ctx context.Context, sink Sink, list []models.Article) (string, error) {
	now := time.Now().UTC()
	if list == nil {
		list = []models.Article{}
	}
	data, err := json.MarshalIndent(Snapshot{
		ExportedAt: now,
		Count:      len(list),
		Articles:   list,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal bookmarks: %w", err)
	}

	name := fmt.Sprintf("bookmarks_%d.json", now.UnixNano())
	loc, err := sink.Put(ctx, name, data)
	if err != nil {
		return "", fmt.Errorf("failed to export bookmarks: %w", err)
	}
	return loc, nil
}

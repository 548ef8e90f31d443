package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/bilgisen/veritas/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSinkExportRoundTrip(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewFileSink(dir)
	require.NoError(t, err)
	sink.now = func() time.Time { return time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC) }

	loc, err := ExportBookmarks(context.Background(), sink, []models.Article{{ID: 42, Title: "기사"}})
	require.NoError(t, err)
	assert.Contains(t, loc, "2024/03/09")

	files, err := sink.List(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{loc}, files)

	snap, err := sink.Read(loc)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Count)
	assert.Equal(t, 42, snap.Articles[0].ID)
}

func TestExportEmptyList(t *testing.T) {
	sink, err := NewFileSink(t.TempDir())
	require.NoError(t, err)

	loc, err := ExportBookmarks(context.Background(), sink, nil)
	require.NoError(t, err)
	snap, err := sink.Read(loc)
	require.NoError(t, err)
	assert.Zero(t, snap.Count)
	assert.NotNil(t, snap.Articles)
}

func TestFileSinkHonoursContext(t *testing.T) {
	sink, err := NewFileSink(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = sink.Put(ctx, "x.json", []byte("{}"))
	assert.ErrorIs(t, err, context.Canceled)
}

type fakePutter struct {
	in   *s3.PutObjectInput
	body string
	err  error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	b, _ := io.ReadAll(in.Body)
	f.body = string(b)
	return &s3.PutObjectOutput{}, f.err
}

func TestS3SinkPut(t *testing.T) {
	fake := &fakePutter{}
	sink := &S3Sink{
		client: fake,
		bucket: "veritas",
		prefix: "exports",
		now:    func() time.Time { return time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC) },
	}

	loc, err := sink.Put(context.Background(), "bookmarks_1.json", []byte(`{"count":0}`))
	require.NoError(t, err)
	assert.Equal(t, "s3://veritas/exports/2024/03/09/bookmarks_1.json", loc)
	assert.Equal(t, "veritas", aws.ToString(fake.in.Bucket))
	assert.Equal(t, "application/json", aws.ToString(fake.in.ContentType))
	assert.True(t, strings.Contains(fake.body, "count"))

	fake.err = errors.New("denied")
	_, err = sink.Put(context.Background(), "b.json", nil)
	assert.Error(t, err)
}

func TestNewS3SinkRequiresBucket(t *testing.T) {
	_, err := NewS3Sink(context.Background(), S3Options{})
	assert.Error(t, err)
}

package blob

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/smithy-go"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nhle/todolist/internal/apperr"
	"github.com/nhle/todolist/internal/config"
)

func TestFSStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewFSStore(afero.NewMemMapFs())

	body := []byte("hello attachment")
	require.NoError(t, s.Put(ctx, "todo-1/20240101_120000_a.txt", bytes.NewReader(body), int64(len(body)), "text/plain"))

	rc, err := s.Get(ctx, "todo-1/20240101_120000_a.txt")
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, body, got)

	url, err := s.SignedURL(ctx, "todo-1/20240101_120000_a.txt", time.Hour)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "file://"))

	require.NoError(t, s.Delete(ctx, "todo-1/20240101_120000_a.txt"))
	_, err = s.Get(ctx, "todo-1/20240101_120000_a.txt")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	assert.NoError(t, s.Delete(ctx, "todo-1/20240101_120000_a.txt"), "deleting twice succeeds")
	_, err = s.SignedURL(ctx, "todo-1/missing", time.Hour)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCheckKey(t *testing.T) {
	for _, key := range []string{"", "/abs", "../up", "a/../../b", "a//b"} {
		t.Run(key, func(t *testing.T) {
			assert.ErrorIs(t, checkKey(key), apperr.ErrStorage)
		})
	}
	assert.NoError(t, checkKey("todo/20240101_000000_x.pdf"))
}

func TestMapS3Error(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"no such key", &smithy.GenericAPIError{Code: "NoSuchKey"}, apperr.ErrNotFound},
		{"head not found", &smithy.GenericAPIError{Code: "NotFound"}, apperr.ErrNotFound},
		{"too large", &smithy.GenericAPIError{Code: "EntityTooLarge"}, apperr.ErrPayloadTooLarge},
		{"access denied", &smithy.GenericAPIError{Code: "AccessDenied", Message: "nope"}, apperr.ErrStorage},
		{"transport", errors.New("connection refused"), apperr.ErrStorage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, mapS3Error("op", "key", tt.err), tt.want)
		})
	}
}

func TestS3Store_SignedURL(t *testing.T) {
	ctx := context.Background()
	s, err := NewS3Store(ctx, config.StorageConfig{
		Endpoint:    "http://localhost:9000",
		Region:      "us-east-1",
		Bucket:      "todo-attachments",
		AccessKeyID: "todolist",
		PathStyle:   true,
	}, "secret", zap.NewNop())
	require.NoError(t, err)

	url, err := s.SignedURL(ctx, "todo-1/20240101_120000_report.pdf", time.Hour)
	require.NoError(t, err)
	assert.Contains(t, url, "http://localhost:9000/todo-attachments/todo-1/20240101_120000_report.pdf")
	assert.Contains(t, url, "X-Amz-Expires=3600")

	_, err = s.SignedURL(ctx, "../escape", time.Hour)
	assert.ErrorIs(t, err, apperr.ErrStorage)
}

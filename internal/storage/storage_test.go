package storage

import (
	"context"
	"io"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newLocal(t *testing.T) *LocalStorage {
	t.Helper()
	s, err := NewLocalStorage(t.TempDir(), "http://localhost:8080/", NewSigner("test-secret"))
	require.NoError(t, err)
	return s
}

func TestLocalStorage_PutStatDownloadDelete(t *testing.T) {
	s := newLocal(t)
	ctx := context.Background()
	key := NewObjectKey("photos", "Site.JPG")
	assert.True(t, strings.HasPrefix(key, "photos/"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))

	size, err := s.Put(ctx, key, "image/jpeg", strings.NewReader("jpeg-bytes"))
	require.NoError(t, err)
	assert.EqualValues(t, 10, size)

	info, err := s.Stat(ctx, key)
	require.NoError(t, err)
	assert.EqualValues(t, 10, info.Size)

	rc, err := s.Download(ctx, key)
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(body))

	require.NoError(t, s.Delete(ctx, key))
	require.NoError(t, s.Delete(ctx, key), "deleting twice is not an error")

	_, err = s.Stat(ctx, key)
	assert.True(t, IsNotFound(err))
}

func TestLocalStorage_RejectsEscapingKeys(t *testing.T) {
	s := newLocal(t)
	for _, key := range []string{"", "../etc/passwd", "photos/../../x", "/abs", "photos/"} {
		_, err := s.Put(context.Background(), key, "text/plain", strings.NewReader("x"))
		assert.ErrorIs(t, err, ErrInvalidKey, key)
	}
}

func TestLocalStorage_SignedURLs(t *testing.T) {
	s := newLocal(t)
	ctx := context.Background()
	key := "documents/ab/plan.pdf"

	up, err := s.UploadURL(ctx, key, "application/pdf", time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "PUT", up.Method)
	require.True(t, strings.HasPrefix(up.URL, "http://localhost:8080/api/v1/uploads/"))

	token := strings.TrimPrefix(up.URL, "http://localhost:8080/api/v1/uploads/")
	got, err := s.VerifyUploadToken(token)
	require.NoError(t, err)
	assert.Equal(t, key, got)

	_, err = s.VerifyDownloadToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken, "upload tokens cannot download")

	down, err := s.DownloadURL(ctx, key, time.Now().Add(time.Minute))
	require.NoError(t, err)
	parsed, err := url.Parse(down)
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/files", parsed.Path)
	got, err = s.VerifyDownloadToken(parsed.Query().Get("token"))
	require.NoError(t, err)
	assert.Equal(t, key, got)
}

func TestSigner_Expired(t *testing.T) {
	signer := NewSigner("test-secret")
	token, err := signer.Sign("photos/a.jpg", PurposeDownload, time.Now().Add(-time.Minute))
	require.NoError(t, err)

	_, err = signer.Verify(token, PurposeDownload)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewSigner("other").Verify(token, PurposeDownload)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

type countingStore struct {
	*LocalStorage
	calls atomic.Int32
}

func (c *countingStore) DownloadURL(ctx context.Context, key string, expiresAt time.Time) (string, error) {
	c.calls.Add(1)
	return c.LocalStorage.DownloadURL(ctx, key, expiresAt)
}

func TestResolver_CachesInRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := &countingStore{LocalStorage: newLocal(t)}
	resolver := NewResolver(store, NewURLCache(client), time.Hour, zap.NewNop())
	ctx := context.Background()

	urls, err := resolver.URLs(ctx, []string{"photos/a.jpg", "photos/b.jpg", "photos/a.jpg", ""})
	require.NoError(t, err)
	assert.Len(t, urls, 2)
	assert.EqualValues(t, 2, store.calls.Load())

	again, err := resolver.URL(ctx, "photos/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, urls["photos/a.jpg"], again)
	assert.EqualValues(t, 2, store.calls.Load(), "second resolution is served from cache")

	assert.Equal(t, 30*time.Minute, mr.TTL(urlCachePrefix+"photos/a.jpg"))

	require.NoError(t, resolver.Forget(ctx, "photos/a.jpg"))
	assert.False(t, mr.Exists(urlCachePrefix+"photos/a.jpg"))
	_, err = resolver.URL(ctx, "photos/a.jpg")
	require.NoError(t, err)
	assert.EqualValues(t, 3, store.calls.Load())
}

func TestResolver_WithoutCache(t *testing.T) {
	store := &countingStore{LocalStorage: newLocal(t)}
	resolver := NewResolver(store, NewURLCache(nil), time.Hour, zap.NewNop())

	for i := 0; i < 2; i++ {
		_, err := resolver.URL(context.Background(), "photos/a.jpg")
		require.NoError(t, err)
	}
	assert.EqualValues(t, 2, store.calls.Load())
	assert.NoError(t, resolver.Forget(context.Background(), "photos/a.jpg"))
}

func TestResolver_PropagatesErrors(t *testing.T) {
	resolver := NewResolver(newLocal(t), nil, time.Hour, zap.NewNop())
	_, err := resolver.URLs(context.Background(), []string{"photos/ok.jpg", "../bad"})
	assert.ErrorIs(t, err, ErrInvalidKey)
}

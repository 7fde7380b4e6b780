package imagegen

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	files map[string][]byte
}

func (s *fakeStore) Open(fileID string) (io.ReadCloser, error) {
	data, ok := s.files[fileID]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", fileID)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// memCache 内存版 GetOrLoad，用于验证缓存命中路径
type memCache struct {
	data  map[string][]byte
	loads int
}

func (c *memCache) GetOrLoad(ctx context.Context, key string, ttl time.Duration, loader func() ([]byte, error)) ([]byte, error) {
	if v, ok := c.data[key]; ok {
		return v, nil
	}
	c.loads++
	v, err := loader()
	if err != nil {
		return nil, err
	}
	if c.data == nil {
		c.data = make(map[string][]byte)
	}
	c.data[key] = v
	return v, nil
}

func TestNormalize_DataURLPassthrough(t *testing.T) {
	p := NewPreprocessor(nil, nil, 0)

	in := []string{"data:image/png;base64,AAAA"}
	out := p.Normalize(context.Background(), in)
	assert.Equal(t, in, out)
}

func TestNormalize_RemoteURL(t *testing.T) {
	payload := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(payload)
	}))
	defer srv.Close()

	p := NewPreprocessor(nil, nil, 0)
	out := p.Normalize(context.Background(), []string{srv.URL + "/img.png"})

	require.Len(t, out, 1)
	assert.True(t, strings.HasPrefix(out[0], "data:image/png;base64,"))
	encoded := strings.TrimPrefix(out[0], "data:image/png;base64,")
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)
	assert.Equal(t, payload, decoded)
}

func TestNormalize_FileStoreID(t *testing.T) {
	store := &fakeStore{files: map[string][]byte{
		"abc.png": []byte("png-bytes"),
	}}
	p := NewPreprocessor(nil, store, 0)

	out := p.Normalize(context.Background(), []string{"abc.png"})
	require.Len(t, out, 1)
	assert.True(t, strings.HasPrefix(out[0], "data:image/png;base64,"))
}

func TestNormalize_PartialFailurePreservesOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	store := &fakeStore{files: map[string][]byte{
		"first.png": []byte("one"),
		"third.png": []byte("three"),
	}}
	p := NewPreprocessor(nil, store, 0)

	out := p.Normalize(context.Background(), []string{
		"first.png",
		srv.URL + "/missing.png",
		"third.png",
	})

	// 失败的一张被丢弃，其余顺序不变，没有占位符
	require.Len(t, out, 2)
	assert.Contains(t, out[0], base64.StdEncoding.EncodeToString([]byte("one")))
	assert.Contains(t, out[1], base64.StdEncoding.EncodeToString([]byte("three")))
}

func TestNormalize_AllFailures(t *testing.T) {
	p := NewPreprocessor(nil, &fakeStore{}, 0)

	out := p.Normalize(context.Background(), []string{"missing-1.png", "missing-2.png"})
	assert.Empty(t, out)
}

func TestNormalize_NonImageRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>not an image</html>"))
	}))
	defer srv.Close()

	p := NewPreprocessor(nil, nil, 0)
	out := p.Normalize(context.Background(), []string{srv.URL})
	assert.Empty(t, out)
}

func TestNormalize_CachedDownload(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("payload"))
	}))
	defer srv.Close()

	cache := &memCache{}
	p := NewPreprocessor(cache, nil, time.Minute)

	url := srv.URL + "/img.png"
	first := p.Normalize(context.Background(), []string{url})
	second := p.Normalize(context.Background(), []string{url})

	require.Len(t, first, 1)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, cache.loads)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/chapter-images/pkg/types"
)

// recordingConverter copies the source into the destination, failing the
// way a real converter does when the source is missing.
type recordingConverter struct {
	calls [][2]string
}

func (r *recordingConverter) Convert(svgPath, pngPath string) error {
	r.calls = append(r.calls, [2]string{svgPath, pngPath})
	data, err := os.ReadFile(svgPath)
	if err != nil {
		return fmt.Errorf("opening SVG %s: %w", svgPath, err)
	}
	return os.WriteFile(pngPath, append([]byte("PNG "), data...), 0o644)
}

type memRecorder struct {
	chapters []types.Chapter
	err      error
}

func (m *memRecorder) Record(_ context.Context, ch types.Chapter) error {
	if m.err != nil {
		return m.err
	}
	m.chapters = append(m.chapters, ch)
	return nil
}

// chapterServer serves "svg-NNN" for /uploads/NNN.svg and remembers the
// order and time of each request.
type chapterServer struct {
	mu       sync.Mutex
	paths    []string
	times    []time.Time
	notFound map[string]bool
}

func (s *chapterServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.paths = append(s.paths, r.URL.Path)
	s.times = append(s.times, time.Now())
	s.mu.Unlock()

	name := strings.TrimSuffix(filepath.Base(r.URL.Path), ".svg")
	if s.notFound[name] {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, "<html>not found</html>")
		return
	}
	fmt.Fprintf(w, "svg-%s", name)
}

func testConfig(t *testing.T, baseURL string, first, last int) types.FetchConfig {
	t.Helper()
	root := t.TempDir()
	cfg := types.DefaultFetchConfig()
	cfg.BaseURL = baseURL
	cfg.First, cfg.Last = first, last
	cfg.Delay = 0
	cfg.SVGDir = filepath.Join(root, "svgs")
	cfg.PNGDir = filepath.Join(root, "pngs")
	return cfg
}

func TestRun_WritesBodiesVerbatimAndConverts(t *testing.T) {
	srv := &chapterServer{}
	ts := httptest.NewServer(srv)
	defer ts.Close()

	cfg := testConfig(t, ts.URL+"/uploads/", 1, 3)
	conv := &recordingConverter{}
	rec := &memRecorder{}
	var log bytes.Buffer

	result, err := Run(context.Background(), ts.Client(), conv, cfg, rec, &log)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Fetched)
	assert.Equal(t, 3, result.Converted)
	assert.Equal(t, []string{"/uploads/001.svg", "/uploads/002.svg", "/uploads/003.svg"}, srv.paths)

	layout := LayoutFor(cfg)
	for i := 1; i <= 3; i++ {
		pad := PaddedIndex(i)
		data, err := os.ReadFile(layout.VectorPath(i))
		require.NoError(t, err)
		assert.Equal(t, "svg-"+pad, string(data))

		png, err := os.ReadFile(layout.RasterPath(i))
		require.NoError(t, err)
		assert.Equal(t, "PNG svg-"+pad, string(png))

		assert.Equal(t, [2]string{layout.VectorPath(i), layout.RasterPath(i)}, conv.calls[i-1])
	}

	require.Len(t, rec.chapters, 3)
	assert.Equal(t, http.StatusOK, rec.chapters[0].StatusCode)
	assert.Equal(t, int64(len("svg-001")), rec.chapters[0].Bytes)
	assert.True(t, rec.chapters[2].Converted)

	out := log.String()
	assert.Contains(t, out, "downloading "+ts.URL+"/uploads/001.svg")
	assert.Contains(t, out, "saving to "+layout.VectorPath(1)+" ...")
	assert.Contains(t, out, "converting to PNG in "+layout.RasterPath(1)+" ...")
	assert.Contains(t, out, "done: 3 fetched, 3 converted")
}

func TestRun_BinaryBodyWrittenVerbatim(t *testing.T) {
	body := []byte{0x00, 0xff, 0xfe, '<', 's', 'v', 'g', 0x80, 0x00, '\r', '\n'}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/svg+xml")
		w.Write(body)
	}))
	defer ts.Close()

	cfg := testConfig(t, ts.URL+"/", 7, 7)
	cfg.SkipConvert = true

	result, err := Run(context.Background(), ts.Client(), nil, cfg, nil, io.Discard)
	require.NoError(t, err)
	require.Len(t, result.Chapters, 1)
	assert.Equal(t, int64(len(body)), result.Chapters[0].Bytes)

	data, err := os.ReadFile(LayoutFor(cfg).VectorPath(7))
	require.NoError(t, err)
	assert.True(t, bytes.Equal(body, data), "got % x", data)
}

func TestRun_FullRange(t *testing.T) {
	srv := &chapterServer{}
	ts := httptest.NewServer(srv)
	defer ts.Close()

	cfg := testConfig(t, ts.URL+"/", types.DefaultFirst, types.DefaultLast)
	conv := &recordingConverter{}

	result, err := Run(context.Background(), ts.Client(), conv, cfg, nil, &bytes.Buffer{})
	require.NoError(t, err)

	assert.Equal(t, 114, result.Fetched)
	require.Len(t, conv.calls, 114)

	seen := make(map[string]bool)
	for i, call := range conv.calls {
		pad := PaddedIndex(i + 1)
		assert.Equal(t, "chapter_"+pad+".svg", filepath.Base(call[0]))
		assert.Equal(t, "chapter_"+pad+".png", filepath.Base(call[1]))
		seen[call[0]] = true
	}
	assert.Len(t, seen, 114)
}

func TestRun_ErrorStatusBodyIsStillWritten(t *testing.T) {
	srv := &chapterServer{notFound: map[string]bool{"002": true}}
	ts := httptest.NewServer(srv)
	defer ts.Close()

	cfg := testConfig(t, ts.URL+"/", 1, 3)
	cfg.SkipConvert = true
	rec := &memRecorder{}

	result, err := Run(context.Background(), ts.Client(), nil, cfg, rec, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Fetched)
	assert.Equal(t, 0, result.Converted)

	data, err := os.ReadFile(LayoutFor(cfg).VectorPath(2))
	require.NoError(t, err)
	assert.Equal(t, "<html>not found</html>", string(data))
	assert.Equal(t, http.StatusNotFound, rec.chapters[1].StatusCode)
	assert.False(t, rec.chapters[1].Converted)
}

func TestRun_LegacySourcePathFailsNotFound(t *testing.T) {
	ts := httptest.NewServer(&chapterServer{})
	defer ts.Close()

	cfg := testConfig(t, ts.URL+"/", 1, 3)
	cfg.LegacySourcePath = true
	conv := &recordingConverter{}

	result, err := Run(context.Background(), ts.Client(), conv, cfg, nil, &bytes.Buffer{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist), "got %v", err)
	assert.Contains(t, err.Error(), "chapter 001: converting")
	assert.Equal(t, 0, result.Fetched)

	layout := LayoutFor(cfg)
	require.Len(t, conv.calls, 1)
	assert.Equal(t, filepath.Join(cfg.SVGDir, "001.svg"), conv.calls[0][0])

	_, statErr := os.Stat(layout.VectorPath(1))
	assert.NoError(t, statErr, "the prefixed SVG is written before conversion")
}

func TestRun_LegacySourcePathUsesExistingUnprefixedFile(t *testing.T) {
	ts := httptest.NewServer(&chapterServer{})
	defer ts.Close()

	cfg := testConfig(t, ts.URL+"/", 1, 1)
	cfg.LegacySourcePath = true
	require.NoError(t, os.MkdirAll(cfg.SVGDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.SVGDir, "001.svg"), []byte("manual copy"), 0o644))

	_, err := Run(context.Background(), ts.Client(), &recordingConverter{}, cfg, nil, &bytes.Buffer{})
	require.NoError(t, err)

	png, err := os.ReadFile(LayoutFor(cfg).RasterPath(1))
	require.NoError(t, err)
	assert.Equal(t, "PNG manual copy", string(png))
}

func TestRun_NetworkErrorStopsRun(t *testing.T) {
	ts := httptest.NewServer(&chapterServer{})
	url := ts.URL + "/"
	ts.Close()

	cfg := testConfig(t, url, 1, 114)
	conv := &recordingConverter{}

	_, err := Run(context.Background(), http.DefaultClient, conv, cfg, nil, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chapter 001: downloading")
	assert.Empty(t, conv.calls)
}

func TestRun_ConversionErrorStopsRun(t *testing.T) {
	srv := &chapterServer{}
	ts := httptest.NewServer(srv)
	defer ts.Close()

	cfg := testConfig(t, ts.URL+"/", 1, 5)
	conv := &failingAt{index: 2, inner: &recordingConverter{}}

	result, err := Run(context.Background(), ts.Client(), conv, cfg, nil, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chapter 002")
	assert.Equal(t, 1, result.Fetched)
	assert.Len(t, srv.paths, 2, "no requests after the failed chapter")
}

func TestRun_RecorderErrorStopsRun(t *testing.T) {
	ts := httptest.NewServer(&chapterServer{})
	defer ts.Close()

	cfg := testConfig(t, ts.URL+"/", 1, 2)
	_, err := Run(context.Background(), ts.Client(), &recordingConverter{}, cfg, &memRecorder{err: errors.New("disk full")}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "recording: disk full")
}

func TestRun_DelayBetweenRequests(t *testing.T) {
	srv := &chapterServer{}
	ts := httptest.NewServer(srv)
	defer ts.Close()

	cfg := testConfig(t, ts.URL+"/", 1, 3)
	cfg.Delay = 30 * time.Millisecond

	_, err := Run(context.Background(), ts.Client(), &recordingConverter{}, cfg, nil, &bytes.Buffer{})
	require.NoError(t, err)

	require.Len(t, srv.times, 3)
	for i := 1; i < len(srv.times); i++ {
		gap := srv.times[i].Sub(srv.times[i-1])
		assert.GreaterOrEqual(t, gap, cfg.Delay, "gap between request %d and %d", i, i+1)
	}
}

func TestRun_CancelledDuringDelay(t *testing.T) {
	srv := &chapterServer{}
	ts := httptest.NewServer(srv)
	defer ts.Close()

	cfg := testConfig(t, ts.URL+"/", 1, 3)
	cfg.Delay = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	result, err := Run(ctx, ts.Client(), &recordingConverter{}, cfg, nil, &bytes.Buffer{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, result.Fetched)
}

func TestRun_DirectoriesAreIdempotent(t *testing.T) {
	ts := httptest.NewServer(&chapterServer{})
	defer ts.Close()

	cfg := testConfig(t, ts.URL+"/", 1, 1)
	require.NoError(t, os.MkdirAll(cfg.SVGDir, 0o755))
	require.NoError(t, os.MkdirAll(cfg.PNGDir, 0o755))
	unrelated := filepath.Join(cfg.PNGDir, "cover.png")
	require.NoError(t, os.WriteFile(unrelated, []byte("cover"), 0o644))

	for i := 0; i < 2; i++ {
		_, err := Run(context.Background(), ts.Client(), &recordingConverter{}, cfg, nil, &bytes.Buffer{})
		require.NoError(t, err)
	}

	data, err := os.ReadFile(unrelated)
	require.NoError(t, err)
	assert.Equal(t, "cover", string(data))
}

func TestRun_InvalidConfig(t *testing.T) {
	cfg := testConfig(t, "http://example.invalid/", 0, 3)
	_, err := Run(context.Background(), http.DefaultClient, &recordingConverter{}, cfg, nil, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")

	_, statErr := os.Stat(cfg.SVGDir)
	assert.ErrorIs(t, statErr, fs.ErrNotExist, "nothing is created for a bad config")
}

func TestRun_MissingConverter(t *testing.T) {
	cfg := testConfig(t, "http://example.invalid/", 1, 1)
	_, err := Run(context.Background(), http.DefaultClient, nil, cfg, nil, &bytes.Buffer{})
	assert.Error(t, err)
}

type failingAt struct {
	index int
	inner *recordingConverter
}

func (f *failingAt) Convert(svgPath, pngPath string) error {
	if strings.Contains(svgPath, "chapter_"+PaddedIndex(f.index)) {
		return errors.New("bad svg")
	}
	return f.inner.Convert(svgPath, pngPath)
}

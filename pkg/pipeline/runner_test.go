package pipeline

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/matzehuels/xkcdify/pkg/cache"
	"github.com/matzehuels/xkcdify/pkg/errors"
)

// memCache is an in-memory cache.Cache that counts operations.
type memCache struct {
	mu         sync.Mutex
	data       map[string][]byte
	gets, sets int
}

func newMemCache() *memCache { return &memCache{data: make(map[string][]byte)} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.data[key] = data
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memCache) Close() error { return nil }

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func TestRunnerExecuteCaches(t *testing.T) {
	ctx := context.Background()
	mc := newMemCache()
	r := NewRunner(mc, nil, quietLogger())
	defer r.Close()

	first, err := r.Execute(ctx, []byte(squareDoc), DefaultOptions())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if first.CacheHit {
		t.Error("first run should miss")
	}
	if !strings.HasPrefix(string(first.Output), "<svg") {
		t.Errorf("Output = %.40q", first.Output)
	}
	if first.Stats.Paths != 1 {
		t.Errorf("Paths = %d", first.Stats.Paths)
	}

	second, err := r.Execute(ctx, []byte(squareDoc), DefaultOptions())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !second.CacheHit {
		t.Error("second run should hit")
	}
	if string(second.Output) != string(first.Output) || second.Stats.Segments != first.Stats.Segments {
		t.Error("cached result differs")
	}

	refresh := DefaultOptions()
	refresh.Refresh = true
	if res, err := r.Execute(ctx, []byte(squareDoc), refresh); err != nil || res.CacheHit {
		t.Errorf("Refresh: hit %v, err %v", res != nil && res.CacheHit, err)
	}

	reseeded := DefaultOptions()
	reseeded.Seed = 99
	res, err := r.Execute(ctx, []byte(squareDoc), reseeded)
	if err != nil {
		t.Fatal(err)
	}
	if res.CacheHit {
		t.Error("a different seed should miss")
	}
	if string(res.Output) == string(first.Output) {
		t.Error("a different seed should change the output")
	}
}

func TestRunnerWithFileCache(t *testing.T) {
	ctx := context.Background()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(fc, cache.NewScopedKeyer(nil, "test:"), quietLogger())

	if _, err := r.Execute(ctx, []byte(squareDoc), DefaultOptions()); err != nil {
		t.Fatal(err)
	}
	res, err := r.Execute(ctx, []byte(squareDoc), DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if !res.CacheHit {
		t.Error("second run should hit the file cache")
	}
	stats, err := fc.Stats()
	if err != nil || stats.Entries != 1 {
		t.Errorf("file cache stats = %+v, %v", stats, err)
	}
}

func TestRunnerExecuteErrors(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(nil, nil, quietLogger())

	if _, err := r.Execute(ctx, []byte("<html/>"), DefaultOptions()); !errors.Is(err, errors.ErrCodeInvalidDocument) {
		t.Errorf("non-svg root: err = %v", err)
	}

	bad := DefaultOptions()
	bad.RNG = "dice"
	if _, err := r.Execute(ctx, []byte(squareDoc), bad); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("bad options: err = %v", err)
	}

	if _, err := r.ExecuteFile(ctx, filepath.Join(t.TempDir(), "missing.svg"), DefaultOptions()); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("missing file: err = %v", err)
	}
}

func TestRunnerExecuteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.svg")
	if err := os.WriteFile(path, []byte(squareDoc), 0644); err != nil {
		t.Fatal(err)
	}
	r := NewRunner(nil, nil, quietLogger())
	res, err := r.ExecuteFile(context.Background(), path, DefaultOptions())
	if err != nil {
		t.Fatalf("ExecuteFile: %v", err)
	}
	if res.Stats.Paths != 1 {
		t.Errorf("Paths = %d", res.Stats.Paths)
	}
}

func writeFont(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "go.ttf")
	if err := os.WriteFile(path, goregular.TTF, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunnerResolveFontFile(t *testing.T) {
	ctx := context.Background()
	mc := newMemCache()
	r := NewRunner(mc, nil, quietLogger())
	path := writeFont(t)

	family, err := r.ResolveFontFile(ctx, path)
	if err != nil {
		t.Fatalf("ResolveFontFile: %v", err)
	}
	if family != "Go" {
		t.Errorf("family = %q, want Go", family)
	}
	if mc.sets != 1 {
		t.Errorf("sets = %d, want 1", mc.sets)
	}

	if _, err := r.ResolveFontFile(ctx, path); err != nil {
		t.Fatal(err)
	}
	if mc.sets != 1 {
		t.Error("second lookup should come from the cache")
	}

	if _, err := r.ResolveFontFile(ctx, filepath.Join(t.TempDir(), "none.ttf")); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("missing font: err = %v", err)
	}

	garbage := filepath.Join(t.TempDir(), "junk.otf")
	if err := os.WriteFile(garbage, []byte("not a font"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := r.ResolveFontFile(ctx, garbage); !errors.Is(err, errors.ErrCodeInvalidFont) {
		t.Errorf("junk font: err = %v", err)
	}
}

func TestRunnerExecuteWithFontFile(t *testing.T) {
	src := `<svg xmlns="http://www.w3.org/2000/svg"><text style="font-family:Arial">hi</text></svg>`
	opts := DefaultOptions()
	opts.ReplaceFont = true
	opts.FontFile = writeFont(t)

	r := NewRunner(newMemCache(), nil, quietLogger())
	res, err := r.Execute(context.Background(), []byte(src), opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(string(res.Output), "font-family:Go") {
		t.Errorf("Output = %s", res.Output)
	}
}

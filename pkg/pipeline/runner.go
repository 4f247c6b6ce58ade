package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/xkcdify/pkg/cache"
	"github.com/matzehuels/xkcdify/pkg/errors"
	"github.com/matzehuels/xkcdify/pkg/fonts"
	"github.com/matzehuels/xkcdify/pkg/observability"
	"github.com/matzehuels/xkcdify/pkg/svg"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it so the caching logic lives in one place.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute parses input, processes it and encodes the result. Results are
// cached under a hash of the input and the options.
func (r *Runner) Execute(ctx context.Context, input []byte, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	if opts.ReplaceFont && opts.FontFile != "" {
		family, err := r.ResolveFontFile(ctx, opts.FontFile)
		if err != nil {
			return nil, err
		}
		opts.FontFamily, opts.FontFile = family, ""
	}

	cacheKey := r.Keyer.SketchKey(cache.Hash(input), opts.SketchKeyOpts())
	if !opts.Refresh {
		if res, ok := r.cached(ctx, cacheKey); ok {
			r.Logger.Debug("cache hit", "key", cacheKey)
			return res, nil
		}
	}

	parseStart := time.Now()
	doc, err := svg.Parse(bytes.NewReader(input))
	if err != nil {
		return nil, err
	}
	parseTime := time.Since(parseStart)

	result, err := Process(ctx, doc, opts)
	if err != nil {
		return nil, err
	}
	result.Stats.ParseTime = parseTime

	encodeStart := time.Now()
	var buf bytes.Buffer
	if err := doc.Encode(&buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode document")
	}
	result.Output = buf.Bytes()
	result.Stats.EncodeTime = time.Since(encodeStart)

	r.Logger.Info("sketched document",
		"paths", result.Stats.Paths,
		"segments", result.Stats.Segments,
		"fonts", result.Stats.Fonts,
		"failed", len(result.Failed),
		"duration", result.Stats.ParseTime+result.Stats.SketchTime+result.Stats.EncodeTime)

	if data, err := json.Marshal(result); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.SketchTTL); err != nil {
			r.Logger.Warn("cache write failed", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "sketch", len(data))
		}
	}
	return result, nil
}

// ExecuteFile is Execute on the contents of a file.
func (r *Runner) ExecuteFile(ctx context.Context, path string, opts Options) (*Result, error) {
	input, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeNotFound, err, "input %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "read %s", path)
	}
	return r.Execute(ctx, input, opts)
}

func (r *Runner) cached(ctx context.Context, key string) (*Result, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "err", err)
		return nil, false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, "sketch")
		return nil, false
	}
	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		// Undecodable entry: fall through to recompute
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, "sketch")
	res.CacheHit = true
	return &res, true
}

// ResolveFontFile returns the family name of a font file, caching it by the
// file's content hash.
func (r *Runner) ResolveFontFile(ctx context.Context, path string) (string, error) {
	if err := errors.ValidateFontPath(path); err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.Wrap(errors.ErrCodeNotFound, err, "font file %s", path)
		}
		return "", errors.Wrap(errors.ErrCodeInvalidFont, err, "read %s", path)
	}

	key := r.Keyer.FontKey(cache.Hash(data))
	if cached, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, "font")
		return string(cached), nil
	}
	observability.Cache().OnCacheMiss(ctx, "font")

	family, err := fonts.FamilyFromBytes(data)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidFont, err, "%s", path)
	}
	if err := errors.ValidateFontFamily(family); err != nil {
		return "", err
	}
	if err := r.Cache.Set(ctx, key, []byte(family), cache.FontTTL); err == nil {
		observability.Cache().OnCacheSet(ctx, "font", len(family))
	}
	r.Logger.Debug("resolved font file", "path", path, "family", family)
	return family, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

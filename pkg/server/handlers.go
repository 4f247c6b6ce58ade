package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/matzehuels/xkcdify/pkg/buildinfo"
	"github.com/matzehuels/xkcdify/pkg/errors"
	"github.com/matzehuels/xkcdify/pkg/pipeline"
)

// Response headers of POST /v1/sketch.
const (
	HeaderCache  = "X-Cache" // HIT or MISS
	HeaderPaths  = "X-Xkcdify-Paths"
	HeaderFailed = "X-Xkcdify-Failed"
)

type healthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Build: buildinfo.Get()})
}

type presetsResponse struct {
	Presets []string `json:"presets"`
}

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, presetsResponse{Presets: s.cfg.PresetNames()})
}

// sketchResponse is the JSON form of a result. Output is the document text.
type sketchResponse struct {
	RequestID string             `json:"request_id"`
	Output    string             `json:"output"`
	Failed    []pipeline.Failure `json:"failed"`
	Stats     pipeline.Stats     `json:"stats"`
	Cached    bool               `json:"cached"`
}

func (s *Server) handleSketch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts, err := s.cfg.Options(q.Get("preset"))
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	if err := applyQuery(&opts, q); err != nil {
		s.writeErr(w, r, err)
		return
	}
	opts.Logger = s.logger.With("request_id", RequestID(r.Context()))

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			writeError(w, r, http.StatusRequestEntityTooLarge, "TOO_LARGE",
				"request body exceeds "+strconv.FormatInt(tooLarge.Limit, 10)+" bytes")
			return
		}
		writeError(w, r, http.StatusBadRequest, string(errors.ErrCodeInvalidDocument), "read body: "+err.Error())
		return
	}
	if len(body) == 0 {
		writeError(w, r, http.StatusBadRequest, string(errors.ErrCodeInvalidDocument), "empty request body")
		return
	}

	res, err := s.runner.Execute(r.Context(), body, opts)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}

	cacheState := "MISS"
	if res.CacheHit {
		cacheState = "HIT"
	}
	w.Header().Set(HeaderCache, cacheState)
	w.Header().Set(HeaderPaths, strconv.Itoa(res.Stats.Paths))
	w.Header().Set(HeaderFailed, strconv.Itoa(len(res.Failed)))

	if opts.Format == pipeline.FormatJSON {
		failed := res.Failed
		if failed == nil {
			failed = []pipeline.Failure{}
		}
		writeJSON(w, http.StatusOK, sketchResponse{
			RequestID: RequestID(r.Context()),
			Output:    string(res.Output),
			Failed:    failed,
			Stats:     res.Stats,
			Cached:    res.CacheHit,
		})
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Output)
}

// applyQuery overrides opts with the options present in q. Unknown
// parameters are rejected. Like --font on the command line, font_family
// turns on replace_font unless replace_font is given.
func applyQuery(opts *pipeline.Options, q url.Values) error {
	if q.Has("font_family") && !q.Has("replace_font") {
		opts.ReplaceFont = true
	}
	for key, vals := range q {
		v := vals[len(vals)-1]
		var err error
		switch key {
		case "preset":
		case "scale":
			opts.Scale, err = parseFloat(key, v)
		case "wavelength":
			opts.Wavelength, err = parseFloat(key, v)
		case "randomness":
			opts.Randomness, err = parseFloat(key, v)
		case "max_segment_length":
			opts.MaxSegmentLength = v
		case "seed":
			opts.Seed, err = strconv.ParseInt(v, 10, 64)
		case "rng":
			opts.RNG = v
		case "precision":
			opts.Precision, err = strconv.Atoi(v)
		case "format":
			opts.Format = v
		case "select":
			opts.Select = nil
			for _, val := range vals {
				for _, id := range strings.Split(val, ",") {
					if id = strings.TrimSpace(id); id != "" {
						opts.Select = append(opts.Select, id)
					}
				}
			}
		case "replace_font":
			opts.ReplaceFont, err = strconv.ParseBool(v)
		case "font_family":
			opts.FontFamily = v
		case "strict":
			opts.Strict, err = strconv.ParseBool(v)
		case "refresh":
			opts.Refresh, err = strconv.ParseBool(v)
		case "font_file":
			return errors.New(errors.ErrCodeUnsupported, "font_file is not accepted over HTTP; use font_family")
		default:
			return errors.New(errors.ErrCodeInvalidConfig, "unknown parameter %q", key)
		}
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parameter %s", key)
		}
	}
	return nil
}

func parseFloat(key, v string) (float64, error) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, err
	}
	return f, errors.ValidateFinite(key, f)
}

type errorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

// statusFor maps error codes to HTTP status codes.
func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidConfig, errors.ErrCodeInvalidUnit, errors.ErrCodeInvalidPathData,
		errors.ErrCodeInvalidGeometry, errors.ErrCodeInvalidDocument, errors.ErrCodeInvalidFont,
		errors.ErrCodeInvalidFormat, errors.ErrCodeUnsupported:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	if stderrors.Is(err, context.DeadlineExceeded) {
		writeError(w, r, http.StatusGatewayTimeout, "TIMEOUT", "request took longer than "+s.cfg.Server.Timeout.String())
		return
	}
	code := errors.GetCode(err)
	var elErr *errors.ElementError
	if stderrors.As(err, &elErr) {
		code = elErr.Code()
	}
	if code == "" {
		code = errors.ErrCodeInternal
	}
	msg := err.Error()
	if status := statusFor(code); status < 500 {
		writeError(w, r, status, string(code), msg)
		return
	}
	s.logger.Error("request failed", "err", err, "request_id", RequestID(r.Context()))
	writeError(w, r, http.StatusInternalServerError, string(code), "internal error")
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Code: code, Message: msg, RequestID: RequestID(r.Context())})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

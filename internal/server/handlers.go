package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io/fs"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/streettype/pkg/alphabet"
	"github.com/matzehuels/streettype/pkg/errors"
	"github.com/matzehuels/streettype/pkg/gallery"
	"github.com/matzehuels/streettype/pkg/pipeline"
)

// PNGFilename is the download name of rendered images.
const PNGFilename = "streettype.png"

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type variantsResponse struct {
	Char     string   `json:"char"`
	Style    string   `json:"style"`
	Location string   `json:"location"`
	Variants []string `json:"variants"`
}

type dataURLResponse struct {
	DataURL  string `json:"data_url"`
	Text     string `json:"text"`
	CacheHit bool   `json:"cache_hit"`
}

type shareResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

func (s *Server) handleStyles(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"styles": alphabet.Styles()})
}

func (s *Server) handleLocations(w http.ResponseWriter, _ *http.Request) {
	if s.cfg.Locations == nil {
		s.writeError(w, errors.New(errors.ErrCodeUnsupported, "locations are only listed for a local asset tree"))
		return
	}
	locations, err := s.cfg.Locations.Locations()
	if err != nil {
		s.writeError(w, err)
		return
	}
	if locations == nil {
		locations = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"locations": locations})
}

func (s *Server) handleVariants(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	char := q.Get("char")
	if utf8.RuneCountInString(char) != 1 {
		s.writeError(w, errors.New(errors.ErrCodeInvalidCharacter, "char must be exactly one character, got %q", char))
		return
	}
	ch, _ := utf8.DecodeRuneInString(char)

	opts := pipeline.Options{Style: q.Get("style"), Location: q.Get("location")}
	s.cfg.Defaults.Apply(&opts)
	opts.SetSelectDefaults()

	paths, err := s.cfg.Runner.Resolver.ListVariants(r.Context(), ch, opts.Style, opts.Location)
	if err != nil {
		s.writeError(w, err)
		return
	}

	variants := make([]string, len(paths))
	for i, p := range paths {
		variants[i] = p.String()
	}
	writeJSON(w, http.StatusOK, variantsResponse{
		Char:     char,
		Style:    opts.Style,
		Location: opts.Location,
		Variants: variants,
	})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	opts, err := s.decodeOptions(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	format := r.URL.Query().Get("format")
	switch format {
	case "", pipeline.FormatPNG:
		format = pipeline.FormatPNG
	case pipeline.FormatDataURL, pipeline.FormatJSON:
	default:
		s.writeError(w, pipeline.ValidateFormat(format))
		return
	}
	opts.Formats = []string{format}

	result, err := s.cfg.Runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	data := result.Artifacts[format]

	cacheHeader := "miss"
	if result.CacheHit {
		cacheHeader = "hit"
	}
	w.Header().Set("X-Cache", cacheHeader)

	switch format {
	case pipeline.FormatPNG:
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", PNGFilename))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	case pipeline.FormatDataURL:
		writeJSON(w, http.StatusOK, dataURLResponse{
			DataURL:  string(data),
			Text:     result.Text,
			CacheHit: result.CacheHit,
		})
	case pipeline.FormatJSON:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}

func (s *Server) handleShare(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Gallery == nil {
		s.writeError(w, errors.New(errors.ErrCodeUnsupported, "sharing is disabled"))
		return
	}

	opts, err := s.decodeOptions(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	opts.Formats = []string{pipeline.FormatPNG}

	result, err := s.cfg.Runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	a, err := gallery.New(result.Text, opts.Style, opts.Location, result.Artifacts[pipeline.FormatPNG])
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.cfg.Gallery.Put(r.Context(), a); err != nil {
		s.writeError(w, err)
		return
	}

	s.logger.Info("shared render", "id", a.ID, "text", a.Text)
	writeJSON(w, http.StatusCreated, shareResponse{ID: a.ID, URL: s.sharedURL(r, a.ID)})
}

func (s *Server) handleShared(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Gallery == nil {
		s.writeError(w, errors.New(errors.ErrCodeUnsupported, "sharing is disabled"))
		return
	}

	a, err := s.cfg.Gallery.Get(r.Context(), chi.URLParam(r, "id"))
	switch {
	case stderrors.Is(err, gallery.ErrInvalidID):
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid share id"))
		return
	case stderrors.Is(err, gallery.ErrNotFound):
		s.writeError(w, errors.Wrap(errors.ErrCodeNotFound, err, "shared render not found"))
		return
	case err != nil:
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(a.PNG)
}

// decodeOptions reads pipeline options from the JSON body and fills the
// configured defaults.
func (s *Server) decodeOptions(w http.ResponseWriter, r *http.Request) (pipeline.Options, error) {
	var opts pipeline.Options
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&opts); err != nil {
		return opts, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body")
	}
	s.cfg.Defaults.Apply(&opts)
	opts.Logger = s.logger
	return opts, nil
}

func (s *Server) sharedURL(r *http.Request, id string) string {
	base := s.cfg.PublicURL
	if base == "" {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		base = scheme + "://" + r.Host
	}
	return base + "/shared/" + id
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := errors.HTTPStatus(err)
	switch {
	case stderrors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	case stderrors.Is(err, context.Canceled):
		// Client went away; nobody reads the body.
		status = 499
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "status", status, "err", err)
	} else {
		s.logger.Debug("request rejected", "status", status, "err", err)
	}

	writeJSON(w, status, errorResponse{
		Error: errors.UserMessage(err),
		Code:  string(errors.GetCode(err)),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// assetFiles serves regular files of the asset tree and answers 404 for
// directories and unsafe paths, so the tree cannot be listed.
func (s *Server) assetFiles(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/")
		if err := errors.ValidatePath(name); err != nil {
			http.NotFound(w, r)
			return
		}
		info, err := fs.Stat(s.cfg.Assets, name)
		if err != nil || info.IsDir() {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

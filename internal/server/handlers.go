package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/koskimas/kysely-playground-sub001/internal/loader"
	"github.com/koskimas/kysely-playground-sub001/internal/sandbox"
	"github.com/koskimas/kysely-playground-sub001/pkg/core"
	"github.com/koskimas/kysely-playground-sub001/pkg/dialect"
	"github.com/koskimas/kysely-playground-sub001/pkg/format"
)

// renderRequest is the POST /api/render payload. Options, when omitted,
// keep the pipeline's current settings.
type renderRequest struct {
	Source  string         `json:"source"`
	Dialect string         `json:"dialect,omitempty"`
	Options *renderOptions `json:"options,omitempty"`
}

type renderOptions struct {
	Indent           int    `json:"indent"`
	KeywordCase      string `json:"keywordCase"`
	LineWidth        int    `json:"lineWidth"`
	InlineParameters bool   `json:"inlineParameters"`
}

type renderResponse struct {
	SQL   string       `json:"sql,omitempty"`
	Error *renderError `json:"error,omitempty"`
}

type renderError struct {
	Kind     string `json:"kind"`
	Message  string `json:"message"`
	Position string `json:"position,omitempty"`
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	state := s.pipeline.State()
	state.SetSource(req.Source)
	if req.Dialect != "" {
		state.SetDialect(req.Dialect)
	}
	if req.Options != nil {
		state.SetOptions(core.FormatOptions{
			Indent:           req.Options.Indent,
			KeywordCase:      core.ParseKeywordCase(req.Options.KeywordCase),
			LineWidth:        req.Options.LineWidth,
			InlineParameters: req.Options.InlineParameters,
		})
	}

	sql, err := s.pipeline.Render(r.Context())
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, renderResponse{Error: classifyError(err)})
		return
	}
	writeJSON(w, http.StatusOK, renderResponse{SQL: sql})
}

func (s *Server) handleDialects(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"dialects": dialect.List()})
}

func (s *Server) handleResult(w http.ResponseWriter, _ *http.Request) {
	value, ok := s.pipeline.Sink().Value()
	if !ok {
		writeJSON(w, http.StatusOK, renderResponse{})
		return
	}
	writeJSON(w, http.StatusOK, renderResponse{SQL: value})
}

// handleEvents streams committed results over SSE. Each sink ping re-reads
// the current value, so a slow client only ever misses intermediate
// states, never the latest.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	id, ch := s.pipeline.Sink().Subscribe()
	defer s.pipeline.Sink().Unsubscribe(id)

	// Send the current value immediately so new clients don't wait for
	// the next edit.
	if value, ok := s.pipeline.Sink().Value(); ok {
		writeEvent(w, value)
		flusher.Flush()
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case _, open := <-ch:
			if !open {
				return
			}
			if value, ok := s.pipeline.Sink().Value(); ok {
				writeEvent(w, value)
				flusher.Flush()
			}
		}
	}
}

func writeEvent(w http.ResponseWriter, value string) {
	payload, _ := json.Marshal(renderResponse{SQL: value})
	fmt.Fprintf(w, "data: %s\n\n", payload)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// classifyError maps pipeline failures to wire error kinds.
func classifyError(err error) *renderError {
	var parseErr *sandbox.ParseError
	if errors.As(err, &parseErr) {
		pos := ""
		if parseErr.Line > 0 {
			pos = fmt.Sprintf("%s:%d:%d", parseErr.File, parseErr.Line, parseErr.Col)
		}
		return &renderError{Kind: "parse_error", Message: parseErr.Msg, Position: pos}
	}

	var execErr *sandbox.ExecutionError
	if errors.As(err, &execErr) {
		return &renderError{Kind: "execution_error", Message: execErr.Msg}
	}

	if errors.Is(err, sandbox.ErrNoQueryProduced) {
		return &renderError{Kind: "no_query_produced", Message: err.Error()}
	}

	var unavailable *loader.ModuleUnavailableError
	if errors.As(err, &unavailable) {
		return &renderError{Kind: "module_unavailable", Message: unavailable.Error()}
	}

	var formatErr *format.Error
	if errors.As(err, &formatErr) {
		return &renderError{Kind: "format_error", Message: formatErr.Msg}
	}

	return &renderError{Kind: "internal_error", Message: err.Error()}
}

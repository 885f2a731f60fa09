package server

import (
	"encoding/json"
	"errors"
	"net/http"

	kerrors "github.com/keepblock/keepblock/internal/errors"
	"github.com/keepblock/keepblock/pkg/boundary"
	"github.com/keepblock/keepblock/pkg/codewriter"
	"github.com/keepblock/keepblock/pkg/store"
)

// artifactKey names the artifact in a request's scratch store.
const artifactKey = "artifact"

// MergeRequest is the body of POST /v1/merge.
type MergeRequest struct {
	Language  string  `json:"language"`
	Generated string  `json:"generated"`
	Previous  *string `json:"previous,omitempty"`
	Seed      string  `json:"seed,omitempty"`
	Path      string  `json:"path,omitempty"`
}

// MergeResponse is the reply to POST /v1/merge.
type MergeResponse struct {
	Artifact       string `json:"artifact"`
	Status         string `json:"status"`
	PreservedBytes int    `json:"preserved_bytes"`
}

// SplitRequest is the body of POST /v1/split.
type SplitRequest struct {
	Language string `json:"language"`
	Artifact string `json:"artifact"`
}

// SplitResponse is the reply to POST /v1/split.
type SplitResponse struct {
	Generated string `json:"generated"`
	Preserved string `json:"preserved"`
	Line      int    `json:"line"`
}

func (s *Server) handleMerge(w http.ResponseWriter, r *http.Request) {
	var req MergeRequest
	if !s.decode(w, r, &req) {
		return
	}
	lang, err := boundary.ParseLanguage(req.Language)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, kerrors.Classify(err, ""))
		return
	}

	scratch := store.NewMemory()
	if req.Previous != nil {
		if err := scratch.Write(r.Context(), artifactKey, []byte(*req.Previous)); err != nil {
			s.writeError(w, http.StatusInternalServerError, kerrors.Classify(err, ""))
			return
		}
	}

	writer := codewriter.New(scratch,
		codewriter.WithLogger(s.logger),
		codewriter.WithMetrics(s.config.Metrics),
	)
	res, err := writer.Write(r.Context(), codewriter.Request{
		Key:       artifactKey,
		Lang:      lang,
		Generated: req.Generated,
		Seed:      req.Seed,
	})

	path := req.Path
	if path == "" {
		path = artifactKey
	}
	if err != nil {
		s.hub.Publish(Event{Type: EventError, Path: path, Language: lang.String(), Error: err.Error()})
		status := http.StatusInternalServerError
		if errors.Is(err, boundary.ErrMalformed) {
			status = http.StatusUnprocessableEntity
		}
		s.writeError(w, status, kerrors.Classify(err, ""))
		return
	}

	s.hub.Publish(Event{Type: EventRegenerated, Path: path, Language: lang.String(), Status: res.Status.String()})
	s.writeJSON(w, http.StatusOK, MergeResponse{
		Artifact:       res.Text,
		Status:         res.Status.String(),
		PreservedBytes: res.PreservedBytes,
	})
}

func (s *Server) handleSplit(w http.ResponseWriter, r *http.Request) {
	var req SplitRequest
	if !s.decode(w, r, &req) {
		return
	}
	lang, err := boundary.ParseLanguage(req.Language)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, kerrors.Classify(err, ""))
		return
	}

	art, err := boundary.Split(lang, req.Artifact)
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, kerrors.Classify(err, ""))
		return
	}
	s.writeJSON(w, http.StatusOK, SplitResponse{
		Generated: art.Generated,
		Preserved: art.Preserved,
		Line:      art.Line,
	})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		s.writeError(w, http.StatusBadRequest, kerrors.Newf(kerrors.CategoryCLI, "invalid request body: %v", err))
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Debug("write response failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err *kerrors.Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(err.FormatJSON()))
	w.Write([]byte("\n"))
}

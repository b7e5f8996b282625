package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tkoester/pinset/pkg/audit"
	pinerrors "github.com/tkoester/pinset/pkg/errors"
	"github.com/tkoester/pinset/pkg/manifest"
	"github.com/tkoester/pinset/pkg/store"
)

// maxManifestSize caps request bodies; pin lists are small files.
const maxManifestSize = 1 << 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLint(w http.ResponseWriter, r *http.Request) {
	m, ok := s.readManifest(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, m.Lint())
}

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	m, ok := s.readManifest(w, r)
	if !ok {
		return
	}

	refresh := r.URL.Query().Get("refresh") == "true"
	report, err := s.auditor.Audit(r.Context(), m, refresh)
	if err != nil {
		s.logger.Error("audit failed", "error", err)
		code := pinerrors.GetCode(err)
		if code == "" {
			code = pinerrors.ErrCodeNetwork
		}
		writeError(w, http.StatusBadGateway, code, pinerrors.UserMessage(err))
		return
	}

	if err := s.store.Save(r.Context(), report); err != nil {
		s.logger.Error("save report failed", "error", err)
		writeError(w, http.StatusInternalServerError, pinerrors.ErrCodeInternal, "failed to persist report")
		return
	}

	writeJSON(w, http.StatusCreated, report)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	report, err := s.store.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, pinerrors.ErrCodeReportNotFound, "no report with id "+id)
		return
	}
	if err != nil {
		s.logger.Error("get report failed", "error", err)
		writeError(w, http.StatusInternalServerError, pinerrors.ErrCodeInternal, "failed to load report")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, pinerrors.ErrCodeInvalidInput, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	reports, err := s.store.List(r.Context(), limit)
	if err != nil {
		s.logger.Error("list reports failed", "error", err)
		writeError(w, http.StatusInternalServerError, pinerrors.ErrCodeInternal, "failed to list reports")
		return
	}
	if reports == nil {
		reports = []*audit.Report{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"reports": reports})
}

// readManifest parses the request body as manifest text. An empty body
// is rejected; malformed pin lines are not, they surface as findings.
func (s *Server) readManifest(w http.ResponseWriter, r *http.Request) (*manifest.Manifest, bool) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxManifestSize))
	if err != nil {
		writeError(w, http.StatusBadRequest, pinerrors.ErrCodeInvalidInput, "failed to read request body")
		return nil, false
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		writeError(w, http.StatusBadRequest, pinerrors.ErrCodeInvalidManifest, "request body is empty")
		return nil, false
	}

	m, err := manifest.Parse(strings.NewReader(string(body)))
	if err != nil {
		writeError(w, http.StatusBadRequest, pinerrors.ErrCodeInvalidManifest, pinerrors.UserMessage(err))
		return nil, false
	}
	return m, true
}

type errorResponse struct {
	Error struct {
		Code    pinerrors.Code `json:"code"`
		Message string         `json:"message"`
	} `json:"error"`
}

func writeError(w http.ResponseWriter, status int, code pinerrors.Code, message string) {
	var resp errorResponse
	resp.Error.Code = code
	resp.Error.Message = message
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

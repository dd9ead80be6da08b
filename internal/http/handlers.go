package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"gagebu/internal/core"
	applog "gagebu/internal/log"
	"gagebu/internal/reconcile"
	"gagebu/internal/relation"
	"gagebu/internal/session"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// lookupSession resolves the path session ID, writing a 404 on miss.
func (s *Server) lookupSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.sessions.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "session not found")
		return nil, false
	}
	return sess, true
}

type openSessionResponse struct {
	SessionID   string               `json:"session_id"`
	Rows        int                  `json:"rows"`
	Diagnostics relation.Diagnostics `json:"diagnostics"`
}

func (s *Server) handleOpenSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Open(r.Context())
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to open session", "error", err)
		writeError(w, http.StatusBadGateway, "failed to load ledger: "+err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, openSessionResponse{
		SessionID:   sess.ID,
		Rows:        sess.Len(),
		Diagnostics: sess.Diagnostics(),
	})
}

func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s.sessions.Close(id)
	s.dropRev(id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListRows(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	f, err := filterFromQuery(r.URL.Query()).toFilter()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toRowDTOs(sess.Rows(f)))
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Categories())
}

type summaryResponse struct {
	Income   int64 `json:"income"`
	Expense  int64 `json:"expense"`
	Net      int64 `json:"net"`
	Other    int64 `json:"other"`
	Active   int   `json:"active"`
	Inactive int   `json:"inactive"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	f, err := filterFromQuery(r.URL.Query()).toFilter()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	key := s.summaryCacheKey(sess.ID, f)
	sum, found := s.summaryCache.Get(key)
	if !found {
		sum = sess.Summary(f)
		s.summaryCache.Set(key, sum)
	} else {
		applog.FromContext(r.Context()).DebugContext(r.Context(), "Summary cache hit", "session_id", sess.ID)
	}

	writeJSON(w, http.StatusOK, summaryResponse{
		Income:   sum.Income,
		Expense:  sum.Expense,
		Net:      sum.Net,
		Other:    sum.Other,
		Active:   sum.Active,
		Inactive: sum.Inactive,
	})
}

func (s *Server) handleQuickAdd(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}

	var dto rowDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	row, err := dto.toRow()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	added, err := sess.QuickAdd(r.Context(), row.Row)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.bumpRev(sess.ID)

	writeJSON(w, http.StatusCreated, toRowDTO(added))
}

type saveRequest struct {
	Filter filterDTO `json:"filter"`
	Rows   []rowDTO  `json:"rows"`
}

type saveResponse struct {
	Deleted  int `json:"deleted"`
	Updated  int `json:"updated"`
	Inserted int `json:"inserted"`
	Rows     int `json:"rows"`
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}

	var req saveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	f, err := req.Filter.toFilter()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	edited := make([]relation.Row, 0, len(req.Rows))
	for _, dto := range req.Rows {
		row, err := dto.toRow()
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		edited = append(edited, row)
	}

	report, err := sess.Save(r.Context(), f, edited)
	if err != nil {
		switch {
		case errors.Is(err, reconcile.ErrInconsistentView):
			writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, core.ErrInvalidDate), errors.Is(err, core.ErrEmptyDescription):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			applog.FromContext(r.Context()).ErrorContext(r.Context(), "Save failed",
				"session_id", sess.ID, "error", err)
			writeError(w, http.StatusBadGateway, err.Error())
		}
		return
	}
	s.bumpRev(sess.ID)

	writeJSON(w, http.StatusOK, saveResponse{
		Deleted:  report.Deleted,
		Updated:  report.Updated,
		Inserted: report.Inserted,
		Rows:     report.Rows,
	})
}

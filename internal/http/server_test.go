package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"gagebu/internal/core"
	"gagebu/internal/session"
	"gagebu/internal/table/memory"
)

func newTestServer(t *testing.T) (*Server, *memory.Store) {
	t.Helper()
	store := memory.New()
	store.SeedRows([]core.Row{
		{Date: core.NewDate(2025, 1, 20), Flow: core.FlowExpense, Category: "식비", Description: "외식", Amount: -12000, IsActive: true},
		{Date: core.NewDate(2025, 1, 12), Flow: core.FlowIncome, Category: "급여", Description: "월급", Amount: 3000000, IsActive: true},
		{Date: core.NewDate(2025, 1, 8), Flow: core.FlowExpense, Category: "식비", Description: "장보기", Amount: -45000, IsActive: true},
	})
	srv := NewServer(":0", session.NewManager(store, nil), nil)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv, store
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
	return v
}

func openTestSession(t *testing.T, srv *Server) string {
	t.Helper()
	rec := doJSON(t, srv, http.MethodPost, "/api/sessions", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("open session: status %d, body %s", rec.Code, rec.Body.String())
	}
	resp := decode[openSessionResponse](t, rec)
	if resp.SessionID == "" {
		t.Fatal("no session ID")
	}
	return resp.SessionID
}

func TestHealthEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		rec := doJSON(t, srv, http.MethodGet, path, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: status %d", path, rec.Code)
		}
	}
}

func TestOpenSessionReportsLoad(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv, http.MethodPost, "/api/sessions", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status %d", rec.Code)
	}
	resp := decode[openSessionResponse](t, rec)
	if resp.Rows != 3 {
		t.Errorf("rows = %d", resp.Rows)
	}
	if resp.Diagnostics.RowsSeen != 3 {
		t.Errorf("diagnostics = %+v", resp.Diagnostics)
	}
}

func TestListRowsFiltered(t *testing.T) {
	srv, _ := newTestServer(t)
	id := openTestSession(t, srv)

	rec := doJSON(t, srv, http.MethodGet, "/api/sessions/"+id+"/rows?category=식비", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	rows := decode[[]rowDTO](t, rec)
	if len(rows) != 2 {
		t.Fatalf("rows = %d", len(rows))
	}
	for _, r := range rows {
		if r.Category != "식비" {
			t.Errorf("unexpected row: %+v", r)
		}
	}
}

func TestListRowsBadDate(t *testing.T) {
	srv, _ := newTestServer(t)
	id := openTestSession(t, srv)

	rec := doJSON(t, srv, http.MethodGet, "/api/sessions/"+id+"/rows?from=yesterday", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status %d", rec.Code)
	}
}

func TestUnknownSession(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/api/sessions/nope/rows", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status %d", rec.Code)
	}
}

func TestCategories(t *testing.T) {
	srv, _ := newTestServer(t)
	id := openTestSession(t, srv)

	rec := doJSON(t, srv, http.MethodGet, "/api/sessions/"+id+"/categories", nil)
	cats := decode[[]string](t, rec)
	if len(cats) != 2 {
		t.Errorf("categories = %v", cats)
	}
}

func TestSummaryReflectsMutations(t *testing.T) {
	srv, _ := newTestServer(t)
	id := openTestSession(t, srv)

	rec := doJSON(t, srv, http.MethodGet, "/api/sessions/"+id+"/summary", nil)
	sum := decode[summaryResponse](t, rec)
	if sum.Income != 3000000 || sum.Expense != -57000 {
		t.Fatalf("summary = %+v", sum)
	}

	// A second identical request is served from cache.
	rec = doJSON(t, srv, http.MethodGet, "/api/sessions/"+id+"/summary", nil)
	if got := decode[summaryResponse](t, rec); got != sum {
		t.Errorf("cached summary = %+v", got)
	}

	// A quick add bumps the revision, so the stale entry is skipped.
	add := rowDTO{Date: "2025-01-30", Flow: "지출", Description: "커피", Amount: -5000}
	if rec := doJSON(t, srv, http.MethodPost, "/api/sessions/"+id+"/rows", add); rec.Code != http.StatusCreated {
		t.Fatalf("quick add: status %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/sessions/"+id+"/summary", nil)
	sum = decode[summaryResponse](t, rec)
	if sum.Expense != -62000 {
		t.Errorf("summary after add = %+v", sum)
	}
}

func TestQuickAddValidation(t *testing.T) {
	srv, _ := newTestServer(t)
	id := openTestSession(t, srv)

	rec := doJSON(t, srv, http.MethodPost, "/api/sessions/"+id+"/rows", rowDTO{Description: "no date"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status %d", rec.Code)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	srv, store := newTestServer(t)
	id := openTestSession(t, srv)

	rec := doJSON(t, srv, http.MethodGet, "/api/sessions/"+id+"/rows?category=식비", nil)
	shown := decode[[]rowDTO](t, rec)
	if len(shown) != 2 {
		t.Fatalf("shown = %d", len(shown))
	}

	// Keep the first shown row with a new amount, drop the second.
	shown[0].Amount = -15000
	req := saveRequest{
		Filter: filterDTO{Categories: []string{"식비"}},
		Rows:   shown[:1],
	}
	rec = doJSON(t, srv, http.MethodPost, "/api/sessions/"+id+"/save", req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}
	resp := decode[saveResponse](t, rec)
	if resp.Deleted != 1 || resp.Updated != 1 || resp.Inserted != 0 || resp.Rows != 2 {
		t.Errorf("response = %+v", resp)
	}
	if store.Writes() != 1 {
		t.Errorf("store writes = %d", store.Writes())
	}
}

func TestSaveConflict(t *testing.T) {
	srv, store := newTestServer(t)
	id := openTestSession(t, srv)

	// Edit a row that the filter does not show.
	req := saveRequest{
		Filter: filterDTO{Categories: []string{"급여"}},
		Rows:   []rowDTO{{ID: 0, Date: "2025-01-20", Flow: "지출", Category: "식비", Description: "몰래", Amount: -1, Active: true}},
	}
	rec := doJSON(t, srv, http.MethodPost, "/api/sessions/"+id+"/save", req)
	if rec.Code != http.StatusConflict {
		t.Errorf("status %d, body %s", rec.Code, rec.Body.String())
	}
	if store.Writes() != 0 {
		t.Error("conflicting save must not write")
	}
}

func TestCloseSession(t *testing.T) {
	srv, _ := newTestServer(t)
	id := openTestSession(t, srv)

	rec := doJSON(t, srv, http.MethodDelete, "/api/sessions/"+id, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status %d", rec.Code)
	}
	rec = doJSON(t, srv, http.MethodGet, "/api/sessions/"+id+"/rows", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status after close = %d", rec.Code)
	}
}

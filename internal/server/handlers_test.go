package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hyperjump/tonari/internal/config"
	"github.com/hyperjump/tonari/internal/models"
	"github.com/hyperjump/tonari/internal/store"
	"go.uber.org/zap"
)

type mockWatchService struct {
	dirs []string
}

func (m *mockWatchService) Directories() []string {
	return append([]string(nil), m.dirs...)
}

func (m *mockWatchService) AddDirectory(path string, _ bool) error {
	for _, d := range m.dirs {
		if d == path {
			return nil
		}
	}
	m.dirs = append(m.dirs, path)
	return nil
}

func (m *mockWatchService) RemoveDirectory(path string) error {
	for i, d := range m.dirs {
		if d == path {
			m.dirs = append(m.dirs[:i], m.dirs[i+1:]...)
			return nil
		}
	}
	return nil
}

func newTestServer(watch WatchService) (*Server, *store.Registry) {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	reg := store.NewRegistry()
	return NewServer(reg, cfg, zap.NewNop(), watch), reg
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	r := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	return w
}

func TestHandleCreateAndListCollections(t *testing.T) {
	srv, _ := newTestServer(nil)
	router := srv.Router()

	w := doJSON(t, router, http.MethodPost, "/api/v1/collections", map[string]string{"name": "icc"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", w.Code)
	}

	w = doJSON(t, router, http.MethodGet, "/api/v1/collections", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var out struct {
		Collections []string `json:"collections"`
	}
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if len(out.Collections) != 1 || out.Collections[0] != "icc" {
		t.Errorf("collections = %v, want [icc]", out.Collections)
	}
}

func TestHandleCreateCollection_MissingName(t *testing.T) {
	srv, _ := newTestServer(nil)
	w := doJSON(t, srv.Router(), http.MethodPost, "/api/v1/collections", map[string]string{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestHandleDropCollection(t *testing.T) {
	srv, reg := newTestServer(nil)
	reg.Create("icc")
	w := doJSON(t, srv.Router(), http.MethodDelete, "/api/v1/collections/icc", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if _, ok := reg.Get("icc"); ok {
		t.Error("collection should be dropped")
	}
}

func TestHandleInsertDocument_GeneratesID(t *testing.T) {
	srv, reg := newTestServer(nil)
	reg.Create("icc")
	w := doJSON(t, srv.Router(), http.MethodPost, "/api/v1/collections/icc/documents",
		models.DocumentInput{Vector: []float32{12, 72, 63}})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}
	var out map[string]string
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out["id"] == "" {
		t.Error("expected a generated id")
	}
	c, _ := reg.Get("icc")
	if _, ok := c.Read(out["id"]); !ok {
		t.Error("document not stored under generated id")
	}
}

func TestHandleInsertDocument_Errors(t *testing.T) {
	srv, reg := newTestServer(nil)
	reg.Create("icc")
	router := srv.Router()

	w := doJSON(t, router, http.MethodPost, "/api/v1/collections/missing/documents",
		models.DocumentInput{Vector: []float32{1}})
	if w.Code != http.StatusNotFound {
		t.Errorf("missing collection status = %d, want 404", w.Code)
	}

	w = doJSON(t, router, http.MethodPost, "/api/v1/collections/icc/documents",
		models.DocumentInput{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing vector status = %d, want 400", w.Code)
	}
}

func TestHandleUpsertGetDeleteDocument(t *testing.T) {
	srv, reg := newTestServer(nil)
	reg.Create("icc")
	router := srv.Router()

	w := doJSON(t, router, http.MethodPut, "/api/v1/collections/icc/documents/doc-1",
		models.DocumentInput{Vector: []float32{1, 2, 3}})
	if w.Code != http.StatusOK {
		t.Fatalf("upsert status = %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodGet, "/api/v1/collections/icc/documents/doc-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	var doc models.Document
	if err := json.NewDecoder(w.Body).Decode(&doc); err != nil {
		t.Fatal(err)
	}
	if doc.ID != "doc-1" || len(doc.Vector) != 3 {
		t.Errorf("document = %+v", doc)
	}

	w = doJSON(t, router, http.MethodDelete, "/api/v1/collections/icc/documents/doc-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d", w.Code)
	}
	w = doJSON(t, router, http.MethodGet, "/api/v1/collections/icc/documents/doc-1", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", w.Code)
	}
	// Deleting an absent document is still 200.
	w = doJSON(t, router, http.MethodDelete, "/api/v1/collections/icc/documents/doc-1", nil)
	if w.Code != http.StatusOK {
		t.Errorf("delete absent status = %d, want 200", w.Code)
	}
}

func TestHandleSearch(t *testing.T) {
	srv, reg := newTestServer(nil)
	c := reg.Create("icc")
	c.Upsert("first", []float32{12, 72, 63})
	c.Upsert("second", []float32{24, 45, 36})

	w := doJSON(t, srv.Router(), http.MethodPost, "/api/v1/collections/icc/search",
		models.SearchQuery{Vector: []float32{41, 51, 31}, K: 3})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var resp models.SearchResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Total != 2 || len(resp.Results) != 2 {
		t.Fatalf("response = %+v, want 2 results", resp)
	}
	if resp.Results[0].ID != "second" {
		t.Errorf("top result = %s, want second", resp.Results[0].ID)
	}
	if resp.Results[0].Score < resp.Results[1].Score {
		t.Error("results not sorted descending")
	}
}

func TestHandleSearch_Errors(t *testing.T) {
	srv, reg := newTestServer(nil)
	reg.Create("icc")
	router := srv.Router()

	w := doJSON(t, router, http.MethodPost, "/api/v1/collections/missing/search",
		models.SearchQuery{Vector: []float32{1}, K: 1})
	if w.Code != http.StatusNotFound {
		t.Errorf("missing collection status = %d, want 404", w.Code)
	}

	w = doJSON(t, router, http.MethodPost, "/api/v1/collections/icc/search",
		models.SearchQuery{K: 1})
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty vector status = %d, want 400", w.Code)
	}

	w = doJSON(t, router, http.MethodPost, "/api/v1/collections/icc/search",
		models.SearchQuery{Vector: []float32{1}, K: -2})
	if w.Code != http.StatusBadRequest {
		t.Errorf("negative k status = %d, want 400", w.Code)
	}
}

func TestHandleSearch_DimensionMismatchIsEmpty(t *testing.T) {
	srv, reg := newTestServer(nil)
	reg.Create("icc").Upsert("a", []float32{1, 2, 3})

	w := doJSON(t, srv.Router(), http.MethodPost, "/api/v1/collections/icc/search",
		models.SearchQuery{Vector: []float32{1, 2}, K: 3})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp models.SearchResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Total != 0 {
		t.Errorf("total = %d, want 0 (dimension filter)", resp.Total)
	}
}

func TestHandleStatus(t *testing.T) {
	srv, reg := newTestServer(nil)
	reg.Create("icc").Upsert("a", []float32{1})

	w := doJSON(t, srv.Router(), http.MethodGet, "/api/v1/status", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var out map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out["collections"].(float64) != 1 || out["documents"].(float64) != 1 {
		t.Errorf("status = %v", out)
	}
}

func TestHandleWatchDirectories(t *testing.T) {
	mock := &mockWatchService{dirs: []string{"/tmp/seeds"}}
	srv, _ := newTestServer(mock)
	router := srv.Router()

	w := doJSON(t, router, http.MethodGet, "/api/v1/watch/directories", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var out struct {
		Directories []string `json:"directories"`
	}
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if len(out.Directories) != 1 || out.Directories[0] != "/tmp/seeds" {
		t.Errorf("directories = %v", out.Directories)
	}

	w = doJSON(t, router, http.MethodPost, "/api/v1/watch/directories", map[string]string{"path": "/tmp/more"})
	if w.Code != http.StatusCreated {
		t.Fatalf("add status = %d", w.Code)
	}
	if len(mock.dirs) != 2 {
		t.Errorf("dirs after add = %v", mock.dirs)
	}

	w = doJSON(t, router, http.MethodDelete, "/api/v1/watch/directories?path=/tmp/more", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("remove status = %d", w.Code)
	}
	if len(mock.dirs) != 1 {
		t.Errorf("dirs after remove = %v", mock.dirs)
	}
}

func TestHandleWatchDirectories_NotEnabled(t *testing.T) {
	srv, _ := newTestServer(nil)
	w := doJSON(t, srv.Router(), http.MethodGet, "/api/v1/watch/directories", nil)
	if w.Code != http.StatusNotImplemented {
		t.Errorf("status = %d, want 501", w.Code)
	}
}

func TestHandleHealth(t *testing.T) {
	srv, _ := newTestServer(nil)
	w := doJSON(t, srv.Router(), http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d", w.Code)
	}
}

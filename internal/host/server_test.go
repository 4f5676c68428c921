package host

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/corbenferris/figjam-plantuml/internal/db"
	"github.com/corbenferris/figjam-plantuml/internal/plantuml"
	"github.com/corbenferris/figjam-plantuml/internal/render"
	"github.com/corbenferris/figjam-plantuml/internal/session"
	"github.com/corbenferris/figjam-plantuml/internal/store"
)

// newRenderServer fakes the PlantUML service. A non-zero status makes every
// request fail with that status and body "Syntax Error?".
func newRenderServer(t *testing.T, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status != 0 {
			w.WriteHeader(status)
			w.Write([]byte("Syntax Error?"))
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		w.Write([]byte("<svg>rendered</svg>"))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func setupTest(t *testing.T, renderStatus int) (*Server, *store.Store) {
	t.Helper()

	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	renderSrv := newRenderServer(t, renderStatus)
	nodes := store.New(database)
	cfg := Config{
		RenderServer: renderSrv.URL,
		Debounce:     10 * time.Millisecond,
	}
	return New(cfg, nodes, render.NewClient(renderSrv.URL, time.Second), nil), nodes
}

func TestHealthCheck(t *testing.T) {
	srv, _ := setupTest(t, 0)

	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", body["status"])
	}
}

func TestCORSHeaders(t *testing.T) {
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer database.Close()

	srv := New(Config{AllowAll: true}, store.New(database), nil, nil)

	req := httptest.NewRequest("OPTIONS", "/healthz", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("expected CORS Allow-Origin header")
	}
}

func TestNodeLifecycle(t *testing.T) {
	srv, _ := setupTest(t, 0)
	r := srv.Router()

	req := httptest.NewRequest("POST", "/api/nodes", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", w.Code)
	}
	var created store.Node
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if created.State.Text != plantuml.DefaultSource {
		t.Errorf("new node text = %q, want default source", created.State.Text)
	}
	if created.State.Src != plantuml.DefaultSVG {
		t.Error("new node should carry the default SVG")
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/nodes", nil))
	var list []store.Node
	json.Unmarshal(w.Body.Bytes(), &list)
	if len(list) != 1 || list[0].ID != created.ID {
		t.Fatalf("list = %+v, want the created node", list)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/nodes/"+created.ID+"/svg", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("svg: expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("svg content type = %q", ct)
	}
	if w.Body.String() != plantuml.DefaultSVG {
		t.Error("svg body should be the committed src")
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("DELETE", "/api/nodes/"+created.ID, nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/nodes/"+created.ID, nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("get after delete: expected 404, got %d", w.Code)
	}
}

func TestListNodesEmpty(t *testing.T) {
	srv, _ := setupTest(t, 0)

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest("GET", "/api/nodes", nil))
	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("empty list body = %q, want []", w.Body.String())
	}
}

func TestEncodeDecodeAPI(t *testing.T) {
	srv, _ := setupTest(t, 0)
	r := srv.Router()
	text := "Bob -> Alice : hello"

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/encode?text="+url.QueryEscape(text), nil))
	if w.Code != http.StatusOK {
		t.Fatalf("encode: expected 200, got %d", w.Code)
	}
	var enc encodeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &enc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !strings.HasSuffix(enc.URL, "/svg/"+enc.Token) {
		t.Errorf("url %q does not end with the token", enc.URL)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/api/encode?format=png", strings.NewReader(text)))
	var posted encodeResponse
	json.Unmarshal(w.Body.Bytes(), &posted)
	if posted.Token != enc.Token {
		t.Errorf("POST token %q differs from GET token %q", posted.Token, enc.Token)
	}
	if !strings.Contains(posted.URL, "/png/") {
		t.Errorf("format=png url = %q", posted.URL)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/decode/"+enc.Token, nil))
	var dec decodeResponse
	json.Unmarshal(w.Body.Bytes(), &dec)
	if dec.Text != text {
		t.Errorf("decode = %q, want %q", dec.Text, text)
	}
}

func TestEncodeAPIBodyLimit(t *testing.T) {
	srv, _ := setupTest(t, 0)
	r := srv.Router()

	atLimit := strings.Repeat("A", maxSourceBytes)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/api/encode", strings.NewReader(atLimit)))
	if w.Code != http.StatusOK {
		t.Fatalf("body at limit: expected 200, got %d", w.Code)
	}
	var enc encodeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &enc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	decoded, err := plantuml.Decode(enc.Token)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded != atLimit {
		t.Errorf("round trip lost data: decoded %d bytes, sent %d", len(decoded), len(atLimit))
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/api/encode", strings.NewReader(atLimit+"TAIL")))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("body over limit: expected 413, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), `"token"`) {
		t.Error("oversized body must not yield a token")
	}
}

func TestDecodeAPIErrors(t *testing.T) {
	srv, _ := setupTest(t, 0)

	tests := []struct {
		token string
		want  int
	}{
		{"SyfF*j2r", http.StatusBadRequest},
		{"____", http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		srv.Router().ServeHTTP(w, httptest.NewRequest("GET", "/api/decode/"+tt.token, nil))
		if w.Code != tt.want {
			t.Errorf("decode %q: got %d, want %d", tt.token, w.Code, tt.want)
		}
	}

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest("GET", "/api/encode?format=pdf&text=x", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad format: got %d, want 400", w.Code)
	}
}

func TestEditorPage(t *testing.T) {
	srv, nodes := setupTest(t, 0)
	n, err := nodes.Create(t.Context(), session.State{Text: "A -> B <b>", URL: "https://example.test/svg/x"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest("GET", "/nodes/"+n.ID+"/edit", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{"<textarea", "A -&gt; B &lt;b&gt;", "Update Diagram", "Cancel", "https://example.test/svg/x"} {
		if !strings.Contains(body, want) {
			t.Errorf("editor page missing %q", want)
		}
	}

	w = httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest("GET", "/nodes/missing/edit", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown node: expected 404, got %d", w.Code)
	}
}

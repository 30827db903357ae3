package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/testutil"
)

const chapteredText = `<!-- {"folio:document":{"title":"Field Guide"}} -->

<!-- {"folio:chapter":{"id":"c1"}} -->
## Birds

uniquetoken lives here.
`

// testEnv builds a router over a temp library. An empty token disables auth.
func testEnv(t *testing.T, token string) http.Handler {
	t.Helper()
	return testEnvWithSSE(t, token, nil)
}

func testEnvWithSSE(t *testing.T, token string, sse http.Handler) http.Handler {
	t.Helper()
	svc, _, _ := testutil.TestService(t)
	return NewRouter(svc, token != "", token, sse)
}

func do(t *testing.T, router http.Handler, method, target string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return v
}

func TestCreateAndGetDocument(t *testing.T) {
	router := testEnv(t, "")

	w := do(t, router, http.MethodPost, "/documents", CreateDocumentRequest{Path: "guide.md", Content: chapteredText})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	created := decode[DocumentDetail](t, w)
	if got := w.Header().Get("ETag"); got != `"`+created.Checksum+`"` {
		t.Errorf("ETag = %q", got)
	}

	w = do(t, router, http.MethodGet, "/documents/guide.md", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	doc := decode[DocumentDetail](t, w)
	if doc.Path != "guide.md" {
		t.Errorf("path = %q", doc.Path)
	}
	if doc.Title != "Field Guide" {
		t.Errorf("title = %q, want Field Guide", doc.Title)
	}
	if doc.Document == nil || len(doc.Document.Chapters) != 1 {
		t.Fatalf("document = %+v", doc.Document)
	}
	if doc.Document.Metadata.Version != 1 {
		t.Errorf("version = %d, want 1", doc.Document.Metadata.Version)
	}
}

func TestCreateFromTree(t *testing.T) {
	router := testEnv(t, "")
	tree := &models.Document{
		Chapters: []models.Chapter{{Heading: models.Heading{Level: 2, Text: "Only"}}},
	}
	w := do(t, router, http.MethodPost, "/documents", CreateDocumentRequest{Path: "tree.md", Document: tree})
	if w.Code != http.StatusCreated {
		t.Fatalf("create = %d, body = %s", w.Code, w.Body.String())
	}
	if got := decode[DocumentDetail](t, w).Content; !strings.Contains(got, "## Only") {
		t.Errorf("content = %q", got)
	}
}

func TestCreateDuplicate(t *testing.T) {
	router := testEnv(t, "")
	body := CreateDocumentRequest{Path: "dup.md", Content: "a"}
	if w := do(t, router, http.MethodPost, "/documents", body); w.Code != http.StatusCreated {
		t.Fatalf("first create = %d", w.Code)
	}
	if w := do(t, router, http.MethodPost, "/documents", body); w.Code != http.StatusConflict {
		t.Errorf("duplicate create = %d, want 409", w.Code)
	}
}

func TestCreateBadRequests(t *testing.T) {
	router := testEnv(t, "")
	cases := []struct {
		name string
		body any
	}{
		{"missing path", CreateDocumentRequest{Content: "x"}},
		{"not a document", CreateDocumentRequest{Path: "notes.txt", Content: "x"}},
		{"not json", "just a string"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if w := do(t, router, http.MethodPost, "/documents", tc.body); w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}

func TestUpdateWithOptimisticLocking(t *testing.T) {
	router := testEnv(t, "")
	w := do(t, router, http.MethodPost, "/documents", CreateDocumentRequest{Path: "lock.md", Content: "v1"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create = %d", w.Code)
	}
	created := decode[DocumentDetail](t, w)

	update := UpdateDocumentRequest{Content: "v2"}
	w = do(t, router, http.MethodPut, "/documents/lock.md", update, "If-Match", `"`+created.Checksum+`"`)
	if w.Code != http.StatusOK {
		t.Fatalf("update with correct checksum = %d, body = %s", w.Code, w.Body.String())
	}

	w = do(t, router, http.MethodPut, "/documents/lock.md", update, "If-Match", created.Checksum)
	if w.Code != http.StatusConflict {
		t.Errorf("update with stale checksum = %d, want 409", w.Code)
	}
}

func TestUpdateContentKeepsIdentity(t *testing.T) {
	router := testEnv(t, "")
	created := decode[DocumentDetail](t, do(t, router, http.MethodPost, "/documents", CreateDocumentRequest{Path: "id.md", Content: "v1"}))

	w := do(t, router, http.MethodPut, "/documents/id.md", UpdateDocumentRequest{Content: "v2"}, "If-Match", `W/"`+created.Checksum+`"`)
	if w.Code != http.StatusOK {
		t.Fatalf("update = %d, body = %s", w.Code, w.Body.String())
	}
	md := decode[DocumentDetail](t, w).Document.Metadata
	if md.Version != 2 || md.ID != created.Document.Metadata.ID {
		t.Errorf("version=%d id=%q, want 2 %q", md.Version, md.ID, created.Document.Metadata.ID)
	}
}

func TestUpdateWithoutIfMatch(t *testing.T) {
	router := testEnv(t, "")
	do(t, router, http.MethodPost, "/documents", CreateDocumentRequest{Path: "nolock.md", Content: "v1"})

	if w := do(t, router, http.MethodPut, "/documents/nolock.md", UpdateDocumentRequest{Content: "v2"}); w.Code != http.StatusOK {
		t.Errorf("update without If-Match = %d, want 200", w.Code)
	}
	if w := do(t, router, http.MethodPut, "/documents/nolock.md", UpdateDocumentRequest{}); w.Code != http.StatusBadRequest {
		t.Errorf("empty update = %d, want 400", w.Code)
	}
}

func TestUpdateDocument_NotFound(t *testing.T) {
	router := testEnv(t, "")
	if w := do(t, router, http.MethodPut, "/documents/nope.md", UpdateDocumentRequest{Content: "x"}); w.Code != http.StatusNotFound {
		t.Errorf("update missing = %d, want 404", w.Code)
	}
}

func TestDeleteDocument(t *testing.T) {
	router := testEnv(t, "")
	do(t, router, http.MethodPost, "/documents", CreateDocumentRequest{Path: "bye.md", Content: "gone"})

	if w := do(t, router, http.MethodDelete, "/documents/bye.md", nil); w.Code != http.StatusNoContent {
		t.Errorf("delete = %d, want 204", w.Code)
	}
	if w := do(t, router, http.MethodGet, "/documents/bye.md", nil); w.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d, want 404", w.Code)
	}
	if w := do(t, router, http.MethodDelete, "/documents/bye.md", nil); w.Code != http.StatusNotFound {
		t.Errorf("second delete = %d, want 404", w.Code)
	}
}

func TestEncodedPath(t *testing.T) {
	router := testEnv(t, "")
	do(t, router, http.MethodPost, "/documents", CreateDocumentRequest{Path: "deep/doc.md", Content: "x"})
	if w := do(t, router, http.MethodGet, "/documents/deep%2Fdoc.md", nil); w.Code != http.StatusOK {
		t.Errorf("encoded get = %d, want 200", w.Code)
	}
}

func TestListDocuments(t *testing.T) {
	router := testEnv(t, "")
	for _, name := range []string{"b.md", "a.md"} {
		do(t, router, http.MethodPost, "/documents", CreateDocumentRequest{Path: name, Content: "text"})
	}

	w := do(t, router, http.MethodGet, "/documents?limit=10&sort=path", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list = %d", w.Code)
	}
	resp := decode[DocumentListResponse](t, w)
	if resp.Total != 2 || len(resp.Documents) != 2 {
		t.Fatalf("resp = %+v", resp)
	}
	if resp.Documents[0].Path != "a.md" {
		t.Errorf("first = %q, want a.md", resp.Documents[0].Path)
	}
}

func TestListDocuments_Empty(t *testing.T) {
	router := testEnv(t, "")
	w := do(t, router, http.MethodGet, "/documents", nil)
	if !strings.Contains(w.Body.String(), `"documents":[]`) {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestImportEndpoint(t *testing.T) {
	router := testEnv(t, "")
	w := do(t, router, http.MethodPost, "/import", ImportRequest{Path: "in.md", Content: chapteredText})
	if w.Code != http.StatusOK {
		t.Fatalf("import = %d, body = %s", w.Code, w.Body.String())
	}
	doc := decode[DocumentDetail](t, w)
	if !strings.Contains(doc.Content, `<a id="chapter-c1"></a>`) {
		t.Errorf("content not canonical:\n%s", doc.Content)
	}
	if w := do(t, router, http.MethodPost, "/import", ImportRequest{Content: "x"}); w.Code != http.StatusBadRequest {
		t.Errorf("import without path = %d, want 400", w.Code)
	}
}

func TestMoveEndpoint(t *testing.T) {
	router := testEnv(t, "")
	do(t, router, http.MethodPost, "/documents", CreateDocumentRequest{Path: "draft.md", Content: "x"})
	do(t, router, http.MethodPost, "/documents", CreateDocumentRequest{Path: "taken.md", Content: "y"})

	if w := do(t, router, http.MethodPost, "/move", MoveRequest{From: "draft.md", To: "taken.md"}); w.Code != http.StatusConflict {
		t.Errorf("move onto existing = %d, want 409", w.Code)
	}
	if w := do(t, router, http.MethodPost, "/move", MoveRequest{From: "draft.md"}); w.Code != http.StatusBadRequest {
		t.Errorf("move without target = %d, want 400", w.Code)
	}

	w := do(t, router, http.MethodPost, "/move", MoveRequest{From: "draft.md", To: "final/doc.md"})
	if w.Code != http.StatusOK {
		t.Fatalf("move = %d, body = %s", w.Code, w.Body.String())
	}
	if got := decode[DocumentDetail](t, w).Path; got != "final/doc.md" {
		t.Errorf("path = %q", got)
	}
	if w := do(t, router, http.MethodGet, "/documents/draft.md", nil); w.Code != http.StatusNotFound {
		t.Errorf("old path = %d, want 404", w.Code)
	}
}

func TestPreviewEndpoint(t *testing.T) {
	router := testEnv(t, "")
	do(t, router, http.MethodPost, "/import", ImportRequest{Path: "pv.md", Content: chapteredText})

	w := do(t, router, http.MethodGet, "/preview/pv.md", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("preview = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/markdown") {
		t.Errorf("content type = %q", ct)
	}
	body := w.Body.String()
	if strings.Contains(body, "<!--") || !strings.Contains(body, "## Birds") {
		t.Errorf("preview body = %q", body)
	}

	w = do(t, router, http.MethodGet, "/preview/pv.md", nil, "Accept", "application/json")
	if !strings.Contains(w.Body.String(), `"title":"Field Guide"`) {
		t.Errorf("json preview = %s", w.Body.String())
	}

	if w := do(t, router, http.MethodGet, "/preview/missing.md", nil); w.Code != http.StatusNotFound {
		t.Errorf("missing preview = %d, want 404", w.Code)
	}
}

func TestOutlineEndpoint(t *testing.T) {
	router := testEnv(t, "")
	do(t, router, http.MethodPost, "/import", ImportRequest{Path: "ol.md", Content: chapteredText})

	w := do(t, router, http.MethodGet, "/outline/ol.md", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("outline = %d, body = %s", w.Code, w.Body.String())
	}
	resp := decode[OutlineResponse](t, w)
	if len(resp.Chapters) != 1 {
		t.Fatalf("chapters = %+v", resp.Chapters)
	}
	if c := resp.Chapters[0]; c.Anchor != "chapter-c1" || c.Title != "Birds" || c.Level != 2 {
		t.Errorf("chapter = %+v", c)
	}
}

func TestSearchEndpoint(t *testing.T) {
	router := testEnv(t, "")
	do(t, router, http.MethodPost, "/documents", CreateDocumentRequest{Path: "find.md", Content: chapteredText})

	w := do(t, router, http.MethodGet, "/search?q=uniquetoken", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("search = %d, body = %s", w.Code, w.Body.String())
	}
	resp := decode[SearchResponse](t, w)
	if len(resp.Results) != 1 || resp.Results[0].Path != "find.md" {
		t.Errorf("results = %+v", resp.Results)
	}
}

func TestSearchMissingQuery(t *testing.T) {
	router := testEnv(t, "")
	if w := do(t, router, http.MethodGet, "/search", nil); w.Code != http.StatusBadRequest {
		t.Errorf("search no query = %d, want 400", w.Code)
	}
}

func TestAuthMiddleware(t *testing.T) {
	router := testEnv(t, "secret123")
	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"valid", "Bearer secret123", http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"wrong", "Bearer wrong", http.StatusUnauthorized},
		{"wrong scheme", "Basic secret123", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var headers []string
			if tc.header != "" {
				headers = []string{"Authorization", tc.header}
			}
			if w := do(t, router, http.MethodGet, "/documents", nil, headers...); w.Code != tc.want {
				t.Errorf("status = %d, want %d", w.Code, tc.want)
			}
		})
	}
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	router := testEnv(t, "")
	if w := do(t, router, http.MethodGet, "/documents", nil); w.Code != http.StatusOK {
		t.Errorf("no auth = %d, want 200", w.Code)
	}
}

// blockingSSE writes headers and waits for the client to go away.
var blockingSSE = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.WriteHeader(http.StatusOK)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	<-r.Context().Done()
})

func TestSSEEvents_AuthProtected(t *testing.T) {
	router := testEnvWithSSE(t, "secret", blockingSSE)
	if w := do(t, router, http.MethodGet, "/events", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("SSE no auth = %d, want 401", w.Code)
	}
}

func TestSSEEvents_ValidToken(t *testing.T) {
	router := testEnvWithSSE(t, "tok", blockingSSE)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("SSE with valid token = %d, want 200", w.Code)
	}
}

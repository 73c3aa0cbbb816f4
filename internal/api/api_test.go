package api

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/zalando/go-keyring"

	"github.com/starford/lectern/internal/content"
	"github.com/starford/lectern/internal/corpus"
	"github.com/starford/lectern/internal/libraryservice"
	"github.com/starford/lectern/internal/models"
	"github.com/starford/lectern/internal/quiz"
	"github.com/starford/lectern/internal/secrets"
	"github.com/starford/lectern/internal/sse"
	"github.com/starford/lectern/internal/storage"
	"github.com/starford/lectern/internal/testutil"
)

type testEnv struct {
	router http.Handler
	lib    string
	logs   *bytes.Buffer
}

// newTestEnv builds a router over a temp library with one shelf of books and
// a wiki/easy corpus. authToken == "" disables auth.
func newTestEnv(t *testing.T, authToken string) *testEnv {
	t.Helper()
	keyring.MockInit()
	logger := slog.New(slog.DiscardHandler)

	lib := t.TempDir()
	testutil.WriteFile(t, filepath.Join(lib, "shelf", "intro.txt"), "hello reader")
	testutil.WriteFile(t, filepath.Join(lib, "shelf", "scan.pdf"), "%PDF")
	testutil.WriteFile(t, filepath.Join(lib, "outside.txt"), "secret")

	corpusDir := t.TempDir()
	testutil.WriteFile(t, filepath.Join(corpusDir, "corpus-wiki-easy.jsonl"),
		`{"title":"Bees","text":"Bees make honey.","domain":"biology","fk_grade":3.2,"words":3,"sentences":1}`)

	loader, err := content.NewLoader(4)
	if err != nil {
		t.Fatal(err)
	}
	store := secrets.New("lectern.api.test")
	broker := sse.NewBroker(time.Second)
	t.Cleanup(broker.Close)

	svc := libraryservice.New(libraryservice.Deps{
		Registry: storage.NewRegistry(t.TempDir(), logger),
		Loader:   loader,
		Corpus:   corpus.NewCache([]string{corpusDir}, logger),
		Secrets:  store,
		Quiz:     quiz.NewGenerator(store, nil, "", logger),
		Notifier: broker,
		Logger:   logger,
	})
	logs := &bytes.Buffer{}
	apiLogger := slog.New(slog.NewJSONHandler(logs, nil))
	return &testEnv{
		router: NewRouter(svc, apiLogger, authToken != "", authToken, broker),
		lib:    lib,
		logs:   logs,
	}
}

func (e *testEnv) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, rd)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) addShelf(t *testing.T) string {
	t.Helper()
	shelf := filepath.Join(e.lib, "shelf")
	w := e.do(t, http.MethodPost, "/sources", AddSourceRequest{Name: "Shelf", Path: shelf})
	if w.Code != http.StatusOK {
		t.Fatalf("add source status = %d, body = %s", w.Code, w.Body.String())
	}
	return shelf
}

func q(path string) string {
	return url.QueryEscape(path)
}

func TestSources_AddListRemove(t *testing.T) {
	e := newTestEnv(t, "")
	shelf := e.addShelf(t)

	w := e.do(t, http.MethodGet, "/sources", nil)
	var resp SourcesResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Sources) != 1 || resp.Sources[0].Name != "Shelf" {
		t.Fatalf("sources = %+v", resp.Sources)
	}

	w = e.do(t, http.MethodDelete, "/sources", RemoveSourceRequest{Path: shelf})
	if w.Code != http.StatusOK {
		t.Fatalf("remove status = %d", w.Code)
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Sources) != 0 {
		t.Errorf("sources after remove = %+v", resp.Sources)
	}
}

func TestAddSource_Errors(t *testing.T) {
	e := newTestEnv(t, "")
	cases := []struct {
		body any
		want int
	}{
		{AddSourceRequest{Path: filepath.Join(e.lib, "missing")}, http.StatusNotFound},
		{AddSourceRequest{Path: filepath.Join(e.lib, "outside.txt")}, http.StatusBadRequest},
		{AddSourceRequest{}, http.StatusBadRequest},
		{"not an object", http.StatusBadRequest},
	}
	for _, c := range cases {
		if w := e.do(t, http.MethodPost, "/sources", c.body); w.Code != c.want {
			t.Errorf("body %+v: status = %d, want %d (%s)", c.body, w.Code, c.want, w.Body.String())
		}
	}
}

func TestBooksAndBook(t *testing.T) {
	e := newTestEnv(t, "")
	shelf := filepath.Join(e.lib, "shelf")

	if w := e.do(t, http.MethodGet, "/books?dir="+q(shelf), nil); w.Code != http.StatusConflict {
		t.Errorf("books with no sources status = %d", w.Code)
	}
	e.addShelf(t)

	w := e.do(t, http.MethodGet, "/books?dir="+q(shelf), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("books status = %d, body = %s", w.Code, w.Body.String())
	}
	var books BooksResponse
	if err := json.Unmarshal(w.Body.Bytes(), &books); err != nil {
		t.Fatal(err)
	}
	if len(books.Books) != 2 || books.Books[0].Name != "intro.txt" {
		t.Errorf("books = %+v", books.Books)
	}

	w = e.do(t, http.MethodGet, "/book?path="+q(filepath.Join(shelf, "intro.txt")), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("book status = %d", w.Code)
	}
	var book models.ExtractedContent
	if err := json.Unmarshal(w.Body.Bytes(), &book); err != nil {
		t.Fatal(err)
	}
	if book.Content != "hello reader" || !strings.HasPrefix(book.AssetBaseURL, "file://") {
		t.Errorf("book = %+v", book)
	}

	cases := map[string]int{
		"/book?path=" + q(filepath.Join(e.lib, "outside.txt")):      http.StatusForbidden,
		"/book?path=" + q(filepath.Join(shelf, "..", "outside.txt")): http.StatusForbidden,
		"/book?path=" + q(filepath.Join(shelf, "scan.pdf")):          http.StatusUnprocessableEntity,
		"/book?path=" + q(filepath.Join(shelf, "nope.txt")):          http.StatusNotFound,
		"/book":                                                      http.StatusBadRequest,
		"/books?dir=" + q(filepath.Join(shelf, "intro.txt")):         http.StatusBadRequest,
	}
	for target, want := range cases {
		if w := e.do(t, http.MethodGet, target, nil); w.Code != want {
			t.Errorf("%s: status = %d, want %d", target, w.Code, want)
		}
	}
}

func TestManifestExportImport(t *testing.T) {
	e := newTestEnv(t, "")
	e.addShelf(t)
	dest := filepath.Join(t.TempDir(), "lib.json")

	w := e.do(t, http.MethodPost, "/manifest/export", ExportRequest{})
	var exp models.ExportResult
	if err := json.Unmarshal(w.Body.Bytes(), &exp); err != nil {
		t.Fatal(err)
	}
	if exp.Status != models.StatusCancelled {
		t.Errorf("empty path export = %+v", exp)
	}

	w = e.do(t, http.MethodPost, "/manifest/export", ExportRequest{Path: dest})
	if w.Code != http.StatusOK {
		t.Fatalf("export status = %d, body = %s", w.Code, w.Body.String())
	}
	if err := json.Unmarshal(w.Body.Bytes(), &exp); err != nil {
		t.Fatal(err)
	}
	if exp.Status != models.StatusExported || *exp.EntryCount != 2 {
		t.Errorf("export = %+v", exp)
	}

	w = e.do(t, http.MethodPost, "/manifest/import", ImportRequest{ManifestPath: dest, SharedRoot: e.lib})
	if w.Code != http.StatusOK {
		t.Fatalf("import status = %d, body = %s", w.Code, w.Body.String())
	}
	var imp models.ImportResult
	if err := json.Unmarshal(w.Body.Bytes(), &imp); err != nil {
		t.Fatal(err)
	}
	if imp.Status != models.StatusImported || *imp.Existing != 1 {
		t.Errorf("import = %+v", imp)
	}

	bad := filepath.Join(t.TempDir(), "bad.json")
	testutil.WriteFile(t, bad, `{"schema":"other","version":1,"sources":[],"entries":[]}`)
	w = e.do(t, http.MethodPost, "/manifest/import", ImportRequest{ManifestPath: bad, SharedRoot: e.lib})
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("bad schema status = %d", w.Code)
	}
}

func TestSecrets(t *testing.T) {
	e := newTestEnv(t, "")
	w := e.do(t, http.MethodGet, "/secrets/status", nil)
	if !strings.Contains(w.Body.String(), `"available":true`) {
		t.Errorf("status body = %s", w.Body.String())
	}

	val := "abc"
	if w := e.do(t, http.MethodPut, "/secrets/comprehension-gemini", SetSecretRequest{Value: &val}); w.Code != http.StatusNoContent {
		t.Fatalf("put status = %d", w.Code)
	}
	w = e.do(t, http.MethodGet, "/secrets/comprehension-gemini", nil)
	var got SecretResponse
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Value == nil || *got.Value != "abc" {
		t.Errorf("secret = %+v", got)
	}

	if w := e.do(t, http.MethodGet, "/secrets/other-key", nil); w.Code != http.StatusBadRequest {
		t.Errorf("unknown key status = %d", w.Code)
	}
}

func TestCorpus(t *testing.T) {
	e := newTestEnv(t, "")
	w := e.do(t, http.MethodGet, "/corpus", nil)
	var info map[string]map[string]models.CorpusTierInfo
	if err := json.Unmarshal(w.Body.Bytes(), &info); err != nil {
		t.Fatal(err)
	}
	if got := info["wiki"]["easy"]; !got.Available || got.TotalArticles != 1 {
		t.Errorf("wiki/easy = %+v", got)
	}

	w = e.do(t, http.MethodGet, "/corpus/wiki/easy/sample", nil)
	if !strings.Contains(w.Body.String(), `"title":"Bees"`) {
		t.Errorf("sample body = %s", w.Body.String())
	}
	w = e.do(t, http.MethodGet, "/corpus/news/easy/sample", nil)
	if strings.TrimSpace(w.Body.String()) != `{"article":null}` {
		t.Errorf("unknown family body = %s", w.Body.String())
	}

	if w := e.do(t, http.MethodPost, "/corpus/wiki/easy/quiz", nil); w.Code != http.StatusPreconditionFailed {
		t.Errorf("quiz without key status = %d", w.Code)
	}
}

func TestAuth(t *testing.T) {
	e := newTestEnv(t, "s3cret")
	if w := e.do(t, http.MethodGet, "/sources", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("no token status = %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/sources", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("valid token status = %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/sources", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w = httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token status = %d", w.Code)
	}
	if got := w.Header().Get("WWW-Authenticate"); !strings.HasPrefix(got, "Bearer") {
		t.Errorf("WWW-Authenticate = %q", got)
	}
}

func TestAuth_GuardsLibraryAndSecrets(t *testing.T) {
	e := newTestEnv(t, "s3cret")
	outside := filepath.Join(e.lib, "outside.txt")
	for _, c := range []struct {
		method, target string
		body           any
	}{
		{http.MethodPost, "/sources", AddSourceRequest{Path: "/"}},
		{http.MethodGet, "/book?path=" + q(outside), nil},
		{http.MethodGet, "/secrets/comprehension-gemini", nil},
	} {
		if w := e.do(t, c.method, c.target, c.body); w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s without token = %d, body = %s", c.method, c.target, w.Code, w.Body.String())
		}
	}
}

func TestInternalErrorsLoggedOnHandlerLogger(t *testing.T) {
	e := newTestEnv(t, "")
	shelf := e.addShelf(t)

	// A destination below a regular file cannot be created.
	dest := filepath.Join(shelf, "intro.txt", "lib.json")
	w := e.do(t, http.MethodPost, "/manifest/export", ExportRequest{Path: dest})
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "internal error") {
		t.Errorf("body = %s", w.Body.String())
	}
	if !strings.Contains(e.logs.String(), "export manifest failed") {
		t.Errorf("handler logger got %q", e.logs.String())
	}
}

func TestEvents_SourcesUpdated(t *testing.T) {
	e := newTestEnv(t, "")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	done := make(chan struct{})
	go func() {
		e.router.ServeHTTP(w, req)
		close(done)
	}()
	time.Sleep(50 * time.Millisecond)

	e.addShelf(t)
	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	if !strings.Contains(w.Body.String(), "event: sources.updated") {
		t.Errorf("events body = %q", w.Body.String())
	}
}

package ingest_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"tips-content-service/internal/environment"
	"tips-content-service/internal/ingest"
	"tips-content-service/internal/lint"
	"tips-content-service/internal/logging"
	"tips-content-service/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ####################### valid cases
func TestSyncDocuments_Success(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var core zapcore.Core

	wantCharCountByPermalink := map[string]uint{
		"/tips/1":     29, // length of "Use string_view when you can."
		"/tips/empty": 0,  // => filtered from navigation trees because charCount is 0
	}

	// deep copy and set to invalid value
	gotCharCountByPermalink := make(map[string]uint, len(wantCharCountByPermalink))
	for k := range wantCharCountByPermalink {
		gotCharCountByPermalink[k] = 100_000_000
	}

	mockedRepo := &mockRepository{
		metasInDb: []models.DocumentMeta{
			{Model: models.Model{ID: 42}, Permalink: "/tips/obsolete"},
		},
		charCountByPermalink: gotCharCountByPermalink,
	}
	mockedHousekeeper := &mockHousekeeper{}

	env := &environment.Env{
		Repository: mockedRepo,
		Logger:     &logging.DefaultLogger{Logger: zap.New(core).Sugar()},
	}

	mockCtrl := &ingest.Controller{
		Env: env,
		ContentSource: &mockContentSource{
			files: []string{
				"tips/1.md",
				"tips/empty.md",
				"images/logo.png",
			},
			readContent: map[string]string{
				"tips/1.md":     "---\ntitle: \"Tip of the Week #1: string_view\"\nlayout: tips\norder: \"1\"\n---\n\nUse string_view when you can.\n",
				"tips/empty.md": "---\ntitle: Empty\nlayout: tips\norder: \"2\"\n---\n",
			},
		},
		DocumentHousekeeper: mockedHousekeeper,
		DocumentParser:      ingest.DocumentParser{Env: env, DefaultExcerptSeparator: "\n\n"},
		Linter:              lint.Linter{Env: env},
	}

	mockCtrl.SyncDocuments(c)

	want := http.StatusNoContent
	got := w.Code
	if got != want {
		t.Errorf("status code mismatch: got %d, want %d", got, want)
		return
	}

	if !mockedRepo.upsertContentsCalled {
		t.Error("upsert contents was not called")
		return
	}

	if !mockedRepo.upsertMetasCalled {
		t.Error("upsert metas was not called")
		return
	}

	if !cmp.Equal(wantCharCountByPermalink, gotCharCountByPermalink) {
		t.Error(cmp.Diff(wantCharCountByPermalink, gotCharCountByPermalink))
		return
	}

	if !mockedHousekeeper.called {
		t.Error("housekeeper was not called")
		return
	}

	if len(mockedRepo.upsertedContents) != 2 {
		t.Errorf("got %d upserted contents, want 2", len(mockedRepo.upsertedContents))
		return
	}

	// the png never becomes a document, and meta and content stay linked
	if mockedRepo.upsertedContents[0].Meta.Permalink != "/tips/1" {
		t.Errorf("got first content linked to %q, want %q", mockedRepo.upsertedContents[0].Meta.Permalink, "/tips/1")
	}
}

func TestSyncDocuments_SkipsUnreadableDocuments(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var core zapcore.Core

	mockedRepo := &mockRepository{}

	env := &environment.Env{
		Repository: mockedRepo,
		Logger:     &logging.DefaultLogger{Logger: zap.New(core).Sugar()},
	}

	mockCtrl := &ingest.Controller{
		Env: env,
		ContentSource: &mockContentSource{
			files: []string{
				"tips/1.md",
				"tips/2.md",
			},
			readContent: map[string]string{
				"tips/1.md": "---\ntitle: Tip 1\nlayout: tips\norder: \"1\"\n---\n\nhello\n",
				"tips/2.md": "---\ntitle: Tip 2\nlayout: tips\norder: \"2\"\n---\n\nworld\n",
			},
			failReadFile: map[string]bool{"tips/2.md": true},
		},
		DocumentHousekeeper: &mockHousekeeper{},
		DocumentParser:      ingest.DocumentParser{Env: env, DefaultExcerptSeparator: "\n\n"},
		Linter:              lint.Linter{Env: env},
	}

	mockCtrl.SyncDocuments(c)

	want := http.StatusNoContent
	got := w.Code
	if got != want {
		t.Errorf("status code mismatch: got %d, want %d", got, want)
		return
	}

	if len(mockedRepo.upsertedMetas) != 1 {
		t.Errorf("got %d upserted metas, want 1", len(mockedRepo.upsertedMetas))
		return
	}

	if mockedRepo.upsertedMetas[0].Permalink != "/tips/1" {
		t.Errorf("got %q, want %q", mockedRepo.upsertedMetas[0].Permalink, "/tips/1")
	}
}

func TestSyncDocuments_SkipsUnparsableDocuments(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var core zapcore.Core

	mockedRepo := &mockRepository{}

	env := &environment.Env{
		Repository: mockedRepo,
		Logger:     &logging.DefaultLogger{Logger: zap.New(core).Sugar()},
	}

	mockCtrl := &ingest.Controller{
		Env: env,
		ContentSource: &mockContentSource{
			files: []string{
				"tips/1.md",
				"tips/broken.md",
			},
			readContent: map[string]string{
				"tips/1.md":      "---\ntitle: Tip 1\nlayout: tips\norder: \"1\"\n---\n\nhello\n",
				"tips/broken.md": "---\ntitle: [unclosed\n---\n\nnever stored\n",
			},
		},
		DocumentHousekeeper: &mockHousekeeper{},
		DocumentParser:      ingest.DocumentParser{Env: env, DefaultExcerptSeparator: "\n\n"},
		Linter:              lint.Linter{Env: env},
	}

	mockCtrl.SyncDocuments(c)

	want := http.StatusNoContent
	got := w.Code
	if got != want {
		t.Errorf("status code mismatch: got %d, want %d", got, want)
		return
	}

	if len(mockedRepo.upsertedMetas) != 1 {
		t.Errorf("got %d upserted metas, want 1", len(mockedRepo.upsertedMetas))
		return
	}

	if mockedRepo.upsertedMetas[0].Permalink != "/tips/1" {
		t.Errorf("got %q, want %q", mockedRepo.upsertedMetas[0].Permalink, "/tips/1")
	}
}

func TestSyncDocuments_DuplicatePermalinkKeepsLastOccurrence(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var core zapcore.Core

	mockedRepo := &mockRepository{}

	env := &environment.Env{
		Repository: mockedRepo,
		Logger:     &logging.DefaultLogger{Logger: zap.New(core).Sugar()},
	}

	mockCtrl := &ingest.Controller{
		Env: env,
		ContentSource: &mockContentSource{
			files: []string{
				"tips/1.md",
				"tips/1-reworked.md",
				"tips/2.md",
			},
			readContent: map[string]string{
				"tips/1.md":          "---\ntitle: Tip 1\nlayout: tips\npermalink: /tips/1\norder: \"1\"\n---\n\nfirst occurrence\n",
				"tips/1-reworked.md": "---\ntitle: Tip 1 Reworked\nlayout: tips\npermalink: /tips/1\norder: \"1\"\n---\n\nlast occurrence\n",
				"tips/2.md":          "---\ntitle: Tip 2\nlayout: tips\norder: \"2\"\n---\n\nunrelated\n",
			},
		},
		DocumentHousekeeper: &mockHousekeeper{},
		DocumentParser:      ingest.DocumentParser{Env: env, DefaultExcerptSeparator: "\n\n"},
		Linter:              lint.Linter{Env: env},
	}

	mockCtrl.SyncDocuments(c)

	want := http.StatusNoContent
	got := w.Code
	if got != want {
		t.Errorf("status code mismatch: got %d, want %d", got, want)
		return
	}

	// the colliding permalink reaches the batched upserts exactly once
	if len(mockedRepo.upsertedMetas) != 2 {
		t.Fatalf("got %d upserted metas, want 2", len(mockedRepo.upsertedMetas))
	}
	if len(mockedRepo.upsertedContents) != 2 {
		t.Fatalf("got %d upserted contents, want 2", len(mockedRepo.upsertedContents))
	}

	metasByPermalink := make(map[string]models.DocumentMeta, len(mockedRepo.upsertedMetas))
	for _, m := range mockedRepo.upsertedMetas {
		metasByPermalink[m.Permalink] = m
	}

	if metasByPermalink["/tips/1"].SourcePath != "tips/1-reworked.md" {
		t.Errorf("got %q stored for /tips/1, want %q", metasByPermalink["/tips/1"].SourcePath, "tips/1-reworked.md")
		return
	}

	for _, content := range mockedRepo.upsertedContents {
		if content.Meta.Permalink != "/tips/1" {
			continue
		}
		if body := strings.TrimSpace(content.Body); body != "last occurrence" {
			t.Errorf("got body %q stored for /tips/1, want %q", body, "last occurrence")
		}
	}
}

// ####################### invalid cases
func TestSyncDocuments_ReadStructureFails(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var core zapcore.Core

	env := &environment.Env{Logger: &logging.DefaultLogger{Logger: zap.New(core).Sugar()}}

	mockCtrl := &ingest.Controller{
		Env: env,
		ContentSource: &mockContentSource{
			failList: true,
		},
	}

	mockCtrl.SyncDocuments(c)

	want := http.StatusInternalServerError
	got := w.Code
	if got != want {
		t.Errorf("status code mismatch: got %d, want %d", got, want)
		return
	}
}

func TestSyncDocuments_DBMetaFetchFails(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var core zapcore.Core

	env := &environment.Env{
		Repository: &mockRepository{
			findErr:       errors.New("selecting document metas failed"),
			failMetaQuery: true,
		},
		Logger: &logging.DefaultLogger{Logger: zap.New(core).Sugar()},
	}

	mockCtrl := &ingest.Controller{
		Env: env,
		ContentSource: &mockContentSource{
			files:       []string{"tips/intro.md"},
			readContent: map[string]string{"tips/intro.md": "hi"},
		},
		DocumentHousekeeper: &mockHousekeeper{},
		DocumentParser:      ingest.DocumentParser{Env: env, DefaultExcerptSeparator: "\n\n"},
		Linter:              lint.Linter{Env: env},
	}

	mockCtrl.SyncDocuments(c)

	want := http.StatusInternalServerError
	got := w.Code
	if got != want {
		t.Errorf("status code mismatch: got %d, want %d", got, want)
		return
	}
}

func TestSyncDocuments_HousekeeperFails(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var core zapcore.Core

	env := &environment.Env{
		Repository: &mockRepository{
			metasInDb: []models.DocumentMeta{
				{Model: models.Model{ID: 1}, Permalink: "/tips/gone"},
			},
		},
		Logger: &logging.DefaultLogger{Logger: zap.New(core).Sugar()},
	}

	mockCtrl := &ingest.Controller{
		Env: env,
		ContentSource: &mockContentSource{
			files:       []string{"tips/intro.md"},
			readContent: map[string]string{"tips/intro.md": "hi"},
		},
		DocumentHousekeeper: &mockHousekeeper{returnError: errors.New("cleanup failed")},
		DocumentParser:      ingest.DocumentParser{Env: env, DefaultExcerptSeparator: "\n\n"},
		Linter:              lint.Linter{Env: env},
	}

	mockCtrl.SyncDocuments(c)

	want := http.StatusInternalServerError
	got := w.Code
	if got != want {
		t.Errorf("status code mismatch: got %d, want %d", got, want)
		return
	}
}

// ####################### creating mocks
type mockHousekeeper struct {
	called           bool
	inputSourceMetas []models.DocumentMeta
	inputDbMetas     []models.DocumentMeta
	returnError      error
}

func (m *mockHousekeeper) DeleteObsoleteDocumentsFromDatabase(
	ctx context.Context,
	documentMetasFromSource []models.DocumentMeta,
	documentMetasFromDb []models.DocumentMeta,
) error {
	m.called = true
	m.inputSourceMetas = documentMetasFromSource
	m.inputDbMetas = documentMetasFromDb
	return m.returnError
}

type mockContentSource struct {
	files       []string
	readContent map[string]string

	failList     bool
	failReadFile map[string]bool
}

func (m *mockContentSource) ReadDocumentPaths() ([]string, error) {
	if m.failList {
		return nil, fmt.Errorf("failed to list markdown files")
	}
	return m.files, nil
}

func (m *mockContentSource) ReadDocumentContent(path string) (string, error) {
	if m.failReadFile != nil && m.failReadFile[path] {
		return "", fmt.Errorf("failed to read %s", path)
	}
	return m.readContent[path], nil
}

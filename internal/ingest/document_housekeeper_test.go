package ingest_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"tips-content-service/internal/environment"
	"tips-content-service/internal/ingest"
	"tips-content-service/internal/logging"
	"tips-content-service/internal/models"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ####################### tests
func TestDeleteObsoleteDocumentsFromDatabase_CleansUpCorrectly(t *testing.T) {
	mockRepo := &mockRepository{
		foundContentIds: []uint{101, 102},
	}

	env := environment.Null()
	env.Repository = mockRepo

	hk := &ingest.DefaultDocumentHousekeeper{Env: env}

	dbMetas := []models.DocumentMeta{
		{Model: models.Model{ID: 1}, Permalink: "/tips/1"},
		{Model: models.Model{ID: 2}, Permalink: "/tips/2"},
	}
	sourceMetas := []models.DocumentMeta{
		{Model: models.Model{ID: 1}, Permalink: "/tips/1"},
	}

	ctx := context.Background()
	err := hk.DeleteObsoleteDocumentsFromDatabase(ctx, sourceMetas, dbMetas)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []uint{2}
	got := mockRepo.deletedMetas
	if !cmp.Equal(got, want) {
		t.Errorf("deletedMetas mismatch:\n got:  %v\n want: %v", got, want)
	}

	want = []uint{101, 102}
	got = mockRepo.deletedContent
	if !cmp.Equal(got, want) {
		t.Errorf("deletedContent mismatch:\n got:  %v\n want: %v", got, want)
	}
}

func TestDeleteObsoleteDocuments_EarlyReturn(t *testing.T) {
	mockRepo := &mockRepository{}
	var core zapcore.Core

	env := &environment.Env{
		Repository: mockRepo,
		Logger: &logging.DefaultLogger{
			Logger: zap.New(core).Sugar(),
		},
	}
	hk := &ingest.DefaultDocumentHousekeeper{Env: env}

	err := hk.DeleteObsoleteDocumentsFromDatabase(context.Background(),
		[]models.DocumentMeta{{Permalink: "/tips/1"}},
		[]models.DocumentMeta{{Model: models.Model{ID: 1}, Permalink: "/tips/1"}},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(mockRepo.deletedMetas) != 0 {
		t.Errorf("got deletedMetas = %v, want = []", mockRepo.deletedMetas)
	}
	if len(mockRepo.deletedContent) != 0 {
		t.Errorf("got deletedContent = %v, want = []", mockRepo.deletedContent)
	}
}

func TestDeleteObsoleteDocuments_ErrorFetchingContentIds(t *testing.T) {
	mockRepo := &mockRepository{
		findErr: errors.New("boom"),
	}
	var core zapcore.Core

	env := &environment.Env{
		Repository: mockRepo,
		Logger: &logging.DefaultLogger{
			Logger: zap.New(core).Sugar(),
		},
	}
	hk := &ingest.DefaultDocumentHousekeeper{Env: env}

	err := hk.DeleteObsoleteDocumentsFromDatabase(context.Background(),
		[]models.DocumentMeta{{Permalink: "/tips/1"}},
		[]models.DocumentMeta{{Model: models.Model{ID: 2}, Permalink: "/blog/gone"}},
	)

	if err == nil || !strings.Contains(err.Error(), "error fetching") {
		t.Errorf("expected fetch error, got = %v", err)
	}
}

func TestDeleteObsoleteDocuments_ErrorDeletingContent(t *testing.T) {
	mockRepo := &mockRepository{
		foundContentIds: []uint{101},
		deleteContErr:   errors.New("delete fail"),
	}
	var core zapcore.Core

	env := &environment.Env{
		Repository: mockRepo,
		Logger: &logging.DefaultLogger{
			Logger: zap.New(core).Sugar(),
		},
	}

	hk := &ingest.DefaultDocumentHousekeeper{Env: env}

	err := hk.DeleteObsoleteDocumentsFromDatabase(context.Background(),
		[]models.DocumentMeta{{Permalink: "/tips/1"}},
		[]models.DocumentMeta{{Model: models.Model{ID: 3}, Permalink: "/tips/obsolete"}},
	)

	if err == nil || !strings.Contains(err.Error(), "delete fail") {
		t.Errorf("expected content deletion error, got = %v", err)
	}
}

func TestDeleteObsoleteDocuments_ErrorDeletingMetas(t *testing.T) {
	mockRepo := &mockRepository{
		foundContentIds: []uint{},
		deleteMetaErr:   errors.New("can't delete metas"),
	}
	var core zapcore.Core

	env := &environment.Env{
		Repository: mockRepo,
		Logger: &logging.DefaultLogger{
			Logger: zap.New(core).Sugar(),
		},
	}

	hk := &ingest.DefaultDocumentHousekeeper{Env: env}

	err := hk.DeleteObsoleteDocumentsFromDatabase(context.Background(),
		[]models.DocumentMeta{{Permalink: "/tips/1"}},
		[]models.DocumentMeta{{Model: models.Model{ID: 99}, Permalink: "/blog/baz"}},
	)

	if err == nil || !strings.Contains(err.Error(), "can't delete metas") {
		t.Errorf("expected meta deletion error, got = %v", err)
	}
}

func TestDeleteObsoleteDocuments_WarnWhenNoContentToDelete(t *testing.T) {
	mockRepo := &mockRepository{
		foundContentIds: []uint{},
	}
	var core zapcore.Core

	env := &environment.Env{
		Repository: mockRepo,
		Logger: &logging.DefaultLogger{
			Logger: zap.New(core).Sugar(),
		},
	}

	hk := &ingest.DefaultDocumentHousekeeper{Env: env}

	err := hk.DeleteObsoleteDocumentsFromDatabase(context.Background(),
		[]models.DocumentMeta{{Permalink: "/tips/keep-me"}},
		[]models.DocumentMeta{{Model: models.Model{ID: 7}, Permalink: "/tips/remove-me"}},
	)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := mockRepo.deletedMetas; !cmp.Equal(got, []uint{7}) {
		t.Errorf("got deletedMetas = %v, want = [7]", got)
	}
	if got := mockRepo.deletedContent; len(got) != 0 {
		t.Errorf("expected no content deleted, got = %v", got)
	}
}

// ####################### creating mocks
type mockRepository struct {
	deletedMetas   []uint
	deletedContent []uint

	foundContentIds []uint
	findErr         error
	deleteMetaErr   error
	deleteContErr   error

	metasInDb []models.DocumentMeta

	upsertedMetas        []models.DocumentMeta
	upsertedContents     []models.DocumentContent
	upsertMetasCalled    bool
	upsertContentsCalled bool
	failMetaQuery        bool

	charCountByPermalink map[string]uint
}

func (m *mockRepository) FindDocumentsBySearchTermSimple(ctx context.Context, searchTerm string, documents *[]models.DocumentContent) error {
	panic("implement me")
}

func (m *mockRepository) CountDocumentMatchesBySearchTermSimple(ctx context.Context, searchTerm string, matchCount *int) error {
	panic("implement me")
}

func (m *mockRepository) DeleteDocumentMetasByIds(_ context.Context, ids []uint) error {
	if m.deleteMetaErr != nil {
		return m.deleteMetaErr
	}
	m.deletedMetas = ids
	return nil
}

func (m *mockRepository) DeleteDocumentContentsByIds(_ context.Context, ids []uint) error {
	if m.deleteContErr != nil {
		return m.deleteContErr
	}
	m.deletedContent = ids
	return nil
}

func (m *mockRepository) FindUserLoginCredentials(_ context.Context, _ string, _ *models.User) error {
	return nil
}

func (m *mockRepository) FindAllDocumentMetas(_ context.Context, metas *[]models.DocumentMeta) error {
	if m.failMetaQuery {
		return m.findErr
	}
	*metas = m.metasInDb
	return nil
}

func (m *mockRepository) FindPublishedDocumentMetas(_ context.Context, _ *[]models.DocumentMeta) error {
	return nil
}

func (m *mockRepository) FindAllDocumentContents(_ context.Context, _ *[]models.DocumentContent) error {
	return nil
}

func (m *mockRepository) FindDocumentContentByPermalink(_ context.Context, _ string, _ *models.DocumentContent) error {
	return nil
}

func (m *mockRepository) FindDocumentContentIdsByMetaIds(_ context.Context, _ []uint, out *[]uint) error {
	if m.findErr != nil {
		return m.findErr
	}
	*out = m.foundContentIds
	return nil
}

func (m *mockRepository) UpsertDocumentMetas(_ context.Context, metas []models.DocumentMeta) error {
	m.upsertedMetas = metas

	// if the map is filled in a test,
	// update the charCount values so you can verify the logic calling this receiver method
	if len(m.charCountByPermalink) > 0 {
		for _, v := range metas {
			if _, ok := m.charCountByPermalink[v.Permalink]; !ok {
				continue
			}
			m.charCountByPermalink[v.Permalink] = v.CharCount
		}
	}

	m.upsertMetasCalled = true
	return nil
}

func (m *mockRepository) UpsertDocumentContents(_ context.Context, contents []models.DocumentContent) error {
	m.upsertedContents = contents
	m.upsertContentsCalled = true
	return nil
}

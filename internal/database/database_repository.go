package database

import (
	"context"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"time"
	"tips-content-service/internal/models"
)

// Repository defines data access methods for interacting with document-related
// database records, including document metadata, bodies, and user login credentials.
//
// @Summary Interface for document storage operations
type Repository interface {

	// DeleteDocumentMetasByIds deletes document meta records with the given IDs.
	//
	// Param metaIds body []uint true "List of document meta IDs to delete"
	DeleteDocumentMetasByIds(ctx context.Context, metaIds []uint) error

	// DeleteDocumentContentsByIds deletes document content records with the given IDs.
	//
	// Param contentIds body []uint true "List of document content IDs to delete"
	DeleteDocumentContentsByIds(ctx context.Context, contentIds []uint) error

	// FindUserLoginCredentials fetches the user record with the specified username.
	//
	// Param username path string true "Username"
	FindUserLoginCredentials(ctx context.Context, username string, user *models.User) error

	// FindAllDocumentMetas retrieves all document metadata records from the database.
	FindAllDocumentMetas(ctx context.Context, documentMetas *[]models.DocumentMeta) error

	// FindPublishedDocumentMetas retrieves metadata of published documents with a non-empty body.
	FindPublishedDocumentMetas(ctx context.Context, documentMetas *[]models.DocumentMeta) error

	// FindAllDocumentContents retrieves all document content records together with their metas.
	FindAllDocumentContents(ctx context.Context, documentContents *[]models.DocumentContent) error

	// FindDocumentContentByPermalink fetches document content by permalink.
	//
	// Param permalink path string true "Document permalink"
	FindDocumentContentByPermalink(ctx context.Context, permalink string, documentContent *models.DocumentContent) error

	// FindDocumentContentIdsByMetaIds fetches content IDs by related document meta IDs.
	//
	// Param metaIds body []uint true "Meta IDs to search"
	FindDocumentContentIdsByMetaIds(ctx context.Context, documentMetaIds []uint, documentContentIds *[]uint) error

	FindDocumentsBySearchTermSimple(ctx context.Context, searchTerm string, documents *[]models.DocumentContent) error

	CountDocumentMatchesBySearchTermSimple(ctx context.Context, searchTerm string, matchCount *int) error

	// UpsertDocumentMetas inserts or updates document meta records.
	//
	// Param documentMetas body []models.DocumentMeta true "Document meta data"
	UpsertDocumentMetas(ctx context.Context, documentMetas []models.DocumentMeta) error

	// UpsertDocumentContents inserts or updates document content records.
	//
	// Param documentContents body []models.DocumentContent true "Document content data"
	UpsertDocumentContents(ctx context.Context, documentContents []models.DocumentContent) error
}

// NullRepository is a no-op implementation of the Repository interface.
// Useful for testing or default wiring when no database operations are required.
type NullRepository struct{}

func (n *NullRepository) DeleteDocumentMetasByIds(ctx context.Context, metaIds []uint) error {
	return nil
}

func (n *NullRepository) DeleteDocumentContentsByIds(ctx context.Context, contentIds []uint) error {
	return nil
}

func (n *NullRepository) FindUserLoginCredentials(ctx context.Context, username string, user *models.User) error {
	return nil
}

func (n *NullRepository) FindAllDocumentMetas(ctx context.Context, documentMetas *[]models.DocumentMeta) error {
	return nil
}

func (n *NullRepository) FindPublishedDocumentMetas(ctx context.Context, documentMetas *[]models.DocumentMeta) error {
	return nil
}

func (n *NullRepository) FindAllDocumentContents(ctx context.Context, documentContents *[]models.DocumentContent) error {
	return nil
}

func (n *NullRepository) FindDocumentContentByPermalink(ctx context.Context, permalink string, documentContent *models.DocumentContent) error {
	return nil
}

func (n *NullRepository) FindDocumentContentIdsByMetaIds(ctx context.Context, documentMetaIds []uint, documentContentIds *[]uint) error {
	return nil
}

func (n *NullRepository) FindDocumentsBySearchTermSimple(ctx context.Context, searchTerm string, documents *[]models.DocumentContent) error {
	return nil
}

func (n *NullRepository) CountDocumentMatchesBySearchTermSimple(ctx context.Context, searchTerm string, matchCount *int) error {
	return nil
}

func (n *NullRepository) UpsertDocumentMetas(ctx context.Context, documentMetas []models.DocumentMeta) error {
	return nil
}

func (n *NullRepository) UpsertDocumentContents(ctx context.Context, documentContents []models.DocumentContent) error {
	return nil
}

// ensure NullRepository implements Repository
var _ Repository = &NullRepository{}

// GormRepository provides a GORM-based implementation of the Repository interface.
type GormRepository struct {
	*gorm.DB
}

// ensure GormRepository implements Repository
var _ Repository = &GormRepository{}

func (g *GormRepository) DeleteDocumentMetasByIds(ctx context.Context, metaIds []uint) error {
	return g.DB.
		WithContext(ctx).
		Exec("DELETE FROM document_metas WHERE id IN ?", metaIds).
		Error
}

func (g *GormRepository) DeleteDocumentContentsByIds(ctx context.Context, contentIds []uint) error {
	return g.DB.
		WithContext(ctx).
		Exec("DELETE FROM document_contents WHERE id IN ?", contentIds).
		Error
}

func (g *GormRepository) FindAllDocumentMetas(ctx context.Context, documentMetas *[]models.DocumentMeta) error {
	return g.DB.
		WithContext(ctx).
		Find(documentMetas).
		Error
}

func (g *GormRepository) FindPublishedDocumentMetas(ctx context.Context, documentMetas *[]models.DocumentMeta) error {
	return g.DB.
		WithContext(ctx).
		Where("published = ? AND char_count > ?", true, 0).
		Find(documentMetas).
		Error
}

func (g *GormRepository) FindAllDocumentContents(ctx context.Context, documentContents *[]models.DocumentContent) error {
	return g.DB.
		WithContext(ctx).
		Joins("Meta").
		Find(documentContents).
		Error
}

func (g *GormRepository) FindUserLoginCredentials(ctx context.Context, username string, user *models.User) error {
	return g.DB.
		WithContext(ctx).
		Model(models.User{}).
		Where("username = ?", username).
		Take(user).
		Error
}

func (g *GormRepository) FindDocumentContentByPermalink(ctx context.Context, permalink string, documentContent *models.DocumentContent) error {
	return g.DB.
		WithContext(ctx).
		Model(&documentContent).
		Joins("Meta").
		First(&documentContent, "permalink = ?", permalink).
		Error
}

func (g *GormRepository) FindDocumentContentIdsByMetaIds(ctx context.Context, documentMetaIds []uint, documentContentIds *[]uint) error {
	return g.DB.
		WithContext(ctx).
		Preload(clause.Associations).
		Raw("SELECT id FROM document_contents WHERE meta_id IN ?", documentMetaIds).
		Scan(&documentContentIds).
		Error
}

func (g *GormRepository) FindDocumentsBySearchTermSimple(ctx context.Context, searchTerm string, documents *[]models.DocumentContent) error {

	var documentJoined []struct {
		MetaID        uint
		MetaCreatedAt time.Time
		MetaUpdatedAt time.Time
		Permalink     string
		Title         string
		Category      string
		SourcePath    string
		CharCount     uint

		ContentId        uint
		ContentCreatedAt time.Time
		ContentUpdatedAt time.Time
		Body             string
	}

	err := g.DB.
		WithContext(ctx).
		Raw(`
				SELECT
					dm.id AS MetaID,
				    dm.created_at AS MetaCreatedAt,
				    dm.updated_at AS MetaUpdatedAt,
				    dm.permalink AS Permalink,
				    dm.title AS Title,
				    dm.category AS Category,
				    dm.source_path AS SourcePath,
				    dm.char_count AS CharCount,
				    dc.id AS ContentId,
				    dc.created_at AS ContentCreatedAt,
				    dc.updated_at AS ContentUpdatedAt,
				    dc.body AS Body
				FROM document_contents dc
				JOIN document_metas dm ON dm.id = dc.meta_id
				WHERE body LIKE '%'|| ? ||'%'
					AND published = true`,
			searchTerm,
		).
		Scan(&documentJoined).
		Error
	if err != nil {
		return err
	}

	if len(documentJoined) == 0 {
		return nil
	}

	for _, d := range documentJoined {
		meta := models.DocumentMeta{
			Permalink: d.Permalink,
			Title:     d.Title,
			Category:  d.Category,
		}

		content := models.DocumentContent{
			Meta: meta,
			Body: d.Body,
		}

		*documents = append(*documents, content)
	}

	return nil
}

func (g *GormRepository) CountDocumentMatchesBySearchTermSimple(ctx context.Context, searchTerm string, matchCount *int) error {
	return g.DB.
		WithContext(ctx).
		Raw(`
				SELECT count(*)
				FROM document_contents dc,
					 document_metas dm
				WHERE dc.meta_id = dm.id
					AND body LIKE '%'|| ? ||'%'
					AND published = true`,
			searchTerm,
		).
		Scan(matchCount).
		Error
}

func (g *GormRepository) UpsertDocumentMetas(ctx context.Context, documentMetas []models.DocumentMeta) error {
	return g.DB.
		WithContext(ctx).
		Clauses(clause.OnConflict{
			// update all columns to new value on `permalink` conflict except primary keys
			// and those columns having default values from sql func
			Columns:   []clause.Column{{Name: "permalink"}},
			UpdateAll: true,
		}).
		Create(&documentMetas).
		Error
}

func (g *GormRepository) UpsertDocumentContents(ctx context.Context, documentContents []models.DocumentContent) error {
	return g.DB.
		WithContext(ctx).
		Clauses(clause.OnConflict{
			// update all columns to new value on `meta_id` conflict except primary keys
			// and those columns having default values from sql func
			Columns:   []clause.Column{{Name: "meta_id"}},
			UpdateAll: true,
		}).
		Create(&documentContents).
		Error
}

package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"
	"tips-content-service/internal/environment"
	"tips-content-service/internal/logging"
	"tips-content-service/internal/models"
	"tips-content-service/internal/utils"
)

// DocumentHousekeeper defines methods for cleaning up obsolete document records
type DocumentHousekeeper interface {
	// DeleteObsoleteDocumentsFromDatabase removes DocumentMeta and DocumentContent records
	// whose permalink no longer exists in the content source.
	//
	// param ctx param context.Context true "the context used for request-scoped operations"
	// param documentMetasFromSource the set of document meta records read from the content source
	// param documentMetasFromDb the set of document meta records currently in the database
	// return error if deletion or lookup operations fail
	DeleteObsoleteDocumentsFromDatabase(ctx context.Context, documentMetasFromSource []models.DocumentMeta, documentMetasFromDb []models.DocumentMeta) error
}

// DefaultDocumentHousekeeper provides a default implementation of DocumentHousekeeper.
type DefaultDocumentHousekeeper struct {
	*environment.Env
}

// DeleteObsoleteDocumentsFromDatabase compares document metadata from the content source
// with entries in the database and deletes entries from the database that are no longer present.
//
// The permalink is the identity used for the comparison.
//
// param ctx the context for database operations
// param documentMetasFromSource the current document metadata from the content source
// param documentMetasFromDb the existing document metadata in the database
// return error if any lookup or deletion fails
func (hk *DefaultDocumentHousekeeper) DeleteObsoleteDocumentsFromDatabase(ctx context.Context, documentMetasFromSource []models.DocumentMeta, documentMetasFromDb []models.DocumentMeta) error {
	hk.LogInfo(logging.GetLogTypeSync(), "start document meta data clean up")

	documentMetasFromSourceByPermalink := utils.SliceToMap(documentMetasFromSource, func(meta models.DocumentMeta) string { return meta.Permalink })

	toBeDeletedDocumentMetaIds := make([]uint, 0, len(documentMetasFromDb)/2)
	for _, v := range documentMetasFromDb {
		if _, ok := documentMetasFromSourceByPermalink[v.Permalink]; !ok {
			toBeDeletedDocumentMetaIds = append(toBeDeletedDocumentMetaIds, v.ID)
		}
	}

	if len(toBeDeletedDocumentMetaIds) == 0 {
		hk.LogInfo(logging.GetLogTypeSync(), "no cleanup for documents needed; early return")
		return nil
	}

	toBeDeletedDocumentContentIds := make([]uint, 0, len(toBeDeletedDocumentMetaIds))

	err := hk.FindDocumentContentIdsByMetaIds(ctx, toBeDeletedDocumentMetaIds, &toBeDeletedDocumentContentIds)
	if err != nil {
		hk.LogError(logging.GetLogTypeSync(), err.Error())
		return fmt.Errorf("error fetching to be deleted document content data from the database: %s", err.Error())
	}

	if len(toBeDeletedDocumentContentIds) > 0 {
		err = hk.deleteObsoleteTuples(ctx, toBeDeletedDocumentContentIds, DocumentContent)
		if err != nil {
			return err
		}
	} else {
		msg := hk.createWarningMsgForMetasWithoutAReferenceToAContent(documentMetasFromDb, toBeDeletedDocumentMetaIds)
		hk.LogWarn(logging.GetLogTypeSync(), msg)
	}

	err = hk.deleteObsoleteTuples(ctx, toBeDeletedDocumentMetaIds, DocumentMeta)
	if err != nil {
		return err
	}

	return nil
}

// deleteObsoleteTuples removes document records (either meta or content) from the database,
// logs the outcome and tracks the deletion duration.
//
// param ctx the operation context
// param toBeDeletedDocumentTupleIds list of IDs to be deleted
// param modelType the type of model to delete (DocumentMeta or DocumentContent)
// return error if deletion fails or if modelType is invalid
func (hk *DefaultDocumentHousekeeper) deleteObsoleteTuples(ctx context.Context, toBeDeletedDocumentTupleIds []uint, modelType ModelType) error {
	start := time.Now()
	msg := fmt.Sprintf("deleting %d obsolete %s tuple(s)", len(toBeDeletedDocumentTupleIds), modelType)

	hk.LogInfo(logging.GetLogTypeSync(), "start "+msg)

	var err error
	switch modelType {
	case DocumentContent:
		err = hk.DeleteDocumentContentsByIds(ctx, toBeDeletedDocumentTupleIds)
	case DocumentMeta:
		err = hk.DeleteDocumentMetasByIds(ctx, toBeDeletedDocumentTupleIds)
	default:
		return fmt.Errorf("invalid model type: %s", modelType)
	}

	end := time.Now()

	if err != nil {
		hk.LogError(logging.GetLogTypeSync(), err.Error())
		return fmt.Errorf("error deleting %s tuple(s) from the database: %s", modelType, err.Error())
	}

	hk.LogInfo(logging.GetLogTypeSync(), "finished "+msg)
	hk.LogInfo(logging.GetLogTypeSync(), fmt.Sprintf("duration: %dms", end.Sub(start).Milliseconds()))

	return nil
}

// createWarningMsgForMetasWithoutAReferenceToAContent generates a warning message for
// document meta entries that no longer have related content records.
//
// param documentMetasFromDb all document metas in the database
// param toBeDeletedDocumentMetaIds list of IDs with no associated document content
// return a formatted warning message listing the orphaned document meta entries
func (hk *DefaultDocumentHousekeeper) createWarningMsgForMetasWithoutAReferenceToAContent(documentMetasFromDb []models.DocumentMeta, toBeDeletedDocumentMetaIds []uint) string {
	documentMetasFromDbById := utils.SliceToMap(documentMetasFromDb, func(meta models.DocumentMeta) uint { return meta.ID })

	var sb strings.Builder
	sb.WriteString("no document content is referenced by: ")

	for _, v := range toBeDeletedDocumentMetaIds {
		meta := documentMetasFromDbById[v]
		sb.WriteString(fmt.Sprintf("(id=%d, permalink=%s), ", v, meta.Permalink))
	}
	msg := sb.String()
	msg = strings.TrimSuffix(msg, ", ")

	return msg
}

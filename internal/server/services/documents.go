package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/movieshelf/internal/common"
	"github.com/dmitrijs2005/movieshelf/internal/server/models"
	"github.com/dmitrijs2005/movieshelf/internal/server/repositories/repomanager"
)

const (
	DefaultListLimit = 25
	MaxListLimit     = 100
)

// DocumentService exposes the configured collections. For collections with
// an owner field, callers only ever see and touch their own documents.
type DocumentService struct {
	repomanager repomanager.RepositoryManager
	collections map[string]models.CollectionSpec
}

func NewDocumentService(m repomanager.RepositoryManager) *DocumentService {
	return &DocumentService{repomanager: m, collections: models.Collections}
}

func (s *DocumentService) spec(collection string) (models.CollectionSpec, error) {
	spec, ok := s.collections[collection]
	if !ok {
		return spec, fmt.Errorf("%w: unknown collection %q", common.ErrorNotFound, collection)
	}
	return spec, nil
}

func (s *DocumentService) List(ctx context.Context, callerID string, q models.DocumentQuery) ([]*models.Document, error) {
	spec, err := s.spec(q.Collection)
	if err != nil {
		return nil, err
	}

	if q.Offset < 0 {
		return nil, fmt.Errorf("%w: negative offset", common.ErrorValidation)
	}

	switch {
	case q.Limit <= 0:
		q.Limit = DefaultListLimit
	case q.Limit > MaxListLimit:
		q.Limit = MaxListLimit
	}

	if spec.OwnerField != "" {
		filters := make([]models.Filter, 0, len(q.Filters)+1)
		for _, f := range q.Filters {
			if f.Field == spec.OwnerField {
				if v, ok := f.Value.(string); !ok || v != callerID {
					return nil, nil
				}
				continue
			}
			filters = append(filters, f)
		}
		q.Filters = append(filters, models.Filter{Field: spec.OwnerField, Value: callerID})
	}

	docs, err := s.repomanager.Repositories().Documents.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("error listing documents: %w", err)
	}
	return docs, nil
}

func (s *DocumentService) Create(ctx context.Context, callerID, collection string, fields map[string]any) (*models.Document, error) {
	spec, err := s.spec(collection)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, validationError("fields are required")
	}

	if spec.OwnerField != "" {
		owner, present := fields[spec.OwnerField]
		if present && owner != callerID {
			return nil, common.ErrorForbidden
		}
		data := make(map[string]any, len(fields)+1)
		for k, v := range fields {
			data[k] = v
		}
		data[spec.OwnerField] = callerID
		fields = data
	}

	return s.repomanager.Repositories().Documents.Create(ctx, collection, fields)
}

func (s *DocumentService) Update(ctx context.Context, callerID, collection, id string, fields map[string]any, expectedRevision int64) (*models.Document, error) {
	spec, err := s.spec(collection)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, validationError("fields are required")
	}
	if expectedRevision < 0 {
		return nil, validationError("expected revision must not be negative")
	}

	repo := s.repomanager.Repositories().Documents

	if spec.OwnerField != "" {
		if owner, present := fields[spec.OwnerField]; present && owner != callerID {
			return nil, common.ErrorForbidden
		}
		if err := s.checkOwner(ctx, spec, collection, id, callerID); err != nil {
			return nil, err
		}
	}

	return repo.Update(ctx, collection, id, fields, expectedRevision)
}

func (s *DocumentService) Delete(ctx context.Context, callerID, collection, id string) error {
	spec, err := s.spec(collection)
	if err != nil {
		return err
	}
	if spec.OwnerField != "" {
		if err := s.checkOwner(ctx, spec, collection, id, callerID); err != nil {
			return err
		}
	}
	return s.repomanager.Repositories().Documents.Delete(ctx, collection, id)
}

// checkOwner hides other users' documents behind NotFound.
func (s *DocumentService) checkOwner(ctx context.Context, spec models.CollectionSpec, collection, id, callerID string) error {
	d, err := s.repomanager.Repositories().Documents.Get(ctx, collection, id)
	if err != nil {
		return err
	}
	if owner, _ := d.Data[spec.OwnerField].(string); owner != callerID {
		return common.ErrorNotFound
	}
	return nil
}

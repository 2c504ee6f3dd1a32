package documents

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/movieshelf/internal/common"
	"github.com/dmitrijs2005/movieshelf/internal/server/models"
	"github.com/google/uuid"
)

// MemoryRepository mirrors the Postgres repository in process memory,
// including the unique keys declared in models.Collections.
type MemoryRepository struct {
	mu   sync.Mutex
	docs map[string]*models.Document
	// seq keeps creation order stable when timestamps collide.
	seq   map[string]int64
	next  int64
	clock func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		docs:  make(map[string]*models.Document),
		seq:   make(map[string]int64),
		clock: func() time.Time { return time.Now().UTC() },
	}
}

func (r *MemoryRepository) List(_ context.Context, q models.DocumentQuery) ([]*models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	filters := make([]models.Filter, 0, len(q.Filters))
	for _, f := range q.Filters {
		v, err := normalize(f.Value)
		if err != nil {
			return nil, err
		}
		filters = append(filters, models.Filter{Field: f.Field, Value: v})
	}

	var out []*models.Document
	for _, d := range r.docs {
		if d.Collection == q.Collection && matches(d.Data, filters) {
			out = append(out, d)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if q.OrderBy == "" {
			return r.seq[a.ID] < r.seq[b.ID]
		}
		av, aok := a.Data[q.OrderBy]
		bv, bok := b.Data[q.OrderBy]
		if aok != bok {
			return aok
		}
		if aok {
			if c := compareValues(av, bv); c != 0 {
				if q.Desc {
					return c > 0
				}
				return c < 0
			}
		}
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.After(b.UpdatedAt)
		}
		return a.ID < b.ID
	})

	if q.Offset > 0 {
		out = out[min(q.Offset, len(out)):]
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}

	result := make([]*models.Document, len(out))
	for i, d := range out {
		result[i] = clone(d)
	}
	return result, nil
}

func (r *MemoryRepository) Get(_ context.Context, collection, id string) (*models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.docs[id]
	if !ok || d.Collection != collection {
		return nil, common.ErrorNotFound
	}
	return clone(d), nil
}

func (r *MemoryRepository) Create(_ context.Context, collection string, data map[string]any) (*models.Document, error) {
	norm, err := normalizeMap(data)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.clashes(collection, "", norm) {
		return nil, common.ErrorAlreadyExists
	}

	now := r.clock()
	d := &models.Document{
		ID:         uuid.NewString(),
		Collection: collection,
		Revision:   1,
		Data:       norm,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	r.next++
	r.seq[d.ID] = r.next
	r.docs[d.ID] = d

	return clone(d), nil
}

func (r *MemoryRepository) Update(_ context.Context, collection, id string, fields map[string]any, expectedRevision int64) (*models.Document, error) {
	norm, err := normalizeMap(fields)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.docs[id]
	if !ok || d.Collection != collection {
		return nil, common.ErrorNotFound
	}
	if expectedRevision != 0 && d.Revision != expectedRevision {
		return nil, common.ErrVersionConflict
	}

	merged := make(map[string]any, len(d.Data)+len(norm))
	for k, v := range d.Data {
		merged[k] = v
	}
	for k, v := range norm {
		merged[k] = v
	}
	if r.clashes(collection, id, merged) {
		return nil, common.ErrorAlreadyExists
	}

	d.Data = merged
	d.Revision++
	d.UpdatedAt = r.clock()

	return clone(d), nil
}

func (r *MemoryRepository) Delete(_ context.Context, collection, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.docs[id]
	if !ok || d.Collection != collection {
		return common.ErrorNotFound
	}
	delete(r.docs, id)
	delete(r.seq, id)
	return nil
}

// clashes reports whether data collides with another document's unique key.
// Documents missing any key field never clash, like a partial index on NULLs.
func (r *MemoryRepository) clashes(collection, selfID string, data map[string]any) bool {
	spec, ok := models.Collections[collection]
	if !ok || len(spec.UniqueKey) == 0 {
		return false
	}
	key, ok := uniqueKey(spec.UniqueKey, data)
	if !ok {
		return false
	}
	for id, other := range r.docs {
		if id == selfID || other.Collection != collection {
			continue
		}
		if k, ok := uniqueKey(spec.UniqueKey, other.Data); ok && k == key {
			return true
		}
	}
	return false
}

// uniqueKey renders fields the way Postgres' ->> operator does.
func uniqueKey(fields []string, data map[string]any) (string, bool) {
	parts := make([]string, len(fields))
	for i, f := range fields {
		v, ok := data[f]
		if !ok || v == nil {
			return "", false
		}
		if s, isStr := v.(string); isStr {
			parts[i] = s
			continue
		}
		raw, _ := json.Marshal(v)
		parts[i] = string(raw)
	}
	return strings.Join(parts, "\x00"), true
}

func matches(data map[string]any, filters []models.Filter) bool {
	for _, f := range filters {
		v, ok := data[f.Field]
		if !ok || !reflect.DeepEqual(v, f.Value) {
			return false
		}
	}
	return true
}

// compareValues orders JSON scalars: numbers numerically, strings
// lexically, and mixed kinds by kind.
func compareValues(a, b any) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return ra - rb
	}
	switch av := a.(type) {
	case float64:
		bv := b.(float64)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
	case string:
		return strings.Compare(av, b.(string))
	case bool:
		bv := b.(bool)
		if av == bv {
			return 0
		}
		if !av {
			return -1
		}
		return 1
	}
	return 0
}

func rank(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case string:
		return 1
	case float64:
		return 2
	case bool:
		return 3
	default:
		return 4
	}
}

// normalizeMap round-trips m through JSON so stored values have the same
// shapes the Postgres repository returns and callers cannot alias them.
func normalizeMap(m map[string]any) (map[string]any, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode data: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode data: %w", err)
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}

func normalize(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode value: %w", err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode value: %w", err)
	}
	return out, nil
}

func clone(d *models.Document) *models.Document {
	out := *d
	out.Data = make(map[string]any, len(d.Data))
	for k, v := range d.Data {
		out.Data[k] = v
	}
	return &out
}

package models

import "time"

// Document is a record of a named collection; Data is an opaque JSON object.
type Document struct {
	ID         string
	Collection string
	Revision   int64
	Data       map[string]any
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type Filter struct {
	Field string
	Value any
}

// DocumentQuery selects documents of one collection. Without OrderBy,
// documents come back in creation order. Offset skips that many matches,
// for paging through more than one Limit.
type DocumentQuery struct {
	Collection string
	Filters    []Filter
	OrderBy    string
	Desc       bool
	Limit      int
	Offset     int
}

// CollectionSpec describes the rules of one collection.
type CollectionSpec struct {
	// UniqueKey lists fields whose combined values must be unique.
	UniqueKey []string
	// OwnerField, when set, holds the owning user id; callers only see
	// and touch their own documents.
	OwnerField string
}

// Collections known to the service. The Postgres schema carries matching
// unique indexes.
var Collections = map[string]CollectionSpec{
	"metrics": {
		UniqueKey: []string{"search_term"},
	},
	"saved_movies": {
		UniqueKey:  []string{"user_id", "movie_id"},
		OwnerField: "user_id",
	},
}

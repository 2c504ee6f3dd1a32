package services

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dmitrijs2005/movieshelf/internal/client/client"
	"github.com/dmitrijs2005/movieshelf/internal/client/models"
	"github.com/dmitrijs2005/movieshelf/internal/common"
	"github.com/dmitrijs2005/movieshelf/internal/logging"
)

const (
	DefaultTrendingLimit     = 5
	DefaultIncrementAttempts = 3
)

// ErrIncrementContended means every conditional update lost to a
// concurrent writer.
var ErrIncrementContended = errors.New("search metric update contended")

// IdentitySource gates services on a resolved session.
type IdentitySource interface {
	RequireIdentity() (models.Identity, error)
}

// TrendingOptions configures a TrendingAggregator. Zero values fall back to
// the metrics collection and DefaultIncrementAttempts.
type TrendingOptions struct {
	Collection    string
	PosterBaseURL string
	// Attempts bounds the read/conditional-write loop of one increment.
	Attempts int
}

// TrendingAggregator turns search events into per-term counters. Recording
// is best effort: failures are logged and never returned.
type TrendingAggregator struct {
	client  client.Client
	session IdentitySource
	logger  logging.Logger
	opts    TrendingOptions
}

// NewTrendingAggregator returns an aggregator writing through c.
func NewTrendingAggregator(c client.Client, session IdentitySource, l logging.Logger, opts TrendingOptions) *TrendingAggregator {
	if opts.Collection == "" {
		opts.Collection = common.CollectionMetrics
	}
	if opts.Attempts <= 0 {
		opts.Attempts = DefaultIncrementAttempts
	}
	return &TrendingAggregator{
		client:  c,
		session: session,
		logger:  l.With("module", "trending"),
		opts:    opts,
	}
}

// NormalizeTerm folds case and collapses whitespace, so " Dune " and "dune"
// count as the same search.
func NormalizeTerm(term string) string {
	return strings.ToLower(strings.Join(strings.Fields(term), " "))
}

// RecordSearch counts one search of term. movie supplies the display fields
// stored when the term is seen for the first time.
func (a *TrendingAggregator) RecordSearch(ctx context.Context, term string, movie models.Movie) {
	key := NormalizeTerm(term)
	if key == "" {
		return
	}
	if _, err := a.session.RequireIdentity(); err != nil {
		a.logger.Debug(ctx, "search not recorded", "term", key, "error", err)
		return
	}
	if err := a.increment(ctx, key, movie); err != nil {
		a.logger.Warn(ctx, "failed to record search", "term", key, "error", err)
	}
}

// increment creates the counter at 1 or bumps it with a write conditional on
// the revision that was read. A lost race is retried from a fresh read.
func (a *TrendingAggregator) increment(ctx context.Context, key string, movie models.Movie) error {
	for range a.opts.Attempts {
		docs, err := a.client.List(ctx, a.opts.Collection, models.Query{
			Filters: []models.Filter{models.Eq("search_term", key)},
			Limit:   1,
		})
		if err != nil {
			return fmt.Errorf("lookup: %w", err)
		}

		if len(docs) == 0 {
			fields, err := models.FieldsOf(models.SearchMetric{
				SearchTerm: key,
				MovieID:    movie.ID,
				Title:      movie.Title,
				PosterURL:  PosterURL(a.opts.PosterBaseURL, movie.PosterPath),
				Count:      1,
			})
			if err != nil {
				return err
			}
			_, err = a.client.Create(ctx, a.opts.Collection, fields)
			if errors.Is(err, client.ErrConflict) {
				continue
			}
			return err
		}

		doc := docs[0]
		var m models.SearchMetric
		if err := doc.Decode(&m); err != nil {
			return err
		}

		_, err = a.client.Update(ctx, a.opts.Collection, doc.ID, map[string]any{"count": m.Count + 1}, doc.Revision)
		if errors.Is(err, client.ErrConflict) {
			continue
		}
		return err
	}
	return fmt.Errorf("%w: %d attempts", ErrIncrementContended, a.opts.Attempts)
}

// GetTrending returns at most limit counters, highest count first. Any
// failure yields an empty result.
func (a *TrendingAggregator) GetTrending(ctx context.Context, limit int) []models.SearchMetric {
	if limit <= 0 {
		limit = DefaultTrendingLimit
	}
	if _, err := a.session.RequireIdentity(); err != nil {
		return []models.SearchMetric{}
	}

	docs, err := a.client.List(ctx, a.opts.Collection, models.Query{OrderBy: "count", Desc: true, Limit: limit})
	if err != nil {
		a.logger.Warn(ctx, "failed to fetch trending", "error", err)
		return []models.SearchMetric{}
	}

	out := make([]models.SearchMetric, 0, len(docs))
	for _, doc := range docs {
		var m models.SearchMetric
		if err := doc.Decode(&m); err != nil {
			a.logger.Warn(ctx, "skipping malformed metric", "id", doc.ID, "error", err)
			continue
		}
		m.ID, m.Revision = doc.ID, doc.Revision
		out = append(out, m)
	}

	slices.SortStableFunc(out, func(x, y models.SearchMetric) int {
		return cmp.Compare(y.Count, x.Count)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// PosterURL joins a catalog poster path onto the image host. An empty path
// stays empty.
func PosterURL(base, path string) string {
	if path == "" {
		return ""
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

// PosterPath strips the image host from a stored poster URL. URLs from
// another host are returned unchanged.
func PosterPath(base, url string) string {
	base = strings.TrimRight(base, "/")
	if base == "" || !strings.HasPrefix(url, base+"/") {
		return url
	}
	return strings.TrimPrefix(url, base)
}

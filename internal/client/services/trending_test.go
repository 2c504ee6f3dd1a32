package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/dmitrijs2005/movieshelf/internal/client/client"
	"github.com/dmitrijs2005/movieshelf/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const posterBase = "https://image.tmdb.org/t/p/w500"

var dune = models.Movie{ID: 438631, Title: "Dune", PosterPath: "/d5NXSklXo0qyIYkgV94XAgMIckC.jpg", Rating: 7.8}

func newTrending(f *fakeRemote) *TrendingAggregator {
	return NewTrendingAggregator(f, loggedIn{id: models.Identity{ID: "u1"}}, nopLogger(), TrendingOptions{PosterBaseURL: posterBase})
}

func metricsOf(t *testing.T, f *fakeRemote) []models.SearchMetric {
	t.Helper()
	docs, err := f.List(context.Background(), "metrics", models.Query{})
	require.NoError(t, err)
	out := make([]models.SearchMetric, 0, len(docs))
	for _, d := range docs {
		var m models.SearchMetric
		require.NoError(t, d.Decode(&m))
		out = append(out, m)
	}
	return out
}

func TestNormalizeTerm(t *testing.T) {
	tests := map[string]string{
		"Dune":               "dune",
		"  dune ":            "dune",
		"The   Dark\tKnight": "the dark knight",
		"   ":                "",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeTerm(in), in)
	}
}

func TestRecordSearch_CreatesThenIncrements(t *testing.T) {
	f := newFakeRemote()
	a := newTrending(f)
	ctx := context.Background()

	a.RecordSearch(ctx, "Dune", dune)

	ms := metricsOf(t, f)
	require.Len(t, ms, 1)
	assert.Equal(t, "dune", ms[0].SearchTerm)
	assert.Equal(t, int64(1), ms[0].Count)
	assert.Equal(t, posterBase+dune.PosterPath, ms[0].PosterURL)
	assert.Equal(t, dune.ID, ms[0].MovieID)

	a.RecordSearch(ctx, " dune ", models.Movie{ID: 1, Title: "other"})
	a.RecordSearch(ctx, "DUNE", dune)

	ms = metricsOf(t, f)
	require.Len(t, ms, 1)
	assert.Equal(t, int64(3), ms[0].Count)
	assert.Equal(t, "Dune", ms[0].Title, "display fields come from the first search")
}

func TestRecordSearch_BlankTermIgnored(t *testing.T) {
	f := newFakeRemote()
	newTrending(f).RecordSearch(context.Background(), "   ", dune)
	assert.Zero(t, f.calls["List"])
}

func TestRecordSearch_FailOpen(t *testing.T) {
	f := newFakeRemote()
	f.errs["List"] = fmt.Errorf("%w: down", client.ErrNetwork)

	assert.NotPanics(t, func() {
		newTrending(f).RecordSearch(context.Background(), "dune", dune)
	})
	assert.Zero(t, f.count("metrics"))
}

func TestRecordSearch_RequiresSession(t *testing.T) {
	f := newFakeRemote()
	a := NewTrendingAggregator(f, loggedIn{err: ErrNotLoggedIn}, nopLogger(), TrendingOptions{})

	a.RecordSearch(context.Background(), "dune", dune)
	assert.Zero(t, f.calls["List"])
}

func TestIncrement_RetriesAfterLostRace(t *testing.T) {
	f := newFakeRemote()
	a := newTrending(f)
	ctx := context.Background()

	a.RecordSearch(ctx, "dune", dune)

	raced := false
	f.beforeUpdate = func() {
		if !raced {
			raced = true
			f.bump("metrics", "count")
		}
	}
	require.NoError(t, a.increment(ctx, "dune", dune))

	ms := metricsOf(t, f)
	require.Len(t, ms, 1)
	assert.Equal(t, int64(3), ms[0].Count, "own increment lands on top of the concurrent one")
	assert.Equal(t, 2, f.calls["Update"])
}

func TestIncrement_GivesUpWhenAlwaysContended(t *testing.T) {
	f := newFakeRemote()
	a := newTrending(f)
	ctx := context.Background()

	a.RecordSearch(ctx, "dune", dune)
	f.beforeUpdate = func() { f.bump("metrics", "count") }

	err := a.increment(ctx, "dune", dune)
	assert.ErrorIs(t, err, ErrIncrementContended)
	assert.Equal(t, DefaultIncrementAttempts, f.calls["Update"])
}

func TestIncrement_CreateConflictBecomesIncrement(t *testing.T) {
	f := newFakeRemote()
	a := newTrending(f)
	ctx := context.Background()

	a.RecordSearch(ctx, "dune", dune)
	f.staleLists = 1

	require.NoError(t, a.increment(ctx, "dune", dune))

	ms := metricsOf(t, f)
	require.Len(t, ms, 1)
	assert.Equal(t, int64(2), ms[0].Count)
}

func TestRecordSearch_ConcurrentSessionsShareOneCounter(t *testing.T) {
	f := newFakeRemote()
	sessions := []*TrendingAggregator{newTrending(f), newTrending(f)}
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 3 {
		wg.Add(1)
		go func(a *TrendingAggregator) {
			defer wg.Done()
			a.RecordSearch(ctx, "batman", models.Movie{ID: 268, Title: "Batman"})
		}(sessions[i%2])
	}
	wg.Wait()

	ms := metricsOf(t, f)
	require.Len(t, ms, 1)
	assert.GreaterOrEqual(t, ms[0].Count, int64(1))
	assert.LessOrEqual(t, ms[0].Count, int64(3))
}

func TestGetTrending_TopNByCount(t *testing.T) {
	f := newFakeRemote()
	ctx := context.Background()
	for i, c := range []int{3, 9, 1, 7, 7, 2, 5} {
		_, err := f.Create(ctx, "metrics", map[string]any{
			"search_term": fmt.Sprintf("term-%d", i),
			"count":       float64(c),
		})
		require.NoError(t, err)
	}

	got := newTrending(f).GetTrending(ctx, 0)
	require.Len(t, got, DefaultTrendingLimit)

	counts := make([]int64, 0, len(got))
	for _, m := range got {
		counts = append(counts, m.Count)
		assert.NotEmpty(t, m.ID)
	}
	assert.Equal(t, []int64{9, 7, 7, 5, 3}, counts)

	assert.Len(t, newTrending(f).GetTrending(ctx, 2), 2)
}

func TestGetTrending_EmptyOnFailure(t *testing.T) {
	f := newFakeRemote()
	f.errs["List"] = fmt.Errorf("%w: down", client.ErrNetwork)

	got := newTrending(f).GetTrending(context.Background(), 5)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestGetTrending_EmptyWithoutSearches(t *testing.T) {
	got := newTrending(newFakeRemote()).GetTrending(context.Background(), 5)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestGetTrending_NotLoggedIn(t *testing.T) {
	f := newFakeRemote()
	a := NewTrendingAggregator(f, loggedIn{err: ErrNotLoggedIn}, nopLogger(), TrendingOptions{})

	assert.Empty(t, a.GetTrending(context.Background(), 5))
	assert.Zero(t, f.calls["List"])
}

func TestPosterURLAndPath(t *testing.T) {
	assert.Equal(t, posterBase+"/p.jpg", PosterURL(posterBase, "/p.jpg"))
	assert.Equal(t, posterBase+"/p.jpg", PosterURL(posterBase+"/", "p.jpg"))
	assert.Equal(t, "", PosterURL(posterBase, ""))

	assert.Equal(t, "/p.jpg", PosterPath(posterBase, posterBase+"/p.jpg"))
	assert.Equal(t, "https://other/p.jpg", PosterPath(posterBase, "https://other/p.jpg"))
	assert.Equal(t, "", PosterPath(posterBase, ""))
	assert.Equal(t, "x", PosterPath("", "x"))
}

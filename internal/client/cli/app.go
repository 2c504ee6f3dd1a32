package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/movieshelf/internal/client/models"
	"github.com/dmitrijs2005/movieshelf/internal/client/services"
	"github.com/dmitrijs2005/movieshelf/internal/logging"
)

// Session is the part of services.SessionManager the CLI drives.
type Session interface {
	Snapshot() services.Snapshot
	GetCurrentIdentity(ctx context.Context) (*models.Identity, error)
	SignUp(ctx context.Context, email, password, name string) (*models.Identity, error)
	SignIn(ctx context.Context, email, password string) (*models.Identity, error)
	SignOut(ctx context.Context) error
}

// Trending records searches and reads the top entries.
type Trending interface {
	RecordSearch(ctx context.Context, term string, movie models.Movie)
	GetTrending(ctx context.Context, limit int) []models.SearchMetric
}

// Saved is the part of services.SavedMovieStore the CLI drives.
type Saved interface {
	Save(ctx context.Context, userID string, movie models.Movie) (*models.SavedMovie, error)
	Remove(ctx context.Context, savedID string) error
	ListSaved(ctx context.Context, userID string) ([]models.SavedMovie, error)
	Count(ctx context.Context, userID string) (int, error)
	OnRemoved(fn func(ctx context.Context, savedID string))
}

// Options tunes the REPL. A non-positive TrendingLimit falls back to
// services.DefaultTrendingLimit.
type Options struct {
	TrendingLimit int
}

// App is the interactive client: it reads commands from in and writes
// results to out.
type App struct {
	session  Session
	trending Trending
	saved    Saved
	logger   logging.Logger
	opts     Options

	reader *bufio.Reader
	out    io.Writer
}

// NewApp wires the services into an App and subscribes it to saved movie
// removals.
func NewApp(session Session, trending Trending, saved Saved, l logging.Logger, opts Options, in io.Reader, out io.Writer) *App {
	if opts.TrendingLimit <= 0 {
		opts.TrendingLimit = services.DefaultTrendingLimit
	}
	a := &App{
		session:  session,
		trending: trending,
		saved:    saved,
		logger:   l.With("module", "cli"),
		opts:     opts,
		reader:   bufio.NewReader(in),
		out:      out,
	}
	saved.OnRemoved(a.refreshSaved)
	return a
}

// Run starts the REPL and blocks until exit or EOF. The session should be
// resolved beforehand so the first prompt shows the real state.
func (a *App) Run(ctx context.Context) {
	fmt.Fprintln(a.out, "movieshelf CLI (type 'help' for commands)")
	runREPL(ctx, a)
}

func (a *App) status() string {
	snap := a.session.Snapshot()
	switch {
	case snap.LoggedIn():
		return snap.Identity.Email
	case snap.State == services.StateUnknown:
		return "resolving"
	default:
		return "logged out"
	}
}

// refreshSaved reprints the saved list after a removal so the view never
// shows a record that is gone.
func (a *App) refreshSaved(ctx context.Context, savedID string) {
	snap := a.session.Snapshot()
	if !snap.LoggedIn() {
		return
	}
	movies, err := a.saved.ListSaved(ctx, snap.Identity.ID)
	if err != nil {
		a.logger.Warn(ctx, "refresh after removal failed", "saved_id", savedID, "error", err)
		return
	}
	printSaved(a.out, movies)
}

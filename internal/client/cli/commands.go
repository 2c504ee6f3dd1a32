package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/movieshelf/internal/client/client"
	"github.com/dmitrijs2005/movieshelf/internal/client/models"
	"github.com/dmitrijs2005/movieshelf/internal/client/services"
	"github.com/dmitrijs2005/movieshelf/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

const annotationSession = "session"

var (
	errExit    = errors.New("exit")
	errRefused = errors.New("refused")
)

type actionError struct {
	action string
	err    error
}

func (e *actionError) Error() string { return Describe(e.action, e.err) }
func (e *actionError) Unwrap() error { return e.err }

func failed(action string, err error) error {
	if err == nil {
		return nil
	}
	return &actionError{action: action, err: err}
}

func needsSession(cmd *cobra.Command) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[annotationSession] = "required"
	return cmd
}

// newRootCmd builds the command tree for one REPL line.
func (a *App) newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "movieshelf",
		Short:         "Movie search trends and saved movies",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations[annotationSession] == "" {
				return nil
			}
			return a.requireSession(cmd.OutOrStdout())
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetOut(a.out)
	root.SetErr(a.out)

	root.AddCommand(
		a.newRegisterCmd(),
		a.newLoginCmd(),
		needsSession(a.newLogoutCmd()),
		a.newWhoamiCmd(),
		needsSession(a.newProfileCmd()),
		needsSession(a.newSearchCmd()),
		needsSession(a.newTrendingCmd()),
		needsSession(a.newSaveCmd()),
		needsSession(a.newUnsaveCmd()),
		needsSession(a.newSavedCmd()),
		&cobra.Command{
			Use:     "exit",
			Aliases: []string{"quit"},
			Short:   "Leave the program",
			RunE:    func(*cobra.Command, []string) error { return errExit },
		},
	)
	return root
}

func (a *App) requireSession(w io.Writer) error {
	switch snap := a.session.Snapshot(); {
	case snap.LoggedIn():
		return nil
	case snap.State == services.StateUnknown:
		fmt.Fprintln(w, "resolving session, try again in a moment")
	default:
		fmt.Fprintln(w, "you must be logged in to do this")
	}
	return errRefused
}

func (a *App) newRegisterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			email, err := getSimpleText(a.reader, "Enter email", w)
			if err != nil {
				return err
			}
			name, err := getSimpleText(a.reader, "Enter name", w)
			if err != nil {
				return err
			}
			password, err := getPassword(w)
			if err != nil {
				return err
			}
			defer common.WipeByteArray(password)

			if email == "" || name == "" || len(password) == 0 {
				return failed("sign up", fmt.Errorf("%w: please fill in all fields", client.ErrValidation))
			}

			id, err := a.session.SignUp(cmd.Context(), email, string(password), name)
			if err != nil {
				return failed("sign up", err)
			}
			fmt.Fprintf(w, "Welcome, %s!\n", id.Name)
			return nil
		},
	}
}

func (a *App) newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login [email]",
		Short: "Sign in, replacing any current session",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			var email string
			if len(args) == 1 {
				email = args[0]
			} else {
				var err error
				if email, err = getSimpleText(a.reader, "Enter email", w); err != nil {
					return err
				}
			}
			password, err := getPassword(w)
			if err != nil {
				return err
			}
			defer common.WipeByteArray(password)

			if email == "" || len(password) == 0 {
				return failed("sign in", fmt.Errorf("%w: please fill in all fields", client.ErrValidation))
			}

			id, err := a.session.SignIn(cmd.Context(), email, string(password))
			if err != nil {
				return failed("sign in", err)
			}
			fmt.Fprintf(w, "Logged in as %s\n", id.Email)
			return nil
		},
	}
}

func (a *App) newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.session.SignOut(cmd.Context()); err != nil {
				return failed("sign out", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func (a *App) newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Ask the server who owns the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, err := a.session.GetCurrentIdentity(cmd.Context())
			if err != nil {
				return failed("session check", err)
			}
			if id == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "not logged in")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>\n", id.Name, id.Email)
			return nil
		},
	}
}

func (a *App) newProfileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Show the account and its saved movie count",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			id := a.session.Snapshot().Identity
			n, err := a.saved.Count(cmd.Context(), id.ID)
			if err != nil {
				return failed("load profile", err)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Name:   %s\n", id.Name)
			fmt.Fprintf(w, "Email:  %s\n", id.Email)
			fmt.Fprintf(w, "Saved:  %d\n", n)
			return nil
		},
	}
}

func (a *App) newSearchCmd() *cobra.Command {
	var movie models.Movie
	cmd := &cobra.Command{
		Use:   "search <term...>",
		Short: "Record a search and the movie it surfaced first",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			term := strings.Join(args, " ")
			if movie.Title == "" {
				movie.Title = term
			}
			a.trending.RecordSearch(cmd.Context(), term, movie)
			fmt.Fprintf(cmd.OutOrStdout(), "Searched for %q\n", term)
			return nil
		},
	}
	addMovieFlags(cmd, &movie)
	cmd.Flags().IntVar(&movie.ID, "movie-id", 0, "catalog id of the first result")
	cmd.Flags().StringVar(&movie.Title, "title", "", "title of the first result")
	return cmd
}

func (a *App) newTrendingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trending [n]",
		Short: "Show the most searched terms",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit := a.opts.TrendingLimit
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n <= 0 {
					return fmt.Errorf("invalid count %q", args[0])
				}
				limit = n
			}

			w := cmd.OutOrStdout()
			metrics := a.trending.GetTrending(cmd.Context(), limit)
			if len(metrics) == 0 {
				fmt.Fprintln(w, "No trending searches yet")
				return nil
			}
			for i, m := range metrics {
				fmt.Fprintf(w, "%d. %s (%q) x%d %s\n", i+1, m.Title, m.SearchTerm, m.Count, m.PosterURL)
			}
			return nil
		},
	}
}

func (a *App) newSaveCmd() *cobra.Command {
	var movie models.Movie
	cmd := &cobra.Command{
		Use:   "save <movie-id> <title...>",
		Short: "Add a movie to the saved list",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid movie id %q", args[0])
			}
			movie.ID = id
			movie.Title = strings.Join(args[1:], " ")

			userID := a.session.Snapshot().Identity.ID
			saved, err := a.saved.Save(cmd.Context(), userID, movie)
			if err != nil {
				return failed("save movie", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Movie added to saved list (%s)\n", saved.SavedID)
			return nil
		},
	}
	addMovieFlags(cmd, &movie)
	return cmd
}

func (a *App) newUnsaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unsave <saved-id>",
		Short: "Remove a movie from the saved list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), "Removing from saved list")
			if err := a.saved.Remove(cmd.Context(), args[0]); err != nil {
				return failed("remove movie", err)
			}
			return nil
		},
	}
}

func (a *App) newSavedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "saved",
		Short: "List saved movies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID := a.session.Snapshot().Identity.ID
			movies, err := a.saved.ListSaved(cmd.Context(), userID)
			if err != nil {
				return failed("load saved movies", err)
			}
			printSaved(cmd.OutOrStdout(), movies)
			return nil
		},
	}
}

func addMovieFlags(cmd *cobra.Command, movie *models.Movie) {
	cmd.Flags().StringVar(&movie.PosterPath, "poster", "", "poster path, e.g. /abc.jpg")
	cmd.Flags().Float64Var(&movie.Rating, "rating", 0, "average vote")
	cmd.Flags().StringVar(&movie.ReleaseDate, "released", "", "release date")
}

func printSaved(w io.Writer, movies []models.SavedMovie) {
	if len(movies) == 0 {
		fmt.Fprintln(w, "No saved movies")
		return
	}
	for _, m := range movies {
		fmt.Fprintf(w, "%s  #%d %s  %.1f  %s\n", m.SavedID, m.ID, m.Title, m.Rating, m.PosterPath)
	}
}

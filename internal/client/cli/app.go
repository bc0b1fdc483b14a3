// Package cli is a thin interactive consumer of the session layer, mainly
// useful for exercising the auth flow against a real backend. It is not a
// product surface; the web dashboard is.
package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/jobtrackr/jobtrackr-go/internal/client/api"
	"github.com/jobtrackr/jobtrackr-go/internal/client/config"
	"github.com/jobtrackr/jobtrackr-go/internal/client/repositories/marker"
	"github.com/jobtrackr/jobtrackr-go/internal/client/session"
	"github.com/jobtrackr/jobtrackr-go/internal/client/storage"
	"github.com/jobtrackr/jobtrackr-go/internal/logging"

	_ "modernc.org/sqlite"
)

// App ties the session coordinator to an interactive prompt.
type App struct {
	config *config.Config
	coord  *session.Coordinator
	log    logging.Logger
	db     *sql.DB
	reader *bufio.Reader
}

// NewApp wires the full client: local store, token store, observable auth
// state, REST client and coordinator, with the transport's 401 recovery
// bound back to the coordinator.
func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	db, err := storage.Open(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("init client storage: %w", err)
	}

	tokens := session.NewTokenStore()
	state := session.NewStateStore()
	markers := marker.NewSQLiteRepository(db)

	apiClient, err := api.NewHTTPClient(cfg.APIBaseURL, tokens, cfg.RequestTimeout)
	if err != nil {
		db.Close()
		return nil, err
	}

	coord := session.NewCoordinator(apiClient, tokens, state, markers,
		session.WithLogger(log))
	apiClient.SetRefresher(coord)

	if err := coord.Restore(ctx); err != nil {
		log.Warn(ctx, "could not restore session from storage", "error", err)
	}

	return &App{
		config: cfg,
		coord:  coord,
		log:    log,
		db:     db,
		reader: bufio.NewReader(os.Stdin),
	}, nil
}

// Coordinator exposes the session coordinator to embedding callers.
func (a *App) Coordinator() *session.Coordinator {
	return a.coord
}

// Close releases the local database handle.
func (a *App) Close() error {
	return a.db.Close()
}

func (a *App) prompt() string {
	st := a.coord.State()
	if st.IsAuthenticated && st.User != nil {
		name := st.User.Username
		if name == "" {
			name = st.User.Email
		}
		return fmt.Sprintf("jobtrackr (%s)> ", name)
	}
	return "jobtrackr> "
}

// Run starts the REPL and blocks until the user exits or input ends.
func (a *App) Run(ctx context.Context) {
	fmt.Println("JobTrackr client (type 'help' for commands)")

	// Try a silent session restore before asking anything.
	if a.coord.CheckAuthStatus(ctx) {
		if err := a.coord.AutoLogin(ctx); err == nil {
			fmt.Println("Session restored.")
		}
	}

	for {
		fmt.Print(a.prompt())
		line, err := a.reader.ReadString('\n')
		if err != nil {
			return
		}

		switch cmd := trimLine(line); cmd {
		case "":
			continue
		case "help":
			fmt.Println("Commands: login, register, verify, resend, forgot, whoami, refresh, logout, exit")
		case "login":
			a.Login(ctx)
		case "register":
			a.Register(ctx)
		case "verify":
			a.Verify(ctx)
		case "resend":
			a.Resend(ctx)
		case "forgot":
			a.ForgotPassword(ctx)
		case "whoami":
			a.WhoAmI()
		case "refresh":
			a.Refresh(ctx)
		case "logout":
			a.Logout(ctx)
		case "exit", "quit":
			fmt.Println("Bye!")
			return
		default:
			fmt.Println("Unknown command:", cmd)
		}
	}
}

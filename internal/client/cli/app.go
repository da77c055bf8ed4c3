package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/oranmed/candidat/internal/client/config"
	"github.com/oranmed/candidat/internal/client/credentials"
	"github.com/oranmed/candidat/internal/client/gateway"
	"github.com/oranmed/candidat/internal/client/models"
	"github.com/oranmed/candidat/internal/client/session"
	"github.com/oranmed/candidat/internal/client/storage"
	"github.com/oranmed/candidat/internal/client/validation"
	"github.com/oranmed/candidat/internal/common"
	"github.com/oranmed/candidat/internal/logging"

	_ "modernc.org/sqlite"
)

// sessionAPI is the slice of the session service the CLI uses. Tests provide
// a fake; the real session.Service satisfies it.
type sessionAPI interface {
	Restore(ctx context.Context) error
	Register(ctx context.Context, profile models.RegistrationProfile) (string, error)
	VerifyEmail(ctx context.Context, email, code string) (*models.User, string, error)
	ResendVerification(ctx context.Context, email string) (string, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	FetchProfile(ctx context.Context) (*models.User, error)
	Logout(ctx context.Context)
	IsAuthenticated() bool
	State() session.State
	CurrentUser() *models.User
	Token() string
	Subscribe(fn func(session.State))
}

// App is the interactive client: it owns the wiring and implements one
// method per REPL command.
type App struct {
	config    *config.Config
	session   sessionAPI
	validator validation.Validator
	gw        gateway.Client
	db        *sql.DB
	log       logging.Logger
	reader    *bufio.Reader

	// lastEmail remembers the address from the latest register/verify
	// prompt so follow-up commands can offer it as a default. It is the
	// CLI's stand-in for the email carried in the original flow between
	// the registration and verification steps.
	lastEmail string
}

// NewApp wires the client from config: local store, gateway, session.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	db, err := storage.Open(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	store := credentials.NewSQLiteStore(db)
	gw := gateway.NewHTTPClient(cfg.ServerBaseURL, cfg.RequestTimeout, store, log)
	svc := session.NewService(gw, store, log)

	return &App{
		config:    cfg,
		session:   svc,
		validator: validation.NewGoPlaygroundValidator(),
		gw:        gw,
		db:        db,
		log:       log,
		reader:    bufio.NewReader(os.Stdin),
	}, nil
}

// Run restores any stored session, confirms it against the server, and
// hands control to the REPL. It blocks until the user exits.
func (a *App) Run(ctx context.Context) {
	defer func() {
		_ = a.gw.Close()
		if a.db != nil {
			_ = a.db.Close()
		}
	}()

	a.session.Subscribe(func(st session.State) {
		a.log.Debug(ctx, "session state changed", "state", st)
	})

	printlnFn("Candidate portal CLI (type 'help' for commands)")

	if err := a.session.Restore(ctx); err != nil {
		printlnFn("Warning: could not read the stored session:", err)
	}
	if a.session.IsAuthenticated() {
		a.confirmStoredSession(ctx)
	}

	runREPL(ctx, a, a.status, bufio.NewScanner(os.Stdin))
}

// confirmStoredSession checks a restored credential against the server. An
// expired credential has already been cleared by the session service by the
// time the error arrives here.
func (a *App) confirmStoredSession(ctx context.Context) {
	user, err := a.session.FetchProfile(ctx)
	switch {
	case err == nil:
		printlnFn(fmt.Sprintf("Welcome back, %s!", user.FullName()))
	case errors.Is(err, common.ErrSessionExpired):
		printlnFn("Your stored session has expired, please log in again.")
	default:
		printlnFn("Could not confirm the stored session:", err)
	}
}

func (a *App) isAuthenticated() bool {
	return a.session.IsAuthenticated()
}

// status renders the prompt segment: the candidate email when known and the
// current lifecycle state.
func (a *App) status() string {
	s := ""
	if user := a.session.CurrentUser(); user != nil {
		s = user.Email + " "
	}
	s += string(a.session.State())
	return fmt.Sprintf("(%s)", s)
}

package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/trajectory-hub/student-dashboard/internal/application/query"
	"github.com/trajectory-hub/student-dashboard/internal/domain/session"
	"github.com/trajectory-hub/student-dashboard/internal/domain/shared"
	httpserver "github.com/trajectory-hub/student-dashboard/internal/interface/http"
	"github.com/trajectory-hub/student-dashboard/internal/interface/http/handlers"
	"github.com/trajectory-hub/student-dashboard/internal/interface/presenter"
	"github.com/trajectory-hub/student-dashboard/pkg/timeutil"
)

// errNotLoggedIn is returned by commands that need a verified session.
var errNotLoggedIn = errors.New("not logged in; run `dashboard login -email <address>` first")

// cmdIO carries the process streams into a command.
type cmdIO struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// command parses its flags before the app is wired, so a usage error
// never opens a token store.
type command struct {
	parse func(args []string, streams cmdIO) (any, error)
	run   func(ctx context.Context, a *app, opts any, streams cmdIO) error
}

var commands = map[string]command{
	"login":    {parse: parseLogin, run: runLogin},
	"register": {parse: parseRegister, run: runRegister},
	"logout":   {parse: parseNone("logout"), run: runLogout},
	"whoami":   {parse: parseNone("whoami"), run: runWhoami},
	"show":     {parse: parseShow, run: runShow},
	"compare":  {parse: parseNone("compare"), run: runCompare},
	"serve":    {parse: parseNone("serve"), run: runServe},
}

func newFlagSet(name string, streams cmdIO) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(streams.stderr)
	return fs
}

func parseNone(name string) func([]string, cmdIO) (any, error) {
	return func(args []string, streams cmdIO) (any, error) {
		fs := newFlagSet(name, streams)
		if err := fs.Parse(args); err != nil {
			return nil, errReported
		}
		return nil, nil
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// CREDENTIALS
// ══════════════════════════════════════════════════════════════════════════════

type credentialOpts struct {
	email string
	role  session.Role
}

func parseLogin(args []string, streams cmdIO) (any, error) {
	fs := newFlagSet("login", streams)
	email := fs.String("email", "", "account e-mail address")
	if err := fs.Parse(args); err != nil {
		return nil, errReported
	}
	return credentialOpts{email: strings.TrimSpace(*email)}, nil
}

func parseRegister(args []string, streams cmdIO) (any, error) {
	fs := newFlagSet("register", streams)
	email := fs.String("email", "", "account e-mail address")
	role := fs.String("role", string(session.RoleStudent), "account role (student or admin)")
	if err := fs.Parse(args); err != nil {
		return nil, errReported
	}
	r := session.Role(strings.ToLower(strings.TrimSpace(*role)))
	if !r.IsValid() {
		return nil, fmt.Errorf("invalid role %q", *role)
	}
	return credentialOpts{email: strings.TrimSpace(*email), role: r}, nil
}

// readPassword prompts on stderr. A terminal stdin is read without echo;
// anything else is read up to the first newline.
var readPassword = func(streams cmdIO) (string, error) {
	fmt.Fprint(streams.stderr, "Password: ")
	if f, ok := streams.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(streams.stderr)
		return string(b), err
	}
	line, err := bufio.NewReader(streams.stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func runLogin(ctx context.Context, a *app, opts any, streams cmdIO) error {
	o := opts.(credentialOpts)
	password, err := readPassword(streams)
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	user, err := a.manager.Login(ctx, o.email, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(streams.stdout, "Logged in as %s (%s)\n", user.Email, user.Role)
	return nil
}

func runRegister(ctx context.Context, a *app, opts any, streams cmdIO) error {
	o := opts.(credentialOpts)
	password, err := readPassword(streams)
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	user, err := a.manager.Register(ctx, o.email, password, o.role)
	if err != nil {
		return err
	}
	fmt.Fprintf(streams.stdout, "Registered and logged in as %s (%s)\n", user.Email, user.Role)
	return nil
}

func runLogout(ctx context.Context, a *app, _ any, streams cmdIO) error {
	a.manager.Logout(ctx)
	fmt.Fprintln(streams.stdout, "Logged out")
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// SESSION INFO
// ══════════════════════════════════════════════════════════════════════════════

func runWhoami(_ context.Context, a *app, _ any, streams cmdIO) error {
	s := a.manager.Session()
	if !s.IsAuthenticated() {
		return errNotLoggedIn
	}
	fmt.Fprintf(streams.stdout, "%s (%s, id %d)\n", s.User.Email, s.User.Role, s.User.ID)
	if exp, ok := tokenExpiry(s.Token); ok {
		fmt.Fprintf(streams.stdout, "Token expires %s (in %s)\n",
			exp.Local().Format("2006-01-02 15:04"), timeutil.FormatRemaining(time.Until(exp)))
	}
	return nil
}

// tokenExpiry reads the exp claim without verifying the signature. The
// token stays opaque to everything else; this is display only.
func tokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// ══════════════════════════════════════════════════════════════════════════════
// DASHBOARD
// ══════════════════════════════════════════════════════════════════════════════

type showOpts struct {
	json bool
}

func parseShow(args []string, streams cmdIO) (any, error) {
	fs := newFlagSet("show", streams)
	asJSON := fs.Bool("json", false, "print the dashboard view as JSON")
	if err := fs.Parse(args); err != nil {
		return nil, errReported
	}
	return showOpts{json: *asJSON}, nil
}

func runShow(ctx context.Context, a *app, opts any, streams cmdIO) error {
	o := opts.(showOpts)
	if !a.manager.IsAuthenticated() {
		return errNotLoggedIn
	}

	snap := a.dashboard.Load(ctx)
	p := presenter.NewDashboardPresenter(presenter.CLIRetryHint)
	view := p.Build(snap, a.manager.Session().User)

	if o.json {
		enc := json.NewEncoder(streams.stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(view); err != nil {
			return err
		}
	} else {
		text := p.FormatText(view)
		if snap.Status == query.StatusError {
			fmt.Fprint(streams.stderr, text)
		} else {
			fmt.Fprint(streams.stdout, text)
		}
	}

	if snap.Status == query.StatusError {
		return errReported
	}
	return nil
}

func runCompare(ctx context.Context, a *app, _ any, streams cmdIO) error {
	if !a.manager.IsAuthenticated() {
		return errNotLoggedIn
	}
	c, err := a.client.GetAlumniComparison(ctx)
	if err != nil {
		if shared.IsAuthFailure(err) {
			a.manager.Logout(ctx)
		}
		return errors.New(query.MessageFor(err))
	}
	fmt.Fprint(streams.stdout, presenter.NewDashboardPresenter(presenter.CLIRetryHint).FormatAlumniComparison(c))
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// SERVE
// ══════════════════════════════════════════════════════════════════════════════

func runServe(ctx context.Context, a *app, _ any, streams cmdIO) error {
	cfg := a.cfg

	health := handlers.NewCompositeHealthChecker(version)
	health.AddCheck("backend", handlers.NewBackendCheck(a.client))
	if a.storePinger != nil {
		health.AddCheck("session_store", handlers.NewPingCheck(a.storePinger))
	}

	srvCfg := httpserver.DefaultConfig()
	srvCfg.Host = cfg.Server.Host
	srvCfg.Port = cfg.Server.Port
	srvCfg.Version = version
	if floor := cfg.Backend.RequestTimeout + 5*time.Second; srvCfg.WriteTimeout < floor {
		srvCfg.WriteTimeout = floor
	}

	srv := httpserver.NewServer(srvCfg, httpserver.Dependencies{
		Dashboard:     a.dashboard,
		Sessions:      a.manager,
		HealthChecker: health,
		Logger:        a.logger,
	})

	if a.manager.IsAuthenticated() {
		snap := a.dashboard.Load(ctx)
		if snap.Status == query.StatusError {
			a.logger.Warn("initial dashboard load failed", zap.String("message", snap.Message))
		}
	} else {
		a.logger.Warn("no active session; the dashboard stays empty until login")
	}

	errCh := srv.StartAsync()
	fmt.Fprintf(streams.stderr, "Serving dashboard on http://%s\n", srv.Address())

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("server shutdown failed", zap.Error(err))
	}
	return serveErr
}

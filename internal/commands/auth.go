package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"taskmgr/internal/config"
	"taskmgr/internal/exitcode"
	"taskmgr/internal/service"
	"taskmgr/internal/session"
)

func init() {
	Register(&LoginCmd{})
	Register(&RegisterCmd{})
	Register(&LogoutCmd{})
	Register(&WhoamiCmd{})
	Register(&RefreshCmd{})
}

// errNoStore is returned when the dispatcher did not open a session store.
var errNoStore = errors.New("session store not available")

// LoginCmd implements the login command.
type LoginCmd struct {
	email    string
	password string
}

// SetCredentials sets the email and password flags (for testing).
func (c *LoginCmd) SetCredentials(email, password string) {
	c.email = email
	c.password = password
}

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return nil }
func (c *LoginCmd) Synopsis() string  { return "Log in with email and password" }
func (c *LoginCmd) Usage() string {
	return "taskmgr login --email <email> [--password <password>]"
}
func (c *LoginCmd) NeedsAuth() bool { return false }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.email, "email", "", "")
	fs.StringVar(&c.email, "e", "", "")
	fs.StringVar(&c.password, "password", "", "")
}

func (c *LoginCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	store := cfg.Session
	if store == nil {
		fmt.Fprintf(errOut, "error: %v\n", errNoStore)
		return exitcode.AuthError
	}

	// A locally valid session is reused
	if session.Valid(store.Token(), cfg.Clock()) {
		if !cfg.Quiet {
			fmt.Fprintln(out, "already logged in")
		}
		return exitcode.Success
	}

	email := strings.TrimSpace(c.email)
	password := c.password
	if password == "" {
		password = os.Getenv(config.EnvPassword)
	}
	if email == "" {
		return reportError(errOut, &service.ValidationError{Field: "email"})
	}
	if password == "" {
		return reportError(errOut, &service.ValidationError{Field: "password"})
	}

	res, err := svc.Login(ctx, email, password)
	if err != nil {
		if service.IsUnauthorized(err) {
			fmt.Fprintln(errOut, "error: invalid email or password")
			return exitcode.AuthError
		}
		return reportError(errOut, err)
	}
	return storeResult(cfg, res, email, out, errOut)
}

// RegisterCmd implements the register command.
type RegisterCmd struct {
	reg service.Registration
}

// SetRegistration sets the registration flags (for testing).
func (c *RegisterCmd) SetRegistration(reg service.Registration) {
	c.reg = reg
}

func (c *RegisterCmd) Name() string      { return "register" }
func (c *RegisterCmd) Aliases() []string { return []string{"signup"} }
func (c *RegisterCmd) Synopsis() string  { return "Create an account and log in" }
func (c *RegisterCmd) Usage() string {
	return "taskmgr register --email <email> --password <password> [--first <name>] [--last <name>]"
}
func (c *RegisterCmd) NeedsAuth() bool { return false }

func (c *RegisterCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.reg.Email, "email", "", "")
	fs.StringVar(&c.reg.Password, "password", "", "")
	fs.StringVar(&c.reg.FirstName, "first", "", "")
	fs.StringVar(&c.reg.LastName, "last", "", "")
}

func (c *RegisterCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if cfg.Session == nil {
		fmt.Fprintf(errOut, "error: %v\n", errNoStore)
		return exitcode.AuthError
	}

	reg := c.reg
	reg.Email = strings.TrimSpace(reg.Email)
	if reg.Password == "" {
		reg.Password = os.Getenv(config.EnvPassword)
	}
	if reg.Email == "" {
		return reportError(errOut, &service.ValidationError{Field: "email"})
	}
	if reg.Password == "" {
		return reportError(errOut, &service.ValidationError{Field: "password"})
	}

	res, err := svc.Register(ctx, reg)
	if err != nil {
		return reportError(errOut, err)
	}
	return storeResult(cfg, res, reg.Email, out, errOut)
}

// storeResult checks a token returned by the server and persists it.
func storeResult(cfg *config.Config, res service.AuthResult, email string, out, errOut io.Writer) int {
	if err := session.Check(res.Token, cfg.Clock()); err != nil {
		fmt.Fprintf(errOut, "error: server returned an unusable token: %v\n", err)
		return exitcode.AuthError
	}
	if res.Email != "" {
		email = res.Email
	}

	if err := cfg.EnsureDir(); err != nil {
		fmt.Fprintf(errOut, "error: failed to create config directory: %v\n", err)
		return exitcode.AuthError
	}
	if err := cfg.Session.Set(session.Credentials{Token: res.Token, Email: email}); err != nil {
		fmt.Fprintf(errOut, "error: failed to save session: %v\n", err)
		return exitcode.AuthError
	}
	cfg.Log().Debug("session stored", "email", email)

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

// LogoutCmd implements the logout command.
type LogoutCmd struct{}

func (c *LogoutCmd) Name() string      { return "logout" }
func (c *LogoutCmd) Aliases() []string { return nil }
func (c *LogoutCmd) Synopsis() string  { return "Forget the stored session" }
func (c *LogoutCmd) Usage() string     { return "taskmgr logout" }
func (c *LogoutCmd) NeedsAuth() bool   { return false }

func (c *LogoutCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *LogoutCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if cfg.Session == nil || cfg.Session.State() == session.Unauthenticated {
		if !cfg.Quiet {
			fmt.Fprintln(out, "not logged in")
		}
		return exitcode.Success
	}

	if err := cfg.Session.Clear(); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

// WhoamiCmd implements the whoami command.
type WhoamiCmd struct{}

func (c *WhoamiCmd) Name() string      { return "whoami" }
func (c *WhoamiCmd) Aliases() []string { return []string{"me"} }
func (c *WhoamiCmd) Synopsis() string  { return "Show the logged-in user" }
func (c *WhoamiCmd) Usage() string     { return "taskmgr whoami" }
func (c *WhoamiCmd) NeedsAuth() bool   { return true }

func (c *WhoamiCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *WhoamiCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	user, err := svc.Me(ctx)
	if err != nil {
		return reportError(errOut, err)
	}

	name := strings.TrimSpace(user.FirstName + " " + user.LastName)
	if name != "" {
		fmt.Fprintf(out, "%s <%s>\n", name, user.Email)
	} else {
		fmt.Fprintln(out, user.Email)
	}

	if cfg.Session != nil {
		if claims, err := session.Decode(cfg.Session.Token()); err == nil && claims.Expiry != nil {
			fmt.Fprintf(out, "session expires %s\n", claims.Expiry.UTC().Format(time.RFC3339))
		}
	}
	return exitcode.Success
}

// RefreshCmd implements the refresh command.
type RefreshCmd struct{}

func (c *RefreshCmd) Name() string      { return "refresh" }
func (c *RefreshCmd) Aliases() []string { return nil }
func (c *RefreshCmd) Synopsis() string  { return "Exchange the session token for a new one" }
func (c *RefreshCmd) Usage() string     { return "taskmgr refresh" }
func (c *RefreshCmd) NeedsAuth() bool   { return true }

func (c *RefreshCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *RefreshCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if cfg.Session == nil {
		fmt.Fprintf(errOut, "error: %v\n", errNoStore)
		return exitcode.AuthError
	}
	res, err := svc.Refresh(ctx)
	if err != nil {
		return reportError(errOut, err)
	}
	return storeResult(cfg, res, cfg.Session.Get().Email, out, errOut)
}

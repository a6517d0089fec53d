// Package cli implements taskctl, a terminal client of the task manager API.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/yukikurage/taskmanager/internal/apiclient"
	"github.com/yukikurage/taskmanager/internal/authsession"
	"github.com/yukikurage/taskmanager/internal/config"
	"github.com/yukikurage/taskmanager/internal/guard"
	"github.com/yukikurage/taskmanager/internal/session"
	"github.com/yukikurage/taskmanager/internal/tasklist"
)

// CLI is the command tree of taskctl.
type CLI struct {
	APIURL      string `name:"api-url" help:"Base URL of the task manager API." default:"${api_url}"`
	SessionFile string `name:"session-file" help:"File holding the saved session." default:"${session_file}" type:"path"`
	JSON        bool   `help:"Print JSON instead of tables."`

	Login    LoginCmd    `cmd:"" help:"Sign in and save the session."`
	Register RegisterCmd `cmd:"" help:"Create an account and sign in."`
	Logout   LogoutCmd   `cmd:"" help:"Discard the saved session."`
	Whoami   WhoamiCmd   `cmd:"" help:"Show the signed-in user."`
	Tasks    TasksCmd    `cmd:"" help:"Manage tasks."`
}

// Env is what every command runs against.
type Env struct {
	In    io.Reader
	Out   io.Writer
	Err   io.Writer
	JSON  bool
	API   *apiclient.Client
	Auth  *authsession.Manager
	Tasks *tasklist.Controller
}

// loginHint is printed when the API ends the session.
type loginHint struct {
	w io.Writer
}

func (h loginHint) RedirectToLogin() {
	fmt.Fprintln(h.w, "Session expired. Run `taskctl login` to sign in again.")
}

// Run parses args and executes the selected command.
func Run(ctx context.Context, args []string, cfg *config.Config, stdin io.Reader, stdout, stderr io.Writer) error {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("taskctl"),
		kong.Description("Terminal client for the task manager API."),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
		kong.Vars{
			"api_url":      cfg.APIBaseURL,
			"session_file": cfg.SessionFile,
		},
	)
	if err != nil {
		return err
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	storage, err := session.OpenFileStorage(cli.SessionFile)
	if err != nil {
		return err
	}
	store := session.NewStore(storage)

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	api := apiclient.New(apiclient.Config{BaseURL: cli.APIURL, Logger: logger}, store, loginHint{w: stderr})

	env := &Env{
		In:    stdin,
		Out:   stdout,
		Err:   stderr,
		JSON:  cli.JSON,
		API:   api,
		Auth:  authsession.New(api, store),
		Tasks: tasklist.New(api, logger),
	}

	if strings.HasPrefix(kctx.Command(), "tasks") {
		if err := guard.Require(env.Auth); err != nil {
			return loginRequired(err)
		}
	}

	kctx.BindTo(ctx, (*context.Context)(nil))
	return kctx.Run(env)
}

type LoginCmd struct {
	Email    string `help:"Account email." required:""`
	Password string `help:"Account password." required:"" env:"TASKCTL_PASSWORD"`
}

func (c *LoginCmd) Run(ctx context.Context, env *Env) error {
	if err := env.Auth.Login(ctx, c.Email, c.Password); err != nil {
		return err
	}
	return printWelcome(env)
}

type RegisterCmd struct {
	Username string `help:"Display name (3-50 characters)." required:""`
	Email    string `help:"Account email." required:""`
	Password string `help:"Password (at least 6 characters)." required:"" env:"TASKCTL_PASSWORD"`
}

func (c *RegisterCmd) Run(ctx context.Context, env *Env) error {
	if err := env.Auth.Register(ctx, c.Username, c.Email, c.Password); err != nil {
		return err
	}
	return printWelcome(env)
}

type LogoutCmd struct{}

func (c *LogoutCmd) Run(env *Env) error {
	if err := env.Auth.Logout(); err != nil {
		return err
	}
	fmt.Fprintln(env.Out, "Signed out.")
	return nil
}

type WhoamiCmd struct{}

func (c *WhoamiCmd) Run(env *Env) error {
	if err := guard.Require(env.Auth); err != nil {
		return loginRequired(err)
	}
	user, _ := env.Auth.User()
	if env.JSON {
		return writeJSON(env.Out, user)
	}
	fmt.Fprintf(env.Out, "%s <%s> (id %d)\n", user.Username, user.Email, user.ID)
	return nil
}

func printWelcome(env *Env) error {
	user, _ := env.Auth.User()
	if env.JSON {
		return writeJSON(env.Out, user)
	}
	fmt.Fprintf(env.Out, "Signed in as %s <%s>.\n", user.Username, user.Email)
	return nil
}

func loginRequired(err error) error {
	return fmt.Errorf("%w: run `taskctl login` first", err)
}

// IsLoginRequired reports whether err means the command needs a session.
func IsLoginRequired(err error) bool {
	return errors.Is(err, guard.ErrLoginRequired) || errors.Is(err, apiclient.ErrUnauthorized)
}

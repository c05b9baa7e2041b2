package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	config "github.com/maheshrc27/postflow-studio/configs"
	"github.com/maheshrc27/postflow-studio/internal/events"
	"github.com/maheshrc27/postflow-studio/internal/repository"
	"github.com/maheshrc27/postflow-studio/internal/service"
	"golang.org/x/term"
)

// Namespace is the storage namespace of the CLI's session.
const Namespace = "cli"

var ErrNotSignedIn = errors.New("not signed in, run: postctl login")

// App runs postctl subcommands against one stored session.
type App struct {
	Out io.Writer
	In  io.Reader
	// ReadPassword prompts without echo. It defaults to the terminal.
	ReadPassword func() (string, error)

	cfg       config.Config
	auth      service.AuthService
	directory service.DirectoryService
	connect   service.ConnectService
	composer  service.ComposerService
	history   service.HistoryService
	keys      service.KeyService
	media     service.MediaService
	hub       *events.Hub
}

type Options struct {
	Config   config.Config
	Backend  service.Backend
	Store    repository.Storage
	Media    service.MediaStore
	Launcher service.Launcher
}

func New(opt Options) *App {
	cfg := opt.Config
	hub := events.NewHub()
	sessions := repository.NewSessionRepository(opt.Store, cfg.SecretKey, 0)
	media := service.NewMediaService(opt.Media)
	directory := service.NewDirectoryService(opt.Backend, nil)

	connect := service.NewConnectService(
		opt.Backend,
		directory,
		repository.NewConnectRepository(opt.Store),
		opt.Launcher,
		cfg.Connect,
		nil,
		nil)
	// The CLI watches in the foreground instead.
	connect.UseRunner(foreground{})

	return &App{
		Out:          os.Stdout,
		In:           os.Stdin,
		ReadPassword: terminalPassword,
		cfg:          cfg,
		auth:         service.NewAuthService(opt.Backend, sessions),
		directory:    directory,
		connect:      connect,
		composer:     service.NewComposerService(opt.Backend, media, nil),
		history:      service.NewHistoryService(opt.Backend, media, nil),
		keys:         service.NewKeyService(opt.Backend, hub),
		media:        media,
		hub:          hub,
	}
}

type foreground struct{}

func (foreground) RunConnectWatch(context.Context, string, string) error { return nil }

func (a *App) Run(ctx context.Context, argv []string) error {
	if len(argv) < 1 {
		a.usage()
		return fmt.Errorf("missing subcommand")
	}

	args := argv[1:]
	switch argv[0] {
	case "login":
		return a.login(ctx, args)
	case "register":
		return a.register(ctx, args)
	case "logout":
		return a.logout(ctx)
	case "whoami":
		return a.whoami(ctx)
	case "accounts":
		return a.accounts(ctx, args)
	case "connect":
		return a.connectAccount(ctx, args)
	case "disconnect":
		return a.disconnect(ctx, args)
	case "history":
		return a.listHistory(ctx, args)
	case "delete-post":
		return a.deletePost(ctx, args)
	case "keys":
		return a.apiKey(ctx, args)
	case "preview":
		return a.preview(ctx, args)
	case "schedule":
		return a.schedule(ctx, args)
	case "-h", "--help", "help":
		a.usage()
		return nil
	default:
		a.usage()
		return fmt.Errorf("unknown subcommand: %s", argv[0])
	}
}

func (a *App) usage() {
	fmt.Fprintln(a.Out, "postctl <login|register|logout|whoami|accounts|connect|disconnect|history|delete-post|keys|preview|schedule> [flags]")
}

// workspace loads the stored session and its account directory.
func (a *App) workspace(ctx context.Context) (*service.Workspace, error) {
	session, err := a.auth.Current(ctx, Namespace)
	if errors.Is(err, repository.ErrNoSession) {
		return nil, ErrNotSignedIn
	}
	if err != nil {
		return nil, err
	}
	ws := service.NewWorkspace(Namespace, session, nil)
	a.directory.Refresh(ctx, ws)
	return ws, nil
}

func (a *App) prompt(label string) (string, error) {
	fmt.Fprint(a.Out, label)
	var line string
	if _, err := fmt.Fscanln(a.In, &line); err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func terminalPassword() (string, error) {
	b, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

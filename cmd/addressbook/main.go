package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/tartampluch/go-addressbook/internal/bot"
	"github.com/tartampluch/go-addressbook/internal/config"
	"github.com/tartampluch/go-addressbook/internal/contacts"
	"github.com/tartampluch/go-addressbook/internal/engine"
	"github.com/tartampluch/go-addressbook/internal/server"
	"golang.org/x/sync/errgroup"
)

// CLI is the command line of the addressbook binary.
type CLI struct {
	Version kong.VersionFlag `help:"Show version." short:"V"`
	Debug   bool             `help:"Enable debug logging to stderr."`
	Config  string           `help:"Path to the settings file." type:"path" placeholder:"FILE"`
	Lang    string           `help:"Reply language (en, uk)." short:"l"`
	Serve   bool             `help:"Serve the birthday calendar feed on localhost."`
	Port    string           `help:"Port of the birthday calendar feed."`
}

// main delegates to runMain so deferred closers run before os.Exit.
func main() {
	os.Exit(runMain())
}

func runMain() int {
	var cli CLI
	kong.Parse(&cli,
		kong.Name("addressbook"),
		kong.Description(config.CLIDescription),
		kong.Vars{"version": fmt.Sprintf(config.VersionFormat,
			config.AppName, config.Version, config.Commit, config.Date, runtime.GOOS, runtime.GOARCH)},
	)

	logCloser := setupLogging(cli.Debug)
	if logCloser != nil {
		defer func() { _ = logCloser.Close() }()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logStartupInfo()

	settings, err := loadSettings(cli)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return config.ExitCodeError
	}

	if err := run(ctx, settings, os.Stdin, os.Stdout); err != nil {
		slog.Error(config.ErrAppFailed,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyError, err,
		)
		fmt.Fprintln(os.Stderr, err)
		return config.ExitCodeError
	}

	slog.Info(config.MsgAppStop, config.LogKeyComponent, config.CompMain)
	return config.ExitCodeSuccess
}

// run wires the book, the bot and the optional feed server, then blocks on the command loop.
func run(ctx context.Context, s *config.Settings, in io.Reader, out io.Writer) error {
	tr := bot.NewTranslator(s.Language)
	book := contacts.NewBook()

	b := bot.New(book, tr)
	b.Importer = &engine.Importer{
		Fetcher:     engine.NewHTTPFetcher(),
		Credentials: engine.KeyringCredentials{Service: config.KeyringService},
	}
	b.CardDAVURL = s.CardDAV.URL
	b.CardDAVUser = s.CardDAV.User

	if !s.Feed.Enabled {
		return b.Run(ctx, in, out)
	}

	srv := server.NewFeedServer(s.Feed.Port)
	builder := &engine.CalendarBuilder{
		Clock:         contacts.RealClock{},
		Reminder:      s.Feed.Reminder,
		FormatSummary: tr.EventSummary,
	}
	// The server only sees rendered bytes, never the book itself.
	refresher := &engine.FeedRefresher{Builder: builder, Publish: srv.Publish}
	b.OnChange = refresher.Update
	refresher.Update(book)

	g, gctx := errgroup.WithContext(ctx)
	loopCtx, stop := context.WithCancel(gctx)
	defer stop()

	g.Go(func() error {
		return srv.Start(loopCtx)
	})
	g.Go(func() error {
		return refresher.Run(loopCtx)
	})
	g.Go(func() error {
		// Leaving the command loop stops the server and the refresher.
		defer stop()
		return b.Run(loopCtx, in, out)
	})
	return g.Wait()
}

// loadSettings layers the settings file, environment and flags, in that order.
func loadSettings(cli CLI) (*config.Settings, error) {
	path := cli.Config
	if path == "" {
		if dir, err := os.UserConfigDir(); err == nil {
			path = filepath.Join(dir, config.AppID, config.SettingsFileName)
		}
	}

	s, err := config.LoadSettings(path)
	if err != nil {
		return nil, err
	}
	s.ApplyEnv()

	if cli.Lang != "" {
		s.Language = cli.Lang
	}
	if cli.Serve {
		s.Feed.Enabled = true
	}
	if cli.Port != "" {
		s.Feed.Port = cli.Port
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}

	slog.Debug(config.MsgSettingsUsed,
		config.LogKeyComponent, config.CompSettings,
		config.LogKeyFile, path,
		config.LogKeyLang, s.Language,
		config.LogKeyPort, s.Feed.Port,
	)
	return s, nil
}

func logStartupInfo() {
	slog.Info(config.MsgAppStarting,
		config.LogKeyComponent, config.CompMain,
		slog.Group(config.LogKeyBuild,
			slog.String(config.LogKeyApp, config.AppName),
			slog.String(config.LogKeyVersion, config.Version),
			slog.String(config.LogKeyCommit, config.Commit),
			slog.String(config.LogKeyGoVer, runtime.Version()),
		),
		slog.Group(config.LogKeyEnv,
			slog.String(config.LogKeyOS, runtime.GOOS),
			slog.String(config.LogKeyArch, runtime.GOARCH),
			slog.Int(config.LogKeyPID, os.Getpid()),
		),
	)
}

// setupLogging installs a JSON slog logger. Stdout belongs to the chat, so
// logs go to a file in the user cache dir, and to stderr in debug mode.
func setupLogging(debugMode bool) io.Closer {
	var writers []io.Writer
	var logFile *os.File

	if debugMode {
		writers = append(writers, os.Stderr)
	}

	if logPath, err := getLogFilePath(); err == nil {
		// O_TRUNC resets logs on restart to prevent indefinite growth.
		f, err := os.OpenFile(logPath, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, config.FilePermUserRW)
		if err == nil {
			writers = append(writers, f)
			logFile = f
		} else {
			fmt.Fprintf(os.Stderr, config.MsgLogWarning, config.ErrLogFile, logPath, err)
		}
	}

	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: debugMode,
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(io.MultiWriter(writers...), opts)))

	if logFile == nil {
		return nil
	}
	return logFile
}

func getLogFilePath() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCacheDir, err)
	}

	appDir := filepath.Join(cacheDir, config.AppID)
	if err := os.MkdirAll(appDir, config.DirPermUserRWX); err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCreateDir, err)
	}
	return filepath.Join(appDir, config.LogFileName), nil
}

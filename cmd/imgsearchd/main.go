package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

func processError(err error) {
	fmt.Fprintln(os.Stderr, err.Error())
	os.Exit(2)
}

func newLogger(cfg *Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Log.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	var logger zerolog.Logger
	if cfg.Log.Pretty {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		logger = zerolog.New(os.Stderr)
	}
	return logger.Level(level).With().Timestamp().Logger()
}

func main() {
	addUser := flag.String("add-user", "", "create a user from name:password and exit")
	flag.Parse()

	cfg, err := loadConfig("conf", ".")
	if err != nil {
		processError(err)
	}
	logger := newLogger(cfg)

	var store *Store
	if cfg.Auth.Enabled || *addUser != "" {
		store, err = NewStore(cfg.Server.Database, logger)
		if err != nil {
			processError(err)
		}
		defer store.Close()
	}

	if *addUser != "" {
		name, pass, ok := strings.Cut(*addUser, ":")
		if !ok {
			processError(fmt.Errorf("-add-user expects name:password"))
		}
		if err := store.AddUser(name, pass, 1); err != nil {
			processError(err)
		}
		logger.Info().Str("user", name).Msg("user stored")
		return
	}

	srv, err := NewServer(cfg, store, logger)
	if err != nil {
		processError(err)
	}
	if len(srv.providers) == 0 {
		logger.Warn().Msg("no provider keys configured, every search will return 404")
	}

	logger.Info().Str("listen", cfg.Server.Listen).Msg("starting server")
	if err := http.ListenAndServe(cfg.Server.Listen, srv.Handler()); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}

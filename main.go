package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/allegro/bigcache/v3"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"blogApi/crud"
	"blogApi/http"
)

// main is the app's entry point.
func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("blogapi")
	}
}

// app holds what every command needs: the loaded configuration and an open database.
type app struct {
	configPath string
	prod       bool

	config Config
	db     *DB
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "blogapi",
		Short:         "A blogging REST API with users, blogs, posts, likes and comments",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.teardown()
		},
		// Running without a sub command serves the api.
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}

	// Provide the flag --prod in production to ensure that a config file is
	// provided before the application starts.
	cmd.PersistentFlags().BoolVar(&a.prod, "prod", false, "require a config file and log json")
	cmd.PersistentFlags().StringVar(&a.configPath, "config", DefaultConfigPath, "path to a .json or .toml config file")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Migrate the database and run the api server",
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.serve(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Run database migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				return AutoMigrate(a.db)
			},
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Drop all tables and migrate them again",
			RunE: func(cmd *cobra.Command, args []string) error {
				log.Warn().Msg("dropping all tables")
				return DestructiveReset(a.db)
			},
		},
	)
	return cmd
}

// setup loads the configuration, sets up logging and opens the database connection.
func (a *app) setup() error {
	config, err := LoadConfig(a.configPath, a.prod)
	if err != nil {
		return err
	}
	a.config = config
	setupLogging(config.IsProd())

	dbConfig := config.Database
	db := NewDB(dbConfig.Dialect, dbConfig.ConnectionInfo())
	if err := Open(db, config.IsProd()); err != nil {
		return err
	}
	a.db = db
	return nil
}

func (a *app) teardown() error {
	if a.db == nil || a.db.Gorm == nil {
		return nil
	}
	return Close(a.db)
}

// serve runs migrations, starts the crud services and serves the api until
// the process receives SIGINT or SIGTERM.
func (a *app) serve(ctx context.Context) error {
	if err := AutoMigrate(a.db); err != nil {
		return errors.Wrap(err, "migrating")
	}

	var cache *bigcache.BigCache
	if a.config.TokenCache.Duration > 0 {
		var err error
		cache, err = crud.NewTokenCache(a.config.TokenCache.Duration)
		if err != nil {
			return errors.Wrap(err, "creating token cache")
		}
		defer cache.Close()
	}

	// Start the crud services.
	services, err := crud.NewServices(
		a.db.Gorm,
		crud.WithUser(a.config.Pepper),
		crud.WithAccessToken(a.config.HMACKey, cache),
		crud.WithBlog(),
		crud.WithPost(),
		crud.WithLike(),
		crud.WithComment(),
		crud.WithImage(a.config.ImagesDir),
	)
	if err != nil {
		return err
	}

	// Set up a webserver.
	server := http.NewServer(services, http.Options{
		ClientToken:  a.config.ClientToken,
		ImagesDir:    a.config.ImagesDir,
		PrivateBlogs: a.config.PrivateBlogs,
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Serve the app.
	return server.Run(ctx, a.config.Port)
}

// setupLogging writes human readable logs in development and json in production.
func setupLogging(isProd bool) {
	zerolog.TimeFieldFormat = time.RFC3339
	if isProd {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		return
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		With().
		Timestamp().
		Logger()
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
}

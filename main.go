package main

import (
	"fmt"
	"net"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/bryan-buckman/gorestaurant/internal/api"
	"github.com/bryan-buckman/gorestaurant/internal/client"
	"github.com/bryan-buckman/gorestaurant/internal/config"
	"github.com/bryan-buckman/gorestaurant/internal/dashboard"
	"github.com/bryan-buckman/gorestaurant/internal/database"
	"github.com/bryan-buckman/gorestaurant/internal/menufile"
	"github.com/bryan-buckman/gorestaurant/internal/server"
)

const usage = `usage: gorestaurant [command]

commands:
  dashboard     serve the menu dashboard (default)
  api           serve the /foods resource
  all           serve both
  seed <file>   import a menu document into the store`

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	setupLogger(cfg.Log)

	cmd := "dashboard"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "dashboard":
		err = runDashboard(cfg)
	case "api":
		err = runAPI(cfg)
	case "all":
		err = runAll(cfg)
	case "seed":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, usage)
			os.Exit(2)
		}
		err = runSeed(cfg, os.Args[2])
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatal().Err(err).Str("command", cmd).Msg("Exiting")
	}
}

func setupLogger(cfg config.LogConfig) {
	if cfg.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	log.Logger = log.With().Caller().Logger()

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		log.Warn().Str("level", cfg.Level).Msg("Unknown LOG_LEVEL, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}

func runDashboard(cfg *config.Config) error {
	srv, err := newDashboard(cfg)
	if err != nil {
		return err
	}
	return srv.Start(cfg.Dashboard.Addr)
}

func newDashboard(cfg *config.Config) (*server.Server, error) {
	remote := client.New(cfg.Dashboard.APIURL, client.WithTimeout(cfg.Dashboard.APITimeout))
	dash := dashboard.New(remote, log.Logger)
	srv, err := server.New(dash, log.Logger)
	if err != nil {
		return nil, err
	}
	log.Info().Str("api", cfg.Dashboard.APIURL).Msg("Using food API")
	return srv, nil
}

func runAPI(cfg *config.Config) error {
	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	return api.New(db, log.Logger).Start(cfg.API.Addr)
}

func runAll(cfg *config.Config) error {
	_, serveAPI, err := listenAPI(cfg)
	if err != nil {
		return err
	}
	errc := make(chan error, 2)
	go func() { errc <- serveAPI() }()
	go func() { errc <- runDashboard(cfg) }()
	return <-errc
}

// listenAPI opens the store and binds the API address before anything is
// served, so a dashboard mounting right after finds the API accepting
// connections. serve runs until ln is closed and then closes the store.
func listenAPI(cfg *config.Config) (ln net.Listener, serve func() error, err error) {
	db, err := openStore(cfg)
	if err != nil {
		return nil, nil, err
	}
	ln, err = net.Listen("tcp", cfg.API.Addr)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("listen %s: %w", cfg.API.Addr, err)
	}
	serve = func() error {
		defer db.Close()
		return api.New(db, log.Logger).Serve(ln)
	}
	return ln, serve, nil
}

// openStore opens the configured store and seeds it when it is empty and a
// seed file is set.
func openStore(cfg *config.Config) (database.Store, error) {
	db, err := database.Open(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if cfg.API.SeedFile == "" {
		return db, nil
	}
	foods, err := db.ListFoods()
	if err == nil && len(foods) == 0 {
		err = seed(db, cfg.API.SeedFile)
	}
	if err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func runSeed(cfg *config.Config, path string) error {
	db, err := database.Open(cfg.DB)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()
	return seed(db, path)
}

func seed(db database.Store, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open menu: %w", err)
	}
	defer f.Close()

	foods, err := menufile.Parse(f)
	if err != nil {
		return err
	}
	n, err := db.ImportFoods(foods)
	if err != nil {
		return fmt.Errorf("import menu: %w", err)
	}
	log.Info().Str("file", path).Int("imported", n).Msg("Menu seeded")
	return nil
}

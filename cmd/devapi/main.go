package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"github.com/wichananm65/bookstore-storefront/internal/config"
	"github.com/wichananm65/bookstore-storefront/internal/server/database"
	"github.com/wichananm65/bookstore-storefront/internal/server/router"
)

func main() {
	log.SetFormatter(&log.JSONFormatter{})

	app := &cli.App{
		Name:  "devapi",
		Usage: "development backend for the storefront",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Usage: "listen address (overrides DEVAPI_ADDR)"},
			&cli.StringFlag{Name: "database-url", Usage: "Postgres url; empty runs in memory (overrides DEVAPI_DATABASE_URL)"},
			&cli.BoolFlag{Name: "no-seed", Usage: "start with empty data"},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		log.WithError(err).Fatal("devapi stopped")
	}
}

func run(c *cli.Context) error {
	cfg, err := config.LoadServer()
	if err != nil {
		return err
	}
	if v := c.String("addr"); v != "" {
		cfg.Addr = v
	}
	if v := c.String("database-url"); v != "" {
		cfg.DatabaseURL = v
	}
	if c.Bool("no-seed") {
		cfg.Seed = false
	}
	if lvl, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	}
	logger := log.StandardLogger()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var db *sql.DB
	if !cfg.InMemory() {
		db, err = database.Open(ctx, cfg.DatabaseURL, database.Options{MaxOpenConns: cfg.MaxOpenConn, MaxIdleConns: cfg.MaxIdleConn})
		if err != nil {
			return err
		}
		defer db.Close()
	}

	app, err := router.New(ctx, cfg, db, logger)
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		_ = app.ShutdownWithContext(context.Background())
	}()

	log.WithFields(log.Fields{"addr": cfg.Addr, "in_memory": cfg.InMemory(), "seed": cfg.Seed}).Info("starting devapi")
	return app.Listen(cfg.Addr)
}

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"

	"github.com/bwise1/groupsplit_api/config"
	"github.com/bwise1/groupsplit_api/internal/db"
	"github.com/bwise1/groupsplit_api/util"
)

const migrateTimeout = 2 * time.Minute

func main() {
	cfg := config.New()
	util.InitLogger(cfg.LogLevel, cfg.AppEnv)

	dsn := flag.String("dsn", cfg.Dsn, "postgres connection string")
	dryRun := flag.Bool("dry-run", false, "list embedded migrations without applying them")
	flag.Parse()

	if *dryRun {
		migrations, err := db.Migrations()
		if err != nil {
			util.Logger.WithFields(logrus.Fields{"error": err}).Fatal("reading migrations")
		}
		for _, m := range migrations {
			fmt.Fprintln(os.Stdout, m.Version)
		}
		return
	}

	database, err := db.New(*dsn, db.Options{MaxConns: 2, MinConns: 1})
	if err != nil {
		util.Logger.WithFields(logrus.Fields{"error": err}).Fatal("connecting to database")
	}
	defer database.Close()

	ctx, cancel := context.WithTimeout(context.Background(), migrateTimeout)
	defer cancel()

	applied, err := database.Migrate(ctx)
	if err != nil {
		util.Logger.WithFields(logrus.Fields{"error": err, "applied": applied}).Error("migration failed")
		database.Close()
		os.Exit(1)
	}
	util.Logger.WithFields(logrus.Fields{"applied": applied}).Info("migrations up to date")
}

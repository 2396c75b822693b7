package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"

	"asrama/internal/config"
	"asrama/migrations"
)

const usage = `usage: migrate [flags] <command>

commands:
  up        apply all pending migrations
  up-by-one apply the next pending migration
  down      roll back the latest migration
  status    print the state of every migration
  version   print the current schema version
`

func main() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	_ = godotenv.Load()

	cfg := config.Load()
	logger := config.NewLogger(cfg)

	db, err := config.NewPostgresDB(cfg)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(logger)
	if err := goose.SetDialect("postgres"); err != nil {
		logger.WithError(err).Fatal("failed to set dialect")
	}

	command := flag.Arg(0)
	switch command {
	case "up":
		err = goose.Up(db.DB, ".")
	case "up-by-one":
		err = goose.UpByOne(db.DB, ".")
	case "down":
		err = goose.Down(db.DB, ".")
	case "status":
		err = goose.Status(db.DB, ".")
	case "version":
		err = goose.Version(db.DB, ".")
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		logger.WithError(err).WithField("command", command).Fatal("migration failed")
	}
}

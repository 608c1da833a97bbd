package main

import (
	"os"

	"github.com/docopt/docopt-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/cydxin/mokjang-sdk/internal/config"
)

const MigrateVersion = "0.1.0"

func main() {
	usage := `MokJang schema migration.

Database settings come from application.yaml and MOKJANG_* env
(MOKJANG_DATABASE_DRIVER, MOKJANG_DATABASE_DSN). Flags override them.

Usage:
    migrate up [--driver=<driver>] [--dsn=<dsn>] [--verbose]
    migrate status [--driver=<driver>] [--dsn=<dsn>]
    migrate schema <table> [--driver=<driver>] [--dsn=<dsn>]
    migrate -h | --help
    migrate --version

Options:
    -h --help          Show this screen.
    --version          Show version.
    --driver=<driver>  mysql, postgres or sqlite.
    --dsn=<dsn>        Database DSN.
    --verbose          Print SQL.`

	opts, err := docopt.ParseArgs(usage, os.Args[1:], MigrateVersion)
	if err != nil {
		panic(err)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	config.LoadDotEnv(".")
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if drv, _ := opts.String("--driver"); drv != "" {
		cfg.Database.Driver = drv
	}
	if dsn, _ := opts.String("--dsn"); dsn != "" {
		cfg.Database.DSN = dsn
	}
	verbose, _ := opts.Bool("--verbose")

	db, err := config.OpenDB(cfg.Database, verbose)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("open database")
	}

	if up, _ := opts.Bool("up"); up {
		migrateUp(db)
	} else if status, _ := opts.Bool("status"); status {
		migrateStatus(db)
	} else if schema, _ := opts.Bool("schema"); schema {
		table, _ := opts.String("<table>")
		printSchema(db, table)
	}
}

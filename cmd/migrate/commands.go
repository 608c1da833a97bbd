package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	mokjang "github.com/cydxin/mokjang-sdk"
)

func migrateUp(db *gorm.DB) {
	if err := mokjang.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate up")
	}
	log.Info().Int("tables", len(mokjang.Models())).Msg("migrate up done")
}

func migrateStatus(db *gorm.DB) {
	status, err := mokjang.MigrationStatus(db)
	if err != nil {
		log.Fatal().Err(err).Msg("migrate status")
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TABLE\tEXISTS")
	for _, s := range status {
		fmt.Fprintf(w, "%s\t%v\n", s.Table, s.Exists)
	}
	_ = w.Flush()
}

func printSchema(db *gorm.DB, table string) {
	cols, err := mokjang.TableSchema(db, table)
	if err != nil {
		log.Fatal().Err(err).Str("table", table).Msg("migrate schema")
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FIELD\tCOLUMN\tSQL TYPE\tPK\tNOT NULL\tIN DB")
	for _, c := range cols {
		fmt.Fprintf(w, "%s\t%s\t%s\t%v\t%v\t%v\n", c.GoName, c.Column, c.SQLType, c.PrimaryKey, c.NotNull, c.InDB)
	}
	_ = w.Flush()
}

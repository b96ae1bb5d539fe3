package main

import (
	"database/sql"
	"log"
	"os"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"github.com/Sanchex-22/flow-console/pkg/configuration"
)

// Usage: migrate [up|down|status|redo|version]
func main() {
	command := "up"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	conf := configuration.Use()
	defer conf.Unload()

	db, err := sql.Open("postgres", conf.Database.ConnectionString())
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("failed to set dialect: %v", err)
	}

	if err := goose.Run(command, db, conf.MigrationsDir, os.Args[2:]...); err != nil {
		log.Fatalf("goose %s failed: %v", command, err)
	}
}

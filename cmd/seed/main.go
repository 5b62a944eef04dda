package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/themagicbeanstock/backend-go/internal/repository/postgres"
	"github.com/themagicbeanstock/backend-go/pkg/logger"
	"github.com/urfave/cli/v2"
)

type ctxKey string

const dbKey ctxKey = "db"

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func newAccountFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "account",
		Usage:    "Account the data belongs to",
		Required: true,
		EnvVars:  []string{"SEED_ACCOUNT"},
	}
}

func newDateFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "date",
		Usage: "Forecast date (YYYY-MM-DD) for forecast files keyed by menu item",
	}
}

func initDB(c *cli.Context) error {
	db, err := sql.Open("pgx", c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.PingContext(c.Context); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	c.Context = context.WithValue(c.Context, dbKey, postgres.Wrap(sqlx.NewDb(db, "pgx")))
	return nil
}

func closeDB(c *cli.Context) error {
	if db, ok := c.Context.Value(dbKey).(*postgres.DB); ok && db != nil {
		return db.Close()
	}
	return nil
}

func dbFromContext(c *cli.Context) (*postgres.DB, error) {
	db, ok := c.Context.Value(dbKey).(*postgres.DB)
	if !ok || db == nil {
		return nil, fmt.Errorf("database is not initialized")
	}
	return db, nil
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Debug().Err(err).Msg("could not load .env file")
	}
	logger.Setup(os.Getenv("SERVER_MODE"), os.Getenv("LOG_LEVEL"))

	app := &cli.App{
		Name:  "seed",
		Usage: "Load inventory, recipe, menu, sales and forecast files into the database",
		Commands: []*cli.Command{
			{
				Name:   "schema",
				Usage:  "Create missing tables and indexes",
				Flags:  []cli.Flag{newDBURLFlag()},
				Before: initDB,
				After:  closeDB,
				Action: runSchema,
			},
			{
				Name:      "upload",
				Usage:     "Ingest a single file",
				ArgsUsage: "<file>",
				Flags: []cli.Flag{
					newDBURLFlag(),
					newAccountFlag(),
					newDateFlag(),
					&cli.StringFlag{
						Name:  "kind",
						Usage: "Upload kind; inferred from the file name when omitted",
					},
				},
				Before: initDB,
				After:  closeDB,
				Action: runUpload,
			},
			{
				Name:  "folder",
				Usage: "Ingest every recognised file in a directory",
				Flags: []cli.Flag{
					newDBURLFlag(),
					newAccountFlag(),
					newDateFlag(),
					&cli.StringFlag{
						Name:    "data-dir",
						Usage:   "Directory containing seed files",
						Value:   "./data/seeds",
						EnvVars: []string{"SEED_DATA_DIR"},
					},
				},
				Before: initDB,
				After:  closeDB,
				Action: runFolder,
			},
			{
				Name:  "s3",
				Usage: "Ingest every recognised object under a bucket prefix",
				Flags: append([]cli.Flag{
					newDBURLFlag(),
					newAccountFlag(),
					newDateFlag(),
				}, s3Flags()...),
				Before: initDB,
				After:  closeDB,
				Action: runS3,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("seed failed")
	}
}

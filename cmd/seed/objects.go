package main

import (
	"github.com/themagicbeanstock/backend-go/internal/config"
	"github.com/themagicbeanstock/backend-go/internal/storage"
	"github.com/urfave/cli/v2"
)

func s3Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "s3-endpoint", Usage: "S3-compatible endpoint", EnvVars: []string{"STORAGE_ENDPOINT"}},
		&cli.StringFlag{Name: "s3-access-key", Usage: "Access key", EnvVars: []string{"STORAGE_ACCESS_KEY"}},
		&cli.StringFlag{Name: "s3-secret-key", Usage: "Secret key", EnvVars: []string{"STORAGE_SECRET_KEY"}},
		&cli.StringFlag{Name: "s3-bucket", Usage: "Bucket name", EnvVars: []string{"STORAGE_BUCKET"}},
		&cli.StringFlag{Name: "s3-region", Usage: "Bucket region", Value: "us-east-1", EnvVars: []string{"STORAGE_REGION"}},
		&cli.BoolFlag{Name: "s3-use-ssl", Usage: "Use TLS", Value: true, EnvVars: []string{"STORAGE_USE_SSL"}},
		&cli.StringFlag{Name: "prefix", Usage: "Object key prefix to ingest from", Value: "seeds"},
	}
}

func storageConfigFromFlags(c *cli.Context) config.StorageConfig {
	return config.StorageConfig{
		Enabled:   true,
		Endpoint:  c.String("s3-endpoint"),
		AccessKey: c.String("s3-access-key"),
		SecretKey: c.String("s3-secret-key"),
		Bucket:    c.String("s3-bucket"),
		Region:    c.String("s3-region"),
		UseSSL:    c.Bool("s3-use-ssl"),
	}
}

func runS3(c *cli.Context) error {
	db, err := dbFromContext(c)
	if err != nil {
		return err
	}

	client, err := storage.NewS3Client(storageConfigFromFlags(c))
	if err != nil {
		return err
	}

	results, err := newIngestService(db, client, "uploads").IngestFromStorage(c.Context, c.String("account"), c.String("prefix"), c.String("date"))
	logResults(results...)
	return err
}

// Copyright 2025 Quillstore Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/quillstore/quillstore"
	"github.com/quillstore/quillstore/ai"
	"github.com/quillstore/quillstore/auth"
	"github.com/quillstore/quillstore/config"
	"github.com/quillstore/quillstore/core"
	"github.com/quillstore/quillstore/ingestion"
	"github.com/quillstore/quillstore/server"
)

func main() {
	app := &cli.App{
		Name:  "quillstore",
		Usage: "File ingestion service for searchable document collections",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the ingestion HTTP server",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "config",
						Aliases:  []string{"c"},
						Usage:    "Path to YAML configuration file",
						Required: true,
					},
				},
			},
			{
				Name:   "ingest",
				Usage:  "Ingest a local file into a dataset",
				Action: ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "config",
						Aliases:  []string{"c"},
						Usage:    "Path to YAML configuration file",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "dataset",
						Usage:    "Target dataset id",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "Path to the file to ingest",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "name",
						Usage: "Collection name (defaults to the file name)",
					},
					&cli.StringFlag{
						Name:  "encoding",
						Usage: "Declared character encoding of the file",
						Value: "utf-8",
					},
					&cli.StringFlag{
						Name:     "token",
						Usage:    "Access token of the caller",
						Required: true,
					},
				},
			},
			{
				Name:   "create-dataset",
				Usage:  "Create a dataset with an owning member",
				Action: createDatasetCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "config",
						Aliases:  []string{"c"},
						Usage:    "Path to YAML configuration file",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "team",
						Usage:    "Owning team id",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "owner",
						Usage:    "Owning member id",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "name",
						Usage:    "Dataset name",
						Required: true,
					},
				},
			},
			{
				Name:   "token",
				Usage:  "Mint an access token for a team member",
				Action: tokenCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "config",
						Aliases:  []string{"c"},
						Usage:    "Path to YAML configuration file",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "team",
						Usage:    "Team id claim",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "member",
						Usage:    "Member id claim",
						Required: true,
					},
					&cli.DurationFlag{
						Name:  "ttl",
						Usage: "Token lifetime",
						Value: 24 * time.Hour,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

// openDatabase opens the database per the config file.
func openDatabase(cfg *config.Config) (*quillstore.Database, error) {
	opts := []quillstore.DatabaseOption{
		quillstore.WithAIConfig(ai.DefaultConfig(
			ai.WithEmbeddingHost(cfg.EmbeddingHost),
			ai.WithEmbeddingModel(cfg.EmbeddingModel),
		)),
	}
	if cfg.BucketQuota > 0 {
		opts = append(opts, quillstore.WithBucketQuota(cfg.BucketQuota))
	}
	return quillstore.NewDatabase(cfg.DatabasePath, opts...)
}

// newPipeline wires the full pipeline from the config file.
func newPipeline(cfg *config.Config, db *quillstore.Database) (*ingestion.Pipeline, *ingestion.ScratchStore, error) {
	scratch, err := ingestion.NewScratchStore(cfg.ScratchDir, cfg.MaxUploadSize, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create scratch store: %w", err)
	}

	authOpts := make([]auth.Option, 0, len(cfg.APIKeys))
	for _, key := range cfg.APIKeys {
		authOpts = append(authOpts, auth.WithAPIKey(key.Key, auth.KeyIdentity{
			TeamId:   key.TeamId,
			MemberId: key.MemberId,
		}))
	}
	authorizer, err := db.NewAuthorizer([]byte(cfg.AuthSecret), authOpts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create authorizer: %w", err)
	}

	pipeline, err := db.NewIngestionPipeline(scratch, authorizer,
		[]ingestion.RegistrarOption{ingestion.WithChunking(cfg.ChunkSize, cfg.ChunkOverlap)})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create pipeline: %w", err)
	}
	return pipeline, scratch, nil
}

func serveCommand(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	pipeline, _, err := newPipeline(cfg, db)
	if err != nil {
		return err
	}

	srv, err := server.New(pipeline, cfg.Listen)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func ingestCommand(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	pipeline, _, err := newPipeline(cfg, db)
	if err != nil {
		return err
	}

	f, err := os.Open(c.String("file"))
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	req := ingestion.Request{
		DatasetId:      c.String("dataset"),
		Proof:          auth.Proof{Token: c.String("token")},
		FileName:       filepath.Base(f.Name()),
		ContentType:    "text/plain",
		Encoding:       c.String("encoding"),
		CollectionName: c.String("name"),
	}

	result, err := pipeline.Ingest(context.Background(), req, f)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Printf("collection %s registered with %d chunks\n",
		result.CollectionId, len(result.InsertResults))
	return nil
}

func createDatasetCommand(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	dataset, err := db.DatasetRepository().AddDataset(context.Background(), &core.Dataset{
		TeamId: c.String("team"),
		Name:   c.String("name"),
		Members: []core.Member{
			{MemberId: c.String("owner"), Role: core.RoleOwner},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create dataset: %w", err)
	}

	fmt.Println(dataset.Id)
	return nil
}

func tokenCommand(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}

	token, err := auth.MintToken([]byte(cfg.AuthSecret), c.String("team"), c.String("member"), c.Duration("ttl"))
	if err != nil {
		return fmt.Errorf("failed to mint token: %w", err)
	}

	fmt.Println(token)
	return nil
}

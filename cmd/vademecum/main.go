// Command vademecum is the operations CLI: run the server, ingest dumps,
// rebuild the vocabulary and ask questions against a running instance.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mediclic/vademecum-ai/internal/application/ingest"
	"github.com/mediclic/vademecum-ai/internal/config"
	"github.com/mediclic/vademecum-ai/internal/domain/vocabulary"
	"github.com/mediclic/vademecum-ai/internal/infrastructure/monitoring/logging"
	"github.com/mediclic/vademecum-ai/internal/infrastructure/search/opensearch"
	"github.com/mediclic/vademecum-ai/internal/infrastructure/storage/minio"
	"github.com/mediclic/vademecum-ai/internal/server"
	"github.com/mediclic/vademecum-ai/pkg/client"
)

var configPath string

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.Load(configPath)
	}
	return config.LoadFromEnv()
}

func buildLogger(cfg *config.Config) (logging.Logger, error) {
	return logging.NewLogger(cfg.Log)
}

func buildStore(cfg *config.Config, logger logging.Logger) (*opensearch.Store, error) {
	osClient, err := opensearch.NewClient(cfg.OpenSearch)
	if err != nil {
		return nil, err
	}
	return opensearch.NewStore(osClient, cfg.OpenSearch, logger), nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the answer API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger, err := buildLogger(cfg)
			if err != nil {
				return err
			}
			srv, err := server.New(cfg, logger)
			if err != nil {
				return err
			}
			ctx, stop := signalContext()
			defer stop()
			return srv.Run(ctx)
		},
	}
}

func newIngestCmd() *cobra.Command {
	var file, object string
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Ingest a vademecum CSV dump into the index",
		RunE: func(cmd *cobra.Command, args []string) error {
			if (file == "") == (object == "") {
				return fmt.Errorf("exactly one of --file or --object is required")
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger, err := buildLogger(cfg)
			if err != nil {
				return err
			}
			store, err := buildStore(cfg, logger)
			if err != nil {
				return err
			}

			ctx, stop := signalContext()
			defer stop()
			if err := store.EnsureIndex(ctx); err != nil {
				return err
			}

			var src io.ReadCloser
			if file != "" {
				f, err := os.Open(file)
				if err != nil {
					return err
				}
				src = f
			} else {
				objects, err := minio.NewObjectStore(cfg.MinIO, logger)
				if err != nil {
					return err
				}
				obj, err := objects.Fetch(ctx, object)
				if err != nil {
					return err
				}
				src = obj
			}
			defer src.Close()

			stats, err := ingest.New(store, nil, logger).IngestCSV(ctx, src)
			if err != nil {
				return err
			}
			fmt.Printf("rows=%d fragments=%d indexed=%d skipped=%d\n",
				stats.Rows, stats.Fragments, stats.Indexed, stats.Skipped)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "local CSV file to ingest")
	cmd.Flags().StringVar(&object, "object", "", "object name in the configured bucket")
	return cmd
}

func newVocabCmd() *cobra.Command {
	vocab := &cobra.Command{
		Use:   "vocab",
		Short: "Vocabulary operations",
	}
	vocab.AddCommand(&cobra.Command{
		Use:   "rebuild",
		Short: "Scan the index and report the vocabulary size",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger, err := buildLogger(cfg)
			if err != nil {
				return err
			}
			store, err := buildStore(cfg, logger)
			if err != nil {
				return err
			}

			ctx, stop := signalContext()
			defer stop()
			cache := vocabulary.NewCache(store, logger)
			if err := cache.Ensure(ctx); err != nil {
				return err
			}
			fmt.Printf("vocabulary entries: %d\n", cache.Len())
			return nil
		},
	})
	return vocab
}

func newAskCmd() *cobra.Command {
	var serverURL, username, password, token string
	cmd := &cobra.Command{
		Use:   "ask [query]",
		Short: "Ask a question against a running server",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			query := args[0]
			for _, a := range args[1:] {
				query += " " + a
			}

			var opts []client.Option
			if token != "" {
				opts = append(opts, client.WithToken(token))
			}
			c := client.New(serverURL, opts...)
			if token == "" {
				if _, err := c.Login(ctx, username, password); err != nil {
					return err
				}
			}

			ans, err := c.Ask(ctx, query)
			if err != nil {
				return err
			}
			fmt.Println(ans.Reply)
			if ans.Drug != "" {
				fmt.Printf("\n[%s · %s · %s]\n", ans.Drug, ans.Section, ans.Outcome)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&serverURL, "server", "http://localhost:8080", "server base URL")
	cmd.Flags().StringVar(&username, "user", "cli", "username for login")
	cmd.Flags().StringVar(&password, "password", "cli", "password for login")
	cmd.Flags().StringVar(&token, "token", "", "bearer token (skips login)")
	return cmd
}

func main() {
	root := &cobra.Command{
		Use:           "vademecum",
		Short:         "Vademecum medication answer engine",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to the configuration file")
	root.AddCommand(newServeCmd(), newIngestCmd(), newVocabCmd(), newAskCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

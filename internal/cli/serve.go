package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ppiankov/wildaware/internal/pipeline"
	"github.com/ppiankov/wildaware/internal/server"
	"github.com/ppiankov/wildaware/internal/store"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the WildAware HTTP API",
	Long: `Serve the classification, chat, catalog, sighting and activity
endpoints over HTTP until interrupted.

Example:
  wildaware serve
  wildaware serve --addr :9090 --store sqlite --store-path ./wildaware.db`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", ":8080", "listen address")
	serveCmd.Flags().String("store", "memory", "sighting and activity store (memory, sqlite)")
	serveCmd.Flags().String("store-path", "", "database file for the sqlite store")
	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("store.driver", serveCmd.Flags().Lookup("store"))
	_ = viper.BindPFlag("store.path", serveCmd.Flags().Lookup("store-path"))
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.Store)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Warn("Failed to close store", zap.Error(err))
		}
	}()

	provider, err := buildCatalogProvider(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	defer closeProvider(provider, logger)

	p := pipeline.NewPipeline(cfg, provider, st, logger)
	if _, err := p.Catalog(ctx); err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	logger.Info("Starting WildAware API",
		zap.String("version", Version),
		zap.String("addr", cfg.Server.Addr),
		zap.String("catalog", cfg.Catalog.Source),
		zap.String("store", cfg.Store.Driver),
		zap.String("llm", cfg.LLM.Provider))

	srv, err := server.New(p, st, cfg.Server, logger)
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Jimmy200504/CalH2O/internal/config"
	"github.com/Jimmy200504/CalH2O/internal/database"
	"github.com/Jimmy200504/CalH2O/internal/logging"
	"github.com/Jimmy200504/CalH2O/internal/ml"
	"github.com/Jimmy200504/CalH2O/internal/pipeline"
	"github.com/Jimmy200504/CalH2O/internal/prompt"
	"github.com/Jimmy200504/CalH2O/internal/server"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var configPath string

var rootCmd = &cobra.Command{
	Use:           "calh2o",
	Short:         "Nutrition and hydration tracking backend",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.GetConfigPath(), "path to configuration file (JSON or YAML)")
	rootCmd.AddCommand(serveCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := logging.New(cfg.Log)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer store.Close()
	logger.Info().Str("driver", cfg.Database.Driver).Msg("database connected")

	model, err := ml.NewModel(cfg.ML)
	if err != nil {
		return fmt.Errorf("failed to create ML model: %w", err)
	}
	if err := model.Load(ctx); err != nil {
		return fmt.Errorf("failed to load ML model: %w", err)
	}
	defer model.Close()
	logger.Info().Str("backend", cfg.ML.Type).Str("model", cfg.ML.Model).Msg("model loaded")

	client := ml.NewClient(model,
		ml.WithModelName(cfg.ML.Model),
		ml.WithTemperature(cfg.ML.Temperature),
		ml.WithLogger(logger.With().Str("component", "ml").Logger()),
	)
	catalog := prompt.NewCatalog()

	srv := server.New(cfg.Server, store, server.Pipelines{
		DailyNeeds:         pipeline.NewDailyNeeds(client, catalog),
		EmotionalBlackmail: pipeline.NewEmotionalBlackmail(client, catalog),
		FoodPhoto:          pipeline.NewFoodPhoto(client, catalog),
		TextToNutrition:    pipeline.NewTextToNutrition(pipeline.NewLLMInterpreter(client, catalog)),
	}, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start(gctx)
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	logger.Info().Msg("server exited")
	return nil
}

package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"undoCalc/internal/app"
	"undoCalc/internal/domain"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadApp читает конфиг (с учётом --env) и создаёт приложение.
func loadApp(cmd *cobra.Command) (*app.App, error) {
	var files []string
	if envFile, _ := cmd.Flags().GetString("env"); envFile != "" {
		files = append(files, envFile)
	}
	cfg, err := app.LoadCfg(files...)
	if err != nil {
		return nil, err
	}
	return app.New(cfg), nil
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "calculator",
		Short:         "Arithmetic calculator with persistent history and undo/redo",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runREPL,
	}
	root.PersistentFlags().String("env", "", "Path to .env file (default: ./.env if present)")
	root.AddCommand(replCmd(), evalCmd(), serveCmd(), configCmd())
	return root
}

func runREPL(cmd *cobra.Command, _ []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	return a.RunREPL(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
}

func replCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start the interactive calculator (default)",
		Args:  cobra.NoArgs,
		RunE:  runREPL,
	}
}

func evalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "eval <operation> <a> <b>",
		Short: "Evaluate one operation on top of the saved history",
		Example: "  calculator eval + 2 3\n" +
			"  calculator eval -- - -5 3",
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			rec, err := a.Eval(cmd.Context(), args[0], args[1], args[2])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), domain.FormatNumber(rec.Result, a.Config().Precision))
			return nil
		},
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the calculator over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			return a.Run()
		},
	}
}

func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Validate configuration and print the effective values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			cfg := a.Config()

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			rows := []struct {
				key string
				val any
			}{
				{"LOG_LEVEL", cfg.LogLevel},
				{"LOG_FILE", cfg.LogFile},
				{"HISTORY_FILE", cfg.HistoryFile},
				{"LEGACY_HISTORY_PATH", cfg.LegacyHistoryPath},
				{"LOAD_ON_START", bool(cfg.LoadOnStart)},
				{"AUTO_SAVE", bool(cfg.AutoSave)},
				{"AUTO_SAVE_PATH", cfg.AutoSavePath},
				{"MAX_HISTORY_SIZE", cfg.MaxHistorySize},
				{"MAX_UNDO_DEPTH", cfg.MaxUndoDepth},
				{"PRECISION", cfg.Precision},
				{"MAX_INPUT_VALUE", cfg.MaxInputValue},
				{"DEFAULT_ENCODING", cfg.Encoding},
				{"SERVER", cfg.Server.Addr()},
				{"DB_ENABLED", cfg.DB.Enabled},
				{"MONGO_ENABLED", cfg.Mongo.Enabled},
				{"REDIS_ENABLED", cfg.Redis.Enabled},
				{"KAFKA_ENABLED", cfg.Kafka.Enabled},
				{"CLICKHOUSE_ENABLED", cfg.ClickHouse.Enabled},
			}
			fmt.Fprintln(tw, "Configuration OK")
			for _, r := range rows {
				fmt.Fprintf(tw, "  %s_%s\t%v\n", app.AppName, r.key, r.val)
			}
			return tw.Flush()
		},
	}
}

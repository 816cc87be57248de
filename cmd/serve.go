package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mailframe/mailframe/internal/config"
	"github.com/mailframe/mailframe/internal/logging"
	"github.com/mailframe/mailframe/internal/server"
	"github.com/mailframe/mailframe/internal/watcher"
)

var serveCmd = &cobra.Command{
	Use:     "serve <template-file>",
	Aliases: []string{"s"},
	Short:   "Edit a template with a live compiled preview",
	Long: `Serve starts the preview server for one template file. Edits made
through the editor API recompile the preview after a short quiet period;
edits made to the file in an external editor are picked up automatically.`,
	Args: cobra.ExactArgs(1),
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 0, "preview server port")
	serveCmd.Flags().String("host", "", "preview server host")
	serveCmd.Flags().String("compiler", "", "compiler service endpoint URL")
	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	viper.BindPFlag("compiler.endpoint", serveCmd.Flags().Lookup("compiler"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.Compiler.Endpoint == "" {
		return fmt.Errorf("no compiler endpoint configured (set compiler.endpoint or --compiler)")
	}

	logger := logging.New(&logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stderr,
	})

	path := args[0]
	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading template: %w", err)
	}

	srv, err := server.New(cfg, logger, string(source))
	if err != nil {
		return fmt.Errorf("starting session: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fw, err := watcher.New(path, 300*time.Millisecond)
	if err != nil {
		return fmt.Errorf("watching template: %w", err)
	}
	fw.OnReload(func(contents string) {
		if err := srv.Session().SetSource(contents); err != nil {
			logger.Warn("reloaded file does not parse, keeping previous state", err, "path", path)
		}
	})
	go fw.Start(ctx)

	logger.Info("editing template", "path", path, "url", "http://"+cfg.Addr())
	return srv.Start(ctx)
}

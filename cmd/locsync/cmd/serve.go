package cmd

import (
	"github.com/spf13/cobra"

	"github.com/redshield/locsync/internal/server"
)

var serveFlagAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the shared corrections service",
	Long: `Serve hosts the correction document over HTTP: GET /corrections is
public; PUT /corrections replaces the document and PATCH /corrections
merges a delta, both requiring the X-Worker-Token header (set
LOCSYNC_WORKER_TOKEN).`,
	Example: `  locsync serve --store sqlite --store-path corrections.db
  locsync serve --addr :9000`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveFlagAddr, "addr", "", "listen address (default from config)")
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st, closeStore, err := buildStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	serverConfig := server.Config{
		Addr:           cfg.Server.Addr,
		Token:          cfg.Server.Token,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}
	if serveFlagAddr != "" {
		serverConfig.Addr = serveFlagAddr
	}

	return server.New(serverConfig, st).Run()
}

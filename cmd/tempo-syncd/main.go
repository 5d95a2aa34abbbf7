package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/sadopc/tempo/internal/syncserver"
)

var Version = "dev"

func main() {
	var (
		addr    string
		dataDir string
	)

	rootCmd := &cobra.Command{
		Use:     "tempo-syncd",
		Short:   "tempo-syncd - remote store for tempo day documents",
		Version: Version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(addr, dataDir)
		},
	}
	rootCmd.Flags().StringVar(&addr, "addr", ":8787", "listen address")
	rootCmd.Flags().StringVar(&dataDir, "data-dir", "", "document directory (default ~/.local/share/tempo-syncd)")

	// .env is optional; flags and env still apply without one.
	if err := godotenv.Load(); err == nil {
		log.Debug("loaded .env")
	}
	if v := os.Getenv("TEMPO_SYNCD_ADDR"); v != "" {
		addr = v
	}
	if v := os.Getenv("TEMPO_SYNCD_DATA_DIR"); v != "" {
		dataDir = v
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(addr, dataDir string) error {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".local", "share", "tempo-syncd")
	}

	docs, err := syncserver.NewDocStore(dataDir)
	if err != nil {
		return fmt.Errorf("open document store: %w", err)
	}

	log.Info("starting sync server", "addr", addr, "data", dataDir)
	server := syncserver.NewServer(docs)
	return server.Run(addr)
}

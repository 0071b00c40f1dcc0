package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "openpic",
	Short: "Event photo ingestion coordinator",
	Long: `Openpic coordinates event photo ingestion: it deduplicates uploads by
content fingerprint, hands out presigned storage URLs, tracks photo and
selfie metadata, and feeds the face matching workers through prioritized
Redis queues.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}

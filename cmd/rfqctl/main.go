package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	dbPath    string
	jwtSecret string
)

var rootCmd = &cobra.Command{
	Use:   "rfqctl",
	Short: "Administrative tool for the QuoteFlow backend",
	Long: `rfqctl imports historical requests into the local store, runs the
similar-quote matcher offline and issues bearer tokens for local testing.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func init() {
	log.SetFlags(log.Ldate | log.Ltime)

	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "data/quoteflow.db", "SQLite database path")

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(similarCmd)
	rootCmd.AddCommand(tokenCmd)
}

// initConfig fills unset flags from .env and the server's environment variables
func initConfig() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Error loading .env file: %v", err)
	}

	if !rootCmd.PersistentFlags().Changed("db") && os.Getenv("QUOTEFLOW_STORAGE_PATH") != "" {
		dbPath = os.Getenv("QUOTEFLOW_STORAGE_PATH")
	}
	if jwtSecret == "" {
		jwtSecret = os.Getenv("QUOTEFLOW_AUTH_JWT_SECRET")
	}
}

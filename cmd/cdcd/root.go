package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var log = logrus.New()

var rootCmd = &cobra.Command{
	Use:   "cdcd",
	Short: "Streaming CDC platform core: binlog assembly and partition assignment",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := initConfig(); err != nil {
			return err
		}
		level, err := logrus.ParseLevel(v.GetString("log.level"))
		if err != nil {
			return fmt.Errorf("cdcd: parsing log.level: %w", err)
		}
		log.SetLevel(level)
		if v.GetString("log.format") == "json" {
			log.SetFormatter(&logrus.JSONFormatter{})
		}
		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "vigil",
	Short: "Vigil - equity scoring and position monitoring engine",
	Long: `Vigil scores equities on technical and news-sentiment signals, ranks
buy candidates across a configured universe, and watches open positions
through a protective-stop lifecycle with sell alerts.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug mode")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

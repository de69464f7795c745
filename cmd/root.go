package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "pagerank [input [damping [\"exactly N\"|threshold [inlinks_file [pagerank_file [k]]]]]]",
	Short: "Rank pages of a link graph by damped random walk",
	Long: `pagerank reads a tab-separated edge list (optionally gzip-compressed),
iterates the damped random-walk rank to a convergence threshold or a fixed
number of steps, and writes the top pages by rank and by inlink count.

Invoked without a subcommand it behaves like "pagerank run".`,
	Args:         cobra.MaximumNArgs(6),
	RunE:         runRun,
	SilenceUsage: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default .pagerank.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "print every iteration")
}

func initConfig() {
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".pagerank")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix("PAGERANK")
	viper.AutomaticEnv()

	// It's fine if no config file is found; we use defaults.
	_ = viper.ReadInConfig()
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "metasnv",
	Short: "metasnv - per-sample coverage for metagenomic SNV calling",
	Long: `metasnv computes per-base coverage of BAM files aligned against a
shared reference database and aggregates it into cross-sample matrices.

The depth matrix (<project>.all_cov.tab) holds the mean depth of every
reference in every sample; the breadth matrix (<project>.all_perc.tab)
holds the fraction of each reference covered at least once.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("metasnv-go version %s\n", version)
	},
}

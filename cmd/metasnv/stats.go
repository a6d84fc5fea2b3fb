package main

import (
	"fmt"

	"github.com/scttfrdmn/metasnv-go/pkg/bam"
	"github.com/scttfrdmn/metasnv-go/pkg/coverage"
	"github.com/spf13/cobra"
)

var (
	statsReference string
	statsMinMapQ   int
)

var statsCmd = &cobra.Command{
	Use:   "stats <sample.bam>",
	Short: "Show per-reference coverage of one BAM file",
	Long: `Display mean depth, median depth and 1x breadth of every reference
declared by a BAM file.

Example:
  metasnv stats s1.bam
  metasnv stats s1.bam --reference genome_0042`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sample, err := bam.LoadSample(cmd.Context(), args[0], bam.Options{MinMapQ: statsMinMapQ})
		if err != nil {
			return err
		}

		names := sample.ReferenceNames()
		if statsReference != "" {
			names = []string{statsReference}
		}

		fmt.Printf("Sample: %s\n\n", sample.Name())
		fmt.Printf("%-30s %12s %12s %12s %12s\n", "Reference", "Length", "Mean", "Median", "Breadth")
		for _, name := range names {
			track, err := sample.Get(name)
			if err != nil {
				return err
			}
			mean, err := track.Depth(coverage.Mean)
			if err != nil {
				return err
			}
			median, err := track.Depth(coverage.Median)
			if err != nil {
				return err
			}
			fmt.Printf("%-30s %12d %12.2f %12.1f %11.2f%%\n", name, track.Length(), mean, median,
				track.Breadth(coverage.BreadthThreshold)*100)
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().StringVarP(&statsReference, "reference", "r", "", "Only show this reference")
	statsCmd.Flags().IntVar(&statsMinMapQ, "min-mapq", 0, "Minimum mapping quality counted toward depth")
}

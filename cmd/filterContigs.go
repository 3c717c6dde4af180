/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/gmaffy/assembly-pipeline/postprocess"
)

var filterContigsCmd = &cobra.Command{
	Use:   "filterContigs",
	Short: "Drop short contigs and rename the rest after the sample",
	Long:  `Writes the contigs of at least --min-length bases to --output, replacing the assembler's NODE prefix with the sample name.`,
	Run: func(cmd *cobra.Command, args []string) {
		contigs, cErr := cmd.Flags().GetString("contigs")
		if cErr != nil {
			log.Fatalf("Error getting contigs flag: %v", cErr)
		}
		output, oErr := cmd.Flags().GetString("output")
		if oErr != nil {
			log.Fatalf("Error getting output flag: %v", oErr)
		}
		sample, sErr := cmd.Flags().GetString("sample")
		if sErr != nil {
			log.Fatalf("Error getting sample flag: %v", sErr)
		}
		minLength, mErr := cmd.Flags().GetInt("min-length")
		if mErr != nil {
			log.Fatalf("Error getting min-length flag: %v", mErr)
		}
		if contigs == "" || output == "" || sample == "" {
			log.Fatalf("Please provide --contigs, --output and --sample")
		}

		kept, err := postprocess.FilterContigs(contigs, output, sample, minLength)
		if err != nil {
			log.Fatalf("Error filtering %s: %v", contigs, err)
		}
		fmt.Printf("Kept %d contigs of at least %d bp in %s\n", kept, minLength, output)
	},
}

func init() {
	rootCmd.AddCommand(filterContigsCmd)

	filterContigsCmd.Flags().String("contigs", "", "SPAdes contigs.fasta")
	filterContigsCmd.Flags().StringP("output", "o", "", "Filtered FASTA to write")
	filterContigsCmd.Flags().StringP("sample", "s", "", "Sample name for the contig headers")
	filterContigsCmd.Flags().IntP("min-length", "m", 1000, "Shortest contig kept")
}

/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/gmaffy/assembly-pipeline/samples"
)

var readLengthCmd = &cobra.Command{
	Use:   "readLength [reads...]",
	Short: "Longest read among the first records of FASTQ files",
	Long:  `Prints the longest sequence among the first 250 records of each FASTQ file. Gzip and xz files are read directly.`,
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		failed := false
		for _, f := range args {
			n, err := samples.MaxReadLength(f)
			if err != nil {
				fmt.Printf("%s\tNA\t%v\n", f, err)
				failed = true
				continue
			}
			fmt.Printf("%s\t%d\n", f, n)
		}
		if failed {
			log.Fatalf("Some read lengths could not be determined")
		}
	},
}

func init() {
	rootCmd.AddCommand(readLengthCmd)
}

/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gmaffy/assembly-pipeline/progress"
	"github.com/gmaffy/assembly-pipeline/samples"
	"github.com/gmaffy/assembly-pipeline/utils"
)

var groupCmd = &cobra.Command{
	Use:   "group",
	Short: "List the samples in a run directory",
	Long:  `Groups the read files of a run directory into samples and prints each sample with its files. Nothing is written.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		if err := applyGroupFlags(cmd, &cfg); err != nil {
			log.Fatalf("Error getting flags: %v", err)
		}
		if cfg.Path == "" {
			log.Fatalf("Please provide the run directory with flag -p")
		}

		files, err := samples.ListReads(cfg.Path, cfg.Extension)
		if err != nil {
			log.Fatalf("Error listing reads: %v", err)
		}
		g := samples.NewGrouper(cfg.Extension)
		byName := make(map[string][]string)
		for _, f := range files {
			byName[g.Name(f)] = append(byName[g.Name(f)], f)
		}
		for _, name := range g.Group(files, progress.Discard{}) {
			fmt.Printf("%s\n", name)
			for _, f := range byName[name] {
				fmt.Printf("\t%s\n", filepath.Join(cfg.Path, f))
			}
		}
	},
}

// applyGroupFlags overrides the run path and extension of cfg with the flags given.
func applyGroupFlags(cmd *cobra.Command, cfg *utils.Config) error {
	flags := cmd.Flags()
	if flags.Changed("path") {
		path, err := flags.GetString("path")
		if err != nil {
			return err
		}
		cfg.Path = path
	}
	if flags.Changed("extension") {
		ext, err := flags.GetString("extension")
		if err != nil {
			return err
		}
		cfg.Extension = ext
	}
	return nil
}

func init() {
	rootCmd.AddCommand(groupCmd)

	groupCmd.Flags().StringP("path", "p", "", "Run directory holding the read files")
	groupCmd.Flags().StringP("extension", "e", "fastq", "Read file extension")
}

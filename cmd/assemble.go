/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gmaffy/assembly-pipeline/assembly"
	"github.com/gmaffy/assembly-pipeline/metadata"
	"github.com/gmaffy/assembly-pipeline/utils"
)

const runLogName = "assembly.log"

var assembleCmd = &cobra.Command{
	Use:   "assemble",
	Short: "Assemble every sample in a run directory",
	Long: `Groups the read files in a run directory into samples and assembles each one with SPAdes.
Samples whose contigs already exist are not assembled again, so an interrupted run can simply be restarted.`,
	Run: func(cmd *cobra.Command, args []string) {
		start := time.Now()
		cfg := loadConfig()
		applyAssembleFlags(cmd, &cfg)

		if cfg.Path == "" {
			log.Fatalf("Please provide the run directory with flag -p or the path key of the config file")
		}
		absPath, err := filepath.Abs(cfg.Path)
		if err != nil {
			log.Fatalf("Error resolving run path %s: %v", cfg.Path, err)
		}
		cfg.Path = absPath

		fmt.Printf("Checking dependencies ...\n\n")
		spadesPath, err := utils.CheckDeps(cfg.Spades)
		if err != nil {
			log.Fatalf("Dependency check failed: %v", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		version := cfg.SpadesVersion
		if version == "" {
			version, err = utils.AssemblerVersion(ctx, spadesPath)
			if err != nil {
				log.Fatalf("Dependency check failed: %v", err)
			}
		}
		if err := assembly.CheckVersion(version, cfg.VersionCompare); err != nil {
			log.Fatalf("Dependency check failed: %v", err)
		}
		fmt.Printf("Dependencies OK: SPAdes %s at %s\n\n----------------------------------------------------------\n\n", version, spadesPath)

		logPath := filepath.Join(cfg.Path, runLogName)
		logger, closer, err := utils.NewRunLogger(logPath, os.Stderr)
		if err != nil {
			log.Fatalf("Error opening run log: %v", err)
		}
		defer closer.Close()

		p := &assembly.Pipeline{
			Config:        cfg,
			Runner:        assembly.BashRunner{},
			Printer:       metadata.JSONPrinter{},
			Stdout:        os.Stdout,
			Logger:        logger,
			LogPath:       logPath,
			SpadesPath:    spadesPath,
			SpadesVersion: version,
		}
		batch, err := p.Run(ctx)
		if err != nil {
			log.Fatalf("Assembly pipeline failed: %v", err)
		}

		failed := 0
		for _, s := range batch {
			for _, e := range s.Errors {
				fmt.Printf("%s: %s\n", s.Name, e)
			}
			if len(s.Errors) > 0 {
				failed++
			}
		}
		utils.PrintTime(fmt.Sprintf("%d samples processed, %d with errors", len(batch), failed), start)
	},
}

// applyAssembleFlags overrides config values with the flags given on the command line.
func applyAssembleFlags(cmd *cobra.Command, cfg *utils.Config) {
	flags := cmd.Flags()
	var err error
	if flags.Changed("path") {
		cfg.Path, err = flags.GetString("path")
	}
	if err == nil && flags.Changed("kmers") {
		cfg.Kmers, err = flags.GetString("kmers")
	}
	if err == nil && flags.Changed("threads") {
		cfg.Threads, err = flags.GetInt("threads")
	}
	if err == nil && flags.Changed("assay") {
		cfg.Assay, err = flags.GetString("assay")
	}
	if err == nil && flags.Changed("dataset") {
		cfg.Dataset, err = flags.GetBool("dataset")
	}
	if err == nil && flags.Changed("extension") {
		cfg.Extension, err = flags.GetString("extension")
	}
	if err == nil && flags.Changed("min-contig-length") {
		cfg.MinContigLength, err = flags.GetInt("min-contig-length")
	}
	if err == nil && flags.Changed("spades") {
		cfg.Spades, err = flags.GetString("spades")
	}
	if err == nil && flags.Changed("spades-version") {
		cfg.SpadesVersion, err = flags.GetString("spades-version")
	}
	if err == nil && flags.Changed("version-compare") {
		cfg.VersionCompare, err = flags.GetString("version-compare")
	}
	if err == nil && flags.Changed("no-report") {
		var skip bool
		skip, err = flags.GetBool("no-report")
		cfg.Report = !skip
	}
	if err != nil {
		log.Fatalf("Error getting flags: %v", err)
	}
	if cfg.VersionCompare != assembly.CompareLexical && cfg.VersionCompare != assembly.CompareNumeric {
		log.Fatalf("version-compare must be %q or %q, got %q", assembly.CompareLexical, assembly.CompareNumeric, cfg.VersionCompare)
	}
}

func init() {
	rootCmd.AddCommand(assembleCmd)

	defaults := utils.DefaultConfig()
	// --------------------------------------------- Run ------------------------------------------------------------ //
	assembleCmd.Flags().StringP("path", "p", "", "Run directory holding the read files")
	assembleCmd.Flags().StringP("extension", "e", defaults.Extension, "Read file extension")
	assembleCmd.Flags().String("assay", "", "Library assay, e.g. Nextera XT or Nextera Mate Pair")
	// --------------------------------------------- Assembler ------------------------------------------------------ //
	assembleCmd.Flags().StringP("kmers", "k", defaults.Kmers, "Comma separated k-mer sizes")
	assembleCmd.Flags().IntP("threads", "t", defaults.Threads, "Threads per assembly")
	assembleCmd.Flags().Bool("dataset", false, "Use <path>/<sample>.yml as the SPAdes dataset when present")
	assembleCmd.Flags().String("spades", defaults.Spades, "SPAdes executable")
	assembleCmd.Flags().String("spades-version", "", "SPAdes version (asked from the executable when empty)")
	assembleCmd.Flags().String("version-compare", defaults.VersionCompare, "How versions are compared: lexical or numeric")
	// --------------------------------------------- Post-processing ------------------------------------------------ //
	assembleCmd.Flags().Int("min-contig-length", defaults.MinContigLength, "Shortest contig kept in the filtered assembly")
	assembleCmd.Flags().Bool("no-report", false, "Do not write the run summary")
}

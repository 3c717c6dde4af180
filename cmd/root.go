/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/gmaffy/assembly-pipeline/utils"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "assembly-pipeline",
	Short: "De novo assembly of a sequencing run with SPAdes",
	Long: `Assembles every sample of a sequencing run:
1.	Group read files into samples
2.	Sample read lengths and pick k-mer sizes
3.	Run SPAdes for every sample in parallel
4.	Filter short contigs, collect best assemblies, record insert size and corrected reads
5.	Write per-sample metadata and a run summary
`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

var cfgFile string

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "path to config file ")
}

// loadConfig reads the config file when one is given, else starts from the defaults.
func loadConfig() utils.Config {
	if cfgFile == "" {
		return utils.DefaultConfig()
	}
	if _, err := os.Stat(cfgFile); err != nil {
		log.Fatalf("Error reading config file: %v", err)
	}
	cfg, err := utils.ReadConfig(cfgFile)
	if err != nil {
		log.Fatalf("Error parsing config file: %v", err)
	}
	return cfg
}

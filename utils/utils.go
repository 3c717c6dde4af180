package utils

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
)

type Config struct {
	Path            string
	Kmers           string
	Threads         int
	Assay           string
	Dataset         bool
	Extension       string
	MinContigLength int
	Spades          string
	SpadesVersion   string
	VersionCompare  string
	Report          bool
}

func DefaultConfig() Config {
	return Config{
		Kmers:           "21,33,55,77,99,127",
		Threads:         runtime.NumCPU(),
		Extension:       "fastq",
		MinContigLength: 1000,
		Spades:          "spades.py",
		VersionCompare:  "lexical",
		Report:          true,
	}
}

// ReadConfig reads a "Key: value" file on top of the defaults.
func ReadConfig(configPath string) (Config, error) {
	cfg := DefaultConfig()
	configFile, err := os.Open(configPath)
	if err != nil {
		return cfg, err
	}
	defer configFile.Close()

	scanner := bufio.NewScanner(configFile)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		switch key {
		case "path":
			cfg.Path = value
		case "kmers":
			cfg.Kmers = value
		case "threads":
			n, err := strconv.Atoi(value)
			if err != nil {
				return cfg, fmt.Errorf("%s:%d: threads: %w", configPath, lineNo, err)
			}
			cfg.Threads = n
		case "assay":
			cfg.Assay = value
		case "dataset":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return cfg, fmt.Errorf("%s:%d: dataset: %w", configPath, lineNo, err)
			}
			cfg.Dataset = b
		case "extension":
			cfg.Extension = value
		case "min_contig_length":
			n, err := strconv.Atoi(value)
			if err != nil {
				return cfg, fmt.Errorf("%s:%d: min_contig_length: %w", configPath, lineNo, err)
			}
			cfg.MinContigLength = n
		case "spades":
			cfg.Spades = value
		case "spades_version":
			cfg.SpadesVersion = value
		case "version_compare":
			cfg.VersionCompare = value
		case "report":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return cfg, fmt.Errorf("%s:%d: report: %w", configPath, lineNo, err)
			}
			cfg.Report = b
		}
	}

	if err := scanner.Err(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// RunBashCmd runs cmdStr through bash and reports a non-zero exit as an *ExitError.
func RunBashCmd(ctx context.Context, cmdStr string, stdout, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, "bash", "-c", cmdStr)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	err := cmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{Cmd: cmdStr, Code: exitErr.ExitCode()}
	}
	return err
}

type ExitError struct {
	Cmd  string
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("command exited with status %d: %s", e.Code, e.Cmd)
}

package utils

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	slogmulti "github.com/samber/slog-multi"
)

const (
	StageTool = "ASSEMBLY"

	StatusStarted   = "STARTED"
	StatusCompleted = "COMPLETED"
	StatusSkipped   = "SKIPPED"
	StatusFailed    = "FAILED"
)

type LogEntry struct {
	Timestamp string
	Tool      string
	Program   string
	Sample    string
	Status    string
	Cmd       string
}

// NewRunLogger writes every record as JSON to logPath and warnings and above as text
// to console. Each record carries the run id.
func NewRunLogger(logPath string, console io.Writer) (*slog.Logger, io.Closer, error) {
	logFile, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	handler := slogmulti.Fanout(
		slog.NewJSONHandler(logFile, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewTextHandler(console, &slog.HandlerOptions{Level: slog.LevelWarn}),
	)
	logger := slog.New(handler).With("RUN", uuid.NewString())
	return logger, logFile, nil
}

func LogStage(l *slog.Logger, program, sample, status, cmd string) {
	l.Info(StageTool, "PROGRAM", program, "SAMPLE", sample, "STATUS", status, "CMD", cmd)
}

func LogStageFailed(l *slog.Logger, program, sample string, err error) {
	l.Warn(StageTool, "PROGRAM", program, "SAMPLE", sample, "STATUS", StatusFailed, "ERROR", err.Error())
}

// ParseLogFile reads stage records back from a run log. Lines that are not stage
// records are ignored, and a missing log yields no entries.
func ParseLogFile(logFilePath string) []LogEntry {
	var entries []LogEntry
	file, err := os.Open(logFilePath)
	if err != nil {
		return entries
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var raw struct {
			Time    string `json:"time"`
			Msg     string `json:"msg"`
			Program string `json:"PROGRAM"`
			Sample  string `json:"SAMPLE"`
			Status  string `json:"STATUS"`
			Cmd     string `json:"CMD"`
		}
		if err := json.Unmarshal(scanner.Bytes(), &raw); err != nil {
			continue
		}
		if raw.Program == "" {
			continue
		}
		entries = append(entries, LogEntry{
			Timestamp: raw.Time,
			Tool:      raw.Msg,
			Program:   raw.Program,
			Sample:    raw.Sample,
			Status:    raw.Status,
			Cmd:       raw.Cmd,
		})
	}
	return entries
}

func StageHasCompleted(entries []LogEntry, program, sample string) bool {
	for _, e := range entries {
		if e.Program == program && e.Sample == sample && e.Status == StatusCompleted {
			return true
		}
	}
	return false
}

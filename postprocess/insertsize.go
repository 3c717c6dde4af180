package postprocess

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gmaffy/assembly-pipeline/metadata"
	"github.com/gmaffy/assembly-pipeline/utils"
)

const insertSizeMarker = "Insert size ="

// ParseInsertSize pulls the size and deviation out of an assembler log line such as
//
//	Insert size = 240.514, deviation = 105.257, left quantile = 142, right quantile = 384
func ParseInsertSize(line string) (size, deviation string, err error) {
	fields := strings.Split(line, "= ")
	if len(fields) < 3 {
		return "", "", &ParseError{Reason: "insert size line has too few fields: " + strings.TrimSpace(line)}
	}
	size = strings.Split(fields[1], ",")[0]
	deviation = strings.Split(fields[2], ",")[0]
	for _, v := range []string{size, deviation} {
		if _, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err != nil {
			return "", "", &ParseError{Reason: "insert size value " + strconv.Quote(v) + " is not a number"}
		}
	}
	return size, deviation, nil
}

// ScanInsertSize returns the values from the first insert size line in r.
func ScanInsertSize(r io.Reader, path string) (size, deviation string, found bool, err error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if !strings.Contains(line, insertSizeMarker) {
			continue
		}
		size, deviation, err = ParseInsertSize(line)
		if pe, ok := err.(*ParseError); ok {
			pe.Path, pe.Line = path, lineNo
		}
		return size, deviation, err == nil, err
	}
	return "", "", false, scanner.Err()
}

// InsertSize records the insert size the assembler estimated for a paired-end sample.
// Single-end samples and samples without assembler output get NA.
func InsertSize(s *metadata.Sample) error {
	s.General.InsertSize = metadata.Opt[string]{}
	s.General.InsertSizeStdDev = metadata.Opt[string]{}

	outDir, ok := s.General.AssemblerOutputDir.Get()
	if !ok || !s.Paired() || !utils.DirExists(outDir) {
		return nil
	}

	logPath := filepath.Join(outDir, "spades.log")
	f, err := os.Open(logPath)
	if err != nil {
		return err
	}
	defer f.Close()

	size, deviation, found, err := ScanInsertSize(f, logPath)
	if err != nil || !found {
		return err
	}
	s.General.InsertSize = metadata.Some(size)
	s.General.InsertSizeStdDev = metadata.Some(deviation)
	return nil
}

package samples

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/maruel/natural"

	"github.com/gmaffy/assembly-pipeline/metadata"
	"github.com/gmaffy/assembly-pipeline/progress"
	"github.com/gmaffy/assembly-pipeline/utils"
)

// Discover finds the read files directly under runPath, groups them into samples,
// gives every sample an output directory <runPath>/<name> holding links to its reads,
// and restores run statistics left by a previous run.
func Discover(runPath, extension string, rep progress.Reporter) ([]*metadata.Sample, error) {
	matches, err := ListReads(runPath, extension)
	if err != nil {
		return nil, err
	}

	g := NewGrouper(extension)
	byName := make(map[string][]string)
	for _, m := range matches {
		byName[g.Name(m)] = append(byName[g.Name(m)], filepath.Join(runPath, m))
	}
	names := g.Group(matches, rep)
	rep.Done()

	var out []*metadata.Sample
	for _, name := range names {
		files, ok := byName[name]
		if !ok {
			continue
		}
		outputDir := filepath.Join(runPath, name)
		if err := utils.MakePath(outputDir); err != nil {
			return nil, fmt.Errorf("creating output directory for %s: %w", name, err)
		}
		for _, f := range files {
			if err := utils.RelativeSymlink(f, filepath.Join(outputDir, filepath.Base(f))); err != nil {
				return nil, fmt.Errorf("linking %s: %w", f, err)
			}
		}

		s := metadata.NewSample(name, outputDir)
		reads, trimmed, err := sampleReads(outputDir, name, extension)
		if err != nil {
			return nil, err
		}
		s.General.ReadFiles = reads
		s.General.TrimmedReadFiles = trimmed
		if err := metadata.RestorePrevious(s); err != nil {
			s.AddError("restoring previous metadata: %v", err)
		}
		out = append(out, s)
	}
	return out, nil
}

// ListReads returns the names of the read files directly under runPath.
func ListReads(runPath, extension string) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(runPath), "*."+extension+"*")
	if err != nil {
		return nil, fmt.Errorf("listing %s files in %s: %w", extension, runPath, err)
	}
	files := matches[:0]
	for _, m := range matches {
		if !utils.DirExists(filepath.Join(runPath, m)) {
			files = append(files, m)
		}
	}
	return files, nil
}

// sampleReads lists the read files of a sample in its output directory, splitting off
// the ones an adapter trimming step produced. Only files named <name>*.<ext>* count.
func sampleReads(outputDir, name, extension string) (reads, trimmed []string, err error) {
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return nil, nil, err
	}
	for _, e := range entries {
		file := e.Name()
		if e.IsDir() || !strings.HasPrefix(file, name) || !strings.Contains(file, "."+extension) {
			continue
		}
		full := filepath.Join(outputDir, file)
		if strings.Contains(file, "trimmed") {
			trimmed = append(trimmed, full)
		} else {
			reads = append(reads, full)
		}
	}
	sort.Slice(reads, func(i, j int) bool { return natural.Less(reads[i], reads[j]) })
	sort.Slice(trimmed, func(i, j int) bool { return natural.Less(trimmed[i], trimmed[j]) })
	return reads, trimmed, nil
}

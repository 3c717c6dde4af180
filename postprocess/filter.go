package postprocess

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"

	"github.com/gmaffy/assembly-pipeline/metadata"
	"github.com/gmaffy/assembly-pipeline/utils"
)

const (
	// assemblerToken leads every contig name the assembler writes, e.g.
	// NODE_1_length_705814_cov_37.107_ID_4231.
	assemblerToken = "NODE"

	BestAssembliesDir = "BestAssemblies"

	fastaLineWidth = 60
)

// FilterContigs writes the contigs of at least minLength bases to filteredFile,
// naming them after the sample instead of the assembler. The output appears
// atomically so an interrupted run never leaves a partial file behind.
func FilterContigs(contigsFile, filteredFile, sampleName string, minLength int) (int, error) {
	in, err := os.Open(contigsFile)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(filteredFile), ".filter-*")
	if err != nil {
		return 0, err
	}
	defer os.Remove(tmp.Name())

	r := fasta.NewReader(in, linear.NewSeq("", nil, alphabet.DNAredundant))
	sc := seqio.NewScanner(r)
	w := fasta.NewWriter(tmp, fastaLineWidth)

	kept := 0
	for sc.Next() {
		seq := sc.Seq().(*linear.Seq)
		if seq.Len() < minLength {
			continue
		}
		seq.ID = strings.ReplaceAll(seq.ID, assemblerToken, sampleName)
		seq.Desc = ""
		if _, err := w.Write(seq); err != nil {
			tmp.Close()
			return kept, fmt.Errorf("writing %s: %w", filteredFile, err)
		}
		kept++
	}
	if err := sc.Error(); err != nil {
		tmp.Close()
		return kept, &ParseError{Path: contigsFile, Reason: err.Error()}
	}
	if err := tmp.Close(); err != nil {
		return kept, err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return kept, err
	}
	return kept, os.Rename(tmp.Name(), filteredFile)
}

// Filter runs the contig filter for a sample once, then copies the filtered assembly
// into <runPath>/BestAssemblies unless it is already there.
func Filter(s *metadata.Sample, runPath string, minLength int) error {
	filtered := s.FilteredFile()
	if outDir, ok := s.General.AssemblerOutputDir.Get(); ok {
		contigs := filepath.Join(outDir, "contigs.fasta")
		if utils.FileExists(contigs) && !utils.FileExists(filtered) {
			if _, err := FilterContigs(contigs, filtered, s.Name, minLength); err != nil {
				s.General.BestAssemblyFile = metadata.Opt[string]{}
				return err
			}
		}
	}

	if !utils.FileExists(filtered) {
		s.General.BestAssemblyFile = metadata.Opt[string]{}
		return nil
	}

	bestDir := filepath.Join(runPath, BestAssembliesDir)
	if err := utils.MakePath(bestDir); err != nil {
		return err
	}
	s.General.BestAssembliesPath = metadata.Some(bestDir)
	bestFile := filepath.Join(bestDir, s.Name+".fasta")
	if !utils.FileExists(bestFile) {
		if err := utils.CopyFile(filtered, bestFile); err != nil {
			return fmt.Errorf("copying %s to %s: %w", filtered, bestDir, err)
		}
	}
	s.General.BestAssemblyFile = metadata.Some(bestFile)
	return nil
}

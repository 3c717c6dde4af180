package samples

import (
	"regexp"
	"sort"

	"github.com/maruel/natural"

	"github.com/gmaffy/assembly-pipeline/progress"
)

// Grouper turns read file names into sample names. The rules are tried in order and
// the name is everything before the first rule that matches:
//
//	_S1_L001        raw Illumina naming
//	_R1_001         files renamed by an earlier assembly run
//	_R1.<ext>       simple paired naming
//	-1.<ext> _1.<ext>
//	.<ext>          anything else
type Grouper struct {
	rules []groupRule
	bare  *regexp.Regexp
}

type groupRule struct {
	match *regexp.Regexp
	split *regexp.Regexp
}

func NewGrouper(extension string) *Grouper {
	ext := regexp.QuoteMeta(extension)
	illumina := regexp.MustCompile(`_S\d+_L001`)
	renamed := regexp.MustCompile(`_R\d_001`)
	return &Grouper{
		rules: []groupRule{
			{match: illumina, split: illumina},
			{match: renamed, split: renamed},
			{match: regexp.MustCompile(`R\d\.` + ext), split: regexp.MustCompile(`_R\d\.` + ext)},
			{match: regexp.MustCompile(`[-_]\d\.` + ext), split: regexp.MustCompile(`[-_]\d\.` + ext)},
		},
		bare: regexp.MustCompile(`\.` + ext),
	}
}

// Name returns the sample name for a single file name.
func (g *Grouper) Name(file string) string {
	for _, r := range g.rules {
		if r.match.MatchString(file) {
			return before(r.split, file)
		}
	}
	return before(g.bare, file)
}

// Group returns the distinct sample names of files in natural order, advancing
// rep once per file.
func (g *Grouper) Group(files []string, rep progress.Reporter) []string {
	seen := make(map[string]struct{})
	for _, f := range files {
		seen[g.Name(f)] = struct{}{}
		rep.Advance()
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool { return natural.Less(names[i], names[j]) })
	return names
}

func before(re *regexp.Regexp, s string) string {
	loc := re.FindStringIndex(s)
	if loc == nil {
		return s
	}
	return s[:loc[0]]
}

package organize

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"mangashelf/internal/tag"
	"mangashelf/internal/textutil"
)

var (
	// The title ends where the first chapter or volume marker begins.
	titleBoundary = regexp.MustCompile(`\d{3}|c\d{3}|v\d{2,3}`)
	numberedPart  = regexp.MustCompile(`\d+ - .+`)
	braceGroup    = regexp.MustCompile(`\{[^}]*\}`)
	parenGroup    = regexp.MustCompile(`\([^)]*\)`)

	volumeToken      = regexp.MustCompile(`\bv(\d{1,4})\b`)
	chapterToken     = regexp.MustCompile(`\bc?(\d{3})\b`)
	yearToken        = regexp.MustCompile(`\((\d{4})\)`)
	contributorToken = regexp.MustCompile(`\(([^()]+)\)\s*$`)
)

// Tokens are the metadata fragments read from one filename.
type Tokens struct {
	Title       string
	Volume      int
	HasVolume   bool
	Chapter     int
	HasChapter  bool
	Year        int
	HasYear     bool
	Contributor string
}

// ParseName extracts the title and metadata tokens from an archive name.
// Checksum tags are removed first so their digits are never mistaken for
// volume or chapter numbers.
func ParseName(name string) Tokens {
	stem := stemOf(tag.Strip(filepath.Base(name)))
	t := Tokens{Title: titleFromStem(stem)}

	if m := volumeToken.FindStringSubmatch(stem); m != nil {
		t.Volume, _ = strconv.Atoi(m[1])
		t.HasVolume = true
	}
	if m := chapterToken.FindStringSubmatch(stem); m != nil {
		t.Chapter, _ = strconv.Atoi(m[1])
		t.HasChapter = true
	}
	if m := yearToken.FindStringSubmatch(stem); m != nil {
		t.Year, _ = strconv.Atoi(m[1])
		t.HasYear = true
	}
	if m := contributorToken.FindStringSubmatch(stem); m != nil && isContributor(m[1]) {
		t.Contributor = strings.TrimSpace(m[1])
	}
	return t
}

// BaseTitle returns the title part of an archive name.
func BaseTitle(name string) string {
	return ParseName(name).Title
}

func stemOf(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

func titleFromStem(stem string) string {
	if loc := titleBoundary.FindStringIndex(stem); loc != nil {
		stem = stem[:loc[0]]
	}
	return sanitizeTitle(stem)
}

func sanitizeTitle(title string) string {
	title = numberedPart.ReplaceAllString(title, "")
	title = braceGroup.ReplaceAllString(title, "")
	title = parenGroup.ReplaceAllString(title, "")
	title = textutil.CollapseSpace(title)
	return strings.TrimRight(title, " -_.,")
}

func isContributor(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, "digital") {
		return false
	}
	if len(value) == 4 {
		if _, err := strconv.Atoi(value); err == nil {
			return false
		}
	}
	return true
}

// folderKey maps an existing folder name to the title key it was built
// from, so "Title", "Title [v]" and "Title v01-03 (2020) (Digital)" all
// resolve to the same group.
func folderKey(dirName, suffix string) string {
	name := strings.TrimSpace(dirName)
	if suffix != "" {
		name = strings.TrimSpace(strings.TrimSuffix(name, suffix))
	}
	return textutil.FoldKey(titleFromStem(name))
}

package organize

import (
	"fmt"
	"strings"

	"mangashelf/internal/config"
	"mangashelf/internal/textutil"
)

func titleKey(title string) string {
	return textutil.FoldKey(title)
}

// FolderName renders the destination folder for a group under the given
// scheme. The verified suffix is appended only when every file in the
// group is tagged.
func FolderName(g *Group, scheme, suffix string) string {
	var name string
	switch scheme {
	case config.FolderSchemeDetailed:
		name = detailedName(g)
	default:
		name = g.Title
	}
	name = textutil.SanitizeFileName(name)
	if name == "" {
		return ""
	}
	if suffix = strings.TrimSpace(suffix); suffix != "" && g.AllTagged() {
		name += " " + suffix
	}
	return name
}

func detailedName(g *Group) string {
	parts := []string{g.Title}
	if vols := g.Volumes(); len(vols) > 0 {
		lo, hi := vols[0], vols[len(vols)-1]
		if lo == hi {
			parts = append(parts, fmt.Sprintf("v%02d", lo))
		} else {
			parts = append(parts, fmt.Sprintf("v%02d-%02d", lo, hi))
		}
	}
	if years := g.Years(); len(years) > 0 {
		lo, hi := years[0], years[len(years)-1]
		if lo == hi {
			parts = append(parts, fmt.Sprintf("(%d)", lo))
		} else {
			parts = append(parts, fmt.Sprintf("(%d-%d)", lo, hi))
		}
	}
	parts = append(parts, "(Digital)")
	if contributors := g.Contributors(); len(contributors) > 0 {
		parts = append(parts, "("+strings.Join(contributors, ", ")+")")
	}
	return strings.Join(parts, " ")
}

package organize

import (
	"sort"
	"strings"
)

// Group collects every archive that shares a title key.
type Group struct {
	Key   string
	Title string
	Files []string

	volumes      map[int]struct{}
	years        map[int]struct{}
	contributors map[string]struct{}
	tagged       int
}

func newGroup(key, title string) *Group {
	return &Group{
		Key:          key,
		Title:        title,
		volumes:      make(map[int]struct{}),
		years:        make(map[int]struct{}),
		contributors: make(map[string]struct{}),
	}
}

// Add records one archive and its parsed tokens.
func (g *Group) Add(path string, tokens Tokens, tagged bool) {
	g.Files = append(g.Files, path)
	if tokens.HasVolume {
		g.volumes[tokens.Volume] = struct{}{}
	}
	if tokens.HasYear {
		g.years[tokens.Year] = struct{}{}
	}
	if tokens.Contributor != "" {
		g.contributors[tokens.Contributor] = struct{}{}
	}
	if tagged {
		g.tagged++
	}
}

// Merge folds other into g. The receiver keeps its key and title.
func (g *Group) Merge(other *Group) {
	if other == nil || other == g {
		return
	}
	g.Files = append(g.Files, other.Files...)
	for v := range other.volumes {
		g.volumes[v] = struct{}{}
	}
	for y := range other.years {
		g.years[y] = struct{}{}
	}
	for c := range other.contributors {
		g.contributors[c] = struct{}{}
	}
	g.tagged += other.tagged
}

// AllTagged reports whether every file in the group carries a checksum tag.
func (g *Group) AllTagged() bool {
	return len(g.Files) > 0 && g.tagged == len(g.Files)
}

// Volumes returns the distinct volume numbers in ascending order.
func (g *Group) Volumes() []int { return sortedInts(g.volumes) }

// Years returns the distinct publication years in ascending order.
func (g *Group) Years() []int { return sortedInts(g.years) }

// Contributors returns the distinct contributor names sorted case-insensitively.
func (g *Group) Contributors() []string {
	out := make([]string, 0, len(g.contributors))
	for c := range g.contributors {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		li, lj := strings.ToLower(out[i]), strings.ToLower(out[j])
		if li == lj {
			return out[i] < out[j]
		}
		return li < lj
	})
	return out
}

func sortedInts(set map[int]struct{}) []int {
	out := make([]int, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}

// groupByTitle builds the title-keyed aggregation in one pass. Files whose
// title cannot be derived are returned separately.
func groupByTitle(entries []entry) (map[string]*Group, []entry) {
	groups := make(map[string]*Group)
	var untitled []entry
	for _, e := range entries {
		if e.tokens.Title == "" {
			untitled = append(untitled, e)
			continue
		}
		key := titleKey(e.tokens.Title)
		incoming := newGroup(key, e.tokens.Title)
		incoming.Add(e.path, e.tokens, e.tagged)
		if existing, ok := groups[key]; ok {
			existing.Merge(incoming)
			continue
		}
		groups[key] = incoming
	}
	return groups, untitled
}

func sortedKeys(groups map[string]*Group) []string {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

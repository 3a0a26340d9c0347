package tag

import (
	"path/filepath"
	"regexp"
	"strings"

	"mangashelf/internal/checksum"
)

// State classifies what a filename carries.
type State int

const (
	// Absent means no tag-shaped token was found.
	Absent State = iota
	// Valid means a recognized tag decoded cleanly.
	Valid
	// Malformed means a tag-shaped token is present but does not decode.
	Malformed
)

func (s State) String() string {
	switch s {
	case Valid:
		return "valid"
	case Malformed:
		return "malformed"
	default:
		return "absent"
	}
}

// Inspection is the result of examining one filename.
type Inspection struct {
	State State
	Tag   Tag
	// Raw is the bracket text that was decoded or rejected.
	Raw string
}

var (
	vShape    = regexp.MustCompile(`\[v-?[0-9A-Za-z]{8,}\]`)
	bareShape = regexp.MustCompile(`\[[0-9A-Fa-f]{8}\]`)
)

// Codec encodes in one canonical format and decodes that format first,
// followed by the legacy formats when enabled. It never encodes a legacy
// format.
type Codec struct {
	format Format
	order  []Format
}

// NewCodec builds a codec for format. With acceptLegacy the remaining
// formats are tried in Formats order after the canonical one.
func NewCodec(format Format, acceptLegacy bool) Codec {
	if format == "" {
		format = FormatSizeCRC
	}
	order := []Format{format}
	if acceptLegacy {
		for _, f := range Formats {
			if f != format {
				order = append(order, f)
			}
		}
	}
	return Codec{format: format, order: order}
}

// Format returns the canonical encoding.
func (c Codec) Format() Format {
	return c.format
}

// Encode builds the canonical tag for sum.
func (c Codec) Encode(sum checksum.Sum) Tag {
	return New(c.format, sum)
}

// Decode returns the tag embedded in filename. Absence and malformed tokens
// both yield false.
func (c Codec) Decode(filename string) (Tag, bool) {
	name := filepath.Base(filename)
	for _, f := range c.order {
		if t, ok := decodeAs(f, name); ok {
			return t, true
		}
	}
	return Tag{}, false
}

// Inspect distinguishes a missing tag from one that looks like a tag but
// cannot be decoded.
func (c Codec) Inspect(filename string) Inspection {
	name := filepath.Base(filename)
	if t, ok := c.Decode(name); ok {
		return Inspection{State: Valid, Tag: t, Raw: t.String()}
	}
	if raw := lastMatch(vShape, name); raw != "" {
		return Inspection{State: Malformed, Raw: raw}
	}
	if c.accepts(FormatBare) {
		if raw := lastMatch(bareShape, name); raw != "" {
			return Inspection{State: Malformed, Raw: raw}
		}
	}
	return Inspection{State: Absent}
}

func (c Codec) accepts(f Format) bool {
	for _, candidate := range c.order {
		if candidate == f {
			return true
		}
	}
	return false
}

// Strip removes every decodable or tag-shaped token from name and collapses
// the whitespace left behind. The extension is kept.
func Strip(name string) string {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for _, f := range Formats {
		base = patterns[f].ReplaceAllString(base, " ")
	}
	base = vShape.ReplaceAllString(base, " ")
	return strings.Join(strings.Fields(base), " ") + ext
}

func lastMatch(re *regexp.Regexp, s string) string {
	all := re.FindAllString(s, -1)
	if len(all) == 0 {
		return ""
	}
	return all[len(all)-1]
}

package tag

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"mangashelf/internal/checksum"
)

// Format identifies one bracket encoding.
type Format string

const (
	// FormatSizeCRC renders "[v<size><CRC32>]".
	FormatSizeCRC Format = "size_crc"
	// FormatCRC renders "[v-<CRC32>]".
	FormatCRC Format = "crc"
	// FormatBare renders "[<CRC32>]".
	FormatBare Format = "bare"
)

// Formats lists every encoding in legacy decode order.
var Formats = []Format{FormatSizeCRC, FormatCRC, FormatBare}

// ParseFormat maps a configuration value to a Format.
func ParseFormat(value string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(value)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown tag format %q", value)
}

// HasSize reports whether the encoding carries the byte size.
func (f Format) HasSize() bool {
	return f == FormatSizeCRC
}

var patterns = map[Format]*regexp.Regexp{
	FormatSizeCRC: regexp.MustCompile(`\[v([0-9A-F]{9,})\]`),
	FormatCRC:     regexp.MustCompile(`\[v-([0-9A-F]{8})\]`),
	FormatBare:    regexp.MustCompile(`\[([0-9A-F]{8})\]`),
}

// Tag is a checksum, and for FormatSizeCRC a byte size, embedded in a filename.
type Tag struct {
	Format Format
	CRC32  uint32
	Size   int64
}

// New builds a tag in format f from sum. Size is dropped for CRC-only formats.
func New(f Format, sum checksum.Sum) Tag {
	t := Tag{Format: f, CRC32: sum.CRC32}
	if f.HasSize() {
		t.Size = sum.Size
	}
	return t
}

// String renders the bracket form. A decoded tag renders byte-identical to
// the text it was parsed from.
func (t Tag) String() string {
	crc := checksum.FormatCRC(t.CRC32)
	switch t.Format {
	case FormatCRC:
		return "[v-" + crc + "]"
	case FormatBare:
		return "[" + crc + "]"
	default:
		return "[v" + strconv.FormatInt(t.Size, 10) + crc + "]"
	}
}

// CRCHex renders the checksum as 8 uppercase hex digits.
func (t Tag) CRCHex() string {
	return checksum.FormatCRC(t.CRC32)
}

// Insert places " <tag>" immediately before the final extension of name.
func Insert(name string, t Tag) string {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	if base == "" {
		// dotfile such as ".cbz": no stem to split from
		return name + " " + t.String()
	}
	return base + " " + t.String() + ext
}

// decodeAs returns the right-most valid tag of format f in name.
func decodeAs(f Format, name string) (Tag, bool) {
	matches := patterns[f].FindAllStringSubmatch(name, -1)
	for i := len(matches) - 1; i >= 0; i-- {
		body := matches[i][1]
		if t, ok := parseBody(f, body); ok {
			return t, true
		}
	}
	return Tag{}, false
}

func parseBody(f Format, body string) (Tag, bool) {
	crcText := body
	var size int64
	if f == FormatSizeCRC {
		if len(body) <= 8 {
			return Tag{}, false
		}
		sizeText := body[:len(body)-8]
		crcText = body[len(body)-8:]
		if !isCanonicalDecimal(sizeText) {
			return Tag{}, false
		}
		v, err := strconv.ParseInt(sizeText, 10, 64)
		if err != nil {
			return Tag{}, false
		}
		size = v
	}
	crc, err := strconv.ParseUint(crcText, 16, 32)
	if err != nil || len(crcText) != 8 {
		return Tag{}, false
	}
	return Tag{Format: f, CRC32: uint32(crc), Size: size}, true
}

// isCanonicalDecimal accepts digits without leading zeros ("0" itself is fine).
func isCanonicalDecimal(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s == "0" || s[0] != '0'
}

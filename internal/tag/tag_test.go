package tag_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"mangashelf/internal/checksum"
	"mangashelf/internal/tag"
)

func TestEncodeCanonicalForms(t *testing.T) {
	sum := checksum.Sum{CRC32: 0xDEADBEEF, Size: 10}
	tests := []struct {
		format tag.Format
		want   string
	}{
		{tag.FormatSizeCRC, "[v10DEADBEEF]"},
		{tag.FormatCRC, "[v-DEADBEEF]"},
		{tag.FormatBare, "[DEADBEEF]"},
	}
	for _, tc := range tests {
		got := tag.NewCodec(tc.format, true).Encode(sum).String()
		if got != tc.want {
			t.Fatalf("%s: got %q want %q", tc.format, got, tc.want)
		}
	}
}

func TestInsertBeforeFinalExtension(t *testing.T) {
	tg := tag.New(tag.FormatSizeCRC, checksum.Sum{CRC32: 0xDEADBEEF, Size: 10})
	tests := map[string]string{
		"a.cbz":                 "a [v10DEADBEEF].cbz",
		"Title v01.tar.cbz":     "Title v01.tar [v10DEADBEEF].cbz",
		"Series (2019) c001.7z": "Series (2019) c001 [v10DEADBEEF].7z",
		"noext":                 "noext [v10DEADBEEF]",
	}
	for in, want := range tests {
		if got := tag.Insert(in, tg); got != want {
			t.Fatalf("Insert(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRoundTripLaw(t *testing.T) {
	sums := []checksum.Sum{
		{CRC32: 0, Size: 0},
		{CRC32: 0x12345678, Size: 10},
		{CRC32: 0xFFFFFFFF, Size: 1<<40 + 3},
		{CRC32: 0x0000BEEF, Size: 999},
	}
	for _, format := range tag.Formats {
		codec := tag.NewCodec(format, false)
		for _, sum := range sums {
			encoded := codec.Encode(sum)
			name := tag.Insert("Some Title v01.cbz", encoded)
			decoded, ok := codec.Decode(name)
			if !ok {
				t.Fatalf("%s: decode(%q) failed", format, name)
			}
			if decoded.String() != encoded.String() {
				t.Fatalf("%s: re-encode %q != %q", format, decoded.String(), encoded.String())
			}
			if decoded.CRC32 != sum.CRC32 {
				t.Fatalf("%s: crc %08X != %08X", format, decoded.CRC32, sum.CRC32)
			}
			if format.HasSize() && decoded.Size != sum.Size {
				t.Fatalf("%s: size %d != %d", format, decoded.Size, sum.Size)
			}
		}
	}
}

func TestDecodeSizeDigitsThatLookLikeHex(t *testing.T) {
	codec := tag.NewCodec(tag.FormatSizeCRC, false)
	got, ok := codec.Decode("x [v1012345678].cbz")
	if !ok {
		t.Fatal("expected decode")
	}
	want := tag.Tag{Format: tag.FormatSizeCRC, CRC32: 0x12345678, Size: 10}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("decoded tag mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeRejectsNonCanonical(t *testing.T) {
	codec := tag.NewCodec(tag.FormatSizeCRC, true)
	names := []string{
		"a.cbz",
		"a [v10deadbeef].cbz",
		"a [v010DEADBEEF].cbz",
		"a [vDEADBEEF].cbz",
		"a [v-DEADBEEG].cbz",
		"a [DEADBEE].cbz",
		"a [v].cbz",
	}
	for _, name := range names {
		if tg, ok := codec.Decode(name); ok {
			t.Fatalf("Decode(%q) = %v, want absent", name, tg)
		}
	}
}

func TestDecodeNineDigitBodyIsOneDigitSize(t *testing.T) {
	codec := tag.NewCodec(tag.FormatSizeCRC, false)
	tg, ok := codec.Decode("a [v10DEADBEE].cbz")
	if !ok || tg.Size != 1 || tg.CRC32 != 0x0DEADBEE {
		t.Fatalf("unexpected decode %+v ok=%v", tg, ok)
	}
}

func TestDecodeLegacyOrder(t *testing.T) {
	strict := tag.NewCodec(tag.FormatSizeCRC, false)
	if _, ok := strict.Decode("a [v-DEADBEEF].cbz"); ok {
		t.Fatal("strict codec accepted legacy tag")
	}

	lenient := tag.NewCodec(tag.FormatSizeCRC, true)
	tg, ok := lenient.Decode("a [v-DEADBEEF].cbz")
	if !ok || tg.Format != tag.FormatCRC {
		t.Fatalf("expected crc-format legacy decode, got %+v ok=%v", tg, ok)
	}
	tg, ok = lenient.Decode("a [CAFEBABE].cbz")
	if !ok || tg.Format != tag.FormatBare || tg.String() != "[CAFEBABE]" {
		t.Fatalf("expected bare legacy decode, got %+v ok=%v", tg, ok)
	}

	// The canonical format wins when several are present.
	tg, ok = lenient.Decode("a [CAFEBABE] [v3DEADBEEF].cbz")
	if !ok || tg.Format != tag.FormatSizeCRC {
		t.Fatalf("expected canonical format first, got %+v", tg)
	}
}

func TestDecodeIgnoresDirectories(t *testing.T) {
	codec := tag.NewCodec(tag.FormatSizeCRC, true)
	if _, ok := codec.Decode("/lib/Series [v10DEADBEEF]/a.cbz"); ok {
		t.Fatal("tag in directory name must not count")
	}
}

func TestInspectClassifies(t *testing.T) {
	codec := tag.NewCodec(tag.FormatSizeCRC, true)
	tests := []struct {
		name  string
		state tag.State
		raw   string
	}{
		{"a.cbz", tag.Absent, ""},
		{"Series [v].cbz", tag.Absent, ""},
		{"Series v02.cbz", tag.Absent, ""},
		{"a [v10DEADBEEF].cbz", tag.Valid, "[v10DEADBEEF]"},
		{"a [v10deadbeef].cbz", tag.Malformed, "[v10deadbeef]"},
		{"a [v010DEADBEEF].cbz", tag.Malformed, "[v010DEADBEEF]"},
		{"a [v-DEADBEEZ].cbz", tag.Malformed, "[v-DEADBEEZ]"},
		{"a [deadbeef].cbz", tag.Malformed, "[deadbeef]"},
	}
	for _, tc := range tests {
		got := codec.Inspect(tc.name)
		if got.State != tc.state || got.Raw != tc.raw {
			t.Fatalf("Inspect(%q) = %v %q, want %v %q", tc.name, got.State, got.Raw, tc.state, tc.raw)
		}
	}

	strict := tag.NewCodec(tag.FormatSizeCRC, false)
	if got := strict.Inspect("a [deadbeef].cbz"); got.State != tag.Absent {
		t.Fatalf("bare shapes are not tags when bare is not accepted, got %v", got.State)
	}
}

func TestStripRemovesAllTagShapes(t *testing.T) {
	tests := map[string]string{
		"Title v01 [v10DEADBEEF].cbz": "Title v01.cbz",
		"Title c001 [v-DEADBEEF].cbz": "Title c001.cbz",
		"Title [CAFEBABE] (2020).cbz": "Title (2020).cbz",
		"Title v02.cbz":               "Title v02.cbz",
	}
	for in, want := range tests {
		if got := tag.Strip(in); got != want {
			t.Fatalf("Strip(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := tag.ParseFormat(" Size_CRC "); err != nil || f != tag.FormatSizeCRC {
		t.Fatalf("ParseFormat = %v, %v", f, err)
	}
	if _, err := tag.ParseFormat("md5"); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

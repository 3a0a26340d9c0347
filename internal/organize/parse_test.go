package organize

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseName(t *testing.T) {
	tests := []struct {
		name string
		want Tokens
	}{
		{
			name: "Berserk v01 (2019) (Digital) (Group).cbz",
			want: Tokens{Title: "Berserk", Volume: 1, HasVolume: true, Year: 2019, HasYear: true, Contributor: "Group"},
		},
		{
			name: "One Piece c045 (2003) (Digital) (Viz).cbz",
			want: Tokens{Title: "One Piece", Chapter: 45, HasChapter: true, Year: 2003, HasYear: true, Contributor: "Viz"},
		},
		{
			name: "Dragon Ball 001.cbz",
			want: Tokens{Title: "Dragon Ball", Chapter: 1, HasChapter: true},
		},
		{
			name: "Monster v12 [v1048576DEADBEEF].cbz",
			want: Tokens{Title: "Monster", Volume: 12, HasVolume: true},
		},
		{
			name: "Akira {Kodansha} v02 (2001) (Digital).cbr",
			want: Tokens{Title: "Akira", Volume: 2, HasVolume: true, Year: 2001, HasYear: true},
		},
		{
			name: "Pluto 3 - Extra Story.cbz",
			want: Tokens{Title: "Pluto"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, ParseName(tt.name)); diff != "" {
				t.Fatalf("ParseName mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFolderKeyIgnoresSuffixAndDetails(t *testing.T) {
	want := titleKey("Berserk")
	for _, dir := range []string{"Berserk", "berserk [v]", "Berserk v01-03 (2019-2021) (Digital) (Group)"} {
		if got := folderKey(dir, "[v]"); got != want {
			t.Fatalf("folderKey(%q) = %q, want %q", dir, got, want)
		}
	}
}

func TestFolderNameSchemes(t *testing.T) {
	g := newGroup(titleKey("Berserk"), "Berserk")
	g.Add("/lib/Berserk v03 (2021) (Digital) (Group B).cbz", ParseName("Berserk v03 (2021) (Digital) (Group B).cbz"), true)
	g.Add("/lib/Berserk v01 (2019) (Digital) (Group A).cbz", ParseName("Berserk v01 (2019) (Digital) (Group A).cbz"), false)

	if got := FolderName(g, "title", "[v]"); got != "Berserk" {
		t.Fatalf("title scheme = %q", got)
	}
	want := "Berserk v01-03 (2019-2021) (Digital) (Group A, Group B)"
	if got := FolderName(g, "detailed", "[v]"); got != want {
		t.Fatalf("detailed scheme = %q, want %q", got, want)
	}
}

func TestFolderNameAddsSuffixWhenAllTagged(t *testing.T) {
	g := newGroup(titleKey("Monster"), "Monster")
	g.Add("/lib/Monster v01.cbz", ParseName("Monster v01.cbz"), true)
	g.Add("/lib/Monster v02.cbz", ParseName("Monster v02.cbz"), true)

	if got := FolderName(g, "title", "[v]"); got != "Monster [v]" {
		t.Fatalf("FolderName = %q", got)
	}
	if got := FolderName(g, "detailed", "[v]"); got != "Monster v01-02 (Digital) [v]" {
		t.Fatalf("detailed FolderName = %q", got)
	}
}

func TestGroupMergeCombinesRecords(t *testing.T) {
	a := newGroup("berserk", "Berserk")
	a.Add("/lib/a.cbz", Tokens{Title: "Berserk", Volume: 1, HasVolume: true, Year: 2019, HasYear: true}, true)
	b := newGroup("berserk", "berserk")
	b.Add("/lib/b.cbz", Tokens{Title: "berserk", Volume: 4, HasVolume: true, Contributor: "Group"}, false)

	a.Merge(b)
	if a.Title != "Berserk" {
		t.Fatalf("merge changed title to %q", a.Title)
	}
	if diff := cmp.Diff([]int{1, 4}, a.Volumes()); diff != "" {
		t.Fatalf("volumes (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Group"}, a.Contributors()); diff != "" {
		t.Fatalf("contributors (-want +got):\n%s", diff)
	}
	if a.AllTagged() {
		t.Fatal("merged group with an untagged file reported all tagged")
	}
}

package tags

import "testing"

func TestNewTagEncodesAndBuildsURL(t *testing.T) {
	s := NewService("/tags", nil)
	tag := s.NewTag("Go Tips")
	if tag.EncodedName != "go-tips" {
		t.Errorf("EncodedName = %q, want %q", tag.EncodedName, "go-tips")
	}
	if tag.NavigateURL != "/tags/go-tips" {
		t.Errorf("NavigateURL = %q, want %q", tag.NavigateURL, "/tags/go-tips")
	}
}

func TestEncodeIsIdempotent(t *testing.T) {
	s := NewService("/tags", nil)
	once := s.Encode("Go Tips")
	twice := s.Encode(once)
	if once != twice {
		t.Errorf("Encode not idempotent: %q != %q", once, twice)
	}
}

func TestExtractFromFrontMatterDropsBlank(t *testing.T) {
	s := NewService("/tags", nil)
	got := s.ExtractFromFrontMatter([]string{"Go", "  ", "", "Testing"})
	if len(got) != 2 {
		t.Fatalf("len(got) = %d, want 2", len(got))
	}
	if got[0].DisplayName != "Go" || got[1].DisplayName != "Testing" {
		t.Errorf("got = %+v", got)
	}
}

func TestUniqueTagsAcrossDeduplicates(t *testing.T) {
	s := NewService("/tags", nil)
	lists := [][]Tag{
		{s.NewTag("Go"), s.NewTag("Testing")},
		{s.NewTag("go"), s.NewTag("CI")},
	}
	got := UniqueTagsAcross(lists)
	if len(got) != 3 {
		t.Fatalf("len(got) = %d, want 3: %+v", len(got), got)
	}
	if got[0].DisplayName != "Go" {
		t.Errorf("first tag DisplayName = %q, want %q (first-seen wins)", got[0].DisplayName, "Go")
	}
}

func TestPostsByTagFiltersByEncodedName(t *testing.T) {
	s := NewService("/tags", nil)
	type post struct {
		Name string
		Tags []Tag
	}
	posts := []post{
		{Name: "a", Tags: []Tag{s.NewTag("Go")}},
		{Name: "b", Tags: []Tag{s.NewTag("Rust")}},
		{Name: "c", Tags: []Tag{s.NewTag("go")}},
	}
	got := PostsByTag(posts, "go", func(p post) []Tag { return p.Tags })
	if len(got) != 2 || got[0].Name != "a" || got[1].Name != "c" {
		t.Errorf("got = %+v", got)
	}
}

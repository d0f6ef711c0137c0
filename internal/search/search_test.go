package search

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSearchEmptyQuery(t *testing.T) {
	if got := Search("", []Candidate{{Index: 0, Path: "/a"}}, nil); got != nil {
		t.Errorf("empty query = %v, want nil", got)
	}
}

func TestSearchPathAndCaption(t *testing.T) {
	cands := []Candidate{
		{Index: 10, Path: "/pics/IMG_0001.jpg"},
		{Index: 11, Path: "/pics/IMG_0002.jpg"},
		{Index: 12, Path: "/pics/beach.jpg"},
		{Index: 13, Path: "/pics/beach-photos", IsDir: true},
	}
	captions := map[string]string{
		"/pics/IMG_0002.jpg": "a dog running on the beach",
	}

	got := Search("beach", cands, captions)
	if len(got) != 3 {
		t.Fatalf("got %d matches, want 3: %+v", len(got), got)
	}
	if got[0].Index != 13 || !got[0].IsDir {
		t.Errorf("directory should sort first, got %+v", got[0])
	}
	seen := map[int]bool{}
	for _, m := range got {
		seen[m.Index] = true
	}
	if !seen[11] {
		t.Error("caption match missing")
	}
	if seen[10] {
		t.Error("unrelated image matched")
	}
	for i := 2; i < len(got); i++ {
		if got[i-1].Score < got[i].Score && !got[i-1].IsDir {
			t.Errorf("results not ordered by score: %+v", got)
		}
	}
}

func TestSearchTakesBestScore(t *testing.T) {
	cands := []Candidate{{Index: 0, Path: "/x/dog.png"}}
	only := Search("dog", cands, nil)
	both := Search("dog", cands, map[string]string{"/x/dog.png": "zzz d o g zzz"})
	if len(only) != 1 || len(both) != 1 {
		t.Fatalf("matches = %v / %v", only, both)
	}
	if both[0].Score < only[0].Score {
		t.Errorf("a weaker caption match lowered the score: %d < %d", both[0].Score, only[0].Score)
	}
}

func TestReadCaptionsSkipsHeader(t *testing.T) {
	in := "file,text\n/a/1.png,\"red, round\"\n/b/2.png,blue\n"
	rows, err := ReadCaptions(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadCaptions: %v", err)
	}
	if len(rows) != 2 || rows[0].Path != "/a/1.png" || rows[0].Caption != "red, round" {
		t.Errorf("rows = %+v", rows)
	}
}

func TestWriteCaptionsRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	want := []CaptionRow{{Path: "/a/1.png", Caption: "one"}, {Path: "/a/2.png", Caption: "two, too"}}
	if err := WriteCaptions(&buf, want); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "path,caption\n") {
		t.Errorf("missing header: %q", buf.String())
	}
	got, err := ReadCaptions(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[1] != want[1] {
		t.Errorf("got %+v", got)
	}
}

func TestCSVSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "captions.csv")
	data := "path,caption\n/a/1.png,one\n/b/2.png,two\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	src := CSVSource{Path: path}
	all, err := src.Captions(context.Background(), nil)
	if err != nil || len(all) != 2 {
		t.Fatalf("Captions(nil) = %v, %v", all, err)
	}
	some, err := src.Captions(context.Background(), []string{"/a/"})
	if err != nil || len(some) != 1 || some["/a/1.png"] != "one" {
		t.Fatalf("Captions(/a) = %v, %v", some, err)
	}

	missing, err := CSVSource{Path: filepath.Join(dir, "nope.csv")}.Captions(context.Background(), nil)
	if err != nil || len(missing) != 0 {
		t.Errorf("missing file = %v, %v", missing, err)
	}
}

type mapSource map[string]string

func (m mapSource) Captions(context.Context, []string) (map[string]string, error) {
	return m, nil
}

type failingSource struct{}

func (failingSource) Captions(context.Context, []string) (map[string]string, error) {
	return nil, os.ErrPermission
}

func TestSources(t *testing.T) {
	src := Sources{
		mapSource{"/a.png": "old", "/b.png": "bee"},
		failingSource{},
		mapSource{"/a.png": "new"},
	}
	got, err := src.Captions(context.Background(), nil)
	if err == nil {
		t.Error("expected the failing source's error")
	}
	if got["/a.png"] != "new" || got["/b.png"] != "bee" {
		t.Errorf("captions = %v", got)
	}
}

package cache

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

// ---------------------------------------------------------------------------
// New
// ---------------------------------------------------------------------------

func TestNew_ExplicitDir(t *testing.T) {
	dir := t.TempDir()
	c, err := New(dir)
	if err != nil {
		t.Fatalf("New(%q) error: %v", dir, err)
	}
	if c.Dir() != dir {
		t.Errorf("Dir() = %q, want %q", c.Dir(), dir)
	}
}

func TestNew_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "subdir", "cache")
	_, err := New(dir)
	if err != nil {
		t.Fatalf("New(%q) error: %v", dir, err)
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		t.Errorf("directory %q was not created", dir)
	}
}

func TestNew_DefaultDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	c, err := New("")
	if err != nil {
		t.Fatalf("New(\"\") error: %v", err)
	}
	want := filepath.Join(home, ".cache", "jadwal-shalat")
	if c.Dir() != want {
		t.Errorf("Dir() = %q, want %q", c.Dir(), want)
	}
}

// ---------------------------------------------------------------------------
// FileCache Get / Put
// ---------------------------------------------------------------------------

func TestFileCache_Miss(t *testing.T) {
	c, _ := New(t.TempDir())

	_, err := c.Get("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}
}

func TestFileCache_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	c, _ := New(dir)

	doc := []byte(`{"a":1}`)
	if err := c.Put("doc", doc); err != nil {
		t.Fatalf("Put error: %v", err)
	}

	got, err := c.Get("doc")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if string(got) != string(doc) {
		t.Errorf("Get = %s, want %s", got, doc)
	}

	if _, err := os.Stat(filepath.Join(dir, "doc.json")); err != nil {
		t.Errorf("expected doc.json on disk: %v", err)
	}
}

func TestFileCache_PutOverwrites(t *testing.T) {
	c, _ := New(t.TempDir())

	_ = c.Put("doc", []byte(`"old"`))
	_ = c.Put("doc", []byte(`"new"`))

	got, _ := c.Get("doc")
	if string(got) != `"new"` {
		t.Errorf("Get = %s, want \"new\"", got)
	}
}

func TestFileCache_PutFailure(t *testing.T) {
	dir := t.TempDir()
	c, _ := New(dir)

	// Remove the directory out from under the cache.
	if err := os.RemoveAll(dir); err != nil {
		t.Fatal(err)
	}
	if err := c.Put("doc", []byte(`{}`)); err == nil {
		t.Error("expected error writing into a removed directory")
	}
}

// ---------------------------------------------------------------------------
// Keys
// ---------------------------------------------------------------------------

func TestMonthKey(t *testing.T) {
	tests := []struct {
		name     string
		province string
		regency  string
		year     int
		month    int
		want     string
	}{
		{"lower-cased", "DKI JAKARTA", "KOTA JAKARTA SELATAN", 2024, 3, "dki jakarta-kota jakarta selatan-2024-03"},
		{"two digit month", "ACEH", "KAB. ACEH BESAR", 2023, 11, "aceh-kab. aceh besar-2023-11"},
		{"path separator", "JAWA/TIMUR", "KOTA\\MALANG", 2024, 1, "jawa_timur-kota_malang-2024-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MonthKey(tt.province, tt.regency, tt.year, tt.month)
			if got != tt.want {
				t.Errorf("MonthKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMonthKey_Deterministic(t *testing.T) {
	a := MonthKey("Jawa Barat", "Kota Bandung", 2024, 3)
	b := MonthKey("JAWA BARAT", "KOTA BANDUNG", 2024, 3)
	if a != b {
		t.Errorf("keys differ by input casing: %q vs %q", a, b)
	}
}

// ---------------------------------------------------------------------------
// PutJSON
// ---------------------------------------------------------------------------

func TestPutJSON_FileRoundTrip(t *testing.T) {
	c, _ := New(t.TempDir())

	in := map[string]any{
		"2024-03-15": map[string]any{"tanggal": "Jumat, 15/03/2024", "subuh": "04:40"},
		"2024-03-16": nil,
	}
	if err := PutJSON(c, "month", in); err != nil {
		t.Fatalf("PutJSON error: %v", err)
	}

	data, err := c.Get("month")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("stored document is not JSON: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Errorf("round trip mismatch:\n got %#v\nwant %#v", out, in)
	}
}

func TestPutJSON_Indented(t *testing.T) {
	m := NewMemory()
	_ = PutJSON(m, "doc", map[string]string{"a": "b"})

	got, _ := m.Get("doc")
	want := "{\n  \"a\": \"b\"\n}"
	if string(got) != want {
		t.Errorf("PutJSON wrote %q, want %q", got, want)
	}
}

func TestPutJSON_Unmarshalable(t *testing.T) {
	m := NewMemory()
	if err := PutJSON(m, "bad", make(chan int)); err == nil {
		t.Fatal("expected marshal error")
	}
	if m.Len() != 0 {
		t.Error("nothing should be stored when marshalling fails")
	}
}

// ---------------------------------------------------------------------------
// Memory
// ---------------------------------------------------------------------------

func TestMemory_CountsCalls(t *testing.T) {
	m := NewMemory()
	_, _ = m.Get("a")
	_ = m.Put("a", []byte("1"))
	_, _ = m.Get("a")

	if m.Gets != 2 || m.Puts != 1 {
		t.Errorf("Gets=%d Puts=%d, want 2 and 1", m.Gets, m.Puts)
	}
	if m.Len() != 1 {
		t.Errorf("Len() = %d, want 1", m.Len())
	}
}

func TestMemory_PutErr(t *testing.T) {
	m := NewMemory()
	m.PutErr = errors.New("disk full")

	if err := m.Put("a", []byte("1")); err == nil {
		t.Fatal("expected PutErr")
	}
	if m.Puts != 1 {
		t.Errorf("Puts = %d, want 1", m.Puts)
	}
	if _, err := m.Get("a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("failed put must not store the document, got %v", err)
	}
}

func TestMemory_ReturnsCopies(t *testing.T) {
	m := NewMemory()
	doc := []byte("abc")
	_ = m.Put("k", doc)
	doc[0] = 'x'

	got, _ := m.Get("k")
	if string(got) != "abc" {
		t.Errorf("stored document mutated through caller slice: %q", got)
	}
}

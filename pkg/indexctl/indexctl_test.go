package indexctl

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileIsNonFatal(t *testing.T) {
	dir := t.TempDir()
	ctl, err := Load(dir, 3)
	if err != nil {
		t.Fatalf("expected a missing definitions file to be non-fatal, got %v", err)
	}
	if len(ctl.Definitions()) != 0 {
		t.Errorf("expected no definitions, got %+v", ctl.Definitions())
	}
}

func TestLoadParsesIndexDefinitions(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "INDEXES"), 0o755); err != nil {
		t.Fatal(err)
	}
	xml := `<indexes>
  <index name="byTitle" kind="name" path="/book/title"/>
  <index name="byPrice" kind="cas" path="/book/price"/>
</indexes>`
	if err := os.WriteFile(filepath.Join(dir, "INDEXES", "3.xml"), []byte(xml), 0o644); err != nil {
		t.Fatal(err)
	}

	ctl, err := Load(dir, 3)
	if err != nil {
		t.Fatal(err)
	}
	defs := ctl.Definitions()
	if len(defs) != 2 {
		t.Fatalf("len(defs) = %d, want 2", len(defs))
	}
	if defs[0].Name != "byTitle" || defs[0].Kind != "name" || defs[0].Path != "/book/title" {
		t.Errorf("defs[0] = %+v", defs[0])
	}
	if defs[1].Name != "byPrice" || defs[1].Kind != "cas" {
		t.Errorf("defs[1] = %+v", defs[1])
	}
}

func TestLoadMalformedFileFails(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "INDEXES"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "INDEXES", "3.xml"), []byte("<indexes><unterminated"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir, 3); err == nil {
		t.Fatal("expected a malformed definitions file to fail")
	}
}

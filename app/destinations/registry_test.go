package destinations

import (
	"os"
	"path/filepath"
	"testing"
)

func writePages(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pages.yml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRegistry_LoadValid(t *testing.T) {
	path := writePages(t, `
- page_id: "111"
  access_token: "token-1"
  page_name: "Page One"
- page_id: "222"
  access_token: "token-2"
  page_name: "Page Two"
`)

	pages, err := NewRegistry(path).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(pages) != 2 {
		t.Fatalf("Expected 2 destinations, got %d", len(pages))
	}
	if pages[0].ID != "111" || pages[0].Name != "Page One" {
		t.Errorf("First destination not loaded correctly: %+v", pages[0])
	}
	// Configuration order must be preserved
	if pages[1].ID != "222" {
		t.Errorf("Expected second destination '222', got %q", pages[1].ID)
	}
}

func TestRegistry_LoadMissingFile(t *testing.T) {
	_, err := NewRegistry(filepath.Join(t.TempDir(), "nope.yml")).Load()
	if err == nil {
		t.Fatal("Expected error for missing config file")
	}
}

func TestRegistry_LoadNotAList(t *testing.T) {
	path := writePages(t, `
page_id: "111"
access_token: "token"
page_name: "Page"
`)

	if _, err := NewRegistry(path).Load(); err == nil {
		t.Fatal("Expected error for non-list config")
	}
}

func TestRegistry_LoadMissingField(t *testing.T) {
	path := writePages(t, `
- page_id: "111"
  access_token: "token-1"
  page_name: "Page One"
- page_id: "222"
  page_name: "Page Two"
`)

	if _, err := NewRegistry(path).Load(); err == nil {
		t.Fatal("Expected error when an entry lacks access_token")
	}
}

func TestRegistry_LoadDuplicateID(t *testing.T) {
	path := writePages(t, `
- page_id: "111"
  access_token: "token-1"
  page_name: "Page One"
- page_id: "111"
  access_token: "token-2"
  page_name: "Page Two"
`)

	if _, err := NewRegistry(path).Load(); err == nil {
		t.Fatal("Expected error for duplicate page_id")
	}
}

func TestRegistry_LoadEmptyList(t *testing.T) {
	path := writePages(t, `[]`)

	if _, err := NewRegistry(path).Load(); err == nil {
		t.Fatal("Expected error for empty destination list")
	}
}

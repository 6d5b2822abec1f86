package docroot

import (
	"os"
	"path/filepath"
	"testing"

	httperrors "github.com/nczempin/httpd-go-uring/errors"
)

func writeFile(t *testing.T, name, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	if err := os.WriteFile(name, []byte(contents), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
}

func TestDir_Resolve(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "index.html"), "<h1>home</h1>")
	writeFile(t, filepath.Join(root, "deep", "index.html"), "<h1>deep</h1>")

	dir := NewDir()

	res := dir.Resolve(filepath.Join(root, "index.html"))
	if res.Kind != RegularFile {
		t.Fatalf("Expected regular file, got %v (%v)", res.Kind, res.Err)
	}
	if string(res.Contents) != "<h1>home</h1>" {
		t.Errorf("Expected file contents, got %q", res.Contents)
	}

	if res := dir.Resolve(filepath.Join(root, "deep")); res.Kind != Directory {
		t.Errorf("Expected directory, got %v", res.Kind)
	}

	if res := dir.Resolve(filepath.Join(root, "missing.html")); res.Kind != NotFound {
		t.Errorf("Expected not found, got %v", res.Kind)
	}
}

func TestDir_Resolve_NotADirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "index.html"), "x")

	res := NewDir().Resolve(filepath.Join(root, "index.html", "child"))
	if res.Kind != Error {
		t.Fatalf("Expected error, got %v", res.Kind)
	}

	httpErr, ok := res.Err.(*httperrors.HttpError)
	if !ok {
		t.Fatalf("Expected *httperrors.HttpError, got %T", res.Err)
	}
	if httpErr.ResourceErr != httperrors.ResourceErrorUnreadable {
		t.Errorf("Expected ResourceErrorUnreadable, got %v", httpErr.ResourceErr)
	}
}

func TestDir_Resolve_DoesNotGuardTraversal(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "secret.html"), "s")
	if err := os.Mkdir(filepath.Join(root, "www"), 0o755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}

	res := NewDir().Resolve(filepath.Join(root, "www") + "/../secret.html")
	if res.Kind != RegularFile {
		t.Errorf("Expected traversal to resolve, got %v", res.Kind)
	}
}

func TestKind_String(t *testing.T) {
	tests := map[Kind]string{
		RegularFile: "regular file",
		Directory:   "directory",
		NotFound:    "not found",
		Error:       "error",
		Kind(42):    "unknown",
	}
	for kind, want := range tests {
		if got := kind.String(); got != want {
			t.Errorf("Expected %q, got %q", want, got)
		}
	}
}

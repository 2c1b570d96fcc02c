package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type recorder struct{ msg string }

func (r *recorder) Fatalf(format string, args ...any) { r.msg = fmt.Sprintf(format, args...) }

func writeGo(t *testing.T, dir, name, src string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(src), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestPredicates(t *testing.T) {
	cases := []struct {
		pred func(string) bool
		in   string
		want bool
	}{
		{InternalImportForbidden, "hcsgrid/internal/grid", true},
		{InternalImportForbidden, "hcsgrid/pkg/coords", false},
		{InfraImportForbidden, "hcsgrid/internal/infra/blob/fs", true},
		{InfraImportForbidden, "hcsgrid/internal/blob", false},
		{ThirdPartyImport, "go.uber.org/zap", true},
		{ThirdPartyImport, "github.com/spf13/cobra", true},
		{ThirdPartyImport, "hcsgrid/internal/grid", false},
		{ThirdPartyImport, "encoding/json", false},
		{AnyOf(InternalImportForbidden, ThirdPartyImport), "golang.org/x/sync/errgroup", true},
		{AnyOf(), "fmt", false},
	}
	for _, c := range cases {
		if got := c.pred(c.in); got != c.want {
			t.Fatalf("predicate(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestDirectImportViolations(t *testing.T) {
	dir := t.TempDir()
	writeGo(t, dir, "a.go", "package tmp\nimport (\n\t\"fmt\"\n\t\"forbidden/pkg\"\n)\nvar _ = fmt.Sprint\n")
	writeGo(t, dir, "a_test.go", "package tmp\nimport \"forbidden/other\"\n")
	writeGo(t, dir, "notes.txt", "import \"forbidden/pkg\"")
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeGo(t, filepath.Join(dir, "sub"), "b.go", "package sub\nimport \"forbidden/pkg\"\n")

	viols, err := directImportViolations(dir, func(p string) bool { return strings.HasPrefix(p, "forbidden/") })
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(viols) != 1 || viols[0] != "forbidden/pkg (in a.go)" {
		t.Fatalf("violations = %v", viols)
	}

	r := &recorder{}
	failIf(r, "forbidden direct imports", "test", viols)
	if !strings.Contains(r.msg, "forbidden/pkg (in a.go)") {
		t.Fatalf("message = %q", r.msg)
	}
}

func TestDirectImportViolations_ParseError(t *testing.T) {
	dir := t.TempDir()
	writeGo(t, dir, "bad.go", "package")
	if _, err := directImportViolations(dir, func(string) bool { return false }); err == nil {
		t.Fatalf("expected parse error")
	}
	if _, err := directImportViolations(filepath.Join(dir, "missing"), func(string) bool { return false }); err == nil {
		t.Fatalf("expected read error")
	}
}

func TestAssertNoTransitiveDependency_UsesGoList(t *testing.T) {
	prev := goListDeps
	defer func() { goListDeps = prev }()
	goListDeps = func(pattern string) ([]byte, error) {
		if pattern != "./pkg" {
			t.Fatalf("pattern = %q", pattern)
		}
		return []byte("fmt\nhcsgrid/pkg/coords\n\n"), nil
	}
	AssertNoTransitiveDependency(t, "./pkg", ThirdPartyImport, "stdlib only")
	if got := matching("fmt\ngo.uber.org/zap\n", ThirdPartyImport); len(got) != 1 || got[0] != "go.uber.org/zap" {
		t.Fatalf("matching = %v", got)
	}
}

func TestFailIfQuietWithoutViolations(t *testing.T) {
	r := &recorder{}
	failIf(r, "x", "y", nil)
	if r.msg != "" {
		t.Fatalf("unexpected failure %q", r.msg)
	}
	AssertNoDirectImports(t, t.TempDir(), func(string) bool { return true }, "empty dir")
}

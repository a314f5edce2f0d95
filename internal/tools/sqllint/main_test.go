package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeGo(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestSessionQueriesCarryMarkers(t *testing.T) {
	violations, err := lintPaths([]string{filepath.Join("..", "..", "sqlinline")})
	if err != nil {
		t.Fatalf("lintPaths returned error: %v", err)
	}
	for _, v := range violations {
		t.Errorf("violation: %s", v)
	}
}

func TestLintFlagsMissingMarker(t *testing.T) {
	dir := t.TempDir()
	writeGo(t, dir, "q.go", "package q\n\nconst QBad = `SELECT 1`\n")

	violations, err := lintPaths([]string{dir})
	if err != nil {
		t.Fatalf("lintPaths returned error: %v", err)
	}
	if len(violations) != 1 || violations[0].name != "QBad" || violations[0].line != 3 {
		t.Fatalf("violations = %+v, want QBad at line 3", violations)
	}
}

func TestLintFlagsDuplicateMarker(t *testing.T) {
	dir := t.TempDir()
	src := "package q\n\nconst (\n" +
		"\tQOne = `--sql 0b9d7f4e-2c1a-4f7e-9d3b-5a6c7e8f9a01\nSELECT 1`\n" +
		"\tQTwo = `--sql 0b9d7f4e-2c1a-4f7e-9d3b-5a6c7e8f9a01\nSELECT 2`\n" +
		")\n"
	writeGo(t, dir, "q.go", src)

	violations, err := lintPaths([]string{dir})
	if err != nil {
		t.Fatalf("lintPaths returned error: %v", err)
	}
	if len(violations) != 1 || violations[0].name != "QTwo" {
		t.Fatalf("violations = %+v, want duplicate on QTwo", violations)
	}
	if !strings.Contains(violations[0].message, "QOne") {
		t.Fatalf("message = %q, want reference to QOne", violations[0].message)
	}
}

func TestLintIgnoresPlainStrings(t *testing.T) {
	dir := t.TempDir()
	writeGo(t, dir, "q.go", "package q\n\nconst greeting = \"hello there\"\n")

	violations, err := lintPaths([]string{dir})
	if err != nil {
		t.Fatalf("lintPaths returned error: %v", err)
	}
	if len(violations) != 0 {
		t.Fatalf("violations = %+v, want none", violations)
	}
}

package acceptance_test

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// runBidscheck executes the bidscheck binary in dir and returns stdout,
// stderr, and exit code.
func runBidscheck(t *testing.T, dir string, args ...string) (string, string, int) {
	t.Helper()
	cmd := exec.Command(bidscheckBinary, args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			t.Fatalf("failed to run bidscheck: %v", err)
		}
	}
	return stdout.String(), stderr.String(), exitCode
}

// newDataset creates a dataset in a temp dir. Keys ending in "/" become
// empty directories; other keys are files with the mapped content.
func newDataset(t *testing.T, tree map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range tree {
		p := filepath.Join(root, filepath.FromSlash(name))
		if strings.HasSuffix(name, "/") {
			if err := os.MkdirAll(p, 0o755); err != nil {
				t.Fatalf("MkdirAll: %v", err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("MkdirAll: %v", err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}
	return root
}

// reportJSON runs bidscheck --json and parses the report document.
func reportJSON(t *testing.T, dir string, args ...string) (map[string]interface{}, int) {
	t.Helper()
	stdout, stderr, code := runBidscheck(t, dir, append([]string{"--json"}, args...)...)
	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(stdout), &doc); err != nil {
		t.Fatalf("failed to parse report JSON: %v\nstdout: %s\nstderr: %s", err, stdout, stderr)
	}
	return doc, code
}

// findings extracts the findings array of a report document.
func findings(t *testing.T, doc map[string]interface{}) []map[string]interface{} {
	t.Helper()
	raw, ok := doc["findings"].([]interface{})
	if !ok {
		t.Fatalf("missing findings in report: %v", doc)
	}
	out := make([]map[string]interface{}, 0, len(raw))
	for _, f := range raw {
		out = append(out, f.(map[string]interface{}))
	}
	return out
}

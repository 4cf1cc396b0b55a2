package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/eykd/bidscheck/internal/domain"
)

func TestWriteTextfile(t *testing.T) {
	tests := []struct {
		name   string
		report domain.Report
		want   []string
	}{
		{
			name:   "passed run",
			report: domain.Aggregate(nil, nil),
			want: []string{
				`bidscheck_passed 1`,
				`bidscheck_findings{category="missing"} 0`,
				`bidscheck_findings{category="unexpected"} 0`,
				`bidscheck_findings{category="invalid_json"} 0`,
				`bidscheck_json_documents_validated 4`,
				`bidscheck_run_duration_seconds 1.5`,
			},
		},
		{
			name: "failed run",
			report: domain.Aggregate(
				[]domain.Finding{
					domain.Missing("sub-01", "no session directories (ses-*) found in 'sub-01'"),
					domain.Unexpected("notes.txt", "unexpected file 'notes.txt' found in the root directory"),
					domain.Unexpected("tmp", "non-subject directory 'tmp' found in the root directory"),
				},
				[]domain.Finding{domain.InvalidJSON("participants.json", "participants.json: invalid JSON")},
			),
			want: []string{
				`bidscheck_passed 0`,
				`bidscheck_findings{category="missing"} 1`,
				`bidscheck_findings{category="unexpected"} 2`,
				`bidscheck_findings{category="invalid_json"} 1`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bidscheck.prom")

			err := WriteTextfile(path, Run{
				Report:             tt.report,
				Duration:           1500 * time.Millisecond,
				DocumentsValidated: 4,
			})
			if err != nil {
				t.Fatalf("WriteTextfile() error = %v", err)
			}

			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("ReadFile: %v", err)
			}
			for _, line := range tt.want {
				if !strings.Contains(string(data), line+"\n") {
					t.Errorf("textfile missing %q:\n%s", line, data)
				}
			}
		})
	}
}

func TestWriteTextfile_UnwritableDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "bidscheck.prom")

	if err := WriteTextfile(path, Run{Report: domain.Aggregate(nil, nil)}); err == nil {
		t.Error("WriteTextfile() error = nil, want error for missing directory")
	}
}

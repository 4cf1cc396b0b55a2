package validate

import (
	"context"
	"errors"
	"fmt"
	iofs "io/fs"
	"strings"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"

	"github.com/eykd/bidscheck/internal/domain"
	datasetfs "github.com/eykd/bidscheck/internal/fs"
	"github.com/eykd/bidscheck/internal/jsondoc"
)

// newDataset builds an in-memory dataset. Keys ending in "/" are created as
// empty directories; all other keys are files holding the mapped content.
func newDataset(t *testing.T, tree map[string]string) *datasetfs.Dataset {
	t.Helper()
	mem := memfs.New()
	for name, content := range tree {
		if strings.HasSuffix(name, "/") {
			if err := mem.MkdirAll(strings.TrimSuffix(name, "/"), 0o755); err != nil {
				t.Fatalf("MkdirAll(%s): %v", name, err)
			}
			continue
		}
		if err := util.WriteFile(mem, name, []byte(content), 0o644); err != nil {
			t.Fatalf("WriteFile(%s): %v", name, err)
		}
	}
	return datasetfs.New(mem, "")
}

// wellFormed returns the first concrete passing dataset.
func wellFormed() map[string]string {
	return map[string]string{
		"dataset_description.json":                 `{"Name": "demo", "BIDSVersion": "1.8.0"}`,
		"CITATION.cff":                             "cff-version: 1.2.0\n",
		"CHANGES":                                  "1.0.0\n",
		"LICENSE":                                  "CC0\n",
		"sub-01/ses-01/anat/sub-01_ses-01_T1w.nii": "",
	}
}

// recordingReader wraps a DatasetReader, recording reads and injecting
// failures for selected paths.
type recordingReader struct {
	DatasetReader
	listErr map[string]error
	readErr map[string]error
	reads   []string
}

func (r *recordingReader) ListEntries(ctx context.Context, dir string) ([]domain.Entry, error) {
	if err, ok := r.listErr[dir]; ok {
		return nil, err
	}
	return r.DatasetReader.ListEntries(ctx, dir)
}

func (r *recordingReader) ReadFile(ctx context.Context, name string) ([]byte, error) {
	r.reads = append(r.reads, name)
	if err, ok := r.readErr[name]; ok {
		return nil, err
	}
	return r.DatasetReader.ReadFile(ctx, name)
}

// fakeRegistry binds the two root documents and any file ending in
// _events.json. Validate returns the violations configured per schema id.
type fakeRegistry struct {
	violations  map[string][]string
	validateErr error
	validated   []string
}

func (f *fakeRegistry) Len() int { return 3 }

func (f *fakeRegistry) Resolve(filename string, atRoot bool) (string, bool) {
	lower := strings.ToLower(filename)
	switch {
	case atRoot && lower == "dataset_description.json":
		return "dataset_description", true
	case atRoot && lower == "participants.json":
		return "participants", true
	case strings.HasSuffix(lower, "_events.json"):
		return "task_events", true
	}
	return "", false
}

func (f *fakeRegistry) Validate(id string, doc any) ([]string, error) {
	f.validated = append(f.validated, id)
	if f.validateErr != nil {
		return nil, f.validateErr
	}
	return f.violations[id], nil
}

type fakeLoader struct {
	registry SchemaRegistry
	err      error
}

func (f *fakeLoader) Load(context.Context) (SchemaRegistry, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.registry, nil
}

type recordingLogger struct {
	nopLogger
	warnings []string
}

func (l *recordingLogger) Warnw(msg string, _ ...any) {
	l.warnings = append(l.warnings, msg)
}

func run(t *testing.T, reader DatasetReader, opts ...Option) *Result {
	t.Helper()
	result, err := NewService(reader, opts...).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return result
}

func messages(findings []domain.Finding) []string {
	out := make([]string, len(findings))
	for i, f := range findings {
		out[i] = fmt.Sprintf("%s|%s|%s", f.Category, f.Path, f.Message)
	}
	return out
}

func assertFindings(t *testing.T, got []domain.Finding, want []string) {
	t.Helper()
	gotMsgs := messages(got)
	if len(gotMsgs) != len(want) {
		t.Fatalf("findings = %q, want %q", gotMsgs, want)
	}
	for i := range want {
		if gotMsgs[i] != want[i] {
			t.Errorf("findings[%d] = %q, want %q", i, gotMsgs[i], want[i])
		}
	}
}

func TestService_Run_WellFormedDatasetPasses(t *testing.T) {
	result := run(t, newDataset(t, wellFormed()))

	if !result.Report.Passed() {
		t.Errorf("Passed() = false, findings = %q", messages(result.Report.Findings()))
	}
	if result.Report.Len() != 0 {
		t.Errorf("Len() = %d, want 0", result.Report.Len())
	}
	if result.SchemasLoaded != 0 || result.DocumentsValidated != 0 {
		t.Errorf("SchemasLoaded, DocumentsValidated = %d, %d, want 0, 0",
			result.SchemasLoaded, result.DocumentsValidated)
	}
}

func TestService_Run_SubjectWithoutSession(t *testing.T) {
	result := run(t, newDataset(t, map[string]string{
		"dataset_description.json": `{}`,
		"sub-01/":                  "",
	}))

	if result.Report.Passed() {
		t.Fatal("Passed() = true, want false")
	}
	assertFindings(t, result.Report.Findings(), []string{
		"missing|sub-01|no session directories (ses-*) found in 'sub-01'",
	})
}

func TestService_Run_ManyWellFormedSubjectsPass(t *testing.T) {
	for _, n := range []int{1, 2, 5, 20} {
		t.Run(fmt.Sprintf("subjects=%d", n), func(t *testing.T) {
			tree := map[string]string{"dataset_description.json": `{}`}
			for i := 1; i <= n; i++ {
				sub := fmt.Sprintf("sub-%02d", i)
				ses := fmt.Sprintf("ses-%d", i%3+1)
				mod := []string{"anat", "func", "dwi"}[i%3]
				tree[fmt.Sprintf("%s/%s/%s/%s_%s_run-1_bold.nii", sub, ses, mod, sub, ses)] = ""
			}

			result := run(t, newDataset(t, tree))

			if !result.Report.Passed() {
				t.Errorf("Passed() = false, findings = %q", messages(result.Report.Findings()))
			}
		})
	}
}

func TestService_Run_RootListingFailure(t *testing.T) {
	reader := &recordingReader{
		DatasetReader: newDataset(t, wellFormed()),
		listErr:       map[string]error{".": iofs.ErrNotExist},
	}

	result, err := NewService(reader).Run(context.Background())

	if result != nil {
		t.Errorf("Run() result = %+v, want nil", result)
	}
	var envErr *EnvironmentError
	if !errors.As(err, &envErr) {
		t.Fatalf("Run() error = %v, want *EnvironmentError", err)
	}
	if !errors.Is(err, iofs.ErrNotExist) {
		t.Errorf("Run() error = %v, want wrapping fs.ErrNotExist", err)
	}
}

func TestService_Run_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewService(newDataset(t, wellFormed())).Run(ctx)

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}

func TestService_Run_SchemaSourceMissingWarnsAndContinues(t *testing.T) {
	tree := wellFormed()
	tree["dataset_description.json"] = `{"Name": `
	logger := &recordingLogger{}

	result := run(t, newDataset(t, tree),
		WithSchemaLoader(&fakeLoader{err: fmt.Errorf("opening bundle: %w", iofs.ErrNotExist)}),
		WithParser(jsondoc.Parser{}),
		WithLogger(logger),
	)

	if !result.Report.Passed() {
		t.Errorf("Passed() = false, findings = %q", messages(result.Report.Findings()))
	}
	if len(logger.warnings) != 1 {
		t.Errorf("warnings = %q, want one", logger.warnings)
	}
}

func TestService_Run_SchemaLoadFailureIsFatal(t *testing.T) {
	boom := errors.New("bundle does not compile")

	_, err := NewService(newDataset(t, wellFormed()),
		WithSchemaLoader(&fakeLoader{err: boom}),
		WithParser(jsondoc.Parser{}),
	).Run(context.Background())

	if !errors.Is(err, boom) {
		t.Errorf("Run() error = %v, want %v", err, boom)
	}
}

func TestService_Run_RegistryWithoutParser(t *testing.T) {
	_, err := NewService(newDataset(t, wellFormed()),
		WithSchemaLoader(&fakeLoader{registry: &fakeRegistry{}}),
	).Run(context.Background())

	if !errors.Is(err, ErrNoParser) {
		t.Errorf("Run() error = %v, want ErrNoParser", err)
	}
}

func TestService_Run_StructuralBeforeContent(t *testing.T) {
	tree := wellFormed()
	tree["dataset_description.json"] = `{"Name": `
	tree["notes.txt"] = ""

	result := run(t, newDataset(t, tree),
		WithSchemaLoader(&fakeLoader{registry: &fakeRegistry{}}),
		WithParser(jsondoc.Parser{}),
	)

	assertFindings(t, result.Report.Findings(), []string{
		"unexpected|notes.txt|unexpected file 'notes.txt' found in the root directory",
		"invalid_json|dataset_description.json|dataset_description.json: invalid JSON",
	})
	if result.SchemasLoaded != 3 {
		t.Errorf("SchemasLoaded = %d, want 3", result.SchemasLoaded)
	}
}

func TestService_Run_IsRepeatable(t *testing.T) {
	tree := wellFormed()
	tree["stray.txt"] = ""
	svc := NewService(newDataset(t, tree))

	for i := 0; i < 2; i++ {
		result, err := svc.Run(context.Background())
		if err != nil {
			t.Fatalf("Run() #%d error = %v", i, err)
		}
		if result.Report.Len() != 1 {
			t.Errorf("Run() #%d findings = %q, want one", i, messages(result.Report.Findings()))
		}
	}
}

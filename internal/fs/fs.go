// Package fs provides the filesystem adapter the validate service reads
// datasets through.
package fs

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"

	"github.com/eykd/bidscheck/internal/domain"
)

// Dataset implements validate.DatasetReader over a billy.Filesystem rooted
// at the dataset directory. Paths are slash-separated and relative to that
// root; "." names the root itself.
type Dataset struct {
	fs   billy.Filesystem
	root string
}

// New wraps an existing filesystem. label is used in error messages only.
func New(fs billy.Filesystem, label string) *Dataset {
	return &Dataset{fs: fs, root: label}
}

// NewOS returns a Dataset reading the directory at root on the local disk.
func NewOS(root string) *Dataset {
	return New(osfs.New(root), root)
}

// Root returns the label the dataset was opened with.
func (d *Dataset) Root() string {
	return d.root
}

// ListEntriesImpl lists the entries of dir sorted ascending by name.
// Symbolic links are reported by what they point to; dangling links are
// reported as files.
func (d *Dataset) ListEntriesImpl(_ context.Context, dir string) ([]domain.Entry, error) {
	infos, err := d.fs.ReadDir(filepath.FromSlash(dir))
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", d.display(dir), err)
	}

	entries := make([]domain.Entry, 0, len(infos))
	for _, fi := range infos {
		isDir := fi.IsDir()
		if fi.Mode()&os.ModeSymlink != 0 {
			if target, err := d.fs.Stat(filepath.FromSlash(path.Join(dir, fi.Name()))); err == nil {
				isDir = target.IsDir()
			}
		}
		entries = append(entries, domain.Entry{Name: fi.Name(), IsDir: isDir})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// ListEntries delegates to ListEntriesImpl.
func (d *Dataset) ListEntries(ctx context.Context, dir string) ([]domain.Entry, error) {
	return d.ListEntriesImpl(ctx, dir)
}

// ReadFileImpl reads the full content of a file under the dataset root.
func (d *Dataset) ReadFileImpl(_ context.Context, name string) ([]byte, error) {
	data, err := util.ReadFile(d.fs, filepath.FromSlash(name))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", d.display(name), err)
	}
	return data, nil
}

// ReadFile delegates to ReadFileImpl.
func (d *Dataset) ReadFile(ctx context.Context, name string) ([]byte, error) {
	return d.ReadFileImpl(ctx, name)
}

func (d *Dataset) display(name string) string {
	if d.root == "" {
		return name
	}
	return filepath.Join(d.root, filepath.FromSlash(name))
}

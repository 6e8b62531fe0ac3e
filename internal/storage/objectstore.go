package storage

import (
	"context"       // Cancellation of writes
	"errors"        // Error matching
	"fmt"           // Error wrapping
	"io"            // Readers
	"io/fs"         // fs.ErrNotExist
	"net/url"       // Escaping of object URLs
	"os"            // Files on disk
	"path"          // Slash-separated object paths
	"path/filepath" // OS paths under the root
	"strings"       // Path checks

	"eventflow/internal/domain" // Error kinds
)

// tempPrefix starts the name of every file Put is still writing
const tempPrefix = ".upload-"

// ObjectStore keeps uploaded files under slash-separated paths
type ObjectStore interface {
	// Put stores the content of r at p, replacing any existing object, and
	// returns the number of bytes written. Nothing is left at p on failure.
	Put(ctx context.Context, p string, r io.Reader) (int64, error)
	// Open returns the content stored at p
	Open(ctx context.Context, p string) (io.ReadCloser, error)
	// Delete removes the object at p; a missing object yields ErrNotFound
	Delete(ctx context.Context, p string) error
	// URL is where clients can retrieve the object at p
	URL(p string) string
}

// DiskStore is an ObjectStore on the local filesystem
type DiskStore struct {
	root    string
	baseURL string
}

var _ ObjectStore = (*DiskStore)(nil)

// NewDiskStore creates the root directory if needed. baseURL is the prefix
// objects are served under, for example "http://localhost:8080/files".
func NewDiskStore(root, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &DiskStore{root: root, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Root is the directory objects are kept in
func (d *DiskStore) Root() string {
	return d.root
}

// Put writes to a temporary file next to the target and renames it into place
func (d *DiskStore) Put(ctx context.Context, p string, r io.Reader) (int64, error) {
	target, err := d.resolve(p)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return 0, fmt.Errorf("create object dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(target), tempPrefix+"*")
	if err != nil {
		return 0, fmt.Errorf("create temp object: %w", err)
	}
	n, err := io.Copy(tmp, &contextReader{ctx: ctx, r: r})
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmp.Name())
		return n, fmt.Errorf("write object %s: %w", p, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		_ = os.Remove(tmp.Name())
		return n, fmt.Errorf("commit object %s: %w", p, err)
	}
	return n, nil
}

// Open opens the stored file
func (d *DiskStore) Open(_ context.Context, p string) (io.ReadCloser, error) {
	target, err := d.resolve(p)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(target)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.NotFoundf("object %s", p)
	}
	if err != nil {
		return nil, fmt.Errorf("open object %s: %w", p, err)
	}
	return f, nil
}

// Delete removes the stored file
func (d *DiskStore) Delete(_ context.Context, p string) error {
	target, err := d.resolve(p)
	if err != nil {
		return err
	}
	err = os.Remove(target)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.NotFoundf("object %s", p)
	}
	if err != nil {
		return fmt.Errorf("delete object %s: %w", p, err)
	}
	return nil
}

// URL joins the base URL and the escaped object path
func (d *DiskStore) URL(p string) string {
	segments := strings.Split(p, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return d.baseURL + "/" + strings.Join(segments, "/")
}

// resolve maps an object path to a file under root, refusing paths that escape
// it and the temporary files of uploads in progress
func (d *DiskStore) resolve(p string) (string, error) {
	if p == "" || strings.HasPrefix(p, "/") || path.Clean(p) != p || p == "." || strings.HasPrefix(p, "../") || p == ".." {
		return "", domain.Validationf("invalid object path %q", p)
	}
	if strings.HasPrefix(path.Base(p), tempPrefix) {
		return "", domain.Validationf("invalid object path %q", p)
	}
	return filepath.Join(d.root, filepath.FromSlash(p)), nil
}

// contextReader stops reading once ctx is done, including when ctx ends
// while a Read is blocked
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	n, err := c.r.Read(p)
	if ctxErr := c.ctx.Err(); ctxErr != nil {
		return n, ctxErr
	}
	return n, err
}

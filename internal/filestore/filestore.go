package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidPath is returned for references that do not resolve inside the store root.
var ErrInvalidPath = errors.New("invalid file reference")

// Upload is a binary supplied by a caller, e.g. a multipart form file.
type Upload struct {
	Filename string
	Body     io.Reader
}

// Store persists uploaded binaries and hands back relative references to them.
type Store interface {
	// Write stores the upload under a new unique name and returns its reference.
	Write(ctx context.Context, upload Upload) (string, error)
	// Delete removes the referenced file. Deleting an absent file is not an error.
	Delete(ctx context.Context, ref string) error
	Exists(ctx context.Context, ref string) (bool, error)
	// List returns the references of every stored file.
	List(ctx context.Context) ([]Entry, error)
}

// Entry describes a stored file.
type Entry struct {
	Ref  string
	Info fs.FileInfo
}

// Local stores files on a local or mounted filesystem under Root/Subdir.
type Local struct {
	Root   string
	Subdir string
}

// NewLocal creates the storage directory if needed.
func NewLocal(root, subdir string) (*Local, error) {
	l := &Local{Root: root, Subdir: subdir}
	if err := os.MkdirAll(filepath.Join(root, subdir), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir storage dir: %w", err)
	}
	return l, nil
}

func (l *Local) Write(ctx context.Context, upload Upload) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if upload.Body == nil {
		return "", fmt.Errorf("write file: empty upload")
	}

	dir := filepath.Join(l.Root, l.Subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir storage dir: %w", err)
	}

	name := uuid.NewString() + strings.ToLower(filepath.Ext(filepath.Base(upload.Filename)))
	full := filepath.Join(dir, name)

	// O_EXCL: a colliding name fails instead of replacing another room's photo.
	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(f, upload.Body); err != nil {
		f.Close()
		os.Remove(full)
		return "", fmt.Errorf("write file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(full)
		return "", fmt.Errorf("close file: %w", err)
	}

	return path.Join(filepath.ToSlash(l.Subdir), name), nil
}

func (l *Local) Delete(ctx context.Context, ref string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := l.resolve(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete file %s: %w", ref, err)
	}
	return nil
}

func (l *Local) Exists(ctx context.Context, ref string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	full, err := l.resolve(ref)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(full)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("stat file %s: %w", ref, err)
	}
}

func (l *Local) List(ctx context.Context) ([]Entry, error) {
	dir := filepath.Join(l.Root, l.Subdir)
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read storage dir: %w", err)
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if de.IsDir() {
			continue
		}
		info, err := de.Info()
		if err != nil {
			// Removed between ReadDir and Info.
			continue
		}
		entries = append(entries, Entry{
			Ref:  path.Join(filepath.ToSlash(l.Subdir), de.Name()),
			Info: info,
		})
	}
	return entries, nil
}

// resolve maps a reference to a filesystem path, rejecting anything outside Root.
func (l *Local) resolve(ref string) (string, error) {
	clean := path.Clean("/" + ref)
	if ref == "" || clean == "/" || strings.Contains(ref, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, ref)
	}
	return filepath.Join(l.Root, filepath.FromSlash(strings.TrimPrefix(clean, "/"))), nil
}

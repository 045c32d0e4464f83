// Package uploads keeps uploaded receipts on the local disk.
package uploads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrTooLarge        = errors.New("file exceeds upload limit")
	ErrUnsupportedType = errors.New("file type not accepted")
)

// allowedExt lists the receipt formats kept on disk. Anything else could
// be rendered by a browser when served back.
var allowedExt = map[string]bool{
	".pdf":  true,
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// Allowed reports whether a file called name may be stored.
func Allowed(name string) bool {
	return allowedExt[strings.ToLower(filepath.Ext(filepath.Base(name)))]
}

// File is a stored upload.
type File struct {
	OriginalName string
	Name         string
	URL          string
	MimeType     string
	Size         int64
}

// Local writes files under Dir and exposes them below URLPrefix.
type Local struct {
	Dir       string
	URLPrefix string
	MaxBytes  int64
}

func NewLocal(dir, urlPrefix string, maxBytes int64) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Local{Dir: dir, URLPrefix: strings.TrimRight(urlPrefix, "/"), MaxBytes: maxBytes}, nil
}

// Save copies r into a new file named by a random UUID that keeps the
// original extension. Extensions outside the receipt formats fail with
// ErrUnsupportedType.
func (l *Local) Save(ctx context.Context, originalName, mimeType string, r io.Reader) (*File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !Allowed(originalName) {
		return nil, ErrUnsupportedType
	}

	ext := strings.ToLower(filepath.Ext(filepath.Base(originalName)))
	name := uuid.NewString() + ext
	dst := filepath.Join(l.Dir, name)

	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", name, err)
	}

	src := r
	if l.MaxBytes > 0 {
		src = io.LimitReader(r, l.MaxBytes+1)
	}
	n, err := io.Copy(f, src)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && l.MaxBytes > 0 && n > l.MaxBytes {
		err = ErrTooLarge
	}
	if err != nil {
		os.Remove(dst)
		if errors.Is(err, ErrTooLarge) {
			return nil, err
		}
		return nil, fmt.Errorf("write %s: %w", name, err)
	}

	return &File{
		OriginalName: originalName,
		Name:         name,
		URL:          path.Join(l.URLPrefix, name),
		MimeType:     mimeType,
		Size:         n,
	}, nil
}

// Remove deletes a stored file. Missing files are not an error.
func (l *Local) Remove(name string) error {
	err := os.Remove(filepath.Join(l.Dir, filepath.Base(name)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

package media

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Local writes objects to a directory served under /uploads.
type Local struct {
	dir string
}

var _ Store = (*Local)(nil)

// NewLocal creates a Local store rooted at dir.
func NewLocal(dir string) *Local {
	return &Local{dir: dir}
}

func (l *Local) Put(_ context.Context, name, _ string, r io.Reader) (string, error) {
	// Ensure upload directory exists.
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: create upload dir: %v", ErrUpstream, err)
	}

	name = filepath.Base(name)
	dst, err := os.Create(filepath.Join(l.dir, name))
	if err != nil {
		return "", fmt.Errorf("%w: create file: %v", ErrUpstream, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		return "", fmt.Errorf("%w: write file: %v", ErrUpstream, err)
	}

	return "/uploads/" + name, nil
}

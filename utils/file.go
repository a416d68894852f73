package utils

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalSink writes objects below a directory on disk.
type LocalSink struct {
	Dir string
}

func NewLocalSink(dir string) (*LocalSink, error) {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}
	return &LocalSink{Dir: dir}, nil
}

// Put writes body to Dir/key and returns the file path. Keys may not escape Dir.
func (l *LocalSink) Put(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	destPath, err := l.path(key)
	if err != nil {
		return "", err
	}

	// ✅ Ensure the directory for the destination file exists
	if err := os.MkdirAll(filepath.Dir(destPath), os.ModePerm); err != nil {
		return "", err
	}

	tmp := destPath + ".tmp"
	if err := os.WriteFile(tmp, body, 0o644); err != nil {
		return "", err
	}
	if err := os.Rename(tmp, destPath); err != nil {
		os.Remove(tmp)
		return "", err
	}
	return destPath, nil
}

func (l *LocalSink) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return filepath.Join(l.Dir, clean), nil
}

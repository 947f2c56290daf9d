// Package archive unpacks zip files of label photos into a work directory.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/cordon/internal/common"
)

// DirLayout names each extraction directory after the time it started.
const DirLayout = "20060102_150405"

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// IsImage reports whether path has a supported image extension.
func IsImage(path string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(path))]
}

// Extractor unpacks archives under a work root.
type Extractor struct {
	now     func() time.Time
	workDir string
}

// NewExtractor creates an extractor writing under workDir.
func NewExtractor(workDir string) *Extractor {
	return &Extractor{workDir: workDir, now: time.Now}
}

// Extract unpacks zipPath into <workDir>/<timestamp>-<id> and returns the
// image files found, in walk order. Entries escaping the target directory
// are rejected. An archive without images is common.ErrEmptyArchive.
func (e *Extractor) Extract(zipPath string) ([]string, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", zipPath, err)
	}
	defer func() { _ = r.Close() }()

	name := e.now().Format(DirLayout) + "-" + uuid.NewString()[:8]
	dest := filepath.Join(e.workDir, name)
	if err := os.MkdirAll(dest, 0750); err != nil {
		return nil, fmt.Errorf("failed to create extraction directory: %w", err)
	}

	for _, f := range r.File {
		if err := extractFile(f, dest); err != nil {
			return nil, err
		}
	}

	var images []string
	err = filepath.WalkDir(dest, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.IsDir() && IsImage(path) {
			images = append(images, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list extracted files: %w", err)
	}

	if len(images) == 0 {
		return nil, fmt.Errorf("%w: %s", common.ErrEmptyArchive, zipPath)
	}
	return images, nil
}

func extractFile(f *zip.File, dest string) error {
	target, err := safeJoin(dest, f.Name)
	if err != nil {
		return err
	}

	if f.FileInfo().IsDir() {
		return os.MkdirAll(target, 0750)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0750); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", f.Name, err)
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", f.Name, err)
	}
	defer func() { _ = rc.Close() }()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0640)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", target, err)
	}
	if _, err := io.Copy(out, rc); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to extract %s: %w", f.Name, err)
	}
	return out.Close()
}

// safeJoin resolves name under dest, refusing absolute paths and "..".
func safeJoin(dest, name string) (string, error) {
	if filepath.IsAbs(name) || strings.HasPrefix(name, "/") {
		return "", fmt.Errorf("archive entry %q has an absolute path", name)
	}
	target := filepath.Join(dest, name)
	rel, err := filepath.Rel(dest, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("archive entry %q escapes the extraction directory", name)
	}
	return target, nil
}

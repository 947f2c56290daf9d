// Package ocr recognizes label text with the Tesseract command line tool.
package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/Veraticus/cordon/internal/common"
)

// Defaults match the labels printed by the courier.
const (
	DefaultBinary = "tesseract"
	DefaultLang   = "eng"
)

// Tesseract shells out to the tesseract binary, one process per attempt.
type Tesseract struct {
	logger *slog.Logger
	// Binary is the executable name or path.
	Binary string
	Lang   string
	// TempDir holds rotated copies; empty means os.TempDir.
	TempDir string
	// PSM is the page segmentation mode; 0 leaves tesseract's default.
	PSM int
}

// NewTesseract creates a recognizer, filling Binary and Lang defaults.
func NewTesseract(binary, lang string, psm int, logger *slog.Logger) *Tesseract {
	if binary == "" {
		binary = DefaultBinary
	}
	if lang == "" {
		lang = DefaultLang
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Tesseract{Binary: binary, Lang: lang, PSM: psm, logger: logger}
}

// Available reports whether the binary can be found.
func (t *Tesseract) Available() error {
	if _, err := exec.LookPath(t.Binary); err != nil {
		return fmt.Errorf("%s not available (install tesseract-ocr): %w", t.Binary, err)
	}
	return nil
}

// Recognize returns the text of imagePath after rotating it counter-clockwise
// by rotation degrees. A missing file wraps common.ErrSourceUnavailable.
func (t *Tesseract) Recognize(ctx context.Context, imagePath string, rotation int) (string, error) {
	info, err := os.Stat(imagePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", common.ErrSourceUnavailable, imagePath)
		}
		return "", fmt.Errorf("failed to stat %s: %w", imagePath, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %s is a directory", common.ErrSourceUnavailable, imagePath)
	}

	input := imagePath
	if rotation%360 != 0 {
		rotated, err := writeRotated(imagePath, t.TempDir, rotation)
		if err != nil {
			return "", err
		}
		defer func() { _ = os.Remove(rotated) }()
		input = rotated
	}

	cmd := exec.CommandContext(ctx, t.Binary, t.args(input)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("tesseract failed on %s: %w (output: %s)",
			imagePath, err, strings.TrimSpace(stderr.String()))
	}

	t.logger.Debug("Recognized image",
		"source", imagePath,
		"rotation", rotation,
		"chars", stdout.Len())

	return stdout.String(), nil
}

// args builds: <input> stdout -l <lang> [--psm N].
func (t *Tesseract) args(input string) []string {
	args := []string{input, "stdout", "-l", t.Lang}
	if t.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(t.PSM))
	}
	return args
}

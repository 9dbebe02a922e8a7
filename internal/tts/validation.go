package tts

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/language"
)

// ValidateText fails with a ValidationError when text has no visible content.
func ValidateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return ValidationError(ErrEmptyText)
	}
	return nil
}

// NormalizeSpeed returns DefaultSpeed for zero and rejects anything that is
// not a finite positive number.
func NormalizeSpeed(speed float64) (float64, error) {
	if speed == 0 {
		return DefaultSpeed, nil
	}
	if math.IsNaN(speed) || math.IsInf(speed, 0) || speed < 0 {
		return 0, ValidationError(fmt.Errorf("%w, got %v", ErrInvalidSpeed, speed))
	}
	return speed, nil
}

// NormalizeLanguage trims lang, falls back to DefaultLanguage and checks the
// code is a well-formed BCP 47 tag. The code itself is returned unchanged
// because providers expect the user's spelling ("zh-CN", not "zh-Hans-CN").
func NormalizeLanguage(lang string) (string, error) {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return DefaultLanguage, nil
	}
	if _, err := language.Parse(lang); err != nil {
		return "", ValidationError(fmt.Errorf("%w %q: %v", ErrInvalidLanguage, lang, err))
	}
	return lang, nil
}

// TempPath returns a fresh path in the system temp directory named
// tts_<8 hex chars><ext>. Existing files are never reused.
func TempPath(ext string) string {
	dir := os.TempDir()
	for {
		id := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
		p := filepath.Join(dir, "tts_"+id+ext)
		if _, err := os.Lstat(p); errors.Is(err, os.ErrNotExist) {
			return p
		}
	}
}

// CheckArtifact verifies that path refers to an existing, non-empty file.
func CheckArtifact(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("audio file missing: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("audio path %s is a directory", path)
	}
	if info.Size() == 0 {
		return fmt.Errorf("audio file %s is empty", path)
	}
	return nil
}

package utils

import (
	"crypto/rand"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var allowedImageExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// SaveUpload writes r under baseDir/subdir with a unique name and returns
// the slash-separated path relative to baseDir ("identity/xxx.jpg").
func SaveUpload(r io.Reader, baseDir, subdir, originalName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if !allowedImageExt[ext] {
		return "", fmt.Errorf("unsupported image type %q", ext)
	}

	dir := filepath.Join(baseDir, subdir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("mkdir uploads dir: %w", err)
	}

	randBytes := make([]byte, 6)
	if _, err := rand.Read(randBytes); err != nil {
		randBytes = []byte(fmt.Sprintf("%d", time.Now().UnixNano()))
	}
	name := fmt.Sprintf("%d_%x%s", time.Now().UnixNano(), randBytes, ext)
	fullpath := filepath.Join(dir, name)

	f, err := os.Create(fullpath)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}

	return filepath.ToSlash(filepath.Join(subdir, name)), nil
}

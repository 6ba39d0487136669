// Package screenshot identifies rendered page captures on disk by content hash.
package screenshot

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var supportedExtensions = map[string]struct{}{
	".avif": {},
	".gif":  {},
	".jpeg": {},
	".jpg":  {},
	".png":  {},
}

type Fingerprint struct {
	Path string
	Hash string
	Size int64
}

func IsSupported(path string) bool {
	_, ok := supportedExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Identify hashes the file at path with SHA-256.
func Identify(path string) (Fingerprint, error) {
	file, err := os.Open(path)
	if err != nil {
		return Fingerprint{}, fmt.Errorf("open screenshot: %w", err)
	}
	defer file.Close()

	hasher := sha256.New()
	size, err := io.Copy(hasher, file)
	if err != nil {
		return Fingerprint{}, fmt.Errorf("hash screenshot: %w", err)
	}

	return Fingerprint{
		Path: filepath.Clean(path),
		Hash: hex.EncodeToString(hasher.Sum(nil)),
		Size: size,
	}, nil
}

// PathForHash names a capture after its hash inside dir, keeping ext.
func PathForHash(dir string, hash string, ext string) string {
	extension := strings.ToLower(strings.TrimSpace(ext))
	if extension != "" && !strings.HasPrefix(extension, ".") {
		extension = "." + extension
	}
	return filepath.Join(dir, strings.ToLower(strings.TrimSpace(hash))+extension)
}

func HashFromPath(path string) string {
	return HashFromFilename(filepath.Base(path))
}

func HashFromFilename(filename string) string {
	name := strings.TrimSpace(filename)
	if name == "" {
		return ""
	}

	base := strings.TrimSuffix(name, filepath.Ext(name))
	if !IsValidHash(base) {
		return ""
	}

	return strings.ToLower(base)
}

func IsValidHash(value string) bool {
	if len(value) != sha256.Size*2 {
		return false
	}

	for _, char := range value {
		if (char < '0' || char > '9') && (char < 'a' || char > 'f') && (char < 'A' || char > 'F') {
			return false
		}
	}

	return true
}

// Archive copies the capture at path into dir under its hash name and
// returns the new location. An existing archive copy is reused.
func Archive(path string, dir string) (string, error) {
	fingerprint, err := Identify(path)
	if err != nil {
		return "", err
	}

	target := PathForHash(dir, fingerprint.Hash, filepath.Ext(path))
	if _, err := os.Stat(target); err == nil {
		return target, nil
	}

	source, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open screenshot: %w", err)
	}
	defer source.Close()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create screenshot dir: %w", err)
	}

	tmp := target + ".tmp"
	destination, err := os.Create(tmp)
	if err != nil {
		return "", fmt.Errorf("create archive copy: %w", err)
	}

	if _, err := io.Copy(destination, source); err != nil {
		destination.Close()
		os.Remove(tmp)
		return "", fmt.Errorf("copy screenshot: %w", err)
	}
	if err := destination.Close(); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("close archive copy: %w", err)
	}

	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("move archive copy: %w", err)
	}

	return target, nil
}

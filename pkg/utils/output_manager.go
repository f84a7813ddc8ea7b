package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// OutputManager exposes the files under a run's data directory to the API
// layer without letting callers escape the directory.
type OutputManager struct {
	BaseDir string
}

// OutputFileInfo describes one downloadable artifact.
type OutputFileInfo struct {
	Name     string    `json:"name"`
	RelPath  string    `json:"path"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

func NewOutputManager(baseDir string) *OutputManager {
	return &OutputManager{BaseDir: baseDir}
}

// ListFiles walks the data directory and returns every regular file,
// newest first.
func (om *OutputManager) ListFiles() ([]OutputFileInfo, error) {
	var files []OutputFileInfo
	err := filepath.Walk(om.BaseDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(om.BaseDir, path)
		if err != nil {
			return err
		}
		files = append(files, OutputFileInfo{
			Name:     info.Name(),
			RelPath:  rel,
			Size:     info.Size(),
			Modified: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list output files: %w", err)
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].Modified.After(files[j].Modified)
	})
	return files, nil
}

// ResolveFile maps a relative path from ListFiles back to an absolute path,
// rejecting anything that would resolve outside the base directory.
func (om *OutputManager) ResolveFile(relPath string) (string, error) {
	base, err := filepath.Abs(om.BaseDir)
	if err != nil {
		return "", err
	}
	full, err := filepath.Abs(filepath.Join(base, relPath))
	if err != nil {
		return "", err
	}
	if full != base && !strings.HasPrefix(full, base+string(os.PathSeparator)) {
		return "", fmt.Errorf("path %q escapes data directory", relPath)
	}
	info, err := os.Stat(full)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("%q is a directory", relPath)
	}
	return full, nil
}

// Package defstore abstracts where raw pipeline definition text comes from:
// the execution service for remote pipelines, or the local filesystem when
// rendering a definition that was never pushed anywhere.
package defstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vk/stagewatch/internal/fsutil"
)

// Store returns the raw textual definition of a pipeline.
type Store interface {
	Definition(ctx context.Context, pipelineID string) (string, error)
}

// FileStore serves definitions from disk. The pipeline id is either a path
// to a definition file or the bare name of one somewhere under the root.
type FileStore struct {
	root string
}

// NewFileStore creates a FileStore rooted at the given directory. An empty
// root means ids must be usable paths on their own.
func NewFileStore(root string) *FileStore {
	return &FileStore{root: root}
}

// Definition implements Store.
func (s *FileStore) Definition(_ context.Context, pipelineID string) (string, error) {
	path, err := s.resolve(pipelineID)
	if err != nil {
		return "", err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading definition %s: %w", path, err)
	}
	return string(content), nil
}

// resolve turns a pipeline id into a concrete file path. Direct paths win;
// otherwise the root is searched for a YAML file whose base name matches.
func (s *FileStore) resolve(pipelineID string) (string, error) {
	for _, candidate := range []string{pipelineID, filepath.Join(s.root, pipelineID)} {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	if s.root == "" {
		return "", fmt.Errorf("definition not found: %s", pipelineID)
	}

	files, err := fsutil.FindByExtensions(s.root, ".yml", ".yaml")
	if err != nil {
		return "", fmt.Errorf("searching definitions under %s: %w", s.root, err)
	}
	for _, path := range files {
		base := filepath.Base(path)
		name := strings.TrimSuffix(base, filepath.Ext(base))
		if strings.EqualFold(name, pipelineID) {
			return path, nil
		}
	}
	return "", fmt.Errorf("definition not found: %s", pipelineID)
}

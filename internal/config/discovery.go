// Copyright 2024 Ross Light
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//		 https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// vcsRootMarkers are directories that end the search in [Find].
var vcsRootMarkers = []string{".git", ".hg", ".svn"}

// Find searches upward from startDir for a [FileName] file.
// It returns the empty string if none is found
// before reaching a version control root or the filesystem root.
func Find(ctx context.Context, startDir string) (string, error) {
	if startDir == "" {
		var err error
		startDir, err = os.Getwd()
		if err != nil {
			return "", fmt.Errorf("find config: %w", err)
		}
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("find config: %w", err)
	}
	for {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("find config: %w", err)
		}
		path := filepath.Join(dir, FileName)
		if fileExists(path) {
			return path, nil
		}
		if isVCSRoot(dir) {
			return "", nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

func isVCSRoot(dir string) bool {
	for _, marker := range vcsRootMarkers {
		info, err := os.Stat(filepath.Join(dir, marker))
		if err == nil && info.IsDir() {
			return true
		}
	}
	return false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Resolve returns the configuration for a document.
// If explicitPath is not empty, that file is loaded.
// Otherwise, [Find] searches from the directory containing inputPath
// (or the working directory if inputPath is empty)
// and [Default] is returned if no file is found.
// The returned path is empty when the default configuration is used.
func Resolve(ctx context.Context, explicitPath, inputPath string) (cfg *Config, path string, err error) {
	if explicitPath != "" {
		cfg, err := Load(ctx, explicitPath)
		if err != nil {
			return nil, "", err
		}
		return cfg, explicitPath, nil
	}
	startDir := ""
	if inputPath != "" {
		startDir = filepath.Dir(inputPath)
	}
	path, err = Find(ctx, startDir)
	if err != nil {
		return nil, "", err
	}
	if path == "" {
		return Default(), "", nil
	}
	cfg, err = Load(ctx, path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

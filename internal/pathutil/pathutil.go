// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package pathutil converts between absolute filesystem paths and the
// root-relative, forward-slash form used to compare local paths against
// remote asset-store paths.
//
// The standardized form always starts with "/" and never ends with one,
// except for the sync root itself which standardizes to "/". Comparisons
// between standardized paths are case-insensitive because the remote store
// treats paths case-insensitively.
package pathutil

import (
	"path"
	"path/filepath"
	"strings"
)

// Standardize converts abs, an absolute path under root, to its root-relative
// standardized form: forward slashes, a single leading "/", no trailing "/".
// The root itself standardizes to "/". If abs does not live under root the
// path is returned relative to root as computed by filepath.Rel, which keeps
// the function total; callers that care should validate containment first.
func Standardize(root, abs string) string {
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		rel = abs
	}
	rel = filepath.ToSlash(rel)
	if rel == "." {
		return "/"
	}
	return "/" + strings.TrimSuffix(strings.TrimPrefix(rel, "/"), "/")
}

// Absolute converts a standardized path back to an absolute filesystem path
// under root, using the platform separator.
func Absolute(root, standardized string) string {
	trimmed := strings.TrimPrefix(standardized, "/")
	if trimmed == "" {
		return filepath.Clean(root)
	}
	return filepath.Join(root, filepath.FromSlash(trimmed))
}

// Join concatenates standardized path segments into a single standardized
// path, collapsing duplicate slashes.
func Join(segments ...string) string {
	joined := path.Join(segments...)
	if joined == "" || joined == "." {
		return "/"
	}
	if !strings.HasPrefix(joined, "/") {
		joined = "/" + joined
	}
	return joined
}

// Parent returns the standardized parent of a standardized path. The parent
// of "/" is "/".
func Parent(standardized string) string {
	dir := path.Dir(standardized)
	if dir == "." || dir == "" {
		return "/"
	}
	return dir
}

// Base returns the final segment of a standardized path, or "" for the root.
func Base(standardized string) string {
	if standardized == "/" || standardized == "" {
		return ""
	}
	return path.Base(standardized)
}

// Equal reports whether two standardized paths refer to the same location.
// The comparison is case-insensitive.
func Equal(a, b string) bool {
	return strings.EqualFold(a, b)
}

// Package utils provides generic utility functions for the tici application.
package utils

import (
	"path/filepath"
	"strings"
)

// Filter returns a new slice containing only elements that match the predicate.
func Filter[T any](slice []T, predicate func(T) bool) []T {
	result := make([]T, 0, len(slice))
	for _, item := range slice {
		if predicate(item) {
			result = append(result, item)
		}
	}
	return result
}

// Map transforms a slice of one type to a slice of another type.
func Map[T, U any](slice []T, transform func(T) U) []U {
	result := make([]U, len(slice))
	for i, item := range slice {
		result[i] = transform(item)
	}
	return result
}

// TildePathWithHome replaces the home directory portion of a path with ~.
// Paths outside home, and an empty home, leave the path unchanged.
func TildePathWithHome(path, home string) string {
	if path == "" || home == "" {
		return path
	}

	cleanPath := filepath.Clean(path)
	cleanHome := filepath.Clean(home)

	if strings.HasPrefix(cleanPath, cleanHome) {
		if len(cleanPath) == len(cleanHome) {
			return "~"
		}
		if cleanPath[len(cleanHome)] == filepath.Separator {
			return "~" + cleanPath[len(cleanHome):]
		}
	}

	return path
}

package store

import (
	"fmt"
	"path"
	"strings"
)

// Split returns the collection and data object name of an object path
func Split(objectPath string) (string, string, error) {
	cleaned := path.Clean(objectPath)
	if !strings.HasPrefix(cleaned, "/") || cleaned == "/" {
		return "", "", fmt.Errorf("invalid object path: %q", objectPath)
	}
	parent, name := path.Split(cleaned)
	if parent == "/" {
		return "", "", fmt.Errorf("invalid object path: %q, object has to be in a collection", objectPath)
	}
	return strings.TrimSuffix(parent, "/"), name, nil
}

// Parents returns all ancestors of a collection path, root first, path included
func Parents(collection string) []string {
	cleaned := path.Clean(collection)
	var result []string
	for current := cleaned; current != "/" && current != "."; current = path.Dir(current) {
		result = append([]string{current}, result...)
	}
	return result
}

package storage

import (
	"fmt"
	"path"
	"regexp"
	"strings"
)

var objectNamePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9 ._-]{0,127}$`)

// BuildObjectKey joins an optional folder and an object name into a bucket
// key. The folder is trimmed of surrounding slashes; the object name must be
// a plain file name, not a path.
func BuildObjectKey(folder, object string) (string, error) {
	object = strings.TrimSpace(object)
	if !objectNamePattern.MatchString(object) {
		return "", fmt.Errorf("invalid object name: %q", object)
	}
	folder = strings.Trim(strings.TrimSpace(folder), "/")
	if folder == "" {
		return object, nil
	}
	cleaned := path.Clean(folder)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") || strings.Contains(cleaned, "/../") {
		return "", fmt.Errorf("invalid folder: %q", folder)
	}
	return path.Join(cleaned, object), nil
}

package filesystem

import "strings"

// ResolvePath accepts either a plain path or a file:// URI and returns the path.
func ResolvePath(uri string) string {
	if path, ok := strings.CutPrefix(uri, "file://"); ok {
		return path
	}
	return uri
}

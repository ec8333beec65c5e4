package helpers

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Characters that are invalid in filenames on Windows; stripping them keeps
// output portable across filesystems.
const sanRegexStr = `[\/:*?"><|\x00-\x1F]`

var sanRegex = regexp.MustCompile(sanRegexStr)

// Sanitise cleans a video title for use as a filename.
func Sanitise(filename string) string {
	san := sanRegex.ReplaceAllString(filename, "_")
	san = strings.Trim(san, " .")
	if san == "" {
		return "video"
	}
	return san
}

// MakeDirs creates directories recursively.
func MakeDirs(path string) error {
	return os.MkdirAll(path, 0755)
}

// FileExists checks if a file (not directory) exists at the given path.
func FileExists(path string) (bool, error) {
	f, err := os.Stat(path)
	if err == nil {
		return !f.IsDir(), nil
	} else if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// NextAvailablePath returns path, or the first "name (N).ext" variant that
// does not exist yet.
func NextAvailablePath(path string) (string, error) {
	if exists, err := FileExists(path); err != nil {
		return "", err
	} else if !exists {
		return path, nil
	}
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)
	for i := 1; i < 10000; i++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s (%d)%s", name, i, ext))
		exists, err := FileExists(candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("unable to find available filename for %s", path)
}

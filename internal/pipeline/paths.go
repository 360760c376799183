package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PathError reports an unusable input or output path.
// Path errors are detected before the output file is touched.
type PathError struct {
	Role   string // "input" or "output"
	Path   string
	Reason string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("%s path %s: %s", e.Role, e.Path, e.Reason)
}

// IsPathError reports whether err is or wraps a *PathError.
func IsPathError(err error) bool {
	var pe *PathError
	return errors.As(err, &pe)
}

// ValidatePaths checks that input is an existing .json file and that output
// is a .json path in an existing directory, distinct from input.
func ValidatePaths(input, output string) error {
	if !hasJSONExt(input) {
		return &PathError{Role: "input", Path: input, Reason: "must have .json extension"}
	}
	info, err := os.Stat(input)
	if errors.Is(err, os.ErrNotExist) {
		return &PathError{Role: "input", Path: input, Reason: "does not exist"}
	}
	if err != nil {
		return &PathError{Role: "input", Path: input, Reason: err.Error()}
	}
	if !info.Mode().IsRegular() {
		return &PathError{Role: "input", Path: input, Reason: "is not a regular file"}
	}

	if !hasJSONExt(output) {
		return &PathError{Role: "output", Path: output, Reason: "must have .json extension"}
	}
	dir := filepath.Dir(output)
	dirInfo, err := os.Stat(dir)
	if err != nil || !dirInfo.IsDir() {
		return &PathError{Role: "output", Path: output, Reason: fmt.Sprintf("directory %s does not exist", dir)}
	}
	if outInfo, err := os.Stat(output); err == nil {
		if outInfo.IsDir() {
			return &PathError{Role: "output", Path: output, Reason: "is a directory"}
		}
		if os.SameFile(info, outInfo) {
			return &PathError{Role: "output", Path: output, Reason: "is the same file as the input"}
		}
	}

	return nil
}

func hasJSONExt(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// Package utils holds small filesystem helpers shared by the command-line
// front ends.
package utils

import (
	"os"
	"path/filepath"
)

// ReadInputFile loads a source file, reporting the absolute path in error
// text so a relative argument run from a different working directory still
// produces a diagnosable message.
func ReadInputFile(relPath string) (contents []byte, fullPath string, err error) {
	fullPath, err = filepath.Abs(relPath)
	if err != nil {
		return nil, "", err
	}

	contents, err = os.ReadFile(fullPath)
	if err != nil {
		return nil, fullPath, err
	}
	return contents, fullPath, nil
}

package scaffold

import (
	"fmt"
	"os"
	"path/filepath"
)

// CheckExisting returns an error if dir already holds a whirlpool project.
func CheckExisting(dir string) error {
	var existingFiles []string
	for _, path := range Created {
		if _, err := os.Stat(filepath.Join(dir, path)); err == nil {
			existingFiles = append(existingFiles, path)
		}
	}

	if len(existingFiles) == 0 {
		return nil
	}

	errMsg := "project already initialized\n\nFound existing"
	if len(existingFiles) == 1 {
		errMsg += fmt.Sprintf(": %s", existingFiles[0])
	} else {
		errMsg += " files:\n"
		for _, file := range existingFiles {
			errMsg += fmt.Sprintf("  - %s\n", file)
		}
	}
	errMsg += "\nUse 'whirlpool init --force' to overwrite them"

	return fmt.Errorf("%s", errMsg)
}

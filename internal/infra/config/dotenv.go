package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
)

// LoadDotEnv reads KEY=VALUE files into the process environment before Parse
// runs. Variables that are already set win over file contents. Missing files
// are skipped; with no arguments ".env" in the working directory is tried.
func LoadDotEnv(filenames ...string) ([]string, error) {
	if len(filenames) == 0 {
		filenames = []string{".env"}
	}

	loaded := make([]string, 0, len(filenames))

	for _, filename := range filenames {
		if err := godotenv.Load(filename); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}

			return loaded, fmt.Errorf("load %s: %w", filename, err)
		}

		loaded = append(loaded, filename)
	}

	return loaded, nil
}

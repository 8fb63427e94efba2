// Package config loads process environment from an optional .env file.
package config

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// LoadEnv reads .env (or the files named in ENV_FILES, comma separated) into
// the environment without overriding variables that are already set.
func LoadEnv() {
	files := []string{".env"}
	if v := os.Getenv("ENV_FILES"); v != "" {
		files = files[:0]
		for _, f := range strings.Split(v, ",") {
			if f = strings.TrimSpace(f); f != "" {
				files = append(files, f)
			}
		}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.Printf("config: load %s: %v", f, err)
		}
	}
}

package main

import (
	"fmt"
	"os"
)

// loadImage reads the file at path, wrapping any I/O error with the flag
// name that named it; these surface once at startup and exit, rather
// than being modelled as guest-visible faults.
func loadImage(flagName, path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("iquecore: reading %s (%s): %w", flagName, path, err)
	}
	return data, nil
}

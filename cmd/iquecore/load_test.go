package main

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadImageMissingFileWrapsError(t *testing.T) {
	_, err := loadImage("bootrom", "/nonexistent/path/does-not-exist.bin")
	require.Error(t, err)
	require.Contains(t, err.Error(), "bootrom")
}

func TestLoadImageReadsContents(t *testing.T) {
	path := t.TempDir() + "/image.bin"
	want := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	require.NoError(t, os.WriteFile(path, want, 0o644))

	got, err := loadImage("nand", path)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

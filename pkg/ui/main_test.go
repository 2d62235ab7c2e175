package ui

import (
	"os"
	"testing"
)

func TestMain(m *testing.M) {
	// Prevent any test from accidentally opening a browser
	os.Setenv("PENSUM_NO_BROWSER", "1")
	os.Setenv("PENSUM_METRICS", "0")

	os.Exit(m.Run())
}

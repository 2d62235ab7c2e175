package main_test

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
)

var pensumBinaryPath string
var pensumBinaryDir string

func TestMain(m *testing.M) {
	// Prevent any test from accidentally opening a browser
	os.Setenv("PENSUM_NO_BROWSER", "1")
	os.Setenv("PENSUM_METRICS", "0")

	// Build the binary once for all tests
	if err := buildPensumOnce(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build pensum binary: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()
	if pensumBinaryDir != "" {
		_ = os.RemoveAll(pensumBinaryDir)
	}
	os.Exit(code)
}

func buildPensumOnce() error {
	tempDir, err := os.MkdirTemp("", "pensum-e2e-build-*")
	if err != nil {
		return err
	}
	pensumBinaryDir = tempDir

	binName := "pensum"
	if runtime.GOOS == "windows" {
		binName += ".exe"
	}
	binPath := filepath.Join(tempDir, binName)

	cmd := exec.Command("go", "build", "-o", binPath, "../../cmd/pensum")
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("go build failed: %v\n%s", err, out)
	}
	pensumBinaryPath = binPath
	return nil
}

const mathCurriculum = `{
  "career": {"name": "Engineering", "totalSemesters": 3},
  "subjects": {
    "Math1": {"name": "Mathematics I", "semester": 1},
    "Physics1": {"name": "Physics I", "semester": 1},
    "Math2": {"name": "Mathematics II", "semester": 2, "prerequisites": ["Math1"]},
    "Math3": {"name": "Mathematics III", "semester": 3, "prerequisites": ["Math2"]}
  }
}`

// workDir creates a temp dir holding curriculum.json with the given body and
// isolated XDG directories.
func workDir(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "curriculum.json"), []byte(body), 0o644); err != nil {
		t.Fatalf("write curriculum: %v", err)
	}
	return dir
}

func pensumCmd(dir string, args ...string) *exec.Cmd {
	cmd := exec.Command(pensumBinaryPath, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"XDG_CONFIG_HOME="+filepath.Join(dir, ".config"),
		"XDG_STATE_HOME="+filepath.Join(dir, ".state"),
		"PENSUM_FILE=",
	)
	return cmd
}

// runPensum runs the binary in dir and returns stdout, stderr and the exit
// error.
func runPensum(t *testing.T, dir string, args ...string) (string, string, error) {
	t.Helper()
	cmd := pensumCmd(dir, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

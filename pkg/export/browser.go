package export

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// OpenInBrowser opens a URL or file in the default browser.
// Set PENSUM_NO_BROWSER=1 to suppress browser opening (useful for tests).
func OpenInBrowser(url string) error {
	if os.Getenv("PENSUM_NO_BROWSER") != "" {
		return nil
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
	return cmd.Start()
}

// Package browser hands URLs to the desktop's default browser.
package browser

import (
	"fmt"
	"os/exec"
	"runtime"
)

// command is swapped out in tests.
var command = func(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// Open opens url in the user's default browser without waiting for it.
func Open(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return command("open", url)
	case "linux", "freebsd", "openbsd":
		return command("xdg-open", url)
	case "windows":
		return command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("browser.Open: unsupported OS: %s", runtime.GOOS)
	}
}

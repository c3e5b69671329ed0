// Package browser opens analyzed playlists in the user's default browser.
package browser

import (
	"errors"
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

// StartFunc launches a command without waiting for it.
type StartFunc func(name string, args ...string) error

// Opener launches the platform browser for validated URLs.
type Opener struct {
	goos  string
	start StartFunc
}

// NewOpener creates an Opener for the given platform. A nil start launches
// real processes.
func NewOpener(goos string, start StartFunc) *Opener {
	if start == nil {
		start = func(name string, args ...string) error {
			return exec.Command(name, args...).Start() // #nosec G204 -- URL validated by Open
		}
	}
	return &Opener{goos: goos, start: start}
}

// Open opens urlString in the default browser of the current platform.
func Open(urlString string) error {
	return NewOpener(runtime.GOOS, nil).Open(urlString)
}

// Open validates urlString and hands it to the platform opener.
// Only http and https URLs are accepted, so nothing else reaches the shell.
func (o *Opener) Open(urlString string) error {
	parsedURL, err := url.Parse(urlString)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("unsupported URL scheme: %s (only http and https allowed)", parsedURL.Scheme)
	}
	if parsedURL.Host == "" {
		return errors.New("invalid URL: missing host")
	}

	target := parsedURL.String()
	switch o.goos {
	case "linux", "freebsd", "openbsd", "netbsd":
		return o.start("xdg-open", target)
	case "darwin":
		return o.start("open", target)
	case "windows":
		return o.start("rundll32", "url.dll,FileProtocolHandler", target)
	default:
		return fmt.Errorf("unsupported platform: %s", o.goos)
	}
}

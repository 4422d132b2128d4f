package shared

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

var (
	getRuntime = func() string { return runtime.GOOS }
	startCmd   = func(name string, args ...string) error { return exec.Command(name, args...).Start() }
)

// OpenURL opens a provider page (playlist or song source url) in the default browser.
//
// Supports macOS, Linux, and Windows platforms. Only http and https urls are accepted.
func OpenURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: not a web url: %q", ErrInvalidArgument, raw)
	}

	switch rt := getRuntime(); rt {
	case "darwin":
		err = startCmd("open", raw)
	case "linux", "freebsd", "openbsd":
		err = startCmd("xdg-open", raw)
	case "windows":
		// cmd /c start splits on '&', which kugou song urls contain
		err = startCmd("rundll32", "url.dll,FileProtocolHandler", raw)
	default:
		return fmt.Errorf("unsupported platform: %s", rt)
	}
	if err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}

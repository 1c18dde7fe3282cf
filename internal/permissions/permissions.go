package permissions

import (
	"fmt"
	"os/exec"

	"github.com/jime0083/StealthRecorder/internal/audio"
)

const (
	// System Settings deep link for the microphone privacy pane
	microphoneSettingsURL = "x-apple.systempreferences:com.apple.preference.security?Privacy_Microphone"

	// URL scheme of the Shortcuts app, used for gesture automation setup
	shortcutsAppURL = "shortcuts://"
)

// Checker verifies and requests the permissions the app needs.
type Checker struct {
	probe func() error
}

// NewChecker creates a permission checker backed by the audio input probe.
func NewChecker() *Checker {
	return &Checker{
		probe: audio.ProbeDefaultInput,
	}
}

// RequestMicrophoneAccess attempts to open the default input device. The
// first attempt triggers the system permission prompt; later calls simply
// verify that access is still granted, so it is safe to call repeatedly.
func (c *Checker) RequestMicrophoneAccess() (bool, error) {
	if err := c.probe(); err != nil {
		return false, fmt.Errorf("microphone access check failed: %w", err)
	}
	return true, nil
}

// OpenMicrophoneSettings opens the System Settings privacy pane where the
// user can grant microphone access.
func (c *Checker) OpenMicrophoneSettings() error {
	return OpenURL(microphoneSettingsURL)
}

// OpenShortcutsApp opens the Shortcuts app so the user can set up the
// start/stop automation.
func (c *Checker) OpenShortcutsApp() error {
	return OpenURL(shortcutsAppURL)
}

// OpenURL asks the OS to open a URL with its default handler. An error
// means nothing on the system could handle the scheme.
func OpenURL(url string) error {
	if url == "" {
		return fmt.Errorf("url is empty")
	}

	if err := exec.Command("open", url).Run(); err != nil {
		return fmt.Errorf("failed to open %s: %w", url, err)
	}

	return nil
}

package clipboard

import (
	"fmt"
	"time"

	"github.com/go-vgo/robotgo"
)

// Manager wraps clipboard access for the tray menu and the settings API
type Manager struct {
	verifyDelay time.Duration
}

// Config holds clipboard manager configuration
type Config struct {
	VerifyDelay time.Duration // Wait before reading back a copied value (default: 10ms)
}

// DefaultConfig returns the default clipboard configuration
func DefaultConfig() Config {
	return Config{
		VerifyDelay: 10 * time.Millisecond,
	}
}

// NewManager creates a new clipboard manager
func NewManager(config Config) *Manager {
	return &Manager{
		verifyDelay: config.VerifyDelay,
	}
}

// CopyText places text on the system clipboard
func (m *Manager) CopyText(text string) error {
	if err := robotgo.WriteAll(text); err != nil {
		return fmt.Errorf("failed to write clipboard: %w", err)
	}
	return nil
}

// ReadText returns the current clipboard content
func (m *Manager) ReadText() (string, error) {
	content, err := robotgo.ReadAll()
	if err != nil {
		return "", fmt.Errorf("failed to read clipboard: %w", err)
	}
	return content, nil
}

// CopyAndVerify copies text and reads it back to confirm the write
// landed. The pasteboard updates asynchronously, so the read waits for
// the configured delay.
func (m *Manager) CopyAndVerify(text string) error {
	if err := m.CopyText(text); err != nil {
		return err
	}

	time.Sleep(m.verifyDelay)

	content, err := m.ReadText()
	if err != nil {
		return err
	}

	if content != text {
		return fmt.Errorf("clipboard verification failed: wrote %d characters, read back %d", len(text), len(content))
	}

	return nil
}

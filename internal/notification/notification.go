package notification

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/jime0083/StealthRecorder/internal/i18n"
)

// NotificationType represents the type of notification
type NotificationType string

const (
	// TypeInfo is an informational notification
	TypeInfo NotificationType = "info"
	// TypeError is an error notification
	TypeError NotificationType = "error"
	// TypeSuccess is a success notification
	TypeSuccess NotificationType = "success"
)

// Notification represents a macOS notification
type Notification struct {
	Title   string
	Message string
	Type    NotificationType
}

// Manager handles sending notifications to the user
type Manager struct {
	appName string
}

// NewManager creates a new notification manager
func NewManager(appName string) *Manager {
	return &Manager{
		appName: appName,
	}
}

// Send sends a notification via the macOS notification center
func (m *Manager) Send(notification *Notification) error {
	if notification == nil {
		return fmt.Errorf("notification cannot be nil")
	}

	script := fmt.Sprintf(
		`display notification "%s" with title "%s"`,
		escapeAppleScript(notification.Message),
		escapeAppleScript(notification.Title),
	)

	cmd := exec.Command("osascript", "-e", script)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}

	return nil
}

// SendInfo sends an informational notification
func (m *Manager) SendInfo(title, message string) error {
	return m.Send(&Notification{
		Title:   title,
		Message: message,
		Type:    TypeInfo,
	})
}

// SendError sends an error notification
func (m *Manager) SendError(title, message string) error {
	return m.Send(&Notification{
		Title:   title,
		Message: message,
		Type:    TypeError,
	})
}

// SendSuccess sends a success notification
func (m *Manager) SendSuccess(title, message string) error {
	return m.Send(&Notification{
		Title:   title,
		Message: message,
		Type:    TypeSuccess,
	})
}

// RecordingStarted notifies that a recording session has begun
func (m *Manager) RecordingStarted() error {
	return m.SendInfo(m.appName, i18n.T("notification.recording_started"))
}

// RecordingSaved notifies that a recording was stopped and saved
func (m *Manager) RecordingSaved(file string) error {
	message := i18n.TF("notification.recording_saved", map[string]string{"file": file})
	return m.SendSuccess(m.appName, message)
}

// PermissionDenied notifies that microphone access was refused
func (m *Manager) PermissionDenied() error {
	return m.SendError(m.appName, i18n.T("notification.permission_denied"))
}

// RecordingFailed notifies that a recording session could not start
func (m *Manager) RecordingFailed(reason string) error {
	message := i18n.TF("notification.recording_failed", map[string]string{"reason": reason})
	return m.SendError(m.appName, message)
}

// escapeAppleScript escapes a string for embedding in an AppleScript
// string literal
func escapeAppleScript(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return s
}

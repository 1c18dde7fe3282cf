package recording

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/jime0083/StealthRecorder/internal/audio"
	"github.com/jime0083/StealthRecorder/internal/logger"
	"github.com/jime0083/StealthRecorder/internal/store"
)

const (
	// FilePrefix is the leading segment of every recording file name
	FilePrefix = "stealth-"
	// StopResultIdle is returned by Stop when no session is active
	StopResultIdle = "idle"
	// GestureStart starts a session when passed to HandleGesture
	GestureStart = "start"
	// GestureStop stops a session when passed to HandleGesture
	GestureStop = "stop"
)

// timestampLayout formats session start times into file names,
// e.g. stealth-20250131_143502.m4a. The layout is locale independent.
const timestampLayout = "20060102_150405"

// State represents the current session state
type State int

const (
	// Idle means no recording session is active
	Idle State = iota
	// Recording means a capture session is in progress
	Recording
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Recording:
		return "Recording"
	default:
		return "Unknown"
	}
}

// PermissionRequester requests access to the capture device
type PermissionRequester interface {
	// RequestMicrophoneAccess triggers the system permission flow and
	// reports whether capture is authorized
	RequestMicrophoneAccess() (bool, error)
}

// Manager manages the recording session lifecycle. A single mutex
// serializes state transitions so at most one capture session exists
// at a time, regardless of which surface (UI, API, gesture) drives it.
type Manager struct {
	state       State
	recorder    audio.Recorder
	store       *store.Store
	perms       PermissionRequester
	logger      *logger.Logger
	currentPath string
	lastStamp   time.Time
	permGranted bool
	permKnown   bool
	mu          sync.Mutex
}

// New creates a new recording manager. The logger may be nil.
func New(rec audio.Recorder, st *store.Store, perms PermissionRequester, log *logger.Logger) *Manager {
	return &Manager{
		state:    Idle,
		recorder: rec,
		store:    st,
		perms:    perms,
		logger:   log,
	}
}

// Start begins a new recording session and returns the file name it
// records into. Calling Start while a session is already active is not
// an error; the name of the active session's file is returned instead
// and no second capture is started.
func (m *Manager) Start() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == Recording {
		name := filepath.Base(m.currentPath)
		m.infof("Start requested while already recording, reusing %s", name)
		return name, nil
	}

	if err := m.store.EnsureDir(); err != nil {
		m.errorf("Failed to prepare recordings directory: %v", err)
		return "", fmt.Errorf("failed to prepare recordings directory: %w", err)
	}

	name := m.nextFileName()
	path := m.store.RecordingPath(name)

	if err := m.recorder.Start(path); err != nil {
		m.errorf("Failed to start recording: %v", err)
		return "", fmt.Errorf("failed to start recording: %w", err)
	}

	m.state = Recording
	m.currentPath = path
	m.infof("Recording started: %s", name)

	return name, nil
}

// Stop ends the active session and returns the name of the file it
// recorded into. When no session is active it returns StopResultIdle.
// Capture teardown errors are logged and swallowed; by the time Stop
// is called the audio is already on disk and a noisy shutdown should
// not look like a lost recording.
func (m *Manager) Stop() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != Recording {
		return StopResultIdle
	}

	name := filepath.Base(m.currentPath)

	if err := m.recorder.Stop(); err != nil {
		m.warnf("Failed to stop capture cleanly: %v", err)
	}

	if err := m.recorder.Deactivate(); err != nil {
		m.warnf("Recording validation failed for %s: %v", name, err)
	}

	m.state = Idle
	m.currentPath = ""
	m.infof("Recording stopped: %s", name)

	return name
}

// IsActive reports whether a recording session is in progress
func (m *Manager) IsActive() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == Recording && m.recorder.IsRunning()
}

// GetState returns the current session state
func (m *Manager) GetState() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// CurrentFile returns the file name of the active session, or an empty
// string when idle
func (m *Manager) CurrentFile() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != Recording {
		return ""
	}
	return filepath.Base(m.currentPath)
}

// ListFiles returns the stored recordings, newest first. Listing never
// fails: when the directory cannot be read the error is logged and an
// empty slice is returned so callers can always render something.
func (m *Manager) ListFiles() []store.FileInfo {
	files, err := m.store.List()
	if err != nil {
		m.warnf("Failed to list recordings: %v", err)
		return []store.FileInfo{}
	}
	return files
}

// RequestPermission runs the system microphone permission flow and
// reports whether access is granted. Failures are logged and reported
// as a denial.
func (m *Manager) RequestPermission() bool {
	granted, err := m.perms.RequestMicrophoneAccess()
	if err != nil {
		m.warnf("Microphone permission request failed: %v", err)
	}

	m.mu.Lock()
	m.permGranted = granted
	m.permKnown = true
	m.mu.Unlock()

	return granted
}

// PermissionState returns the last observed permission result and
// whether a request has been made yet
func (m *Manager) PermissionState() (granted, known bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.permGranted, m.permKnown
}

// HandleGesture drives the session from an external trigger such as a
// hotkey or an automation shortcut. A start gesture always requests
// permission first and only proceeds when granted. Unknown actions are
// logged and ignored. The returned name follows the semantics of Start
// and Stop respectively.
func (m *Manager) HandleGesture(action string) (string, error) {
	switch action {
	case GestureStart:
		if !m.RequestPermission() {
			m.warnf("Gesture start ignored: microphone permission not granted")
			return "", nil
		}
		return m.Start()
	case GestureStop:
		return m.Stop(), nil
	default:
		m.infof("Ignoring unknown gesture action: %q", action)
		return "", nil
	}
}

// Close stops any active session and releases the capture backend
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.state == Recording {
		name := filepath.Base(m.currentPath)
		if err := m.recorder.Stop(); err != nil {
			m.warnf("Failed to stop capture cleanly: %v", err)
		}
		if err := m.recorder.Deactivate(); err != nil {
			m.warnf("Recording validation failed for %s: %v", name, err)
		}
		m.state = Idle
		m.currentPath = ""
		m.infof("Recording stopped on shutdown: %s", name)
	}
	m.mu.Unlock()

	return m.recorder.Close()
}

// nextFileName builds the file name for a new session. Timestamps are
// truncated to the second; a session started within the same second as
// the previous one is shifted forward so names stay unique and strictly
// increasing. Callers must hold m.mu.
func (m *Manager) nextFileName() string {
	now := time.Now().Truncate(time.Second)
	if !now.After(m.lastStamp) {
		now = m.lastStamp.Add(time.Second)
	}
	m.lastStamp = now

	return FilePrefix + now.Format(timestampLayout) + store.Extension
}

func (m *Manager) infof(format string, v ...interface{}) {
	if m.logger != nil {
		m.logger.Info(format, v...)
	}
}

func (m *Manager) warnf(format string, v ...interface{}) {
	if m.logger != nil {
		m.logger.Warn(format, v...)
	}
}

func (m *Manager) errorf(format string, v ...interface{}) {
	if m.logger != nil {
		m.logger.Error(format, v...)
	}
}

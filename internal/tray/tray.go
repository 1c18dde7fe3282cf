package tray

import (
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/getlantern/systray"

	"github.com/jime0083/StealthRecorder/internal/i18n"
)

// State represents the current application state
type State int

const (
	StateIdle State = iota
	StateRecording
)

// Manager manages the system tray icon and menu
type Manager struct {
	stateMutex      sync.RWMutex
	state           State
	onReadyCallback func()
	onStart         func()
	onStop          func()
	onOpenSettings  func()
	onOpenFolder    func()
	onCopyPath      func()
	onQuit          func()
	menuStart       *systray.MenuItem
	menuStop        *systray.MenuItem
	menuSettings    *systray.MenuItem
	menuOpenFolder  *systray.MenuItem
	menuCopyPath    *systray.MenuItem
	menuQuit        *systray.MenuItem

	// Icon cache
	iconIdle      []byte
	iconRecording []byte
}

// Config holds tray manager configuration
type Config struct {
	OnReady        func() // Called when the systray is ready for initialization
	OnStart        func()
	OnStop         func()
	OnOpenSettings func()
	OnOpenFolder   func()
	OnCopyPath     func()
	OnQuit         func()
}

// NewManager creates a new tray manager
func NewManager(config Config) *Manager {
	m := &Manager{
		state:           StateIdle,
		onReadyCallback: config.OnReady,
		onStart:         config.OnStart,
		onStop:          config.OnStop,
		onOpenSettings:  config.OnOpenSettings,
		onOpenFolder:    config.OnOpenFolder,
		onCopyPath:      config.OnCopyPath,
		onQuit:          config.OnQuit,
	}

	// Load icons once at initialization
	m.iconIdle = loadIconData("mic_idle_32.png", getIdleFallback())
	m.iconRecording = loadIconData("mic_recording_32.png", getRecordingFallback())

	return m
}

// Run starts the system tray (blocking call)
func (m *Manager) Run() {
	systray.Run(m.onReady, m.onExit)
}

// onReady is called when systray is ready
func (m *Manager) onReady() {
	// Set initial icon and tooltip
	m.updateIcon()

	// Add menu items
	m.menuStart = systray.AddMenuItem(i18n.T("menu.start"), "Start a recording session")
	m.menuStop = systray.AddMenuItem(i18n.T("menu.stop"), "Stop the recording session")
	m.menuStop.Disable()

	systray.AddSeparator()

	m.menuSettings = systray.AddMenuItem(i18n.T("menu.settings"), "Open settings page")
	m.menuOpenFolder = systray.AddMenuItem(i18n.T("menu.open_folder"), "Open the recordings folder")
	m.menuCopyPath = systray.AddMenuItem(i18n.T("menu.copy_folder"), "Copy the recordings folder path")

	systray.AddSeparator()

	m.menuQuit = systray.AddMenuItem(i18n.T("menu.quit"), "Quit the application")

	// Start event loop
	go m.handleMenuEvents()

	// Call the OnReady callback if provided
	if m.onReadyCallback != nil {
		m.onReadyCallback()
	}
}

// onExit is called when systray is exiting
func (m *Manager) onExit() {
	// Cleanup if needed
}

// handleMenuEvents handles menu item clicks
func (m *Manager) handleMenuEvents() {
	for {
		select {
		case <-m.menuStart.ClickedCh:
			if m.onStart != nil {
				m.onStart()
			}
		case <-m.menuStop.ClickedCh:
			if m.onStop != nil {
				m.onStop()
			}
		case <-m.menuSettings.ClickedCh:
			if m.onOpenSettings != nil {
				m.onOpenSettings()
			}
		case <-m.menuOpenFolder.ClickedCh:
			if m.onOpenFolder != nil {
				m.onOpenFolder()
			}
		case <-m.menuCopyPath.ClickedCh:
			if m.onCopyPath != nil {
				m.onCopyPath()
			}
		case <-m.menuQuit.ClickedCh:
			if m.onQuit != nil {
				m.onQuit()
			}
			systray.Quit()
			return
		}
	}
}

// SetState updates the tray icon and menu based on the current state
func (m *Manager) SetState(state State) {
	m.stateMutex.Lock()
	defer m.stateMutex.Unlock()
	m.state = state
	m.updateIcon()
}

// GetState returns the current tray state
func (m *Manager) GetState() State {
	m.stateMutex.RLock()
	defer m.stateMutex.RUnlock()
	return m.state
}

// updateIcon updates the tray icon, tooltip and menu enablement based
// on the current state
func (m *Manager) updateIcon() {
	switch m.state {
	case StateIdle:
		systray.SetIcon(m.iconIdle)
		systray.SetTooltip("StealthRecorder - " + i18n.T("status.idle"))
		if m.menuStart != nil {
			m.menuStart.Enable()
		}
		if m.menuStop != nil {
			m.menuStop.Disable()
		}
	case StateRecording:
		systray.SetIcon(m.iconRecording)
		systray.SetTooltip("StealthRecorder - " + i18n.T("status.recording"))
		if m.menuStart != nil {
			m.menuStart.Disable()
		}
		if m.menuStop != nil {
			m.menuStop.Enable()
		}
	}
}

// Quit quits the system tray
func (m *Manager) Quit() {
	systray.Quit()
}

// loadIconData loads an icon from the assets directory.
// If the file cannot be loaded, it returns a fallback placeholder icon.
func loadIconData(filename string, fallback []byte) []byte {
	exe, err := os.Executable()
	if err != nil {
		log.Printf("Warning: could not resolve executable path: %v", err)
		return fallback
	}
	exeDir := filepath.Dir(exe)

	// Try to load the icon from assets/icon/ relative to the executable
	iconPath := filepath.Join(exeDir, "assets", "icon", filename)
	data, err := os.ReadFile(iconPath)
	if err != nil {
		log.Printf("Warning: could not load icon file (%s): %v", iconPath, err)
		return fallback
	}

	return data
}

// getIdleFallback returns the fallback icon data for the idle state
func getIdleFallback() []byte {
	return []byte{
		0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a,
		0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52,
		0x00, 0x00, 0x00, 0x10, 0x00, 0x00, 0x00, 0x10,
		0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0xf3, 0xff,
		0x61, 0x00, 0x00, 0x00, 0x19, 0x74, 0x45, 0x58,
		0x74, 0x53, 0x6f, 0x66, 0x74, 0x77, 0x61, 0x72,
		0x65, 0x00, 0x41, 0x64, 0x6f, 0x62, 0x65, 0x20,
		0x49, 0x6d, 0x61, 0x67, 0x65, 0x52, 0x65, 0x61,
		0x64, 0x79, 0x71, 0xc9, 0x65, 0x3c, 0x00, 0x00,
		0x00, 0x18, 0x49, 0x44, 0x41, 0x54, 0x78, 0xda,
		0x62, 0xfc, 0xff, 0xff, 0x3f, 0x03, 0x00, 0x00,
		0x00, 0xff, 0xff, 0x03, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x49, 0x45, 0x4e, 0x44, 0xae, 0x42, 0x60,
		0x82,
	}
}

// getRecordingFallback returns the fallback icon data for the recording state
func getRecordingFallback() []byte {
	return []byte{
		0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a,
		0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52,
		0x00, 0x00, 0x00, 0x10, 0x00, 0x00, 0x00, 0x10,
		0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0xf3, 0xff,
		0x61, 0x00, 0x00, 0x00, 0x19, 0x74, 0x45, 0x58,
		0x74, 0x53, 0x6f, 0x66, 0x74, 0x77, 0x61, 0x72,
		0x65, 0x00, 0x41, 0x64, 0x6f, 0x62, 0x65, 0x20,
		0x49, 0x6d, 0x61, 0x67, 0x65, 0x52, 0x65, 0x61,
		0x64, 0x79, 0x71, 0xc9, 0x65, 0x3c, 0x00, 0x00,
		0x00, 0x20, 0x49, 0x44, 0x41, 0x54, 0x78, 0xda,
		0x62, 0xfc, 0xcf, 0xc0, 0xc0, 0xc0, 0xf0, 0x9f,
		0x81, 0x81, 0x81, 0x81, 0xff, 0x19, 0x18, 0x18,
		0x18, 0x00, 0x00, 0x00, 0x00, 0xff, 0xff, 0x03,
		0x00, 0x0c, 0x10, 0x02, 0x01, 0x8b, 0xd5, 0xf8,
		0x23, 0x00, 0x00, 0x00, 0x00, 0x49, 0x45, 0x4e,
		0x44, 0xae, 0x42, 0x60, 0x82,
	}
}

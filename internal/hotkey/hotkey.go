package hotkey

import (
	"fmt"
	"sync"

	"golang.design/x/hotkey"
)

const (
	// ActionStart asks the session manager to begin recording
	ActionStart = "start"
	// ActionStop asks the session manager to end recording
	ActionStop = "stop"
)

// Mode defines how key presses map to recording gestures
type Mode int

const (
	// Toggle mode: first press starts, second press stops
	Toggle Mode = iota
	// PressToHold mode: record while the key is held down
	PressToHold
)

// ModeFromString parses the configuration value for the gesture mode
func ModeFromString(s string) (Mode, error) {
	switch s {
	case "toggle":
		return Toggle, nil
	case "press-to-hold":
		return PressToHold, nil
	default:
		return Toggle, fmt.Errorf("unknown gesture mode: %s", s)
	}
}

// String returns the configuration value for the mode
func (m Mode) String() string {
	switch m {
	case PressToHold:
		return "press-to-hold"
	default:
		return "toggle"
	}
}

// Event is a recording gesture derived from a hotkey press
type Event struct {
	Action string
}

// Config holds hotkey configuration
type Config struct {
	Modifiers []hotkey.Modifier
	Key       hotkey.Key
	Mode      Mode
}

// Manager manages global hotkey registration and turns key events into
// start/stop gestures
type Manager struct {
	hk        *hotkey.Hotkey
	config    Config
	eventChan chan Event
	stopChan  chan struct{}
	wg        sync.WaitGroup
	mu        sync.Mutex
	running   bool

	// active tracks toggle state under its own lock so the listener
	// never contends with Close, which holds mu while waiting for it
	activeMu sync.Mutex
	active   bool
}

// New creates a new hotkey manager with default configuration
// Default: Ctrl+Option+R in toggle mode
func New() *Manager {
	return &Manager{
		config: Config{
			Modifiers: []hotkey.Modifier{hotkey.ModCtrl, hotkey.ModOption},
			Key:       hotkey.KeyR,
			Mode:      Toggle,
		},
		eventChan: make(chan Event, 10),
		stopChan:  make(chan struct{}),
	}
}

// Register registers the hotkey with the system
func (m *Manager) Register(config Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return fmt.Errorf("hotkey is already running, call Close() first")
	}

	m.config = config

	// Recreate channels (they may have been closed by a previous Close())
	m.stopChan = make(chan struct{})
	m.eventChan = make(chan Event, 10)

	hk := hotkey.New(m.config.Modifiers, m.config.Key)

	if err := hk.Register(); err != nil {
		return fmt.Errorf("failed to register hotkey: %w", err)
	}

	m.hk = hk
	m.running = true

	m.wg.Add(1)
	go m.listen()

	return nil
}

// RegisterDefault registers the default hotkey (Ctrl+Option+R)
func (m *Manager) RegisterDefault() error {
	return m.Register(m.config)
}

// listen monitors key events and emits gestures on the event channel
func (m *Manager) listen() {
	defer m.wg.Done()

	for {
		select {
		case <-m.hk.Keydown():
			switch m.config.Mode {
			case PressToHold:
				m.eventChan <- Event{Action: ActionStart}
			case Toggle:
				if m.toggleAction() == ActionStart {
					m.eventChan <- Event{Action: ActionStart}
				} else {
					m.eventChan <- Event{Action: ActionStop}
				}
			}

		case <-m.hk.Keyup():
			if m.config.Mode == PressToHold {
				m.eventChan <- Event{Action: ActionStop}
			}

		case <-m.stopChan:
			return
		}
	}
}

// toggleAction flips the tracked session state and returns the gesture
// the press should emit
func (m *Manager) toggleAction() string {
	m.activeMu.Lock()
	defer m.activeMu.Unlock()

	if m.active {
		m.active = false
		return ActionStop
	}
	m.active = true
	return ActionStart
}

// SyncActive aligns the toggle tracking with the actual session state.
// The session can also be driven from the tray or the settings UI, and
// without this the next press would emit a stale gesture.
func (m *Manager) SyncActive(active bool) {
	m.activeMu.Lock()
	defer m.activeMu.Unlock()
	m.active = active
}

// Events returns the event channel for receiving gestures
func (m *Manager) Events() <-chan Event {
	return m.eventChan
}

// Close unregisters the hotkey and stops listening
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return nil
	}

	var unregisterErr error

	// Signal the listener to stop
	close(m.stopChan)

	// Wait for the listener goroutine to finish
	m.wg.Wait()

	// Keep going on unregister errors so cleanup always completes
	if m.hk != nil {
		if err := m.hk.Unregister(); err != nil {
			unregisterErr = fmt.Errorf("failed to unregister hotkey: %w", err)
		}
	}

	// Close event channel to notify consumers of shutdown
	if m.eventChan != nil {
		close(m.eventChan)
		m.eventChan = nil
	}

	// Clearing running even on failure lets the next Register() proceed
	m.running = false

	return unregisterErr
}

// IsRunning returns whether the hotkey is currently registered and running
func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// GetConfig returns a copy of the current hotkey configuration
func (m *Manager) GetConfig() Config {
	m.mu.Lock()
	defer m.mu.Unlock()

	configCopy := m.config

	// Copy the Modifiers slice to prevent callers from mutating it
	if m.config.Modifiers != nil {
		configCopy.Modifiers = make([]hotkey.Modifier, len(m.config.Modifiers))
		copy(configCopy.Modifiers, m.config.Modifiers)
	}

	return configCopy
}

package tray

import (
	"testing"
)

func TestNewManager(t *testing.T) {
	startCalled := false
	stopCalled := false
	settingsCalled := false
	openFolderCalled := false
	copyPathCalled := false
	quitCalled := false

	config := Config{
		OnStart: func() {
			startCalled = true
		},
		OnStop: func() {
			stopCalled = true
		},
		OnOpenSettings: func() {
			settingsCalled = true
		},
		OnOpenFolder: func() {
			openFolderCalled = true
		},
		OnCopyPath: func() {
			copyPathCalled = true
		},
		OnQuit: func() {
			quitCalled = true
		},
	}

	manager := NewManager(config)

	if manager == nil {
		t.Fatal("Expected manager to be created")
	}

	if manager.state != StateIdle {
		t.Errorf("Expected initial state to be StateIdle, got %v", manager.state)
	}

	// Test callback invocation
	manager.onStart()
	if !startCalled {
		t.Error("Expected onStart callback to be called")
	}

	manager.onStop()
	if !stopCalled {
		t.Error("Expected onStop callback to be called")
	}

	manager.onOpenSettings()
	if !settingsCalled {
		t.Error("Expected onOpenSettings callback to be called")
	}

	manager.onOpenFolder()
	if !openFolderCalled {
		t.Error("Expected onOpenFolder callback to be called")
	}

	manager.onCopyPath()
	if !copyPathCalled {
		t.Error("Expected onCopyPath callback to be called")
	}

	manager.onQuit()
	if !quitCalled {
		t.Error("Expected onQuit callback to be called")
	}
}

func TestCallbacksNil(t *testing.T) {
	// The manager must tolerate a zero config
	manager := NewManager(Config{})

	if manager == nil {
		t.Fatal("Expected manager to be created with nil callbacks")
	}

	if manager.onStart != nil || manager.onStop != nil || manager.onQuit != nil {
		t.Error("Expected unset callbacks to stay nil")
	}
}

func TestGetState(t *testing.T) {
	manager := NewManager(Config{})

	if manager.GetState() != StateIdle {
		t.Errorf("Expected initial state StateIdle, got %v", manager.GetState())
	}
}

func TestStateConstants(t *testing.T) {
	if StateIdle != 0 {
		t.Errorf("Expected StateIdle to be 0, got %d", StateIdle)
	}
	if StateRecording != 1 {
		t.Errorf("Expected StateRecording to be 1, got %d", StateRecording)
	}
}

func TestIconFallbacks(t *testing.T) {
	idleIcon := getIdleFallback()
	if len(idleIcon) == 0 {
		t.Error("Expected getIdleFallback to return non-empty byte slice")
	}

	recordingIcon := getRecordingFallback()
	if len(recordingIcon) == 0 {
		t.Error("Expected getRecordingFallback to return non-empty byte slice")
	}

	// Verify they're different
	if string(idleIcon) == string(recordingIcon) {
		t.Error("Expected idle and recording icons to be different")
	}

	// Verify the PNG signature
	pngHeader := []byte{0x89, 0x50, 0x4e, 0x47}
	for _, icon := range [][]byte{idleIcon, recordingIcon} {
		for i, b := range pngHeader {
			if icon[i] != b {
				t.Error("Expected fallback icon to be a PNG")
				break
			}
		}
	}
}

func TestLoadIconDataFallback(t *testing.T) {
	fallback := []byte{0x01, 0x02, 0x03}

	// No asset directory exists next to the test binary
	data := loadIconData("no_such_icon.png", fallback)

	if string(data) != string(fallback) {
		t.Error("Expected fallback icon data for a missing file")
	}
}

func TestManagerIconsLoaded(t *testing.T) {
	manager := NewManager(Config{})

	if len(manager.iconIdle) == 0 {
		t.Error("Expected idle icon to be loaded")
	}

	if len(manager.iconRecording) == 0 {
		t.Error("Expected recording icon to be loaded")
	}
}

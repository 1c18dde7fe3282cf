package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jime0083/StealthRecorder/internal/audio"
	"github.com/jime0083/StealthRecorder/internal/clipboard"
	"github.com/jime0083/StealthRecorder/internal/config"
	"github.com/jime0083/StealthRecorder/internal/hotkey"
	"github.com/jime0083/StealthRecorder/internal/permissions"
	"github.com/jime0083/StealthRecorder/internal/probe"
	"github.com/jime0083/StealthRecorder/internal/recording"
	"github.com/jime0083/StealthRecorder/internal/wizard"
	hk "golang.design/x/hotkey"
)

// Handler manages API endpoints
type Handler struct {
	config          *config.Config
	wizard          *wizard.SetupWizard
	session         *recording.Manager
	checker         *permissions.Checker
	clip            *clipboard.Manager
	prober          *probe.Prober
	onHotkeyChanged func() error // Reloads the hotkey in the running app
	onStateChanged  func()       // Lets the tray resync after UI-driven session changes
}

// Config holds the handler's collaborators
type Config struct {
	Settings        *config.Config
	Wizard          *wizard.SetupWizard
	Session         *recording.Manager
	Permissions     *permissions.Checker
	Clipboard       *clipboard.Manager
	Prober          *probe.Prober
	OnHotkeyChanged func() error
	OnStateChanged  func()
}

// New creates a new API handler
func New(cfg Config) *Handler {
	return &Handler{
		config:          cfg.Settings,
		wizard:          cfg.Wizard,
		session:         cfg.Session,
		checker:         cfg.Permissions,
		clip:            cfg.Clipboard,
		prober:          cfg.Prober,
		onHotkeyChanged: cfg.OnHotkeyChanged,
		onStateChanged:  cfg.OnStateChanged,
	}
}

// RegisterRoutes registers all API routes on the given mux
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/settings", h.handleSettings)
	mux.HandleFunc("/api/status", h.handleStatus)
	mux.HandleFunc("/api/recording/start", h.handleRecordingStart)
	mux.HandleFunc("/api/recording/stop", h.handleRecordingStop)
	mux.HandleFunc("/api/gesture", h.handleGesture)
	mux.HandleFunc("/api/recordings", h.handleRecordings)
	mux.HandleFunc("/api/permissions", h.handlePermissions)
	mux.HandleFunc("/api/permissions/request", h.handlePermissionsRequest)
	mux.HandleFunc("/api/permissions/settings", h.handlePermissionsSettings)
	mux.HandleFunc("/api/devices", h.handleDevices)
	mux.HandleFunc("/api/hotkey/validate", h.handleHotkeyValidate)
	mux.HandleFunc("/api/hotkey/register", h.handleHotkeyRegister)
	mux.HandleFunc("/api/shortcut", h.handleShortcut)
	mux.HandleFunc("/api/shortcut/copy", h.handleShortcutCopy)
	mux.HandleFunc("/api/shortcut/install", h.handleShortcutInstall)
}

// notifyStateChanged tells the host app that the session state may have
// moved so the tray icon can follow
func (h *Handler) notifyStateChanged() {
	if h.onStateChanged != nil {
		h.onStateChanged()
	}
}

// handleSettings handles GET and PUT /api/settings
func (h *Handler) handleSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.getSettings(w, r)
	case http.MethodPut:
		h.putSettings(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// getSettings returns the current configuration
func (h *Handler) getSettings(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.config.Clone())
}

// putSettings updates the configuration
func (h *Handler) putSettings(w http.ResponseWriter, r *http.Request) {
	var updates map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.config.Update(updates); err != nil {
		http.Error(w, fmt.Sprintf("Failed to update config: %v", err), http.StatusBadRequest)
		return
	}

	// Save to file
	configPath := config.GetConfigPath()
	if err := h.config.Save(configPath); err != nil {
		http.Error(w, fmt.Sprintf("Failed to save config: %v", err), http.StatusInternalServerError)
		return
	}

	// Saving settings completes the first-run flow
	if h.wizard != nil {
		if err := h.wizard.MarkOnboardingCompleted(); err != nil {
			// Settings were saved, so log and keep going
			fmt.Printf("Warning: failed to mark onboarding completed: %v\n", err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status": "success",
	})
}

// handleStatus handles GET /api/status
func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	onboarding := h.wizard != nil && h.wizard.ShouldShowOnboarding()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"state":      h.session.GetState().String(),
		"active":     h.session.IsActive(),
		"file":       h.session.CurrentFile(),
		"onboarding": onboarding,
	})
}

// handleRecordingStart handles POST /api/recording/start
func (h *Handler) handleRecordingStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	name, err := h.session.Start()
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to start recording: %v", err), http.StatusInternalServerError)
		return
	}

	h.notifyStateChanged()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status": "success",
		"file":   name,
	})
}

// handleRecordingStop handles POST /api/recording/stop
func (h *Handler) handleRecordingStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	name := h.session.Stop()

	h.notifyStateChanged()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status": "success",
		"file":   name,
	})
}

// handleGesture handles POST /api/gesture. It drives the same session
// as the tray and the hotkey, so an automation shortcut firing here
// cannot race a second capture into existence.
func (h *Handler) handleGesture(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var request struct {
		Action string `json:"action"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	name, err := h.session.HandleGesture(request.Action)
	if err != nil {
		http.Error(w, fmt.Sprintf("Gesture failed: %v", err), http.StatusInternalServerError)
		return
	}

	h.notifyStateChanged()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status": "success",
		"file":   name,
	})
}

// Recording represents a stored recording in API responses
type Recording struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	SizeLabel string    `json:"size_label"`
	CreatedAt time.Time `json:"created_at"`
	Duration  string    `json:"duration,omitempty"`
}

// handleRecordings handles GET /api/recordings
func (h *Handler) handleRecordings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	files := h.session.ListFiles()

	recordings := make([]Recording, 0, len(files))
	for _, f := range files {
		rec := Recording{
			Name:      f.Name,
			Path:      f.Path,
			Size:      f.Size,
			SizeLabel: formatSize(f.Size),
			CreatedAt: f.CreatedAt,
		}

		if h.prober != nil && h.prober.Available() {
			if info, err := h.prober.Inspect(f.Path); err == nil {
				rec.Duration = formatDuration(info.Duration)
			}
		}

		recordings = append(recordings, rec)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"recordings": recordings,
	})
}

// handlePermissions handles GET /api/permissions
func (h *Handler) handlePermissions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	granted, known := h.session.PermissionState()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"microphone": map[string]bool{
			"granted": granted,
			"known":   known,
		},
	})
}

// handlePermissionsRequest handles POST /api/permissions/request
func (h *Handler) handlePermissionsRequest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	granted := h.session.RequestPermission()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{
		"granted": granted,
	})
}

// handlePermissionsSettings handles POST /api/permissions/settings
func (h *Handler) handlePermissionsSettings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if h.checker == nil {
		http.Error(w, "Permission checker unavailable", http.StatusServiceUnavailable)
		return
	}

	if err := h.checker.OpenMicrophoneSettings(); err != nil {
		http.Error(w, fmt.Sprintf("Failed to open settings: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status": "success",
	})
}

// Device represents an audio input device in API responses
type Device struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	IsDefault bool   `json:"is_default"`
}

// handleDevices handles GET /api/devices
func (h *Handler) handleDevices(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var devices []Device

	audioDevices, err := audio.ListInputDevices()
	if err != nil {
		// Device enumeration needs a working audio host; fall back to
		// the capture default so the UI still renders
		devices = []Device{
			{ID: -1, Name: "System Default", IsDefault: true},
		}
	} else {
		devices = make([]Device, 0, len(audioDevices))
		for _, dev := range audioDevices {
			devices = append(devices, Device{
				ID:        dev.ID,
				Name:      dev.Name,
				IsDefault: dev.IsDefault,
			})
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"devices": devices,
	})
}

// handleHotkeyValidate handles POST /api/hotkey/validate
func (h *Handler) handleHotkeyValidate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var request config.HotkeyConfig
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	mods := hotkeyConfigToModifiers(request)
	key := stringToKeyCode(request.Key)

	conflicts := hotkey.CheckConflicts(mods, key)

	conflictNames := []string{}
	for _, c := range conflicts {
		conflictNames = append(conflictNames, c.Name)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"conflicts": conflictNames,
		"formatted": hotkey.FormatHotkey(mods, key),
	})
}

// handleHotkeyRegister handles POST /api/hotkey/register
func (h *Handler) handleHotkeyRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var request config.HotkeyConfig
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// Validate hotkey configuration
	if request.Key == "" {
		http.Error(w, "Key cannot be empty", http.StatusBadRequest)
		return
	}

	// A bare key would fire on normal typing
	if !request.Ctrl && !request.Shift && !request.Alt && !request.Cmd {
		http.Error(w, "At least one modifier key (Ctrl/Shift/Alt/Cmd) is required", http.StatusBadRequest)
		return
	}

	h.config.SetHotkey(request)

	// Save to file
	configPath := config.GetConfigPath()
	if err := h.config.Save(configPath); err != nil {
		http.Error(w, fmt.Sprintf("Failed to save config: %v", err), http.StatusInternalServerError)
		return
	}

	// Reload the hotkey in the running application
	if h.onHotkeyChanged != nil {
		if err := h.onHotkeyChanged(); err != nil {
			// Config is already saved, so report partial success
			fmt.Printf("Warning: failed to reload hotkey: %v\n", err)
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{
				"status":  "partial",
				"message": fmt.Sprintf("Hotkey saved but reload failed: %v. Please restart the application.", err),
			})
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "success",
		"message": "Hotkey registered and applied successfully",
	})
}

// handleShortcut handles GET /api/shortcut. It describes how external
// automations (Apple Shortcuts, Automator, scripts) can drive the
// session through the gesture endpoint.
func (h *Handler) handleShortcut(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	port := h.config.Clone().ServerPort

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"endpoint":      fmt.Sprintf("http://127.0.0.1:%d/api/gesture", port),
		"start_command": gestureCommand(port, recording.GestureStart),
		"stop_command":  gestureCommand(port, recording.GestureStop),
	})
}

// handleShortcutCopy handles POST /api/shortcut/copy
func (h *Handler) handleShortcutCopy(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if h.clip == nil {
		http.Error(w, "Clipboard unavailable", http.StatusServiceUnavailable)
		return
	}

	var request struct {
		Action string `json:"action"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if request.Action != recording.GestureStart && request.Action != recording.GestureStop {
		http.Error(w, fmt.Sprintf("Unknown action: %s", request.Action), http.StatusBadRequest)
		return
	}

	command := gestureCommand(h.config.Clone().ServerPort, request.Action)

	if err := h.clip.CopyAndVerify(command); err != nil {
		http.Error(w, fmt.Sprintf("Failed to copy command: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status": "success",
	})
}

// handleShortcutInstall handles POST /api/shortcut/install
func (h *Handler) handleShortcutInstall(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if h.checker == nil {
		http.Error(w, "Permission checker unavailable", http.StatusServiceUnavailable)
		return
	}

	if err := h.checker.OpenShortcutsApp(); err != nil {
		http.Error(w, fmt.Sprintf("Failed to open Shortcuts: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status": "success",
	})
}

// gestureCommand builds the shell command an automation runs to fire a
// gesture
func gestureCommand(port int, action string) string {
	return fmt.Sprintf(
		`curl -s -X POST http://127.0.0.1:%d/api/gesture -H 'Content-Type: application/json' -d '{"action":"%s"}'`,
		port, action,
	)
}

// formatSize formats bytes to human-readable size
func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// formatDuration formats a duration as m:ss for display
func formatDuration(d time.Duration) string {
	total := int(d.Round(time.Second).Seconds())
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// hotkeyConfigToModifiers converts a HotkeyConfig to the modifier slice
// used by golang.design/x/hotkey
func hotkeyConfigToModifiers(hkConfig config.HotkeyConfig) []hk.Modifier {
	var mods []hk.Modifier
	if hkConfig.Ctrl {
		mods = append(mods, hk.ModCtrl)
	}
	if hkConfig.Shift {
		mods = append(mods, hk.ModShift)
	}
	if hkConfig.Alt {
		mods = append(mods, hk.ModOption)
	}
	if hkConfig.Cmd {
		mods = append(mods, hk.ModCmd)
	}
	return mods
}

// stringToKeyCode converts a display string to a key code
func stringToKeyCode(keyStr string) hk.Key {
	// Pressing the space key under some macOS IMEs produces U+00A0
	// instead of a plain space
	keyStr = strings.ReplaceAll(keyStr, "\u00a0", " ")
	if keyStr == " " {
		keyStr = "Space"
	}

	keyMap := map[string]hk.Key{
		"Space":  hk.KeySpace,
		"A":      hk.KeyA,
		"B":      hk.KeyB,
		"C":      hk.KeyC,
		"D":      hk.KeyD,
		"E":      hk.KeyE,
		"F":      hk.KeyF,
		"G":      hk.KeyG,
		"H":      hk.KeyH,
		"I":      hk.KeyI,
		"J":      hk.KeyJ,
		"K":      hk.KeyK,
		"L":      hk.KeyL,
		"M":      hk.KeyM,
		"N":      hk.KeyN,
		"O":      hk.KeyO,
		"P":      hk.KeyP,
		"Q":      hk.KeyQ,
		"R":      hk.KeyR,
		"S":      hk.KeyS,
		"T":      hk.KeyT,
		"U":      hk.KeyU,
		"V":      hk.KeyV,
		"W":      hk.KeyW,
		"X":      hk.KeyX,
		"Y":      hk.KeyY,
		"Z":      hk.KeyZ,
		"0":      hk.Key0,
		"1":      hk.Key1,
		"2":      hk.Key2,
		"3":      hk.Key3,
		"4":      hk.Key4,
		"5":      hk.Key5,
		"6":      hk.Key6,
		"7":      hk.Key7,
		"8":      hk.Key8,
		"9":      hk.Key9,
		"Escape": hk.KeyEscape,
		"Return": hk.KeyReturn,
		"Tab":    hk.KeyTab,
	}

	if key, ok := keyMap[keyStr]; ok {
		return key
	}

	// Fall back to the default hotkey's key
	return hk.KeyR
}

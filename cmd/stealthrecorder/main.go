package main

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/jime0083/StealthRecorder/internal/api"
	"github.com/jime0083/StealthRecorder/internal/audio"
	"github.com/jime0083/StealthRecorder/internal/clipboard"
	"github.com/jime0083/StealthRecorder/internal/config"
	"github.com/jime0083/StealthRecorder/internal/hotkey"
	"github.com/jime0083/StealthRecorder/internal/i18n"
	"github.com/jime0083/StealthRecorder/internal/logger"
	"github.com/jime0083/StealthRecorder/internal/notification"
	"github.com/jime0083/StealthRecorder/internal/permissions"
	"github.com/jime0083/StealthRecorder/internal/probe"
	"github.com/jime0083/StealthRecorder/internal/recording"
	"github.com/jime0083/StealthRecorder/internal/server"
	"github.com/jime0083/StealthRecorder/internal/store"
	"github.com/jime0083/StealthRecorder/internal/tray"
	"github.com/jime0083/StealthRecorder/internal/wizard"
	hk "golang.design/x/hotkey"
)

const version = "0.1.0"

// App holds all application state
type App struct {
	logger     *logger.Logger
	config     *config.Config
	trayMgr    *tray.Manager
	httpServer *server.Server
	apiHandler *api.Handler
	hotkeyMgr  *hotkey.Manager
	session    *recording.Manager
	store      *store.Store
	notifier   *notification.Manager
	clipboard  *clipboard.Manager
	wizard     *wizard.SetupWizard

	isFirstRun bool
}

func init() {
	// macOS UI and CGO calls must stay on the main thread
	runtime.LockOSThread()
}

func main() {
	app := &App{}

	loggerConfig := logger.DefaultConfig()
	var err error
	app.logger, err = logger.New(loggerConfig)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer app.logger.Close()

	app.logger.Info("StealthRecorder v%s starting", version)

	// Load settings
	configPath := config.GetConfigPath()
	app.config, err = config.Load(configPath)
	if err != nil {
		app.logger.Error("Failed to load config: %v", err)
		log.Fatalf("Failed to load config: %v", err)
	}
	app.logger.Info("Config loaded: %s", configPath)

	// UI language: config wins, otherwise follow the system
	language := i18n.DetectSystemLanguage()
	if i18n.ValidateLanguage(app.config.UILanguage) {
		language = i18n.Language(app.config.UILanguage)
	}
	i18n.GlobalTranslator = i18n.NewDefaultTranslator(language)

	app.wizard, err = wizard.NewSetupWizard()
	if err != nil {
		app.logger.Error("Failed to initialize setup wizard: %v", err)
	}

	app.isFirstRun = app.wizard != nil && app.wizard.ShouldShowOnboarding()

	app.clipboard = clipboard.NewManager(clipboard.DefaultConfig())
	app.notifier = notification.NewManager("StealthRecorder")

	// Recordings store
	recordingsDir, err := app.config.GetRecordingsDir()
	if err != nil {
		app.logger.Error("Failed to resolve recordings directory: %v", err)
		log.Fatalf("Failed to resolve recordings directory: %v", err)
	}
	app.store, err = store.New(recordingsDir)
	if err != nil {
		app.logger.Error("Failed to prepare recordings directory: %v", err)
		log.Fatalf("Failed to prepare recordings directory: %v", err)
	}
	app.logger.Info("Recordings directory: %s", app.store.Dir())

	// Capture backend
	recorder, err := audio.NewFFmpegRecorder(audio.DefaultConfig())
	if err != nil {
		app.logger.Error("Capture backend unavailable: %v", err)
		log.Fatalf("Capture backend unavailable: %v", err)
	}

	checker := permissions.NewChecker()

	// The one session manager every surface drives: tray, hotkey, API
	app.session = recording.New(recorder, app.store, checker, app.logger)

	// Settings server and API
	serverConfig := server.DefaultConfig()
	if app.config.ServerPort > 0 {
		serverConfig.Port = app.config.ServerPort
	}
	app.httpServer = server.New(serverConfig)

	app.apiHandler = api.New(api.Config{
		Settings:        app.config,
		Wizard:          app.wizard,
		Session:         app.session,
		Permissions:     checker,
		Clipboard:       app.clipboard,
		Prober:          probe.NewProber(),
		OnHotkeyChanged: app.ReloadHotkey,
		OnStateChanged:  app.syncTrayState,
	})
	app.apiHandler.RegisterRoutes(app.httpServer.Mux())
	app.logger.Info("API routes registered")

	app.trayMgr = tray.NewManager(tray.Config{
		OnReady:        app.onReady,
		OnStart:        func() { app.fireGesture(recording.GestureStart) },
		OnStop:         func() { app.fireGesture(recording.GestureStop) },
		OnOpenSettings: app.handleOpenSettings,
		OnOpenFolder:   app.handleOpenFolder,
		OnCopyPath:     app.handleCopyPath,
		OnQuit:         app.handleQuit,
	})

	app.logger.Info("Starting systray")

	// Blocks until Quit
	app.trayMgr.Run()
}

// onReady finishes startup once the systray is initialized
func (a *App) onReady() {
	a.logger.Info("systray ready, finishing startup")

	// Global hotkey
	a.hotkeyMgr = hotkey.New()

	hotkeyConfig := a.hotkeyConfigFromSettings()
	if err := a.hotkeyMgr.Register(hotkeyConfig); err != nil {
		a.logger.Error("Failed to register hotkey: %v", err)
		a.notify(a.notifier.SendError("Hotkey", fmt.Sprintf("Failed to register hotkey: %v", err)))
	} else {
		a.logger.Info("Hotkey registered: %s", hotkey.FormatHotkey(hotkeyConfig.Modifiers, hotkeyConfig.Key))
		go a.hotkeyEventLoop()
	}

	// Settings server
	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("Failed to start settings server: %v", err)
		a.notify(a.notifier.SendError("Settings", "The settings page could not be started"))
	}

	// First run opens the onboarding page
	if a.isFirstRun {
		a.logger.Info("First run detected, opening the settings page")
		a.handleOpenSettings()
	}

	// Ctrl+C quits cleanly
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		a.logger.Info("Shutdown signal received")
		a.handleQuit()
		a.trayMgr.Quit()
	}()

	a.logger.Info("Startup complete")
	a.printBanner()
}

// printBanner shows the settings URL and hotkey in the terminal
func (a *App) printBanner() {
	hotkeyDisplay := "not registered"
	if a.hotkeyMgr != nil && a.hotkeyMgr.IsRunning() {
		current := a.hotkeyMgr.GetConfig()
		hotkeyDisplay = hotkey.FormatHotkey(current.Modifiers, current.Key)
	}

	fmt.Println("\n==========================================================")
	fmt.Printf("StealthRecorder v%s is running\n", version)
	fmt.Println("==========================================================")
	fmt.Printf("Settings page:  %s\n", a.httpServer.URL())
	fmt.Printf("Hotkey:         %s\n", hotkeyDisplay)
	fmt.Printf("Recordings:     %s\n", a.store.Dir())
	fmt.Println("Quit with Ctrl+C or the menu bar icon")
	fmt.Println("==========================================================")
	fmt.Println()
}

// hotkeyEventLoop drains hotkey gestures until the manager closes
func (a *App) hotkeyEventLoop() {
	a.logger.Info("Hotkey event loop started")

	for event := range a.hotkeyMgr.Events() {
		a.fireGesture(event.Action)
	}

	a.logger.Info("Hotkey event loop stopped")
}

// fireGesture drives the shared session and keeps the tray and the
// hotkey toggle tracking in step, whichever surface triggered it
func (a *App) fireGesture(action string) {
	name, err := a.session.HandleGesture(action)
	if err != nil {
		a.logger.Error("Gesture %q failed: %v", action, err)
		a.notify(a.notifier.RecordingFailed(err.Error()))
		a.syncTrayState()
		return
	}

	switch action {
	case recording.GestureStart:
		if name == "" {
			a.notify(a.notifier.PermissionDenied())
		} else if a.config.Clone().NotifyOnRecord {
			a.notify(a.notifier.RecordingStarted())
		}
	case recording.GestureStop:
		if name != recording.StopResultIdle && a.config.Clone().NotifyOnRecord {
			a.notify(a.notifier.RecordingSaved(name))
		}
	}

	a.syncTrayState()
}

// syncTrayState reflects the session state onto the tray icon and the
// hotkey toggle tracking
func (a *App) syncTrayState() {
	active := a.session.IsActive()

	if active {
		a.trayMgr.SetState(tray.StateRecording)
	} else {
		a.trayMgr.SetState(tray.StateIdle)
	}

	if a.hotkeyMgr != nil {
		a.hotkeyMgr.SyncActive(active)
	}
}

// notify logs notification delivery failures instead of surfacing them
func (a *App) notify(err error) {
	if err != nil {
		a.logger.Warn("Notification failed: %v", err)
	}
}

// handleOpenSettings opens the settings page in the default browser
func (a *App) handleOpenSettings() {
	if !a.httpServer.IsRunning() {
		a.logger.Error("Settings server is not running")
		a.notify(a.notifier.SendError("Settings", "The settings page is unavailable. Restart the application."))
		return
	}

	url := a.httpServer.URL()
	a.logger.Info("Opening browser: %s", url)

	go func() {
		if err := exec.Command("open", url).Run(); err != nil {
			a.logger.Error("Failed to open browser: %v", err)
			fmt.Printf("Open the settings page manually: %s\n", url)
		}
	}()
}

// handleOpenFolder reveals the recordings folder in Finder
func (a *App) handleOpenFolder() {
	dir := a.store.Dir()
	a.logger.Info("Opening recordings folder: %s", dir)

	go func() {
		if err := exec.Command("open", dir).Run(); err != nil {
			a.logger.Error("Failed to open recordings folder: %v", err)
		}
	}()
}

// handleCopyPath puts the recordings folder path on the clipboard
func (a *App) handleCopyPath() {
	dir := a.store.Dir()

	if err := a.clipboard.CopyAndVerify(dir); err != nil {
		a.logger.Error("Failed to copy folder path: %v", err)
		a.notify(a.notifier.SendError("Clipboard", "Could not copy the folder path"))
		return
	}

	a.logger.Info("Copied recordings folder path")
	a.notify(a.notifier.SendInfo("Clipboard", "Recordings folder path copied"))
}

// handleQuit tears the application down in dependency order
func (a *App) handleQuit() {
	a.logger.Info("Shutdown requested")

	if a.httpServer != nil && a.httpServer.IsRunning() {
		if err := a.httpServer.Stop(); err != nil {
			a.logger.Error("Failed to stop settings server: %v", err)
		}
	}

	if a.hotkeyMgr != nil {
		if err := a.hotkeyMgr.Close(); err != nil {
			a.logger.Error("Failed to close hotkey manager: %v", err)
		}
	}

	if a.session != nil {
		if err := a.session.Close(); err != nil {
			a.logger.Error("Failed to close recording session: %v", err)
		}
	}

	a.logger.Info("Shutdown complete")
}

// ReloadHotkey re-registers the global hotkey from the current settings.
// The API handler calls this after saving a new hotkey.
func (a *App) ReloadHotkey() error {
	a.logger.Info("Hotkey reload requested")

	if a.hotkeyMgr == nil {
		a.logger.Warn("Hotkey reload: manager not initialized")
		return fmt.Errorf("hotkey manager not initialized")
	}

	newConfig := a.hotkeyConfigFromSettings()

	var oldConfig hotkey.Config
	needsRollback := false

	if a.hotkeyMgr.IsRunning() {
		oldConfig = a.hotkeyMgr.GetConfig()
		needsRollback = true

		if err := a.hotkeyMgr.Close(); err != nil {
			a.logger.Error("Failed to unregister old hotkey: %v", err)
			return fmt.Errorf("failed to unregister old hotkey: %w", err)
		}

		// Let the old event loop drain before channels are recreated
		time.Sleep(200 * time.Millisecond)
	}

	if err := a.hotkeyMgr.Register(newConfig); err != nil {
		a.logger.Error("Failed to register new hotkey: %v", err)

		if needsRollback {
			a.logger.Warn("Rolling back to the previous hotkey")
			if rollbackErr := a.hotkeyMgr.Register(oldConfig); rollbackErr != nil {
				a.logger.Error("Rollback failed: %v", rollbackErr)
				a.notify(a.notifier.SendError("Hotkey", "Hotkey registration failed. Restart the application."))
				return fmt.Errorf("failed to register new hotkey and rollback failed: %w, rollback error: %v", err, rollbackErr)
			}
			go a.hotkeyEventLoop()
			a.logger.Info("Rollback complete")
		}

		return fmt.Errorf("failed to register new hotkey: %w", err)
	}

	go a.hotkeyEventLoop()
	a.hotkeyMgr.SyncActive(a.session.IsActive())

	formatted := hotkey.FormatHotkey(newConfig.Modifiers, newConfig.Key)
	a.logger.Info("Hotkey registered: %s", formatted)
	a.notify(a.notifier.SendInfo("Hotkey", fmt.Sprintf("New hotkey: %s", formatted)))

	return nil
}

// hotkeyConfigFromSettings builds the hotkey registration from the
// shared application settings
func (a *App) hotkeyConfigFromSettings() hotkey.Config {
	settings := a.config.Clone()

	mode, err := hotkey.ModeFromString(settings.GestureMode)
	if err != nil {
		a.logger.Warn("Unknown gesture mode %q, using toggle", settings.GestureMode)
	}

	return hotkey.Config{
		Modifiers: configToModifiers(settings.Hotkey),
		Key:       stringToKey(settings.Hotkey.Key),
		Mode:      mode,
	}
}

// configToModifiers converts a HotkeyConfig to the modifier slice used
// by golang.design/x/hotkey
func configToModifiers(hkConfig config.HotkeyConfig) []hk.Modifier {
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

// stringToKey converts a display string to a key code
func stringToKey(keyStr string) hk.Key {
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

	// Default hotkey key
	return hk.KeyR
}

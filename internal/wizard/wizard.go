package wizard

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jime0083/StealthRecorder/internal/config"
)

// onboardingFlagFile marks that the user finished the first-run flow
const onboardingFlagFile = ".onboarding_completed"

// SetupWizard manages the initial application setup flow
type SetupWizard struct {
	configDir  string
	configPath string
	flagPath   string
	mu         sync.RWMutex
}

// NewSetupWizard creates a new setup wizard rooted at the application
// configuration directory
func NewSetupWizard() (*SetupWizard, error) {
	configPath := config.GetConfigPath()
	return NewSetupWizardAt(filepath.Dir(configPath))
}

// NewSetupWizardAt creates a setup wizard rooted at dir. Tests use this
// to avoid touching the real configuration directory.
func NewSetupWizardAt(dir string) (*SetupWizard, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	return &SetupWizard{
		configDir:  dir,
		configPath: filepath.Join(dir, "config.json"),
		flagPath:   filepath.Join(dir, onboardingFlagFile),
	}, nil
}

// IsFirstRun checks if this is the first run of the application
func (w *SetupWizard) IsFirstRun() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()

	// First run if config doesn't exist
	_, err := os.Stat(w.configPath)
	return os.IsNotExist(err)
}

// IsOnboardingCompleted checks if the first-run flow has been completed
func (w *SetupWizard) IsOnboardingCompleted() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()

	_, err := os.Stat(w.flagPath)
	return !os.IsNotExist(err)
}

// MarkOnboardingCompleted marks the first-run flow as completed
func (w *SetupWizard) MarkOnboardingCompleted() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	file, err := os.Create(w.flagPath)
	if err != nil {
		return fmt.Errorf("failed to create onboarding flag file: %w", err)
	}
	file.Close()

	return nil
}

// ShouldShowOnboarding returns true if the first-run flow should be
// shown. This is true if:
// 1. The application is running for the first time, OR
// 2. Onboarding has not been completed yet
func (w *SetupWizard) ShouldShowOnboarding() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()

	_, configErr := os.Stat(w.configPath)
	if os.IsNotExist(configErr) {
		return true
	}

	_, flagErr := os.Stat(w.flagPath)
	return os.IsNotExist(flagErr)
}

// Reset clears the onboarding state so the flow runs again
func (w *SetupWizard) Reset() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := os.Remove(w.flagPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove onboarding flag file: %w", err)
	}

	return nil
}

// GetConfigDir returns the configuration directory
func (w *SetupWizard) GetConfigDir() string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return w.configDir
}

// GetConfigPath returns the configuration file path
func (w *SetupWizard) GetConfigPath() string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return w.configPath
}

package wizard

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestWizard(t *testing.T) *SetupWizard {
	t.Helper()

	wizard, err := NewSetupWizardAt(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create wizard: %v", err)
	}
	return wizard
}

func TestNewSetupWizardAt(t *testing.T) {
	wizard := newTestWizard(t)

	if wizard.configDir == "" {
		t.Error("Expected configDir to be set")
	}

	if wizard.configPath == "" {
		t.Error("Expected configPath to be set")
	}

	if filepath.Base(wizard.flagPath) != onboardingFlagFile {
		t.Errorf("Expected flag file %s, got %s", onboardingFlagFile, filepath.Base(wizard.flagPath))
	}
}

func TestNewSetupWizardAtCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "config")

	wizard, err := NewSetupWizardAt(dir)
	if err != nil {
		t.Fatalf("Failed to create wizard: %v", err)
	}

	info, err := os.Stat(wizard.GetConfigDir())
	if err != nil {
		t.Fatalf("Config directory should exist: %v", err)
	}

	if !info.IsDir() {
		t.Error("Config path should be a directory")
	}
}

func TestIsFirstRun(t *testing.T) {
	wizard := newTestWizard(t)

	if !wizard.IsFirstRun() {
		t.Error("Expected IsFirstRun to return true when config doesn't exist")
	}

	file, err := os.Create(wizard.configPath)
	if err != nil {
		t.Fatalf("Failed to create dummy config: %v", err)
	}
	file.Close()

	if wizard.IsFirstRun() {
		t.Error("Expected IsFirstRun to return false when config exists")
	}
}

func TestIsOnboardingCompleted(t *testing.T) {
	wizard := newTestWizard(t)

	if wizard.IsOnboardingCompleted() {
		t.Error("Expected IsOnboardingCompleted to return false when flag doesn't exist")
	}

	if err := wizard.MarkOnboardingCompleted(); err != nil {
		t.Fatalf("Failed to mark onboarding completed: %v", err)
	}

	if !wizard.IsOnboardingCompleted() {
		t.Error("Expected IsOnboardingCompleted to return true after marking completed")
	}
}

func TestMarkOnboardingCompleted(t *testing.T) {
	wizard := newTestWizard(t)

	if err := wizard.MarkOnboardingCompleted(); err != nil {
		t.Fatalf("Failed to mark onboarding completed: %v", err)
	}

	if _, err := os.Stat(wizard.flagPath); err != nil {
		t.Errorf("Onboarding flag file was not created: %v", err)
	}

	// Marking twice should be fine
	if err := wizard.MarkOnboardingCompleted(); err != nil {
		t.Errorf("Expected repeated marking to succeed, got: %v", err)
	}
}

func TestShouldShowOnboarding(t *testing.T) {
	wizard := newTestWizard(t)

	// Should show when config doesn't exist
	if !wizard.ShouldShowOnboarding() {
		t.Error("Expected ShouldShowOnboarding to return true when config doesn't exist")
	}

	file, err := os.Create(wizard.configPath)
	if err != nil {
		t.Fatalf("Failed to create config: %v", err)
	}
	file.Close()

	// Should still show when onboarding not completed
	if !wizard.ShouldShowOnboarding() {
		t.Error("Expected ShouldShowOnboarding to return true when onboarding not completed")
	}

	if err := wizard.MarkOnboardingCompleted(); err != nil {
		t.Fatalf("Failed to mark onboarding completed: %v", err)
	}

	// Should not show once completed
	if wizard.ShouldShowOnboarding() {
		t.Error("Expected ShouldShowOnboarding to return false when onboarding is completed")
	}
}

func TestReset(t *testing.T) {
	wizard := newTestWizard(t)

	if err := wizard.MarkOnboardingCompleted(); err != nil {
		t.Fatalf("Failed to mark onboarding completed: %v", err)
	}

	if !wizard.IsOnboardingCompleted() {
		t.Error("Onboarding flag should have been created")
	}

	if err := wizard.Reset(); err != nil {
		t.Fatalf("Failed to reset: %v", err)
	}

	if wizard.IsOnboardingCompleted() {
		t.Error("Expected IsOnboardingCompleted to return false after reset")
	}

	// Resetting an already clean state should be fine
	if err := wizard.Reset(); err != nil {
		t.Errorf("Expected repeated reset to succeed, got: %v", err)
	}
}

func TestGetConfigPath(t *testing.T) {
	wizard := newTestWizard(t)

	configPath := wizard.GetConfigPath()

	if configPath == "" {
		t.Error("Expected configPath to be non-empty")
	}

	if filepath.Base(configPath) != "config.json" {
		t.Errorf("Expected config.json, got %s", filepath.Base(configPath))
	}
}

func TestConcurrentWizardOperations(t *testing.T) {
	wizard := newTestWizard(t)

	done := make(chan bool, 10)

	for i := 0; i < 10; i++ {
		go func() {
			wizard.IsOnboardingCompleted()
			wizard.ShouldShowOnboarding()
			wizard.IsFirstRun()
			done <- true
		}()
	}

	for i := 0; i < 10; i++ {
		<-done
	}

	// Should complete without race conditions
	t.Log("Concurrent operations completed successfully")
}

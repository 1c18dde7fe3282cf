package i18n

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
)

// Language represents a supported language
type Language string

const (
	// Japanese language
	LanguageJapanese Language = "ja"
	// English language
	LanguageEnglish Language = "en"
)

// Translator manages translations for the application
type Translator struct {
	currentLanguage Language
	translations    map[Language]map[string]string
	mu              sync.RWMutex
}

// NewTranslator creates a new translator with default language
func NewTranslator(language Language) *Translator {
	return &Translator{
		currentLanguage: language,
		translations:    make(map[Language]map[string]string),
	}
}

// NewDefaultTranslator creates a translator preloaded with the built-in
// English and Japanese catalogs
func NewDefaultTranslator(language Language) *Translator {
	t := NewTranslator(language)
	t.mu.Lock()
	t.translations[LanguageEnglish] = DefaultEnglishTranslations()
	t.translations[LanguageJapanese] = DefaultJapaneseTranslations()
	t.mu.Unlock()
	return t
}

// LoadTranslations loads translations from JSON data
func (t *Translator) LoadTranslations(language Language, data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var translations map[string]string
	if err := json.Unmarshal(data, &translations); err != nil {
		return fmt.Errorf("failed to unmarshal translations: %w", err)
	}

	t.translations[language] = translations
	return nil
}

// LoadTranslationsFromFile loads translations from a JSON file
func (t *Translator) LoadTranslationsFromFile(language Language, filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read translation file: %w", err)
	}

	return t.LoadTranslations(language, data)
}

// SetLanguage sets the current language
func (t *Translator) SetLanguage(language Language) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.currentLanguage = language
}

// GetLanguage returns the current language
func (t *Translator) GetLanguage() Language {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.currentLanguage
}

// Translate translates a key in the current language
func (t *Translator) Translate(key string) string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if translations, ok := t.translations[t.currentLanguage]; ok {
		if text, ok := translations[key]; ok {
			return text
		}
	}

	// Fallback to English if translation not found
	if t.currentLanguage != LanguageEnglish {
		if translations, ok := t.translations[LanguageEnglish]; ok {
			if text, ok := translations[key]; ok {
				return text
			}
		}
	}

	// Return key itself if no translation found
	return key
}

// TranslateWithFormat translates a key and formats with parameters
func (t *Translator) TranslateWithFormat(key string, params map[string]string) string {
	text := t.Translate(key)

	for param, value := range params {
		placeholder := fmt.Sprintf("{%s}", param)
		text = strings.ReplaceAll(text, placeholder, value)
	}

	return text
}

// GetAllTranslations returns all translations for the current language
func (t *Translator) GetAllTranslations() map[string]string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if translations, ok := t.translations[t.currentLanguage]; ok {
		// Return a copy to prevent external modifications
		result := make(map[string]string)
		for k, v := range translations {
			result[k] = v
		}
		return result
	}

	return make(map[string]string)
}

// HasTranslation checks if a translation key exists
func (t *Translator) HasTranslation(key string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if translations, ok := t.translations[t.currentLanguage]; ok {
		_, ok := translations[key]
		return ok
	}

	return false
}

// ValidateLanguage validates that a language is supported
func ValidateLanguage(language string) bool {
	return language == string(LanguageJapanese) || language == string(LanguageEnglish)
}

// DetectSystemLanguage detects the UI language from the LANG environment variable.
func DetectSystemLanguage() Language {
	lang := os.Getenv("LANG")
	if strings.HasPrefix(lang, "ja") {
		return LanguageJapanese
	}
	return LanguageEnglish
}

// GetSupportedLanguages returns a list of supported languages
func GetSupportedLanguages() []Language {
	return []Language{LanguageJapanese, LanguageEnglish}
}

// GlobalTranslator is the process-wide translator, set up in main.
var GlobalTranslator *Translator

// T translates using the global translator
func T(key string) string {
	if GlobalTranslator == nil {
		return key
	}
	return GlobalTranslator.Translate(key)
}

// TF translates with formatting using the global translator
func TF(key string, params map[string]string) string {
	if GlobalTranslator == nil {
		return key
	}
	return GlobalTranslator.TranslateWithFormat(key, params)
}

// DefaultEnglishTranslations returns default English translations
func DefaultEnglishTranslations() map[string]string {
	return map[string]string{
		// Menu items
		"menu.start":       "Start Recording",
		"menu.stop":        "Stop Recording",
		"menu.settings":    "Open Settings...",
		"menu.open_folder": "Open Recordings Folder",
		"menu.copy_folder": "Copy Folder Path",
		"menu.quit":        "Quit",

		// Settings
		"settings.title":          "StealthRecorder Settings",
		"settings.hotkey":         "Hotkey",
		"settings.gesture_mode":   "Gesture Mode",
		"settings.recordings_dir": "Recordings Folder",
		"settings.ui_language":    "UI Language",
		"settings.notifications":  "Notifications",
		"settings.save":           "Save",

		// Onboarding
		"onboarding.title":           "Welcome to StealthRecorder",
		"onboarding.step_permission": "Allow microphone access",
		"onboarding.step_shortcut":   "Set up the start/stop shortcut",
		"onboarding.step_test":       "Try a test recording",

		// Permissions
		"permission.microphone": "Microphone",
		"permission.granted":    "✓ Granted",
		"permission.denied":     "✗ Denied",
		"permission.request":    "Open Settings",

		// Errors
		"error.mic_permission_denied": "Microphone access denied",
		"error.recording_failed":      "Recording failed",

		// Notifications
		"notification.recording_started": "Recording started",
		"notification.recording_saved":   "Saved {file}",
		"notification.permission_denied": "Microphone access denied",
		"notification.recording_failed":  "Recording failed: {reason}",

		// Status
		"status.idle":      "Idle",
		"status.recording": "Recording",
	}
}

// DefaultJapaneseTranslations returns default Japanese translations
func DefaultJapaneseTranslations() map[string]string {
	return map[string]string{
		// Menu items
		"menu.start":       "録音を開始",
		"menu.stop":        "録音を停止",
		"menu.settings":    "設定を開く...",
		"menu.open_folder": "録音フォルダを開く",
		"menu.copy_folder": "フォルダパスをコピー",
		"menu.quit":        "終了",

		// Settings
		"settings.title":          "StealthRecorder 設定",
		"settings.hotkey":         "ホットキー",
		"settings.gesture_mode":   "ジェスチャーモード",
		"settings.recordings_dir": "録音フォルダ",
		"settings.ui_language":    "UI言語",
		"settings.notifications":  "通知",
		"settings.save":           "保存",

		// Onboarding
		"onboarding.title":           "StealthRecorder へようこそ",
		"onboarding.step_permission": "マイクへのアクセスを許可",
		"onboarding.step_shortcut":   "開始/停止ショートカットを設定",
		"onboarding.step_test":       "テスト録音を試す",

		// Permissions
		"permission.microphone": "マイク",
		"permission.granted":    "✓ 許可済み",
		"permission.denied":     "✗ 拒否",
		"permission.request":    "設定を開く",

		// Errors
		"error.mic_permission_denied": "マイクへのアクセスが拒否されました",
		"error.recording_failed":      "録音に失敗しました",

		// Notifications
		"notification.recording_started": "録音が開始されました",
		"notification.recording_saved":   "{file} を保存しました",
		"notification.permission_denied": "マイクへのアクセスが拒否されました",
		"notification.recording_failed":  "録音に失敗しました: {reason}",

		// Status
		"status.idle":      "待機中",
		"status.recording": "録音中",
	}
}

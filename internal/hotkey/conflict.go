package hotkey

import "golang.design/x/hotkey"

// ConflictInfo represents information about a known shortcut conflict
type ConflictInfo struct {
	Name        string
	Description string
	Modifiers   []hotkey.Modifier
	Key         hotkey.Key
}

// knownConflicts contains macOS shortcuts that commonly collide with a
// user-chosen recording hotkey
var knownConflicts = []ConflictInfo{
	{
		Name:        "Spotlight",
		Description: "macOS Spotlight search",
		Modifiers:   []hotkey.Modifier{hotkey.ModCmd},
		Key:         hotkey.KeySpace,
	},
	{
		Name:        "Alfred",
		Description: "Alfred launcher (common default)",
		Modifiers:   []hotkey.Modifier{hotkey.ModCmd},
		Key:         hotkey.KeySpace,
	},
	{
		Name:        "Raycast",
		Description: "Raycast launcher (common default)",
		Modifiers:   []hotkey.Modifier{hotkey.ModCmd},
		Key:         hotkey.KeySpace,
	},
	{
		Name:        "Screenshot",
		Description: "macOS full-screen screenshot",
		Modifiers:   []hotkey.Modifier{hotkey.ModCmd, hotkey.ModShift},
		Key:         hotkey.Key3,
	},
	{
		Name:        "Screen Capture",
		Description: "macOS screenshot and screen recording toolbar",
		Modifiers:   []hotkey.Modifier{hotkey.ModCmd, hotkey.ModShift},
		Key:         hotkey.Key5,
	},
	{
		Name:        "Force Quit",
		Description: "macOS Force Quit",
		Modifiers:   []hotkey.Modifier{hotkey.ModCmd, hotkey.ModOption},
		Key:         hotkey.KeyEscape,
	},
}

// CheckConflicts checks if the given hotkey conflicts with known system shortcuts
func CheckConflicts(modifiers []hotkey.Modifier, key hotkey.Key) []ConflictInfo {
	var conflicts []ConflictInfo

	for _, known := range knownConflicts {
		if hotkeyMatches(modifiers, key, known.Modifiers, known.Key) {
			conflicts = append(conflicts, known)
		}
	}

	return conflicts
}

// hotkeyMatches checks if two hotkey combinations are identical,
// ignoring modifier order
func hotkeyMatches(mods1 []hotkey.Modifier, key1 hotkey.Key, mods2 []hotkey.Modifier, key2 hotkey.Key) bool {
	if key1 != key2 {
		return false
	}

	if len(mods1) != len(mods2) {
		return false
	}

	modSet := make(map[hotkey.Modifier]bool)
	for _, mod := range mods2 {
		modSet[mod] = true
	}

	for _, mod := range mods1 {
		if !modSet[mod] {
			return false
		}
	}

	return true
}

// FormatHotkey returns a human-readable string representation of the hotkey
func FormatHotkey(modifiers []hotkey.Modifier, key hotkey.Key) string {
	result := ""

	for _, mod := range modifiers {
		switch mod {
		case hotkey.ModCtrl:
			result += "⌃"
		case hotkey.ModShift:
			result += "⇧"
		case hotkey.ModOption:
			result += "⌥"
		case hotkey.ModCmd:
			result += "⌘"
		}
	}

	result += keyToString(key)
	return result
}

// keyToString converts a hotkey.Key to a display string
func keyToString(key hotkey.Key) string {
	keyMap := map[hotkey.Key]string{
		hotkey.KeySpace:  "Space",
		hotkey.KeyEscape: "Esc",
		hotkey.KeyReturn: "Return",
		hotkey.KeyTab:    "Tab",
		hotkey.KeyDelete: "Delete",
	}

	if name, ok := keyMap[key]; ok {
		return name
	}

	if key >= hotkey.KeyA && key <= hotkey.KeyZ {
		return string(rune('A' + int(key-hotkey.KeyA)))
	}

	if key >= hotkey.Key0 && key <= hotkey.Key9 {
		return string(rune('0' + int(key-hotkey.Key0)))
	}

	return "Unknown"
}

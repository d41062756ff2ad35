package agent

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// hookEvents are the runtime events dwm needs to observe to track agent
// status.
var hookEvents = []string{
	"PreToolUse",
	"UserPromptSubmit",
	"Stop",
	"Notification",
	"SessionEnd",
}

// DefaultSettingsPath returns the agent runtime settings file that hook
// registrations are merged into.
func DefaultSettingsPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".claude", "settings.json"), nil
}

// SetupHooks merges dwm's hook registrations into the settings file at
// settingsPath, preserving any unrelated settings and hooks already present.
// Running it repeatedly is a no-op once the hooks are installed.
func SetupHooks(settingsPath, hookCommand string) error {
	settings := map[string]interface{}{}
	if data, err := os.ReadFile(settingsPath); err == nil {
		if err := json.Unmarshal(data, &settings); err != nil {
			return err
		}
	} else if !os.IsNotExist(err) {
		return err
	}

	hooks, _ := settings["hooks"].(map[string]interface{})
	if hooks == nil {
		hooks = map[string]interface{}{}
	}

	for _, event := range hookEvents {
		entries, _ := hooks[event].([]interface{})
		if hasHookCommand(entries, hookCommand) {
			continue
		}
		hooks[event] = append(entries, map[string]interface{}{
			"hooks": []interface{}{
				map[string]interface{}{
					"type":    "command",
					"command": hookCommand,
				},
			},
		})
	}
	settings["hooks"] = hooks

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(settingsPath), 0755); err != nil {
		return err
	}
	return os.WriteFile(settingsPath, append(data, '\n'), 0644)
}

// hasHookCommand reports whether any entry in the event's matcher list
// already runs the given command.
func hasHookCommand(entries []interface{}, command string) bool {
	for _, entry := range entries {
		m, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		inner, _ := m["hooks"].([]interface{})
		for _, h := range inner {
			hm, ok := h.(map[string]interface{})
			if !ok {
				continue
			}
			if hm["command"] == command {
				return true
			}
		}
	}
	return false
}

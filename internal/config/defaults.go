package config

// GetDefaults returns the default configuration values
func GetDefaults() map[string]interface{} {
	return map[string]interface{}{
		"registry_path":  "",
		"rules_path":     "",
		"templates_dir":  "",
		"max_properties": 20,
		"max_retries":    3,
		"backoff_ms":     500,
		"max_backoff_ms": 8000,
		"timeout":        120,
		"generator_cmd":  "",
		"generator_args": []string{},
		"id_strategy":    "deterministic",
		"log_level":      "warn",
		"concurrency":    4,
		"show_progress":  true,
		"state_dir":      "~/.specgate/state",
		"max_history":    500,
	}
}

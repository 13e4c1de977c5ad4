// Package config loads the multilogue settings file and the machine
// configuration.
//
// # Configuration Discovery
//
// Load follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/multilogue/config.toml
//  3. If the file doesn't exist, fall back to defaults
//  4. If the file exists but fields are missing or blank, use defaults
//
// # Default Values
//
//   - Config file: ~/.config/multilogue/config.toml
//   - Store: ~/.local/share/multilogue/store.toml
//   - Log directory: ~/.local/state/multilogue (log file multilogue.log)
//   - Machine config: ~/.config/multilogue/machine.jsonc
//   - Poll interval: 2 seconds
//
// # TOML Format
//
//	store_path = "~/.local/share/multilogue/store.toml"
//	log_dir = "~/.local/state/multilogue"
//	machine_config = "~/.config/multilogue/machine.jsonc"
//	settings = "temperature=0.7&max_output_tokens=256"
//	poll_seconds = 2
//
// The settings value is a query string; see package settings.
//
// # Machine Config
//
// The machine config is JSON with comments and trailing commas allowed:
//
//	{
//	  "token": "token",                // path on the token host
//	  "token_host": "https://localhost",
//	  "insecure_tls": true,            // local self-signed certificate
//	  "endpoint": "https://api.openai.com/v1",
//	  "model": "gpt-4o-mini",
//	  "speaker": "Machine",
//	  "system_prompt": "",
//	}
//
// Tilde expansion is performed on every path.
package config

// Package config provides world configuration management for SokoBlit.
//
// The config package handles:
//   - Loading world configurations from JSON or YAML files
//   - Schema and semantic validation
//   - Default configuration selection
//   - Building the authored world a config describes
//
// Configuration Format:
//
// A config names the world and where its authored tiles come from: a raw or
// zstd-packed map file (map_file, relative to the config directory), text
// layouts per level id, or both, with the layouts drawn over the map.
//
//	name: classic
//	start_level: 8
//	tick_rate_hz: 100
//	levels:
//	  "8":
//	    - "#######"
//	    - "#@ $ .#"
//	    - "#######"
//
// Layout characters are '#' wall, '$' crate, '.' crate home, '@' player
// home, ' ' floor and '-' blank.
//
// Validation:
//
// Every config is checked against an embedded JSON schema and then by
// engine.ValidateGameConfig. Failures wrap ErrInvalidConfig.
//
// Defaults:
//
// The default config is "classic" when present, otherwise the first valid
// config in the directory, otherwise the engine's built-in world under the
// id "builtin".
package config

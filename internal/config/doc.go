// Package config loads podscope configuration by layering three
// sources: built-in defaults, the user config at
// ~/.config/podscope/config.yaml, and the project config at
// ./.podscope/config.yaml. Later layers override earlier ones
// field by field.
package config

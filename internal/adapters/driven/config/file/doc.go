// Package file provides TOML-backed configuration adapters.
// Both documents live in the sitechat config directory and are meant
// to be hand-editable.
//
// Adapters:
//   - SettingsStore: typed application settings (config.toml)
//   - SourceStore: the crawl source directory (sources.toml)
package file

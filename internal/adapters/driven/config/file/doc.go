// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem.
//
// Adapters:
//   - ConfigStore: TOML-based settings storage (~/.sitechat/config.toml)
//   - PromptStore: editable prompt files (~/.sitechat/prompts/)
package file

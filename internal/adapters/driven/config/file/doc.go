// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data under the docqa config directory (~/.docqa).
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage
//   - PromptStore: answer prompt templates with on-disk overrides
package file

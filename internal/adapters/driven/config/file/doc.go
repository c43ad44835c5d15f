// Package file keeps docqa's user-editable state under ~/.docqa.
//
// ConfigStore reads and writes config.toml; PromptStore seeds and loads the
// answer prompts in prompts/.
package file

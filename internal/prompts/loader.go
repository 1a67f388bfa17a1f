// Package prompts holds the JSON prompt documents sent to the model and
// resolves them by file name and key. Files are embedded at build time and
// parsed once.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

//go:embed *.json
var promptFiles embed.FS

var (
	parsed   = make(map[string]map[string]string)
	parsedMu sync.RWMutex
)

// Get returns the prompt stored under key in the embedded file name
// (e.g. "mapping.json").
func Get(name, key string) (string, error) {
	file, err := load(name)
	if err != nil {
		return "", err
	}
	prompt, ok := file[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found in %s", key, name)
	}
	return prompt, nil
}

// MustGet is Get for prompts the caller cannot run without.
func MustGet(name, key string) string {
	prompt, err := Get(name, key)
	if err != nil {
		panic(fmt.Sprintf("failed to load prompt: %v", err))
	}
	return prompt
}

// Format substitutes {{.Key}} placeholders in template with values from data.
func Format(template string, data map[string]string) string {
	result := template
	for key, value := range data {
		result = strings.ReplaceAll(result, fmt.Sprintf("{{.%s}}", key), value)
	}
	return result
}

func load(name string) (map[string]string, error) {
	parsedMu.RLock()
	if file, ok := parsed[name]; ok {
		parsedMu.RUnlock()
		return file, nil
	}
	parsedMu.RUnlock()

	data, err := promptFiles.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file %s: %w", name, err)
	}
	var file map[string]string
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", name, err)
	}

	parsedMu.Lock()
	parsed[name] = file
	parsedMu.Unlock()
	return file, nil
}

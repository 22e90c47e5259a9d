package domain

import "encoding/json"

// ExecutionRequest asks the remote runner to execute a program.
type ExecutionRequest struct {
	Code     string `json:"code" binding:"required"`
	Language string `json:"language" binding:"required"`
}

// ExecutionResult is the runner's reply. Raw keeps the upstream body so it can be
// relayed to the caller unchanged.
type ExecutionResult struct {
	Output string          `json:"output"`
	Raw    json.RawMessage `json:"-"`
}

// SupportedLanguages maps a language name to the runner's version index.
var SupportedLanguages = map[string]string{
	"python3": "3",
	"java":    "3",
	"cpp":     "4",
	"nodejs":  "3",
	"c":       "4",
	"ruby":    "3",
	"go":      "3",
	"scala":   "3",
	"bash":    "3",
	"sql":     "3",
	"pascal":  "2",
	"csharp":  "3",
	"php":     "3",
	"swift":   "3",
	"rust":    "3",
	"r":       "3",
}

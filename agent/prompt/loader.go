package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/data.txt
	dataRaw string

	//go:embed template/support.txt
	supportRaw string
)

// PromptSet holds loaded prompt content.
type PromptSet struct {
	Data    string
	Support string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
// This is safe to call concurrently; the embed is compile-time, and trimming is cheap.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Data:    strings.TrimSpace(dataRaw),
		Support: strings.TrimSpace(supportRaw),
	}
}

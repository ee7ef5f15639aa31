package openrouter

// Model describes a completion model offered to the user.
type Model struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Provider    string `json:"provider"`
	Description string `json:"description"`
	Cost        string `json:"cost"`
	Recommended bool   `json:"recommended"`
}

// FreeModels returns the static catalogue shown before the backend's model
// list has loaded. Purely descriptive metadata, no network call.
func FreeModels() []Model {
	return []Model{
		{
			ID:          "openrouter/meta-llama/llama-3.1-8b-instruct:free",
			Name:        "Llama 3.1 8B Instruct (Free)",
			Provider:    "Meta",
			Description: "Fast and efficient for content generation",
			Cost:        "Free",
			Recommended: true,
		},
		{
			ID:          "openrouter/microsoft/phi-3-mini-128k-instruct:free",
			Name:        "Phi-3 Mini 128K (Free)",
			Provider:    "Microsoft",
			Description: "Compact model with good performance",
			Cost:        "Free",
			Recommended: false,
		},
		{
			ID:          "openrouter/google/gemma-2-9b-it:free",
			Name:        "Gemma 2 9B IT (Free)",
			Provider:    "Google",
			Description: "Advanced instruction-tuned model",
			Cost:        "Free",
			Recommended: false,
		},
		{
			ID:          "openrouter/anthropic/claude-3-haiku",
			Name:        "Claude 3 Haiku",
			Provider:    "Anthropic",
			Description: "Fast and cost-effective Claude model",
			Cost:        "Paid",
			Recommended: false,
		},
	}
}

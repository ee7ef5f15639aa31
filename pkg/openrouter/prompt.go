// Package openrouter builds generation prompts and routes them either
// through the backend's /ai endpoints or straight to OpenRouter's
// OpenAI-compatible API when an API key is configured.
package openrouter

import "fmt"

// DefaultModel is the free-tier model used when nothing is configured.
const DefaultModel = "openrouter/meta-llama/llama-3.1-8b-instruct:free"

// Post length presets. Unknown values fall back to LengthMedium.
const (
	LengthShort  = "short"
	LengthMedium = "medium"
	LengthLong   = "long"
)

var lengthRanges = map[string]string{
	LengthShort:  "50-100 words",
	LengthMedium: "100-200 words",
	LengthLong:   "200-300 words",
}

// PostParams parameterizes a LinkedIn post generation request.
// Zero values mean "use the default"; the nilable booleans distinguish an
// explicit false from unset.
type PostParams struct {
	Topic           string
	Tone            string
	Length          string
	IncludeHashtags *bool
	IncludeEmojis   *bool
	CustomPrompt    string
	Model           string
}

func (p *PostParams) withDefaults() PostParams {
	out := *p
	if out.Tone == "" {
		out.Tone = "professional"
	}
	if out.Length == "" {
		out.Length = LengthMedium
	}
	if out.Model == "" {
		out.Model = DefaultModel
	}
	return out
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

// BuildPostPrompt renders the generation prompt for the given parameters.
// A custom prompt template overrides the built-in one entirely.
func BuildPostPrompt(params PostParams) string {
	p := params.withDefaults()

	if p.CustomPrompt != "" {
		return p.CustomPrompt
	}

	words, ok := lengthRanges[p.Length]
	if !ok {
		words = lengthRanges[LengthMedium]
	}

	hashtagLine := "Do not include hashtags"
	if boolOr(p.IncludeHashtags, true) {
		hashtagLine = "Include 3-5 relevant hashtags at the end"
	}

	emojiLine := "Do not use emojis"
	if boolOr(p.IncludeEmojis, false) {
		emojiLine = "Use appropriate emojis sparingly"
	}

	return fmt.Sprintf(`Generate a %s LinkedIn post about %q.

Requirements:
- Length: %s
- Tone: %s
- %s
- %s
- Make it sound human and authentic
- Provide value or insights
- End with a question to encourage engagement

Post:`, p.Tone, p.Topic, words, p.Tone, hashtagLine, emojiLine)
}

// Analysis types understood by AnalysisPrompt.
const (
	AnalysisEngagement = "engagement"
	AnalysisTone       = "tone"
	AnalysisHashtags   = "hashtags"
)

// AnalysisPrompt renders the analysis prompt for the given type.
// Unknown types default to the engagement analysis.
func AnalysisPrompt(content, analysisType string) string {
	switch analysisType {
	case AnalysisTone:
		return fmt.Sprintf("Analyze the tone of this LinkedIn post. Identify the primary tone and suggest improvements:\n\n%q", content)
	case AnalysisHashtags:
		return fmt.Sprintf("Suggest 5 optimal hashtags for this LinkedIn post:\n\n%q", content)
	default:
		return fmt.Sprintf("Analyze this LinkedIn post for engagement potential. Rate it 1-10 and provide specific suggestions for improvement:\n\n%q", content)
	}
}

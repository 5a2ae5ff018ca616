package prompts

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingVariable reports a template placeholder with no value supplied.
var ErrMissingVariable = errors.New("missing prompt variable")

// wordCounts maps the summary length presets to target word ranges.
var wordCounts = map[string]string{
	"short":  "100-150",
	"medium": "200-300",
	"long":   "400-500",
}

// Render substitutes every {name} placeholder in template with its value
// from vars. The same placeholder may appear more than once. A placeholder
// without a value reports ErrMissingVariable; extra vars are ignored.
func Render(template string, vars map[string]string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(template); {
		if template[i] != '{' {
			b.WriteByte(template[i])
			i++
			continue
		}
		end := strings.IndexByte(template[i+1:], '}')
		if end < 0 {
			b.WriteByte(template[i])
			i++
			continue
		}
		name := template[i+1 : i+1+end]
		val, ok := vars[name]
		if !ok {
			return "", fmt.Errorf("%w: {%s}", ErrMissingVariable, name)
		}
		b.WriteString(val)
		i += end + 2
	}
	return b.String(), nil
}

// FormatQA fills the main question answering prompt.
func FormatQA(context, chatHistory, question string) (string, error) {
	return Render(QASystemPrompt, map[string]string{
		"context":      context,
		"chat_history": chatHistory,
		"question":     question,
	})
}

// FormatComparison fills the source comparison prompt.
func FormatComparison(sourcesContent, sourceBreakdown string) (string, error) {
	return Render(SourceComparisonPrompt, map[string]string{
		"sources_content":  sourcesContent,
		"source_breakdown": sourceBreakdown,
	})
}

// FormatSummary fills the summary prompt. Unknown length presets fall back
// to the medium word range; empty tone and length get the defaults.
func FormatSummary(content, tone, length string) (string, error) {
	if tone == "" {
		tone = "casual"
	}
	if length == "" {
		length = "medium"
	}
	wc, ok := wordCounts[length]
	if !ok {
		wc = "200-300"
	}
	return Render(SummaryPrompt, map[string]string{
		"content":    content,
		"tone":       tone,
		"length":     length,
		"word_count": wc,
	})
}

// FormatSentiment fills the sentiment analysis prompt.
func FormatSentiment(text, source string) (string, error) {
	return Render(SentimentAnalysisPrompt, map[string]string{
		"text":   text,
		"source": source,
	})
}

// FormatFactExtraction fills the fact extraction prompt.
func FormatFactExtraction(text, source string) (string, error) {
	return Render(FactExtractionPrompt, map[string]string{
		"text":   text,
		"source": source,
	})
}

// FormatMultiQuery fills the query rephrasing prompt.
func FormatMultiQuery(question string) (string, error) {
	return Render(MultiQueryPrompt, map[string]string{
		"question": question,
	})
}

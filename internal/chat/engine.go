package chat

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/rageebridwan/newsmind/internal/memory"
	"github.com/rageebridwan/newsmind/internal/prompts"
	"github.com/rageebridwan/newsmind/internal/rag"
	"github.com/rageebridwan/newsmind/provider"
	"github.com/rageebridwan/newsmind/session"
)

const (
	// noHistory stands in for the chat history block on the first turn.
	noHistory = "No previous conversation"

	noSourcesMsg = "No sources to compare."
	noContentMsg = "No content to summarize."
)

// Engine orchestrates retrieval, prompt assembly and generation over a
// session's corpus. It is stateless; all per-user state lives in the
// session passed to each call.
type Engine struct {
	llm    provider.Generator
	topK   int
	window int
	logger *log.Logger
}

// Answer is the response to one question with its supporting evidence.
type Answer struct {
	Answer      string       `json:"answer"`
	Sources     []rag.Source `json:"sources"`
	ContextUsed string       `json:"context_used"`
}

// SourceAnalysis is the sentiment verdict for one source.
type SourceAnalysis struct {
	Source   string `json:"source"`
	Analysis string `json:"analysis"`
}

// SourceFacts is the extracted claims for one source.
type SourceFacts struct {
	Source string `json:"source"`
	Facts  string `json:"facts"`
}

// NewEngine creates an Engine. topK is how many chunks back each answer,
// window how many past turns feed the chat history block.
func NewEngine(llm provider.Generator, topK, window int) *Engine {
	if topK <= 0 {
		topK = 5
	}
	if window <= 0 {
		window = 3
	}
	return &Engine{
		llm:    llm,
		topK:   topK,
		window: window,
		logger: log.New(log.Writer(), "[CHAT] ", log.LstdFlags),
	}
}

// Ask answers a question from the session's corpus. The exchange is
// recorded in conversation memory only after generation succeeds, so a
// failed call leaves the history untouched.
func (e *Engine) Ask(ctx context.Context, sess *session.Session, question string) (Answer, error) {
	res, err := sess.Pipeline().GetContext(ctx, question, e.topK)
	if err != nil {
		return Answer{}, err
	}

	history := formatHistory(sess.Memory().Recent(e.window))
	prompt, err := prompts.FormatQA(res.Context, history, question)
	if err != nil {
		return Answer{}, err
	}

	answer, err := e.llm.Generate(ctx, prompt)
	if err != nil {
		return Answer{}, fmt.Errorf("%w: %w", rag.ErrGenerationService, err)
	}

	sess.Memory().Append(question, answer)
	e.logger.Printf("answered question for session %s (sources=%d)", sess.ID(), len(res.Sources))
	return Answer{Answer: answer, Sources: res.Sources, ContextUsed: res.Context}, nil
}

// CompareSources contrasts how each ingested source covers the topic,
// sampling up to three chunks per source. An empty corpus returns a fixed
// notice without calling the model.
func (e *Engine) CompareSources(ctx context.Context, sess *session.Session) (string, error) {
	pipe := sess.Pipeline()
	if pipe.ChunkCount() == 0 {
		return noSourcesMsg, nil
	}

	var entries []string
	var breakdown []string
	for _, src := range pipe.AllSources() {
		var texts []string
		for _, c := range pipe.ChunksBySource(src.Source, 3) {
			texts = append(texts, c.Content)
		}
		entries = append(entries, fmt.Sprintf("**%s:**\n%s\n", src.Source, strings.Join(texts, "\n")))
		breakdown = append(breakdown, fmt.Sprintf("- %s: %s", src.Source, src.Title))
	}

	prompt, err := prompts.FormatComparison(strings.Join(entries, "\n---\n"), strings.Join(breakdown, "\n"))
	if err != nil {
		return "", err
	}
	out, err := e.llm.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %w", rag.ErrGenerationService, err)
	}
	return out, nil
}

// GenerateSummary summarizes the first ten chunks of the corpus in the
// requested tone and length. An empty corpus returns a fixed notice
// without calling the model.
func (e *Engine) GenerateSummary(ctx context.Context, sess *session.Session, tone, length string) (string, error) {
	pipe := sess.Pipeline()
	if pipe.ChunkCount() == 0 {
		return noContentMsg, nil
	}

	var texts []string
	for _, c := range pipe.FirstChunks(10) {
		texts = append(texts, c.Content)
	}
	prompt, err := prompts.FormatSummary(strings.Join(texts, "\n\n"), tone, length)
	if err != nil {
		return "", err
	}
	out, err := e.llm.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %w", rag.ErrGenerationService, err)
	}
	return out, nil
}

// AnalyzeSentiment runs a sentiment analysis per source over up to two of
// its chunks, in corpus order. An empty corpus yields an empty list.
func (e *Engine) AnalyzeSentiment(ctx context.Context, sess *session.Session) ([]SourceAnalysis, error) {
	pipe := sess.Pipeline()
	var out []SourceAnalysis
	for _, src := range pipe.AllSources() {
		var texts []string
		for _, c := range pipe.ChunksBySource(src.Source, 2) {
			texts = append(texts, c.Content)
		}
		prompt, err := prompts.FormatSentiment(strings.Join(texts, "\n"), src.Source)
		if err != nil {
			return nil, err
		}
		analysis, err := e.llm.Generate(ctx, prompt)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", rag.ErrGenerationService, err)
		}
		out = append(out, SourceAnalysis{Source: src.Source, Analysis: analysis})
	}
	return out, nil
}

// ExtractFacts pulls the key claims out of each source, sampling up to
// three of its chunks. An empty corpus yields an empty list.
func (e *Engine) ExtractFacts(ctx context.Context, sess *session.Session) ([]SourceFacts, error) {
	pipe := sess.Pipeline()
	var out []SourceFacts
	for _, src := range pipe.AllSources() {
		var texts []string
		for _, c := range pipe.ChunksBySource(src.Source, 3) {
			texts = append(texts, c.Content)
		}
		prompt, err := prompts.FormatFactExtraction(strings.Join(texts, "\n"), src.Source)
		if err != nil {
			return nil, err
		}
		facts, err := e.llm.Generate(ctx, prompt)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", rag.ErrGenerationService, err)
		}
		out = append(out, SourceFacts{Source: src.Source, Facts: facts})
	}
	return out, nil
}

// SuggestQueries asks the model for alternative phrasings of a question
// and parses them out of the numbered reply.
func (e *Engine) SuggestQueries(ctx context.Context, question string) ([]string, error) {
	prompt, err := prompts.FormatMultiQuery(question)
	if err != nil {
		return nil, err
	}
	out, err := e.llm.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", rag.ErrGenerationService, err)
	}
	return parseNumbered(out), nil
}

// ClearMemory wipes the session's conversation history. The corpus stays.
func (e *Engine) ClearMemory(sess *session.Session) {
	sess.Memory().Clear()
}

// formatHistory renders past turns as alternating Human/Assistant lines.
func formatHistory(turns []memory.Turn) string {
	if len(turns) == 0 {
		return noHistory
	}
	var lines []string
	for _, t := range turns {
		lines = append(lines, "Human: "+t.Question, "Assistant: "+t.Answer)
	}
	return strings.Join(lines, "\n")
}

// parseNumbered extracts the items of a numbered list, tolerating "1." and
// "1)" markers and skipping blank or unnumbered lines.
func parseNumbered(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		i := 0
		for i < len(line) && line[i] >= '0' && line[i] <= '9' {
			i++
		}
		if i == 0 || i >= len(line) {
			continue
		}
		if line[i] != '.' && line[i] != ')' {
			continue
		}
		if item := strings.TrimSpace(line[i+1:]); item != "" {
			out = append(out, item)
		}
	}
	return out
}

package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/rageebridwan/newsmind/config"
	"github.com/rageebridwan/newsmind/internal/chat"
	"github.com/rageebridwan/newsmind/internal/helpers"
	"github.com/rageebridwan/newsmind/internal/rag"
	"github.com/rageebridwan/newsmind/provider"
	"github.com/rageebridwan/newsmind/session"
	"github.com/rageebridwan/newsmind/tools/web_fetch"
)

func chatCMD() *cobra.Command {
	var cfgPath string
	var urls []string
	var chatCmd = &cobra.Command{
		Use:   "chat",
		Short: "Scrape articles and chat about them in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(urls) == 0 {
				return errors.New("at least one --url is required")
			}
			cfg := config.LoadConfig(cfgPath)

			return runChat(cmd, cfg, urls)
		},
	}
	chatCmd.Flags().StringArrayVar(&urls, "url", nil, "article URL to ingest (repeatable)")
	chatCmd.Flags().StringVarP(&cfgPath, "config", "c", "", "config file (default searches ./config, . and the binary dir)")

	return chatCmd
}

func runChat(cmd *cobra.Command, cfg *config.Config, rawURLs []string) error {
	ctx := cmd.Context()

	llm, err := provider.NewProvider(provider.Config{
		Type:           provider.Client(cfg.LLM.Provider),
		BaseURL:        cfg.LLM.BaseURL,
		APIKey:         cfg.LLM.APIKey,
		Model:          cfg.LLM.Model,
		EmbeddingModel: cfg.LLM.EmbeddingModel,
		Temperature:    cfg.LLM.Temperature,
		MaxTokens:      cfg.LLM.MaxTokens,
		Timeout:        cfg.LLM.Timeout,
	})
	if err != nil {
		return err
	}
	fetcher, err := web_fetch.NewWebFetcher(web_fetch.FetcherType(cfg.Fetch.Strategy), cfg.Fetch.Timeout, cfg.Fetch.MaxChars)
	if err != nil {
		return err
	}

	var urls []string
	for _, raw := range rawURLs {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if canon, err := helpers.CanonicalURL(raw); err == nil {
			raw = canon
		}
		urls = append(urls, raw)
	}
	if len(urls) == 0 {
		return errors.New("at least one --url is required")
	}

	sess, err := session.New(uuid.NewString(), cfg.Server.SessionTTL, rag.NewPipeline(llm, rag.NewSplitter(cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)))
	if err != nil {
		return err
	}
	engine := chat.NewEngine(llm, cfg.RAG.TopK, cfg.RAG.HistoryWindow)

	cmd.Printf("Fetching %d article(s)...\n", len(urls))
	pages, err := web_fetch.FetchAll(ctx, fetcher, urls, cfg.Fetch.Delay)
	if err != nil {
		return err
	}
	for _, p := range pages {
		if p.Success {
			cmd.Printf("  ok    %s (%s)\n", p.Title, p.Source)
		} else {
			cmd.Printf("  fail  %s: %s\n", p.URL, p.Content)
		}
	}
	report, err := sess.Ingest(ctx, pages)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}
	cmd.Printf("Ingested %d documents, split into %d chunks.\n\n", report.Documents, report.Chunks)
	cmd.Println("Ask a question, or use /summary [tone] [length], /compare, /sentiment, /facts, /sources, /clear, /quit.")

	reader := bufio.NewReader(os.Stdin)
	for {
		cmd.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				cmd.Println()
				return nil
			}
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") {
			if quit := dispatch(ctx, cmd, engine, sess, line); quit {
				return nil
			}
			continue
		}
		ans, err := engine.Ask(ctx, sess, line)
		if err != nil {
			cmd.Printf("error: %v\n", err)
			continue
		}
		cmd.Println(ans.Answer)
		if len(ans.Sources) > 0 {
			names := make([]string, len(ans.Sources))
			for i, s := range ans.Sources {
				names[i] = s.Source
			}
			cmd.Printf("sources: %s\n", strings.Join(names, ", "))
		}
		cmd.Println()
	}
}

// dispatch handles one slash command; it reports whether the loop should
// exit.
func dispatch(ctx context.Context, cmd *cobra.Command, engine *chat.Engine, sess *session.Session, line string) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case "/quit", "/exit":
		return true
	case "/summary":
		var tone, length string
		if len(fields) > 1 {
			tone = fields[1]
		}
		if len(fields) > 2 {
			length = fields[2]
		}
		out, err := engine.GenerateSummary(ctx, sess, tone, length)
		if err != nil {
			cmd.Printf("error: %v\n", err)
			return false
		}
		cmd.Println(out)
	case "/compare":
		out, err := engine.CompareSources(ctx, sess)
		if err != nil {
			cmd.Printf("error: %v\n", err)
			return false
		}
		cmd.Println(out)
	case "/sentiment":
		results, err := engine.AnalyzeSentiment(ctx, sess)
		if err != nil {
			cmd.Printf("error: %v\n", err)
			return false
		}
		for _, r := range results {
			cmd.Printf("%s:\n%s\n\n", r.Source, r.Analysis)
		}
	case "/facts":
		results, err := engine.ExtractFacts(ctx, sess)
		if err != nil {
			cmd.Printf("error: %v\n", err)
			return false
		}
		for _, r := range results {
			cmd.Printf("%s:\n%s\n\n", r.Source, r.Facts)
		}
	case "/sources":
		for _, s := range sess.Pipeline().AllSources() {
			cmd.Printf("- %s: %s\n  %s\n", s.Source, s.Title, s.URL)
		}
	case "/clear":
		engine.ClearMemory(sess)
		cmd.Println("Conversation history cleared.")
	default:
		cmd.Printf("unknown command %s (try /summary, /compare, /sentiment, /facts, /sources, /clear, /quit)\n", fields[0])
	}
	return false
}

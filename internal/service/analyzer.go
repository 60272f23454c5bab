package service

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"secrecy-ai/internal/chat"
	"secrecy-ai/internal/contextutil"
	"secrecy-ai/internal/ledger"
	"secrecy-ai/internal/modes"
)

// CompetitorAnalysis is the structured report for one analyzed site.
type CompetitorAnalysis struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
	Strategies   []string `json:"strategies"`
	URL          string   `json:"url"`
}

// AnalyzerService runs competitor website analysis.
type AnalyzerService interface {
	Analyze(ctx context.Context, userID, url string) (*CompetitorAnalysis, error)
	PinToNotes(ctx context.Context, userID string, analysis *CompetitorAnalysis) (*chat.Note, error)
}

// analyzerService implements AnalyzerService. Analysis is metered at the
// research mode rate since both hit the model with a web-analysis prompt.
type analyzerService struct {
	llm    CompletionClient
	tokens *ledger.Ledger
	notes  NoteService
}

// NewAnalyzerService creates a new AnalyzerService.
func NewAnalyzerService(llm CompletionClient, tokens *ledger.Ledger, notes NoteService) AnalyzerService {
	return &analyzerService{llm: llm, tokens: tokens, notes: notes}
}

const analysisPromptTemplate = `
Analyze the website at %s and provide detailed competitor insights in simple, clear language suitable for grade 4 reading level.

Please respond in JSON format with the following structure:
{
  "title": "Website/Company Name",
  "description": "Brief description of what they do in simple words",
  "technologies": ["tech1", "tech2", "tech3"],
  "strengths": ["strength1", "strength2", "strength3"],
  "improvements": ["improvement1", "improvement2", "improvement3"],
  "strategies": ["strategy1", "strategy2", "strategy3"]
}

Focus on:
1. Their main value proposition and target audience (explain in simple terms)
2. Technologies they likely use (based on design patterns, features)
3. Their key strengths and competitive advantages (use clear, simple language)
4. Areas where they could improve (explain why in simple terms)
5. Actionable strategies to outperform them (give practical advice)

Use simple words and short sentences. Make everything easy to understand. Avoid jargon and technical terms unless necessary, and explain them if used.
`

// jsonBlock grabs the outermost braced block from a model reply that may
// wrap the JSON in prose or code fences.
var jsonBlock = regexp.MustCompile(`\{[\s\S]*\}`)

// Analyze charges the user and asks the model for a structured report on the
// site. Replies that are not parseable JSON still produce a usable report
// with generic findings.
func (s *analyzerService) Analyze(ctx context.Context, userID, url string) (*CompetitorAnalysis, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if userID == "" {
		return nil, ErrUnauthorized
	}
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, &ValidationError{Field: "url", Message: "cannot be empty"}
	}

	cost := modes.Search.Cost()
	ok, err := s.tokens.Deduct(ctx, userID, cost)
	if err != nil {
		return nil, WrapError(err, "failed to charge tokens")
	}
	if !ok {
		return nil, ErrInsufficientTokens
	}

	prompt := fmt.Sprintf(analysisPromptTemplate, url)
	reply, err := s.llm.Generate(ctx, prompt, modes.Search.Temperature())
	if err != nil {
		logger.ErrorContext(ctx, "analysis generation failed", "url", url, "error", err)
		return nil, WrapError(ErrExternalService, "analysis failed")
	}

	analysis := parseAnalysis(reply, url)
	logger.InfoContext(ctx, "competitor analysis completed", "url", url, "cost", cost)
	return analysis, nil
}

// parseAnalysis extracts the JSON report from the reply, falling back to a
// generic report built around the raw reply text.
func parseAnalysis(reply, url string) *CompetitorAnalysis {
	if match := jsonBlock.FindString(reply); match != "" {
		var analysis CompetitorAnalysis
		if err := json.Unmarshal([]byte(match), &analysis); err == nil {
			analysis.URL = url
			return &analysis
		}
	}

	description := reply
	if len(description) > 200 {
		description = description[:200] + "..."
	}
	return &CompetitorAnalysis{
		Title:        fmt.Sprintf("Competitor Analysis - %s", url),
		Description:  description,
		Technologies: []string{"Modern Web Stack", "Responsive Design", "User Analytics"},
		Strengths:    []string{"Market Position", "User Engagement", "Content Quality"},
		Improvements: []string{"Performance", "Accessibility", "Mobile Experience"},
		Strategies:   []string{"Differentiate Features", "Improve UX", "Content Marketing"},
		URL:          url,
	}
}

// PinToNotes saves the analysis as a formatted note.
func (s *analyzerService) PinToNotes(ctx context.Context, userID string, analysis *CompetitorAnalysis) (*chat.Note, error) {
	title := fmt.Sprintf("🎯 Competitor Analysis: %s", analysis.Title)
	return s.notes.CreateNote(ctx, userID, title, formatAnalysisNote(analysis))
}

func formatAnalysisNote(a *CompetitorAnalysis) string {
	bullets := func(items []string) string {
		lines := make([]string, len(items))
		for i, item := range items {
			lines[i] = "• " + item
		}
		return strings.Join(lines, "\n")
	}

	return fmt.Sprintf(`🎯 COMPETITOR ANALYSIS REPORT

Website: %s
Company: %s

📋 OVERVIEW:
%s

🔧 TECHNOLOGIES USED:
%s

💪 THEIR STRENGTHS:
%s

🔄 AREAS TO IMPROVE:
%s

🚀 OUR WINNING STRATEGIES:
%s

🌐 Analyzed URL: %s`,
		a.URL, a.Title, a.Description,
		bullets(a.Technologies), bullets(a.Strengths),
		bullets(a.Improvements), bullets(a.Strategies), a.URL)
}

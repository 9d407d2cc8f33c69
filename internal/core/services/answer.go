package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/prescribewise/prescribewise-cli/internal/core/domain"
	"github.com/prescribewise/prescribewise-cli/internal/core/ports/driven"
	"github.com/prescribewise/prescribewise-cli/internal/core/ports/driving"
	"github.com/prescribewise/prescribewise-cli/internal/logger"
)

// Ensure Answerer implements the interface.
var _ driving.AskService = (*Answerer)(nil)

// answerMaxTokens bounds the generated reply length.
const answerMaxTokens = 1200

// answerTemperature keeps generation close to the source text.
const answerTemperature = 0.2

const systemPromptTemplate = `You are PrescribeWise, an assistant helping health workers prescribe antibiotics rationally, answering strictly from %s.

Rules:
- Answer only from the provided source excerpts. If they do not contain the information asked for, say so plainly instead of guessing.
- Always state the WHO AWaRe group (ACCESS, WATCH or RESERVE) of any antibiotic you mention.
- Include dosing, duration, contraindications and monitoring when the excerpts provide them.
- Cite pages using the page numbers given in the source headers. Never invent page numbers.
- Answer what is asked. If asked for first-line treatment, do not list alternatives unprompted.`

// Answerer turns a question into a grounded, cited answer. It retrieves
// candidate passages, drops everything below the relevance floor, and hands
// the surviving passages to the generator as the only permitted source
// material.
type Answerer struct {
	settings  domain.AppSettings
	retriever driving.RetrievalService
	llm       driven.LLMService
}

// NewAnswerer creates an answer service. The LLM service may be nil, in
// which case Ask reports domain.ErrLLMUnavailable.
func NewAnswerer(settings domain.AppSettings, retriever driving.RetrievalService, llm driven.LLMService) *Answerer {
	settings.Normalise()
	return &Answerer{
		settings:  settings,
		retriever: retriever,
		llm:       llm,
	}
}

// Ask answers one question from the guideline.
func (a *Answerer) Ask(ctx context.Context, question string) (domain.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return domain.Answer{}, fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}
	if a.llm == nil {
		return domain.Answer{}, domain.ErrLLMUnavailable
	}

	r := a.settings.Retrieval

	results, err := a.retriever.Retrieve(ctx, question, r.TopK)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("retrieve: %w", err)
	}

	grounding := filterByThreshold(results, r.RelevanceThreshold)
	logger.Info("Grounding: %d of %d results above %.2f", len(grounding), len(results), r.RelevanceThreshold)

	// Nothing relevant enough is an outcome, not an error. The caller
	// must be told the guideline has no answer rather than handed prose
	// generated from weak matches.
	if len(grounding) == 0 {
		return domain.Ungrounded(fmt.Sprintf(
			"no passage in %s scored above the relevance floor for this question",
			a.settings.Document.Title)), nil
	}

	contextBlock, sources := AssembleContext(grounding, r.MaxCharsPerSource)

	messages := []driven.ChatMessage{
		{
			Role:    "system",
			Content: fmt.Sprintf(systemPromptTemplate, a.settings.Document.Title),
		},
		{
			Role:    "user",
			Content: fmt.Sprintf("Source excerpts:\n\n%s\n\nQuestion: %s", contextBlock, question),
		},
	}

	text, err := a.llm.Chat(ctx, messages, driven.ChatOptions{
		MaxTokens:   answerMaxTokens,
		Temperature: answerTemperature,
	})
	if err != nil {
		// Generation failures are scoped to this turn; the index and
		// retrieval state remain usable for the next question.
		return domain.Answer{}, fmt.Errorf("generate answer: %w", err)
	}

	return domain.Answer{
		Grounded: true,
		Text:     strings.TrimSpace(text),
		Sources:  sources,
	}, nil
}

// filterByThreshold keeps results whose score meets the relevance floor,
// preserving rank order.
func filterByThreshold(results []domain.SearchResult, threshold float64) []domain.SearchResult {
	kept := make([]domain.SearchResult, 0, len(results))
	for _, res := range results {
		if res.Score >= threshold {
			kept = append(kept, res)
		}
	}
	return kept
}

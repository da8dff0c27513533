package generator

import (
	"context"
	"fmt"
	"log"

	"github.com/quiz-club/backend/internal/models"
)

type Options struct {
	// Mock selects MockClient and ignores the other fields.
	Mock    bool
	APIKey  string
	Model   string
	CLIPath string
	// Verify runs a second blind-answer pass and drops disputed drafts.
	Verify bool
}

// Generator drafts lecture questions with an LLMClient.
type Generator struct {
	llm    LLMClient
	model  string
	verify bool
}

func NewGenerator(opts Options) *Generator {
	switch {
	case opts.Mock:
		log.Println("[generator] using mock data")
		return &Generator{llm: NewMockClient(), model: "mock", verify: opts.Verify}
	case opts.CLIPath != "":
		log.Println("[generator] using local CLI:", opts.CLIPath)
		return &Generator{llm: NewCLIClient(opts.CLIPath), model: "cli", verify: opts.Verify}
	default:
		log.Println("[generator] using Anthropic API:", opts.Model)
		return &Generator{llm: NewAPIClient(opts.APIKey, opts.Model), model: opts.Model, verify: opts.Verify}
	}
}

// NewWithClient wraps an existing client.
func NewWithClient(llm LLMClient, model string, verify bool) *Generator {
	return &Generator{llm: llm, model: model, verify: verify}
}

func (g *Generator) ModelName() string {
	return g.model
}

type numberedDraft struct {
	n int // 1-based position in the drafted batch
	q DraftQuestion
}

// Draft asks the model for count questions about lecture and returns those
// that pass validation, de-duplication and, when enabled, verification.
// problems describes every dropped draft.
func (g *Generator) Draft(ctx context.Context, lecture models.Lecture, count int, topic string) ([]models.UploadQuestionItem, []string, error) {
	resp, err := g.llm.Generate(ctx, DraftSystemPrompt(), BuildDraftPrompt(lecture, count, topic))
	if err != nil {
		return nil, nil, fmt.Errorf("generate drafts: %w", err)
	}

	batch, err := ParseResponse(resp.Content)
	if err != nil {
		return nil, nil, fmt.Errorf("parse drafts: %w", err)
	}

	var problems []string
	var drafts []numberedDraft
	for i, q := range batch.Questions {
		if err := validateDraft(q); err != nil {
			problems = append(problems, fmt.Sprintf("draft %d: %v", i+1, err))
			continue
		}
		drafts = append(drafts, numberedDraft{n: i + 1, q: q})
	}

	drafts, dropped := dedupe(drafts)
	for _, n := range dropped {
		problems = append(problems, fmt.Sprintf("draft %d: duplicates an earlier question", n))
	}

	if g.verify {
		agreed, disputed, err := verifyAnswers(ctx, g.llm, drafts)
		if err != nil {
			return nil, nil, err
		}
		drafts = agreed
		problems = append(problems, disputed...)
	}

	if len(drafts) > count {
		drafts = drafts[:count]
	}
	items := make([]models.UploadQuestionItem, len(drafts))
	for i, d := range drafts {
		items[i] = toUploadItem(d.q)
	}

	log.Printf("[generator] lecture %d: %d drafted, %d kept (model %s, %d+%d tokens)",
		lecture.ID, len(batch.Questions), len(items), g.model, resp.PromptTokens, resp.OutputTokens)
	return items, problems, nil
}

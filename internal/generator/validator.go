package generator

import (
	"context"
	"encoding/json"
	"fmt"
)

type verificationResponse struct {
	Answers []int `json:"answers"`
}

// verifyAnswers asks the model to answer the drafts blind and splits them by
// whether its pick matches the drafted answer. A reply that answers a
// different number of questions fails the whole check.
func verifyAnswers(ctx context.Context, llm LLMClient, drafts []numberedDraft) (agreed []numberedDraft, disputed []string, err error) {
	if len(drafts) == 0 {
		return nil, nil, nil
	}

	resp, err := llm.Generate(ctx, VerifierSystemPrompt(), BuildVerifyPrompt(drafts))
	if err != nil {
		return nil, nil, fmt.Errorf("verify drafts: %w", err)
	}

	var parsed verificationResponse
	if err := json.Unmarshal([]byte(stripCodeFences(resp.Content)), &parsed); err != nil {
		return nil, nil, fmt.Errorf("parse verification: %w", err)
	}
	if len(parsed.Answers) != len(drafts) {
		return nil, nil, fmt.Errorf("verification answered %d of %d questions", len(parsed.Answers), len(drafts))
	}

	for i, d := range drafts {
		want := correctIndex(d.q)
		if parsed.Answers[i] != want {
			disputed = append(disputed, fmt.Sprintf("draft %d: verifier chose %d, drafted answer %d", d.n, parsed.Answers[i], want))
			continue
		}
		agreed = append(agreed, d)
	}
	return agreed, disputed, nil
}

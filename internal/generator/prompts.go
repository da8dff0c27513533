package generator

import (
	"fmt"
	"strings"

	"github.com/quiz-club/backend/internal/models"
)

const draftSystemPrompt = `You write multiple-choice review questions for a university study club.

RULES:
- Each question tests one idea from the lecture, stated so it can be answered without the slides.
- Each question has exactly 4 choices. Exactly one is correct.
- Wrong choices are plausible: common misconceptions, near-miss definitions, swapped terms.
- Never use "all of the above" or "none of the above".
- Every choice carries a one-sentence explanation of why it is right or wrong.
- The question explanation summarizes the concept in two sentences at most.

OUTPUT FORMAT:
Respond with JSON only, no prose, in this shape:
{"questions":[{"question":"...","choices":[{"text":"...","correct":false,"explanation":"..."}],"explanation":"..."}]}`

const verifierSystemPrompt = `You are checking quiz questions written by someone else.
For each numbered question, pick the single best choice by its zero-based index.
Respond with JSON only: {"answers":[<index for Q1>, <index for Q2>, ...]}`

func DraftSystemPrompt() string {
	return draftSystemPrompt
}

func VerifierSystemPrompt() string {
	return verifierSystemPrompt
}

// BuildDraftPrompt asks for count questions about a lecture, optionally
// narrowed to a topic.
func BuildDraftPrompt(lecture models.Lecture, count int, topic string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write %d questions.\n", count)
	fmt.Fprintf(&b, "Lecture: %s\n", lecture.Name)
	if topic = strings.TrimSpace(topic); topic != "" {
		fmt.Fprintf(&b, "Focus: %s\n", topic)
	}
	b.WriteString("Vary which choice position is correct across questions.\n")
	b.WriteString("Return the JSON object with a \"questions\" array, each item having question, choices (text, correct, explanation) and explanation.")
	return b.String()
}

// BuildVerifyPrompt lists drafts for an independent answer check. Items are
// numbered by their position in the drafted batch.
func BuildVerifyPrompt(drafts []numberedDraft) string {
	var b strings.Builder
	for _, d := range drafts {
		fmt.Fprintf(&b, "Q%d. %s\n", d.n, d.q.Question)
		for i, c := range d.q.Choices {
			fmt.Fprintf(&b, "  %d) %s\n", i, c.Text)
		}
		b.WriteString("\n")
	}
	return b.String()
}

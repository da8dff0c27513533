package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// MockClient answers without a model, for local development and tests.
// Drafting prompts get placeholder questions; verification prompts get the
// answers those placeholders were drafted with.
type MockClient struct{}

func NewMockClient() *MockClient {
	return &MockClient{}
}

var countPattern = regexp.MustCompile(`Write (\d+) `)

func (m *MockClient) Generate(ctx context.Context, systemPrompt string, userPrompt string) (*LLMResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if systemPrompt == VerifierSystemPrompt() {
		return &LLMResponse{Content: mockVerification(userPrompt)}, nil
	}

	count := 3
	if match := countPattern.FindStringSubmatch(userPrompt); match != nil {
		if n, err := strconv.Atoi(match[1]); err == nil {
			count = n
		}
	}
	topic := "the lecture"
	if i := strings.Index(userPrompt, "Lecture: "); i >= 0 {
		topic = strings.TrimSpace(strings.SplitN(userPrompt[i+len("Lecture: "):], "\n", 2)[0])
	}
	return &LLMResponse{Content: buildMockJSON(topic, count), PromptTokens: 800, OutputTokens: 1200}, nil
}

// mockAspects keeps placeholder questions apart under dedupe; a batch repeats
// after len(mockAspects) questions.
var mockAspects = []string{
	"core definition terms",
	"primary design purpose",
	"known practical limitation",
	"typical usage example",
	"historical origin story",
	"central performance tradeoff",
	"essential building block",
	"underlying hidden assumption",
}

func mockAnswer(i int) int {
	return i % 4
}

func buildMockJSON(topic string, count int) string {
	batch := DraftBatch{Questions: make([]DraftQuestion, count)}
	for i := range batch.Questions {
		q := DraftQuestion{
			Question:    fmt.Sprintf("[Mock %d] %s, %s?", i+1, topic, mockAspects[i%len(mockAspects)]),
			Explanation: fmt.Sprintf("[Mock] Statement %d is the one that holds for %s.", mockAnswer(i)+1, topic),
		}
		for j := 0; j < 4; j++ {
			correct := j == mockAnswer(i)
			verdict := "does not hold"
			if correct {
				verdict = "holds"
			}
			q.Choices = append(q.Choices, DraftChoice{
				Text:        fmt.Sprintf("[Mock] Statement %d about %s (variant %d)", j+1, topic, i+1),
				Correct:     correct,
				Explanation: fmt.Sprintf("[Mock] Statement %d %s.", j+1, verdict),
			})
		}
		batch.Questions[i] = q
	}
	data, _ := json.Marshal(batch)
	return string(data)
}

var verifyItemPattern = regexp.MustCompile(`(?m)^Q(\d+)\.`)

func mockVerification(userPrompt string) string {
	var answers []int
	for _, match := range verifyItemPattern.FindAllStringSubmatch(userPrompt, -1) {
		n, _ := strconv.Atoi(match[1])
		answers = append(answers, mockAnswer(n-1))
	}
	data, _ := json.Marshal(verificationResponse{Answers: answers})
	return string(data)
}

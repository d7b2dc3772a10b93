package generate

import (
	"context"
	"strings"
)

// Canned replies for keyless operation.
const (
	mockGreeting = "Hello! I'm your social skills coach. What would you like to work on today?"

	mockNervousness = "It's completely normal to feel nervous in social situations. Start small by preparing a few conversation starters, focusing on open-ended questions about the event or shared interests. Remember that most people enjoy talking about themselves, so showing genuine interest can make conversations flow more naturally."

	mockListening = "To improve active listening, try the RASA technique: Receive the information without interrupting, Appreciate what's being said with nodding or small verbal cues, Summarize their main points to confirm understanding, and Ask follow-up questions that show you were truly listening."

	mockDefault = "That's an interesting point. Could you tell me more about how this affects your social interactions? I'm here to help you develop strategies that work for your specific situation."
)

// MockGenerator answers from a fixed set of coaching replies, routed by
// keyword. Deterministic and instant; used when no API key is set and
// in tests.
type MockGenerator struct{}

// NewMockGenerator creates a MockGenerator.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// Generate routes the input to a canned reply.
func (g *MockGenerator) Generate(ctx context.Context, input, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	lowered := strings.ToLower(input)
	switch {
	case strings.Contains(lowered, "hello") || strings.Contains(lowered, "hi"):
		return mockGreeting, nil
	case strings.Contains(lowered, "nervous") || strings.Contains(lowered, "anxiety") || strings.Contains(lowered, "shy"):
		return mockNervousness, nil
	case strings.Contains(lowered, "listen"):
		return mockListening, nil
	default:
		return mockDefault, nil
	}
}

// Ensure MockGenerator implements Generator
var _ Generator = (*MockGenerator)(nil)

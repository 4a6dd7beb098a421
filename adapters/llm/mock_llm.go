package llm

import (
	"context"
	"sync"

	"github.com/carelink/reminisce/server/domain/entities"
	"github.com/carelink/reminisce/server/domain/repositories"
)

// MockGenerator is a scripted TextGenerator for tests and local
// development without provider credentials.
type MockGenerator struct {
	mu       sync.Mutex
	Response string
	Err      error
	Requests []entities.GenerationRequest
}

var _ repositories.TextGenerator = (*MockGenerator)(nil)

// NewMockGenerator returns a generator that always answers with a
// well-formed response in the expected label format.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{
		Response: "회상 문장: 오늘은 공원에서 산책하던 날이 떠오르네요…\n" +
			"퀴즈 문제: 우리가 함께 걸었던 곳은 어디였을까요?\n" +
			"선택지:\n1번, 공원\n2번, 바다\n" +
			"정답: 1번, 공원",
	}
}

// Generate records the request and returns the scripted response.
func (m *MockGenerator) Generate(_ context.Context, request entities.GenerationRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests = append(m.Requests, request)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

package llm

import (
	"context"
	"errors"
	"testing"
)

func TestNewOpenAILLMRequiresModel(t *testing.T) {
	_, err := NewOpenAILLM(Config{APIKey: "test-key"})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("err = %v, want ErrInvalidConfig", err)
	}
}

func TestNewOpenAILLMRequiresAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	_, err := NewOpenAILLM(Config{Model: "gpt-4o"})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("err = %v, want ErrInvalidConfig", err)
	}
}

func TestOpenAILLMRejectsEmptyPrompt(t *testing.T) {
	model, err := NewOpenAILLM(Config{Model: "gpt-4o", APIKey: "test-key"})
	if err != nil {
		t.Fatalf("NewOpenAILLM: %v", err)
	}
	if _, err := model.Generate(context.Background(), ""); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("err = %v, want ErrInvalidConfig", err)
	}
}

func TestMockLLMRecordsPrompts(t *testing.T) {
	mock := NewMockLLM("جواب")
	ctx := context.Background()

	for _, prompt := range []string{"أول", "ثان"} {
		got, err := mock.Generate(ctx, prompt)
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		if got != "جواب" {
			t.Errorf("response = %q", got)
		}
	}
	if mock.Calls() != 2 {
		t.Errorf("calls = %d, want 2", mock.Calls())
	}
	if mock.LastPrompt != "ثان" {
		t.Errorf("last prompt = %q", mock.LastPrompt)
	}
}

func TestMockLLMError(t *testing.T) {
	mock := NewMockLLMWithError(ErrLLMFailed)
	if _, err := mock.Generate(context.Background(), "سؤال"); !errors.Is(err, ErrLLMFailed) {
		t.Fatalf("err = %v, want ErrLLMFailed", err)
	}
}

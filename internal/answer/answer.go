// Package answer turns retrieved material into a final reply in the
// user's language.
package answer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/hanen-gb/gcrbot/internal/llm"
	"github.com/hanen-gb/gcrbot/internal/route"
)

// Input bundles everything one completion call needs.
type Input struct {
	Question string
	Language route.Language
	Type     route.QuestionType
	// Material is the retrieved context: crawl output or document
	// search hits. Empty for pure conversation.
	Material  string
	SourceURL string
}

// Synthesizer calls the chat model. The zero Model is invalid; callers
// must set it.
type Synthesizer struct {
	Client llm.Client
	Model  string
	// SystemPrompt overrides the built-in persona when non-empty.
	SystemPrompt string

	// sleep is swapped out in tests to avoid real backoff waits.
	sleep func(time.Duration)
}

// ErrEmptyCompletion means the model returned no usable text.
var ErrEmptyCompletion = errors.New("empty completion")

// Reply produces the final answer text. A transient API failure is
// retried once after a short fixed backoff; the context deadline still
// bounds the whole call.
func (s *Synthesizer) Reply(ctx context.Context, in Input) (string, error) {
	if s.Client == nil || strings.TrimSpace(s.Model) == "" {
		return "", errors.New("synthesizer not configured")
	}

	req := openai.ChatCompletionRequest{
		Model: s.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: s.systemMessage(in)},
			{Role: openai.ChatMessageRoleUser, Content: userMessage(in)},
		},
		Temperature: 0.2,
		N:           1,
	}

	resp, err := s.Client.CreateChatCompletion(ctx, req)
	if err != nil {
		sleep := s.sleep
		if sleep == nil {
			sleep = time.Sleep
		}
		sleep(100 * time.Millisecond)
		resp, err = s.Client.CreateChatCompletion(ctx, req)
		if err != nil {
			return "", fmt.Errorf("completion (after retry): %w", err)
		}
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	if out == "" {
		return "", ErrEmptyCompletion
	}
	return out, nil
}

func (s *Synthesizer) systemMessage(in Input) string {
	if strings.TrimSpace(s.SystemPrompt) != "" {
		return s.SystemPrompt
	}
	var b strings.Builder
	b.WriteString("Tu es GCRBOT, l'assistant des étudiants en génie civil de l'ENIG. ")
	b.WriteString("Tu réponds de façon précise et bienveillante.\n")
	fmt.Fprintf(&b, "Réponds impérativement en %s.\n", in.Language.Name())
	switch in.Type {
	case route.TypeConversation:
		b.WriteString("La question est conversationnelle : réponds brièvement, sans inventer d'informations administratives.")
	case route.TypeDocument:
		b.WriteString("Réponds uniquement à partir des extraits de documents fournis. Si l'information n'y figure pas, dis-le.")
	default:
		b.WriteString("Réponds uniquement à partir du contenu web fourni. Cite la source quand elle est connue. Si l'information manque, dis-le plutôt que d'inventer.")
	}
	return b.String()
}

func userMessage(in Input) string {
	if strings.TrimSpace(in.Material) == "" {
		return in.Question
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Question : %s\n\n", in.Question)
	b.WriteString("Contenu récupéré :\n")
	b.WriteString(in.Material)
	if in.SourceURL != "" {
		fmt.Fprintf(&b, "\n\nSource principale : %s", in.SourceURL)
	}
	return b.String()
}

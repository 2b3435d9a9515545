package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/dmitrijs2005/aither/internal/client/models"
)

// ErrNoAPIKey is returned when the Gemini gateway is built without a key.
var ErrNoAPIKey = errors.New("gemini api key is not configured")

const DefaultModel = "gemini-3-pro-preview"

// Gemini answers through the Google generative AI API. It is safe for
// concurrent use; each Reply opens its own chat session on the shared client.
type Gemini struct {
	client    *genai.Client
	modelName string
}

var _ Gateway = (*Gemini)(nil)

func NewGemini(ctx context.Context, apiKey, modelName string) (*Gemini, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	if modelName == "" {
		modelName = DefaultModel
	}
	return &Gemini{client: cl, modelName: modelName}, nil
}

func (g *Gemini) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

func (g *Gemini) Reply(ctx context.Context, caller Caller, history []models.Message, text string) (string, error) {
	m := g.client.GenerativeModel(g.modelName)
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(SystemInstruction(caller))},
	}
	m.SetTemperature(0.7)
	m.SetTopP(0.9)
	m.SetTopK(40)

	cs := m.StartChat()
	cs.History = toContents(history)

	resp, err := cs.SendMessage(ctx, genai.Text(text))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	out := replyText(resp)
	if strings.TrimSpace(out) == "" {
		return BlankReply, nil
	}
	return out, nil
}

// toContents maps the session history onto Gemini roles: assistant turns are
// "model", everything else is "user".
func toContents(history []models.Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, msg := range history {
		role := "user"
		if msg.Role == models.MessageRoleAssistant {
			role = "model"
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(msg.Content)},
		})
	}
	return contents
}

func replyText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String()
}

package gemini

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/googleapis/gax-go/v2/apierror"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"

	"github.com/Rrens/qorix-chat/internal/llm"
)

const defaultModel = "gemini-2.5-flash"

type Provider struct {
	apiKey string
	model  string
}

func NewProvider(apiKey, model string) *Provider {
	return &Provider{
		apiKey: apiKey,
		model:  model,
	}
}

func (p *Provider) Name() string {
	return "gemini"
}

func (p *Provider) AvailableModels() []string {
	return []string{
		"gemini-2.5-flash",
		"gemini-1.5-flash",
		"gemini-1.5-pro",
	}
}

func (p *Provider) DefaultModel() string {
	if p.model != "" {
		return p.model
	}
	return defaultModel
}

func (p *Provider) IsConfigured() bool {
	return p.apiKey != ""
}

func (p *Provider) APIKey() string {
	return p.apiKey
}

func (p *Provider) Chat(ctx context.Context, apiKey string, req llm.ChatRequest) (string, error) {
	model := req.Model
	if model == "" || !strings.HasPrefix(model, "gemini") {
		model = p.DefaultModel()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return "", fmt.Errorf("failed to create gemini client: %w", err)
	}
	defer client.Close()

	generativeModel := client.GenerativeModel(model)
	generativeModel.SetTemperature(float32(req.Temperature))
	if req.MaxTokens > 0 {
		generativeModel.SetMaxOutputTokens(int32(req.MaxTokens))
	}

	history, last, system, err := toContents(req.Messages)
	if err != nil {
		return "", err
	}
	if system != "" {
		generativeModel.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}
	if last == nil {
		return "", fmt.Errorf("no user message to send")
	}

	session := generativeModel.StartChat()
	session.History = history

	resp, err := session.SendMessage(ctx, last.Parts...)
	if err != nil {
		return "", mapError(err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty response from gemini")
	}

	var output strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			output.WriteString(string(text))
		}
	}
	return output.String(), nil
}

// toContents splits the request into chat history, the turn to send, and the system text
func toContents(messages []llm.ChatMessage) ([]*genai.Content, *genai.Content, string, error) {
	var (
		system   string
		contents []*genai.Content
	)
	for _, m := range messages {
		if m.Role == llm.RoleSystem {
			system = m.Text()
			continue
		}
		parts, err := toParts(m.Content)
		if err != nil {
			return nil, nil, "", err
		}
		role := "user"
		if m.Role == llm.RoleAssistant {
			role = "model"
		}
		contents = append(contents, &genai.Content{Role: role, Parts: parts})
	}

	if len(contents) == 0 || contents[len(contents)-1].Role != "user" {
		return contents, nil, system, nil
	}
	return contents[:len(contents)-1], contents[len(contents)-1], system, nil
}

func toParts(content llm.Content) ([]genai.Part, error) {
	switch c := content.(type) {
	case llm.TextContent:
		return []genai.Part{genai.Text(string(c))}, nil
	case llm.MultiPartContent:
		parts := make([]genai.Part, 0, len(c))
		for _, p := range c {
			switch p.Type {
			case llm.PartText:
				parts = append(parts, genai.Text(p.Text))
			case llm.PartImageURL:
				blob, err := decodeDataURL(p.ImageURL.URL)
				if err != nil {
					return nil, err
				}
				parts = append(parts, blob)
			}
		}
		return parts, nil
	default:
		return []genai.Part{genai.Text("")}, nil
	}
}

func decodeDataURL(url string) (genai.Blob, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(url, "data:"), ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return genai.Blob{}, fmt.Errorf("unsupported image url")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return genai.Blob{}, fmt.Errorf("failed to decode image: %w", err)
	}
	return genai.Blob{MIMEType: strings.TrimSuffix(meta, ";base64"), Data: data}, nil
}

// mapError converts Google API failures into llm.APIError so they classify like HTTP errors
func mapError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return &llm.APIError{StatusCode: gerr.Code, Message: gerr.Message}
	}

	var aerr *apierror.APIError
	if errors.As(err, &aerr) {
		status := aerr.HTTPCode()
		if status <= 0 && aerr.GRPCStatus() != nil {
			switch aerr.GRPCStatus().Code() {
			case codes.ResourceExhausted:
				status = http.StatusTooManyRequests
			case codes.Unauthenticated:
				status = http.StatusUnauthorized
			case codes.PermissionDenied:
				status = http.StatusForbidden
			default:
				status = http.StatusBadGateway
			}
		}
		return &llm.APIError{StatusCode: status, Message: aerr.Error()}
	}

	return fmt.Errorf("gemini request failed: %w", err)
}

package classifier

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/JaimeStill/lostfound/internal/imaging"
	"github.com/JaimeStill/lostfound/pkg/formatting"
)

const systemPrompt = `You label photos of lost and found items for a residential community.
Name the physical object in the photo using short, common nouns such as
"backpack", "wallet", "umbrella", "car key", "smartphone" or "water bottle".
Respond with JSON only, in the form:
{"predictions": [{"category": "<label>", "confidence": <0-100>}]}
Confidence is a percentage between 0 and 100. Order predictions from most
to least likely.`

const userPrompt = "Return at most %d predictions for this item."

// NewModel builds the backend selected by cfg.Provider.
func NewModel(cfg *Config) (Model, error) {
	switch cfg.Provider {
	case ProviderNone:
		return disabled{}, nil
	case ProviderOpenAI:
		oc := openai.DefaultConfig(cfg.Token)
		if cfg.BaseURL != "" {
			oc.BaseURL = cfg.BaseURL
		}
		return newVision(oc, cfg), nil
	case ProviderAzure:
		oc := openai.DefaultAzureConfig(cfg.Token, cfg.BaseURL)
		if cfg.APIVersion != "" {
			oc.APIVersion = cfg.APIVersion
		}
		return newVision(oc, cfg), nil
	default:
		return nil, fmt.Errorf("unknown classifier provider %q", cfg.Provider)
	}
}

type vision struct {
	client   *openai.Client
	model    string
	provider Provider
}

func newVision(oc openai.ClientConfig, cfg *Config) *vision {
	return &vision{
		client:   openai.NewClientWithConfig(oc),
		model:    cfg.Model,
		provider: cfg.Provider,
	}
}

type visionResponse struct {
	Predictions []Prediction `json:"predictions"`
}

func (v *vision) Name() string    { return string(v.provider) + "/" + v.model }
func (v *vision) Available() bool { return true }

func (v *vision) Predict(ctx context.Context, image []byte, mime string, limit int) ([]Prediction, error) {
	req := openai.ChatCompletionRequest{
		Model:       v.model,
		Temperature: 0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: fmt.Sprintf(userPrompt, limit)},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    imaging.DataURI(image, mime),
							Detail: openai.ImageURLDetailLow,
						},
					},
				},
			},
		},
	}

	resp, err := v.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("vision request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("vision response has no choices")
	}

	parsed, err := formatting.Parse[visionResponse](resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}
	return parsed.Predictions, nil
}

type disabled struct{}

func (disabled) Name() string    { return string(ProviderNone) }
func (disabled) Available() bool { return false }

func (disabled) Predict(context.Context, []byte, string, int) ([]Prediction, error) {
	return nil, ErrUnavailable
}

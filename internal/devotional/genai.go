package devotional

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"ontheway/internal/models"
)

// GenAIProvider generates devotionals with the Gemini API
type GenAIProvider struct {
	client   *genai.Client
	model    string
	language string
}

// NewGenAIProvider creates a Gemini-backed provider
func NewGenAIProvider(ctx context.Context, apiKey, model, language string) (*GenAIProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}
	if language == "" {
		language = "Português"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GenAIProvider{client: client, model: model, language: language}, nil
}

// devotionalSchema constrains the model output to the devotional fields
var devotionalSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"title":      {Type: genai.TypeString, Description: "título inspirador"},
		"summary":    {Type: genai.TypeString, Description: "resumo dos capítulos"},
		"reflection": {Type: genai.TypeString, Description: "reflexão prática para o dia a dia"},
		"prayer":     {Type: genai.TypeString, Description: "oração curta"},
		"keyVerse":   {Type: genai.TypeString, Description: "versículo chave com referência"},
	},
	Required: []string{"title", "summary", "reflection", "prayer", "keyVerse"},
}

const assistantInstruction = "Seja encorajador, teologicamente equilibrado e focado na caminhada de fé cristã. " +
	"Responda de forma breve e cite as passagens quando fizer sentido."

// Devotional asks the model for a structured devotional about readingTitle
func (p *GenAIProvider) Devotional(ctx context.Context, readingTitle string) (*models.Devotional, error) {
	prompt := devotionalPrompt(readingTitle, p.language)

	resp, err := p.client.Models.GenerateContent(ctx, p.model,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   devotionalSchema,
		})
	if err != nil {
		return nil, fmt.Errorf("GenAI devotional failed: %w", err)
	}

	return parseDevotional(resp.Text())
}

// Ask answers question with readingTitle as context
func (p *GenAIProvider) Ask(ctx context.Context, question, readingTitle string) (string, error) {
	prompt := fmt.Sprintf("Você é o assistente bíblico do On The Way. A leitura de hoje é %s. Responda em %s: %s",
		readingTitle, p.language, question)

	resp, err := p.client.Models.GenerateContent(ctx, p.model,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(assistantInstruction, genai.RoleUser),
		})
	if err != nil {
		return "", fmt.Errorf("GenAI assistant failed: %w", err)
	}

	answer := strings.TrimSpace(resp.Text())
	if answer == "" {
		return "", fmt.Errorf("GenAI assistant returned an empty answer")
	}
	return answer, nil
}

func devotionalPrompt(readingTitle, language string) string {
	return fmt.Sprintf("Escreva um devocional diário curto em %s para a leitura bíblica de %s. "+
		"Inclua um título inspirador, um resumo dos capítulos, uma reflexão prática para o dia a dia, "+
		"uma oração curta e um versículo chave.", language, readingTitle)
}

// parseDevotional decodes the model's JSON answer and rejects partial content
func parseDevotional(text string) (*models.Devotional, error) {
	var d models.Devotional
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &d); err != nil {
		return nil, fmt.Errorf("failed to decode devotional: %w", err)
	}
	if !d.Complete() {
		return nil, fmt.Errorf("devotional is missing fields")
	}
	return &d, nil
}

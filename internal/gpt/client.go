// internal/gpt/client.go
package gpt

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"calorigram/internal/analysis"
)

const photoPrompt = `Проанализируй фотографию еды и определи:
1. Название блюда
2. Ориентировочный вес (используя якорные объекты как вилка, ложка, рука для масштаба)
3. Калорийность на 100г
4. Раскладку по белкам, жирам и углеводам на 100г
5. ОБЩУЮ калорийность блюда (для всего видимого количества)
6. Общее количество БЖУ в блюде (для всего видимого количества)

ВАЖНО: Рассчитай калорийность для ВСЕГО видимого количества еды на фото, а не только для 100г!

Ответ должен быть ТОЛЬКО в формате:
**🍽️ Анализ блюда:**

**Название:** [название блюда]
**Вес:** [общий вес блюда]г
**Калорийность:** [ОБЩАЯ калорийность для всего количества] ккал

**📊 БЖУ на 100г:**
• Белки: [количество]г
• Жиры: [количество]г
• Углеводы: [количество]г

**📈 Общее БЖУ в блюде:**
• Белки: [общее количество]г
• Жиры: [общее количество]г
• Углеводы: [общее количество]г

НЕ добавляй никаких дополнительных пояснений, расчетов или объяснений!`

const textPromptFormat = `Проанализируй следующее описание блюда и определи:
1. Название блюда
2. Ориентировочный вес порции (учитывая указанное количество)
3. Калорийность на 100г
4. Раскладку по белкам, жирам и углеводам на 100г
5. ОБЩУЮ калорийность блюда (для всего указанного количества)
6. Общее количество БЖУ в блюде (для всего указанного количества)

Описание блюда: "%s"
Примерный вес: %.0f%s

ВАЖНО: Рассчитай калорийность для ВСЕГО указанного количества, а не только для 100г!
Например, если указано "3 яблока", рассчитай калорийность для 3 яблок, а не для 100г яблок.

Ответ должен быть ТОЛЬКО в формате:
**🍽️ Анализ блюда:**

**Название:** [название блюда]
**Вес:** [общий вес блюда]г
**Калорийность:** [ОБЩАЯ калорийность для всего количества] ккал

**📊 БЖУ на 100г:**
• Белки: [количество]г
• Жиры: [количество]г
• Углеводы: [количество]г

**📈 Общее БЖУ в блюде:**
• Белки: [общее количество]г
• Жиры: [общее количество]г
• Углеводы: [общее количество]г

НЕ добавляй никаких дополнительных пояснений, расчетов или объяснений!`

// Client talks to an OpenAI-compatible inference endpoint. The default
// deployment points it at Nebius with a vision model, so photo and text
// analysis share one client.
type Client struct {
	client          *openai.Client
	model           string
	transcribeModel string
}

func NewClient(apiKey, baseURL, model, transcribeModel string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Client{
		client:          openai.NewClientWithConfig(cfg),
		model:           model,
		transcribeModel: transcribeModel,
	}
}

// AnalyzeFoodPhoto sends the JPEG bytes to the vision model and returns
// the raw analysis text.
func (c *Client) AnalyzeFoodPhoto(ctx context.Context, imageData []byte) (string, error) {
	imageURL := fmt.Sprintf("data:image/jpeg;base64,%s", base64.StdEncoding.EncodeToString(imageData))

	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: photoPrompt,
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL: imageURL,
						},
					},
				},
			},
		},
		MaxTokens:   1000,
		Temperature: 0.3,
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("photo analysis request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from analysis API")
	}

	return resp.Choices[0].Message.Content, nil
}

// AnalyzeFoodText analyzes a free-form dish description. The quantity
// parsed from the description is embedded into the prompt so the model
// scales the total to the stated amount.
func (c *Client) AnalyzeFoodText(ctx context.Context, description string) (string, error) {
	quantity, unit := analysis.ParseQuantity(description)
	prompt := fmt.Sprintf(textPromptFormat, description, quantity, unit)

	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   1000,
		Temperature: 0.3,
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("text analysis request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from analysis API")
	}

	return resp.Choices[0].Message.Content, nil
}

// TranscribeVoice converts an OGG voice message to text.
func (c *Client) TranscribeVoice(ctx context.Context, audioData []byte) (string, error) {
	req := openai.AudioRequest{
		Model:    c.transcribeModel,
		FilePath: "voice.ogg",
		Reader:   bytes.NewReader(audioData),
	}

	resp, err := c.client.CreateTranscription(ctx, req)
	if err != nil {
		return "", fmt.Errorf("voice transcription failed: %w", err)
	}

	return resp.Text, nil
}

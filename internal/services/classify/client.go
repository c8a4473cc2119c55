package classify

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"hunter-market/internal/models"
	"hunter-market/internal/pricing"

	"github.com/go-resty/resty/v2"
)

const apiURL = "https://api.openai.com/v1/chat/completions"

// maxContentLen caps how much of a post body is sent upstream.
const maxContentLen = 2000

// Client calls a chat-completion endpoint to classify a scraped post into a
// category, condition and price estimate. It never returns an error: any
// failure degrades to the fallback classification.
type Client struct {
	client *resty.Client
	apiKey string
	model  string
}

func NewClient(apiKey, model string) *Client {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &Client{
		client: resty.New().SetTimeout(15 * time.Second),
		apiKey: apiKey,
		model:  model,
	}
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

const systemPrompt = `당신은 대학교 중고거래 게시글 분류기입니다. 게시글의 제목과 내용을 보고 아래 JSON 형식으로만 답하세요.
{"category": "...", "condition": "...", "price": 0, "estimated_price": 0, "confidence": 0.0}
- category는 다음 중 하나: 모빌리티, 냉장고, 전자제품, 책/문서, 기프티콘, 원룸, 족보, 기타
- condition은 다음 중 하나: best, good, soso, bad, worst
- price는 게시글에 명시된 판매 가격(원). 명시되지 않았으면 0
- estimated_price는 가격이 명시되지 않은 경우의 추정 시세(원)
- confidence는 0과 1 사이의 확신도`

// Classify sends title and content upstream and returns the parsed
// classification, or the fallback on any failure.
func (c *Client) Classify(title, content string) pricing.Classification {
	if c.apiKey == "" {
		return pricing.FallbackClassification()
	}

	if len(content) > maxContentLen {
		// back up to a rune boundary so a Korean character is never split
		cut := maxContentLen
		for cut > 0 && !utf8.RuneStart(content[cut]) {
			cut--
		}
		content = content[:cut]
	}
	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: fmt.Sprintf("제목: %s\n내용: %s", title, content)},
		},
	}
	req.ResponseFormat.Type = "json_object"

	var resp chatResponse
	httpResp, err := c.client.R().
		SetHeader("Authorization", "Bearer "+c.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		SetResult(&resp).
		Post(apiURL)
	if err != nil {
		log.Printf("classify: request failed: %v", err)
		return pricing.FallbackClassification()
	}
	if httpResp.IsError() || len(resp.Choices) == 0 {
		log.Printf("classify: upstream status %d", httpResp.StatusCode())
		return pricing.FallbackClassification()
	}

	var out pricing.Classification
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &out); err != nil {
		log.Printf("classify: unparseable response: %v", err)
		return pricing.FallbackClassification()
	}
	return sanitize(out)
}

// sanitize clamps the upstream answer into the known enums and ranges.
func sanitize(cls pricing.Classification) pricing.Classification {
	cls.Category = strings.TrimSpace(cls.Category)
	if !validCategory(cls.Category) {
		cls.Category = models.CategoryOther
	}
	cls.Condition = strings.TrimSpace(cls.Condition)
	switch cls.Condition {
	case models.ConditionBest, models.ConditionGood, models.ConditionSoso,
		models.ConditionBad, models.ConditionWorst:
	default:
		cls.Condition = models.ConditionUnknown
	}
	if cls.Price < 0 {
		cls.Price = 0
	}
	if cls.EstimatedPrice < 0 {
		cls.EstimatedPrice = 0
	}
	if cls.Confidence < 0 {
		cls.Confidence = 0
	}
	if cls.Confidence > 1 {
		cls.Confidence = 1
	}
	return cls
}

func validCategory(category string) bool {
	for _, c := range models.Categories {
		if category == c {
			return true
		}
	}
	return false
}

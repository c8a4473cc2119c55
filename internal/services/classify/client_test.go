package classify

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"unicode/utf8"

	"hunter-market/internal/models"
	"hunter-market/internal/pricing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockedClient(t *testing.T) *Client {
	t.Helper()
	c := NewClient("test-key", "gpt-4o-mini")
	httpmock.ActivateNonDefault(c.client.GetClient())
	t.Cleanup(httpmock.DeactivateAndReset)
	return c
}

func chatBody(content string) string {
	return `{"choices":[{"message":{"content":` + content + `}}]}`
}

// jsonResponder mimics the upstream Content-Type so resty unmarshals the
// mocked body into the SetResult target.
func jsonResponder(status int, body string) httpmock.Responder {
	resp := httpmock.NewStringResponse(status, body)
	resp.Header.Set("Content-Type", "application/json")
	return httpmock.ResponderFromResponse(resp)
}

func TestClassifySuccess(t *testing.T) {
	c := newMockedClient(t)
	httpmock.RegisterResponder("POST", apiURL, jsonResponder(http.StatusOK,
		chatBody(`"{\"category\":\"전자제품\",\"condition\":\"good\",\"price\":0,\"estimated_price\":120000,\"confidence\":0.8}"`)))

	cls := c.Classify("에어팟 팝니다", "한 달 사용했습니다")

	assert.False(t, cls.FromFallback)
	assert.Equal(t, models.CategoryElectronics, cls.Category)
	assert.Equal(t, models.ConditionGood, cls.Condition)
	assert.Equal(t, 0, cls.Price)
	assert.Equal(t, 120000, cls.EstimatedPrice)
	assert.InDelta(t, 0.8, cls.Confidence, 1e-9)
}

func TestClassifyFallbackOnHTTPError(t *testing.T) {
	c := newMockedClient(t)
	httpmock.RegisterResponder("POST", apiURL,
		jsonResponder(http.StatusInternalServerError, `{"error":{"message":"boom"}}`))

	cls := c.Classify("제목", "내용")
	require.True(t, cls.FromFallback)
	assert.Equal(t, models.CategoryOther, cls.Category)
	assert.Equal(t, models.ConditionUnknown, cls.Condition)
	assert.Zero(t, cls.Confidence)
}

func TestClassifyFallbackOnGarbageContent(t *testing.T) {
	c := newMockedClient(t)
	httpmock.RegisterResponder("POST", apiURL, jsonResponder(http.StatusOK,
		chatBody(`"정형화된 JSON이 아닌 답변"`)))

	cls := c.Classify("제목", "내용")
	assert.True(t, cls.FromFallback)
}

func TestClassifyFallbackWithoutAPIKey(t *testing.T) {
	c := NewClient("", "")
	cls := c.Classify("제목", "내용")
	assert.True(t, cls.FromFallback)
}

func TestClassifyTruncatesContentOnRuneBoundary(t *testing.T) {
	c := newMockedClient(t)

	var sent string
	httpmock.RegisterResponder("POST", apiURL, func(req *http.Request) (*http.Response, error) {
		var body chatRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			return nil, err
		}
		sent = body.Messages[1].Content
		resp := httpmock.NewStringResponse(http.StatusOK,
			chatBody(`"{\"category\":\"기타\",\"condition\":\"soso\",\"price\":0,\"estimated_price\":0,\"confidence\":0.5}"`))
		resp.Header.Set("Content-Type", "application/json")
		return resp, nil
	})

	// 2100 bytes of 3-byte runes: the cap falls mid-character
	cls := c.Classify("제목", strings.Repeat("가", 700))

	assert.False(t, cls.FromFallback)
	assert.True(t, utf8.ValidString(sent))
	assert.True(t, strings.HasSuffix(sent, "가"))
	assert.LessOrEqual(t, len(sent), len("제목: 제목\n내용: ")+maxContentLen)
}

func TestSanitizeTrimsPaddedEnums(t *testing.T) {
	cls := sanitize(pricing.Classification{
		Category:   " 전자제품 ",
		Condition:  " good",
		Confidence: 0.5,
	})
	assert.Equal(t, models.CategoryElectronics, cls.Category)
	assert.Equal(t, models.ConditionGood, cls.Condition)
}

func TestSanitizeClampsUnknownValues(t *testing.T) {
	cls := sanitize(pricing.Classification{
		Category:       "가전제품",
		Condition:      "mint",
		Price:          -100,
		EstimatedPrice: -5,
		Confidence:     1.7,
	})
	assert.Equal(t, models.CategoryOther, cls.Category)
	assert.Equal(t, models.ConditionUnknown, cls.Condition)
	assert.Zero(t, cls.Price)
	assert.Zero(t, cls.EstimatedPrice)
	assert.InDelta(t, 1.0, cls.Confidence, 1e-9)
}

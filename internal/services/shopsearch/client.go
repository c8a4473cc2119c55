package shopsearch

import (
	"log"
	"strconv"
	"strings"
	"time"

	"hunter-market/internal/pricing"

	"github.com/go-resty/resty/v2"
	"github.com/k3a/html2text"
)

const apiURL = "https://openapi.naver.com/v1/search/shop.json"

// Confidence decays with result rank: the top hit gets 0.9, each following
// one 0.05 less, floored at 0.6.
const (
	topConfidence   = 0.9
	confidenceStep  = 0.05
	confidenceFloor = 0.6
)

// Client queries the Naver shopping search API for comparable listings. It
// never returns an error: failures and empty answers both yield an empty
// result set.
type Client struct {
	client       *resty.Client
	clientID     string
	clientSecret string
}

func NewClient(clientID, clientSecret string) *Client {
	return &Client{
		client:       resty.New().SetTimeout(10 * time.Second),
		clientID:     clientID,
		clientSecret: clientSecret,
	}
}

type shopResponse struct {
	Total int `json:"total"`
	Items []struct {
		Title    string `json:"title"`
		Link     string `json:"link"`
		LPrice   string `json:"lprice"`
		MallName string `json:"mallName"`
	} `json:"items"`
}

// Search returns up to display results for the query, sorted by relevance,
// with markup stripped, prices parsed and conditions inferred.
func (c *Client) Search(query string, display int) []pricing.SearchResult {
	if c.clientID == "" || c.clientSecret == "" {
		return nil
	}
	if display <= 0 {
		display = 10
	}

	var resp shopResponse
	httpResp, err := c.client.R().
		SetHeader("X-Naver-Client-Id", c.clientID).
		SetHeader("X-Naver-Client-Secret", c.clientSecret).
		SetQueryParams(map[string]string{
			"query":   query,
			"display": strconv.Itoa(display),
			"sort":    "sim",
		}).
		SetResult(&resp).
		Get(apiURL)
	if err != nil {
		log.Printf("shopsearch: request failed: %v", err)
		return nil
	}
	if httpResp.IsError() {
		log.Printf("shopsearch: upstream status %d", httpResp.StatusCode())
		return nil
	}

	results := make([]pricing.SearchResult, 0, len(resp.Items))
	for i, item := range resp.Items {
		title := strings.TrimSpace(html2text.HTML2Text(item.Title))
		confidence := topConfidence - confidenceStep*float64(i)
		if confidence < confidenceFloor {
			confidence = confidenceFloor
		}
		results = append(results, pricing.SearchResult{
			Title:      title,
			Price:      parsePrice(item.LPrice),
			Condition:  pricing.InferCondition(title),
			Mall:       strings.TrimSpace(html2text.HTML2Text(item.MallName)),
			URL:        item.Link,
			Confidence: confidence,
		})
	}
	return results
}

// parsePrice handles thousands separators and currency suffixes; anything
// unparseable is 0.
func parsePrice(raw string) int {
	cleaned := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, raw)
	if cleaned == "" {
		return 0
	}
	price, err := strconv.Atoi(cleaned)
	if err != nil {
		return 0
	}
	return price
}

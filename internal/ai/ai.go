// Package ai calls the generative-search provider. The rest of the system
// consumes only its raw text and grounding-source list; prompting and model
// choice live here.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/linqiu/marketlens/internal/config"
	"github.com/linqiu/marketlens/internal/market"
)

// Response is the raw output of one grounded search: the model's text
// payload (expected, but not guaranteed, to be JSON) and the ordered
// grounding-source list returned out-of-band with it.
type Response struct {
	Text    string
	Sources []market.GroundingSource
}

// Searcher performs one grounded search for a category and date.
type Searcher interface {
	Search(ctx context.Context, cat market.Category, date string) (Response, error)
}

// New creates a Searcher from the given AI config. timeout bounds each
// request; zero or negative falls back to 90s.
func New(cfg *config.AIConfig, apiKey string, timeout time.Duration) (Searcher, error) {
	if cfg == nil || apiKey == "" {
		return nil, fmt.Errorf("AI not configured")
	}
	model := cfg.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &geminiProvider{
		apiKey: apiKey,
		model:  model,
		client: &http.Client{Timeout: timeout},
	}, nil
}

const searchPrompt = `Search for electricity market news about %s published on %s.

Respond with ONLY a JSON object in this exact shape, no prose before or after:
{"items": [{"title": string, "region": string, "entity": string, "amount": string, "summary": string, "source_indices": [int]}]}

Field rules:
- "region": province or region the item concerns
- "entity": the subject organization
- "amount": monetary amount as written in the source, or omit if undisclosed
- "summary": 1-2 sentences; cite sources inline as [n]
- "source_indices": 1-based positions of the supporting search results

Return {"items": []} if nothing was published that day.`

var categoryTopics = map[market.Category]string{
	market.Trading:  "electricity spot and medium-to-long-term trading results",
	market.Tender:   "power purchase and grid construction tenders",
	market.BidAward: "announced bid awards and winning suppliers",
	market.Demand:   "electricity demand and load forecasts",
}

// --- Gemini provider ---

type geminiProvider struct {
	apiKey string
	model  string
	client *http.Client
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
	Tools    []geminiTool    `json:"tools"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiTool struct {
	GoogleSearch struct{} `json:"google_search"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
		GroundingMetadata struct {
			GroundingChunks []struct {
				Web struct {
					Title string `json:"title"`
					URI   string `json:"uri"`
				} `json:"web"`
			} `json:"groundingChunks"`
		} `json:"groundingMetadata"`
	} `json:"candidates"`
}

func (g *geminiProvider) Search(ctx context.Context, cat market.Category, date string) (Response, error) {
	prompt := fmt.Sprintf(searchPrompt, categoryTopics[cat], date)

	body, _ := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		Tools:    []geminiTool{{}},
	})

	url := fmt.Sprintf("https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent", g.model)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return Response{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("gemini API error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return Response{}, fmt.Errorf("gemini API %d: %s", resp.StatusCode, string(b))
	}

	var gr geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return Response{}, err
	}
	if len(gr.Candidates) == 0 {
		return Response{}, fmt.Errorf("empty gemini response")
	}

	cand := gr.Candidates[0]
	var text bytes.Buffer
	for _, p := range cand.Content.Parts {
		text.WriteString(p.Text)
	}

	sources := make([]market.GroundingSource, 0, len(cand.GroundingMetadata.GroundingChunks))
	for _, c := range cand.GroundingMetadata.GroundingChunks {
		sources = append(sources, market.GroundingSource{Title: c.Web.Title, URI: c.Web.URI})
	}

	return Response{Text: text.String(), Sources: sources}, nil
}

// backend/src/services/coach_service.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/username/tradepulse/backend/src/config"
	"github.com/username/tradepulse/backend/src/logger"
	"github.com/username/tradepulse/backend/src/models"
	"github.com/username/tradepulse/backend/src/utils"
)

type coachServiceImpl struct {
	tradeService TradeService
	httpClient   *http.Client
}

func NewCoachService(tradeService TradeService) CoachService {
	return &coachServiceImpl{
		tradeService: tradeService,
		httpClient:   &http.Client{},
	}
}

// tradeDigest is the trimmed view of a trade sent to the model. Only the
// fields the coaching prompt needs, to keep token usage down.
type tradeDigest struct {
	Symbol    string             `json:"symbol"`
	Setup     string             `json:"setup"`
	Pnl       float64            `json:"pnl"`
	Mistakes  []string           `json:"mistakes"`
	EntryTime string             `json:"entryTime"`
	Type      models.TradeType   `json:"type"`
	Status    models.TradeStatus `json:"status"`
}

func (s *coachServiceImpl) AnalyzeTrades(ctx context.Context, userID int64, customFocus string) (string, error) {
	if config.Cfg.GeminiAPIKey == "" {
		return "", ErrCoachNotConfigured
	}

	trades, err := s.tradeService.ListTrades(userID)
	if err != nil {
		return "", err
	}
	if len(trades) == 0 {
		return "", fmt.Errorf("no trades to analyze")
	}

	limit := utils.MinInt(len(trades), config.Cfg.CoachMaxTrades)
	digests := make([]tradeDigest, 0, limit)
	for _, t := range trades[:limit] {
		entryTime := ""
		if parts := strings.SplitN(t.EntryDate, " ", 2); len(parts) == 2 {
			entryTime = parts[1]
		}
		digests = append(digests, tradeDigest{
			Symbol:    t.Symbol,
			Setup:     t.Setup,
			Pnl:       t.Pnl,
			Mistakes:  t.Mistakes,
			EntryTime: entryTime,
			Type:      t.Type,
			Status:    t.Status,
		})
	}

	prompt := buildCoachPrompt(digests, customFocus)

	ctx, cancel := context.WithTimeout(ctx, config.Cfg.CoachTimeout)
	defer cancel()

	advice, err := s.generateContent(ctx, prompt)
	if err != nil {
		logger.L.Error("Coach model call failed", "userID", userID, "error", err)
		return "", err
	}
	return advice, nil
}

func buildCoachPrompt(digests []tradeDigest, customFocus string) string {
	data, _ := json.Marshal(digests)

	focusInstruction := "\n3. Give me one actionable piece of advice to improve my Profit Factor for next week."
	if customFocus != "" {
		focusInstruction = fmt.Sprintf("\nIMPORTANT: The user has explicitly asked you to focus your analysis on: %q. Prioritize this aspect above all else.", customFocus)
	}

	return fmt.Sprintf(`You are an elite Trading Coach and Risk Manager. I am providing you with my recent trade log in JSON format.

Your goal is to:
1. Identify my biggest weakness or recurring mistake.
2. Highlight my most profitable setup.
%s

Here is the data:
%s

Keep the tone professional, direct, and slightly strict, like a hedge fund manager reviewing a junior trader. Format with Markdown.`,
		focusInstruction, string(data))
}

// generateContent calls the Gemini generateContent endpoint and returns the
// first candidate's text.
func (s *coachServiceImpl) generateContent(ctx context.Context, prompt string) (string, error) {
	body := map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]string{{"text": prompt}}},
		},
		"generationConfig": map[string]any{
			"temperature": 0.7,
		},
	}
	bb, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", config.Cfg.GeminiBaseURL, config.Cfg.GeminiModel)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bb))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", config.Cfg.GeminiAPIKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("gemini http %d", resp.StatusCode)
	}

	var r struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return "", err
	}

	if len(r.Candidates) == 0 || len(r.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no candidates in model response")
	}
	return strings.TrimSpace(r.Candidates[0].Content.Parts[0].Text), nil
}

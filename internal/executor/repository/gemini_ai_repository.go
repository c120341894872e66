package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang-disclosure-watcher/internal/executor/config"
	"golang-disclosure-watcher/internal/executor/dto"
	"golang-disclosure-watcher/pkg/logger"
	"golang-disclosure-watcher/pkg/ratelimit"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// geminiAIRepository is an implementation of AIRepository that uses the Google Gemini API.
type geminiAIRepository struct {
	cfg            *config.Config
	logger         *logger.Logger
	tokenLimiter   *ratelimit.TokenLimiter
	requestLimiter *rate.Limiter
	genAiClient    *genai.Client
}

// NewGeminiAIRepository creates a new instance of geminiAIRepository.
func NewGeminiAIRepository(cfg *config.Config, log *logger.Logger, genAiClient *genai.Client) (AIRepository, error) {
	secondsPerRequest := time.Minute / time.Duration(cfg.Gemini.MaxRequestPerMinute)
	requestLimiter := rate.NewLimiter(rate.Every(secondsPerRequest), 1)

	tokenLimiter := ratelimit.NewTokenLimiter(cfg.Gemini.MaxTokenPerMinute)

	return &geminiAIRepository{
		cfg:            cfg,
		logger:         log,
		requestLimiter: requestLimiter,
		tokenLimiter:   tokenLimiter,
		genAiClient:    genAiClient,
	}, nil
}

// ClassifyDisclosure classifies a disclosure document from its title and
// publication date alone. The PDF itself is never sent for classification.
func (r *geminiAIRepository) ClassifyDisclosure(ctx context.Context, title, publicationDate string) (*dto.ClassificationResult, error) {
	prompt := BuildClassifyDisclosurePrompt(title, publicationDate)

	raw, err := r.executeGeminiAIRequest(ctx, []*genai.Content{
		genai.NewContentFromText(prompt, "user"),
	})
	if err != nil {
		return nil, err
	}

	var result dto.ClassificationResult
	if err := json.Unmarshal([]byte(trimJSONFence(raw)), &result); err != nil {
		r.logger.Error("Failed to unmarshal classification from Gemini response", logger.ErrorField(err), logger.StringField("response", raw))
		return nil, fmt.Errorf("failed to unmarshal classification from Gemini response: %w", err)
	}
	return &result, nil
}

// GenerateReleaseSummary produces the canonical summary for a release from
// its PDF documents.
func (r *geminiAIRepository) GenerateReleaseSummary(ctx context.Context, ticker string, docs []dto.PDFDocument) (*dto.ReleaseSummaryResult, error) {
	prompt := BuildReleaseSummaryPrompt(ticker, docs)

	raw, err := r.executeGeminiAIRequest(ctx, buildDocumentContents(prompt, docs))
	if err != nil {
		return nil, err
	}

	var result dto.ReleaseSummaryResult
	if err := json.Unmarshal([]byte(trimJSONFence(raw)), &result); err != nil {
		r.logger.Error("Failed to unmarshal release summary from Gemini response", logger.ErrorField(err), logger.StringField("response", raw))
		return nil, fmt.Errorf("failed to unmarshal release summary from Gemini response: %w", err)
	}
	return &result, nil
}

// GenerateCustomAnalysis produces a subscriber-specific analysis of a release
// driven by the subscriber's custom prompt.
func (r *geminiAIRepository) GenerateCustomAnalysis(ctx context.Context, ticker, customPrompt string, docs []dto.PDFDocument) (*dto.CustomAnalysisResult, error) {
	prompt := BuildCustomAnalysisPrompt(ticker, customPrompt, docs)

	raw, err := r.executeGeminiAIRequest(ctx, buildDocumentContents(prompt, docs))
	if err != nil {
		return nil, err
	}

	var result dto.CustomAnalysisResult
	if err := json.Unmarshal([]byte(trimJSONFence(raw)), &result); err != nil {
		r.logger.Error("Failed to unmarshal custom analysis from Gemini response", logger.ErrorField(err), logger.StringField("response", raw))
		return nil, fmt.Errorf("failed to unmarshal custom analysis from Gemini response: %w", err)
	}
	return &result, nil
}

// buildDocumentContents assembles a prompt and its PDF attachments into a
// single user turn.
func buildDocumentContents(prompt string, docs []dto.PDFDocument) []*genai.Content {
	parts := []*genai.Part{genai.NewPartFromText(prompt)}
	for _, doc := range docs {
		parts = append(parts, genai.NewPartFromBytes(doc.Data, "application/pdf"))
	}
	return []*genai.Content{genai.NewContentFromParts(parts, "user")}
}

func (r *geminiAIRepository) executeGeminiAIRequest(ctx context.Context, contents []*genai.Content) (string, error) {
	geminiTokenResp, err := r.genAiClient.Models.CountTokens(ctx, r.cfg.Gemini.Model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("failed to count tokens: %w", err)
	}

	r.logger.Debug("Gemini token count",
		logger.IntField("total_tokens", int(geminiTokenResp.TotalTokens)),
		logger.IntField("remaining", r.tokenLimiter.GetRemaining()),
	)

	if err := r.tokenLimiter.Wait(ctx, int(geminiTokenResp.TotalTokens)); err != nil {
		return "", fmt.Errorf("failed to wait for token limit: %w", err)
	}

	if err := r.requestLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("failed to wait for request limit: %w", err)
	}

	if int(geminiTokenResp.TotalTokens) > r.cfg.Gemini.MaxTokenPerMinute/2 {
		r.logger.Warn("Token has exceeded 50% of the limit", logger.IntField("remaining", r.tokenLimiter.GetRemaining()))
	}

	resp, err := r.genAiClient.Models.GenerateContent(ctx, r.cfg.Gemini.Model, contents, nil)
	if err != nil {
		r.logger.Error("Failed to send request to Gemini API", logger.ErrorField(err))
		return "", fmt.Errorf("failed to send request to Gemini API: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("invalid response from Gemini API: no content found")
	}

	return resp.Candidates[0].Content.Parts[0].Text, nil
}

// trimJSONFence strips the Markdown code fence the model wraps around JSON
// output.
func trimJSONFence(s string) string {
	return strings.Trim(s, "`json\n`")
}

package analysis

import (
	"context"
	"strings"
	"time"

	"github.com/DragX-cyber/Legal-Mate/internal/llm"
	"github.com/DragX-cyber/Legal-Mate/internal/shared/metrics"
	"github.com/DragX-cyber/Legal-Mate/internal/shared/telemetry"
)

const defaultMaxDocChars = 30000

// Compiler turns normalized contract text into a structured RiskAssessment.
// One analysis run is one model call plus strict validation; a reply that
// fails validation is rejected whole, never repaired.
type Compiler struct {
	LLM            llm.Client
	MaxDocChars    int
	MaxRetries     int
	RetryBaseDelay time.Duration
}

// NewCompiler builds a Compiler with the given model client and limits.
// Zero limits fall back to defaults (30000 chars, 2 retries, 300ms base delay).
func NewCompiler(client llm.Client, maxDocChars, maxRetries int, retryBaseDelay time.Duration) *Compiler {
	if maxDocChars <= 0 {
		maxDocChars = defaultMaxDocChars
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Compiler{
		LLM:            client,
		MaxDocChars:    maxDocChars,
		MaxRetries:     maxRetries,
		RetryBaseDelay: retryBaseDelay,
	}
}

// Analyze runs one assessment over the normalized contract text.
// Returns ErrEmptyDocument, ErrModelUnavailable, or ErrMalformedOutput.
func (c *Compiler) Analyze(ctx context.Context, text string, profile UserProfile) (RiskAssessment, error) {
	if strings.TrimSpace(text) == "" {
		return RiskAssessment{}, ErrEmptyDocument
	}

	started := time.Now()
	metrics.IncAnalysisStarted()

	prompt := buildAnalysisPrompt(text, profile, c.MaxDocChars)
	client := NewRetryingClient(c.LLM, c.MaxRetries, c.RetryBaseDelay)

	raw, err := client.Generate(ctx, llm.GenerateRequest{
		System:   analysisSystemPrompt,
		Prompt:   prompt,
		WantJSON: true,
	})
	if err != nil {
		metrics.IncAnalysisFailed()
		return RiskAssessment{}, ClassifyModelError(err)
	}

	assessment, err := parseAssessment(raw, text)
	if err != nil {
		metrics.IncAnalysisFailed()
		telemetry.Error("analysis rejected", map[string]any{
			"error":    err.Error(),
			"raw_size": len(raw),
		})
		return RiskAssessment{}, err
	}

	metrics.IncAnalysisCompleted()
	metrics.ObserveAnalysisDurationMs(float64(time.Since(started).Milliseconds()))
	telemetry.Info("analysis completed", map[string]any{
		"clauses":      len(assessment.Clauses),
		"risk_score":   assessment.OverallRiskScore,
		"highest_risk": string(assessment.HighestRisk()),
		"duration_ms":  time.Since(started).Milliseconds(),
	})
	return assessment, nil
}

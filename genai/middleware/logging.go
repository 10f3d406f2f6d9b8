package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/verdantlabs/googleai/genai"
	"github.com/verdantlabs/googleai/internal/utils"
)

// LogLevel controls how much detail the logging middleware emits.
type LogLevel int

const (
	// LogLevelMinimal logs the model, duration and token counts.
	LogLevelMinimal LogLevel = iota

	// LogLevelStandard adds content counts and the finish reason. The
	// recommended default.
	LogLevelStandard

	// LogLevelVerbose adds the response text, truncated to 500 characters.
	//
	// WARNING: verbose output logs raw model text, which may contain
	// sensitive user data. Intended for local debugging only.
	LogLevelVerbose
)

const truncateLen = 500

// Logging returns a middleware that emits a structured slog entry per send.
// logger must not be nil; use slog.Default() when in doubt.
func Logging(logger *slog.Logger, level LogLevel) genai.Middleware {
	return func(next genai.SendFunc) genai.SendFunc {
		return func(ctx context.Context, req *genai.Request) (*genai.GenerateContentResponse, error) {
			start := time.Now()
			res, err := next(ctx, req)
			elapsed := time.Since(start)

			attrs := []any{
				slog.String("model", req.Model),
				slog.Duration("duration", elapsed),
			}
			if level >= LogLevelStandard && req.Body != nil {
				attrs = append(attrs, slog.Int("contents", len(req.Body.Contents)))
			}
			if err != nil {
				attrs = append(attrs, slog.String("error", err.Error()))
				logger.ErrorContext(ctx, "generate failed", attrs...)
				return res, err
			}

			if res.UsageMetadata != nil {
				attrs = append(attrs,
					slog.Int("tokens.prompt", res.UsageMetadata.PromptTokenCount),
					slog.Int("tokens.candidates", res.UsageMetadata.CandidatesTokenCount),
					slog.Int("tokens.total", res.UsageMetadata.TotalTokenCount),
				)
			}
			if level >= LogLevelStandard && len(res.Candidates) > 0 {
				attrs = append(attrs, slog.String("finish_reason", res.Candidates[0].FinishReason))
			}
			if level >= LogLevelVerbose {
				attrs = append(attrs, slog.String("response", utils.Truncate(res.Text(), truncateLen)))
			}
			logger.InfoContext(ctx, "generate", attrs...)
			return res, nil
		}
	}
}

package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/skillpath/internal/logging"
)

// LoggingProvider logs every tutor request with its purpose, the learner
// and course it serves, token usage, latency and estimated cost.
type LoggingProvider struct {
	inner Provider
	log   *logging.Logger
}

// WithLogging wraps a Provider with request logging.
func WithLogging(p Provider, log *logging.Logger) Provider {
	if log == nil {
		log = logging.Nop()
	}
	return &LoggingProvider{inner: p, log: log.Named("llm")}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	resp, err := l.inner.Generate(ctx, req)

	kv := []any{
		"purpose", string(PurposeFrom(ctx)),
		"model", l.inner.ModelID(),
		"latency_ms", time.Since(start).Milliseconds(),
	}
	if s := SubjectFrom(ctx); s.LearnerID != "" || s.CourseID != "" {
		kv = append(kv, "learner_id", s.LearnerID, "course_id", s.CourseID)
	}
	if resp != nil {
		kv = append(kv,
			"served_model", resp.Model,
			"input_tokens", resp.Usage.InputTokens,
			"output_tokens", resp.Usage.OutputTokens,
		)
		if c := LookupCost(resp.Model); c != nil {
			kv = append(kv, "cost_usd", c.Cost(resp.Usage.InputTokens, resp.Usage.OutputTokens))
		}
	}

	if err != nil {
		l.log.Warn("llm request failed", append(kv, "error", err)...)
		return resp, err
	}
	l.log.Info("llm request", kv...)
	l.log.Debug("llm request body", "body", serializeRequest(req))
	return resp, nil
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

// serializeRequest builds a readable representation of the LLM request.
func serializeRequest(req Request) string {
	var b strings.Builder

	if req.System != "" {
		b.WriteString("[system]\n")
		b.WriteString(req.System)
		b.WriteString("\n\n")
	}

	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n", m.Role)
		b.WriteString(m.Content)
		b.WriteString("\n\n")
	}

	if req.Schema != nil {
		if def, err := json.Marshal(req.Schema.Definition); err == nil {
			fmt.Fprintf(&b, "[schema: %s]\n", req.Schema.Name)
			b.Write(def)
			b.WriteString("\n")
		}
	}

	return b.String()
}

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/skillpath/internal/llm"
	"github.com/abhisek/skillpath/internal/logging"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect and test the LLM provider",
}

var llmInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the configured provider and model pricing",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		p, err := llm.NewProvider(cmd.Context(), cfg.LLM, logging.Nop())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Provider:  %s\n", cfg.LLM.Provider)
		fmt.Fprintf(out, "Model:     %s\n", p.ModelID())
		fmt.Fprintf(out, "Timeout:   %s\n", cfg.LLM.Timeout)
		fmt.Fprintf(out, "Retries:   %d\n", cfg.LLM.Retry.MaxAttempts)
		if c := llm.LookupCost(p.ModelID()); c != nil {
			fmt.Fprintf(out, "Pricing:   $%.2f / $%.2f per 1M tokens (in/out)\n", c.InputPerMTok, c.OutputPerMTok)
		} else {
			fmt.Fprintln(out, "Pricing:   unknown")
		}
		return nil
	},
}

var llmPingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Send a tiny structured request to check credentials",
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		p, err := llm.NewProvider(cmd.Context(), a.cfg.LLM, a.log)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(llm.WithPurpose(cmd.Context(), llm.PurposePing), 30*time.Second)
		defer cancel()

		start := time.Now()
		resp, err := p.Generate(ctx, llm.Request{
			Messages:  []llm.Message{{Role: llm.RoleUser, Content: `Reply with {"ok": true}.`}},
			MaxTokens: 32,
			Schema: &llm.Schema{
				Name:        "ping",
				Description: "Connectivity check",
				Definition: map[string]any{
					"type":                 "object",
					"properties":           map[string]any{"ok": map[string]any{"type": "boolean"}},
					"required":             []any{"ok"},
					"additionalProperties": false,
				},
			},
		})
		if err != nil {
			return fmt.Errorf("ping %s: %w", p.ModelID(), err)
		}

		var body struct {
			OK bool `json:"ok"`
		}
		if err := json.Unmarshal(resp.Content, &body); err != nil || !body.OK {
			return fmt.Errorf("ping %s: unexpected reply %s", p.ModelID(), resp.Content)
		}
		fmt.Fprintf(a.out, "✓ %s replied in %dms (%d in / %d out tokens)\n",
			resp.Model, time.Since(start).Milliseconds(), resp.Usage.InputTokens, resp.Usage.OutputTokens)
		return nil
	}),
}

func init() {
	llmCmd.AddCommand(llmInfoCmd)
	llmCmd.AddCommand(llmPingCmd)
}

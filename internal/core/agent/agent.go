// Package agent turns natural-language requests into executable plans
// using an OpenAI-compatible chat completion endpoint.
package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/rs/zerolog"

	"github.com/tusk-sh/tusk/internal/core/config"
	"github.com/tusk-sh/tusk/internal/core/logging"
	"github.com/tusk-sh/tusk/internal/core/plan"
	"github.com/tusk-sh/tusk/internal/core/safety"
	"github.com/tusk-sh/tusk/internal/core/termctx"
)

// Generator produces a plan for a natural-language request.
type Generator interface {
	GeneratePlan(ctx context.Context, request string, snapshot *termctx.Snapshot) (*plan.Plan, error)
}

const systemPrompt = `You are a terminal assistant. Given a user request and a
snapshot of their environment, respond with a single JSON object:

{
  "explanation": "one sentence describing what the plan does",
  "actions": [
    {"type": "shell_command", "content": "the command", "explanation": "why"},
    {"type": "interpreted_code", "content": "python source", "explanation": "why"}
  ],
  "requires_backup": false,
  "backup_paths": []
}

Rules:
- Prefer shell_command actions; use interpreted_code only when shell cannot express the task.
- Set requires_backup true and list backup_paths when any action modifies or deletes files.
- Never invent paths that do not appear in the request or the environment snapshot.
- Respond with the JSON object only, no prose around it.`

// Agent generates plans by calling a chat completion API. Requests that
// already look like shell commands are wrapped into a plan locally without
// a network round trip.
type Agent struct {
	client openai.Client
	cfg    config.AgentConfig
	log    zerolog.Logger
}

// New builds an Agent from configuration. The endpoint must speak the
// OpenAI chat completions protocol.
func New(cfg config.AgentConfig) *Agent {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &Agent{
		client: openai.NewClient(opts...),
		cfg:    cfg,
		log:    logging.Component("agent"),
	}
}

// GeneratePlan returns a plan for the request. Direct shell commands bypass
// the model entirely.
func (a *Agent) GeneratePlan(ctx context.Context, request string, snapshot *termctx.Snapshot) (*plan.Plan, error) {
	request = strings.TrimSpace(request)
	if request == "" {
		return nil, fmt.Errorf("empty request")
	}

	if IsDirectCommand(request) {
		a.log.Debug().Str("request", request).Msg("treating request as direct command")
		return DirectPlan(request), nil
	}

	if !a.cfg.Enabled || a.cfg.APIKey == "" {
		a.log.Debug().Msg("agent disabled; returning offline fallback")
		return fallbackPlan(
			"Remote requests are disabled. Set TUSK_API_KEY or agent.enabled to generate plans.",
			"echo 'tusk: remote requests are disabled; type a shell command to run it directly'",
		), nil
	}

	raw, err := a.complete(ctx, request, snapshot)
	if err != nil {
		a.log.Error().Err(err).Msg("completion request failed")
		return fallbackPlan(
			"There was an error reaching the model. Check your API key and connection.",
			"echo 'tusk: could not reach the model service'",
		), nil
	}

	p, err := ParsePlanResponse(raw)
	if err != nil {
		a.log.Warn().Err(err).Str("response", truncate(raw, 200)).Msg("unparseable model response")
		return fallbackPlan(
			fmt.Sprintf("I couldn't turn the response into a plan for: %s", request),
			"echo 'tusk: request could not be processed; try a clearer description'",
		), nil
	}
	return p, nil
}

// fallbackPlan wraps an apologetic echo so the pipeline stays uniform
// when no real plan could be produced.
func fallbackPlan(explanation, command string) *plan.Plan {
	p := plan.New(explanation, plan.Action{
		Kind:        plan.KindShellCommand,
		Content:     command,
		Explanation: "display what went wrong",
	})
	p.RequiresConfirmation = false
	return p
}

func (a *Agent) complete(ctx context.Context, request string, snapshot *termctx.Snapshot) (string, error) {
	user := request
	if snapshot != nil {
		user = fmt.Sprintf("Environment:\n%s\nRequest: %s", snapshot.String(), request)
	}

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(a.cfg.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(user),
		},
	}
	if a.cfg.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(a.cfg.MaxTokens))
	}
	if a.cfg.Temperature > 0 {
		params.Temperature = openai.Float(a.cfg.Temperature)
	}

	a.log.Debug().Str("model", a.cfg.Model).Msg("requesting completion")
	resp, err := a.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in completion response")
	}
	return resp.Choices[0].Message.Content, nil
}

// DirectPlan wraps a literal shell command into a single-action plan.
// Destructive commands keep the confirmation and backup steps;
// harmless ones run straight through.
func DirectPlan(command string) *plan.Plan {
	destructive := safety.IsDestructive(command)

	p := plan.New(fmt.Sprintf("Run: %s", command), plan.Action{
		Kind:        plan.KindShellCommand,
		Content:     command,
		Explanation: "run the command as given",
	})
	p.RequiresConfirmation = destructive
	p.RequiresBackup = destructive
	return p
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

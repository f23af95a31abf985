// Command agentcore wires the core's collaborators into a runnable
// single-turn CLI: it reads a prompt, runs one Agentic Loop turn
// against the requested provider, and prints the resulting transcript.
// It is a thin demonstration harness, not a product; the UI, storage,
// and OAuth collaborators named in the design are intentionally out of
// scope here.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sidekickdev/agentcore/agentloop"
	"github.com/sidekickdev/agentcore/config"
	"github.com/sidekickdev/agentcore/conversation"
	"github.com/sidekickdev/agentcore/eventbus"
	"github.com/sidekickdev/agentcore/examples"
	"github.com/sidekickdev/agentcore/logging"
	"github.com/sidekickdev/agentcore/permission"
	"github.com/sidekickdev/agentcore/provider"
	"github.com/sidekickdev/agentcore/tool"
)

func main() {
	var (
		dialect    string
		model      string
		prompt     string
		apiKey     string
		configPath string
		cwd        string
		autoAllow  bool
	)
	flag.StringVar(&dialect, "dialect", "anthropic", "provider dialect: anthropic or openai")
	flag.StringVar(&model, "model", "claude-sonnet-4-20250514", "model id to request")
	flag.StringVar(&prompt, "prompt", "", "the user prompt for this turn")
	flag.StringVar(&apiKey, "api-key", os.Getenv("AGENTCORE_API_KEY"), "provider API key")
	flag.StringVar(&configPath, "config", "agentcore.toml", "path to the loop's TOML config")
	flag.StringVar(&cwd, "cwd", ".", "working directory tools execute in")
	flag.BoolVar(&autoAllow, "yes", false, "auto-approve every permission request (demo convenience only)")
	flag.Parse()

	if prompt == "" {
		fmt.Fprintln(os.Stderr, "agentcore: -prompt is required")
		os.Exit(1)
	}

	log := logging.Get()

	root, err := resolveAbs(cwd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "agentcore: resolving cwd: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "agentcore: loading config: %v\n", err)
		os.Exit(1)
	}

	mediator, err := permission.NewMediator(nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "agentcore: constructing permission mediator: %v\n", err)
		os.Exit(1)
	}
	if autoAllow {
		mediator.SetClosure(func(ctx context.Context, req permission.Request) {
			go mediator.Respond(req.ID, true, permission.Session, req.Kind, req.AlwaysPatterns)
		})
	}

	registry := tool.NewRegistry()
	registry.Register(examples.ReadTool{})
	registry.Register(examples.BashTool{Timeout: time.Duration(cfg.ShellTimeoutSeconds) * time.Second})
	registry.Register(examples.GrepTool{})

	bus := eventbus.New(cfg.BusTopicCapacity)
	drainBusToStdout(bus)

	var client agentloop.StreamClient
	switch dialect {
	case "anthropic":
		client = provider.NewAnthropicClient()
	case "openai":
		client = provider.NewOpenAIClient()
	default:
		fmt.Fprintf(os.Stderr, "agentcore: unknown dialect %q\n", dialect)
		os.Exit(1)
	}

	loop := agentloop.NewLoop(client, registry, mediator, cfg)

	conv := &conversation.Conversation{}
	conv.Append(provider.Message{Role: provider.RoleUser, Text: prompt})

	abort := make(chan struct{})
	toolCtx := tool.Context{
		SessionID:   "ses_local",
		Cwd:         root,
		Root:        root,
		Abort:       abort,
		Permissions: mediator,
	}

	defs := registry.Definitions()
	tools := make([]provider.ToolDefinition, len(defs))
	for i, def := range defs {
		tools[i] = provider.ToolDefinition{Name: def.Name, Description: def.Description, InputSchema: def.InputSchema}
	}

	turnCfg := agentloop.TurnConfig{
		APIKey:          apiKey,
		Model:           model,
		Tools:           tools,
		MaxOutputTokens: 4096,
	}

	observer := agentloop.BusObserver{Bus: bus, SessionID: toolCtx.SessionID}

	if err := loop.Run(context.Background(), conv, turnCfg, toolCtx, observer); err != nil {
		log.Error().Err(err).Msg("agentcore: turn ended in error")
		fmt.Fprintf(os.Stderr, "agentcore: %v\n", err)
		os.Exit(1)
	}

	printTranscript(conv)
}

func resolveAbs(path string) (string, error) {
	return filepath.Abs(path)
}

func drainBusToStdout(bus *eventbus.Bus) {
	deltas := eventbus.Subscribe[agentloop.StreamDelta](bus)
	go func() {
		for d := range deltas.Events() {
			fmt.Print(d.Text)
		}
	}()
}

func printTranscript(conv *conversation.Conversation) {
	fmt.Println()
	for _, msg := range conv.Messages {
		if msg.HasParts() {
			encoded, _ := json.Marshal(msg.Parts)
			fmt.Printf("[%s parts] %s\n", msg.Role, encoded)
			continue
		}
		fmt.Printf("[%s] %s\n", msg.Role, msg.Text)
	}
}

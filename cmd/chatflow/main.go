// Package main provides the ChatFlow CLI application
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/chatflow/chatflow/internal/adapters/collab"
	"github.com/chatflow/chatflow/internal/adapters/repository/sessionstore"
	"github.com/chatflow/chatflow/internal/app/services"
	"github.com/chatflow/chatflow/internal/app/usecases"
	"github.com/chatflow/chatflow/internal/core/flow"
	"github.com/chatflow/chatflow/internal/infrastructure/config"
	"github.com/chatflow/chatflow/pkg/chatflow"
)

// Version information set during build
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version":
			fmt.Printf("ChatFlow %s (commit: %s, built: %s)\n", Version, Commit, BuildTime)
			return
		case "generate":
			if err := generate(strings.Join(os.Args[2:], " ")); err != nil {
				fmt.Fprintln(os.Stderr, "error:", err)
				os.Exit(1)
			}
			return
		}
	}
	if err := demo(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// generate turns a natural-language description into a flow document
// and prints it as JSON.
func generate(description string) error {
	if description == "" {
		return fmt.Errorf("usage: chatflow generate <description>")
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.OpenAIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is not set")
	}

	log, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer log.Sync()

	opts := []collab.OpenAIOption{collab.WithDefaultModel(cfg.OpenAIModel)}
	if cfg.OpenAIBaseURL != "" {
		opts = append(opts, collab.WithProvider("default", cfg.OpenAIBaseURL, cfg.OpenAIKey))
	}
	gen := collab.NewOpenAIGenerator(cfg.OpenAIKey, opts...)

	f, err := services.NewFlowGenerator(gen, cfg.OpenAIModel, log).Generate(context.Background(), description)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// demo runs a small color-quiz flow against a console messenger.
func demo() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	opts := chatflow.Options{
		Collaborators: usecases.Collaborators{Messenger: consoleMessenger{}},
		MaxSteps:      cfg.MaxSteps,
		EffectTimeout: cfg.EffectTimeout,
	}
	if cfg.StoreBackend == "sqlite" {
		db, err := sql.Open("sqlite", cfg.SQLitePath)
		if err != nil {
			return err
		}
		defer db.Close()
		store := sessionstore.NewSQLiteStore(db, nil)
		if err := store.EnsureSchema(context.Background()); err != nil {
			return err
		}
		opts.Sessions = store
	}

	rt := chatflow.NewRuntimeWith(opts)
	defer rt.Close()

	ctx := context.Background()
	if err := rt.SaveFlow(ctx, quizFlow()); err != nil {
		return err
	}

	res, err := rt.Start(ctx, "color-quiz", "contact-1", map[string]any{"name": "Ana"})
	if err != nil {
		return err
	}
	fmt.Printf("-> session %s suspended (%s)\n", res.SessionID, res.Reason)

	fmt.Println("<- contact replies: red")
	res, err = rt.HandleMessage(ctx, res.SessionID, "red")
	if err != nil {
		return err
	}
	fmt.Printf("-> session %s %s after %d steps\n", res.SessionID, res.Status, res.Steps)
	return nil
}

func quizFlow() *flow.Flow {
	return &flow.Flow{
		ID: "color-quiz",
		Nodes: []*flow.Node{
			{ID: "start", Type: flow.NodeStart, Data: &flow.StartData{}},
			{ID: "greet", Type: flow.NodeMessage, Data: &flow.MessageData{Content: "Hi {{name}}!"}},
			{ID: "ask", Type: flow.NodeQuestion, Data: &flow.QuestionData{
				Question: "Red or blue?",
				Variable: "color",
			}},
			{ID: "branch", Type: flow.NodeCondition, Data: &flow.ConditionData{
				Variable: "color",
				Operator: flow.OpEquals,
				Value:    "red",
			}},
			{ID: "red", Type: flow.NodeMessage, Data: &flow.MessageData{Content: "Red it is."}},
			{ID: "blue", Type: flow.NodeMessage, Data: &flow.MessageData{Content: "Blue, nice."}},
		},
		Edges: []*flow.Edge{
			{ID: "e1", Source: "start", Target: "greet"},
			{ID: "e2", Source: "greet", Target: "ask"},
			{ID: "e3", Source: "ask", Target: "branch"},
			{ID: "e4", Source: "branch", Target: "red", SourceHandle: flow.HandleTrue},
			{ID: "e5", Source: "branch", Target: "blue", SourceHandle: flow.HandleFalse},
		},
	}
}

type consoleMessenger struct{}

func (consoleMessenger) SendText(_ context.Context, contactID, text string) error {
	fmt.Printf("[%s] %s\n", contactID, text)
	return nil
}

func (consoleMessenger) SendMedia(_ context.Context, contactID, mediaType, url, caption string) error {
	fmt.Printf("[%s] %s %s %s\n", contactID, mediaType, url, caption)
	return nil
}

func (consoleMessenger) SendTemplate(_ context.Context, contactID, name string, params map[string]string) error {
	fmt.Printf("[%s] template %s %v\n", contactID, name, params)
	return nil
}

package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/openai"

	"github.com/supplierx/poagent/agent"
	"github.com/supplierx/poagent/answer"
	"github.com/supplierx/poagent/dialogue"
	"github.com/supplierx/poagent/extract"
	"github.com/supplierx/poagent/resolve"
	"github.com/supplierx/poagent/store"
)

func main() {
	conf := flag.String("config", "config.json", "path to config file")
	flag.Parse()
	if err := startApp(context.Background(), *conf); err != nil {
		log.Fatalf("start app: %v", err)
	}
}

func startApp(ctx context.Context, configPath string) error {
	slog.SetLogLoggerLevel(slog.LevelInfo)

	memory := store.NewMemory()
	resolver := resolve.New(memory)

	var extractor extract.Extractor = extract.LocalExtractor{}
	if config, err := loadConfig(configPath); err == nil && config.APIKey != "" {
		cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
			APIKey:  config.APIKey,
			Model:   config.Model,
			BaseURL: config.BaseURL,
		})
		if err != nil {
			return err
		}
		toolExtractor, err := extract.NewToolBasedExtractor(cm)
		if err != nil {
			return err
		}
		extractor = extract.NewFailback(toolExtractor, extract.LocalExtractor{})
	} else {
		slog.Info("no chat model configured, running with keyword extraction only")
	}

	flow := dialogue.NewFlow(resolver, extractor, answer.Static{}, memory)
	poAgent := agent.New(
		"SupplierXPOAgent",
		"An agent that creates independent purchase orders via conversation",
		flow,
		agent.NewMemoryStateReadWriter(),
	)

	ctx = agent.WithSessionKey(ctx, agent.NewSessionKey())
	fmt.Println(dialogue.Greeting())
	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("\nYou: ")
		input, err := reader.ReadString('\n')
		if err != nil {
			fmt.Println("Input closed, bye.")
			return nil
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		resp, err := poAgent.Chat(ctx, input)
		if err != nil {
			return err
		}
		fmt.Printf("\nAgent: %s\n", resp.Message)
	}
}

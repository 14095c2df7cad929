package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/gin-gonic/gin"

	"github.com/supplierx/poagent/agent"
	"github.com/supplierx/poagent/answer"
	"github.com/supplierx/poagent/dialogue"
	"github.com/supplierx/poagent/extract"
	"github.com/supplierx/poagent/resolve"
	"github.com/supplierx/poagent/store"
)

// OrderFinder is implemented by both the MySQL store and the in-memory one.
type OrderFinder interface {
	FindOrder(ctx context.Context, number string) (*dialogue.Order, error)
}

func main() {
	conf := flag.String("config", "config.json", "path to config file")
	addr := flag.String("addr", ":8080", "listen address")
	flag.Parse()
	if err := startServer(context.Background(), *conf, *addr); err != nil {
		log.Fatalf("start server: %v", err)
	}
}

func startServer(ctx context.Context, configPath, addr string) error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	var (
		directory resolve.Directory
		creator   dialogue.OrderCreator
		finder    OrderFinder
		runner    answer.QueryRunner
	)
	if os.Getenv("DB_HOST") != "" {
		db, err := store.Connect(logger)
		if err != nil {
			return err
		}
		if err := store.Migrate(db); err != nil {
			return err
		}
		s := store.New(db)
		directory, creator, finder, runner = s, s, s, s
	} else {
		logger.Info("DB_HOST not set, serving from in-memory datasets")
		m := store.NewMemory()
		directory, creator, finder = m, m, m
	}

	var chatModel model.ToolCallingChatModel
	if config, err := loadConfig(configPath); err == nil && config.APIKey != "" {
		chatModel, err = openai.NewChatModel(ctx, &openai.ChatModelConfig{
			APIKey:  config.APIKey,
			Model:   config.Model,
			BaseURL: config.BaseURL,
		})
		if err != nil {
			return err
		}
	}

	var extractor extract.Extractor = extract.LocalExtractor{}
	if chatModel != nil {
		toolExtractor, err := extract.NewToolBasedExtractor(chatModel)
		if err != nil {
			return err
		}
		extractor = extract.NewFailback(toolExtractor, extract.LocalExtractor{})
	}

	answerers := []answer.Answerer{answer.NewOrderLookup(renderOrder(finder))}
	if chatModel != nil && runner != nil {
		sqlAnswerer, err := answer.NewSQLAnswerer(chatModel, runner)
		if err != nil {
			return err
		}
		answerers = append(answerers, sqlAnswerer)
	}
	answerers = append(answerers, answer.Static{})
	answerer := answer.NewFailback(answerers...)

	flow := dialogue.NewFlow(resolve.New(directory), extractor, answerer, creator, dialogue.WithLogger(logger))
	poAgent := agent.New(
		"SupplierXPOAgent",
		"An agent that creates independent purchase orders via conversation",
		flow,
		agent.NewMemoryStateReadWriter(),
		agent.WithLogger(logger),
	)

	router := gin.Default()
	registerRoutes(router, poAgent, finder)
	logger.Info("listening", "addr", addr)
	return router.Run(addr)
}

// renderOrder adapts the order finder into the Q&A lookup path.
func renderOrder(finder OrderFinder) answer.RenderOrderFunc {
	return func(ctx context.Context, number string) (string, error) {
		order, err := finder.FindOrder(ctx, number)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf(
			"Order %s (%s)\nSupplier: %s\nOrder date: %s, valid until %s\nItems: %d, grand total: %.2f %s\nStatus: %s",
			order.Number, order.OrderType, order.Supplier.Name,
			order.OrderDate.Format("2006-01-02"), order.ValidityDate.Format("2006-01-02"),
			len(order.LineItems), order.GrandTotal, order.Currency, order.Status,
		), nil
	}
}

func registerRoutes(router *gin.Engine, poAgent *agent.Agent, finder OrderFinder) {
	router.POST("/sessions", func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{
			"session_id": agent.NewSessionKey(),
			"message":    dialogue.Greeting(),
		})
	})

	router.POST("/sessions/:id/chat", func(c *gin.Context) {
		var body struct {
			Message string `json:"message" binding:"required"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		ctx := agent.WithSessionKey(c.Request.Context(), c.Param("id"))
		resp, err := poAgent.Chat(ctx, body.Message)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "chat failed"})
			return
		}
		c.JSON(http.StatusOK, resp)
	})

	router.DELETE("/sessions/:id", func(c *gin.Context) {
		ctx := agent.WithSessionKey(c.Request.Context(), c.Param("id"))
		if err := poAgent.EndSession(ctx); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "end session failed"})
			return
		}
		c.Status(http.StatusNoContent)
	})

	router.GET("/orders/:number", func(c *gin.Context) {
		order, err := finder.FindOrder(c.Request.Context(), c.Param("number"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		c.JSON(http.StatusOK, order)
	})
}

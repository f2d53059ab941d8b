// Package main runs the gymflow progress MCP server over stdio.
// The same tools are mounted on the service at /mcp over HTTP, so either can be used.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/2beens/gymflow/internal/config"
	"github.com/2beens/gymflow/internal/gymflow/gateway"
	gymflowmcp "github.com/2beens/gymflow/internal/gymflow/mcp"
	"github.com/2beens/gymflow/internal/gymflow/progress"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path to TOML config file")
	flag.Parse()

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("location: %v", err)
	}

	// logrus stays on stderr, stdout carries the protocol
	client := gateway.NewClient(gateway.ClientParams{
		BaseURL:   cfg.APIBaseURL,
		UserAgent: "gymflow-mcp/1.0",
	})
	server := gymflowmcp.NewServer(client, progress.NewEngine(loc))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		log.Fatal(err)
	}
}

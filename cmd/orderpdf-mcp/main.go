// Command orderpdf-mcp is an MCP (Model Context Protocol) server that exposes
// order document generation to AI assistants.
//
// # Installation
//
//	go install github.com/lvillar/orderpdf/cmd/orderpdf-mcp@latest
//
// # Configuration for Claude Desktop
//
// Add to ~/.config/claude/claude_desktop_config.json:
//
//	{
//	  "mcpServers": {
//	    "orderpdf": {
//	      "command": "orderpdf-mcp",
//	      "args": ["-config", "/etc/orderpdf.json"]
//	    }
//	  }
//	}
//
// # Available Tools
//
//   - generate_order_pdf: Generate the PDF of one order
//   - generate_combined_pdf: Generate one PDF per group of orders
//   - plan_document: Lay out orders without rendering
//
// # Available Resources
//
//   - orders://summary?path=... : Summarize a saved order service response
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/lvillar/orderpdf"
	"github.com/lvillar/orderpdf/mcp"
)

func main() {
	configPath := flag.String("config", "", "JSON configuration file")
	outDir := flag.String("out", "", "output directory, overrides the configuration")
	flag.Parse()

	// stdout carries the protocol.
	log := logrus.New()
	log.SetOutput(os.Stderr)

	cfg := new(orderpdf.Config)
	if *configPath != "" {
		var err error
		if cfg, err = orderpdf.LoadConfig(*configPath); err != nil {
			log.WithError(err).Fatal("loading configuration")
		}
	}
	if *outDir != "" {
		cfg.OutputDir = *outDir
	}
	level, err := cfg.Level()
	if err != nil {
		log.WithError(err).Fatal("invalid log level")
	}
	log.SetLevel(level)

	opts, closer, err := cfg.Options(log)
	if err != nil {
		log.WithError(err).Fatal("configuring generator")
	}
	defer closer()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := mcp.NewServer(log)
	mcp.RegisterDefaultTools(server, orderpdf.New(opts...))
	mcp.RegisterDefaultResources(server)

	if err := server.Run(ctx); err != nil && err != context.Canceled {
		log.WithError(err).Error("orderpdf-mcp stopped")
		closer()
		os.Exit(1)
	}
}

// discord-mcp exposes Discord operations and a reaction-based opt-in reminder
// engine as MCP tools over stdio.
//
// Campaigns register a Discord message + emoji as a signup sheet; reactors are
// tallied into a durable opt-in set and mentioned in chunked reminder
// broadcasts when the campaign comes due. State lives in a single SQLite
// database; the scheduler is driven by external ticks (discord_run_due_reminders).
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"

	"github.com/rallycall/discord-mcp/internal/campaign"
	"github.com/rallycall/discord-mcp/internal/config"
	"github.com/rallycall/discord-mcp/internal/discord"
	"github.com/rallycall/discord-mcp/internal/mcptools"
	"github.com/rallycall/discord-mcp/internal/store"
)

const version = "1.0.0"

func main() {
	// Logging goes to stderr; stdout carries the MCP stdio transport.
	log.SetOutput(os.Stderr)

	// Load .env if present (won't error if missing).
	if err := godotenv.Load(); err == nil {
		log.Println("[config] loaded .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[config] %v", err)
	}
	if cfg.DryRun {
		log.Println("[config] DRY_RUN enabled: outbound Discord writes are suppressed")
	}

	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("[store] %v", err)
	}
	defer st.Close()

	session, err := discord.New(cfg)
	if err != nil {
		log.Fatalf("[discord] %v", err)
	}
	defer session.Close()

	engine := campaign.New(st, session, campaign.Options{
		DryRun:    cfg.DryRun,
		Templates: cfg.Templates,
	})

	s := server.NewMCPServer(
		"discord-mcp",
		version,
		server.WithToolCapabilities(true),
	)
	mcptools.RegisterAll(s, &mcptools.Dependencies{
		Config:  cfg,
		Session: session,
		Engine:  engine,
	})

	log.Printf("[mcp] discord-mcp %s serving on stdio (db=%s)", version, cfg.DatabasePath)
	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

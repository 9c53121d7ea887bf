package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"inboxpilot/internal/agent"
	"inboxpilot/internal/api"
	"inboxpilot/internal/config"
	"inboxpilot/internal/contexttracker"
	"inboxpilot/internal/db"
	"inboxpilot/internal/flow"
	redisdb "inboxpilot/internal/redis"
	"inboxpilot/internal/store"
	"inboxpilot/internal/summarizer"
)

func main() {
	cfg, err := config.LoadConfig("config.json")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if err := db.Init(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "DB init error: %v\n", err)
		os.Exit(1)
	}
	rdb := redisdb.NewClient(cfg)

	// Agent memory lives in the database; the JSON file store remains as a
	// fallback when running without one.
	var memStore agent.Store
	if db.DB != nil {
		memStore = store.NewGormStore(db.DB, "triage_agent")
	} else {
		memStore = store.NewFileStore(cfg.Agent.MemoryFile)
	}
	triage := agent.New(cfg.Agent, memStore)
	summ := summarizer.New(cfg.Summarizer)
	tracker := contexttracker.New(cfg.Flow.ContextDir)
	events := api.NewEventHub()
	flowHandler := flow.New(tracker, cfg.Flow.TaskQueueFile, db.DB, events)

	// Drain the Redis inbox queue in the background if enabled
	if cfg.Agent.Queue.Enabled {
		log.Printf("[Main] Starting inbox queue worker (inbox: %s)", cfg.Agent.Queue.InboxKey)
		queue := agent.NewRedisQueue(rdb, cfg.Agent.Queue.InboxKey, cfg.Agent.Queue.ResultsKey)
		go func() {
			for {
				result, err := triage.RunQueueOnce(context.Background(), queue)
				if err != nil {
					log.Printf("[Main] WARNING: queue worker error: %v", err)
					time.Sleep(5 * time.Second)
					continue
				}
				if result == nil {
					time.Sleep(time.Second)
				}
			}
		}()
	} else {
		log.Printf("[Main] Inbox queue worker disabled in config")
	}

	svc := &api.Services{
		Agent:      triage,
		Summarizer: summ,
		Tracker:    tracker,
		Flow:       flowHandler,
		Events:     events,
	}
	r := api.SetupRouter(cfg, rdb, svc)
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	fmt.Printf("Starting server on %s%s\n", addr, cfg.Server.Subpath)
	if err := r.Run(addr); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"flag"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"powermatcher/internal/agent"
	"powermatcher/internal/config"
	"powermatcher/internal/logx"
	"powermatcher/internal/powermatcher"
	"powermatcher/internal/simulation"
	"powermatcher/internal/telemetry"
	"powermatcher/internal/wsmonitor"
)

func main() {
	stopAfter := flag.Duration("duration", 48*time.Hour, "how long, in simulated time, the market should run")
	interval := flag.Duration("interval", time.Minute, "simulated time between ticks")
	flag.Parse()

	cfg := config.Load()
	logx.SetLevel(cfg.LogLevel)

	hub := wsmonitor.NewHub()
	tap := wsmonitor.NewTap(hub)

	sink := telemetry.NewInfluxSink(telemetry.Options{
		Host:        cfg.InfluxDBHost,
		Database:    cfg.InfluxDBDatabase,
		Enabled:     cfg.InfluxDBEnabled,
		DropOnStart: cfg.InfluxDBDropOnInit,
		AsyncWrite:  cfg.InfluxDBWriteAsync,
	}, tap)
	defer sink.Close()

	auctioneer := powermatcher.NewAuctioneer("Sim", decimal.Zero, decimal.NewFromInt(1000), sink)

	loadAgent, err := agent.NewLoadAgent(auctioneer, "SimLoadAgent", decimal.NewFromInt(1000), decimal.NewFromFloat(0.1), sink, nil)
	if err != nil {
		logx.Errorf("creating load agent: %v", err)
		return
	}
	pvAgent, err := agent.NewPVAgent(auctioneer, "SimPVAgent", decimal.NewFromInt(3000), decimal.NewFromFloat(0.1), sink, nil)
	if err != nil {
		logx.Errorf("creating pv agent: %v", err)
		return
	}
	imbalanceAgent, err := agent.NewImbalanceAgent(auctioneer, "SimImbalanceAgent", sink)
	if err != nil {
		logx.Errorf("creating imbalance agent: %v", err)
		return
	}
	batteryAgent, err := agent.NewBatteryAgent(auctioneer, "SimBatteryAgent", decimal.NewFromInt(50000), sink, nil)
	if err != nil {
		logx.Errorf("creating battery agent: %v", err)
		return
	}

	startTime := time.Now()
	env := simulation.NewEnvironment(startTime, startTime.Add(*stopAfter), *interval)
	env.RegisterAuctioneer(&simulation.AuctioneerGroup{
		ID: auctioneer.ID,
		Agents: []agent.StateUpdater{
			loadAgent,
			pvAgent,
			imbalanceAgent,
			batteryAgent,
		},
	})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/ws", wsmonitor.NewHandler(hub))

	server := &http.Server{Addr: cfg.WSMonitorAddr, Handler: mux}
	go func() {
		logx.Infof("wsmonitor: listening on %s", cfg.WSMonitorAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Errorf("wsmonitor: server error: %v", err)
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logx.Infof("simulation: starting auctioneer %s for %s in %s steps", auctioneer.ID, *stopAfter, *interval)
	if err := env.Run(ctx); err != nil {
		logx.Infof("simulation: run ended: %v", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	server.Shutdown(shutdownCtx)
}

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	ginzap "github.com/gin-contrib/zap"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/nautilus-go/nautilus-core/internal/bus"
	"github.com/nautilus-go/nautilus-core/internal/clock"
	"github.com/nautilus-go/nautilus-core/internal/component"
	"github.com/nautilus-go/nautilus-core/internal/coreconfig"
	"github.com/nautilus-go/nautilus-core/internal/corelog"
	"github.com/nautilus-go/nautilus-core/internal/execution"
	"github.com/nautilus-go/nautilus-core/internal/handler"
	"github.com/nautilus-go/nautilus-core/internal/identifiers"
)

var (
	execEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nautilus_core_execution_events_total",
		Help: "Order lifecycle events generated by the demo execution client, by kind.",
	}, []string{"kind"})

	// busCounters mirrors MessageBus's own sent/req/res/pub counters
	// (§3 "MessageBus state: Counters"), polled from bus.Counters().
	busCounters = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "nautilus_core_bus_counters",
		Help: "MessageBus sent/req/res/pub monotonic counters.",
	}, []string{"counter"})

	// clockTimerCount mirrors LiveClock's registered timer/alert count,
	// polled from clock.TimerCount().
	clockTimerCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "nautilus_core_live_clock_timer_count",
		Help: "Number of timers/alerts currently registered on the demo LiveClock.",
	})
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using process environment")
	}

	cfgManager := coreconfig.New(os.Getenv("NAUTILUS_CORE_CONFIG"), zap.NewNop())
	if err := cfgManager.Load(); err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	cfg := cfgManager.Get()

	level, err := corelog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatalf("invalid log_level %q: %v", cfg.LogLevel, err)
	}
	logger, err := corelog.Init(level, cfg.LogColor)
	if err != nil {
		log.Fatalf("failed to initialize logging: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting nautilus-core-demo",
		zap.String("log_level", cfg.LogLevel),
		zap.Int("live_clock_queue_capacity", cfg.LiveClockQueueCapacity))

	registry := handler.NewRegistry()
	messageBus := bus.New(registry, logger.Logger)
	messageBus.SetPendingWarnThreshold(cfg.BusPendingWarnThreshold)

	liveClock := clock.NewLiveClock(logger.Logger, cfg.LiveClockQueueCapacity, 50*time.Millisecond)
	liveClock.Start()
	defer liveClock.Stop()

	traderID, err := identifiers.NewTraderId("TRADER-001")
	if err != nil {
		logger.Fatal("invalid trader id", zap.Error(err))
	}
	clientID, err := identifiers.NewClientId("SIM")
	if err != nil {
		logger.Fatal("invalid client id", zap.Error(err))
	}

	execClient, err := execution.New(clientID, nil, execution.OmsNetting, "MARGIN", nil, traderID, messageBus, liveClock)
	if err != nil {
		logger.Fatal("failed to construct execution client", zap.Error(err))
	}
	if err := execClient.Trigger(component.Initialize); err != nil {
		logger.Fatal("failed to initialize execution client", zap.Error(err))
	}

	accountID, err := identifiers.NewAccountId("SIM-001")
	if err != nil {
		logger.Fatal("invalid account id", zap.Error(err))
	}
	if err := execClient.SetAccountId(accountID); err != nil {
		logger.Fatal("failed to assign account id", zap.Error(err))
	}

	registry.Register(handler.ID("demo.exec-engine"), handler.Func(func(msg any) {
		evt, ok := msg.(execution.OrderEvent)
		if !ok {
			return
		}
		execEventsTotal.WithLabelValues(string(evt.Kind)).Inc()
		logger.Info("order event", zap.String("kind", string(evt.Kind)), zap.String("client_order_id", evt.ClientOrderId.String()))
	}))
	if err := messageBus.Register(execution.EndpointExecEngineProcess, handler.ID("demo.exec-engine")); err != nil {
		logger.Fatal("failed to register exec engine endpoint", zap.Error(err))
	}

	registry.Register(handler.ID("demo.component-watcher"), handler.Func(func(msg any) {
		if state, ok := msg.(component.State); ok {
			logger.Debug("component transition observed", zap.String("state", string(state)))
		}
	}))
	if err := messageBus.Subscribe("events.system.component.*", handler.ID("demo.component-watcher"), 0); err != nil {
		logger.Fatal("failed to subscribe component watcher", zap.Error(err))
	}

	if err := execClient.Trigger(component.Start); err == nil {
		_ = execClient.Trigger(component.StartCompleted)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go runDemoHeartbeat(ctx, execClient)
	go runMetricsCollector(ctx, messageBus, liveClock)

	router := gin.New()
	router.Use(ginzap.Ginzap(logger.Logger, time.RFC3339, true))
	router.Use(ginzap.RecoveryWithZap(logger.Logger, true))
	router.Use(cors.Default())
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "component_state": string(execClient.State())})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := os.Getenv("NAUTILUS_CORE_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{Addr: addr, Handler: router}
	go func() {
		logger.Info("http server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", zap.Error(err))
	}

	if err := execClient.Trigger(component.Stop); err == nil {
		_ = execClient.Trigger(component.StopCompleted)
	}
	logger.Info("shutdown complete")
}

// runMetricsCollector polls the bus's and clock's own counters and mirrors
// them onto the Prometheus gauges exposed at /metrics, rather than
// inventing separate demo-only figures.
func runMetricsCollector(ctx context.Context, messageBus *bus.MessageBus, liveClock *clock.LiveClock) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sent, req, res, pub := messageBus.Counters()
			busCounters.WithLabelValues("sent").Set(float64(sent))
			busCounters.WithLabelValues("req").Set(float64(req))
			busCounters.WithLabelValues("res").Set(float64(res))
			busCounters.WithLabelValues("pub").Set(float64(pub))
			clockTimerCount.Set(float64(liveClock.TimerCount()))
		}
	}
}

// runDemoHeartbeat periodically emits a synthetic Submitted/Accepted/Filled
// sequence so the wired metrics and endpoints have observable traffic
// without a real venue adapter present.
func runDemoHeartbeat(ctx context.Context, execClient *execution.ExecutionClient) {
	strategyID, _ := identifiers.NewStrategyId("DEMO-001")
	instrumentID, _ := identifiers.NewInstrumentId("BTCUSDT.SIM")

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	seq := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			seq++
			clientOrderID, _ := identifiers.NewClientOrderId(fmt.Sprintf("O-%d", seq))
			venueOrderID, _ := identifiers.NewVenueOrderId(fmt.Sprintf("V-%d", seq))
			tradeID, _ := identifiers.NewTradeId(fmt.Sprintf("T-%d", seq))

			now := execClient.Clock().TimestampNs()
			_, _ = execClient.GenerateOrderSubmitted(strategyID, instrumentID, clientOrderID, now)
			_, _ = execClient.GenerateOrderAccepted(strategyID, instrumentID, clientOrderID, venueOrderID, now)
			_, _ = execClient.GenerateOrderFilled(
				strategyID, instrumentID, clientOrderID, venueOrderID, tradeID, nil,
				"BUY", "MARKET",
				decimal.NewFromInt(1), decimal.NewFromInt(50_000),
				"USDT", decimal.NewFromFloat(0.01), execution.LiquidityTaker, now,
			)
		}
	}
}

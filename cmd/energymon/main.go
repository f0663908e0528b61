// energymon - openWB energy monitor
//
// energymon subscribes to an openWB wallbox controller over MQTT, keeps a
// live model of the installation's meters, inverters, batteries and charge
// points, and serves it to dashboards over REST and WebSocket. Periodic
// samples are written to InfluxDB for the history graphs.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/nerrad567/gray-logic-energy/internal/api"
	"github.com/nerrad567/gray-logic-energy/internal/dispatch"
	"github.com/nerrad567/gray-logic-energy/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-energy/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-energy/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-energy/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-energy/internal/model"
	"github.com/nerrad567/gray-logic-energy/internal/recorder"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// It returns nil on clean shutdown.
func run(ctx context.Context) error { //nolint:gocognit,gocyclo // Startup sequence: linear wiring of every component
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting energymon",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	store := model.NewStore()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		model.NewCollector(store),
	)
	metrics, err := dispatch.NewMetrics(registry)
	if err != nil {
		return fmt.Errorf("registering dispatch metrics: %w", err)
	}

	// Connect to MQTT broker
	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	mqttClient.SetLogger(log)
	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})

	checks := map[string]api.HealthChecker{"mqtt": mqttClient}

	// Connect to InfluxDB (optional)
	influxClient, err := influxdb.Connect(ctx, cfg.InfluxDB)
	switch {
	case errors.Is(err, influxdb.ErrDisabled):
		log.Info("InfluxDB disabled, history recording off")
		influxClient = nil
	case err != nil:
		return fmt.Errorf("connecting to InfluxDB: %w", err)
	default:
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		checks["influxdb"] = influxClient
	}

	hub := api.NewHub(cfg.WebSocket, log)
	go hub.Run(ctx)

	dispatcher, err := dispatch.New(dispatch.Options{
		Store:          store,
		ClientID:       cfg.MQTT.Broker.ClientID,
		QoS:            byte(cfg.MQTT.QoS),
		Logger:         log,
		OnUpdate:       hub.PublishUpdate,
		OnCommandError: hub.PublishCommandError,
		GraphInit:      graphInit(ctx, store, influxClient, cfg, log),
		MessageLogSize: cfg.Monitor.MessageLogSize,
		Metrics:        metrics,
	})
	if err != nil {
		return fmt.Errorf("creating dispatcher: %w", err)
	}

	if err := dispatcher.Start(mqttTransport{client: mqttClient}); err != nil {
		return fmt.Errorf("starting dispatcher: %w", err)
	}
	defer func() {
		if stopErr := dispatcher.Stop(); stopErr != nil {
			log.Error("error stopping dispatcher", "error", stopErr)
		}
	}()

	apiServer, err := api.New(api.Deps{
		Config:   cfg.API,
		WS:       cfg.WebSocket,
		Logger:   log,
		Store:    store,
		Messages: dispatcher,
		Checks:   checks,
		Gatherer: registry,
		Hub:      hub,
		Version:  version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := apiServer.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := apiServer.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	if err := healthCheck(ctx, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred calls run in reverse order:
	// 1. API server
	// 2. Dispatcher (unsubscribe)
	// 3. InfluxDB (if enabled)
	// 4. MQTT

	return nil
}

// getConfigPath returns the configuration file path.
// Uses ENERGYMON_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("ENERGYMON_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// graphInit returns the dispatcher's graph hook: it starts the history
// recorder. With InfluxDB disabled there is nothing to feed and it returns nil.
func graphInit(ctx context.Context, store *model.Store, influxClient *influxdb.Client, cfg *config.Config, log *logging.Logger) func() {
	if influxClient == nil {
		return nil
	}
	return func() {
		rec := recorder.New(store, influxClient, cfg.GetRecordInterval(), log)
		go rec.Run(ctx)
	}
}

// healthCheck verifies infrastructure connections are healthy.
// influxClient may be nil if history recording is disabled.
func healthCheck(ctx context.Context, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := mqttClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}

// mqttTransport adapts the infrastructure MQTT client to dispatch.Transport.
// The only difference is the handler type: mqtt.MessageHandler is a named
// type, the dispatcher takes a plain func.
type mqttTransport struct {
	client *mqtt.Client
}

// Subscribe implements dispatch.Transport.
func (t mqttTransport) Subscribe(topic string, qos byte, handler func(topic string, payload []byte) error) error {
	return t.client.Subscribe(topic, qos, handler)
}

// Unsubscribe implements dispatch.Transport.
func (t mqttTransport) Unsubscribe(topic string) error {
	return t.client.Unsubscribe(topic)
}

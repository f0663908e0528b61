package dispatch

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nerrad567/gray-logic-energy/internal/model"
)

// Transport is the pub/sub connection the dispatcher listens on.
type Transport interface {
	Subscribe(topic string, qos byte, handler func(topic string, payload []byte) error) error
	Unsubscribe(topic string) error
}

// Logger is the logging interface used by the dispatcher.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// PeerHandler decodes messages of a category owned by another component.
type PeerHandler func(topic, payload string)

// Update is emitted after every recognized message has been applied.
type Update struct {
	Category Category
	Topic    string
}

// Options configures a Dispatcher.
type Options struct {
	// Store is the model the handlers mutate. Required.
	Store *model.Store

	// ClientID identifies this process on the openWB command channel. Required.
	ClientID string

	QoS    byte
	Logger Logger

	// Peers receive the categories energymon does not decode itself.
	Peers map[Category]PeerHandler

	OnUpdate       func(Update)
	OnCommandError func(CommandError)

	// GraphInit is called once, after the first successful Start.
	GraphInit func()

	MessageLogSize int
	Metrics        *Metrics
}

// Dispatcher classifies inbound messages and applies them to the Store.
//
// Thread Safety: HandleMessage may be called from any goroutine; messages
// are processed one at a time.
type Dispatcher struct {
	store    *model.Store
	sync     *Synchronizer
	clientID string
	qos      byte
	logger   Logger
	peers    map[Category]PeerHandler
	metrics  *Metrics
	messages *MessageLog

	onUpdate       func(Update)
	onCommandError func(CommandError)
	graphInit      func()
	graphOnce      sync.Once

	mu      sync.Mutex
	stopped bool

	transportMu sync.Mutex
	transport   Transport
	subscribed  []string
}

// New creates a dispatcher from opts.
func New(opts Options) (*Dispatcher, error) {
	if opts.Store == nil {
		return nil, ErrNoStore
	}
	if opts.ClientID == "" {
		return nil, ErrNoClientID
	}

	peers := make(map[Category]PeerHandler, len(opts.Peers))
	for c, h := range opts.Peers {
		if h != nil {
			peers[c] = h
		}
	}

	return &Dispatcher{
		store:          opts.Store,
		sync:           NewSynchronizer(opts.Store),
		clientID:       opts.ClientID,
		qos:            opts.QoS,
		logger:         opts.Logger,
		peers:          peers,
		metrics:        opts.Metrics,
		messages:       NewMessageLog(opts.MessageLogSize),
		onUpdate:       opts.OnUpdate,
		onCommandError: opts.OnCommandError,
		graphInit:      opts.GraphInit,
	}, nil
}

// Subscriptions returns the topics Start subscribes to.
func (d *Dispatcher) Subscriptions() []string {
	return subscriptionsFor(d.clientID)
}

// Messages returns the recent message log, oldest first.
func (d *Dispatcher) Messages() []Message {
	return d.messages.Entries()
}

// Start subscribes to all openWB topics on t and runs the graph
// initialisation hook. If any subscription fails, the ones already made
// are removed again.
func (d *Dispatcher) Start(t Transport) error {
	d.transportMu.Lock()
	defer d.transportMu.Unlock()

	if d.transport != nil {
		return ErrAlreadyStarted
	}

	d.mu.Lock()
	d.stopped = false
	d.mu.Unlock()

	var subscribed []string
	for _, topic := range d.Subscriptions() {
		if err := t.Subscribe(topic, d.qos, d.HandleMessage); err != nil {
			for _, s := range subscribed {
				t.Unsubscribe(s) //nolint:errcheck // Best effort rollback
			}
			return fmt.Errorf("subscribing to %s: %w", topic, err)
		}
		subscribed = append(subscribed, topic)
	}

	d.transport = t
	d.subscribed = subscribed
	d.logInfo("dispatcher started", "subscriptions", len(subscribed), "client_id", d.clientID)

	if d.graphInit != nil {
		d.graphOnce.Do(d.graphInit)
	}
	return nil
}

// Stop unsubscribes from every topic. State already applied to the Store is
// kept. Messages still in flight are rejected with ErrStopped.
func (d *Dispatcher) Stop() error {
	d.transportMu.Lock()
	defer d.transportMu.Unlock()

	d.mu.Lock()
	d.stopped = true
	d.mu.Unlock()

	if d.transport == nil {
		return nil
	}

	var errs []error
	for _, topic := range d.subscribed {
		if err := d.transport.Unsubscribe(topic); err != nil {
			errs = append(errs, fmt.Errorf("unsubscribing from %s: %w", topic, err))
		}
	}
	d.transport = nil
	d.subscribed = nil
	d.logInfo("dispatcher stopped")

	return errors.Join(errs...)
}

// HandleMessage processes one inbound message to completion.
//
// Faults in the message itself are never returned; they are logged and
// counted. The only error is ErrStopped.
func (d *Dispatcher) HandleMessage(topic string, payload []byte) error {
	start := time.Now()

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return ErrStopped
	}

	text := string(payload)
	d.messages.Add(topic, text)

	category := Classify(topic)
	d.metrics.message(category)
	defer d.metrics.observe(start)

	if category == CategoryUnrecognized {
		d.diagnose(reasonUnrecognizedTopic, "ignoring unrecognized topic", "topic", topic)
		return nil
	}

	d.route(category, topic, text)

	if d.onUpdate != nil {
		d.onUpdate(Update{Category: category, Topic: topic})
	}
	return nil
}

// route runs exactly one handler for the category.
func (d *Dispatcher) route(category Category, topic, payload string) {
	defer func() {
		if r := recover(); r != nil {
			d.metrics.diagnostic(reasonHandlerPanic)
			d.logError("message handler panic recovered",
				"topic", topic,
				"category", category.String(),
				"panic", r,
			)
		}
	}()

	switch category {
	case CategoryCounter:
		d.handleCounter(topic, payload)
	case CategoryGlobalCounter:
		d.handleGlobalCounter(topic, payload)
	case CategoryPV:
		d.handlePV(topic, payload)
	case CategoryPVChargingConfig:
		d.handlePVChargingConfig(topic, payload)
	case CategorySystemConfig:
		d.handleSystemConfig(topic, payload)
	case CategoryCommand:
		d.handleCommand(topic, payload)
	default:
		peer, ok := d.peers[category]
		if !ok {
			d.diagnose(reasonUnhandled, "no decoder registered for category",
				"topic", topic, "category", category.String())
			return
		}
		peer(topic, payload)
	}
}

// diagnose records a dropped or degraded message. Expected noise (unknown
// topics, leaves and categories) logs at debug, real faults at warn.
func (d *Dispatcher) diagnose(reason, msg string, args ...any) {
	d.metrics.diagnostic(reason)
	switch reason {
	case reasonUnrecognizedTopic, reasonUnrecognizedLeaf, reasonUnhandled:
		d.logDebug(msg, args...)
	default:
		d.logWarn(msg, append(args, "reason", reason)...)
	}
}

func (d *Dispatcher) logDebug(msg string, args ...any) {
	if d.logger != nil {
		d.logger.Debug(msg, args...)
	}
}

func (d *Dispatcher) logInfo(msg string, args ...any) {
	if d.logger != nil {
		d.logger.Info(msg, args...)
	}
}

func (d *Dispatcher) logWarn(msg string, args ...any) {
	if d.logger != nil {
		d.logger.Warn(msg, args...)
	}
}

func (d *Dispatcher) logError(msg string, args ...any) {
	if d.logger != nil {
		d.logger.Error(msg, args...)
	}
}

package database

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/event"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// TodoCollection is the one collection the service stores.
const TodoCollection = "todos"

type MongoConfig struct {
	URI      string
	Database string
	// Timeout bounds every client operation that carries no deadline of its own.
	Timeout time.Duration
}

// MongoService owns the MongoDB client for the process.
type MongoService struct {
	client  *mongo.Client
	db      *mongo.Database
	watcher *connectionWatcher
}

// NewMongo configures the client and pings the server once. A failed ping is
// logged but does not fail startup; the driver keeps trying to reach the
// server in the background and calls fail until it does.
func NewMongo(ctx context.Context, cfg MongoConfig, log *slog.Logger) (*MongoService, error) {
	watcher := newConnectionWatcher(log, cfg.Database)

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetServerMonitor(watcher.monitor())
	if cfg.Timeout > 0 {
		opts.SetTimeout(cfg.Timeout)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("configure mongo client: %w", err)
	}

	svc := &MongoService{
		client:  client,
		db:      client.Database(cfg.Database),
		watcher: watcher,
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		log.Error("MongoDB initial connection failed", "database", cfg.Database, "error", err)
	}
	return svc, nil
}

// Collection returns the todo collection.
func (s *MongoService) Collection() *mongo.Collection {
	return s.db.Collection(TodoCollection)
}

func (s *MongoService) Health(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	stats := make(map[string]string)
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		return stats
	}

	stats["status"] = "up"
	stats["message"] = "It's healthy"
	stats["database"] = s.db.Name()
	stats["connected"] = strconv.FormatBool(s.watcher.connected.Load())
	stats["reachable_servers"] = strconv.Itoa(s.watcher.reachable())
	stats["heartbeat_failures"] = strconv.FormatInt(s.watcher.failures.Load(), 10)
	return stats
}

// Migrate creates the indexes used by list filters and sorts.
func (s *MongoService) Migrate(ctx context.Context) error {
	_, err := s.Collection().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "completed", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create todo indexes: %w", err)
	}
	return nil
}

func (s *MongoService) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// connectionWatcher turns driver heartbeats into one log line per
// connected/disconnected transition of the whole deployment. The client counts
// as connected while at least one server answers its heartbeat.
type connectionWatcher struct {
	log      *slog.Logger
	database string

	mu      sync.Mutex
	servers map[string]bool

	connected atomic.Bool
	failures  atomic.Int64
}

func newConnectionWatcher(log *slog.Logger, database string) *connectionWatcher {
	return &connectionWatcher{log: log, database: database, servers: make(map[string]bool)}
}

func (w *connectionWatcher) monitor() *event.ServerMonitor {
	return &event.ServerMonitor{
		ServerHeartbeatSucceeded: func(e *event.ServerHeartbeatSucceededEvent) {
			w.up(serverAddress(e.ConnectionID))
		},
		ServerHeartbeatFailed: func(e *event.ServerHeartbeatFailedEvent) {
			w.down(serverAddress(e.ConnectionID), e.Failure)
		},
	}
}

// serverAddress strips the "[-N]" connection counter the driver appends to
// the host:port of a monitoring connection.
func serverAddress(connectionID string) string {
	if i := strings.Index(connectionID, "[-"); i >= 0 {
		return connectionID[:i]
	}
	return connectionID
}

func (w *connectionWatcher) up(server string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.servers[server] = true
	if w.connected.CompareAndSwap(false, true) {
		w.log.Info("MongoDB connected", "database", w.database, "server", server)
	}
}

func (w *connectionWatcher) down(server string, failure error) {
	w.failures.Add(1)

	w.mu.Lock()
	defer w.mu.Unlock()

	w.servers[server] = false
	if w.reachableLocked() > 0 {
		return
	}
	if w.connected.CompareAndSwap(true, false) {
		w.log.Warn("MongoDB disconnected", "database", w.database, "server", server, "error", failure)
	}
}

// reachable reports how many servers answered their latest heartbeat.
func (w *connectionWatcher) reachable() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reachableLocked()
}

func (w *connectionWatcher) reachableLocked() int {
	n := 0
	for _, ok := range w.servers {
		if ok {
			n++
		}
	}
	return n
}

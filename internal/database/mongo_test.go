package database

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson"
)

func TestConnectionWatcherNotifiesOncePerTransition(t *testing.T) {
	var buf bytes.Buffer
	w := newConnectionWatcher(slog.New(slog.NewTextHandler(&buf, nil)), "todo")

	w.up("server-1")
	w.up("server-1")
	w.down("server-1", errors.New("connection refused"))
	w.down("server-1", errors.New("connection refused"))
	w.up("server-1")

	out := buf.String()
	assert.Equal(t, 2, strings.Count(out, "MongoDB connected"))
	assert.Equal(t, 1, strings.Count(out, "MongoDB disconnected"))
	assert.Equal(t, int64(2), w.failures.Load())
	assert.True(t, w.connected.Load())
}

func TestConnectionWatcherTracksEachServer(t *testing.T) {
	var buf bytes.Buffer
	w := newConnectionWatcher(slog.New(slog.NewTextHandler(&buf, nil)), "todo")

	// One member of a replica set up, one down, across several heartbeat rounds.
	for range 3 {
		w.up("rs0:27017")
		w.down("rs1:27017", errors.New("connection refused"))
	}
	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, "MongoDB connected"))
	assert.Equal(t, 0, strings.Count(out, "MongoDB disconnected"))
	assert.Equal(t, 1, w.reachable())
	assert.True(t, w.connected.Load())

	w.down("rs0:27017", errors.New("connection refused"))
	w.down("rs1:27017", errors.New("connection refused"))
	out = buf.String()
	assert.Equal(t, 1, strings.Count(out, "MongoDB disconnected"))
	assert.Equal(t, 0, w.reachable())
	assert.False(t, w.connected.Load())

	w.up("rs1:27017")
	assert.Equal(t, 2, strings.Count(buf.String(), "MongoDB connected"))
	assert.Equal(t, int64(5), w.failures.Load())
}

func TestServerAddress(t *testing.T) {
	assert.Equal(t, "rs0:27017", serverAddress("rs0:27017[-12]"))
	assert.Equal(t, "localhost:27017", serverAddress("localhost:27017"))
}

func TestConnectionWatcherFailureBeforeConnectIsSilent(t *testing.T) {
	var buf bytes.Buffer
	w := newConnectionWatcher(slog.New(slog.NewTextHandler(&buf, nil)), "todo")

	w.down("server-1", errors.New("no route to host"))
	assert.Empty(t, buf.String())
	assert.False(t, w.connected.Load())
}

func TestMongoService(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	ctr, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ctr.Terminate(context.Background()) })

	uri, err := ctr.ConnectionString(ctx)
	require.NoError(t, err)

	svc, err := NewMongo(ctx, MongoConfig{URI: uri, Database: "todo_test", Timeout: 5 * time.Second}, slog.Default())
	require.NoError(t, err)

	health := svc.Health(ctx)
	assert.Equal(t, "up", health["status"])
	assert.Equal(t, "todo_test", health["database"])

	require.NoError(t, svc.Migrate(ctx))
	cursor, err := svc.Collection().Indexes().List(ctx)
	require.NoError(t, err)
	var indexes []bson.M
	require.NoError(t, cursor.All(ctx, &indexes))
	names := make([]string, 0, len(indexes))
	for _, idx := range indexes {
		names = append(names, idx["name"].(string))
	}
	assert.ElementsMatch(t, []string{"_id_", "completed_1", "createdAt_1"}, names)

	require.NoError(t, svc.Close(ctx))
	assert.Equal(t, "down", svc.Health(ctx)["status"])
}

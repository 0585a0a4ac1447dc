package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Mongo holds the document store client and the selected database.
type Mongo struct {
	uri     string
	client  *mongo.Client
	db      *mongo.Database
	tracker *ConnectionTracker
}

// MongoOptions configures NewMongo.
type MongoOptions struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
	MaxPoolSize    uint64
	Observer       ConnectionObserver
}

// NewMongo creates a client with the lifecycle monitor installed. The driver
// connects in the background, so an unreachable server is not an error here;
// use Verify to check reachability.
func NewMongo(ctx context.Context, opts MongoOptions) (*Mongo, error) {
	observer := opts.Observer
	if observer == nil {
		observer = NewLifecycleLogger(nil)
	}
	tracker := NewConnectionTracker(observer)

	clientOptions := options.Client().
		ApplyURI(opts.URI).
		SetServerMonitor(tracker.ServerMonitor())
	if opts.ConnectTimeout > 0 {
		clientOptions.SetConnectTimeout(opts.ConnectTimeout)
		clientOptions.SetServerSelectionTimeout(opts.ConnectTimeout)
	}
	if opts.MaxPoolSize > 0 {
		clientOptions.SetMaxPoolSize(opts.MaxPoolSize)
	}

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}

	return &Mongo{
		uri:     opts.URI,
		client:  client,
		db:      client.Database(opts.Database),
		tracker: tracker,
	}, nil
}

// URI returns the connection string the client was created with.
func (m *Mongo) URI() string {
	return m.uri
}

// Database returns the selected database handle.
func (m *Mongo) Database() *mongo.Database {
	return m.db
}

// Tracker exposes the connection state tracker.
func (m *Mongo) Tracker() *ConnectionTracker {
	return m.tracker
}

// Ping checks that a primary is reachable.
func (m *Mongo) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

// Verify pings the server and reports the outcome to the lifecycle observer.
// A ping failure is reported only when the monitor has not already reported
// the underlying connection error; cancellation is not reported.
func (m *Mongo) Verify(ctx context.Context) error {
	if err := m.Ping(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			m.tracker.FailOnce(err)
		}
		return fmt.Errorf("ping mongodb: %w", err)
	}
	m.tracker.SetAvailable(true)
	return nil
}

// Close disconnects the client.
func (m *Mongo) Close(ctx context.Context) error {
	m.tracker.Close()
	if err := m.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("disconnect mongodb: %w", err)
	}
	slog.Debug("mongodb client closed")
	return nil
}

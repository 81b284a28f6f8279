//go:build e2e

package container

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/polinfinity/staking-sync/internal/config"
	"github.com/polinfinity/staking-sync/internal/db"
	"github.com/polinfinity/staking-sync/testutil"
)

const (
	mongoUsername = "user"
	mongoPassword = "password"
	mongoDatabase = "staking-sync-e2e"

	rabbitUser     = "user"
	rabbitPassword = "password"
)

// Manager is a wrapper around all Docker instances, and the Docker API.
// It provides utilities to run and interact with all Docker containers used within e2e testing.
type Manager struct {
	cfg       ImageConfig
	pool      *dockertest.Pool
	resources map[string]*dockertest.Resource
}

// NewManager creates a new Manager instance and initializes
// all Docker specific utilities. Returns an error if initialization fails.
func NewManager(t *testing.T) (*Manager, error) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		return nil, fmt.Errorf("could not construct pool: %w", err)
	}
	if err := pool.Client.Ping(); err != nil {
		return nil, fmt.Errorf("could not connect to docker: %w", err)
	}
	pool.MaxWait = 2 * time.Minute

	m := &Manager{
		cfg:       NewImageConfig(),
		pool:      pool,
		resources: make(map[string]*dockertest.Resource),
	}
	t.Cleanup(func() {
		if err := m.ClearResources(); err != nil {
			t.Logf("failed to clear docker resources: %v", err)
		}
	})

	return m, nil
}

func (m *Manager) run(name string, opts *dockertest.RunOptions) (*dockertest.Resource, error) {
	suffix, err := testutil.RandomAlphaNum(4)
	if err != nil {
		return nil, err
	}
	opts.Name = name + "-" + suffix
	resource, err := m.pool.RunWithOptions(opts, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{
			Name: "no",
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", name, err)
	}

	m.resources[name] = resource
	return resource, nil
}

// RunMongo starts a MongoDB container and blocks until it accepts connections.
func (m *Manager) RunMongo(ctx context.Context) (*config.DbConfig, error) {
	resource, err := m.run("mongo", &dockertest.RunOptions{
		Repository: m.cfg.MongoRepository,
		Tag:        m.cfg.MongoVersion,
		Env: []string{
			"MONGO_INITDB_ROOT_USERNAME=" + mongoUsername,
			"MONGO_INITDB_ROOT_PASSWORD=" + mongoPassword,
			"MONGO_INITDB_DATABASE=" + mongoDatabase,
		},
	})
	if err != nil {
		return nil, err
	}

	dbConfig := &config.DbConfig{
		Username: mongoUsername,
		Password: mongoPassword,
		DbName:   mongoDatabase,
		Address:  fmt.Sprintf("mongodb://localhost:%s/", resource.GetPort("27017/tcp")),
	}

	err = m.pool.Retry(func() error {
		client, err := db.New(ctx, *dbConfig)
		if err != nil {
			return err
		}
		defer client.Close(ctx) //nolint:errcheck
		return client.Ping(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("mongo did not become ready: %w", err)
	}

	return dbConfig, nil
}

// RunRabbitMQ starts a RabbitMQ broker and returns its AMQP url once the
// broker accepts connections.
func (m *Manager) RunRabbitMQ() (string, error) {
	resource, err := m.run("rabbitmq", &dockertest.RunOptions{
		Repository: m.cfg.RabbitMQRepository,
		Tag:        m.cfg.RabbitMQVersion,
		Env: []string{
			"RABBITMQ_DEFAULT_USER=" + rabbitUser,
			"RABBITMQ_DEFAULT_PASS=" + rabbitPassword,
		},
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("amqp://%s:%s@localhost:%s/", rabbitUser, rabbitPassword, resource.GetPort("5672/tcp"))
	err = m.pool.Retry(func() error {
		conn, err := amqp.Dial(url)
		if err != nil {
			return err
		}
		return conn.Close()
	})
	if err != nil {
		return "", fmt.Errorf("rabbitmq did not become ready: %w", err)
	}

	return url, nil
}

// ClearResources removes all outstanding Docker resources created by the Manager.
func (m *Manager) ClearResources() error {
	for name, resource := range m.resources {
		if err := m.pool.Purge(resource); err != nil {
			return fmt.Errorf("failed to purge %s: %w", name, err)
		}
		delete(m.resources, name)
	}
	return nil
}

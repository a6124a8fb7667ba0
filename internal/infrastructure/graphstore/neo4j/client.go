// Package neo4j provides a Neo4j implementation of the GraphStore interface.
package neo4j

import (
	"context"
	"errors"
	"fmt"
	"time"

	neo4jdriver "github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/ersonp/dexgraph/internal/infrastructure/config"
	"github.com/ersonp/dexgraph/internal/infrastructure/logging"
)

const (
	defaultUser       = "neo4j"
	defaultTimeoutSec = 10
	defaultMaxPool    = 50
)

// Client holds a verified driver and the target database.
type Client struct {
	Driver   neo4jdriver.DriverWithContext
	Database string
	log      *logging.Logger
}

// NewClient opens a driver and verifies connectivity.
func NewClient(ctx context.Context, cfg config.Neo4jConfig, log *logging.Logger) (*Client, error) {
	if log == nil {
		return nil, errors.New("neo4j: logger required")
	}
	if cfg.URI == "" {
		return nil, errors.New("neo4j: uri is required")
	}

	user := cfg.User
	if user == "" {
		user = defaultUser
	}
	timeoutSec := cfg.TimeoutSeconds
	if timeoutSec <= 0 {
		timeoutSec = defaultTimeoutSec
	}
	maxPool := cfg.MaxPoolSize
	if maxPool <= 0 {
		maxPool = defaultMaxPool
	}

	auth := neo4jdriver.BasicAuth(user, cfg.Password, "")
	driver, err := neo4jdriver.NewDriverWithContext(cfg.URI, auth, func(c *neo4jdriver.Config) {
		c.MaxConnectionPoolSize = maxPool
		c.SocketConnectTimeout = time.Duration(timeoutSec) * time.Second
	})
	if err != nil {
		return nil, fmt.Errorf("neo4j: init driver: %w", err)
	}

	verifyCtx, cancel := context.WithTimeout(ctx, time.Duration(timeoutSec)*time.Second)
	defer cancel()
	if err := driver.VerifyConnectivity(verifyCtx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("neo4j: verify connectivity: %w", err)
	}

	return &Client{
		Driver:   driver,
		Database: cfg.Database,
		log:      log.With("client", "Neo4j"),
	}, nil
}

// Close closes the driver.
func (c *Client) Close(ctx context.Context) error {
	if c == nil || c.Driver == nil {
		return nil
	}
	err := c.Driver.Close(ctx)
	c.Driver = nil
	return err
}

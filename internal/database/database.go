// internal/database/database.go
package database

import "github.com/jmoiron/sqlx"

// Client wraps the shared sqlx connection pool.
type Client struct {
	DB *sqlx.DB
}

// Close closes the underlying pool.
func (c *Client) Close() error {
	return c.DB.Close()
}

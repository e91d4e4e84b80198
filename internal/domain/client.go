package domain

import (
	"errors"
	"strings"
	"time"
)

// FreeTierClientLimit caps the number of clients a free-tier owner may keep.
const FreeTierClientLimit = 3

type Client struct {
	ID         int64
	OwnerID    int64
	Name       string
	HourlyRate float64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewClient creates a new client with required fields
func NewClient(ownerID int64, name string, hourlyRate float64) *Client {
	now := time.Now().UTC()
	return &Client{
		OwnerID:    ownerID,
		Name:       strings.TrimSpace(name),
		HourlyRate: hourlyRate,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Validate returns an error if the client is invalid
func (c *Client) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("client name is required")
	}
	if c.HourlyRate < 0 {
		return errors.New("hourly rate cannot be negative")
	}
	return nil
}

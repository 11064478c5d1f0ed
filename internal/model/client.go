package model

import (
	"strconv"
	"strings"
	"time"
)

// Client is a salon customer.
type Client struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Birthday string `json:"birthday" yaml:"birthday"` // DD/MM/YYYY
	WhatsApp string `json:"whatsapp" yaml:"whatsapp"`
	Email    string `json:"email" yaml:"email"`
}

// Validate checks required fields.
func (c *Client) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return validationError("client name is required")
	}
	if c.Birthday != "" {
		if _, ok := c.BirthMonth(); !ok {
			return validationError("birthday must be DD/MM/YYYY")
		}
	}
	return nil
}

// BirthMonth parses the month part of Birthday.
func (c *Client) BirthMonth() (time.Month, bool) {
	parts := strings.Split(c.Birthday, "/")
	if len(parts) < 2 {
		return 0, false
	}
	m, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || m < 1 || m > 12 {
		return 0, false
	}
	return time.Month(m), true
}

// BirthDay returns the day of month of Birthday, or 0 when unparsable.
func (c *Client) BirthDay() int {
	parts := strings.Split(c.Birthday, "/")
	if len(parts) < 2 {
		return 0
	}
	d, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0
	}
	return d
}

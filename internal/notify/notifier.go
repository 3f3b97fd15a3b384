package notify

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/MuradAles/Hermes/internal/types"
)

const (
	SubjectAlerts = "wx.alerts"
)

// Alert is the message published when a flight's weather turns unsafe.
type Alert struct {
	FlightID      string            `json:"flight_id"`
	StudentName   string            `json:"student_name"`
	Departure     string            `json:"departure"`
	Arrival       string            `json:"arrival"`
	ScheduledTime time.Time         `json:"scheduled_time"`
	Color         types.SafetyColor `json:"color"`
	Status        types.SafetyStatus `json:"status"`
	Score         float64           `json:"score"`
	Issues        []string          `json:"issues,omitempty"`
	SentAt        time.Time         `json:"sent_at"`
}

// Client represents a NATS client for safety alerts
type Client struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// New creates a new NATS client
func New(url string) (*Client, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to get JetStream context: %w", err)
	}

	// Create stream if it doesn't exist
	_, err = js.AddStream(&nats.StreamConfig{
		Name:     "WX_ALERTS",
		Subjects: []string{SubjectAlerts},
		Storage:  nats.FileStorage,
		MaxAge:   7 * 24 * time.Hour,
	})
	if err != nil && !strings.Contains(err.Error(), "stream name already in use") {
		nc.Close()
		return nil, fmt.Errorf("failed to create stream: %w", err)
	}

	return &Client{
		conn: nc,
		js:   js,
	}, nil
}

// PublishSafetyAlert publishes a safety alert
func (c *Client) PublishSafetyAlert(alert *Alert) error {
	data, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("failed to marshal alert: %w", err)
	}

	_, err = c.js.Publish(SubjectAlerts, data)
	if err != nil {
		return fmt.Errorf("failed to publish alert: %w", err)
	}

	return nil
}

// SubscribeAlerts subscribes to safety alerts
func (c *Client) SubscribeAlerts(handler func(*Alert)) error {
	_, err := c.js.Subscribe(SubjectAlerts, func(msg *nats.Msg) {
		var alert Alert
		if err := json.Unmarshal(msg.Data, &alert); err != nil {
			fmt.Printf("Error unmarshaling alert: %v\n", err)
			return
		}
		handler(&alert)
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	return nil
}

// Close closes the NATS connection
func (c *Client) Close() {
	if c.conn != nil {
		c.conn.Close()
	}
}

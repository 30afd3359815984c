package bus

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
)

// SubjectClassifications carries one event per classification served, so
// demo dashboards can subscribe to live results. Events are fan-out only
// and nothing is persisted.
const SubjectClassifications = "classifications.created"

// ClassificationEvent is the payload published after each classification.
type ClassificationEvent struct {
	ID          string    `json:"id"`
	CriterionID string    `json:"criterionId"`
	Status      string    `json:"status"`
	Value       float64   `json:"value,omitempty"`
	At          time.Time `json:"at"`
}

type Publisher struct {
	Conn *nats.Conn
}

func NewPublisher(url string) (*Publisher, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, err
	}
	return &Publisher{Conn: conn}, nil
}

func (p *Publisher) Close() {
	if p.Conn != nil {
		p.Conn.Drain()
		p.Conn.Close()
	}
}

func (p *Publisher) Publish(subject string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.Conn.Publish(subject, data)
}

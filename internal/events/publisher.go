// Package events publishes store change notifications to NATS so other
// processes can follow the workshop state without polling.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/diewo77/kinz/internal/store"
)

// DefaultSubject is the subject prefix; the collection name is appended.
const DefaultSubject = "kinz.changes"

// Conn is the part of *nats.Conn the publisher uses.
type Conn interface {
	Publish(subject string, data []byte) error
}

// Change is the JSON body published for every store event.
type Change struct {
	Collection string    `json:"collection"`
	Remote     bool      `json:"remote"`
	At         time.Time `json:"at"`
}

// Publisher is a store observer. Publish failures are logged and never
// reach the store.
type Publisher struct {
	conn    Conn
	subject string
	log     zerolog.Logger
	now     func() time.Time
}

// Connect dials the NATS server at url.
func Connect(url string) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name("kinz"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", url, err)
	}
	return nc, nil
}

// NewPublisher returns a publisher on conn. An empty subject selects
// DefaultSubject.
func NewPublisher(conn Conn, subject string, log zerolog.Logger) *Publisher {
	if subject == "" {
		subject = DefaultSubject
	}
	return &Publisher{conn: conn, subject: subject, log: log, now: time.Now}
}

// Attach subscribes the publisher to s and returns the unsubscribe func.
func (p *Publisher) Attach(s *store.Store) func() {
	return s.Subscribe(p.Handle)
}

// Handle publishes e on <subject>.<collection>.
func (p *Publisher) Handle(e store.Event) {
	if p.conn == nil {
		return
	}
	data, err := json.Marshal(Change{Collection: string(e.Collection), Remote: e.Remote, At: p.now().UTC()})
	if err != nil {
		p.log.Warn().Err(err).Str("collection", string(e.Collection)).Msg("failed to encode change")
		return
	}
	subject := p.subject + "." + string(e.Collection)
	if err := p.conn.Publish(subject, data); err != nil {
		p.log.Warn().Err(err).Str("subject", subject).Msg("failed to publish change (non-fatal)")
		return
	}
	p.log.Debug().Str("subject", subject).Bool("remote", e.Remote).Msg("change published")
}

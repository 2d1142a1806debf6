package natsadapter

import (
	"github.com/nats-io/nats.go"
)

// Subscriber relays one session's saved-trip events. It uses plain
// subscriptions: a relay only cares about events published while it listens.
type Subscriber struct {
	conn *nats.Conn
}

func NewSubscriber(conn *nats.Conn) *Subscriber {
	return &Subscriber{conn: conn}
}

// SubscribeSession calls handler with the raw JSON of every saved or deleted
// event for session until the returned subscription is unsubscribed.
func (s *Subscriber) SubscribeSession(session string, handler func(data []byte)) (*nats.Subscription, error) {
	return s.conn.Subscribe(SessionSubject("", session), func(msg *nats.Msg) {
		handler(msg.Data)
	})
}

// Connected reports whether the connection is currently up.
func (s *Subscriber) Connected() bool {
	return s.conn != nil && s.conn.IsConnected()
}

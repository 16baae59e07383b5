package mqtt

import "sync"

// PublishedMessage records one Publish call for test assertions.
type PublishedMessage struct {
	Topic    string
	Payload  string
	Retained bool
}

// FakeClient is an in-memory Client for tests. Inject inbound messages with
// Deliver; inspect outbound traffic through Published.
type FakeClient struct {
	mu sync.Mutex

	// Published contains every message sent through Publish, in order.
	Published []PublishedMessage

	// PublishError, if set, is returned by Publish.
	PublishError error

	// Closed tracks whether Close was called.
	Closed bool

	handlers map[string][]Handler
}

func NewFakeClient() *FakeClient {
	return &FakeClient{handlers: map[string][]Handler{}}
}

func (f *FakeClient) Subscribe(topic string, handler Handler) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[topic] = append(f.handlers[topic], handler)
	return nil
}

func (f *FakeClient) Publish(topic, payload string, retained bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishError != nil {
		return f.PublishError
	}
	f.Published = append(f.Published, PublishedMessage{Topic: topic, Payload: payload, Retained: retained})
	return nil
}

func (f *FakeClient) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
}

// Deliver invokes the handlers subscribed to topic, as the broker would.
func (f *FakeClient) Deliver(topic, payload string) {
	f.mu.Lock()
	handlers := append([]Handler(nil), f.handlers[topic]...)
	f.mu.Unlock()

	for _, h := range handlers {
		h(topic, payload)
	}
}

// PayloadsFor returns the payloads published to one topic, in order.
func (f *FakeClient) PayloadsFor(topic string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, m := range f.Published {
		if m.Topic == topic {
			out = append(out, m.Payload)
		}
	}
	return out
}

// Package mqtt provides the broker connection with an abstraction for
// testing. The controller only needs plain string payloads on subscribe and
// publish; everything else stays behind the Client interface.
package mqtt

// Handler receives one inbound message.
type Handler func(topic, payload string)

// Client is the transport the controller runs on.
type Client interface {
	// Subscribe registers a handler for a topic.
	Subscribe(topic string, handler Handler) error

	// Publish sends a payload to the broker. Failures must not crash the
	// process; outputs are re-published on the next tick anyway.
	Publish(topic, payload string, retained bool) error

	// Close disconnects from the broker.
	Close()
}

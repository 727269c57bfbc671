package ports

// Receiver defines the lifecycle of an inbound mail surface
type Receiver interface {
	// Start starts accepting requests; it must not block
	Start() error

	// Stop stops the receiver, letting in-flight requests finish
	Stop() error
}

// Package connector provides the links used to move messages
// between pipeline stages.
package connector

import "errors"

// ErrClosed is returned when reading from or writing to a closed connector.
var ErrClosed = errors.New("connector: closed")

// Connector moves items of type T from one stage to the next.
// Write and Read block until the operation can complete
// or the connector is closed.
type Connector[T any] interface {
	Write(item T) error
	Read() (T, error)
	Close()
}

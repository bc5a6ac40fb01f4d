package socketcan

import (
	"github.com/openheavy/j1939tel/decode"
	"github.com/openheavy/j1939tel/internal/message"
)

// Message is a single CAN frame read from the bus, exposed as a
// one-frame batch.
type Message struct {
	message.Base

	Frame decode.RawMessage
}

func (m *Message) GetRawCANMessages() []decode.RawMessage {
	return []decode.RawMessage{m.Frame}
}

func newMessage(frame decode.RawMessage) *Message {
	return &Message{
		Frame: frame,
	}
}

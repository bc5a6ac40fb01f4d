package decode

import (
	"github.com/openheavy/j1939tel/internal/message"
	"github.com/openheavy/j1939tel/j1939"
)

// RawMessage is a single raw CAN frame as it comes out of a
// transport stage.
type RawMessage struct {
	CANID   uint32
	DataLen int
	RawData []byte
}

// Message is a batch of decoded J1939 frames.
type Message struct {
	message.Base

	MessageCount int
	Messages     []*j1939.DecodedMessage
}

func (m *Message) GetDecodedMessages() []*j1939.DecodedMessage {
	return m.Messages[:m.MessageCount]
}

func newMessage(capacity int) *Message {
	return &Message{
		MessageCount: 0,
		Messages:     make([]*j1939.DecodedMessage, 0, capacity),
	}
}

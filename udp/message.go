package udp

import "github.com/openheavy/j1939tel/internal/message"

var _ message.Serializable = (*Message)(nil)

// Message is a single received UDP datagram payload.
type Message struct {
	message.Base

	Data    []byte
	DataLen int
}

func (m *Message) GetBytes() []byte {
	return m.Data[:m.DataLen]
}

func newMessage(data []byte, dataLen int) *Message {
	return &Message{
		Data:    data,
		DataLen: dataLen,
	}
}

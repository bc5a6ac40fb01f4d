package cannelloni

import (
	"github.com/openheavy/j1939tel/decode"
	"github.com/openheavy/j1939tel/internal/message"
)

var _ message.Sequenced = (*Message)(nil)

// Maximum number of CAN 2.0 messages (8 bytes payload) that fit
// in a single udp/ipv4/ethernet packet.
const defaultCANMessageNum = 113

// Message is a batch of raw CAN frames decoded from a single
// cannelloni data packet.
type Message struct {
	message.Base

	SeqNum       uint8
	MessageCount int
	Messages     []decode.RawMessage
}

func (m *Message) GetSequenceNumber() uint64 {
	return uint64(m.SeqNum)
}

func (m *Message) GetRawCANMessages() []decode.RawMessage {
	return m.Messages[:m.MessageCount]
}

func newMessage() *Message {
	return &Message{
		MessageCount: 0,
		Messages:     make([]decode.RawMessage, defaultCANMessageNum),
	}
}

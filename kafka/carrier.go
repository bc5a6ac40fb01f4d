package kafka

import (
	"slices"

	"github.com/segmentio/kafka-go"
)

const textMapPropagatorFields = 1

// headerCarrier adapts kafka headers to the otel text map carrier, so
// the trace context can ride along with the published message.
type headerCarrier struct {
	headers []kafka.Header
}

func newHeaderCarrier() *headerCarrier {
	return &headerCarrier{
		headers: make([]kafka.Header, 0, textMapPropagatorFields),
	}
}

func (hc *headerCarrier) Get(key string) string {
	for _, header := range hc.headers {
		if key == header.Key {
			return string(header.Value)
		}
	}
	return ""
}

func (hc *headerCarrier) Set(key, value string) {
	hc.headers = slices.DeleteFunc(hc.headers, func(header kafka.Header) bool {
		return header.Key == key
	})

	hc.headers = append(hc.headers, kafka.Header{
		Key:   key,
		Value: []byte(value),
	})
}

func (hc *headerCarrier) Keys() []string {
	keys := make([]string, 0, len(hc.headers))
	for _, header := range hc.headers {
		keys = append(keys, header.Key)
	}
	return keys
}

func (hc *headerCarrier) Headers() []kafka.Header {
	return hc.headers
}

package connector

import (
	"errors"
	"sync"
	"testing"
)

const (
	testSize      = uint64(4096)
	testItemCount = 1_000_000

	benchSize = 4096
)

func testConnector(t *testing.T, connector Connector[int], itemCount int) {
	readerWg := sync.WaitGroup{}
	readerWg.Add(1)

	expected := make(map[int]int)
	for idx := 0; idx < itemCount; idx++ {
		expected[idx] = 0
	}

	counted := 0
	duplicated := 0
	go func() {
		defer readerWg.Done()

		for {
			item, err := connector.Read()
			if err != nil {
				if !errors.Is(err, ErrClosed) {
					t.Logf("Read error: %v", err)
				}
				return
			}

			counted++
			expected[item]++

			if expected[item] > 1 {
				duplicated++
			}
		}
	}()

	for idx := 0; idx < itemCount; idx++ {
		err := connector.Write(idx)
		if err != nil {
			t.Logf("Write error: %v,", err)
			continue
		}
	}

	connector.Close()

	readerWg.Wait()

	if counted != itemCount {
		t.Errorf("Expected %d items, got %d", itemCount, counted)
	}

	dupPerc := float64(duplicated) / float64(itemCount)

	percTreshold := 0.001
	if dupPerc > percTreshold {
		t.Errorf("Expected max %f percentage of duplicated items, got %f", percTreshold, dupPerc)
	}
}

func Test_RingBuffer(t *testing.T) {
	testConnector(t, NewRingBuffer[int](uint32(testSize)), testItemCount)
}

func Test_Channel(t *testing.T) {
	testConnector(t, NewChannel[int](testSize), testItemCount)
}

func getConnectorFromKind[T any](kind string, size uint64) Connector[T] {
	if kind == "channel" {
		return NewChannel[T](size)
	}
	return NewRingBuffer[T](uint32(size))
}

func Benchmark_Connectors(b *testing.B) {
	b.ReportAllocs()

	type dummy struct {
		data []byte
	}

	data := &dummy{
		data: make([]byte, 2048),
	}

	for _, connKind := range []string{"channel", "ring_buffer"} {
		b.Run("WriteRead-"+connKind, func(b *testing.B) {
			connector := getConnectorFromKind[*dummy](connKind, benchSize)

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if err := connector.Write(data); err != nil {
					b.Logf("Write error: %v,", err)
					return
				}

				if _, err := connector.Read(); err != nil {
					b.Logf("Read error: %v", err)
					return
				}
			}
		})
	}
}

package connector

import (
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

type slot[T any] struct {
	dataReady atomic.Bool
	data      T
}

// RingBuffer is a multi-producer multi-consumer [Connector] backed by a
// fixed-size ring. Writers and readers spin on the fast path and fall back
// to condition variables when the buffer stays full or empty.
type RingBuffer[T any] struct {
	// headTail packs head in the top 32 bits and tail in the bottom 32 bits,
	// so both can be loaded with a single atomic read.
	headTail atomic.Uint64

	// padding avoids false sharing between the hot atomics
	_ cpu.CacheLinePad

	closed atomic.Bool

	_ cpu.CacheLinePad

	isFull atomic.Bool

	_ cpu.CacheLinePad

	isEmpty atomic.Bool

	_ cpu.CacheLinePad

	capacity uint32
	capMask  uint32

	notEmpty *sync.Cond
	notFull  *sync.Cond
	mux      *sync.Mutex

	buffer []slot[T]
}

// NewRingBuffer returns a [RingBuffer] with the given capacity,
// rounded up to the next power of two.
func NewRingBuffer[T any](capacity uint32) *RingBuffer[T] {
	capacity--
	capacity |= capacity >> 1
	capacity |= capacity >> 2
	capacity |= capacity >> 4
	capacity |= capacity >> 8
	capacity |= capacity >> 16
	capacity++

	mux := &sync.Mutex{}

	return &RingBuffer[T]{
		capacity: capacity,
		capMask:  capacity - 1,

		buffer: make([]slot[T], capacity),

		mux:      mux,
		notEmpty: sync.NewCond(mux),
		notFull:  sync.NewCond(mux),
	}
}

func (rb *RingBuffer[T]) pack(head, tail uint32) uint64 {
	const mask = 1<<32 - 1
	return uint64(head)<<32 | uint64(tail&mask)
}

func (rb *RingBuffer[T]) unpack(headTail uint64) (head, tail uint32) {
	const mask = 1<<32 - 1
	head = uint32((headTail >> 32) & mask)
	tail = uint32(headTail & mask)
	return
}

func (rb *RingBuffer[T]) push(item T) bool {
	for {
		headTail := rb.headTail.Load()
		head, tail := rb.unpack(headTail)

		if head-tail >= rb.capacity {
			return false
		}

		slot := &rb.buffer[head&rb.capMask]

		// dataReady still set means the slot has not been consumed yet
		if slot.dataReady.Load() {
			runtime.Gosched()
			continue
		}

		// Claim the slot by advancing head
		if !rb.headTail.CompareAndSwap(headTail, rb.pack(head+1, tail)) {
			runtime.Gosched()
			continue
		}

		slot.data = item
		slot.dataReady.Store(true)

		return true
	}
}

func (rb *RingBuffer[T]) pop() (T, bool) {
	for {
		headTail := rb.headTail.Load()
		head, tail := rb.unpack(headTail)

		if head == tail {
			return *new(T), false
		}

		slot := &rb.buffer[tail&rb.capMask]

		if !slot.dataReady.Load() {
			// The writer claimed the slot but has not published yet
			runtime.Gosched()
			continue
		}

		// Claim the slot for reading by advancing tail
		if !rb.headTail.CompareAndSwap(headTail, rb.pack(head, tail+1)) {
			runtime.Gosched()
			continue
		}

		item := slot.data
		slot.dataReady.Store(false)

		return item, true
	}
}

// Write adds an item to the [RingBuffer].
// It blocks until the buffer is not full.
//
// Returns [ErrClosed] if the [RingBuffer] is closed.
func (rb *RingBuffer[T]) Write(item T) error {
	if rb.closed.Load() {
		return ErrClosed
	}

	for !rb.push(item) {
		// Buffer is full, give readers a chance before blocking
		runtime.Gosched()

		if rb.push(item) {
			break
		}

		rb.mux.Lock()

		rb.isFull.Store(true)

		if rb.closed.Load() {
			rb.mux.Unlock()
			return ErrClosed
		}

		rb.notFull.Wait()
		rb.mux.Unlock()
	}

	if rb.isEmpty.Load() {
		rb.mux.Lock()
		rb.notEmpty.Broadcast()
		rb.isEmpty.Store(false)
		rb.mux.Unlock()
	}

	return nil
}

// Read removes an item from the [RingBuffer].
// It blocks until the buffer is not empty.
//
// Returns [ErrClosed] if the [RingBuffer] is closed
// and no items are left.
func (rb *RingBuffer[T]) Read() (T, error) {
	item, ok := rb.pop()

	for !ok {
		// Buffer is empty, give writers a chance before blocking
		runtime.Gosched()

		item, ok = rb.pop()
		if ok {
			break
		}

		rb.mux.Lock()

		rb.isEmpty.Store(true)

		if rb.closed.Load() {
			rb.mux.Unlock()
			return item, ErrClosed
		}

		rb.notEmpty.Wait()
		rb.mux.Unlock()

		item, ok = rb.pop()
	}

	if rb.isFull.Load() {
		rb.mux.Lock()
		rb.notFull.Broadcast()
		rb.isFull.Store(false)
		rb.mux.Unlock()
	}

	return item, nil
}

// Close marks the [RingBuffer] as closed and wakes all blocked
// readers and writers.
func (rb *RingBuffer[T]) Close() {
	if !rb.closed.CompareAndSwap(false, true) {
		return
	}

	rb.mux.Lock()
	rb.notEmpty.Broadcast()
	rb.notFull.Broadcast()
	rb.mux.Unlock()
}

// Package device implements simulated accelerator devices: each device has an
// accounted memory of fixed capacity and a single execution stream that runs the
// submitted commands (copies and kernel launches) in submission order on its own
// goroutine. Hosts must call [Stream.Synchronize] before reading the results of
// the commands they submitted.
package device

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"unsafe"

	"github.com/dustin/go-humanize"
)

var (
	// ErrNotEnoughMemory is returned when an allocation exceeds the available memory of a device.
	ErrNotEnoughMemory = errors.New("not enough device memory")
	// ErrClosed is returned when a command is submitted to a closed device.
	ErrClosed = errors.New("device is closed")
)

// Device is a simulated accelerator with accounted memory and one stream.
type Device struct {
	ID       int
	Capacity uint64

	mu     sync.Mutex
	used   uint64
	peak   uint64
	stream *Stream
	logger *slog.Logger
}

// New returns a new [Device] with the given memory capacity in bytes and starts its stream.
// If logger is nil, logs are discarded.
func New(id int, capacity uint64, logger *slog.Logger) *Device {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Device{
		ID:       id,
		Capacity: capacity,
		stream:   newStream(),
		logger:   logger.With("device", id),
	}
}

// Stream returns the execution stream of the device.
func (d *Device) Stream() *Stream {
	return d.stream
}

// Used returns the allocated memory in bytes.
func (d *Device) Used() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.used
}

// Peak returns the largest amount of memory allocated at once, in bytes.
func (d *Device) Peak() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.peak
}

// Available returns the memory that can still be allocated, in bytes.
func (d *Device) Available() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.Capacity - d.used
}

// Allocation is a reservation of device memory.
type Allocation struct {
	Size  uint64
	dev   *Device
	freed bool
}

// Alloc reserves size bytes on the device.
// Returns [ErrNotEnoughMemory] if the device cannot hold them.
func (d *Device) Alloc(size uint64) (*Allocation, error) {

	d.mu.Lock()
	defer d.mu.Unlock()

	if size > d.Capacity-d.used {
		return nil, fmt.Errorf("%w: device %d cannot allocate %s with %s of %s in use",
			ErrNotEnoughMemory, d.ID, humanize.IBytes(size), humanize.IBytes(d.used), humanize.IBytes(d.Capacity))
	}

	d.used += size
	d.peak = max(d.peak, d.used)

	d.logger.Debug("alloc", "size", humanize.IBytes(size), "used", humanize.IBytes(d.used))

	return &Allocation{Size: size, dev: d}, nil
}

// Free releases the allocation. Freeing twice is a no-op.
func (a *Allocation) Free() {

	if a == nil || a.freed {
		return
	}

	d := a.dev
	d.mu.Lock()
	defer d.mu.Unlock()

	d.used -= a.Size
	a.freed = true

	d.logger.Debug("free", "size", humanize.IBytes(a.Size), "used", humanize.IBytes(d.used))
}

// Close synchronizes and stops the stream of the device.
func (d *Device) Close() {
	d.stream.close()
}

// Buffer is a typed region of device memory.
// Its content is only meaningful to the commands of the stream of the device.
type Buffer[V any] struct {
	*Allocation
	Data []V
}

// SizeOf returns the size in bytes of n elements of type V.
func SizeOf[V any](n int) uint64 {
	var zero V
	return uint64(n) * uint64(unsafe.Sizeof(zero))
}

// NewBuffer allocates a buffer of n elements on d.
func NewBuffer[V any](d *Device, n int) (*Buffer[V], error) {
	a, err := d.Alloc(SizeOf[V](n))
	if err != nil {
		return nil, err
	}
	return &Buffer[V]{Allocation: a, Data: make([]V, n)}, nil
}

// CopyToDevice enqueues on the stream of the device of b the copy of src into b at offset.
// src must not be modified before the stream is synchronized.
func CopyToDevice[V any](b *Buffer[V], offset int, src []V) error {
	if offset+len(src) > len(b.Data) {
		return fmt.Errorf("invalid copy: [%d, %d) out of buffer of %d elements", offset, offset+len(src), len(b.Data))
	}
	return b.dev.stream.Submit(func() error {
		copy(b.Data[offset:], src)
		return nil
	})
}

// CopyToHost enqueues on the stream of the device of b the copy of b at offset into dst.
// dst must not be read before the stream is synchronized.
func CopyToHost[V any](dst []V, b *Buffer[V], offset int) error {
	if offset+len(dst) > len(b.Data) {
		return fmt.Errorf("invalid copy: [%d, %d) out of buffer of %d elements", offset, offset+len(dst), len(b.Data))
	}
	return b.dev.stream.Submit(func() error {
		copy(dst, b.Data[offset:])
		return nil
	})
}

package device

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/dustin/go-humanize"
)

// Shard is the range [Start, End) of a vector of samples assigned to a device.
type Shard struct {
	Device     int
	Start, End int
}

// Len returns the number of samples of the shard.
func (s Shard) Len() int {
	return s.End - s.Start
}

func (s Shard) String() string {
	return fmt.Sprintf("device %d: [%d, %d)", s.Device, s.Start, s.End)
}

// Plan splits count samples over devices devices.
// Each of the min(devices, count) active devices receives count/active samples
// and the last one also receives the remainder. Returns nil if count or devices is zero.
func Plan(count, devices int) (shards []Shard) {

	if count < 0 || devices < 0 {
		panic(fmt.Errorf("invalid plan: count=%d and devices=%d must be non-negative", count, devices))
	}

	active := min(devices, count)
	if active == 0 {
		return nil
	}

	per := count / active

	shards = make([]Shard, active)
	for i := range shards {
		shards[i] = Shard{Device: i, Start: i * per, End: (i + 1) * per}
	}
	shards[active-1].End = count

	return
}

// Set is a fixed set of devices operated together.
type Set struct {
	Devices []*Device
	logger  *slog.Logger
}

// NewSet starts n devices of the given memory capacity in bytes.
// If logger is nil, logs are discarded.
func NewSet(n int, capacity uint64, logger *slog.Logger) *Set {

	if n < 1 {
		panic(fmt.Errorf("invalid device count: %d < 1", n))
	}

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	devices := make([]*Device, n)
	for i := range devices {
		devices[i] = New(i, capacity, logger)
	}

	logger.Debug("devices started", "count", n, "capacity", humanize.IBytes(capacity))

	return &Set{Devices: devices, logger: logger}
}

// Len returns the number of devices of the set.
func (s Set) Len() int {
	return len(s.Devices)
}

// Plan splits count samples over the devices of the set, see [Plan].
func (s Set) Plan(count int) (shards []Shard) {
	shards = Plan(count, len(s.Devices))
	for _, shard := range shards {
		s.logger.Debug("shard", "device", shard.Device, "start", shard.Start, "end", shard.End)
	}
	return
}

// Synchronize synchronizes the stream of every device of the set and returns
// the joined errors of the streams.
func (s Set) Synchronize() error {
	errs := make([]error, len(s.Devices))
	for i, d := range s.Devices {
		if err := d.Stream().Synchronize(); err != nil {
			errs[i] = fmt.Errorf("device %d: %w", d.ID, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every device of the set.
func (s Set) Close() {
	for _, d := range s.Devices {
		d.Close()
	}
}

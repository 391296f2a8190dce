package engine

import (
	"errors"
	"fmt"

	"github.com/Pro7ech/tfhe/bootstrap"
	"github.com/Pro7ech/tfhe/device"
	"github.com/Pro7ech/tfhe/glwe"
	"github.com/Pro7ech/tfhe/lwe"
	"github.com/Pro7ech/tfhe/torus"
	"github.com/Pro7ech/tfhe/utils/scratch"
)

// deviceContext is the state of the engine on one device: the stack of the
// kernels launched on the stream of the device.
type deviceContext[T torus.Torus] struct {
	*device.Device
	stack *scratch.Stack
}

func allocationFailure(err error) error {
	if errors.Is(err, device.ErrNotEnoughMemory) {
		return fmt.Errorf("%w: %w", ErrDeviceAllocationFailure, err)
	}
	return err
}

// launch submits f on the stream of the device. A panic of f is reported
// as an error by the next synchronization of the stream.
func launch(s *device.Stream, f func()) error {
	return s.Submit(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("kernel: %v", r)
			}
		}()
		f()
		return
	})
}

// replicateBootstrapKey uploads one copy of bsk, in the transform domain of k, to every device.
func (e *Engine[T]) replicateBootstrapKey(k kernel[T], bsk *bootstrap.Key[T]) (replicas []replica, err error) {

	size := uint64(bsk.InputDimension) * ggswBytes(k, bsk.K, bsk.Decomposition)

	replicas = make([]replica, len(e.contexts))

	for i, ctx := range e.contexts {

		var alloc *device.Allocation
		if alloc, err = ctx.Alloc(size); err != nil {
			// the replicas already launched are freed once their transforms are done
			if errSync := e.devices.Synchronize(); errSync != nil {
				e.logger.Warn("synchronize", "error", errSync)
			}
			freeReplicas(replicas[:i])
			return nil, allocationFailure(err)
		}

		replicas[i].alloc = alloc

		if err = launch(ctx.Stream(), func() {
			replicas[i].value = k.transformKey(bsk)
		}); err != nil {
			freeReplicas(replicas[:i+1])
			return nil, err
		}
	}

	if err = e.devices.Synchronize(); err != nil {
		freeReplicas(replicas)
		return nil, err
	}

	return
}

// shardBuffers are the device buffers of a shard.
type shardBuffers[T torus.Torus] struct {
	in, out, acc *device.Buffer[T]
}

func (b shardBuffers[T]) free() {
	for _, buf := range []*device.Buffer[T]{b.in, b.out, b.acc} {
		if buf != nil {
			buf.Free()
		}
	}
}

// views returns count LWE ciphertexts of dimension n backed by buf.
func views[T torus.Torus](buf []T, count, n int) (cts []*lwe.Ciphertext[T]) {
	cts = make([]*lwe.Ciphertext[T], count)
	for i := range cts {
		cts[i] = new(lwe.Ciphertext[T])
		cts[i].FromBuffer(n, buf[i*(n+1):])
	}
	return
}

// allocShards allocates the device buffers of every shard, inputs of inSize,
// accumulators of accSize (none if zero) and outputs of outSize elements per
// ciphertext. Nothing is submitted to the streams: on failure the buffers
// already allocated are freed and the caller's operands are left untouched.
func allocShards[T torus.Torus](contexts []*deviceContext[T], shards []device.Shard, inSize, accSize, outSize int) (buffers []shardBuffers[T], err error) {

	buffers = make([]shardBuffers[T], len(shards))

	for s, shard := range shards {

		d := contexts[shard.Device].Device
		count := shard.Len()
		b := &buffers[s]

		if b.in, err = device.NewBuffer[T](d, count*inSize); err != nil {
			break
		}
		if accSize != 0 {
			if b.acc, err = device.NewBuffer[T](d, count*accSize); err != nil {
				break
			}
		}
		if b.out, err = device.NewBuffer[T](d, count*outSize); err != nil {
			break
		}
	}

	if err != nil {
		for _, b := range buffers {
			b.free()
		}
		return nil, allocationFailure(err)
	}

	return
}

// bootstrapOnDevices shards the vector over the devices. The buffers of every shard are
// allocated first; then, for each shard, the inputs and the accumulators are copied to the
// device, the bootstrap is launched with the replica of the key of the device, and the
// outputs are copied back. The host waits for every device.
func (e *Engine[T]) bootstrapOnDevices(outs, ins []*lwe.Ciphertext[T], accs []*glwe.Ciphertext[T], bsk *TransformedBootstrapKey[T]) (shards []device.Shard, err error) {

	k := e.mustKernel(bsk.N)

	nIn, nOut := bsk.InputDimension, bsk.OutputDimension()
	accSize := (bsk.K + 1) * bsk.N

	shards = e.devices.Plan(len(ins))

	var buffers []shardBuffers[T]
	if buffers, err = allocShards(e.contexts, shards, nIn+1, accSize, nOut+1); err != nil {
		return nil, err
	}

	defer func() {
		for _, b := range buffers {
			b.free()
		}
	}()

	for s, shard := range shards {

		ctx := e.contexts[shard.Device]
		count := shard.Len()
		b := &buffers[s]

		for i := 0; i < count; i++ {
			if err = device.CopyToDevice(b.in, i*(nIn+1), ins[shard.Start+i].Value); err != nil {
				return nil, e.abort(err)
			}
			if err = device.CopyToDevice(b.acc, i*accSize, accs[shard.Start+i].Value); err != nil {
				return nil, e.abort(err)
			}
		}

		key := bsk.replicas[shard.Device].value

		if err = launch(ctx.Stream(), func() {
			accViews := make([]*glwe.Ciphertext[T], count)
			for i := range accViews {
				accViews[i] = new(glwe.Ciphertext[T])
				accViews[i].FromBuffer(bsk.K, bsk.N, b.acc.Data[i*accSize:])
			}
			k.bootstrapArray(ctx.stack, key, views(b.out.Data, count, nOut), views(b.in.Data, count, nIn), accViews)
		}); err != nil {
			return nil, e.abort(err)
		}

		for i := 0; i < count; i++ {
			if err = device.CopyToHost(outs[shard.Start+i].Value, b.out, i*(nOut+1)); err != nil {
				return nil, e.abort(err)
			}
		}
	}

	if err = e.devices.Synchronize(); err != nil {
		return nil, err
	}

	return
}

// abort waits for the commands already submitted to the devices, so that
// their buffers can be freed, and maps err to the errors of the package.
func (e *Engine[T]) abort(err error) error {
	if errSync := e.devices.Synchronize(); errSync != nil {
		e.logger.Warn("synchronize", "error", errSync)
	}
	return allocationFailure(err)
}

// keyswitchReplicas returns the replicas of ksk, uploading them on the first call.
// The replicas share the storage of ksk, which must not be modified until
// [Engine.DestroyLWEKeyswitchKey] or [Engine.Close].
func (e *Engine[T]) keyswitchReplicas(ksk *lwe.KeyswitchKey[T]) (allocs []*device.Allocation, err error) {

	if allocs, ok := e.ksks[ksk]; ok {
		return allocs, nil
	}

	size := device.SizeOf[T](len(ksk.Value))

	allocs = make([]*device.Allocation, len(e.contexts))
	for i, ctx := range e.contexts {
		if allocs[i], err = ctx.Alloc(size); err != nil {
			for _, a := range allocs[:i] {
				a.Free()
			}
			return nil, allocationFailure(err)
		}
	}

	e.ksks[ksk] = allocs

	return
}

// keyswitchOnDevices shards the vector over the devices, with the same
// allocate-then-copy-launch-copy scheme as [Engine.bootstrapOnDevices].
func (e *Engine[T]) keyswitchOnDevices(outs, ins []*lwe.Ciphertext[T], ksk *lwe.KeyswitchKey[T]) (shards []device.Shard, err error) {

	if _, err = e.keyswitchReplicas(ksk); err != nil {
		return
	}

	nIn, nOut := ksk.InputDimension, ksk.OutputDimension

	shards = e.devices.Plan(len(ins))

	var buffers []shardBuffers[T]
	if buffers, err = allocShards(e.contexts, shards, nIn+1, 0, nOut+1); err != nil {
		return nil, err
	}

	defer func() {
		for _, b := range buffers {
			b.free()
		}
	}()

	for s, shard := range shards {

		ctx := e.contexts[shard.Device]
		count := shard.Len()
		b := &buffers[s]

		for i := 0; i < count; i++ {
			if err = device.CopyToDevice(b.in, i*(nIn+1), ins[shard.Start+i].Value); err != nil {
				return nil, e.abort(err)
			}
		}

		if err = launch(ctx.Stream(), func() {
			ksk.KeyswitchVector(views(b.out.Data, count, nOut), views(b.in.Data, count, nIn))
		}); err != nil {
			return nil, e.abort(err)
		}

		for i := 0; i < count; i++ {
			if err = device.CopyToHost(outs[shard.Start+i].Value, b.out, i*(nOut+1)); err != nil {
				return nil, e.abort(err)
			}
		}
	}

	if err = e.devices.Synchronize(); err != nil {
		return nil, err
	}

	return
}

// DeviceMemory returns the memory in use on each device, in bytes.
func (e *Engine[T]) DeviceMemory() (used []uint64) {
	for _, d := range e.Devices() {
		used = append(used, d.Used())
	}
	return
}

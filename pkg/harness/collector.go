package harness

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/pqc-lab/kembench/internal/constants"
	kerrors "github.com/pqc-lab/kembench/internal/errors"
)

// ErrorKey is the grouping signature for operation failures: the error's
// type name plus a short hash of its message. Hashing keeps full provider
// error text, which may mention key sizes or library internals, out of
// reports while still separating distinct failure modes.
type ErrorKey struct {
	Type    string
	MsgHash string
}

// Key computes the signature of an operation error.
func Key(err error) ErrorKey {
	sum := sha256.Sum256([]byte(err.Error()))
	return ErrorKey{
		Type:    errorTypeName(err),
		MsgHash: hex.EncodeToString(sum[:])[:constants.ErrorHashLen],
	}
}

func errorTypeName(err error) string {
	var provErr *kerrors.ProviderError
	if errors.As(err, &provErr) {
		return "ProviderError"
	}
	name := fmt.Sprintf("%T", err)
	name = strings.TrimPrefix(name, "*")
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		name = name[idx+1:]
	}
	return name
}

// collector merges per-worker buffers after a measurement window. The global
// latency cap is split evenly across workers so no locking happens while
// operations are in flight.
type collector struct {
	capPerWorker int

	mu     sync.Mutex
	merged RunResult
}

func newCollector(concurrency int) *collector {
	capPerWorker := constants.MaxLatencySamples / concurrency
	if capPerWorker < 1 {
		capPerWorker = 1
	}
	return &collector{
		capPerWorker: capPerWorker,
		merged: RunResult{
			Errors: make(map[ErrorKey]uint64),
		},
	}
}

// newWorkerBuffer hands out an isolated buffer for one worker.
func (c *collector) newWorkerBuffer() *workerBuffer {
	return &workerBuffer{
		latencies: make([]float64, 0, 1024),
		errors:    make(map[ErrorKey]uint64),
		capacity:  c.capPerWorker,
	}
}

// merge folds a worker buffer into the run result. Each worker calls merge
// exactly once, after its loop exits; the mutex only serializes those final
// merges, never per-operation recording.
func (c *collector) merge(buf *workerBuffer) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.merged.SuccessCount += buf.success
	c.merged.FailureCount += buf.failure
	c.merged.LatenciesMs = append(c.merged.LatenciesMs, buf.latencies...)
	if buf.truncated {
		c.merged.Truncated = true
	}
	for k, v := range buf.errors {
		c.merged.Errors[k] += v
	}
}

// result returns the merged run result. Call after all workers finished.
func (c *collector) result() *RunResult {
	r := c.merged
	return &r
}

// workerBuffer accumulates one worker's results without synchronization.
type workerBuffer struct {
	success   uint64
	failure   uint64
	latencies []float64
	truncated bool
	errors    map[ErrorKey]uint64
	capacity  int
}

// record stores one completed operation.
func (b *workerBuffer) record(latencyMs float64, err error) {
	if len(b.latencies) < b.capacity {
		b.latencies = append(b.latencies, latencyMs)
	} else {
		b.truncated = true
	}

	if err != nil {
		b.failure++
		b.errors[Key(err)]++
		return
	}
	b.success++
}

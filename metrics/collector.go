// Package metrics provides per-scan metrics collection.
//
// The Collector accumulates counters during a single scan. It is a leaf
// package with no internal dependencies. Frame disposition metrics are
// absorbed from the engine tally at scan completion rather than recorded
// live, avoiding double-counting.
package metrics

import "sync"

// Snapshot is an immutable point-in-time view of all scan metrics.
// Returned by Collector.Snapshot(). Safe to read concurrently after creation.
type Snapshot struct {
	// Scan lifecycle
	ScansStarted   int64
	ScansCompleted int64
	ScansFailed    int64

	// Frames (absorbed from the engine tally at scan completion)
	FramesScanned     int64
	SegmentsAccepted  int64
	SegmentsDuplicate int64
	MetaFragments     int64
	FramesRejected    int64
	FramesIgnored     int64
	CursorRewinds     int64
	ByDisposition     map[string]int64

	// Optic
	NoCodeImages      int64
	ImageDecodeErrors int64

	// Sink / Storage
	SinkWriteSuccess int64
	SinkWriteFailure int64

	// Dimensions (informational, set at construction)
	Dir         string
	SinkBackend string
	Output      string
}

// Collector accumulates metrics during a single scan.
// Thread-safe via sync.Mutex. All increment methods are nil-receiver safe.
type Collector struct {
	mu sync.Mutex

	// Scan lifecycle
	scansStarted   int64
	scansCompleted int64
	scansFailed    int64

	// Optic
	noCodeImages      int64
	imageDecodeErrors int64

	// Sink / Storage
	sinkWriteSuccess int64
	sinkWriteFailure int64

	// Frames (set once via AbsorbTally)
	framesScanned     int64
	segmentsAccepted  int64
	segmentsDuplicate int64
	metaFragments     int64
	framesRejected    int64
	framesIgnored     int64
	cursorRewinds     int64
	byDisposition     map[string]int64

	// Dimensions
	dir         string
	sinkBackend string
	output      string
}

// NewCollector creates a Collector with dimension labels.
func NewCollector(dir, sinkBackend, output string) *Collector {
	return &Collector{
		byDisposition: make(map[string]int64),
		dir:           dir,
		sinkBackend:   sinkBackend,
		output:        output,
	}
}

// --- Scan lifecycle ---

// IncScanStarted records a scan start.
func (c *Collector) IncScanStarted() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.scansStarted++
	c.mu.Unlock()
}

// IncScanCompleted records a scan that ran to a terminal outcome.
func (c *Collector) IncScanCompleted() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.scansCompleted++
	c.mu.Unlock()
}

// IncScanFailed records a scan aborted by an environment failure.
func (c *Collector) IncScanFailed() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.scansFailed++
	c.mu.Unlock()
}

// --- Optic ---

// IncNoCodeImages records an image in which no code was found.
func (c *Collector) IncNoCodeImages() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.noCodeImages++
	c.mu.Unlock()
}

// IncImageDecodeErrors records an image that could not be read at all.
func (c *Collector) IncImageDecodeErrors() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.imageDecodeErrors++
	c.mu.Unlock()
}

// --- Sink / Storage ---
// Sink counters are per-call, not per-byte. A single Put of the assembled
// file counts as 1 success.

// IncSinkWriteSuccess records a successful sink write operation (per-call).
func (c *Collector) IncSinkWriteSuccess() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.sinkWriteSuccess++
	c.mu.Unlock()
}

// IncSinkWriteFailure records a failed sink write operation (per-call).
func (c *Collector) IncSinkWriteFailure() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.sinkWriteFailure++
	c.mu.Unlock()
}

// --- Frames (absorbed from the engine tally) ---

// AbsorbTally copies frame counters from the engine tally into the
// collector. Called once after a scan completes with the final tally.
// The byDisposition map keys are string-typed dispositions to keep this
// package free of dependencies on the types package.
func (c *Collector) AbsorbTally(scanned, accepted, duplicate, metaFragments, rejected, ignored, rewinds int64, byDisposition map[string]int64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.framesScanned = scanned
	c.segmentsAccepted = accepted
	c.segmentsDuplicate = duplicate
	c.metaFragments = metaFragments
	c.framesRejected = rejected
	c.framesIgnored = ignored
	c.cursorRewinds = rewinds
	c.byDisposition = make(map[string]int64, len(byDisposition))
	for k, v := range byDisposition {
		c.byDisposition[k] = v
	}
	c.mu.Unlock()
}

// --- Snapshot ---

// Snapshot returns an immutable point-in-time view of all metrics.
// The returned Snapshot is safe to read concurrently; the Collector can
// continue to be mutated independently.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	byDisposition := make(map[string]int64, len(c.byDisposition))
	for k, v := range c.byDisposition {
		byDisposition[k] = v
	}

	return Snapshot{
		ScansStarted:   c.scansStarted,
		ScansCompleted: c.scansCompleted,
		ScansFailed:    c.scansFailed,

		FramesScanned:     c.framesScanned,
		SegmentsAccepted:  c.segmentsAccepted,
		SegmentsDuplicate: c.segmentsDuplicate,
		MetaFragments:     c.metaFragments,
		FramesRejected:    c.framesRejected,
		FramesIgnored:     c.framesIgnored,
		CursorRewinds:     c.cursorRewinds,
		ByDisposition:     byDisposition,

		NoCodeImages:      c.noCodeImages,
		ImageDecodeErrors: c.imageDecodeErrors,

		SinkWriteSuccess: c.sinkWriteSuccess,
		SinkWriteFailure: c.sinkWriteFailure,

		Dir:         c.dir,
		SinkBackend: c.sinkBackend,
		Output:      c.output,
	}
}

// Package reader provides the read-side data access layer for the seam CLI.
//
// This package isolates read-only commands from decode internals: inspect
// re-renders a captured journal from disk and probe classifies a single
// image, neither touching scan state or the capture directory.
package reader

// InspectJournalResponse summarizes one journal stream.
type InspectJournalResponse struct {
	Journal     string        `json:"journal"`
	Version     string        `json:"version"`
	Dir         string        `json:"dir"`
	StartedAt   string        `json:"started_at"`
	Compressed  bool          `json:"compressed"`
	Records     int64         `json:"records"`
	Truncated   bool          `json:"truncated,omitempty"`
	Frames      FrameTally    `json:"frames"`
	Transfer    *TransferInfo `json:"transfer,omitempty"`
	HasChecksum bool          `json:"has_checksum"`
}

// FrameTally aggregates journal records by disposition.
type FrameTally struct {
	NoCode        int64 `json:"no_code"`
	Rejected      int64 `json:"rejected"`
	MetaFragments int64 `json:"meta_fragments"`
	DataSegments  int64 `json:"data_segments"`
	Duplicates    int64 `json:"duplicates"`
	Checksums     int64 `json:"checksums"`
	Ignored       int64 `json:"ignored"`
}

// TransferInfo is the transmission state rebuilt by replaying the
// journal's retained payloads. Nil when the journal never reached
// complete metadata.
type TransferInfo struct {
	SegmentCount uint64   `json:"segment_count"`
	IDWidth      int      `json:"id_width"`
	HashLength   int      `json:"hash_length"`
	SegmentsSeen int      `json:"segments_seen"`
	MissingIDs   []uint64 `json:"missing_ids,omitempty"`
	Complete     bool     `json:"complete"`
}

// RecordItem is one journal record in list form.
type RecordItem struct {
	Index       int64   `json:"index"`
	Name        string  `json:"name"`
	Disposition string  `json:"disposition"`
	Tag         string  `json:"tag"`
	SegmentID   *uint64 `json:"segment_id,omitempty"`
	PayloadSize int64   `json:"payload_size"`
}

// ProbeResponse classifies a single captured image.
type ProbeResponse struct {
	Image        string `json:"image"`
	CodeFound    bool   `json:"code_found"`
	Verified     bool   `json:"verified"`
	PayloadSize  int    `json:"payload_size,omitempty"`
	Tag          string `json:"tag,omitempty"`
	TagName      string `json:"tag_name,omitempty"`
	DigestLength int    `json:"digest_length,omitempty"`
	BodySize     int    `json:"body_size,omitempty"`
	Error        string `json:"error,omitempty"`
}

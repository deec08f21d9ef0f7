package wire

import (
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/justapithecus/seam/types"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// metaProbe mirrors the metadata record with optional fields, so that an
// absent key is distinguishable from a zero value.
type metaProbe struct {
	SegmentCount *uint64 `json:"segment_count"`
	IDWidth      *int    `json:"id_width"`
	HashLength   *int    `json:"hash_length"`
}

// MetaComplete reports whether an accumulated metadata buffer holds the
// whole JSON record. The sender terminates the record with '}' and never
// pads past it, so a trailing brace marks the end of the broadcast.
func MetaComplete(buf string) bool {
	return strings.HasSuffix(buf, "}")
}

// ParseMeta decodes an accumulated metadata buffer into a validated
// TransferMeta. All three fields must be present.
func ParseMeta(buf string) (*types.TransferMeta, error) {
	var probe metaProbe
	if err := json.UnmarshalFromString(buf, &probe); err != nil {
		return nil, fmt.Errorf("metadata is not valid JSON: %w", err)
	}

	switch {
	case probe.SegmentCount == nil:
		return nil, fmt.Errorf("metadata missing segment_count")
	case probe.IDWidth == nil:
		return nil, fmt.Errorf("metadata missing id_width")
	case probe.HashLength == nil:
		return nil, fmt.Errorf("metadata missing hash_length")
	}

	meta := &types.TransferMeta{
		SegmentCount: *probe.SegmentCount,
		IDWidth:      *probe.IDWidth,
		HashLength:   *probe.HashLength,
	}
	if err := meta.Validate(); err != nil {
		return nil, err
	}
	return meta, nil
}

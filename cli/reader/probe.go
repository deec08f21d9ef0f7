package reader

import (
	"errors"
	"fmt"

	"github.com/justapithecus/seam/optic"
	"github.com/justapithecus/seam/wire"
)

// ProbeImage decodes a single image and classifies its payload without
// transmission metadata. The digest length is rediscovered by brute force
// exactly as the scan loop does before metadata arrives.
//
// Classifiable defects (no code, unverifiable payload) come back inside
// the response; only an unreadable file is an error.
func ProbeImage(path string) (*ProbeResponse, error) {
	resp := &ProbeResponse{Image: path}

	payload, err := optic.NewDecoder().DecodeFile(path)
	if err != nil {
		if errors.Is(err, optic.ErrBadImage) {
			return nil, fmt.Errorf("read image: %w", err)
		}
		if errors.Is(err, optic.ErrNoCode) {
			resp.Error = err.Error()
			return resp, nil
		}
		// A code was located but its content is not a frame payload.
		resp.CodeFound = true
		resp.Error = err.Error()
		return resp, nil
	}

	resp.CodeFound = true
	resp.PayloadSize = len(payload)

	if len(payload) < wire.MinFrameSize {
		resp.Error = "payload too short to carry a digest"
		return resp, nil
	}

	resp.Tag = printableTag(payload[0])
	resp.TagName = tagName(payload[0])

	length, ok := wire.DiscoverDigestLength(payload)
	if !ok {
		resp.Error = "no digest length verifies"
		return resp, nil
	}

	resp.Verified = true
	resp.DigestLength = length
	resp.BodySize = len(payload) - 1 - length
	return resp, nil
}

func tagName(tag byte) string {
	switch tag {
	case wire.TagMeta:
		return "metadata_fragment"
	case wire.TagData:
		return "content_segment"
	case wire.TagChecksum:
		return "checksum_record"
	default:
		return "unknown"
	}
}

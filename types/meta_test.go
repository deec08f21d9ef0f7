package types //nolint:revive // types is a valid package name

import (
	"testing"
)

func TestTransferMeta_Validate(t *testing.T) {
	tests := []struct {
		name    string
		meta    TransferMeta
		wantErr bool
	}{
		{
			name:    "valid narrow ids",
			meta:    TransferMeta{SegmentCount: 12, IDWidth: 1, HashLength: 4},
			wantErr: false,
		},
		{
			name:    "valid wide ids",
			meta:    TransferMeta{SegmentCount: 1 << 20, IDWidth: 8, HashLength: 64},
			wantErr: false,
		},
		{
			name:    "zero segments is legal",
			meta:    TransferMeta{SegmentCount: 0, IDWidth: 2, HashLength: 8},
			wantErr: false,
		},
		{
			name:    "id_width zero",
			meta:    TransferMeta{SegmentCount: 1, IDWidth: 0, HashLength: 4},
			wantErr: true,
		},
		{
			name:    "id_width three",
			meta:    TransferMeta{SegmentCount: 1, IDWidth: 3, HashLength: 4},
			wantErr: true,
		},
		{
			name:    "hash_length zero",
			meta:    TransferMeta{SegmentCount: 1, IDWidth: 4, HashLength: 0},
			wantErr: true,
		},
		{
			name:    "hash_length beyond blake2b bound",
			meta:    TransferMeta{SegmentCount: 1, IDWidth: 4, HashLength: MaxDigestLength + 1},
			wantErr: true,
		},
		{
			name:    "count fills 1-byte id space",
			meta:    TransferMeta{SegmentCount: 256, IDWidth: 1, HashLength: 4},
			wantErr: false,
		},
		{
			name:    "count beyond 1-byte id space",
			meta:    TransferMeta{SegmentCount: 257, IDWidth: 1, HashLength: 4},
			wantErr: true,
		},
		{
			name:    "count beyond 2-byte id space",
			meta:    TransferMeta{SegmentCount: (1 << 16) + 1, IDWidth: 2, HashLength: 4},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.meta.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestScanMeta_Validate(t *testing.T) {
	if err := (&ScanMeta{Dir: "frames"}).Validate(); err != nil {
		t.Errorf("Validate() unexpected error: %v", err)
	}
	if err := (&ScanMeta{}).Validate(); err == nil {
		t.Error("Validate() expected error for empty dir")
	}
}

package dispatch

import (
	"errors"
	"testing"
)

func TestExtractIndex(t *testing.T) {
	tests := []struct {
		topic   string
		want    int
		wantErr error
	}{
		{"openWB/pv/3/get/power", 3, nil},
		{"openWB/pv/0/get/power", 0, nil},
		{"openWB/system/device/4/component/7/config", 4, nil},
		{"openWB/pv/007/get/power", 7, nil},
		{"openWB/pv/get/power", 0, ErrNoIndex},
		{"openWB/pv/3", 0, ErrNoIndex},
		{"3/openWB/pv", 0, ErrNoIndex},
		{"openWB/pv/3a/get", 0, ErrNoIndex},
		{"openWB/pv/-3/get", 0, ErrNoIndex},
		{"", 0, ErrNoIndex},
		{"openWB/pv/99999999999999999999999/get/power", 0, ErrInvalidIndex},
	}

	for _, tt := range tests {
		t.Run(tt.topic, func(t *testing.T) {
			got, err := ExtractIndex(tt.topic)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ExtractIndex(%q) error = %v, want %v", tt.topic, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ExtractIndex(%q) error = %v", tt.topic, err)
			}
			if got != tt.want {
				t.Errorf("ExtractIndex(%q) = %d, want %d", tt.topic, got, tt.want)
			}
		})
	}
}

func TestSegmentIndex(t *testing.T) {
	tests := []struct {
		name    string
		topic   string
		pos     int
		want    int
		wantErr error
	}{
		{"counter id", "openWB/counter/4/get/power", 2, 4, nil},
		{"trailing segment", "openWB/counter/4", 2, 4, nil},
		{"out of range", "openWB/counter", 2, 0, ErrNoIndex},
		{"negative position", "openWB/counter/4", -1, 0, ErrNoIndex},
		{"not numeric", "openWB/counter/get/power", 2, 0, ErrInvalidIndex},
		{"empty segment", "openWB/counter//get", 2, 0, ErrInvalidIndex},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SegmentIndex(tt.topic, tt.pos)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("SegmentIndex() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("SegmentIndex() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("SegmentIndex() = %d, want %d", got, tt.want)
			}
		})
	}
}

package store

import (
	"strings"
	"testing"
)

func TestEncodeVector(t *testing.T) {
	text, err := EncodeVector([]float32{0.5, -1, 2})
	if err != nil {
		t.Fatal(err)
	}
	if text != "[0.5,-1,2]" {
		t.Errorf("encoded = %q", text)
	}

	if _, err := EncodeVector(nil); err == nil {
		t.Error("expected error for empty vector")
	}
}

func TestDecodeVector(t *testing.T) {
	tests := []struct {
		name    string
		raw     any
		want    []float32
		wantErr bool
	}{
		{"nil value", nil, nil, false},
		{"float32 slice", []float32{1, 2}, []float32{1, 2}, false},
		{"float64 slice", []float64{1.5, 2.5}, []float32{1.5, 2.5}, false},
		{"any slice", []any{float64(1), float64(2)}, []float32{1, 2}, false},
		{"any slice with junk", []any{float64(1), "x"}, nil, true},
		{"json text", "[0.5,-1,2]", []float32{0.5, -1, 2}, false},
		{"json bytes", []byte("[1,2,3]"), []float32{1, 2, 3}, false},
		{"double-encoded string", `"[1,2]"`, []float32{1, 2}, false},
		{"empty string", "", nil, false},
		{"null literal", "null", nil, false},
		{"empty array", "[]", nil, false},
		{"corrupt text", "{not json", nil, true},
		{"unsupported type", 42, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeVector(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	orig := []float32{0.123, -4.56, 789}
	text, err := EncodeVector(orig)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(text, "[") {
		t.Fatalf("unexpected text form: %q", text)
	}
	got, err := DecodeVector(text)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(orig) {
		t.Fatalf("length mismatch: %v vs %v", got, orig)
	}
	for i := range got {
		if got[i] != orig[i] {
			t.Errorf("element %d: got %v, want %v", i, got[i], orig[i])
		}
	}
}

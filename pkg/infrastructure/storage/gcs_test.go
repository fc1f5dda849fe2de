package storage

import "testing"

func TestParseGCSURI(t *testing.T) {
	tests := []struct {
		uri        string
		wantBucket string
		wantObject string
		wantErr    bool
	}{
		{"gs://assets/geometry/muscles.json", "assets", "geometry/muscles.json", false},
		{"gs://kb/exercise_mappings.json", "kb", "exercise_mappings.json", false},
		{"gs://bucket-only", "", "", true},
		{"gs://bucket/", "", "", true},
		{"gs:///object", "", "", true},
		{"/local/path.json", "", "", true},
		{"", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			bucket, object, err := ParseGCSURI(tt.uri)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for %q", tt.uri)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if bucket != tt.wantBucket || object != tt.wantObject {
				t.Errorf("got (%q, %q), want (%q, %q)", bucket, object, tt.wantBucket, tt.wantObject)
			}
		})
	}
}

func TestIsGCSURI(t *testing.T) {
	if !IsGCSURI("gs://a/b") {
		t.Error("expected gs:// URI to be recognised")
	}
	if IsGCSURI("data/muscle_coordinates.json") {
		t.Error("expected local path to be rejected")
	}
}

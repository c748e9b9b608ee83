package storage

import "testing"

func TestParseRef(t *testing.T) {
	tests := []struct {
		url     string
		want    ObjectRef
		wantErr bool
	}{
		{"s3://bucket/key", ObjectRef{"bucket", "key"}, false},
		{"s3://bucket/path/to/key.bin", ObjectRef{"bucket", "path/to/key.bin"}, false},
		{"bucket/key", ObjectRef{"bucket", "key"}, false},
		{"s3://bucket", ObjectRef{}, true},
		{"s3:///key", ObjectRef{}, true},
		{"", ObjectRef{}, true},
	}
	for _, tt := range tests {
		got, err := ParseRef(tt.url)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseRef(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseRef(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestObjectRefString(t *testing.T) {
	ref := ObjectRef{Bucket: "models", Key: "weights/v2.bin"}
	if got := ref.String(); got != "s3://models/weights/v2.bin" {
		t.Errorf("String() = %q", got)
	}
}

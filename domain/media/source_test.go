package media

import "testing"

func TestClassifySource(t *testing.T) {
	tests := []struct {
		reference string
		want      SourceKind
	}{
		{"https://example.com/v.mp4", Remote},
		{"http://example.com/v.mp4", Remote},
		{"/tmp/v.mp4", Local},
		{"v.mp4", Local},
		{"HTTPS://example.com/v.mp4", Local},
		{"ftp://example.com/v.mp4", Local},
		{"", Local},
		{"http:/missing-slash", Local},
	}

	for _, tt := range tests {
		t.Run(tt.reference, func(t *testing.T) {
			if got := ClassifySource(tt.reference); got != tt.want {
				t.Errorf("ClassifySource(%q) = %v, want %v", tt.reference, got, tt.want)
			}
		})
	}
}

func TestSourceKind_String(t *testing.T) {
	if Remote.String() != "remote" || Local.String() != "local" {
		t.Errorf("unexpected names: %q %q", Remote, Local)
	}
	if SourceKind(42).String() != "unknown" {
		t.Errorf("SourceKind(42).String() = %q, want unknown", SourceKind(42).String())
	}
}

func TestValidateOutputFilename(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"audio.wav", false},
		{"speaker-1.wav", false},
		{"", true},
		{".", true},
		{"..", true},
		{"temp_video", true},
		{"../audio.wav", true},
		{"sub/audio.wav", true},
		{`sub\audio.wav`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputFilename(tt.name)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateOutputFilename(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
		})
	}
}

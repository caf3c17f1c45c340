package fetch

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type mockRunner struct {
	args   []string
	output []byte
	err    error
}

func (m *mockRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	m.args = append([]string{name}, args...)
	return m.output, m.err
}

func (m *mockRunner) CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	return m.Output(ctx, name, args...)
}

func TestYtDlpResolver_ResolveMediaURL(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		err     error
		want    string
		wantErr bool
	}{
		{
			name:   "single url",
			output: "https://rr1.googlevideo.com/videoplayback?id=1\n",
			want:   "https://rr1.googlevideo.com/videoplayback?id=1",
		},
		{
			name:   "video and audio urls",
			output: "https://cdn/v\nhttps://cdn/a\n",
			want:   "https://cdn/v",
		},
		{
			name:    "empty output",
			output:  "  \n",
			wantErr: true,
		},
		{
			name:    "command failure",
			err:     errors.New("exit status 1"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &mockRunner{output: []byte(tt.output), err: tt.err}
			r := NewYtDlpResolver("", runner)

			got, err := r.ResolveMediaURL(context.Background(), "https://youtu.be/abc")
			if tt.wantErr {
				if err == nil {
					t.Fatal("ResolveMediaURL() expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveMediaURL() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ResolveMediaURL() = %q, want %q", got, tt.want)
			}
			wantCmd := "yt-dlp -f b --get-url --no-warnings https://youtu.be/abc"
			if strings.Join(runner.args, " ") != wantCmd {
				t.Errorf("command = %q, want %q", strings.Join(runner.args, " "), wantCmd)
			}
		})
	}
}

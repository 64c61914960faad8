package cli

import (
	"testing"
)

func TestParseMode(t *testing.T) {
	cases := []struct {
		name     string
		args     []string
		wantMode string
		wantRest []string
		wantErr  bool
	}{
		{
			name:     "mode flag",
			args:     []string{"--mode=dispatch-service", "--max-concurrent=150"},
			wantMode: ModeDispatch,
			wantRest: []string{"--max-concurrent=150"},
		},
		{
			name:     "subcommand shorthand",
			args:     []string{"tracking", "--max-concurrent=200"},
			wantMode: ModeTracking,
			wantRest: []string{"--max-concurrent=200"},
		},
		{
			name:     "single letter shorthand",
			args:     []string{"d"},
			wantMode: ModeDispatch,
		},
		{
			name:     "mode flag normalizes shorthand",
			args:     []string{"--mode=t"},
			wantMode: ModeTracking,
		},
		{
			name:    "no mode",
			args:    []string{"--max-concurrent=10"},
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mode, rest, err := ParseMode(tc.args)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got mode %q", mode)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMode: %v", err)
			}
			if mode != tc.wantMode {
				t.Errorf("mode = %q, want %q", mode, tc.wantMode)
			}
			if len(rest) != len(tc.wantRest) {
				t.Fatalf("rest = %v, want %v", rest, tc.wantRest)
			}
			for i := range rest {
				if rest[i] != tc.wantRest[i] {
					t.Errorf("rest[%d] = %q, want %q", i, rest[i], tc.wantRest[i])
				}
			}
		})
	}
}

package mqtt

import "testing"

func TestParseTerminalID(t *testing.T) {
	cases := []struct {
		topic   string
		prefix  string
		want    string
		wantErr bool
	}{
		{"voz/terminal/term-1/utterance", "voz", "term-1", false},
		{"voz/dev/terminal/abc/speech", "voz/dev", "abc", false},
		{"voz/terminal/term-1/result/req-9", "voz", "term-1", false},
		{"voz/terminal", "voz", "", true},
		{"other/terminal/term-1/utterance", "voz", "", true},
		{"voz/session/term-1/utterance", "voz", "", true},
	}
	for _, tc := range cases {
		got, err := ParseTerminalID(tc.topic, tc.prefix)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseTerminalID(%q, %q): want error", tc.topic, tc.prefix)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseTerminalID(%q, %q): %v", tc.topic, tc.prefix, err)
		}
		if got != tc.want {
			t.Fatalf("ParseTerminalID(%q, %q) = %q, want %q", tc.topic, tc.prefix, got, tc.want)
		}
	}
}

func TestParseRequestID(t *testing.T) {
	if got := ParseRequestID("voz/terminal/t1/result/req-42"); got != "req-42" {
		t.Fatalf("ParseRequestID = %q, want req-42", got)
	}
}

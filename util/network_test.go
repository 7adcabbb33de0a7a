package util

import (
	"testing"
)

func TestFormatAddr(t *testing.T) {
	tests := []struct {
		host string
		port int
		want string
	}{
		{"194.182.161.159", 2028, "194.182.161.159:2028"},
		{"::1", 2028, "[::1]:2028"},
		{"challenge.example.com", 80, "challenge.example.com:80"},
	}
	for _, tt := range tests {
		if got := FormatAddr(tt.host, tt.port); got != tt.want {
			t.Errorf("FormatAddr(%q, %d) = %q, want %q", tt.host, tt.port, got, tt.want)
		}
	}
}

func TestSplitAddr(t *testing.T) {
	host, port, err := SplitAddr("[::1]:2028")
	if err != nil {
		t.Fatal(err)
	}
	if host != "::1" || port != 2028 {
		t.Errorf("got (%q, %d)", host, port)
	}

	for _, bad := range []string{"nohost", "host:0", "host:abc", "host:70000"} {
		if _, _, err := SplitAddr(bad); err == nil {
			t.Errorf("SplitAddr(%q) should fail", bad)
		}
	}
}

func TestFindFreePort(t *testing.T) {
	port, err := FindFreePort()
	if err != nil {
		t.Fatal(err)
	}
	if port < 1 || port > 65535 {
		t.Errorf("port %d out of range", port)
	}
}

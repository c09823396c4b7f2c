package netcheck

import (
	"net"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestIsReachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()
	openAddr := ln.Addr().String()

	// Grab a port with no listener on it.
	closedLn, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	closedAddr := closedLn.Addr().String()
	closedLn.Close()

	tests := []struct {
		name  string
		addrs []string
		want  bool
	}{
		{
			name:  "first address reachable",
			addrs: []string{openAddr, closedAddr},
			want:  true,
		},
		{
			name:  "falls back to second address",
			addrs: []string{closedAddr, openAddr},
			want:  true,
		},
		{
			name:  "both unreachable",
			addrs: []string{closedAddr, closedAddr},
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewChecker(zap.NewNop(), tt.addrs...)
			if got := c.IsReachable(time.Second); got != tt.want {
				t.Errorf("IsReachable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDefaultAddresses(t *testing.T) {
	c := NewChecker(zap.NewNop())
	if len(c.addrs) != 2 {
		t.Fatalf("default checker has %d addresses, want 2", len(c.addrs))
	}
}

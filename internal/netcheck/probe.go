package netcheck

import (
	"net"
	"time"

	"go.uber.org/zap"
)

// Prober reports whether outbound network connectivity exists. It gates
// every live fetch, so implementations must stay fast.
type Prober interface {
	IsReachable(timeout time.Duration) bool
}

// Checker probes connectivity with a short-lived TCP dial against public
// resolver addresses. The second address is a one-shot fallback, not a
// retry loop.
type Checker struct {
	addrs  []string
	logger *zap.Logger
}

func NewChecker(logger *zap.Logger, addrs ...string) *Checker {
	if len(addrs) == 0 {
		addrs = []string{"8.8.8.8:53", "1.1.1.1:53"}
	}
	return &Checker{
		addrs:  addrs,
		logger: logger,
	}
}

// IsReachable returns false only when every probe address fails or times out.
func (c *Checker) IsReachable(timeout time.Duration) bool {
	for _, addr := range c.addrs {
		conn, err := net.DialTimeout("tcp", addr, timeout)
		if err == nil {
			conn.Close()
			return true
		}
		c.logger.Debug("probe address unreachable",
			zap.String("addr", addr),
			zap.Error(err))
	}
	return false
}

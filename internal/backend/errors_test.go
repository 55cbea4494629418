package backend

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// dialTimeoutErr mimics the net.Error the transport returns on an i/o
// timeout without a context deadline in play.
type dialTimeoutErr struct{}

func (dialTimeoutErr) Error() string   { return "dial tcp 127.0.0.1:8000: i/o timeout" }
func (dialTimeoutErr) Timeout() bool   { return true }
func (dialTimeoutErr) Temporary() bool { return false }

func TestNetworkErrorTimeoutFromNetError(t *testing.T) {
	err := &NetworkError{Op: "POST /data/process", Err: dialTimeoutErr{}}

	assert.True(t, err.Timeout())
	// The transport's own message stays intact.
	assert.Contains(t, err.Error(), "i/o timeout")
}

func TestNetworkErrorTimeoutFromWrappedNetError(t *testing.T) {
	err := &NetworkError{
		Op:  "POST /data/process",
		Err: fmt.Errorf("request timed out after 20ms: %w", dialTimeoutErr{}),
	}

	assert.True(t, err.Timeout())
	assert.Contains(t, err.Error(), "i/o timeout")
}

func TestNetworkErrorTimeoutFromContextDeadline(t *testing.T) {
	err := &NetworkError{Op: "GET /data/shops", Err: context.DeadlineExceeded}

	assert.True(t, err.Timeout())
}

func TestNetworkErrorNotTimeout(t *testing.T) {
	err := &NetworkError{Op: "GET /data/shops", Err: fmt.Errorf("connection refused")}

	assert.False(t, err.Timeout())
}

package timeouts

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestConfigure_IgnoresZeroValues(t *testing.T) {
	t.Cleanup(Reset)

	Configure(Config{Short: 7 * time.Second})
	assert.Equal(t, 7*time.Second, Short())
	assert.Equal(t, DefaultPing, Ping())
	assert.Equal(t, DefaultMedium, Medium())
	assert.Equal(t, DefaultLong, Long())

	Reset()
	assert.Equal(t, DefaultShort, Short())
}

func TestWithTimeout_Expires(t *testing.T) {
	ctx, cancel := WithTimeout(context.Background(), time.Millisecond, zap.NewNop(), "test")
	defer cancel()

	<-ctx.Done()
	assert.ErrorIs(t, ctx.Err(), context.DeadlineExceeded)
}

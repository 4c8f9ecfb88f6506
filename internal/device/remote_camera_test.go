package device

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPushStreamDeliversLatestFrame(t *testing.T) {
	cam := NewRemoteCamera()
	stream, err := cam.Open(context.Background())
	require.NoError(t, err)
	defer stream.Close()

	push, ok := stream.(*PushStream)
	require.True(t, ok)

	_, err = stream.Frame()
	assert.Error(t, err, "frame before any upload should fail")

	push.Push([]byte("first"))
	push.Push([]byte("second"))

	frame, err := stream.Frame()
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), frame)
}

func TestPushStreamFrameIsACopy(t *testing.T) {
	cam := NewRemoteCamera()
	stream, err := cam.Open(context.Background())
	require.NoError(t, err)
	defer stream.Close()

	src := []byte("frame")
	stream.(*PushStream).Push(src)
	src[0] = 'x'

	frame, err := stream.Frame()
	require.NoError(t, err)
	assert.Equal(t, []byte("frame"), frame)
}

func TestPushStreamClosedRejectsUse(t *testing.T) {
	cam := NewRemoteCamera()
	stream, err := cam.Open(context.Background())
	require.NoError(t, err)

	require.NoError(t, stream.Close())
	require.NoError(t, stream.Close(), "close is idempotent")

	stream.(*PushStream).Push([]byte("late"))
	_, err = stream.Frame()
	assert.Error(t, err)
}

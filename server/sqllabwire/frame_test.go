package sqllabwire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrame_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, Request{ID: 7, Op: OpRows, Table: "students"}))
	require.NoError(t, WriteFrame(&buf, Request{ID: 8, Op: OpHistory}))

	var a, b Request
	require.NoError(t, ReadFrame(&buf, &a))
	require.NoError(t, ReadFrame(&buf, &b))
	assert.Equal(t, Request{ID: 7, Op: OpRows, Table: "students"}, a)
	assert.Equal(t, uint64(8), b.ID)
	assert.Equal(t, 0, buf.Len())
}

func TestFrame_RejectsBadHeaders(t *testing.T) {
	var req Request

	err := ReadFrame(bytes.NewReader([]byte{0, 0, 0, 0}), &req)
	assert.True(t, errors.Is(err, ErrEmptyFrame))

	var hdr [4]byte
	binary.BigEndian.PutUint32(hdr[:], MaxFrameSize+1)
	err = ReadFrame(bytes.NewReader(hdr[:]), &req)
	assert.True(t, errors.Is(err, ErrFrameTooLarge))

	body := []byte("{nope")
	var frame bytes.Buffer
	binary.BigEndian.PutUint32(hdr[:], uint32(len(body)))
	frame.Write(hdr[:])
	frame.Write(body)
	require.Error(t, ReadFrame(&frame, &req))
}

func TestFrame_TruncatedBody(t *testing.T) {
	var hdr [4]byte
	binary.BigEndian.PutUint32(hdr[:], 10)
	var req Request
	require.Error(t, ReadFrame(bytes.NewReader(append(hdr[:], '{')), &req))
}

// codec_test.go — Frame encoding and line-framed reading.
package ipc

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFrameQueryPort(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, NewQueryPort()))
	assert.Equal(t, `{"QueryPort":[]}`+"\n", buf.String())
}

func TestWriteFrameSetFInject(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		req    Request
		expect string
	}{
		{"enable", NewSetFInject("fault-apply", true), `{"SetFInject":["fault-apply",true]}`},
		{"disable", NewSetFInject("fault-apply", false), `{"SetFInject":["fault-apply",false]}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			require.NoError(t, WriteFrame(&buf, tc.req))
			assert.Equal(t, tc.expect+"\n", buf.String())
		})
	}
}

func TestReaderDecodesKnownMessages(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		`{"Started":[]}`,
		``,
		`{"ReplyPort":8090}`,
		`{"FInjects":["fault-apply","fault-read"]}`,
	}, "\n") + "\n"

	r := NewReader(strings.NewReader(input))

	msg, err := r.Next()
	require.NoError(t, err)
	assert.NotNil(t, msg.Started)
	assert.True(t, msg.Known())

	msg, err = r.Next()
	require.NoError(t, err)
	require.NotNil(t, msg.ReplyPort)
	assert.Equal(t, uint16(8090), *msg.ReplyPort)

	msg, err = r.Next()
	require.NoError(t, err)
	require.NotNil(t, msg.FInjects)
	assert.Equal(t, []string{"fault-apply", "fault-read"}, *msg.FInjects)

	_, err = r.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestReaderEmptyFInjectsIsPresent(t *testing.T) {
	t.Parallel()
	r := NewReader(strings.NewReader(`{"FInjects":[]}` + "\n"))
	msg, err := r.Next()
	require.NoError(t, err)
	require.NotNil(t, msg.FInjects, "explicit empty set is distinguishable from absence")
	assert.Empty(t, *msg.FInjects)
}

func TestReaderFinalFrameWithoutNewline(t *testing.T) {
	t.Parallel()
	r := NewReader(strings.NewReader(`{"ReplyPort":443}`))
	msg, err := r.Next()
	require.NoError(t, err)
	require.NotNil(t, msg.ReplyPort)
	assert.Equal(t, uint16(443), *msg.ReplyPort)
}

func TestReaderUnknownFrameIsNotKnown(t *testing.T) {
	t.Parallel()
	r := NewReader(strings.NewReader(`{"SomethingElse":1}` + "\n"))
	msg, err := r.Next()
	require.NoError(t, err)
	assert.False(t, msg.Known())
}

func TestReaderMalformedFrameErrors(t *testing.T) {
	t.Parallel()
	r := NewReader(strings.NewReader("{not json}\n"))
	_, err := r.Next()
	require.Error(t, err)
	assert.NotErrorIs(t, err, io.EOF)
}

func TestFaultRequestRoundTrip(t *testing.T) {
	t.Parallel()
	var f FaultRequest
	require.NoError(t, f.UnmarshalJSON([]byte(`["fault-apply",true]`)))
	assert.Equal(t, FaultRequest{ID: "fault-apply", Enable: true}, f)

	require.Error(t, f.UnmarshalJSON([]byte(`["only-one"]`)))
}

package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/goccy/go-json"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestPublishEncodesJSON(t *testing.T) {
	w := &fakeWriter{}
	p := newProducerWithWriter(w, "trading.decisions")

	err := p.Publish(context.Background(), "7", map[string]any{"action": "buy", "contracts": 3})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)
	assert.Equal(t, []byte("7"), w.msgs[0].Key)

	var got map[string]any
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, "buy", got["action"])
	assert.EqualValues(t, 3, got["contracts"])

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestPublishWrapsWriterError(t *testing.T) {
	boom := errors.New("broker down")
	p := newProducerWithWriter(&fakeWriter{err: boom}, "trading.decisions")

	err := p.Publish(context.Background(), "1", struct{}{})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "trading.decisions")
}

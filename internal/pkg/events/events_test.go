package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w, logger: zerolog.Nop()}

	ev := New(StudentCreated, 42, map[string]string{"registrationNo": "2024-CS-001"})
	require.NoError(t, p.Publish(context.Background(), ev))

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, "42", string(msg.Key))
	assert.Equal(t, "event-type", msg.Headers[0].Key)
	assert.Equal(t, StudentCreated, string(msg.Headers[0].Value))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, StudentCreated, decoded["type"])
	assert.Equal(t, "2024-CS-001", decoded["payload"].(map[string]interface{})["registrationNo"])
}

func TestKafkaPublisher_WrapsWriterError(t *testing.T) {
	p := &KafkaPublisher{writer: &fakeWriter{err: errors.New("broker down")}, logger: zerolog.Nop()}

	err := p.Publish(context.Background(), New(AttendanceMarked, 1, nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
}

func TestEmit_SwallowsErrors(t *testing.T) {
	p := &KafkaPublisher{writer: &fakeWriter{err: errors.New("broker down")}, logger: zerolog.Nop()}
	assert.NotPanics(t, func() {
		Emit(context.Background(), p, zerolog.Nop(), New(PasswordReset, 1, nil))
		Emit(context.Background(), nil, zerolog.Nop(), New(PasswordReset, 1, nil))
	})
}

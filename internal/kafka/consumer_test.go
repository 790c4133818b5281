package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
)

func TestDispatch_DecodesEvent(t *testing.T) {
	msg := kafka.Message{Value: []byte(`{"type":"new_reservation","id":3,"confirmation_code":"AB12CD34","room_id":1}`)}

	var got ReservationEvent
	err := dispatch(context.Background(), msg, func(ctx context.Context, event ReservationEvent) error {
		got = event
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, "new_reservation", got.Type)
	assert.Equal(t, int64(3), got.ID)
	assert.Equal(t, "AB12CD34", got.Code)
	assert.Equal(t, int64(1), got.RoomID)
}

func TestDispatch_SkipsUndecodableMessage(t *testing.T) {
	msg := kafka.Message{Topic: "notifications", Value: []byte("not json")}

	called := false
	err := dispatch(context.Background(), msg, func(ctx context.Context, event ReservationEvent) error {
		called = true
		return nil
	})

	assert.NoError(t, err, "a bad payload is skipped, not fatal")
	assert.False(t, called)
}

func TestDispatch_PropagatesHandlerError(t *testing.T) {
	msg := kafka.Message{Value: []byte(`{"type":"cancelled_reservation","id":5}`)}
	handlerErr := errors.New("smtp down")

	err := dispatch(context.Background(), msg, func(ctx context.Context, event ReservationEvent) error {
		return handlerErr
	})

	assert.ErrorIs(t, err, handlerErr)
}

package rabbitmq

import (
	"encoding/json"
	"testing"
	"time"

	"backoffice/internal/models"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAcknowledger struct {
	mock.Mock
}

func (m *mockAcknowledger) Ack(multiple bool) error {
	return m.Called(multiple).Error(0)
}

func (m *mockAcknowledger) Nack(multiple, requeue bool) error {
	return m.Called(multiple, requeue).Error(0)
}

func sampleEvent() models.OrderPlacedEvent {
	return models.OrderPlacedEvent{
		OrderID:      "o-1",
		CustomerName: "John Doe",
		Email:        "john@example.com",
		TotalAmount:  399.98,
		Items:        []models.OrderLine{{ProductID: "p1", Quantity: 2, Price: 199.99, Name: "Wireless Headphones"}},
		PlacedAt:     time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestDecodeOrderPlaced(t *testing.T) {
	body, err := json.Marshal(sampleEvent())
	require.NoError(t, err)

	event, err := DecodeOrderPlaced(body)
	require.NoError(t, err)
	assert.Equal(t, sampleEvent(), event)

	_, err = DecodeOrderPlaced([]byte("{not json"))
	assert.Error(t, err)

	_, err = DecodeOrderPlaced([]byte(`{"customerName":"x"}`))
	assert.Error(t, err)
}

func TestSettle(t *testing.T) {
	body, err := json.Marshal(sampleEvent())
	require.NoError(t, err)

	t.Run("acks handled event", func(t *testing.T) {
		ack := new(mockAcknowledger)
		ack.On("Ack", false).Return(nil).Once()
		var got models.OrderPlacedEvent
		settle(1, body, ack, func(e models.OrderPlacedEvent) error {
			got = e
			return nil
		})
		ack.AssertExpectations(t)
		assert.Equal(t, "o-1", got.OrderID)
	})

	t.Run("requeues on handler failure", func(t *testing.T) {
		ack := new(mockAcknowledger)
		ack.On("Nack", false, true).Return(nil).Once()
		settle(2, body, ack, func(models.OrderPlacedEvent) error { return errors.New("busy") })
		ack.AssertExpectations(t)
	})

	t.Run("drops malformed message", func(t *testing.T) {
		ack := new(mockAcknowledger)
		ack.On("Nack", false, false).Return(nil).Once()
		settle(3, []byte("garbage"), ack, func(models.OrderPlacedEvent) error {
			t.Fatal("handler must not run")
			return nil
		})
		ack.AssertExpectations(t)
	})
}

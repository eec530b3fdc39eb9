// internal/service/order/domain/carrier_test.go
package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapCarrierStatus(t *testing.T) {
	cases := map[string]Status{
		"ready_to_pick": StatusProcessing,
		"picking":       StatusProcessing,
		"picked":        StatusShipped,
		"storing":       StatusShipped,
		"transporting":  StatusShipped,
		"delivering":    StatusShipped,
		"delivered":     StatusDelivered,
		"cancel":        StatusCancelled,
		"return":        StatusReturned,
		"returned":      StatusReturned,
	}
	for raw, want := range cases {
		got, ok := MapCarrierStatus(raw)
		assert.True(t, ok, raw)
		assert.Equal(t, want, got, raw)
	}
}

func TestMapCarrierStatusUnknown(t *testing.T) {
	for _, raw := range []string{"sorting", "exception", "", "DELIVERED"} {
		_, ok := MapCarrierStatus(raw)
		assert.False(t, ok, raw)
	}
}

package capture

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetector_Normalize(t *testing.T) {
	tests := []struct {
		name      string
		fullNames bool
		className string
		want      string
	}{
		{"short mode strips package", false, "com.example.OrderService", "OrderService"},
		{"short mode keeps bare name", false, "OrderService", "OrderService"},
		{"short mode deep package", false, "a.b.c.d.Widget", "Widget"},
		{"full mode preserves verbatim", true, "com.example.OrderService", "com.example.OrderService"},
		{"full mode bare name", true, "OrderService", "OrderService"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := detector{trigger: "OrderService", fullNames: tt.fullNames}
			assert.Equal(t, tt.want, d.normalize(tt.className))
		})
	}
}

func TestDetector_ShouldStart(t *testing.T) {
	d := detector{trigger: "OrderService"}

	tests := []struct {
		name      string
		className string
		want      bool
	}{
		{"exact match", "OrderService", true},
		{"lowercase match", "orderservice", true},
		{"uppercase match", "ORDERSERVICE", true},
		{"qualified name matches after normalization", "com.example.OrderService", true},
		{"different class", "PaymentGateway", false},
		{"prefix only", "OrderServiceImpl", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, d.shouldStart(tt.className))
		})
	}
}

func TestDetector_ShouldStartFullNames(t *testing.T) {
	d := detector{trigger: "com.example.OrderService", fullNames: true}

	assert.True(t, d.shouldStart("com.example.OrderService"))
	assert.True(t, d.shouldStart("COM.EXAMPLE.ORDERSERVICE"))

	// In full-name mode the short name alone is not the trigger
	assert.False(t, d.shouldStart("OrderService"))
}

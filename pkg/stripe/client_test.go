package stripe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenbasket/greenbasket-backend/pkg/config"
)

func TestPaidStatuses(t *testing.T) {
	cases := []struct {
		name    string
		session *CheckoutSession
		want    bool
	}{
		{"nil session", nil, false},
		{"paid", &CheckoutSession{PaymentStatus: "paid"}, true},
		{"complete without paid status", &CheckoutSession{Status: "complete", PaymentStatus: "no_payment_required"}, true},
		{"open and unpaid", &CheckoutSession{Status: "open", PaymentStatus: "unpaid"}, false},
		{"expired", &CheckoutSession{Status: "expired", PaymentStatus: "unpaid"}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.session.Paid())
		})
	}
}

func TestNewClientKeyValidation(t *testing.T) {
	_, err := NewClient(config.StripeConfig{APIKey: "", Env: "test"})
	require.Error(t, err)

	_, err = NewClient(config.StripeConfig{APIKey: "sk_live_123", Env: "test"})
	require.Error(t, err)

	_, err = NewClient(config.StripeConfig{APIKey: "sk_test_123", Env: "live"})
	require.Error(t, err)

	c, err := NewClient(config.StripeConfig{APIKey: "sk_test_123", Env: "test"})
	require.NoError(t, err)
	assert.Equal(t, "test", c.Environment())
}

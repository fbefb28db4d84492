package mpesa

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
)

// Stub is a gateway for development and tests: every push is accepted
// and, if Result is set, settled asynchronously after Delay.
type Stub struct {
	Delay  time.Duration
	Result func(CallbackResult)
}

// STKPush acknowledges immediately with a generated checkout request id.
func (s *Stub) STKPush(_ context.Context, _ string, _ int64, _ string) (string, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	checkout := "ws_CO_" + id.String()
	if s.Result != nil {
		receipt := "STUB" + id.String()[:8]
		time.AfterFunc(s.Delay, func() {
			s.Result(CallbackResult{
				CheckoutRequestID: checkout,
				ResultCode:        0,
				ResultDesc:        "The service request is processed successfully.",
				ReceiptNumber:     receipt,
			})
		})
	}
	return checkout, nil
}

// Package mpesa integrates with the Safaricom Daraja STK push API.
package mpesa

import "context"

// Gateway initiates STK push payment prompts. Settlement is delivered
// asynchronously to the platform's callback URL.
type Gateway interface {
	// STKPush asks the gateway to prompt the phone for the amount and
	// returns the checkout request id used to correlate the result.
	STKPush(ctx context.Context, phone string, amount int64, accountRef string) (string, error)
}

// CallbackResult is the settlement outcome delivered to the callback URL.
// ResultCode 0 means the payer confirmed; anything else is a failure
// (cancelled prompt, insufficient funds, timeout at the provider).
type CallbackResult struct {
	CheckoutRequestID string
	ResultCode        int
	ResultDesc        string
	ReceiptNumber     string
}

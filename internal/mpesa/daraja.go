package mpesa

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Daraja talks to the Safaricom Daraja REST API (sandbox or production).
type Daraja struct {
	httpc       *http.Client
	log         *zap.Logger
	baseURL     string
	consumerKey string
	consumerSec string
	shortcode   string
	passkey     string
	callbackURL string

	mu       sync.Mutex
	token    string
	tokenExp time.Time
}

// DarajaConfig collects Daraja credentials and endpoints.
type DarajaConfig struct {
	BaseURL        string // e.g. https://sandbox.safaricom.co.ke
	ConsumerKey    string
	ConsumerSecret string
	Shortcode      string
	Passkey        string
	CallbackURL    string // public URL of POST /mpesa/callback
}

// NewDaraja constructs a Daraja gateway client.
func NewDaraja(cfg DarajaConfig, log *zap.Logger) *Daraja {
	return &Daraja{
		httpc:       &http.Client{Timeout: 30 * time.Second},
		log:         log,
		baseURL:     cfg.BaseURL,
		consumerKey: cfg.ConsumerKey,
		consumerSec: cfg.ConsumerSecret,
		shortcode:   cfg.Shortcode,
		passkey:     cfg.Passkey,
		callbackURL: cfg.CallbackURL,
	}
}

// accessToken returns a cached OAuth token, refreshing when near expiry.
func (d *Daraja) accessToken(ctx context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.token != "" && time.Now().Before(d.tokenExp.Add(-time.Minute)) {
		return d.token, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		d.baseURL+"/oauth/v1/generate?grant_type=client_credentials", nil)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(d.consumerKey, d.consumerSec)

	resp, err := d.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("daraja oauth: status %d", resp.StatusCode)
	}

	var body struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   string `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	ttl, _ := strconv.Atoi(body.ExpiresIn)
	if ttl <= 0 {
		ttl = 3600
	}
	d.token = body.AccessToken
	d.tokenExp = time.Now().Add(time.Duration(ttl) * time.Second)
	return d.token, nil
}

// STKPush sends the payment prompt request and returns the checkout request id.
func (d *Daraja) STKPush(ctx context.Context, phone string, amount int64, accountRef string) (string, error) {
	token, err := d.accessToken(ctx)
	if err != nil {
		return "", err
	}

	ts := time.Now().Format("20060102150405")
	password := base64.StdEncoding.EncodeToString([]byte(d.shortcode + d.passkey + ts))

	payload := map[string]any{
		"BusinessShortCode": d.shortcode,
		"Password":          password,
		"Timestamp":         ts,
		"TransactionType":   "CustomerPayBillOnline",
		"Amount":            amount,
		"PartyA":            phone,
		"PartyB":            d.shortcode,
		"PhoneNumber":       phone,
		"CallBackURL":       d.callbackURL,
		"AccountReference":  accountRef,
		"TransactionDesc":   "Donation",
	}
	buf, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		d.baseURL+"/mpesa/stkpush/v1/processrequest", bytes.NewReader(buf))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var body struct {
		CheckoutRequestID   string `json:"CheckoutRequestID"`
		ResponseCode        string `json:"ResponseCode"`
		ResponseDescription string `json:"ResponseDescription"`
		ErrorMessage        string `json:"errorMessage"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK || body.ResponseCode != "0" {
		msg := body.ErrorMessage
		if msg == "" {
			msg = body.ResponseDescription
		}
		d.log.Warn("stk push rejected",
			zap.Int("status", resp.StatusCode),
			zap.String("code", body.ResponseCode),
			zap.String("desc", msg),
		)
		return "", fmt.Errorf("stk push rejected: %s", msg)
	}

	d.log.Info("stk push accepted", zap.String("checkout_request_id", body.CheckoutRequestID))
	return body.CheckoutRequestID, nil
}

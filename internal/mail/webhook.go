package mail

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strconv"
	"strings"
	"time"
)

// Inbound webhook headers, as set by the provider on every delivery.
const (
	HeaderWebhookID        = "webhook-id"
	HeaderWebhookTimestamp = "webhook-timestamp"
	HeaderWebhookSignature = "webhook-signature"
)

// InboundEventEmailReceived is the event type for inbound replies.
const InboundEventEmailReceived = "email.received"

// InboundEvent is a signed event posted by the email provider.
type InboundEvent struct {
	Type string           `json:"type"`
	Data InboundEmailData `json:"data"`
}

// InboundEmailData describes the inbound email itself. InReplyTo carries the
// provider id of the outbound email being answered, when the sender's client
// preserved threading headers.
type InboundEmailData struct {
	EmailID   string `json:"email_id"`
	InReplyTo string `json:"in_reply_to"`
	From      string `json:"from"`
	Subject   string `json:"subject"`
	Text      string `json:"text"`
}

const signatureVersion = "v1"

// maxTimestampSkew rejects replayed or badly-clocked deliveries.
const maxTimestampSkew = 5 * time.Minute

var (
	ErrMissingSignatureHeaders = errors.New("missing webhook signature headers")
	ErrInvalidSignature        = errors.New("webhook signature verification failed")
	ErrTimestampOutOfRange     = errors.New("webhook timestamp outside tolerance")
)

// VerifyWebhookSignature checks the provider's HMAC-SHA256 signature over
// "{id}.{timestamp}.{payload}". The signature header may carry several
// space-separated "v1,<base64>" candidates; verification succeeds if any
// matches in constant time. The secret may carry a "whsec_" prefix and is
// base64-encoded.
func VerifyWebhookSignature(secret, msgID, timestamp string, payload []byte, signatureHeader string) error {
	if msgID == "" || timestamp == "" || signatureHeader == "" {
		return ErrMissingSignatureHeaders
	}

	if err := checkTimestamp(timestamp); err != nil {
		return err
	}

	key, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(secret, "whsec_"))
	if err != nil {
		return ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(msgID))
	mac.Write([]byte("."))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := mac.Sum(nil)

	for _, candidate := range strings.Fields(signatureHeader) {
		version, sig, found := strings.Cut(candidate, ",")
		if !found || version != signatureVersion {
			continue
		}
		decoded, err := base64.StdEncoding.DecodeString(sig)
		if err != nil {
			continue
		}
		if hmac.Equal(decoded, expected) {
			return nil
		}
	}
	return ErrInvalidSignature
}

// SignWebhookPayload produces a valid signature header for the given payload.
// Used by tests and local tooling.
func SignWebhookPayload(secret, msgID, timestamp string, payload []byte) (string, error) {
	key, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(secret, "whsec_"))
	if err != nil {
		return "", err
	}
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(msgID))
	mac.Write([]byte("."))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	return signatureVersion + "," + base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}

func checkTimestamp(timestamp string) error {
	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return ErrTimestampOutOfRange
	}
	diff := time.Since(time.Unix(ts, 0))
	if diff > maxTimestampSkew || diff < -maxTimestampSkew {
		return ErrTimestampOutOfRange
	}
	return nil
}

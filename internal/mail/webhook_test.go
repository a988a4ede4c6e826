package mail

import (
	"encoding/base64"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSecret() string {
	return "whsec_" + base64.StdEncoding.EncodeToString([]byte("super-secret-signing-key"))
}

func nowTimestamp() string {
	return fmt.Sprintf("%d", time.Now().Unix())
}

func TestVerifyWebhookSignatureRoundTrip(t *testing.T) {
	secret := testSecret()
	payload := []byte(`{"type":"email.received","data":{"email_id":"em_1"}}`)
	ts := nowTimestamp()

	header, err := SignWebhookPayload(secret, "msg_1", ts, payload)
	require.NoError(t, err)

	assert.NoError(t, VerifyWebhookSignature(secret, "msg_1", ts, payload, header))
}

func TestVerifyWebhookSignatureRejectsTamperedPayload(t *testing.T) {
	secret := testSecret()
	payload := []byte(`{"type":"email.received"}`)
	ts := nowTimestamp()

	header, err := SignWebhookPayload(secret, "msg_1", ts, payload)
	require.NoError(t, err)

	err = VerifyWebhookSignature(secret, "msg_1", ts, []byte(`{"type":"email.FORGED"}`), header)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifyWebhookSignatureRejectsWrongSecret(t *testing.T) {
	payload := []byte(`{}`)
	ts := nowTimestamp()

	header, err := SignWebhookPayload(testSecret(), "msg_1", ts, payload)
	require.NoError(t, err)

	other := "whsec_" + base64.StdEncoding.EncodeToString([]byte("another-key"))
	err = VerifyWebhookSignature(other, "msg_1", ts, payload, header)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifyWebhookSignatureMissingHeaders(t *testing.T) {
	err := VerifyWebhookSignature(testSecret(), "", nowTimestamp(), []byte(`{}`), "v1,abc")
	assert.ErrorIs(t, err, ErrMissingSignatureHeaders)

	err = VerifyWebhookSignature(testSecret(), "msg_1", nowTimestamp(), []byte(`{}`), "")
	assert.ErrorIs(t, err, ErrMissingSignatureHeaders)
}

func TestVerifyWebhookSignatureStaleTimestamp(t *testing.T) {
	secret := testSecret()
	payload := []byte(`{}`)
	stale := fmt.Sprintf("%d", time.Now().Add(-time.Hour).Unix())

	header, err := SignWebhookPayload(secret, "msg_1", stale, payload)
	require.NoError(t, err)

	err = VerifyWebhookSignature(secret, "msg_1", stale, payload, header)
	assert.ErrorIs(t, err, ErrTimestampOutOfRange)
}

func TestVerifyWebhookSignatureAcceptsMultipleCandidates(t *testing.T) {
	secret := testSecret()
	payload := []byte(`{}`)
	ts := nowTimestamp()

	header, err := SignWebhookPayload(secret, "msg_1", ts, payload)
	require.NoError(t, err)

	// Providers rotate secrets by sending several signatures in one header.
	combined := "v1,Zm9yZ2VkZm9yZ2VkZm9yZ2Vk " + header
	assert.NoError(t, VerifyWebhookSignature(secret, "msg_1", ts, payload, combined))
}

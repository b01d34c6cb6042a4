package listener

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "8f742231b10e8888abcd99yyyzzz85a5"

var testNow = time.Unix(1531420618, 0)

func fixedVerifier(secret string) *Verifier {
	v := NewVerifier(secret)
	v.now = func() time.Time { return testNow }
	return v
}

func signedHeader(secret string, ts int64, body string) http.Header {
	timestamp := strconv.FormatInt(ts, 10)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte("v0:" + timestamp + ":" + body))

	header := http.Header{}
	header.Set(HeaderTimestamp, timestamp)
	header.Set(HeaderSignature, "v0="+hex.EncodeToString(mac.Sum(nil)))
	return header
}

func TestVerify_AcceptsValidSignature(t *testing.T) {
	body := "token=xyzz0WbapA4vBCDEFasx0q6G&team_id=T1DC2JH3J&command=%2Fweather&text=94070"
	v := fixedVerifier(testSecret)

	got, err := v.Verify(signedHeader(testSecret, testNow.Unix(), body), []byte(body))
	require.NoError(t, err)
	assert.Equal(t, body, got)
}

func TestVerify_RejectsMutations(t *testing.T) {
	body := `{"type":"url_verification","challenge":"abc"}`
	header := signedHeader(testSecret, testNow.Unix(), body)

	t.Run("body byte flipped", func(t *testing.T) {
		mutated := []byte(body)
		mutated[10] ^= 0x01
		_, err := fixedVerifier(testSecret).Verify(header, mutated)
		assert.ErrorIs(t, err, ErrVerification)
	})

	t.Run("secret byte flipped", func(t *testing.T) {
		secret := []byte(testSecret)
		secret[0] ^= 0x01
		_, err := fixedVerifier(string(secret)).Verify(header, []byte(body))
		assert.ErrorIs(t, err, ErrVerification)
	})

	t.Run("body with trailing byte", func(t *testing.T) {
		_, err := fixedVerifier(testSecret).Verify(header, []byte(body+" "))
		assert.ErrorIs(t, err, ErrVerification)
	})
}

func TestVerify_ReplayWindow(t *testing.T) {
	body := "command=%2Fping"
	tests := []struct {
		name    string
		offset  time.Duration
		wantErr bool
	}{
		{name: "now", offset: 0},
		{name: "exactly 60 seconds old", offset: -60 * time.Second},
		{name: "61 seconds old", offset: -61 * time.Second, wantErr: true},
		{name: "an hour old", offset: -time.Hour, wantErr: true},
		{name: "60 seconds ahead", offset: 60 * time.Second},
		{name: "61 seconds ahead", offset: 61 * time.Second, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := testNow.Add(tt.offset).Unix()
			_, err := fixedVerifier(testSecret).Verify(signedHeader(testSecret, ts, body), []byte(body))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrVerification)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestVerify_RejectsBadHeaders(t *testing.T) {
	body := "command=%2Fping"
	valid := signedHeader(testSecret, testNow.Unix(), body)

	tests := []struct {
		name   string
		mutate func(h http.Header)
	}{
		{name: "missing timestamp", mutate: func(h http.Header) { h.Del(HeaderTimestamp) }},
		{name: "missing signature", mutate: func(h http.Header) { h.Del(HeaderSignature) }},
		{name: "unparsable timestamp", mutate: func(h http.Header) { h.Set(HeaderTimestamp, "yesterday") }},
		{name: "wrong version prefix", mutate: func(h http.Header) {
			h.Set(HeaderSignature, "v1="+h.Get(HeaderSignature)[3:])
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := valid.Clone()
			tt.mutate(header)
			_, err := fixedVerifier(testSecret).Verify(header, []byte(body))
			assert.ErrorIs(t, err, ErrVerification)
		})
	}
}

func TestVerify_RejectsInvalidUTF8(t *testing.T) {
	body := string([]byte{'a', 0xff, 0xfe})
	_, err := fixedVerifier(testSecret).Verify(signedHeader(testSecret, testNow.Unix(), body), []byte(body))
	assert.ErrorIs(t, err, ErrVerification)
}

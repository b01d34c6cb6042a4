package listener

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"pigeon/internal/logger"

	"go.uber.org/zap"
)

const (
	HeaderTimestamp = "X-Slack-Request-Timestamp"
	HeaderSignature = "X-Slack-Signature"

	signatureVersion = "v0"

	// DefaultReplayWindow is the largest accepted distance between the request
	// timestamp and the local clock. Exactly one window away is still accepted.
	DefaultReplayWindow = 60 * time.Second
)

// ErrVerification is the only error callers see; the reason is logged at debug level.
var ErrVerification = errors.New("request verification failed")

// Verifier authenticates inbound requests against the signing secret.
type Verifier struct {
	secret []byte
	window time.Duration
	now    func() time.Time
}

// NewVerifier returns a Verifier keyed with the app's signing secret.
func NewVerifier(secret string) *Verifier {
	return &Verifier{
		secret: []byte(secret),
		window: DefaultReplayWindow,
		now:    time.Now,
	}
}

// Verify checks the timestamp and signature headers against the raw body and
// returns the body as text. It must run on the bytes exactly as received.
func (v *Verifier) Verify(header http.Header, body []byte) (string, error) {
	timestamp := header.Get(HeaderTimestamp)
	signature := header.Get(HeaderSignature)
	if timestamp == "" || signature == "" {
		return "", v.reject("missing signature headers")
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return "", v.reject("unparsable timestamp", zap.String("timestamp", timestamp))
	}

	// Skew and replay are treated the same way.
	age := v.now().Unix() - ts
	if age < 0 {
		age = -age
	}
	if age > int64(v.window/time.Second) {
		return "", v.reject("timestamp outside replay window", zap.Int64("age_seconds", age))
	}

	if !hmac.Equal([]byte(v.sign(timestamp, body)), []byte(signature)) {
		return "", v.reject("signature mismatch")
	}

	if !utf8.Valid(body) {
		return "", v.reject("body is not valid utf-8")
	}
	return string(body), nil
}

// sign computes "v0=<hex hmac-sha256 of v0:timestamp:body>".
func (v *Verifier) sign(timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(signatureVersion + ":" + timestamp + ":"))
	mac.Write(body)
	return signatureVersion + "=" + hex.EncodeToString(mac.Sum(nil))
}

func (v *Verifier) reject(reason string, fields ...zap.Field) error {
	logger.GetLogger().Debug("rejected request: "+reason, fields...)
	return ErrVerification
}

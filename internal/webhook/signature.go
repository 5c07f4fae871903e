package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const SignatureHeader = "X-Webhook-Signature"

var (
	ErrMalformedSignature = errors.New("webhook: malformed signature header")
	ErrSignatureMismatch  = errors.New("webhook: signature mismatch")
	ErrSignatureExpired   = errors.New("webhook: signature timestamp outside tolerance")
)

// Sign returns the header value for payload: "t=<unix>,v1=<hex hmac>". The
// MAC covers "<unix>.<payload>" so a captured body cannot be replayed under
// a new timestamp.
func Sign(payload []byte, secret string, ts time.Time) string {
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac(payload, secret, ts.Unix())))
}

func mac(payload []byte, secret string, unix int64) []byte {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(strconv.FormatInt(unix, 10)))
	h.Write([]byte{'.'})
	h.Write(payload)
	return h.Sum(nil)
}

// Verify checks a header produced by Sign. Receivers use it; the service
// only signs.
func Verify(payload []byte, header, secret string, now time.Time, tolerance time.Duration) error {
	var (
		unix int64
		sig  []byte
	)
	for _, part := range strings.Split(header, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "t":
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return fmt.Errorf("%w: timestamp %q", ErrMalformedSignature, v)
			}
			unix = n
		case "v1":
			b, err := hex.DecodeString(v)
			if err != nil {
				return fmt.Errorf("%w: signature is not hex", ErrMalformedSignature)
			}
			sig = b
		}
	}
	if unix == 0 || sig == nil {
		return ErrMalformedSignature
	}

	if age := now.Sub(time.Unix(unix, 0)); age > tolerance || age < -tolerance {
		return ErrSignatureExpired
	}
	if !hmac.Equal(sig, mac(payload, secret, unix)) {
		return ErrSignatureMismatch
	}
	return nil
}

package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingSecret    = errors.New("webhook secret is not configured")
	ErrMissingSignature = errors.New("missing signature header")
	ErrMalformedHeader  = errors.New("malformed signature header")
	ErrSignatureInvalid = errors.New("signature mismatch")
)

// SignatureValidator проверяет подпись вебхука провайдера.
// Заголовок имеет вид "ts=<unix>,v1=<hex-hmac>".
type SignatureValidator struct {
	secret string
}

func NewSignatureValidator(secret string) *SignatureValidator {
	return &SignatureValidator{secret: secret}
}

// Manifest собирает каноническую строку ровно в том виде, в каком её
// подписывал провайдер. Любое отклонение, включая пропавший хвостовой
// разделитель, ломает сравнение.
func Manifest(resourceID, requestID, ts string) string {
	return fmt.Sprintf("id:%s;request-id:%s;ts:%s;", resourceID, requestID, ts)
}

func Digest(secret, manifest string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(manifest))
	return hex.EncodeToString(mac.Sum(nil))
}

// Validate разбирает заголовок и сверяет HMAC в константное время.
func (v *SignatureValidator) Validate(signatureHeader, requestID, resourceID string) error {
	if v.secret == "" {
		return ErrMissingSecret
	}
	if signatureHeader == "" {
		return ErrMissingSignature
	}

	ts, digest, err := parseSignatureHeader(signatureHeader)
	if err != nil {
		return err
	}

	expected := Digest(v.secret, Manifest(resourceID, requestID, ts))
	if !hmac.Equal([]byte(expected), []byte(digest)) {
		return ErrSignatureInvalid
	}
	return nil
}

func parseSignatureHeader(h string) (ts, digest string, err error) {
	for _, part := range strings.Split(h, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "ts":
			ts = kv[1]
		case "v1":
			digest = kv[1]
		}
	}
	if ts == "" || digest == "" {
		return "", "", ErrMalformedHeader
	}
	return ts, digest, nil
}

package payment_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/raquelxaviert/micangaria-sub002/internal/payment"
)

const testSecret = "whsec_0123456789abcdef"

func TestManifest_ExactLayout(t *testing.T) {
	m := payment.Manifest("12345", "req-abc", "1704908010")
	want := "id:12345;request-id:req-abc;ts:1704908010;"
	if m != want {
		t.Fatalf("manifest mismatch: got %q want %q", m, want)
	}
	if !strings.HasSuffix(m, ";") {
		t.Fatalf("manifest must keep the trailing separator: %q", m)
	}
}

func TestDigest_Deterministic(t *testing.T) {
	m := payment.Manifest("12345", "req-abc", "1704908010")

	d1 := payment.Digest(testSecret, m)
	d2 := payment.Digest(testSecret, m)
	if d1 != d2 {
		t.Fatalf("digest not stable: %s vs %s", d1, d2)
	}

	// Потеря хвостового разделителя должна ломать подпись.
	trimmed := payment.Digest(testSecret, strings.TrimSuffix(m, ";"))
	if trimmed == d1 {
		t.Fatalf("digest must change when trailing separator is dropped")
	}

	// Как и любое изменение одного байта.
	altered := payment.Digest(testSecret, "id:12346;request-id:req-abc;ts:1704908010;")
	if altered == d1 {
		t.Fatalf("digest must change when manifest bytes change")
	}
}

func TestValidate_OK(t *testing.T) {
	v := payment.NewSignatureValidator(testSecret)

	ts := "1704908010"
	digest := payment.Digest(testSecret, payment.Manifest("555", "req-1", ts))
	header := fmt.Sprintf("ts=%s,v1=%s", ts, digest)

	if err := v.Validate(header, "req-1", "555"); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidate_Failures(t *testing.T) {
	v := payment.NewSignatureValidator(testSecret)

	ts := "1704908010"
	digest := payment.Digest(testSecret, payment.Manifest("555", "req-1", ts))
	valid := fmt.Sprintf("ts=%s,v1=%s", ts, digest)

	cases := []struct {
		name       string
		header     string
		requestID  string
		resourceID string
		want       error
	}{
		{"missing header", "", "req-1", "555", payment.ErrMissingSignature},
		{"malformed header", "ts=123", "req-1", "555", payment.ErrMalformedHeader},
		{"tampered digest", fmt.Sprintf("ts=%s,v1=%s", ts, strings.Repeat("0", 64)), "req-1", "555", payment.ErrSignatureInvalid},
		{"wrong resource", valid, "req-1", "556", payment.ErrSignatureInvalid},
		{"wrong request id", valid, "req-2", "555", payment.ErrSignatureInvalid},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.Validate(tc.header, tc.requestID, tc.resourceID)
			if !errors.Is(err, tc.want) {
				t.Fatalf("got %v want %v", err, tc.want)
			}
		})
	}
}

func TestValidate_MissingSecret(t *testing.T) {
	v := payment.NewSignatureValidator("")
	err := v.Validate("ts=1,v1=abc", "req-1", "555")
	if !errors.Is(err, payment.ErrMissingSecret) {
		t.Fatalf("got %v want ErrMissingSecret", err)
	}
}

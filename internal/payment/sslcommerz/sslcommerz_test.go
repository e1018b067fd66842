package sslcommerz

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"testing"
)

func testConfig() *Config {
	return &Config{
		StoreID:       "haatbazar_test",
		StorePassword: "haatbazar_test@ssl",
		Sandbox:       true,
		SuccessURL:    "https://shop.example.com/pay/success",
		FailURL:       "https://shop.example.com/pay/fail",
		CancelURL:     "https://shop.example.com/pay/cancel",
		IPNURL:        "https://shop.example.com/api/v1/payments/sslcommerz/ipn",
	}
}

func signForm(password string, form url.Values, keys []string) string {
	params := map[string]string{}
	for _, k := range keys {
		params[k] = form.Get(k)
	}
	passSum := md5.Sum([]byte(password))
	params["store_passwd"] = hex.EncodeToString(passSum[:])

	sorted := make([]string, 0, len(params))
	for k := range params {
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)
	pairs := make([]string, 0, len(sorted))
	for _, k := range sorted {
		pairs = append(pairs, fmt.Sprintf("%s=%s", k, params[k]))
	}
	sum := md5.Sum([]byte(strings.Join(pairs, "&")))
	return hex.EncodeToString(sum[:])
}

func TestVerifyCallbackValidSignature(t *testing.T) {
	cfg := testConfig()
	form := url.Values{}
	form.Set("status", "VALID")
	form.Set("tran_id", "HB20260901ABCDEF")
	form.Set("amount", "1850.00")
	form.Set("currency", "BDT")
	keys := []string{"status", "tran_id", "amount", "currency"}
	form.Set("verify_key", strings.Join(keys, ","))
	form.Set("verify_sign", signForm(cfg.StorePassword, form, keys))

	if err := VerifyCallback(cfg, form); err != nil {
		t.Fatalf("expected valid signature, got %v", err)
	}
}

func TestVerifyCallbackRejectsTamperedAmount(t *testing.T) {
	cfg := testConfig()
	form := url.Values{}
	form.Set("status", "VALID")
	form.Set("tran_id", "HB20260901ABCDEF")
	form.Set("amount", "1850.00")
	keys := []string{"status", "tran_id", "amount"}
	form.Set("verify_key", strings.Join(keys, ","))
	form.Set("verify_sign", signForm(cfg.StorePassword, form, keys))

	form.Set("amount", "1.00")
	if err := VerifyCallback(cfg, form); !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("expected ErrSignatureInvalid, got %v", err)
	}
}

func TestVerifyCallbackMissingSignature(t *testing.T) {
	cfg := testConfig()
	form := url.Values{}
	form.Set("status", "VALID")

	if err := VerifyCallback(cfg, form); !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("expected ErrSignatureInvalid, got %v", err)
	}
	if err := VerifyCallback(nil, form); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("expected ErrConfigInvalid for nil config, got %v", err)
	}
}

func TestVerifyCallbackWrongStorePassword(t *testing.T) {
	cfg := testConfig()
	form := url.Values{}
	form.Set("status", "VALID")
	form.Set("tran_id", "HB20260901ABCDEF")
	keys := []string{"status", "tran_id"}
	form.Set("verify_key", strings.Join(keys, ","))
	form.Set("verify_sign", signForm("other_password", form, keys))

	if err := VerifyCallback(cfg, form); !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("expected ErrSignatureInvalid, got %v", err)
	}
}

func TestValidateConfig(t *testing.T) {
	if err := ValidateConfig(testConfig()); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
	if err := ValidateConfig(nil); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("expected ErrConfigInvalid for nil, got %v", err)
	}

	missing := testConfig()
	missing.StorePassword = " "
	if err := ValidateConfig(missing); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("expected ErrConfigInvalid for blank password, got %v", err)
	}
}

func TestValidationResultValid(t *testing.T) {
	cases := []struct {
		status string
		want   bool
	}{
		{"VALID", true},
		{"VALIDATED", true},
		{"valid", true},
		{"FAILED", false},
		{"", false},
	}
	for _, c := range cases {
		r := &ValidationResult{Status: c.status}
		if r.Valid() != c.want {
			t.Fatalf("Valid() for status %q = %v, want %v", c.status, r.Valid(), c.want)
		}
	}
	var nilResult *ValidationResult
	if nilResult.Valid() {
		t.Fatalf("nil result should not be valid")
	}
}

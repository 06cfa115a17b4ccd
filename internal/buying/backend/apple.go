package backend

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

const (
	ProductionVerifyURL = "https://buy.itunes.apple.com/verifyReceipt"
	SandboxVerifyURL    = "https://sandbox.itunes.apple.com/verifyReceipt"
	ServerAPIURL        = "https://api.storekit.itunes.apple.com"

	appleAudience  = "appstoreconnect-v1"
	appleTokenTTL  = 5 * time.Minute
	defaultTimeout = 15 * time.Second

	// statusSandboxReceipt is returned by production for a sandbox receipt.
	statusSandboxReceipt = 21007
)

// AppleConfig configures the Apple backend. The App Store Server API is used for
// transaction IDs when IssuerID, KeyID, PrivateKey and BundleID are set; other
// receipts go through verifyReceipt with SharedSecret.
type AppleConfig struct {
	SharedSecret string
	VerifyURL    string
	SandboxURL   string

	IssuerID   string
	KeyID      string
	BundleID   string
	PrivateKey *ecdsa.PrivateKey
	ServerURL  string

	HTTPClient *http.Client
	Now        func() time.Time
}

// Apple verifies App Store receipts.
type Apple struct {
	cfg AppleConfig
}

// NewApple returns an Apple backend with defaults for empty URLs and client.
func NewApple(cfg AppleConfig) *Apple {
	if cfg.VerifyURL == "" {
		cfg.VerifyURL = ProductionVerifyURL
	}
	if cfg.SandboxURL == "" {
		cfg.SandboxURL = SandboxVerifyURL
	}
	if cfg.ServerURL == "" {
		cfg.ServerURL = ServerAPIURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: defaultTimeout}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Apple{cfg: cfg}
}

func (a *Apple) serverAPIEnabled() bool {
	return a.cfg.IssuerID != "" && a.cfg.KeyID != "" && a.cfg.BundleID != "" && a.cfg.PrivateKey != nil
}

// IsValidReceipt verifies receipt with Apple. Transport failures are errors; a
// rejected receipt is (false, nil).
func (a *Apple) IsValidReceipt(ctx context.Context, receipt string) (bool, error) {
	receipt = strings.TrimSpace(receipt)
	if receipt == "" {
		return false, nil
	}
	if a.serverAPIEnabled() && isTransactionID(receipt) {
		return a.lookupTransaction(ctx, receipt)
	}
	status, err := a.verifyReceipt(ctx, a.cfg.VerifyURL, receipt)
	if err != nil {
		return false, err
	}
	if status == statusSandboxReceipt {
		status, err = a.verifyReceipt(ctx, a.cfg.SandboxURL, receipt)
		if err != nil {
			return false, err
		}
	}
	return status == 0, nil
}

func isTransactionID(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

type verifyRequest struct {
	ReceiptData            string `json:"receipt-data"`
	Password               string `json:"password,omitempty"`
	ExcludeOldTransactions bool   `json:"exclude-old-transactions"`
}

type verifyResponse struct {
	Status int `json:"status"`
}

func (a *Apple) verifyReceipt(ctx context.Context, endpoint, receipt string) (int, error) {
	raw, err := json.Marshal(verifyRequest{
		ReceiptData:            receipt,
		Password:               a.cfg.SharedSecret,
		ExcludeOldTransactions: true,
	})
	if err != nil {
		return 0, errors.Wrap(err, "apple: encode request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(raw))
	if err != nil {
		return 0, errors.Wrap(err, "apple: build request")
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := a.cfg.HTTPClient.Do(req)
	if err != nil {
		return 0, errors.Wrap(err, "apple: verify receipt")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return 0, errors.Errorf("apple: verify receipt status=%d body=%s", resp.StatusCode, string(b))
	}
	var out verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, errors.Wrap(err, "apple: decode response")
	}
	return out.Status, nil
}

// lookupTransaction asks the App Store Server API for the transaction.
// 200 means it exists for this app; 404 means it does not.
func (a *Apple) lookupTransaction(ctx context.Context, transactionID string) (bool, error) {
	token, err := a.signToken()
	if err != nil {
		return false, err
	}
	endpoint := strings.TrimRight(a.cfg.ServerURL, "/") + "/inApps/v1/transactions/" + url.PathEscape(transactionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, errors.Wrap(err, "apple: build request")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := a.cfg.HTTPClient.Do(req)
	if err != nil {
		return false, errors.Wrap(err, "apple: lookup transaction")
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound, http.StatusBadRequest:
		return false, nil
	default:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return false, errors.Errorf("apple: lookup transaction status=%d body=%s", resp.StatusCode, string(b))
	}
}

type appleClaims struct {
	BundleID string `json:"bid"`
	jwt.RegisteredClaims
}

// signToken builds the ES256 bearer token for the App Store Server API.
func (a *Apple) signToken() (string, error) {
	now := a.cfg.Now().UTC()
	claims := appleClaims{
		BundleID: a.cfg.BundleID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    a.cfg.IssuerID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(appleTokenTTL)),
			Audience:  jwt.ClaimStrings{appleAudience},
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodES256, claims)
	tok.Header["kid"] = a.cfg.KeyID
	signed, err := tok.SignedString(a.cfg.PrivateKey)
	if err != nil {
		return "", errors.Wrap(err, "apple: sign token")
	}
	return signed, nil
}

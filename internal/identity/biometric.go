package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/lojinha-labs/storefront-backend/pkg/config"
	pkgerrors "github.com/lojinha-labs/storefront-backend/pkg/errors"
)

// BiometricVerifier runs the platform authenticator ceremony. The ceremony
// itself is an external collaborator; the service only cares about the
// resulting credential reference and assertion outcome.
type BiometricVerifier interface {
	// Register creates a platform credential for the user and returns an
	// opaque reference to it.
	Register(ctx context.Context, userID string) (string, error)
	// Verify challenges the platform credential and reports whether the
	// assertion succeeded.
	Verify(ctx context.Context, userID, credentialRef string) (bool, error)
}

// NewVerifier builds a verifier from config. An empty ceremony URL disables
// the biometric path entirely.
func NewVerifier(cfg config.BiometricConfig) BiometricVerifier {
	if strings.TrimSpace(cfg.CeremonyURL) == "" {
		return disabledVerifier{}
	}
	return &ceremonyClient{
		baseURL: strings.TrimRight(cfg.CeremonyURL, "/"),
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

type disabledVerifier struct{}

func (disabledVerifier) Register(context.Context, string) (string, error) {
	return "", pkgerrors.New(pkgerrors.CodeAuth, "biometric authentication is not available")
}

func (disabledVerifier) Verify(context.Context, string, string) (bool, error) {
	return false, pkgerrors.New(pkgerrors.CodeAuth, "biometric authentication is not available")
}

// ceremonyClient talks to an external WebAuthn-style ceremony endpoint.
type ceremonyClient struct {
	baseURL string
	client  *http.Client
}

type ceremonyRequest struct {
	UserID        string `json:"user_id"`
	CredentialRef string `json:"credential_ref,omitempty"`
}

type ceremonyResponse struct {
	CredentialRef string `json:"credential_ref"`
	Verified      bool   `json:"verified"`
}

func (c *ceremonyClient) Register(ctx context.Context, userID string) (string, error) {
	resp, err := c.post(ctx, "/register", ceremonyRequest{UserID: userID})
	if err != nil {
		return "", err
	}
	if resp.CredentialRef == "" {
		return "", pkgerrors.New(pkgerrors.CodeAuth, "ceremony returned no credential")
	}
	return resp.CredentialRef, nil
}

func (c *ceremonyClient) Verify(ctx context.Context, userID, credentialRef string) (bool, error) {
	resp, err := c.post(ctx, "/verify", ceremonyRequest{UserID: userID, CredentialRef: credentialRef})
	if err != nil {
		return false, err
	}
	return resp.Verified, nil
}

func (c *ceremonyClient) post(ctx context.Context, path string, payload ceremonyRequest) (*ceremonyResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode ceremony request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build ceremony request")
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeTransport, err, "ceremony request failed")
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, pkgerrors.New(pkgerrors.CodeAuth, fmt.Sprintf("ceremony rejected with status %d", res.StatusCode))
	}

	var decoded ceremonyResponse
	if err := json.NewDecoder(res.Body).Decode(&decoded); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeParse, err, "decode ceremony response")
	}
	return &decoded, nil
}

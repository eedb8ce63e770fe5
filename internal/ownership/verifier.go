// Package ownership queries the municipal property registry to confirm
// that an applicant owns the premises they are applying for.
package ownership

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"palika/internal/port"
)

type registryResponse struct {
	OwnerID  string `json:"owner_id"`
	Verified bool   `json:"verified"`
}

// Verifier checks premises ownership against the property registry's
// lookup endpoint. An unreachable registry is reported as an error, which
// callers treat as a denial.
type Verifier struct {
	baseURL    string
	httpClient *http.Client
}

// NewVerifier creates a new registry-backed ownership verifier.
func NewVerifier(baseURL string, timeout time.Duration) *Verifier {
	return &Verifier{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (v *Verifier) VerifyOwner(ctx context.Context, ownerID uuid.UUID, premisesNumber string) (bool, error) {
	lookupURL := fmt.Sprintf("%s/premises/%s/owner?owner_id=%s",
		v.baseURL, url.PathEscape(premisesNumber), url.QueryEscape(ownerID.String()))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lookupURL, http.NoBody)
	if err != nil {
		return false, fmt.Errorf("creating registry request: %w", err)
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("registry lookup: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("registry lookup: unexpected status %d", resp.StatusCode)
	}

	var info registryResponse
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return false, fmt.Errorf("decoding registry response: %w", err)
	}
	return info.Verified && info.OwnerID == ownerID.String(), nil
}

// Compile-time check.
var _ port.OwnershipVerifier = (*Verifier)(nil)

// Package identity is the boundary to the external identity provider. The
// dispatch core never issues or verifies credentials; it only consumes the
// resolved principal {id, role} and enforces role guards downstream.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/ride-dispatch/internal/domain"
)

// ErrUnauthenticated is returned when a credential cannot be resolved to a
// principal. The HTTP layer maps it to 401.
var ErrUnauthenticated = errors.New("unauthenticated")

// Resolver maps a bearer credential to a resolved principal.
type Resolver interface {
	Resolve(ctx context.Context, credential string) (domain.Actor, error)
}

// HTTPResolver asks an external identity service to resolve credentials.
// It POSTs the credential as a bearer header to the configured endpoint and
// expects {"id": "<uuid>", "role": "passenger|rider|admin"} back.
type HTTPResolver struct {
	endpoint string
	client   *http.Client
}

// NewHTTPResolver builds a resolver against the identity service endpoint.
func NewHTTPResolver(endpoint string) *HTTPResolver {
	return &HTTPResolver{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// Resolve exchanges the credential for a principal.
// Any non-200 answer from the identity service means the credential is bad.
func (r *HTTPResolver) Resolve(ctx context.Context, credential string) (domain.Actor, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, http.NoBody)
	if err != nil {
		return domain.Actor{}, fmt.Errorf("identity.HTTPResolver.Resolve: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+credential)

	resp, err := r.client.Do(req)
	if err != nil {
		return domain.Actor{}, fmt.Errorf("identity.HTTPResolver.Resolve: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Actor{}, ErrUnauthenticated
	}

	var body struct {
		ID   string `json:"id"`
		Role string `json:"role"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.Actor{}, fmt.Errorf("identity.HTTPResolver.Resolve: decode: %w", err)
	}

	id, err := uuid.Parse(body.ID)
	if err != nil {
		return domain.Actor{}, fmt.Errorf("identity.HTTPResolver.Resolve: bad principal id: %w", ErrUnauthenticated)
	}
	role := domain.Role(body.Role)
	if !role.Valid() {
		return domain.Actor{}, fmt.Errorf("identity.HTTPResolver.Resolve: bad principal role %q: %w", body.Role, ErrUnauthenticated)
	}
	return domain.Actor{ID: id, Role: role}, nil
}

// HeaderResolver trusts pre-resolved principal headers injected by an API
// gateway ("<role>:<uuid>" packed into the credential). Intended for
// deployments where the gateway terminates auth, and for local development.
type HeaderResolver struct{}

// Resolve parses a "<role>:<uuid>" credential.
func (HeaderResolver) Resolve(_ context.Context, credential string) (domain.Actor, error) {
	role, rawID, ok := strings.Cut(credential, ":")
	if !ok {
		return domain.Actor{}, ErrUnauthenticated
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return domain.Actor{}, ErrUnauthenticated
	}
	r := domain.Role(role)
	if !r.Valid() {
		return domain.Actor{}, ErrUnauthenticated
	}
	return domain.Actor{ID: id, Role: r}, nil
}

var (
	_ Resolver = (*HTTPResolver)(nil)
	_ Resolver = HeaderResolver{}
)

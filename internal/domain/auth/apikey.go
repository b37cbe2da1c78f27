// Package auth holds the service-to-service API key model. The storefront
// frontend authenticates with a peppered HMAC-SHA256 key; shopper identity
// is a separate concern handled by the identity provider.
package auth

import "context"

// Scope names for API key permissions.
const (
	ScopeCheckout = "checkout"
	ScopeCatalog  = "catalog"
)

// APIKeyInfo is a validated API key's identity and permissions.
type APIKeyInfo struct {
	ID      string
	KeyHash string
	Name    string
	Scopes  []string
}

// HasScope reports whether the key grants the given scope.
func (k *APIKeyInfo) HasScope(scope string) bool {
	for _, s := range k.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// Repository provides lookup of active API keys by their HMAC-SHA256 hash.
type Repository interface {
	FindByHash(ctx context.Context, hash string) (*APIKeyInfo, error)
}

package server

import (
	"context"
	"crypto/sha256"
	"fmt"
	"net/http"
	"strings"

	"github.com/brk3/arena/internal/config"
	"github.com/brk3/arena/internal/logger"
	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

type userCtxKey struct{}

type User struct {
	Subject string
	Email   string
	Name    string
	UserID  string
	Claims  map[string]any
}

type AuthProvider struct {
	name       string
	oauth2     *oauth2.Config
	oidcProv   *oidc.Provider
	idVerifier *oidc.IDTokenVerifier
}

func ConfigureOIDCProviders(cfg *config.Config) (map[string]*AuthProvider, error) {
	logger.Info("Configuring OIDC providers", "count", len(cfg.OIDCProviders))
	providers := make(map[string]*AuthProvider)

	for i := range cfg.OIDCProviders {
		cfgprov := cfg.OIDCProviders[i]

		logger.Debug("Setting up OIDC provider", "id", cfgprov.Id, "issuer", cfgprov.IssuerURL)
		prov, err := oidc.NewProvider(context.Background(), cfgprov.IssuerURL)
		if err != nil {
			logger.Error("Failed to create OIDC provider", "id", cfgprov.Id, "error", err)
			return nil, fmt.Errorf("failed to create OIDC provider: %w", err)
		}

		verifier := prov.Verifier(&oidc.Config{ClientID: cfgprov.ClientID})
		oauth2Cfg := &oauth2.Config{
			ClientID:     cfgprov.ClientID,
			ClientSecret: cfgprov.ClientSecret,
			Endpoint:     prov.Endpoint(),
			RedirectURL:  cfgprov.RedirectURL,
			Scopes:       cfgprov.Scopes,
		}

		providers[cfgprov.Id] = &AuthProvider{
			name:       cfgprov.Name,
			oauth2:     oauth2Cfg,
			oidcProv:   prov,
			idVerifier: verifier,
		}
		logger.Info("OIDC provider configured successfully", "id", cfgprov.Id, "name", cfgprov.Name)
	}

	return providers, nil
}

// authMiddleware expects "Authorization: Bearer provider:jwt" where
// provider names a configured OIDC provider and jwt is an ID token it
// issued.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ah := r.Header.Get("Authorization")
		if !strings.HasPrefix(ah, "Bearer ") {
			recordAuthEvent("verification", "missing_token", "unknown")
			unauthorized(w)
			return
		}

		providerID, rawIDToken, err := parseProviderToken(strings.TrimPrefix(ah, "Bearer "))
		if err != nil {
			logger.Debug("Failed to parse Bearer token", "error", err)
			recordAuthEvent("verification", "bad_format", "unknown")
			unauthorized(w)
			return
		}
		provider, exists := s.authProviders[providerID]
		if !exists {
			logger.Debug("Unknown provider in Bearer token", "provider", providerID)
			recordAuthEvent("verification", "unknown_provider", providerID)
			unauthorized(w)
			return
		}

		idTok, err := provider.idVerifier.Verify(r.Context(), rawIDToken)
		if err != nil {
			logger.Debug("ID token verification failed", "provider", providerID, "error", err)
			recordAuthEvent("verification", "failed", providerID)
			unauthorized(w)
			return
		}
		recordAuthEvent("verification", "success", providerID)

		var claims map[string]any
		if err := idTok.Claims(&claims); err != nil {
			logger.Error("Failed to extract claims from token", "error", err)
			unauthorized(w)
			return
		}
		u := &User{
			Subject: idTok.Subject,
			Email:   strClaim(claims, "email"),
			Name:    strClaim(claims, "name"),
			UserID:  userIDFromClaims(claims),
			Claims:  claims,
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userCtxKey{}, u)))
	})
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="arena"`)
	http.Error(w, "unauthorized", http.StatusUnauthorized)
}

// parseProviderToken parses a provider-prefixed token of the format "provider:jwt"
func parseProviderToken(token string) (providerID, jwt string, err error) {
	parts := strings.SplitN(token, ":", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("invalid token format: expected 'provider:jwt'")
	}

	providerID, jwt = parts[0], parts[1]
	if providerID == "" {
		return "", "", fmt.Errorf("empty provider ID")
	}
	if jwt == "" {
		return "", "", fmt.Errorf("empty JWT token")
	}

	return providerID, jwt, nil
}

func strClaim(m map[string]any, k string) string {
	if v, ok := m[k].(string); ok {
		return v
	}
	return ""
}

// userIDFromClaims generates a consistent user ID from OIDC token claims
func userIDFromClaims(claims map[string]any) string {
	iss, ok := claims["iss"].(string)
	if !ok {
		return ""
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return ""
	}

	hash := sha256.Sum256([]byte(iss + "|" + sub))
	return fmt.Sprintf("user-%x", hash[:8])
}

// userIDFromContext extracts user ID from authenticated request context
func userIDFromContext(authEnabled bool, r *http.Request) string {
	if !authEnabled {
		return "anonymous"
	}

	user, ok := r.Context().Value(userCtxKey{}).(*User)
	if !ok {
		logger.Error("No user in context")
		return ""
	}

	return user.UserID
}

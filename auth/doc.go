// Package auth provides authentication utilities for the HTTP boundary.
//
// This package includes:
//   - API key generation with the agf_ prefix and hash-based verification
//   - HMAC JWT access token generation and validation
//
// # API Keys
//
//	key, err := auth.GenerateAPIKey(auth.APIKeyConfig{})
//	// key.Secret: "agf_aBc123..." — shown once at creation
//	// key.Hash:   SHA-256 hash for storage
//
//	ok := auth.VerifyAPIKey(presented, storedHash)
//
// # JWT Usage
//
//	cfg := auth.JWTConfig{
//	    Secret: []byte("your-32-byte-or-longer-secret-key"),
//	    Issuer: "agentflow",
//	}
//	token, err := auth.GenerateAccessToken(cfg, "user-123")
//	claims, err := auth.ValidateAccessToken(cfg, token)
package auth

// Package auth guards the JSON API.
//
// Two modes are supported:
//   - "none": every request is allowed (default)
//   - "token": requests that change the catalog need a bearer token
//
// # Configuration
//
//	AUTH_MODE=token
//	AUTH_TOKEN_HASH=<bcrypt hash>   # produce one with `librarian hash-token`
//	AUTH_BCRYPT_COST=12
//
// Reads (GET, HEAD, OPTIONS) are always public. Repeated bad tokens from one
// client address are locked out for a while by RateLimiter.
//
// # Usage
//
//	limiter := auth.NewRateLimiter(auth.DefaultRateLimitConfig())
//	defer limiter.Stop()
//	router.Use(auth.SecurityHeadersMiddleware())
//	api.Use(auth.TokenMiddleware(cfg.Auth, limiter))
package auth

// Package auth provides API key authentication for the decisionstack services.
//
// APIKeyInterceptor(mode, header, key) returns a gRPC UnaryServerInterceptor
// that validates the API key from the named gRPC metadata header.
// HTTPMiddleware wraps an http.Handler with the same rule, reading the key
// from the HTTP header of the same name.
//
// When mode != "apikey" or key == "", all calls pass through (useful for local
// development with auth disabled). When the key is incorrect or absent, the
// interceptor returns codes.Unauthenticated and the middleware 401.
package auth

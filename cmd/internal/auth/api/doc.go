// Package authapi serves signup and login.
//
// Both routes share a per-IP token bucket. Tokens are stateless; there is no
// logout or refresh.
package authapi

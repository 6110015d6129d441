// Package social implements posts, likes and comments.
//
// Service is the only entry point for handlers: it validates input, applies the
// ownership guard on deletes and publishes feed events. Stores only persist.
package social

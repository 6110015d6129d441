// Package socialapi serves the post, like, comment and user routes.
// Every route sits behind the identity middleware.
package socialapi

// Package guard is the request-side half of authentication and authorization.
//
// Middleware turns an "Authorization: Bearer <token>" header into an Identity on the
// request context, or answers 401 with a reason-specific message. Authorize is the
// ownership check used by every delete endpoint: absent resource is 404, a different
// owner is 403, and there is no delegation or role override.
package guard

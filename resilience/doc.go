// Package resilience provides rate limiting and timeout primitives
// for the API surface.
//
// RateLimiter is a token bucket. PerClientLimiter keys buckets by
// client, so one caller hammering the token endpoints cannot exhaust
// the budget of others. Timeout bounds an operation's duration.
package resilience

// Package lib groups supporting packages that do not belong to a single
// layer: background jobs, email delivery, password hashing, the suggestion
// model client and its cache.
package lib

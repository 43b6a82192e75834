// Package apierror provides error inspection capabilities for vendor API errors.
// It centralizes the logic for deciding whether a failed request is worth
// retrying and which exit code its last cause maps to, so callers never match
// on error strings themselves.
package apierror

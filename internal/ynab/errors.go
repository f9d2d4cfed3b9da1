package ynab

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
)

var (
	// ErrRateLimitExceeded is returned when every attempt was rate limited.
	ErrRateLimitExceeded = errors.New("rate limit exceeded after maximum retries")
	// ErrSubmissionFailed is returned when a transaction could not be created.
	ErrSubmissionFailed = errors.New("failed to upload transaction")
)

// SubmissionError describes the last failed attempt. It matches
// ErrSubmissionFailed with errors.Is.
type SubmissionError struct {
	StatusCode int    // zero when the request never got a response
	Body       string // response body, if any
	Attempts   int
	Err        error // underlying cause, e.g. a *TransportError
}

func (e *SubmissionError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%v after %d attempts: %v", ErrSubmissionFailed, e.Attempts, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("%v after %d attempts: unexpected status %d: %s", ErrSubmissionFailed, e.Attempts, e.StatusCode, e.Body)
	default:
		return fmt.Sprintf("%v after %d attempts", ErrSubmissionFailed, e.Attempts)
	}
}

func (e *SubmissionError) Is(target error) bool { return target == ErrSubmissionFailed }

func (e *SubmissionError) Unwrap() error { return e.Err }

// TransportError is a network-level failure of one attempt.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return "request failed: " + e.Err.Error() }

func (e *TransportError) Unwrap() error { return e.Err }

// IsCertificateError reports whether err was caused by TLS certificate
// verification.
func IsCertificateError(err error) bool {
	var verr *tls.CertificateVerificationError
	var uerr x509.UnknownAuthorityError
	var herr x509.HostnameError
	var cerr x509.CertificateInvalidError
	return errors.As(err, &verr) || errors.As(err, &uerr) || errors.As(err, &herr) || errors.As(err, &cerr)
}

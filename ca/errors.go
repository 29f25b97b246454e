package ca

import "errors"

// ---------------------------------------------------------------------------
// Sentinel errors
// ---------------------------------------------------------------------------

var (
	// ErrPrerequisiteMissing is returned when a required capability is
	// unavailable, such as a key store backend the binary was built without.
	ErrPrerequisiteMissing = errors.New("required capability unavailable")

	// ErrInvalidParameter is returned for out-of-range validity periods,
	// empty required fields, and unreadable input material.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrKeyGeneration is returned when generating a key pair fails.
	ErrKeyGeneration = errors.New("key generation failed")

	// ErrMalformedRequest is returned when a certificate signing request
	// fails its self-consistency check.
	ErrMalformedRequest = errors.New("malformed certificate request")

	// ErrSigning is returned when certificate signing fails, including when
	// the CA key does not correspond to the CA certificate.
	ErrSigning = errors.New("certificate signing failed")

	// ErrExport is returned when PKCS#12 packaging fails, including when the
	// key and certificate do not form a matching pair.
	ErrExport = errors.New("PKCS#12 export failed")
)

package ca

// PFXOption expresses the caller's PKCS#12 export choice as a tri-state:
// not requested, requested with an empty password, or requested with a
// password. Presence of the option, not its value, decides whether a bundle
// is produced; an empty password is a valid request for an unprotected
// bundle.
type PFXOption struct {
	requested bool
	password  string
}

// PFXNotRequested returns the zero option: no bundle is produced.
func PFXNotRequested() PFXOption {
	return PFXOption{}
}

// PFXWithPassword requests a bundle protected by password. An empty string
// produces a bundle decodable without a password.
func PFXWithPassword(password string) PFXOption {
	return PFXOption{requested: true, password: password}
}

// Requested reports whether a bundle should be produced.
func (o PFXOption) Requested() bool {
	return o.requested
}

// Password returns the bundle password. Only meaningful when Requested.
func (o PFXOption) Password() string {
	return o.password
}

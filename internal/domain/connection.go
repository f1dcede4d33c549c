package domain

import "encoding/base64"

// Version selects the backend protocol generation.
type Version string

const (
	// VersionV1 is the legacy wire protocol (id-addressed collections).
	VersionV1 Version = "v1"
	// VersionV2 is the current wire protocol (name-addressed collections).
	VersionV2 Version = "v2"
)

// AuthType is the credential scheme of a connection.
type AuthType string

const (
	// AuthNone sends no authorization header.
	AuthNone AuthType = "none"
	// AuthToken sends a Bearer token.
	AuthToken AuthType = "token"
	// AuthBasic sends an HTTP Basic header.
	AuthBasic AuthType = "basic"
)

// Auth holds the credentials of a connection.
type Auth struct {
	Type     AuthType
	Token    string
	Username string
	Password string
}

// Header returns the Authorization header value for these credentials.
// ok is false when no header should be attached.
func (a Auth) Header() (value string, ok bool) {
	switch a.Type {
	case AuthToken:
		return "Bearer " + a.Token, true
	case AuthBasic:
		cred := base64.StdEncoding.EncodeToString([]byte(a.Username + ":" + a.Password))
		return "Basic " + cred, true
	default:
		return "", false
	}
}

// Connection is the immutable per-request descriptor of a backend.
// It is supplied by the caller on every operation and never cached
// or owned by the data-access layer.
type Connection struct {
	Endpoint string
	Tenant   string
	Database string
	Auth     Auth
	Version  Version
}

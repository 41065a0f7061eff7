package domain

// Login methods as they appear on the wire.
const (
	MethodEmail     = "email"
	MethodFederated = "federated"
)

// Credentials is a login attempt. The only implementations are
// EmailCredentials and FederatedCredentials.
type Credentials interface {
	Method() string
	// Validate reports a constraint violation as an *AuthenticationError.
	Validate() error
	sealed()
}

// EmailCredentials is an email/password login.
type EmailCredentials struct {
	Email    string
	Password string
}

func (EmailCredentials) Method() string { return MethodEmail }
func (EmailCredentials) sealed()        {}

func (c EmailCredentials) Validate() error {
	if c.Email == "" || c.Password == "" {
		return NewAuthenticationError("Email and password are required", ErrMissingEmailPass)
	}
	return nil
}

// DeviceInfo describes the browser the federated login came from.
type DeviceInfo struct {
	UserAgent string `json:"userAgent,omitempty"`
	Platform  string `json:"platform,omitempty"`
	Language  string `json:"language,omitempty"`
	Timezone  string `json:"timezone,omitempty"`
}

// FederatedCredentials carries an identity token issued by an external
// provider.
type FederatedCredentials struct {
	IdentityToken string
	Device        DeviceInfo
}

func (FederatedCredentials) Method() string { return MethodFederated }
func (FederatedCredentials) sealed()        {}

func (c FederatedCredentials) Validate() error {
	if c.IdentityToken == "" {
		return NewAuthenticationError("Identity token is required", ErrMissingIdentity)
	}
	return nil
}

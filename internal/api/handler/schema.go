package handler

import (
	"time"

	"github.com/ispoms/oms-console/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Console session ---

type loginRequest struct {
	Method     string            `json:"method"     validate:"oneof=email federated"`
	Email      string            `json:"email"      validate:"required_if=Method email,max=254"`
	Password   string            `json:"password"   validate:"required_if=Method email"`
	IDToken    string            `json:"idToken"    validate:"required_if=Method federated"`
	DeviceInfo domain.DeviceInfo `json:"deviceInfo"`
}

// credentials converts the request into the domain sum type. An empty
// method means email login.
func (r loginRequest) credentials() domain.Credentials {
	if r.Method == domain.MethodFederated {
		return domain.FederatedCredentials{IdentityToken: r.IDToken, Device: r.DeviceInfo}
	}
	return domain.EmailCredentials{Email: r.Email, Password: r.Password}
}

type sessionView struct {
	IsAuthenticated  bool         `json:"isAuthenticated"`
	Loading          bool         `json:"loading"`
	User             *domain.User `json:"user,omitempty"`
	Error            string       `json:"error,omitempty"`
	TokenIssuedAt    int64        `json:"tokenIssuedAt,omitempty"`
	TokenExpiresAt   int64        `json:"tokenExpiresAt,omitempty"`
	ExpiresInSeconds int64        `json:"expiresInSeconds"`
	Expired          bool         `json:"expired"`
}

// newSessionView renders s for the browser. Tokens stay server side.
func newSessionView(s domain.Session, now time.Time) sessionView {
	v := sessionView{
		IsAuthenticated: s.IsAuthenticated,
		Loading:         s.Loading,
		User:            s.User,
		Error:           s.Error,
		TokenIssuedAt:   s.TokenIssuedAt,
		TokenExpiresAt:  s.TokenExpiresAt,
	}
	if s.IsAuthenticated {
		v.ExpiresInSeconds = domain.TimeUntilExpiry(s, now.Unix())
		v.Expired = domain.IsExpired(s, now.Unix())
	}
	return v
}

type canResponse struct {
	Permission string `json:"permission"`
	Allowed    bool   `json:"allowed"`
}

// --- Console views ---

type navItem struct {
	Title string `json:"title"`
	Href  string `json:"href"`
}

type viewResponse struct {
	View       string       `json:"view"`
	Title      string       `json:"title"`
	User       *domain.User `json:"user"`
	Navigation []navItem    `json:"navigation"`
}

type loginPageResponse struct {
	View          string `json:"view"`
	From          string `json:"from,omitempty"`
	Error         string `json:"error,omitempty"`
	Authenticated bool   `json:"authenticated"`
	Redirect      string `json:"redirect,omitempty"`
}

type unauthorizedResponse struct {
	View    string            `json:"view"`
	Title   string            `json:"title"`
	Message string            `json:"message"`
	Links   map[string]string `json:"links"`
}

// --- Identity directory ---

type directoryError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// envelope wraps every /idp response.
type envelope struct {
	Success bool            `json:"success"`
	Data    any             `json:"data,omitempty"`
	Error   *directoryError `json:"error,omitempty"`
}

type registerRequest struct {
	Email     string `json:"email"     validate:"required,email,max=254"`
	Password  string `json:"password"  validate:"required,min=8,max=72"`
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName"  validate:"required,max=100"`
	Phone     string `json:"phone"     validate:"max=32"`
	Role      string `json:"role"      validate:"required"`
}

type registerResponse struct {
	UserID            string `json:"userId"`
	VerificationToken string `json:"verificationToken"`
}

type resendRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resendResponse struct {
	VerificationToken string `json:"verificationToken"`
}

// directoryUser is the user shape the console's credential verifier decodes.
type directoryUser struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	Phone           *string   `json:"phone"`
	IsActive        bool      `json:"is_active"`
	EmailVerified   bool      `json:"email_verified"`
	RoleName        string    `json:"role_name"`
	RolePermissions []string  `json:"role_permissions"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func toDirectoryUser(u *domain.User) directoryUser {
	du := directoryUser{
		ID:              u.ID,
		Email:           u.Email,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		IsActive:        u.IsActive,
		EmailVerified:   u.EmailVerified,
		RoleName:        u.Role.Name,
		RolePermissions: u.Role.Permissions,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
	if u.Phone != "" {
		phone := u.Phone
		du.Phone = &phone
	}
	return du
}

type loginGrantResponse struct {
	User         directoryUser `json:"user"`
	AccessToken  string        `json:"accessToken"`
	RefreshToken string        `json:"refreshToken"`
	ExpiresIn    int64         `json:"expiresIn"`
}

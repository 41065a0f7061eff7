package domain

// Decision is the outcome of gating a protected view.
type Decision int

const (
	Render Decision = iota
	RedirectToLogin
	RedirectToUnauthorized
	ShowLoading
)

func (d Decision) String() string {
	switch d {
	case Render:
		return "render"
	case RedirectToLogin:
		return "redirect_login"
	case RedirectToUnauthorized:
		return "redirect_unauthorized"
	case ShowLoading:
		return "show_loading"
	default:
		return "unknown"
	}
}

// Decide gates a view on session state. When required is non-empty the user
// needs any one of the listed permissions.
func Decide(s Session, required []string) Decision {
	if s.Loading {
		return ShowLoading
	}
	if !s.IsAuthenticated {
		return RedirectToLogin
	}
	if len(required) == 0 {
		return Render
	}
	for _, p := range required {
		if HasPermission(s.User, p) {
			return Render
		}
	}
	return RedirectToUnauthorized
}

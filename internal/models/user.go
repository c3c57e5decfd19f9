package models

// UserProfile is the authenticated user as returned by login.
type UserProfile struct {
	ID        string `json:"_id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Role      string `json:"role,omitempty"`
}

// Session is the persisted login record.
type Session struct {
	Success bool        `json:"success"`
	User    UserProfile `json:"user"`
}

// DisplayName returns the user's first name, falling back to the email.
func (s Session) DisplayName() string {
	if s.User.FirstName != "" {
		return s.User.FirstName
	}
	return s.User.Email
}

// Credentials is the login request body.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Feedback is the feedback request body.
type Feedback struct {
	Description string `json:"description"`
}

// Result is the generic success envelope used by login and feedback.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

package model

// Session is the locally cached public view of the authenticated identity.
type Session struct {
	UserID   string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Role     string `json:"role"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// Complete reports whether every field required to act as an authenticated
// holder is present. An incomplete session must be treated as signed out.
func (s Session) Complete() bool {
	return s.UserID != "" && s.Name != "" && s.Email != "" && s.Username != ""
}

func (s Session) IsAdmin() bool {
	return IsAdmin(s.Role)
}

func (s Session) HasPrivilege(code string) bool {
	return HasPrivilege(s.Role, code)
}

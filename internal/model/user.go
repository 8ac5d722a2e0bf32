package model

import "go-stockyng/pkg/hasher"

// User is a registered identity as stored under the "users" collection.
// Password holds the digest, never the clear text.
type User struct {
	Record
	Name     string `json:"name"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Password string `json:"password"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// SetPassword hashes and sets the user's password
func (u *User) SetPassword(h hasher.CredentialHasher, password string) error {
	digest, err := h.Hash(password)
	if err != nil {
		return err
	}
	u.Password = digest
	return nil
}

// CheckPassword verifies if the provided password matches the stored digest
func (u *User) CheckPassword(h hasher.CredentialHasher, password string) bool {
	return h.Verify(password, u.Password)
}

// HasPrivilege checks if the user's role grants a specific privilege
func (u *User) HasPrivilege(code string) bool {
	return HasPrivilege(u.Role, code)
}

// UserResponse is used for API responses (without the digest)
type UserResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Role     string `json:"role"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// ToResponse converts User to UserResponse
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		Username: u.Username,
		Role:     u.Role,
		ImageURL: u.ImageURL,
	}
}

// ToSession copies the public fields into a Session
func (u *User) ToSession() Session {
	return Session{
		UserID:   u.ID,
		Name:     u.Name,
		Email:    u.Email,
		Username: u.Username,
		Role:     u.Role,
		ImageURL: u.ImageURL,
	}
}

package models

type Session struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Token    string `json:"-"`
	Role     string `json:"role"`
}

// Profile is the part of a session persisted under the user storage key.
type Profile struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

func (s *Session) Profile() Profile {
	return Profile{ID: s.ID, Email: s.Email, FullName: s.FullName, Role: s.Role}
}

func SessionFromProfile(p Profile, token string) *Session {
	return &Session{ID: p.ID, Email: p.Email, FullName: p.FullName, Role: p.Role, Token: token}
}

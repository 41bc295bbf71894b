package domain

// Mode selects which authentication endpoint a credentials submission targets.
type Mode int

const (
	ModeLogin Mode = iota
	ModeRegister
)

func (m Mode) String() string {
	if m == ModeRegister {
		return "register"
	}
	return "login"
}

// Toggle returns the other mode.
func (m Mode) Toggle() Mode {
	if m == ModeRegister {
		return ModeLogin
	}
	return ModeRegister
}

// Credentials is the payload for both login and register.
// Name is only meaningful when registering.
type Credentials struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Complete reports whether every field required by mode is non-empty.
func (c Credentials) Complete(mode Mode) bool {
	return c.MissingField(mode) == ""
}

// MissingField returns the JSON name of the first required field that is
// empty, or "" when the credentials can be submitted.
func (c Credentials) MissingField(mode Mode) string {
	switch {
	case mode == ModeRegister && c.Name == "":
		return "name"
	case c.Email == "":
		return "email"
	case c.Password == "":
		return "password"
	}
	return ""
}

// ForMode returns a copy suitable for sending in mode. Login never carries a name.
func (c Credentials) ForMode(mode Mode) Credentials {
	if mode == ModeLogin {
		c.Name = ""
	}
	return c
}

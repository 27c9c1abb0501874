package auth

import "encoding/json"

// User is the profile returned by the service at login. Fields the client
// does not model are kept in Extra so a save/load cycle never drops them.
type User struct {
	Email    string
	FullName string
	Extra    map[string]json.RawMessage
}

// Session pairs the bearer token with the user it was issued to. A session
// missing either half is never persisted or trusted.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Valid reports whether the session satisfies the all-or-nothing invariant.
func (s Session) Valid() bool {
	return s.Token != "" && s.User.Email != ""
}

func (u User) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(u.Extra)+2)
	for k, v := range u.Extra {
		out[k] = v
	}
	email, err := json.Marshal(u.Email)
	if err != nil {
		return nil, err
	}
	out["email"] = email
	if u.FullName != "" {
		name, err := json.Marshal(u.FullName)
		if err != nil {
			return nil, err
		}
		out["full_name"] = name
	}
	return json.Marshal(out)
}

func (u *User) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if v, ok := raw["email"]; ok {
		if err := json.Unmarshal(v, &u.Email); err != nil {
			return err
		}
		delete(raw, "email")
	}
	if v, ok := raw["full_name"]; ok {
		if err := json.Unmarshal(v, &u.FullName); err != nil {
			return err
		}
		delete(raw, "full_name")
	}
	if len(raw) > 0 {
		u.Extra = raw
	}
	return nil
}

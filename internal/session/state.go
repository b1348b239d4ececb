// Package session persists the authenticated browser state between
// invocations and serialises access to it.
package session

// Cookie is a browser cookie in storage-state form.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	SameSite string  `json:"sameSite,omitempty"`
}

// StorageItem is one localStorage key/value pair.
type StorageItem struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Origin holds the localStorage contents of one origin.
type Origin struct {
	Origin       string        `json:"origin"`
	LocalStorage []StorageItem `json:"localStorage"`
}

// State is the opaque authenticated state: cookies plus per-origin storage.
type State struct {
	Cookies []Cookie `json:"cookies"`
	Origins []Origin `json:"origins"`
}

// Empty reports whether the state carries nothing worth persisting.
func (s *State) Empty() bool {
	return s == nil || (len(s.Cookies) == 0 && len(s.Origins) == 0)
}

// Package doctors serves the public doctor directory backing the booking
// flow's doctor list and profile pages.
package doctors

import "errors"

// ErrNotFound reports an unknown doctor id.
var ErrNotFound = errors.New("doctors: not found")

// Doctor is one directory entry.
type Doctor struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Specialty string `json:"specialty"`
	Bio       string `json:"bio,omitempty"`
	PhotoURL  string `json:"photo_url,omitempty"`
}

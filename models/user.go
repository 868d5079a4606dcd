package models

import "time"

// User is a registered account. The password hash never leaves the
// repository layer, so it is not part of this struct.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

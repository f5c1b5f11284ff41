package domain

import "time"

// AdminUser holds the back-office credential. The password is stored and
// compared in plain text, which is fine for the demo seed data only; a real
// deployment must replace this with a salted hash before exposure.
type AdminUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

package domain

import "time"

// ContactMessage is a message left through the public contact form.
type ContactMessage struct {
	Name      string
	Email     string
	Phone     string
	Address   string
	Website   string
	Message   string
	EntryDate time.Time
}

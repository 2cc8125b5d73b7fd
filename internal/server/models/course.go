package models

import "github.com/dmitrijs2005/keywarden/internal/crypt"

// Course is the first record category protected by the key-wrapping
// protocol. Its name field is stored encrypted under the owner's "course"
// local token.
type Course struct {
	ID     int64
	UserID int64
	Name   crypt.EncryptedString
}

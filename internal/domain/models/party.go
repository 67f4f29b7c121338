package models

import (
	"strings"
	"time"
)

// Customer is a buyer of bikes. Email is unique across customers.
type Customer struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name" binding:"required,max=100"`
	Email     string    `json:"email" bson:"email" binding:"required,email"`
	Phone     string    `json:"phone" bson:"phone" binding:"max=15"`
	Address   string    `json:"address" bson:"address"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Normalize trims fields and lower-cases the email.
func (c *Customer) Normalize() {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	c.Phone = strings.TrimSpace(c.Phone)
	c.Address = strings.TrimSpace(c.Address)
}

func (c Customer) Validate() error {
	return checkFields(c)
}

// Matches reports whether the search term appears in name, email or phone.
func (c Customer) Matches(search string) bool {
	if search == "" {
		return true
	}
	needle := strings.ToLower(search)
	return strings.Contains(strings.ToLower(c.Name), needle) ||
		strings.Contains(strings.ToLower(c.Email), needle) ||
		strings.Contains(strings.ToLower(c.Phone), needle)
}

// Supplier provides bikes to the store.
type Supplier struct {
	ID            string    `json:"id" bson:"_id"`
	Name          string    `json:"name" bson:"name" binding:"required,max=100"`
	ContactPerson string    `json:"contact_person" bson:"contact_person" binding:"required,max=100"`
	Email         string    `json:"email" bson:"email" binding:"required,email"`
	Phone         string    `json:"phone" bson:"phone" binding:"max=15"`
	Address       string    `json:"address" bson:"address"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" bson:"updated_at"`
}

func (s *Supplier) Normalize() {
	s.Name = strings.TrimSpace(s.Name)
	s.ContactPerson = strings.TrimSpace(s.ContactPerson)
	s.Email = strings.ToLower(strings.TrimSpace(s.Email))
	s.Phone = strings.TrimSpace(s.Phone)
	s.Address = strings.TrimSpace(s.Address)
}

func (s Supplier) Validate() error {
	return checkFields(s)
}

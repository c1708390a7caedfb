package mentor

import "time"

type Mentor struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	BaseRate  float64   `json:"baseRate"`
	Teams     []string  `json:"teams"`
	PhotoURL  string    `json:"photoURL"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Input is the writable subset of a mentor.
type Input struct {
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	BaseRate float64  `json:"baseRate"`
	Teams    []string `json:"teams"`
	PhotoURL string   `json:"photoURL"`
}

package domain

import "time"

type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Picture   string    `json:"picture,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Food struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	CategoryID string    `json:"category_id"`
	UserID     string    `json:"user_id,omitempty"`
	Photo      string    `json:"photo,omitempty"`
	Details    string    `json:"details"`
	Category   *Category `json:"category,omitempty"`
	User       *User     `json:"user,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

const (
	AvailabilityAvailable = "Available"
	AvailabilitySoldOut   = "Sold Out"
)

// AvailabilityStatus refleja el interruptor global de disponibilidad del menú.
type AvailabilityStatus struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
}

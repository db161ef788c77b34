package model

import "time"

const (
	CategoryTennis     = "tennis"
	CategoryBasketball = "basketball"
	CategoryVolleyball = "volleyball"
)

// Court is a catalog descriptor owned by the surrounding application. The
// booking engine only reads it: existence and the active flag gate new
// reservations, category drives availability filtering.
type Court struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name      string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Category  string    `json:"category" bson:"category" validate:"required,oneof=tennis basketball volleyball"`
	Active    bool      `json:"active" bson:"active"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

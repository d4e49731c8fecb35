package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ImageSlots is the fixed number of image positions a product owns.
const ImageSlots = 5

// ImageList holds the stored filename for each slot; an empty string
// marks a free slot. It is persisted as a JSONB array.
type ImageList [ImageSlots]string

// Value implements driver.Valuer for JSONB storage.
func (l ImageList) Value() (driver.Value, error) {
	return json.Marshal(l)
}

// Scan implements sql.Scanner for JSONB storage.
func (l *ImageList) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	case nil:
		*l = ImageList{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into ImageList", src)
	}
}

// Occupied reports whether the slot at index holds an image reference.
func (l ImageList) Occupied(index int) bool {
	return index >= 0 && index < ImageSlots && l[index] != ""
}

// Category represents a product classification
type Category struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Status    bool      `json:"status" db:"status"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Product represents a product in the catalog. Category is the name of
// an existing Category; Status mirrors that category's status.
type Product struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Price       float64   `json:"price" db:"price"`
	Quantity    int       `json:"quantity" db:"quantity"`
	Category    string    `json:"category" db:"category"`
	Description string    `json:"description" db:"description"`
	Rating      int       `json:"rating" db:"rating"`
	Status      bool      `json:"status" db:"status"`
	Images      ImageList `json:"images" db:"images"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

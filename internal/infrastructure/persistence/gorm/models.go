// Package gorm provides GORM model definitions for the application
package gorm

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DishModel represents the GORM model for catalog dishes
type DishModel struct {
	ID       string `gorm:"type:varchar(128);primaryKey"`
	Position int    `gorm:"not null;index"`
	Name     string `gorm:"type:varchar(255);not null;index"`

	// Timing (stored in minutes)
	PrepTimeMinutes int `gorm:"column:prep_time_minutes;default:0"`
	CookTimeMinutes int `gorm:"column:cook_time_minutes;default:0"`

	Calories   int         `gorm:"default:0"`
	Protein    float64     `gorm:"default:0"`
	Difficulty string      `gorm:"type:varchar(20);index"`
	Badges     StringSlice `gorm:"type:json"`

	// Ingredient slots in dish order, substitutions nested per slot
	Ingredients IngredientList `gorm:"type:json"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// SessionModel represents the GORM model for selection sessions
type SessionModel struct {
	ID        uuid.UUID     `gorm:"type:char(36);primaryKey"`
	Snapshot  SnapshotField `gorm:"type:json"`
	Revision  uint64        `gorm:"default:0"`
	ExpiresAt *time.Time    `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IngredientRecord is the stored form of one ingredient slot
type IngredientRecord struct {
	Name          string               `json:"name"`
	Quantity      string               `json:"quantity"`
	Nutrition     NutritionRecord      `json:"nutrition"`
	Substitutions []SubstitutionRecord `json:"substitutions,omitempty"`
}

// SubstitutionRecord is the stored form of a substitution
type SubstitutionRecord struct {
	Name      string          `json:"name"`
	Quantity  string          `json:"quantity"`
	Nutrition NutritionRecord `json:"nutrition"`
}

// NutritionRecord is the stored form of nutrition facts
type NutritionRecord struct {
	Calories int     `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// StringSlice custom type for handling string slices in JSON
type StringSlice []string

// Scan implements the sql.Scanner interface
func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = StringSlice{}
		return nil
	}
	return scanJSON(value, s, "StringSlice")
}

// Value implements the driver.Valuer interface
func (s StringSlice) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	return marshalJSON(s)
}

// IngredientList custom type for the ingredient JSON column
type IngredientList []IngredientRecord

// Scan implements the sql.Scanner interface
func (l *IngredientList) Scan(value interface{}) error {
	if value == nil {
		*l = IngredientList{}
		return nil
	}
	return scanJSON(value, l, "IngredientList")
}

// Value implements the driver.Valuer interface
func (l IngredientList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	return marshalJSON(l)
}

// SnapshotField custom type for the selection snapshot JSON column
type SnapshotField struct {
	Selected []string             `json:"selected"`
	Slots    []SnapshotSlotRecord `json:"slots,omitempty"`
}

// SnapshotSlotRecord is the stored form of one active ingredient slot
type SnapshotSlotRecord struct {
	DishID        string `json:"dish_id"`
	Ingredient    int    `json:"ingredient"`
	Original      bool   `json:"original,omitempty"`
	Substitutions []int  `json:"substitutions,omitempty"`
}

// Scan implements the sql.Scanner interface
func (f *SnapshotField) Scan(value interface{}) error {
	if value == nil {
		*f = SnapshotField{}
		return nil
	}
	return scanJSON(value, f, "SnapshotField")
}

// Value implements the driver.Valuer interface
func (f SnapshotField) Value() (driver.Value, error) {
	return marshalJSON(f)
}

func scanJSON(value interface{}, target interface{}, name string) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, target)
	case string:
		return json.Unmarshal([]byte(v), target)
	default:
		return fmt.Errorf("cannot scan %T into %s", value, name)
	}
}

func marshalJSON(v interface{}) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// BeforeCreate hook for SessionModel
func (s *SessionModel) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (DishModel) TableName() string {
	return "dishes"
}

func (SessionModel) TableName() string {
	return "selection_sessions"
}

// Models lists every model for AutoMigrate
func Models() []interface{} {
	return []interface{}{&DishModel{}, &SessionModel{}}
}

package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Ingredient is read-mostly reference data populated by bulk import.
type Ingredient struct {
	ID              uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	Name            string    `gorm:"size:100;not null;uniqueIndex:idx_ingredient_name_unit" json:"name" validate:"required,max=100"`
	MeasurementUnit string    `gorm:"size:10;not null;uniqueIndex:idx_ingredient_name_unit" json:"measurement_unit" validate:"required,max=10"`
}

func (i *Ingredient) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// Tag is a recipe category. Name, colour and slug are each unique.
type Tag struct {
	ID    uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	Name  string    `gorm:"size:20;not null;uniqueIndex" json:"name" validate:"required,max=20"`
	Color string    `gorm:"size:7;not null;uniqueIndex" json:"color" validate:"required,hexrgb"`
	Slug  string    `gorm:"size:50;not null;uniqueIndex" json:"slug" validate:"required,max=50"`
}

func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

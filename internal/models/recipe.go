package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Amount bounds of a recipe ingredient. The column is a smallint.
const (
	MinAmount = 1
	MaxAmount = 32766
)

type Recipe struct {
	ID          uuid.UUID          `gorm:"type:varchar(36);primarykey" json:"id"`
	AuthorID    uuid.UUID          `gorm:"type:varchar(36);not null;index" json:"author_id"`
	Author      *User              `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author,omitempty"`
	Name        string             `gorm:"size:200;not null" json:"name"`
	Image       string             `gorm:"size:255;not null" json:"image"`
	Text        string             `gorm:"size:2000;not null" json:"text"`
	CookingTime int                `gorm:"type:smallint;not null;check:cooking_time >= 1" json:"cooking_time"`
	PubDate     time.Time          `gorm:"autoCreateTime;index" json:"pub_date"`
	Ingredients []RecipeIngredient `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"ingredients,omitempty"`
	Tags        []Tag              `gorm:"many2many:recipe_tags" json:"tags,omitempty"`
}

func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// RecipeIngredient is the quantity of one ingredient inside one recipe.
// The composite primary key keeps (recipe, ingredient) unique.
type RecipeIngredient struct {
	RecipeID     uuid.UUID   `gorm:"type:varchar(36);primaryKey" json:"-"`
	IngredientID uuid.UUID   `gorm:"type:varchar(36);primaryKey" json:"ingredient_id"`
	Ingredient   *Ingredient `gorm:"foreignKey:IngredientID" json:"ingredient,omitempty"`
	Amount       int         `gorm:"type:smallint;not null;check:amount >= 1 AND amount <= 32766" json:"amount"`
}

func (RecipeIngredient) TableName() string {
	return "recipe_ingredients"
}

// RecipeTag is the join row between a recipe and a tag.
type RecipeTag struct {
	RecipeID uuid.UUID `gorm:"type:varchar(36);primaryKey"`
	TagID    uuid.UUID `gorm:"type:varchar(36);primaryKey"`
}

func (RecipeTag) TableName() string {
	return "recipe_tags"
}

package model

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Item is a second-hand good listed on the marketplace.
type Item struct {
	ObjectID    primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	ID          string             `json:"id" bson:"id"`
	Name        string             `json:"name" bson:"name"`
	Category    string             `json:"category" bson:"category"`
	Condition   string             `json:"condition" bson:"condition"`
	PostedBy    string             `json:"posted_by" bson:"posted_by"`
	Zipcode     string             `json:"zipcode" bson:"zipcode"`
	DateAdded   int64              `json:"date_added" bson:"date_added"`
	AgeDays     int                `json:"age_days" bson:"age_days"`
	AgeYears    float64            `json:"age_years" bson:"age_years"`
	Description string             `json:"description" bson:"description"`
	Image       string             `json:"image,omitempty" bson:"image,omitempty"`
	Comments    []Comment          `json:"comments,omitempty" bson:"comments,omitempty"`
	UpdatedAt   *time.Time         `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
}

// Comment is a buyer remark attached to an item.
type Comment struct {
	Author    string `json:"author" bson:"author"`
	Comment   string `json:"comment" bson:"comment"`
	Sentiment string `json:"sentiment,omitempty" bson:"sentiment,omitempty"`
}

// AgeYearsFromDays converts an age in days to years rounded to one decimal.
func AgeYearsFromDays(days int) float64 {
	return math.Round(float64(days)/365*10) / 10
}

// ItemFilter narrows a search. Empty fields are ignored.
type ItemFilter struct {
	Name        string
	Category    string
	Condition   string
	MaxAgeYears *int
}

// ItemUpdate lists the fields an item update may change.
type ItemUpdate struct {
	Category    string
	Condition   string
	AgeDays     int
	Description string
}

package domain

import "time"

// Tour is a bookable trip. Slug derives from the title and is recomputed on
// every title change.
type Tour struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Slug       string    `json:"slug"`
	Days       int       `json:"days"`
	Price      float64   `json:"price"`
	Places     []string  `json:"places"`
	Inclusions []string  `json:"inclusions"`
	Optional   []string  `json:"optional,omitempty"`
	ImgLink    string    `json:"imglink"`
	Page       *TourPage `json:"page,omitempty"`
	GuideID    *int64    `json:"guide_id,omitempty"`
	Guide      *User     `json:"guide,omitempty"`
	Reviews    []Review  `json:"reviews,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// TourPage is the detail-page itinerary structure, stored as one document.
type TourPage struct {
	Title        string          `json:"title"`
	ImgLinks     []string        `json:"imgLinks,omitempty"`
	Places       []string        `json:"places"`
	Customisable string          `json:"customisable,omitempty"`
	Itinerary    []ItineraryDay  `json:"tourItinerary,omitempty"`
	Details      *ItineraryNotes `json:"details,omitempty"`
}

type ItineraryDay struct {
	Day      string   `json:"day"`
	DayImg   string   `json:"day_img,omitempty"`
	Schedule []string `json:"schedule"`
}

type ItineraryNotes struct {
	OtherInclusions []string `json:"otherInclusions,omitempty"`
	Exclusions      []string `json:"exclusions,omitempty"`
}

type CreateTourRequest struct {
	Title      string    `json:"title" validate:"required,min=10,max=100"`
	Days       int       `json:"days" validate:"required,min=1"`
	Price      float64   `json:"price" validate:"required,gt=1000"`
	Places     []string  `json:"places" validate:"required,min=1"`
	Inclusions []string  `json:"inclusions" validate:"required,min=1"`
	Optional   []string  `json:"optional"`
	ImgLink    string    `json:"imglink" validate:"required"`
	Page       *TourPage `json:"page"`
	GuideID    *int64    `json:"guide_id"`
}

type UpdateTourRequest struct {
	Title      *string   `json:"title" validate:"omitempty,min=10,max=100"`
	Days       *int      `json:"days" validate:"omitempty,min=1"`
	Price      *float64  `json:"price" validate:"omitempty,gt=1000"`
	Places     *[]string `json:"places" validate:"omitempty,min=1"`
	Inclusions *[]string `json:"inclusions" validate:"omitempty,min=1"`
	Optional   *[]string `json:"optional"`
	ImgLink    *string   `json:"imglink"`
	Page       *TourPage `json:"page"`
	GuideID    *int64    `json:"guide_id"`
}

// TourStats is one row of the price aggregation, grouped by trip length.
type TourStats struct {
	Days         int     `json:"days"`
	Tours        int     `json:"tours"`
	AveragePrice float64 `json:"averagePrice"`
	MinPrice     float64 `json:"minPrice"`
	MaxPrice     float64 `json:"maxPrice"`
}

package types

import "time"

type SubmitRatingRequest struct {
	MovieID       int64   `json:"movieId" binding:"required,gt=0"`
	RatingValue   float64 `json:"ratingValue" binding:"gte=0,lte=5"`
	RatingComment string  `json:"ratingComment"`
}

type RatingVO struct {
	RatingID      int64     `json:"ratingId"`
	UserID        int64     `json:"userId"`
	MovieID       int64     `json:"movieId"`
	MovieTitle    string    `json:"movieTitle"`
	PosterURL     string    `json:"posterUrl"`
	RatingValue   float64   `json:"ratingValue"`
	RatingComment string    `json:"ratingComment"`
	AvgRating     float64   `json:"avgRating"`
	RatingCount   int64     `json:"ratingCount"`
	CreateTime    time.Time `json:"createTime"`
}

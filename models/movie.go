package models

import (
	"time"

	"gorm.io/datatypes"
)

// Movie 电影表，avg_rating / rating_count 只通过乐观锁更新
type Movie struct {
	MovieID     int64          `gorm:"column:movie_id;primaryKey;autoIncrement" json:"movieId"`
	Title       string         `gorm:"column:title;size:100;not null;index:idx_movie_title" json:"title"`
	Duration    int            `gorm:"column:duration;not null;default:0" json:"duration"`
	Intro       string         `gorm:"column:intro;type:text" json:"intro"`
	PosterURL   string         `gorm:"column:poster_url;size:512" json:"posterUrl"`
	ReleaseDate datatypes.Date `gorm:"column:release_date" json:"releaseDate"`
	AvgRating   float64        `gorm:"column:avg_rating;type:decimal(3,2);not null;default:0" json:"avgRating"`
	RatingCount int64          `gorm:"column:rating_count;not null;default:0" json:"ratingCount"`
	IsDeleted   int8           `gorm:"column:is_deleted;not null;default:0;index:idx_movie_deleted" json:"-"`
	Timestamps
}

func (Movie) TableName() string { return "movies" }

func (m *Movie) ReleaseTime() time.Time {
	return time.Time(m.ReleaseDate)
}

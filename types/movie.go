package types

import "time"

type MovieSearchQuery struct {
	Keyword     string `form:"keyword"`
	MinDuration int    `form:"minDuration"`
	MaxDuration int    `form:"maxDuration"`
	ReleaseYear int    `form:"releaseYear"`
	SortType    int    `form:"sortType"`
	Page        int    `form:"page"`
	Size        int    `form:"size"`
}

type MovieSaveRequest struct {
	Title       string `json:"title" binding:"required,max=100"`
	Duration    int    `json:"duration" binding:"gte=0"`
	Intro       string `json:"intro" binding:"max=2000"`
	PosterURL   string `json:"posterUrl"`
	ReleaseDate string `json:"releaseDate"` // 2006-01-02
}

type MovieVO struct {
	MovieID     int64     `json:"movieId"`
	Title       string    `json:"title"`
	Duration    int       `json:"duration"`
	Intro       string    `json:"intro"`
	PosterURL   string    `json:"posterUrl"`
	ReleaseDate string    `json:"releaseDate"`
	AvgRating   float64   `json:"avgRating"`
	RatingCount int64     `json:"ratingCount"`
	CreateTime  time.Time `json:"createTime"`
}

// MovieDetailVO 详情带评分分布
type MovieDetailVO struct {
	MovieVO
	RatingDistribution []int64 `json:"ratingDistribution"`
	RelationType       int     `json:"relationType"`
	MyRating           float64 `json:"myRating,omitempty"`
}

// MovieBrief 列表里引用电影时使用
type MovieBrief struct {
	MovieID   int64  `json:"movieId"`
	Title     string `json:"title"`
	PosterURL string `json:"posterUrl"`
}

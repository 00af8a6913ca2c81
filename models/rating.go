package models

// Rating 评分，每个用户对每部电影只能评一次
type Rating struct {
	RatingID      int64   `gorm:"column:rating_id;primaryKey;autoIncrement" json:"ratingId"`
	UserID        int64   `gorm:"column:user_id;not null;uniqueIndex:uk_rating_user_movie,priority:1" json:"userId"`
	MovieID       int64   `gorm:"column:movie_id;not null;uniqueIndex:uk_rating_user_movie,priority:2;index:idx_rating_movie" json:"movieId"`
	RatingValue   float64 `gorm:"column:rating_value;type:decimal(2,1);not null" json:"ratingValue"`
	RatingComment string  `gorm:"column:rating_comment;size:500" json:"ratingComment"`
	Timestamps
}

func (Rating) TableName() string { return "ratings" }

// UserMovieRelation 想看/看过，不保留历史
type UserMovieRelation struct {
	ID           int64 `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID       int64 `gorm:"column:user_id;not null;uniqueIndex:uk_relation_user_movie,priority:1" json:"userId"`
	MovieID      int64 `gorm:"column:movie_id;not null;uniqueIndex:uk_relation_user_movie,priority:2" json:"movieId"`
	RelationType int   `gorm:"column:relation_type;not null" json:"relationType"`
	Timestamps
}

func (UserMovieRelation) TableName() string { return "user_movie_relations" }

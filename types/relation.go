package types

import "time"

type MarkRelationRequest struct {
	MovieID      int64 `json:"movieId" binding:"required,gt=0"`
	RelationType int   `json:"relationType" binding:"required,oneof=1 2"`
}

type RelationVO struct {
	MovieID      int64     `json:"movieId"`
	Title        string    `json:"title"`
	PosterURL    string    `json:"posterUrl"`
	RelationType int       `json:"relationType"`
	UpdateTime   time.Time `json:"updateTime"`
}

type RelationStatsVO struct {
	WantToWatch int64 `json:"wantToWatch"`
	Watched     int64 `json:"watched"`
}

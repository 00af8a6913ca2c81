package models

// All 参与自动迁移的模型
func All() []any {
	return []any{
		&User{},
		&Movie{},
		&Rating{},
		&UserMovieRelation{},
		&Post{},
		&PostImage{},
		&PostTag{},
		&PostLike{},
		&Collection{},
		&Comment{},
		&CommentImage{},
		&Tag{},
		&Notification{},
		&AiRecord{},
	}
}

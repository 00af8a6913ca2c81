//go:build wireinject

package dao

import (
	"github.com/google/wire"
)

var ProviderSet = wire.NewSet(
	NewTxManager,
	NewUserDAO,
	NewMovieDAO,
	NewRatingDAO,
	NewRelationDAO,
	NewPostDAO,
	NewPostImageDAO,
	NewPostTagDAO,
	NewPostLikeDAO,
	NewCollectionDAO,
	NewCommentDAO,
	NewCommentImageDAO,
	NewTagDAO,
	NewNotificationDAO,
	NewAiRecordDAO,
)

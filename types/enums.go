package types

const (
	RoleUser  = 1
	RoleAdmin = 2
)

// 帖子类型
const (
	PostTypeNormal          = 1 // 普通帖（无剧透）
	PostTypeDeepSpoiler     = 2 // 深度讨论帖（有剧透）
	PostTypeCreative        = 3 // 二创帖（无剧透）
	PostTypeCreativeSpoiler = 4 // 二创帖（有剧透）
)

var postTypeDesc = map[int]string{
	PostTypeNormal:          "普通帖（无剧透）",
	PostTypeDeepSpoiler:     "深度讨论帖（有剧透）",
	PostTypeCreative:        "二创帖（无剧透）",
	PostTypeCreativeSpoiler: "二创帖（有剧透）",
}

func PostTypeDesc(t int) string { return postTypeDesc[t] }

func ValidPostType(t int) bool {
	_, ok := postTypeDesc[t]
	return ok
}

func IsSpoilerPostType(t int) bool {
	return t == PostTypeDeepSpoiler || t == PostTypeCreativeSpoiler
}

func IsCreativePostType(t int) bool {
	return t == PostTypeCreative || t == PostTypeCreativeSpoiler
}

// 剧透筛选
const (
	SpoilerTypeNone    = 1
	SpoilerTypeSpoiler = 2
)

// 内容形式
const (
	ContentFormTextImage = 1
	ContentFormVideo     = 2
)

// 用户与电影关系
const (
	RelationWantToWatch = 1
	RelationWatched     = 2
)

// 通知类型
const (
	NotificationComment = 1
	NotificationLike    = 2
	NotificationSystem  = 3
)

// 通知关联对象
const (
	RelatedPost    = 1
	RelatedComment = 2
	RelatedUser    = 3
	RelatedMovie   = 4
)

// 搜索排序
const (
	SortByReleaseDate = 1
	SortByRating      = 2
)

package types

// Actor 请求调用者，匿名时 UserID 为 0
type Actor struct {
	UserID int64
	Role   int
}

func (a Actor) IsAnonymous() bool { return a.UserID == 0 }

func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

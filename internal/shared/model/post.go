package model

// Post 帖子记录
//
// UserID 引用 User.ID，但不做引用完整性检查（与上游行为一致）。
// 当前范围内帖子是只读数据，没有写操作。
type Post struct {
	ID     int    `json:"id" db:"id"`
	Title  string `json:"title" db:"title"`
	Body   string `json:"body" db:"body"`
	UserID int    `json:"userId" db:"user_id"`
}

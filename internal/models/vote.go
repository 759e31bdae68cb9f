package models

// Updoot records one user's current vote on one post. Value is -1, 0 or 1;
// a zero row means the vote was retracted and is distinct from no row.
type Updoot struct {
	UserID int64 `gorm:"primaryKey;autoIncrement:false;column:user_id"`
	PostID int64 `gorm:"primaryKey;autoIncrement:false;column:post_id"`
	Value  int16 `gorm:"type:smallint;not null;column:value"`

	User *User `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
	Post *Post `gorm:"foreignKey:PostID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for Updoot
func (Updoot) TableName() string {
	return "updoots"
}

// ReplyVote records one user's current vote on one reply
type ReplyVote struct {
	UserID  int64 `gorm:"primaryKey;autoIncrement:false;column:user_id"`
	ReplyID int64 `gorm:"primaryKey;autoIncrement:false;column:reply_id"`
	Value   int16 `gorm:"type:smallint;not null;column:value"`

	User  *User  `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
	Reply *Reply `gorm:"foreignKey:ReplyID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for ReplyVote
func (ReplyVote) TableName() string {
	return "reply_votes"
}

package models

import "time"

// Follow is a directional edge meaning the follower sees the followed user's
// posts in their feed. The composite unique index makes duplicate edges
// impossible regardless of request interleaving.
type Follow struct {
	ID         uint      `gorm:"primaryKey"`
	FollowerID uint      `gorm:"not null;uniqueIndex:idx_follow_pair;index"`
	FollowedID uint      `gorm:"not null;uniqueIndex:idx_follow_pair;index"`
	CreatedAt  time.Time ``

	Follower User `gorm:"foreignKey:FollowerID"`
	Followed User `gorm:"foreignKey:FollowedID"`
}

// TableName specifies the table name for GORM.
func (Follow) TableName() string {
	return "follows"
}

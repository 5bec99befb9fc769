package models

import "time"

// Follow is a directed edge: follower follows followed. The composite unique
// index keeps the pair duplicate-free under concurrent requests.
type Follow struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FollowerID uint      `gorm:"not null;index;index:idx_follow_pair,unique" json:"follower_id"`
	FollowedID uint      `gorm:"not null;index;index:idx_follow_pair,unique" json:"followed_id"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Follow) TableName() string { return "follows" }

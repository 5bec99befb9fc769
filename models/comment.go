package models

import (
	"time"

	"github.com/cppla/microblog/utils"
)

// Comment is a reply to a post. Body/BodyHTML follow the same derivation rule
// as Post.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"index;not null" json:"post_id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	BodyHTML  string    `gorm:"type:text;not null" json:"body_html"`
	CreatedAt time.Time `json:"created_at"`
	User      User      `json:"author"`
}

// SetBody stores the raw markdown and recomputes the sanitized HTML rendering.
func (c *Comment) SetBody(raw string) {
	c.Body = raw
	c.BodyHTML = utils.RenderMarkdown(raw)
}

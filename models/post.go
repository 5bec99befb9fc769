package models

import (
	"time"

	"github.com/cppla/microblog/utils"
)

// Post is a markdown-authored entry. BodyHTML is derived from Body on every
// write through SetBody and is never assigned independently.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	BodyHTML  string    `gorm:"type:text;not null" json:"body_html"`
	Repost    bool      `gorm:"not null;default:false" json:"repost"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	User      User      `json:"author"`
	Comments  []Comment `json:"-"`
}

// SetBody stores the raw markdown and recomputes the sanitized HTML rendering.
// Every code path that changes the body must go through here.
func (p *Post) SetBody(raw string) {
	p.Body = raw
	p.BodyHTML = utils.RenderMarkdown(raw)
}

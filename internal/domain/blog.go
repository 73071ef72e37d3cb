package domain

import (
	"strings"
	"time"
)

const (
	// CommentAuthorSelf labels comments written by the current visitor.
	CommentAuthorSelf = "You"
	// CommentDateJustNow is the display date of a freshly submitted comment.
	CommentDateJustNow = "Just now"
)

// LikeState is the like toggle of a blog view.
type LikeState struct {
	Liked bool `json:"liked"`
	Count int  `json:"count"`
}

// Toggle flips the liked flag and moves the counter by exactly one.
func (l LikeState) Toggle() LikeState {
	if l.Liked {
		return LikeState{Liked: false, Count: l.Count - 1}
	}
	return LikeState{Liked: true, Count: l.Count + 1}
}

// Comment is a single entry in a blog view's comment list.
type Comment struct {
	ID     int64  `json:"id"`
	Author string `json:"author"`
	Text   string `json:"text"`
	Date   string `json:"date"`
}

// CommentDraft holds the text of a comment that has not been submitted yet.
type CommentDraft struct {
	Text string `json:"text"`
}

// BlogView is the interactive state of one mounted blog-reading page.
// Transitions return a new value and never mutate the receiver.
type BlogView struct {
	ID       string       `json:"id"`
	Like     LikeState    `json:"like"`
	Comments []Comment    `json:"comments"`
	Draft    CommentDraft `json:"draft"`
}

// NewBlogView mounts a blog view with the seeded like count and comments.
func NewBlogView(id string, likeSeed int, seed []Comment) BlogView {
	return BlogView{
		ID:       id,
		Like:     LikeState{Count: likeSeed},
		Comments: append([]Comment(nil), seed...),
	}
}

// ToggleLike applies a single like/unlike.
func (v BlogView) ToggleLike() BlogView {
	v.Like = v.Like.Toggle()
	v.Comments = v.cloneComments()
	return v
}

// UpdateDraft replaces the draft verbatim.
func (v BlogView) UpdateDraft(text string) BlogView {
	v.Draft = CommentDraft{Text: text}
	v.Comments = v.cloneComments()
	return v
}

// SubmitComment appends text as a new comment and clears the draft.
// Whitespace-only text leaves the view untouched, draft included, and reports false.
func (v BlogView) SubmitComment(text string, now time.Time) (BlogView, bool) {
	trimmed := strings.TrimSpace(text)
	comments := v.cloneComments()
	if trimmed == "" {
		v.Comments = comments
		return v, false
	}

	v.Comments = append(comments, Comment{
		ID:     v.nextCommentID(now),
		Author: CommentAuthorSelf,
		Text:   trimmed,
		Date:   CommentDateJustNow,
	})
	v.Draft = CommentDraft{}
	return v, true
}

// nextCommentID derives an id from the clock, bumped past every existing id.
func (v BlogView) nextCommentID(now time.Time) int64 {
	id := now.UnixMilli()
	for _, c := range v.Comments {
		if c.ID >= id {
			id = c.ID + 1
		}
	}
	return id
}

func (v BlogView) cloneComments() []Comment {
	if v.Comments == nil {
		return nil
	}
	out := make([]Comment, len(v.Comments))
	copy(out, v.Comments)
	return out
}

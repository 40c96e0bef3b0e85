// Package forum defines the value types the search core exchanges with the
// rest of the application: post views read from the content store, search
// filters, and result pages. Fields use zero values to mean "absent" so that
// partially-populated input degrades to "no constraint" instead of failing.
package forum

import "time"

// PostType distinguishes questions from answers in the content store.
type PostType string

const (
	PostQuestion PostType = "question"
	PostAnswer   PostType = "answer"
)

// Answered is the tri-state answer-count constraint of a search.
type Answered int

const (
	AnsweredAny Answered = iota
	AnsweredOnly
	UnansweredOnly
)

// ParseAnswered maps the answered-status form value to its tri-state
// constraint. Anything other than the two known labels means no constraint.
func ParseAnswered(status string) Answered {
	switch status {
	case "Answered":
		return AnsweredOnly
	case "Unanswered":
		return UnansweredOnly
	default:
		return AnsweredAny
	}
}

// Filters holds the structural constraints of a search. A zero Category or
// Author applies no constraint.
type Filters struct {
	Category int64
	Answered Answered
	Author   int64
}

// Post is a read-only view of a content-store post joined with its category,
// annotated with a relevance score when produced by a ranked search.
type Post struct {
	ID           int64     `json:"id"`
	Type         PostType  `json:"type"`
	Title        string    `json:"title,omitempty"`
	Body         string    `json:"body"`
	CategoryID   int64     `json:"category_id,omitempty"`
	CategoryName string    `json:"category_name,omitempty"`
	AuthorID     int64     `json:"author_id"`
	AnswerCount  int       `json:"answer_count"`
	Upvotes      int       `json:"upvotes"`
	CreatedAt    time.Time `json:"created_at"`
	Score        float64   `json:"score,omitempty"`
}

// Category is a read-only view of a post category.
type Category struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Archived bool   `json:"archived"`
}

// ResultPage is one page of ranked search results plus pagination metadata.
// NextPage and PrevPage are zero when there is no such page.
type ResultPage struct {
	Results      []Post `json:"results"`
	TotalMatches int    `json:"total_matches"`
	OnThisPage   int    `json:"on_this_page"`
	Page         int    `json:"page"`
	NextPage     int    `json:"next_page,omitempty"`
	PrevPage     int    `json:"prev_page,omitempty"`
}

// EmptyPage returns the page rendered when a search matches nothing or the
// search store is unavailable. The two cases are indistinguishable to the
// caller.
func EmptyPage(page int) *ResultPage {
	if page < 1 {
		page = 1
	}
	p := &ResultPage{
		Results: []Post{},
		Page:    page,
	}
	if page > 1 {
		p.PrevPage = page - 1
	}
	return p
}

package domain

import (
	"time"
)

// Kind identifies the business vertical a review belongs to. Each kind maps
// to its own storage schema through the registry.
type Kind string

const (
	KindCommerce Kind = "commerce"
	KindAgro     Kind = "agro"
	KindServices Kind = "services"
	KindSession  Kind = "session"
	KindCourse   Kind = "course"
)

// Moderation statuses shared by every kind. A review is publicly visible
// only while approved.
const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusDismissed = "dismissed"
)

// ValidStatus reports whether s is one of the moderation statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusDismissed:
		return true
	}
	return false
}

// Abuse report reasons accepted by the report endpoint.
const (
	ReasonSpam      = "spam"
	ReasonOffensive = "offensive"
	ReasonFake      = "fake"
	ReasonOther     = "other"
)

// ValidReportReason reports whether r is an accepted abuse reason.
func ValidReportReason(r string) bool {
	switch r {
	case ReasonSpam, ReasonOffensive, ReasonFake, ReasonOther:
		return true
	}
	return false
}

// Review is a user review of a target entity in one vertical. The vertical
// columns (status, rating, target, owner response) live under different
// names per kind in storage; this struct is the normalized view.
type Review struct {
	ID               string     `json:"id"`
	Kind             Kind       `json:"kind"`
	TargetID         string     `json:"target_id"`
	AuthorID         string     `json:"author_id"`
	Rating           int        `json:"rating"`
	Title            string     `json:"title"`
	Body             string     `json:"body"`
	Status           string     `json:"status"`
	Sentiment        *string    `json:"sentiment,omitempty"`
	VerifiedPurchase bool       `json:"verified_purchase"`
	Photos           []string   `json:"photos,omitempty"`
	HelpfulCount     int        `json:"helpful_count"`
	NotHelpfulCount  int        `json:"not_helpful_count"`
	WilsonScore      float64    `json:"wilson_score"`
	ReportedCount    int        `json:"reported_count"`
	OwnerResponse    *string    `json:"owner_response,omitempty"`
	OwnerResponseAt  *time.Time `json:"owner_response_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// HasOwnerResponse reports whether the target owner has responded.
func (r *Review) HasOwnerResponse() bool {
	return r.OwnerResponse != nil && *r.OwnerResponse != ""
}

// Vote is one user's helpfulness vote on one review. A user holds at most
// one vote per review; a repeat identical vote replaces the prior value and
// leaves the counts untouched, re-voting the other way flips it.
type Vote struct {
	ReviewKind Kind      `json:"review_kind"`
	ReviewID   string    `json:"review_id"`
	UserID     string    `json:"user_id"`
	Helpful    bool      `json:"helpful"`
	VotedAt    time.Time `json:"voted_at"`
}

// VoteResult is the counter state returned to the voter after the ledger
// has been updated.
type VoteResult struct {
	ReviewID        string  `json:"review_id"`
	HelpfulCount    int     `json:"helpful_count"`
	NotHelpfulCount int     `json:"not_helpful_count"`
	WilsonScore     float64 `json:"wilson_score"`
	UserVote        bool    `json:"user_vote"`
	Action          string  `json:"action"` // recorded, changed, unchanged
}

// Vote ledger actions reported in VoteResult.
const (
	VoteActionRecorded  = "recorded"
	VoteActionChanged   = "changed"
	VoteActionUnchanged = "unchanged"
)

// AbuseReport flags a review for moderator attention. It never changes the
// review's moderation status by itself.
type AbuseReport struct {
	ID         string    `json:"id"`
	ReviewKind Kind      `json:"review_kind"`
	ReviewID   string    `json:"review_id"`
	ReporterID string    `json:"reporter_id"`
	Reason     string    `json:"reason"`
	Details    string    `json:"details,omitempty"`
	ReportedAt time.Time `json:"reported_at"`
}

// RatingStats is the aggregate over approved reviews of one target.
type RatingStats struct {
	Kind          Kind        `json:"kind"`
	TargetID      string      `json:"target_id"`
	AverageRating float64     `json:"average_rating"`
	TotalCount    int         `json:"total_count"`
	StarCounts    map[int]int `json:"star_counts"`
}

// TargetEntity is the reviewed entity (merchant, producer, provider,
// session, course). Owned entities carry the owner's user id.
type TargetEntity struct {
	ID          string  `json:"id"`
	Kind        Kind    `json:"kind"`
	OwnerUserID *string `json:"owner_user_id,omitempty"`
}

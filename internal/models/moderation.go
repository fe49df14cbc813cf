package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReportStatus string

const (
	ReportStatusPending   ReportStatus = "pending"
	ReportStatusReviewing ReportStatus = "reviewing"
	ReportStatusResolved  ReportStatus = "resolved"
	ReportStatusDismissed ReportStatus = "dismissed"
)

// Report is a user-filed complaint about a review, comment, or another user.
type Report struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`

	Reporter     primitive.ObjectID `bson:"reporter" json:"reporter"`
	ItemType     string             `bson:"item_type" json:"item_type"` // "review", "comment", "user"
	ReportedItem primitive.ObjectID `bson:"reported_item" json:"reported_item"`

	Reason      string       `bson:"reason" json:"reason"`
	Description string       `bson:"description,omitempty" json:"description,omitempty"`
	Status      ReportStatus `bson:"status" json:"status"`

	Resolution string              `bson:"resolution,omitempty" json:"resolution,omitempty"`
	ResolvedBy *primitive.ObjectID `bson:"resolved_by,omitempty" json:"resolved_by,omitempty"`
	ResolvedAt *time.Time          `bson:"resolved_at,omitempty" json:"resolved_at,omitempty"`
}

type WarningSeverity string

const (
	WarningSeverityLow    WarningSeverity = "low"
	WarningSeverityMedium WarningSeverity = "medium"
	WarningSeverityHigh   WarningSeverity = "high"
)

// Warning is issued to a user by a moderator.
type Warning struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`

	User     primitive.ObjectID `bson:"user" json:"user"`
	IssuedBy primitive.ObjectID `bson:"issued_by" json:"issued_by"`

	Reason      string          `bson:"reason" json:"reason"`
	Description string          `bson:"description,omitempty" json:"description,omitempty"`
	Severity    WarningSeverity `bson:"severity" json:"severity"`
	ExpiresAt   *time.Time      `bson:"expires_at,omitempty" json:"expires_at,omitempty"`
}

// ModerationSettings is a singleton document.
type ModerationSettings struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`

	AutoModeration   bool `bson:"auto_moderation" json:"auto_moderation"`
	ReviewsNeedLogin bool `bson:"reviews_need_login" json:"reviews_need_login"`
	MaxWarnings      int  `bson:"max_warnings" json:"max_warnings"`
	NotifyOnReport   bool `bson:"notify_on_report" json:"notify_on_report"`
}

// models/enums.go
package models

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var upper = cases.Upper(language.Und)

// normalizeEnum trims and upper-cases an inbound enum value ("like" -> "LIKE").
func normalizeEnum(raw string) string {
	return upper.String(strings.TrimSpace(raw))
}

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	TaskStatusActive    TaskStatus = "ACTIVE"
	TaskStatusPaused    TaskStatus = "PAUSED"
	TaskStatusCompleted TaskStatus = "COMPLETED"
	TaskStatusDeleted   TaskStatus = "DELETED"
)

// IsLive reports whether the task can still be deleted with a refund.
func (s TaskStatus) IsLive() bool {
	return s == TaskStatusActive || s == TaskStatusPaused
}

// IsTerminal reports whether no further transition is allowed.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusDeleted
}

// ActionKind is the type of engagement a task asks for.
type ActionKind string

const (
	ActionLike      ActionKind = "LIKE"
	ActionRepost    ActionKind = "REPOST"
	ActionComment   ActionKind = "COMMENT"
	ActionFollow    ActionKind = "FOLLOW"
	ActionSave      ActionKind = "SAVE"
	ActionUpvote    ActionKind = "UPVOTE"
	ActionShare     ActionKind = "SHARE"
	ActionClap      ActionKind = "CLAP"
	ActionSubscribe ActionKind = "SUBSCRIBE"
)

var actionKinds = map[ActionKind]struct{}{
	ActionLike: {}, ActionRepost: {}, ActionComment: {}, ActionFollow: {}, ActionSave: {},
	ActionUpvote: {}, ActionShare: {}, ActionClap: {}, ActionSubscribe: {},
}

// ParseActionKind accepts any casing and rejects unknown kinds.
func ParseActionKind(raw string) (ActionKind, error) {
	k := ActionKind(normalizeEnum(raw))
	if _, ok := actionKinds[k]; !ok {
		return "", ErrInvalidActionKind
	}
	return k, nil
}

// SocialNetwork is the external network a task's post lives on.
type SocialNetwork string

const (
	NetworkTwitter   SocialNetwork = "TWITTER"
	NetworkReddit    SocialNetwork = "REDDIT"
	NetworkInstagram SocialNetwork = "INSTAGRAM"
	NetworkYouTube   SocialNetwork = "YOUTUBE"
	NetworkTikTok    SocialNetwork = "TIKTOK"
	NetworkLinkedIn  SocialNetwork = "LINKEDIN"
	NetworkMedium    SocialNetwork = "MEDIUM"
	NetworkFacebook  SocialNetwork = "FACEBOOK"
	NetworkThreads   SocialNetwork = "THREADS"
	NetworkBluesky   SocialNetwork = "BLUESKY"
	NetworkGitHub    SocialNetwork = "GITHUB"
	NetworkProduct   SocialNetwork = "PRODUCTHUNT"
)

var socialNetworks = map[SocialNetwork]struct{}{
	NetworkTwitter: {}, NetworkReddit: {}, NetworkInstagram: {}, NetworkYouTube: {},
	NetworkTikTok: {}, NetworkLinkedIn: {}, NetworkMedium: {}, NetworkFacebook: {},
	NetworkThreads: {}, NetworkBluesky: {}, NetworkGitHub: {}, NetworkProduct: {},
}

func ParseSocialNetwork(raw string) (SocialNetwork, error) {
	n := SocialNetwork(normalizeEnum(raw))
	if _, ok := socialNetworks[n]; !ok {
		return "", ErrInvalidSocialNetwork
	}
	return n, nil
}

// DeletionReason explains why a task was deleted. DeletionNone is the
// explicit reason for an ordinary admin deletion; an empty reason is invalid.
type DeletionReason string

const (
	DeletionLinkUnavailable DeletionReason = "LINK_UNAVAILABLE"
	DeletionCommunityRules  DeletionReason = "COMMUNITY_RULES"
	DeletionUserRequest     DeletionReason = "USER_REQUEST"
	DeletionDoubleAccount   DeletionReason = "DOUBLE_ACCOUNT"
	DeletionAdmin24hClose   DeletionReason = "ADMIN_24H_CLOSE"
	DeletionAutoClose24h    DeletionReason = "AUTO_CLOSE_24H"
	DeletionNone            DeletionReason = "NONE"
)

var deletionReasons = map[DeletionReason]struct{}{
	DeletionLinkUnavailable: {}, DeletionCommunityRules: {}, DeletionUserRequest: {},
	DeletionDoubleAccount: {}, DeletionAdmin24hClose: {}, DeletionAutoClose24h: {},
	DeletionNone: {},
}

func ParseDeletionReason(raw string) (DeletionReason, error) {
	if strings.TrimSpace(raw) == "" {
		return "", ErrMissingDeletionReason
	}
	r := DeletionReason(normalizeEnum(raw))
	if _, ok := deletionReasons[r]; !ok {
		return "", ErrUnknownDeletionReason
	}
	return r, nil
}

// CompletionCounter names which task counter a completion advanced.
type CompletionCounter string

const (
	CounterMain  CompletionCounter = "MAIN"
	CounterBonus CompletionCounter = "BONUS"
)

// ReportReason is the cause given by a user reporting a task.
type ReportReason string

const (
	ReportLinkUnavailable ReportReason = "LINK_UNAVAILABLE"
)

// Package services defines the business logic for discovery, swipes,
// matches, blocks, messaging and reports. This file centralizes common
// service-level error values so that they can be consistently returned by
// service methods and checked by callers.
//
// Translation into user-facing messages or HTTP status codes is performed at
// the handler layer.
package services

import "errors"

// Profile-related errors.
var (
	// ErrUserNotFound indicates that the target user does not exist. A
	// blocked pair is reported the same way so the block stays invisible.
	ErrUserNotFound = errors.New("user not found")
)

// Swipe-related errors.
var (
	// ErrInvalidSwipeType is returned for a type outside like/pass/super_like.
	ErrInvalidSwipeType = errors.New("invalid swipe type")

	// ErrSelfSwipe is returned when the swiper targets themselves.
	ErrSelfSwipe = errors.New("cannot swipe on yourself")

	// ErrQuotaExceeded is returned once the daily swipe limit is used up.
	ErrQuotaExceeded = errors.New("daily swipe limit reached")
)

// Block-related errors.
var (
	ErrSelfBlock      = errors.New("cannot block yourself")
	ErrAlreadyBlocked = errors.New("user already blocked")
	ErrBlockNotFound  = errors.New("block not found")
)

// Match and messaging errors.
var (
	// ErrMatchNotFound indicates that the match does not exist.
	ErrMatchNotFound = errors.New("match not found")

	// ErrNotParticipant is returned when the caller is not one of the two
	// users of an existing match.
	ErrNotParticipant = errors.New("not a participant of this match")

	// ErrEmptyMessage is returned when a message is blank after trimming.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrMessageTooLong is returned when a message exceeds MaxMessageRunes.
	ErrMessageTooLong = errors.New("message too long")

	// ErrInvalidCursor is returned when the pagination cursor does not name a
	// message of the match.
	ErrInvalidCursor = errors.New("invalid cursor")
)

// Report and push-token errors.
var (
	ErrSelfReport      = errors.New("cannot report yourself")
	ErrInvalidReason   = errors.New("invalid report reason")
	ErrDetailsTooLong  = errors.New("report details too long")
	ErrInvalidPlatform = errors.New("platform must be android, ios or web")
	ErrEmptyToken      = errors.New("token is empty")
)

// ErrStorageTimeout is returned when a storage call exceeds its deadline.
// The operation is not retried.
var ErrStorageTimeout = errors.New("storage timeout")

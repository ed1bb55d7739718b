package source

import "errors"

var (
	ErrNotFound            = errors.New("snapshot file not found or unreadable")
	ErrTimeout             = errors.New("request timed out")
	ErrBlockedByProtection = errors.New("access blocked by bot protection; the website requires browser verification")
	ErrNetwork             = errors.New("network error")
)

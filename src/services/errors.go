package services

import "errors"

var (
	ErrParsingFailed  = errors.New("failed to parse activity file")
	ErrCaseNotFound   = errors.New("claim case not found")
	ErrNoCompany      = errors.New("claim case has no company")
	ErrAlreadyClaimed = errors.New("claim case already claimed")
)

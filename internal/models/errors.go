package models

import "errors"

// Custom errors
var (
	ErrCheckpointLoad = errors.New("failed to load checkpoint")
	ErrCheckpointSave = errors.New("failed to save checkpoint")
	ErrNoHitters      = errors.New("no active hitters found")
	ErrNotFound       = errors.New("record not found")
	ErrMissingDate    = errors.New("game entry has no date")
	ErrMissingStats   = errors.New("game entry has no stat block")
)

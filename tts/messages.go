package tts

import (
	"fmt"
	"time"
)

// StatusKind classifies the status line shown to the user.
type StatusKind int

const (
	// StatusInfo is an ordinary progress message.
	StatusInfo StatusKind = iota
	// StatusEmpty reports a page without narratable text. It is not a
	// failure.
	StatusEmpty
	// StatusError reports a failed extraction or utterance.
	StatusError
	// StatusUnavailable reports that no speech synthesis is available.
	StatusUnavailable
)

// String returns the string representation of the status kind.
func (k StatusKind) String() string {
	switch k {
	case StatusInfo:
		return "info"
	case StatusEmpty:
		return "empty"
	case StatusError:
		return "error"
	case StatusUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Status is a short user-facing message plus an optional second line.
type Status struct {
	Kind    StatusKind
	Message string
	Detail  string
	Err     error // Cause for empty, error and unavailable statuses
}

// Status messages shown by the reading surfaces.
const (
	msgReady       = "Ready."
	msgReading     = "Reading…"
	msgPaused      = "Paused."
	msgStopped     = "Stopped."
	msgFinished    = "Finished page."
	msgSpeechError = "Speech error."
	msgMuted       = "Muted."
	msgExtraction  = "Could not load page text."
	msgEmptyPage   = "This page appears to contain no extractable text. It may be a scanned image."
	msgUnavailable = "Speech synthesis is not available on this system."
)

func readyStatus(page int) Status {
	return Status{
		Kind:    StatusInfo,
		Message: msgReady,
		Detail:  fmt.Sprintf("Press Play to start reading page %d.", page),
	}
}

func readingStatus(muted bool) Status {
	if muted {
		return Status{Kind: StatusInfo, Message: msgReading, Detail: msgMuted}
	}
	return Status{Kind: StatusInfo, Message: msgReading}
}

func pausedStatus() Status {
	return Status{Kind: StatusInfo, Message: msgPaused}
}

func stoppedStatus() Status {
	return Status{
		Kind:    StatusInfo,
		Message: msgStopped,
		Detail:  "Press Play to start over on this page.",
	}
}

func finishedStatus() Status {
	return Status{
		Kind:    StatusInfo,
		Message: msgFinished,
		Detail:  "Use Next Page to continue, or press Play to repeat.",
	}
}

func emptyPageStatus() Status {
	return Status{
		Kind:    StatusEmpty,
		Message: msgEmptyPage,
		Detail:  "Use Next Page or Previous Page to keep reading.",
		Err:     ErrEmptyPage,
	}
}

func errorStatus(message string, err error) Status {
	s := Status{Kind: StatusError, Message: message, Err: err}
	if err != nil {
		s.Detail = err.Error()
	}
	return s
}

func unavailableStatus() Status {
	return Status{Kind: StatusUnavailable, Message: msgUnavailable, Err: ErrSynthesisUnavailable}
}

// Snapshot is a copy of the playback session published after every change.
type Snapshot struct {
	DocumentID string
	Page       int
	PageCount  int
	State      StateType
	Chunk      int    // Index of the chunk being spoken
	ChunkCount int    // Number of chunks on the page, 0 before the first dispatch
	ChunkText  string // Text of the chunk being spoken
	Voice      string
	Rate       float64
	Pitch      float64
	Volume     float64
	Muted      bool
	Reading    bool // Whether page navigation continues narration
	Available  bool
	Status     Status
	Updated    time.Time
}

package models

import (
	"fmt"
	"time"
)

// LogType classifies a discipline event.
type LogType string

const (
	LogTypeViolation    LogType = "violation"
	LogTypeAppreciation LogType = "appreciation"
)

// Magnitudes lists the point values a log may carry.
var Magnitudes = []int{1, 2, 5}

// DisciplineLog is a single signed-point conduct event for a student.
// Violations carry positive points and appreciations negative ones.
type DisciplineLog struct {
	ID           string    `json:"id,omitempty"`
	StudentName  string    `json:"studentName"`
	StudentClass string    `json:"studentClass"`
	Type         LogType   `json:"type"`
	Points       int       `json:"points"`
	Note         string    `json:"note"`
	Officer      string    `json:"officer"`
	Date         string    `json:"date"`
	CreatedAt    time.Time `json:"createdAt"`
}

// SignedPoints derives the stored points from a magnitude and log type.
func SignedPoints(logType LogType, magnitude int) (int, error) {
	valid := false
	for _, m := range Magnitudes {
		if m == magnitude {
			valid = true
			break
		}
	}
	if !valid {
		return 0, fmt.Errorf("invalid magnitude %d", magnitude)
	}

	switch logType {
	case LogTypeViolation:
		return magnitude, nil
	case LogTypeAppreciation:
		return -magnitude, nil
	default:
		return 0, fmt.Errorf("invalid log type %q", logType)
	}
}

package stats

import (
	"sort"

	"github.com/noah-isme/sma-evaluasi-api/internal/dto"
	"github.com/noah-isme/sma-evaluasi-api/internal/models"
)

const (
	attentionLimit = 5
	highRiskPoints = 10
	unknownClass   = "N/A"
)

// Discipline rolls logs up per student. Logs are expected newest first so
// that a student's class and last log come from their most recent entry.
func Discipline(logs []models.DisciplineLog, today string) dto.DisciplineStats {
	out := dto.DisciplineStats{TotalLogs: len(logs)}

	index := map[string]int{}
	students := make([]dto.StudentRollup, 0)
	for _, log := range logs {
		if log.Date == today {
			out.TodayCount++
		}
		switch {
		case log.Points > 0:
			out.NegativeCount++
		case log.Points < 0:
			out.PositiveCount++
		}

		i, ok := index[log.StudentName]
		if !ok {
			class := log.StudentClass
			if class == "" {
				class = unknownClass
			}
			students = append(students, dto.StudentRollup{Name: log.StudentName, Class: class, LastLog: log.Date})
			i = len(students) - 1
			index[log.StudentName] = i
		}
		s := &students[i]
		s.TotalPoints += log.Points
		if log.Points > 0 {
			s.ViolationCount++
		} else {
			s.AppreciationCount++
		}
	}

	for i := range students {
		students[i].RiskLevel = RiskLevel(students[i].TotalPoints)
	}
	sort.SliceStable(students, func(i, j int) bool { return students[i].TotalPoints > students[j].TotalPoints })
	out.Students = students

	out.AttentionList = make([]dto.StudentRollup, 0, attentionLimit)
	for _, s := range students {
		if s.TotalPoints <= 0 || len(out.AttentionList) == attentionLimit {
			break
		}
		out.AttentionList = append(out.AttentionList, s)
	}
	return out
}

// RiskLevel grades a student's accumulated points.
func RiskLevel(totalPoints int) string {
	switch {
	case totalPoints >= highRiskPoints:
		return dto.RiskHigh
	case totalPoints > 0:
		return dto.RiskWarning
	default:
		return dto.RiskSafe
	}
}

// StudentHistory returns the logs of one student in list order.
func StudentHistory(logs []models.DisciplineLog, name string) []models.DisciplineLog {
	history := make([]models.DisciplineLog, 0)
	for _, log := range logs {
		if log.StudentName == name {
			history = append(history, log)
		}
	}
	return history
}

// Student returns the rollup of a single student.
func Student(logs []models.DisciplineLog, name string) (dto.StudentRollup, bool) {
	history := StudentHistory(logs, name)
	if len(history) == 0 {
		return dto.StudentRollup{}, false
	}
	return Discipline(history, "").Students[0], true
}

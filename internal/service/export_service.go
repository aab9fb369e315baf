package service

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-evaluasi-api/internal/dto"
	"github.com/noah-isme/sma-evaluasi-api/internal/models"
	"github.com/noah-isme/sma-evaluasi-api/internal/stats"
	"github.com/noah-isme/sma-evaluasi-api/pkg/export"
	"github.com/noah-isme/sma-evaluasi-api/pkg/storage"
)

type snapshotSource interface {
	Snapshot(ctx context.Context) (stats.Snapshot, error)
	Today() string
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       export.Format
	ExpiresAt    time.Time
}

// ExportService turns a dashboard snapshot into a rendered, stored document.
type ExportService struct {
	source  snapshotSource
	storage fileStorage
	signer  *storage.SignedURLSigner
	logger  *zap.Logger
	cfg     ExportConfig
	now     func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(source snapshotSource, files fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	return &ExportService{
		source:  source,
		storage: files,
		signer:  signer,
		logger:  logger,
		cfg:     cfg,
		now:     time.Now,
	}
}

// Generate renders the dataset named by job and stores the document.
func (s *ExportService) Generate(ctx context.Context, job *models.ExportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	format := export.Format(job.Params.Format)
	renderer, err := export.NewRenderer(format)
	if err != nil {
		return nil, err
	}

	snap, err := s.source.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load dashboard snapshot: %w", err)
	}
	if len(snap.Failed) > 0 {
		return nil, fmt.Errorf("load dashboard snapshot: unavailable collections %v", snap.Failed)
	}
	today := job.Params.Today
	if today == "" {
		today = s.source.Today()
	}
	summary := stats.Compute(snap, today)

	dataset, err := BuildDataset(job.Dataset, summary)
	if err != nil {
		return nil, err
	}
	payload, err := renderer.Render(dataset)
	if err != nil {
		return nil, fmt.Errorf("render %s export: %w", format, err)
	}

	relPath, err := s.storage.Save(s.buildFilename(job), payload)
	if err != nil {
		return nil, err
	}
	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          s.downloadURL(token),
		Format:       format,
		ExpiresAt:    expiresAt,
	}, nil
}

// Today returns the date new exports are pinned to.
func (s *ExportService) Today() string {
	return s.source.Today()
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (storage.Claims, error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl, defaulting to the configured result TTL.
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) downloadURL(token string) string {
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	return fmt.Sprintf("%s/exports/%s", prefix, token)
}

func (s *ExportService) buildFilename(job *models.ExportJob) string {
	timestamp := s.now().UTC().Format("20060102_150405")
	return fmt.Sprintf("dashboard_%s_%s_%s.%s", sanitizeFilename(string(job.Dataset)), timestamp, sanitizeFilename(shortID(job.ID)), job.Params.Format)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

// BuildDataset flattens one part of a computed dashboard into a table.
func BuildDataset(kind models.ExportDataset, summary dto.DashboardResponse) (export.Dataset, error) {
	switch kind {
	case models.ExportDatasetSummary:
		return summaryDataset(summary), nil
	case models.ExportDatasetIssues:
		return issuesDataset(summary), nil
	case models.ExportDatasetDiscipline:
		return disciplineDataset(summary), nil
	case models.ExportDatasetPrograms:
		return programsDataset(summary), nil
	default:
		return export.Dataset{}, fmt.Errorf("unsupported export dataset %q", kind)
	}
}

func summaryDataset(summary dto.DashboardResponse) export.Dataset {
	st := summary.IssueStats
	health := "-"
	if st.HealthScore != nil {
		health = strconv.Itoa(*st.HealthScore)
	}
	dominant := "-"
	if st.DominantRoot != nil {
		dominant = fmt.Sprintf("%s (%d)", st.DominantRoot.Label, st.DominantRoot.Count)
	}
	disc := summary.Discipline

	metric := func(name, value string) map[string]string {
		return map[string]string{"Metric": name, "Value": value}
	}
	rows := []map[string]string{
		metric("Health Score", health),
		metric("Health Band", st.HealthBand),
		metric("Program Score", fmt.Sprintf("%.2f", st.ProgramScore)),
		metric("Problem Score", fmt.Sprintf("%.2f", st.ProblemScore)),
		metric("Penalty", strconv.Itoa(st.Penalty)),
		metric("Total Issues", strconv.Itoa(st.Total)),
		metric("Active Issues", strconv.Itoa(st.Active)),
		metric("Critical Issues", strconv.Itoa(st.Critical)),
		metric("Planned Issues", strconv.Itoa(st.Matrix.Planned)),
		metric("Done Issues", strconv.Itoa(st.Matrix.Done)),
		metric("Without Solution", strconv.Itoa(st.NoSolution)),
		metric("Without PJ", strconv.Itoa(st.NoPJ)),
		metric("Dominant Root Cause", dominant),
		metric("Discipline Logs", strconv.Itoa(disc.TotalLogs)),
		metric("Violations", strconv.Itoa(disc.NegativeCount)),
		metric("Appreciations", strconv.Itoa(disc.PositiveCount)),
		metric("Logs Today", strconv.Itoa(disc.TodayCount)),
		metric("Students Needing Attention", strconv.Itoa(len(disc.AttentionList))),
	}
	return export.Dataset{
		Title:   fmt.Sprintf("Dashboard Evaluasi %s", summary.Today),
		Headers: []string{"Metric", "Value"},
		Rows:    rows,
	}
}

func issuesDataset(summary dto.DashboardResponse) export.Dataset {
	headers := []string{"Title", "Category", "Root Cause", "Solution", "PJ", "Deadline", "Status", "Priority", "Source"}
	rows := make([]map[string]string, 0, len(summary.Issues))
	for _, issue := range summary.Issues {
		rows = append(rows, map[string]string{
			"Title":      issue.Title,
			"Category":   issue.Category,
			"Root Cause": issue.RootCause,
			"Solution":   issue.Solution,
			"PJ":         issue.PJ,
			"Deadline":   issue.Deadline,
			"Status":     issue.Status,
			"Priority":   issue.Priority,
			"Source":     string(issue.Source),
		})
	}
	return export.Dataset{
		Title:   fmt.Sprintf("Issues %s", summary.Today),
		Headers: headers,
		Rows:    rows,
	}
}

func disciplineDataset(summary dto.DashboardResponse) export.Dataset {
	headers := []string{"Student", "Class", "Total Points", "Violations", "Appreciations", "Last Log", "Risk"}
	rows := make([]map[string]string, 0, len(summary.Discipline.Students))
	for _, student := range summary.Discipline.Students {
		rows = append(rows, map[string]string{
			"Student":       student.Name,
			"Class":         student.Class,
			"Total Points":  strconv.Itoa(student.TotalPoints),
			"Violations":    strconv.Itoa(student.ViolationCount),
			"Appreciations": strconv.Itoa(student.AppreciationCount),
			"Last Log":      student.LastLog,
			"Risk":          student.RiskLevel,
		})
	}
	return export.Dataset{
		Title:   fmt.Sprintf("Discipline %s", summary.Today),
		Headers: headers,
		Rows:    rows,
	}
}

func programsDataset(summary dto.DashboardResponse) export.Dataset {
	headers := []string{"Title", "Implementation %", "Goal %", "Problem Note", "Solution Note", "PJ", "Deadline", "Perfect"}
	rows := make([]map[string]string, 0, len(summary.Programs))
	for _, p := range summary.Programs {
		perfect := "Tidak"
		if p.Perfect {
			perfect = "Ya"
		}
		rows = append(rows, map[string]string{
			"Title":            p.Title,
			"Implementation %": strconv.Itoa(p.DisplayImplProgress),
			"Goal %":           strconv.Itoa(p.DisplayGoalProgress),
			"Problem Note":     p.ProblemNote,
			"Solution Note":    p.SolutionNote,
			"PJ":               p.PJ,
			"Deadline":         p.Deadline,
			"Perfect":          perfect,
		})
	}
	return export.Dataset{
		Title:   fmt.Sprintf("Programs %s", summary.Today),
		Headers: headers,
		Rows:    rows,
	}
}

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-evaluasi-api/internal/models"
	"github.com/noah-isme/sma-evaluasi-api/internal/repository"
	appErrors "github.com/noah-isme/sma-evaluasi-api/pkg/errors"
)

type fakeDisciplineRepo struct {
	items   []models.DisciplineLog
	listErr error
}

func (f *fakeDisciplineRepo) List(context.Context) ([]models.DisciplineLog, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]models.DisciplineLog(nil), f.items...), nil
}

func (f *fakeDisciplineRepo) FindByID(_ context.Context, id string) (*models.DisciplineLog, error) {
	for _, l := range f.items {
		if l.ID == id {
			found := l
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeDisciplineRepo) Insert(_ context.Context, l models.DisciplineLog) (*models.DisciplineLog, error) {
	l.ID = "log-new"
	if l.Date == "" {
		l.Date = "2024-05-01"
	}
	f.items = append([]models.DisciplineLog{l}, f.items...)
	return &l, nil
}

func (f *fakeDisciplineRepo) Delete(context.Context, string) error {
	return nil
}

func TestDisciplineServiceDerivesSignedPoints(t *testing.T) {
	repo := &fakeDisciplineRepo{}
	inv := &fakeInvalidator{}
	svc := NewDisciplineService(repo, inv, nil, nil, nil)

	violation, err := svc.Create(context.Background(), DisciplineLogRequest{StudentName: " Ahmad ", Type: models.LogTypeViolation, Magnitude: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, violation.Points)
	assert.Equal(t, "Ahmad", violation.StudentName)
	assert.Equal(t, "2024-05-01", violation.Date)

	appreciation, err := svc.Create(context.Background(), DisciplineLogRequest{StudentName: "Budi", Type: models.LogTypeAppreciation, Magnitude: 2})
	require.NoError(t, err)
	assert.Equal(t, -2, appreciation.Points)
	assert.Equal(t, 2, inv.calls)
}

func TestDisciplineServiceRejectsInvalidInput(t *testing.T) {
	svc := NewDisciplineService(&fakeDisciplineRepo{}, nil, nil, nil, nil)

	cases := []DisciplineLogRequest{
		{StudentName: "", Type: models.LogTypeViolation, Magnitude: 1},
		{StudentName: "A", Type: "warning", Magnitude: 1},
		{StudentName: "A", Type: models.LogTypeViolation, Magnitude: 3},
		{StudentName: "A", Type: models.LogTypeViolation, Magnitude: 1, Date: "yesterday"},
	}
	for _, req := range cases {
		_, err := svc.Create(context.Background(), req)
		require.Error(t, err)
		assert.True(t, errors.Is(err, appErrors.ErrValidation), "%+v", req)
	}
}

func TestDisciplineServiceHistory(t *testing.T) {
	repo := &fakeDisciplineRepo{items: []models.DisciplineLog{
		{ID: "1", StudentName: "Ahmad", StudentClass: "7A", Points: 5, Date: "2024-05-02"},
		{ID: "2", StudentName: "Budi", StudentClass: "8B", Points: -1, Date: "2024-05-02"},
		{ID: "3", StudentName: "Ahmad", StudentClass: "7A", Points: 2, Date: "2024-05-01"},
	}}
	svc := NewDisciplineService(repo, nil, nil, nil, nil)

	history, err := svc.History(context.Background(), "Ahmad")
	require.NoError(t, err)
	assert.Equal(t, 7, history.Student.TotalPoints)
	assert.Equal(t, "2024-05-02", history.Student.LastLog)
	require.Len(t, history.Logs, 2)
	assert.Equal(t, "1", history.Logs[0].ID)
	assert.Equal(t, "3", history.Logs[1].ID)

	_, err = svc.History(context.Background(), "Citra")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

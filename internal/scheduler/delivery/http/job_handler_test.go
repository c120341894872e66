package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang-disclosure-watcher/internal/scheduler/dto"
	"golang-disclosure-watcher/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("error", "json")
	require.NoError(t, err)
	return log
}

type stubJobService struct {
	job *dto.JobResponse
	err error
}

func (s *stubJobService) CreateJob(ctx context.Context, req *dto.CreateJobRequest) (*dto.JobResponse, error) {
	return s.job, s.err
}

func (s *stubJobService) GetJobByID(ctx context.Context, id uint) (*dto.JobResponse, error) {
	return s.job, s.err
}

func (s *stubJobService) GetAllJobs(ctx context.Context) ([]*dto.JobResponse, error) {
	return nil, s.err
}

func (s *stubJobService) UpdateJob(ctx context.Context, id uint, req *dto.UpdateJobRequest) (*dto.JobResponse, error) {
	return s.job, s.err
}

func (s *stubJobService) DeleteJob(ctx context.Context, id uint) error {
	return s.err
}

func getJobRequest(t *testing.T, svc *stubJobService, id string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/jobs/:id")
	c.SetParamNames("id")
	c.SetParamValues(id)

	h := NewJobHandler(svc, testLogger(t))
	require.NoError(t, h.GetJobByID(c))
	return rec
}

func TestGetJobByIDReturnsJob(t *testing.T) {
	rec := getJobRequest(t, &stubJobService{job: &dto.JobResponse{ID: 7, Name: "nightly import"}}, "7")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "nightly import")
}

func TestGetJobByIDMapsMissingJobToNotFound(t *testing.T) {
	rec := getJobRequest(t, &stubJobService{err: gorm.ErrRecordNotFound}, "42")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetJobByIDRejectsMalformedID(t *testing.T) {
	rec := getJobRequest(t, &stubJobService{}, "not-a-number")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

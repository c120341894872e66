package service

import (
	"context"
	"encoding/json"

	"golang-disclosure-watcher/internal/entity"
	"golang-disclosure-watcher/internal/scheduler/dto"
	"golang-disclosure-watcher/internal/scheduler/repository"
	"golang-disclosure-watcher/pkg/logger"

	"gorm.io/datatypes"
)

// JobService manages job definitions and their attached schedules.
type JobService interface {
	CreateJob(ctx context.Context, req *dto.CreateJobRequest) (*dto.JobResponse, error)
	GetJobByID(ctx context.Context, id uint) (*dto.JobResponse, error)
	GetAllJobs(ctx context.Context) ([]*dto.JobResponse, error)
	UpdateJob(ctx context.Context, id uint, req *dto.UpdateJobRequest) (*dto.JobResponse, error)
	DeleteJob(ctx context.Context, id uint) error
}

// NewJobService creates a new job service.
func NewJobService(jobRepo repository.JobRepository, logger *logger.Logger) JobService {
	return &jobService{
		jobRepo: jobRepo,
		logger:  logger,
	}
}

type jobService struct {
	jobRepo repository.JobRepository
	logger  *logger.Logger
}

// CreateJob stores a new job definition with its schedule set.
func (s *jobService) CreateJob(ctx context.Context, req *dto.CreateJobRequest) (*dto.JobResponse, error) {
	job, err := jobFromRequest(req.Name, req.Description, req.Type, req.Payload, req.RetryPolicy, req.Timeout, req.Schedules)
	if err != nil {
		return nil, err
	}

	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, err
	}

	s.logger.Info("Job created", logger.Field("job_id", job.ID), logger.StringField("name", job.Name))
	return jobResponse(job), nil
}

// GetJobByID returns one job with its schedules.
func (s *jobService) GetJobByID(ctx context.Context, id uint) (*dto.JobResponse, error) {
	job, err := s.jobRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return jobResponse(job), nil
}

// GetAllJobs returns every registered job.
func (s *jobService) GetAllJobs(ctx context.Context) ([]*dto.JobResponse, error) {
	jobs, err := s.jobRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.JobResponse, 0, len(jobs))
	for i := range jobs {
		responses = append(responses, jobResponse(&jobs[i]))
	}
	return responses, nil
}

// UpdateJob replaces a job's definition. The schedule set is replaced
// wholesale: schedules missing from the request are dropped.
func (s *jobService) UpdateJob(ctx context.Context, id uint, req *dto.UpdateJobRequest) (*dto.JobResponse, error) {
	if _, err := s.jobRepo.FindByID(ctx, id); err != nil {
		return nil, err
	}

	job, err := jobFromRequest(req.Name, req.Description, req.Type, req.Payload, req.RetryPolicy, req.Timeout, req.Schedules)
	if err != nil {
		return nil, err
	}
	job.ID = id
	for i := range job.Schedules {
		job.Schedules[i].JobID = id
	}

	if err := s.jobRepo.Update(ctx, job); err != nil {
		s.logger.Error("Failed to update job", logger.ErrorField(err), logger.Field("job_id", id))
		return nil, err
	}

	s.logger.Info("Job updated", logger.Field("job_id", id))
	return jobResponse(job), nil
}

// DeleteJob removes a job along with its schedules and execution history.
func (s *jobService) DeleteJob(ctx context.Context, id uint) error {
	if err := s.jobRepo.Delete(ctx, id); err != nil {
		s.logger.Error("Failed to delete job", logger.ErrorField(err), logger.Field("job_id", id))
		return err
	}
	s.logger.Info("Job deleted", logger.Field("job_id", id))
	return nil
}

// jobFromRequest builds the entity shared by the create and update paths.
func jobFromRequest(
	name, description, jobType string,
	payload json.RawMessage,
	retryPolicy dto.RetryPolicyDTO,
	timeout int,
	schedules []dto.ScheduleDTO,
) (*entity.Job, error) {
	retryPolicyBytes, err := json.Marshal(retryPolicy)
	if err != nil {
		return nil, err
	}

	job := &entity.Job{
		Name:        name,
		Description: description,
		Type:        entity.JobType(jobType),
		Payload:     datatypes.JSON(payload),
		RetryPolicy: datatypes.JSON(retryPolicyBytes),
		Timeout:     timeout,
	}
	for _, schedule := range schedules {
		job.Schedules = append(job.Schedules, entity.TaskSchedule{
			CronExpression: schedule.CronExpression,
			IsActive:       schedule.IsActive,
		})
	}
	return job, nil
}

func jobResponse(job *entity.Job) *dto.JobResponse {
	var retryPolicy dto.RetryPolicyDTO
	_ = json.Unmarshal(job.RetryPolicy, &retryPolicy)

	schedules := make([]dto.ScheduleResponseDTO, 0, len(job.Schedules))
	for _, schedule := range job.Schedules {
		schedules = append(schedules, dto.ScheduleResponseDTO{
			ID:             schedule.ID,
			CronExpression: schedule.CronExpression,
			IsActive:       schedule.IsActive,
			NextExecution:  schedule.NextExecution,
			LastExecution:  schedule.LastExecution,
		})
	}

	return &dto.JobResponse{
		ID:          job.ID,
		Name:        job.Name,
		Description: job.Description,
		Type:        string(job.Type),
		Payload:     json.RawMessage(job.Payload),
		RetryPolicy: retryPolicy,
		Timeout:     job.Timeout,
		Schedules:   schedules,
		CreatedAt:   job.CreatedAt,
		UpdatedAt:   job.UpdatedAt,
	}
}

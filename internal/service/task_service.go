package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"taskhub/internal/auth"
	apperrors "taskhub/internal/errors"
	"taskhub/internal/model"
	"taskhub/internal/repository"
)

// CreateTaskInput carries a validated task creation request.
type CreateTaskInput struct {
	Title       string
	Description *string
	Status      model.TaskStatus
}

// UpdateTaskInput carries a partial update; nil fields are left unchanged.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *model.TaskStatus
}

// TaskService manages tasks on behalf of an authenticated caller.
type TaskService interface {
	List(ctx context.Context, caller auth.Identity) ([]model.Task, error)
	Create(ctx context.Context, caller auth.Identity, in CreateTaskInput) (*model.Task, error)
	Update(ctx context.Context, caller auth.Identity, id uint, in UpdateTaskInput) (*model.Task, error)
	Delete(ctx context.Context, caller auth.Identity, id uint) error
}

type taskService struct {
	repo repository.TaskRepository
}

// NewTaskService creates a new task service.
func NewTaskService(repo repository.TaskRepository) TaskService {
	return &taskService{repo: repo}
}

// List returns every task for admins and the caller's own tasks otherwise.
func (s *taskService) List(ctx context.Context, caller auth.Identity) ([]model.Task, error) {
	tasks, err := s.repo.List(ctx, auth.OwnerScope(caller))
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// Create stores a task owned by the caller.
func (s *taskService) Create(ctx context.Context, caller auth.Identity, in CreateTaskInput) (*model.Task, error) {
	status := in.Status
	if status == "" {
		status = model.TaskStatusPending
	}

	task := &model.Task{
		UserID:      caller.UserID,
		Title:       in.Title,
		Description: in.Description,
		Status:      status,
	}
	if err := s.repo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return task, nil
}

// Update applies a partial update when the caller owns the task or is an admin.
func (s *taskService) Update(ctx context.Context, caller auth.Identity, id uint, in UpdateTaskInput) (*model.Task, error) {
	task, err := s.authorized(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		task.Title = *in.Title
	}
	if in.Description != nil {
		task.Description = in.Description
	}
	if in.Status != nil {
		task.Status = *in.Status
	}

	if err := s.repo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return task, nil
}

// Delete removes a task when the caller owns it or is an admin.
func (s *taskService) Delete(ctx context.Context, caller auth.Identity, id uint) error {
	if _, err := s.authorized(ctx, caller, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

func (s *taskService) authorized(ctx context.Context, caller auth.Identity, id uint) (*model.Task, error) {
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	if !auth.CanAccess(caller, task.UserID) {
		return nil, apperrors.ErrForbidden
	}
	return task, nil
}

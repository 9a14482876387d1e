package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"taskhub/internal/auth"
	apperrors "taskhub/internal/errors"
	"taskhub/internal/model"
)

var (
	owner    = auth.Identity{UserID: 1, Role: model.RoleUser}
	stranger = auth.Identity{UserID: 2, Role: model.RoleUser}
	admin    = auth.Identity{UserID: 3, Role: model.RoleAdmin}
)

func TestTaskService_ListScope(t *testing.T) {
	ctx := context.Background()
	repo := new(MockTaskRepository)
	repo.On("List", ctx, (*uint)(nil)).Return([]model.Task{{ID: 1}, {ID: 2}}, nil)
	repo.On("List", ctx, mock.MatchedBy(func(id *uint) bool { return id != nil && *id == owner.UserID })).
		Return([]model.Task{{ID: 1, UserID: owner.UserID}}, nil)
	svc := NewTaskService(repo)

	all, err := svc.List(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	own, err := svc.List(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, own, 1)
}

func TestTaskService_CreateForcesOwner(t *testing.T) {
	ctx := context.Background()
	repo := new(MockTaskRepository)
	repo.On("Create", ctx, mock.MatchedBy(func(task *model.Task) bool {
		return task.UserID == owner.UserID && task.Status == model.TaskStatusPending
	})).Return(nil)

	task, err := NewTaskService(repo).Create(ctx, owner, CreateTaskInput{Title: "Write docs"})

	require.NoError(t, err)
	assert.Equal(t, owner.UserID, task.UserID)
	repo.AssertExpectations(t)
}

func TestTaskService_UpdateDelete(t *testing.T) {
	ctx := context.Background()
	title := "Renamed"
	status := model.TaskStatusCompleted

	tests := []struct {
		name    string
		caller  auth.Identity
		found   *model.Task
		findErr error
		wantErr error
	}{
		{"owner", owner, &model.Task{ID: 9, UserID: owner.UserID, Title: "Old"}, nil, nil},
		{"admin on foreign task", admin, &model.Task{ID: 9, UserID: owner.UserID, Title: "Old"}, nil, nil},
		{"stranger is forbidden", stranger, &model.Task{ID: 9, UserID: owner.UserID, Title: "Old"}, nil, apperrors.ErrForbidden},
		{"missing task", owner, nil, gorm.ErrRecordNotFound, apperrors.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run("update "+tt.name, func(t *testing.T) {
			repo := new(MockTaskRepository)
			repo.On("FindByID", ctx, uint(9)).Return(tt.found, tt.findErr)
			repo.On("Update", ctx, mock.Anything).Return(nil)

			task, err := NewTaskService(repo).Update(ctx, tt.caller, 9, UpdateTaskInput{Title: &title, Status: &status})

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Renamed", task.Title)
			assert.Equal(t, model.TaskStatusCompleted, task.Status)
			assert.Equal(t, owner.UserID, task.UserID)
		})

		t.Run("delete "+tt.name, func(t *testing.T) {
			repo := new(MockTaskRepository)
			repo.On("FindByID", ctx, uint(9)).Return(tt.found, tt.findErr)
			repo.On("Delete", ctx, uint(9)).Return(nil)

			err := NewTaskService(repo).Delete(ctx, tt.caller, 9)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			repo.AssertCalled(t, "Delete", ctx, uint(9))
		})
	}
}

func TestTaskService_UpdateKeepsOmittedFields(t *testing.T) {
	ctx := context.Background()
	desc := "keep me"
	repo := new(MockTaskRepository)
	repo.On("FindByID", ctx, uint(5)).Return(&model.Task{ID: 5, UserID: owner.UserID, Title: "Title", Description: &desc, Status: model.TaskStatusPending}, nil)
	repo.On("Update", ctx, mock.Anything).Return(nil)

	status := model.TaskStatusCompleted
	task, err := NewTaskService(repo).Update(ctx, owner, 5, UpdateTaskInput{Status: &status})

	require.NoError(t, err)
	assert.Equal(t, "Title", task.Title)
	require.NotNil(t, task.Description)
	assert.Equal(t, "keep me", *task.Description)
}

//go:build integration

package store_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/nhle/todolist/internal/apperr"
	"github.com/nhle/todolist/internal/config"
	"github.com/nhle/todolist/internal/model"
	"github.com/nhle/todolist/internal/store"
)

// PostgresSuite runs the store against a real PostgreSQL container.
type PostgresSuite struct {
	suite.Suite
	ctx       context.Context
	container testcontainers.Container
	dsn       string
	store     *store.SQLStore
}

func TestPostgresSuite(t *testing.T) {
	suite.Run(t, new(PostgresSuite))
}

func (s *PostgresSuite) SetupSuite() {
	s.ctx = context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "todos",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	container, err := testcontainers.GenericContainer(s.ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	s.Require().NoError(err)
	s.container = container

	host, err := container.Host(s.ctx)
	s.Require().NoError(err)
	port, err := container.MappedPort(s.ctx, "5432")
	s.Require().NoError(err)
	s.dsn = fmt.Sprintf("postgres://test:test@%s:%s/todos?sslmode=disable", host, port.Port())

	s.store, err = store.Open(s.ctx, config.DriverPostgres, s.dsn, zap.NewNop())
	s.Require().NoError(err)
}

func (s *PostgresSuite) TearDownSuite() {
	if s.store != nil {
		s.store.Close()
	}
	if s.container != nil {
		s.container.Terminate(s.ctx)
	}
}

// SetupTest empties every table through the store itself.
func (s *PostgresSuite) SetupTest() {
	todos, err := s.store.ListTodos(s.ctx, store.TodoFilter{})
	s.Require().NoError(err)
	for _, t := range todos {
		s.Require().NoError(s.store.DeleteTodo(s.ctx, t.ID))
	}
	tags, err := s.store.ListTags(s.ctx)
	s.Require().NoError(err)
	for _, t := range tags {
		s.Require().NoError(s.store.DeleteTag(s.ctx, t.ID))
	}
	cats, err := s.store.ListCategories(s.ctx)
	s.Require().NoError(err)
	for _, c := range cats {
		s.Require().NoError(s.store.DeleteCategory(s.ctx, c.ID))
	}
}

func (s *PostgresSuite) TestMigrationsRerun() {
	again, err := store.Open(s.ctx, config.DriverPostgres, s.dsn, zap.NewNop())
	s.Require().NoError(err)
	s.NoError(again.Close())
}

func (s *PostgresSuite) TestCreateAndFilter() {
	due := time.Now().Add(48 * time.Hour).UTC()
	high, err := s.store.CreateTodo(s.ctx, model.Todo{Task: "ship", Priority: model.PriorityHigh, DueDate: &due})
	s.Require().NoError(err)
	_, err = s.store.CreateTodo(s.ctx, model.Todo{Task: "nap", Priority: model.PriorityLow})
	s.Require().NoError(err)

	p := model.PriorityHigh
	got, err := s.store.ListTodos(s.ctx, store.TodoFilter{Status: store.StatusActive, Priority: &p})
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal(high.ID, got[0].ID)
	s.Equal(model.PriorityMedium, mustCreate(s, "default").Priority)
}

func (s *PostgresSuite) TestConstraintMapping() {
	_, err := s.store.CreateTag(s.ctx, model.Tag{Name: "dup"})
	s.Require().NoError(err)
	_, err = s.store.CreateTag(s.ctx, model.Tag{Name: "dup"})
	s.ErrorIs(err, apperr.ErrConflict)

	_, err = s.store.CreateTodo(s.ctx, model.Todo{Task: "x", Priority: "urgent"})
	s.ErrorIs(err, apperr.ErrValidation)

	_, err = s.store.GetTodo(s.ctx, "not-a-uuid")
	s.ErrorIs(err, apperr.ErrValidation)

	missing := "00000000-0000-0000-0000-000000000000"
	_, err = s.store.CreateTodo(s.ctx, model.Todo{Task: "x", CategoryID: &missing})
	s.ErrorIs(err, apperr.ErrNotFound)
}

func (s *PostgresSuite) TestAddTimeAndCascade() {
	todo := mustCreate(s, "track")
	_, err := s.store.AddTimeSpent(s.ctx, todo.ID, 15)
	s.Require().NoError(err)
	got, err := s.store.AddTimeSpent(s.ctx, todo.ID, 15)
	s.Require().NoError(err)
	s.Equal(30, got.TimeSpentMinutes)

	_, err = s.store.CreateSubtask(s.ctx, model.Subtask{TodoID: todo.ID, Title: "step"})
	s.Require().NoError(err)
	s.Require().NoError(s.store.DeleteTodo(s.ctx, todo.ID))
	subtasks, err := s.store.ListSubtasks(s.ctx, todo.ID)
	s.Require().NoError(err)
	s.Empty(subtasks)
}

func mustCreate(s *PostgresSuite, task string) model.Todo {
	todo, err := s.store.CreateTodo(s.ctx, model.Todo{Task: task})
	s.Require().NoError(err)
	return todo
}

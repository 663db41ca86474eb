package tag

import (
	"context"
	"testing"

	"servicehub-be/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetTags(ctx context.Context, filter *string) ([]*Tag, error) {
	args := m.Called(ctx, filter)
	var tags []*Tag
	if args.Get(0) != nil {
		tags = args.Get(0).([]*Tag)
	}
	return tags, args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, id uint) (*Tag, error) {
	args := m.Called(ctx, id)
	var t *Tag
	if args.Get(0) != nil {
		t = args.Get(0).(*Tag)
	}
	return t, args.Error(1)
}

func (m *MockRepository) AddTag(ctx context.Context, name, color string) (*Tag, error) {
	args := m.Called(ctx, name, color)
	var t *Tag
	if args.Get(0) != nil {
		t = args.Get(0).(*Tag)
	}
	return t, args.Error(1)
}

func (m *MockRepository) UpdateTag(ctx context.Context, id uint, input UpdateInput) (*Tag, error) {
	args := m.Called(ctx, id, input)
	var t *Tag
	if args.Get(0) != nil {
		t = args.Get(0).(*Tag)
	}
	return t, args.Error(1)
}

func (m *MockRepository) DeleteTag(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func TestServiceAddTag(t *testing.T) {
	t.Run("DefaultColorApplied", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)

		repo.On("AddTag", mock.Anything, "new", DefaultColor).
			Return(&Tag{ID: 1, Name: "new", Color: DefaultColor}, nil)

		tag, err := svc.AddTag(context.Background(), "new", nil)

		require.NoError(t, err)
		assert.Equal(t, "#007bff", tag.Color)
		repo.AssertExpectations(t)
	})

	t.Run("ExplicitColorKept", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)

		repo.On("AddTag", mock.Anything, "sale", "#ff0000").
			Return(&Tag{ID: 2, Name: "sale", Color: "#ff0000"}, nil)

		tag, err := svc.AddTag(context.Background(), "sale", utils.StrPtr("#ff0000"))

		require.NoError(t, err)
		assert.Equal(t, "#ff0000", tag.Color)
	})

	t.Run("BlankColorFallsBack", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)

		repo.On("AddTag", mock.Anything, "new", DefaultColor).
			Return(&Tag{ID: 1, Name: "new", Color: DefaultColor}, nil)

		_, err := svc.AddTag(context.Background(), "new", utils.StrPtr("  "))

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("EmptyName", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)

		_, err := svc.AddTag(context.Background(), "", nil)

		assert.ErrorIs(t, err, ErrInvalidInput)
		repo.AssertNotCalled(t, "AddTag")
	})
}

func TestServiceUpdateTag(t *testing.T) {
	t.Run("BlankNameRejected", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)

		_, err := svc.UpdateTag(context.Background(), 2, UpdateInput{Name: utils.StrPtr("")})

		assert.ErrorIs(t, err, ErrInvalidInput)
		repo.AssertNotCalled(t, "UpdateTag")
	})
}

func TestServiceGetTag(t *testing.T) {
	t.Run("ZeroID", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)

		_, err := svc.GetTag(context.Background(), 0)

		assert.ErrorIs(t, err, ErrNotFound)
		repo.AssertNotCalled(t, "GetByID")
	})
}

func TestServiceDeleteTag(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo)

	repo.On("DeleteTag", mock.Anything, uint(2)).Return(nil)

	err := svc.DeleteTag(context.Background(), 2)

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

package product

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"servicehub-be/internal/utils"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetList(ctx context.Context, opts ListOptions) ([]*Product, int64, error) {
	args := m.Called(ctx, opts)
	var products []*Product
	if args.Get(0) != nil {
		products = args.Get(0).([]*Product)
	}
	return products, args.Get(1).(int64), args.Error(2)
}

func (m *MockRepository) GetByID(ctx context.Context, id uint, includeDeleted bool) (*Product, error) {
	args := m.Called(ctx, id, includeDeleted)
	var p *Product
	if args.Get(0) != nil {
		p = args.Get(0).(*Product)
	}
	return p, args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, input CreateInput) (*Product, error) {
	args := m.Called(ctx, input)
	var p *Product
	if args.Get(0) != nil {
		p = args.Get(0).(*Product)
	}
	return p, args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, id uint, input UpdateInput) (*Product, error) {
	args := m.Called(ctx, id, input)
	var p *Product
	if args.Get(0) != nil {
		p = args.Get(0).(*Product)
	}
	return p, args.Error(1)
}

func (m *MockRepository) SoftDelete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func TestServiceCreateProduct(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)

		input := CreateInput{
			Name:       "Widget",
			Price:      decimal.RequireFromString("19.99"),
			CategoryID: 2,
		}
		repo.On("Create", mock.Anything, input).
			Return(&Product{ID: 1, Name: "Widget"}, nil)

		p, err := svc.CreateProduct(context.Background(), input)

		require.NoError(t, err)
		assert.Equal(t, uint(1), p.ID)
		repo.AssertExpectations(t)
	})

	t.Run("NegativePrice", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)

		_, err := svc.CreateProduct(context.Background(), CreateInput{
			Name:       "Widget",
			Price:      decimal.RequireFromString("-0.01"),
			CategoryID: 2,
		})

		assert.ErrorIs(t, err, ErrInvalidPrice)
		repo.AssertNotCalled(t, "Create")
	})

	t.Run("ZeroPriceAllowed", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)

		input := CreateInput{Name: "Freebie", Price: decimal.Zero, CategoryID: 2}
		repo.On("Create", mock.Anything, input).
			Return(&Product{ID: 3, Name: "Freebie"}, nil)

		_, err := svc.CreateProduct(context.Background(), input)

		assert.NoError(t, err)
	})

	t.Run("EmptyName", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)

		_, err := svc.CreateProduct(context.Background(), CreateInput{
			Name:       "  ",
			Price:      decimal.NewFromInt(1),
			CategoryID: 2,
		})

		assert.ErrorIs(t, err, ErrInvalidInput)
		repo.AssertNotCalled(t, "Create")
	})

	t.Run("MissingCategory", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)

		_, err := svc.CreateProduct(context.Background(), CreateInput{
			Name:  "Widget",
			Price: decimal.NewFromInt(1),
		})

		assert.ErrorIs(t, err, ErrInvalidCategory)
		repo.AssertNotCalled(t, "Create")
	})
}

func TestServiceUpdateProduct(t *testing.T) {
	t.Run("NegativePrice", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)

		bad := decimal.RequireFromString("-5")
		_, err := svc.UpdateProduct(context.Background(), 1, UpdateInput{Price: &bad})

		assert.ErrorIs(t, err, ErrInvalidPrice)
		repo.AssertNotCalled(t, "Update")
	})

	t.Run("BlankName", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)

		_, err := svc.UpdateProduct(context.Background(), 1, UpdateInput{Name: utils.StrPtr(" ")})

		assert.ErrorIs(t, err, ErrInvalidInput)
		repo.AssertNotCalled(t, "Update")
	})

	t.Run("Success", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)

		input := UpdateInput{Name: utils.StrPtr("Renamed")}
		repo.On("Update", mock.Anything, uint(1), input).
			Return(&Product{ID: 1, Name: "Renamed"}, nil)

		p, err := svc.UpdateProduct(context.Background(), 1, input)

		require.NoError(t, err)
		assert.Equal(t, "Renamed", p.Name)
	})
}

func TestServiceGetProduct(t *testing.T) {
	t.Run("ZeroID", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)

		_, err := svc.GetProduct(context.Background(), 0, false)

		assert.ErrorIs(t, err, ErrNotFound)
		repo.AssertNotCalled(t, "GetByID")
	})

	t.Run("HidesSoftDeleted", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)

		repo.On("GetByID", mock.Anything, uint(5), false).
			Return(nil, ErrNotFound)

		_, err := svc.GetProduct(context.Background(), 5, false)

		assert.ErrorIs(t, err, ErrNotFound)
		repo.AssertExpectations(t)
	})

	t.Run("IncludeDeleted", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)

		repo.On("GetByID", mock.Anything, uint(5), true).
			Return(&Product{ID: 5, IsDeleted: true}, nil)

		p, err := svc.GetProduct(context.Background(), 5, true)

		require.NoError(t, err)
		assert.True(t, p.IsDeleted)
	})
}

func TestServiceDeleteProduct(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo)

	repo.On("SoftDelete", mock.Anything, uint(1)).Return(nil)

	err := svc.DeleteProduct(context.Background(), 1)

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestServiceGetProducts(t *testing.T) {
	t.Run("RepoError", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)

		repo.On("GetList", mock.Anything, ListOptions{}).
			Return(nil, int64(0), errors.New("db down"))

		_, _, err := svc.GetProducts(context.Background(), ListOptions{})

		assert.Error(t, err)
	})
}

package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"gamebit/internal/domain/entity"
	"gamebit/internal/domain/repository"
	"gamebit/pkg/errors"
)

type firestoreProductRepository struct {
	client *firestore.Client
}

func NewFirestoreProductRepository(client *firestore.Client) repository.ProductRepository {
	return &firestoreProductRepository{
		client: client,
	}
}

func (r *firestoreProductRepository) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	var product entity.Product

	err := withRetry(ctx, func() error {
		doc, err := r.client.Collection("products").Doc(id).Get(ctx)
		if err != nil {
			return err
		}
		if err := doc.DataTo(&product); err != nil {
			return err
		}
		product.ID = doc.Ref.ID
		return nil
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Product", err)
		}
		if errors.Is(err, "SERVICE_UNAVAILABLE") {
			return nil, err
		}
		return nil, errors.Internal("Failed to get product", err)
	}

	return &product, nil
}

func (r *firestoreProductRepository) Create(ctx context.Context, product *entity.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}

	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now

	err := withRetry(ctx, func() error {
		_, err := r.client.Collection("products").Doc(product.ID).Set(ctx, product)
		return err
	})
	if err != nil {
		if errors.Is(err, "SERVICE_UNAVAILABLE") {
			return err
		}
		return errors.Internal("Failed to create product", err)
	}

	return nil
}

func (r *firestoreProductRepository) Update(ctx context.Context, product *entity.Product) error {
	product.UpdatedAt = time.Now()

	err := withRetry(ctx, func() error {
		_, err := r.client.Collection("products").Doc(product.ID).Set(ctx, product)
		return err
	})
	if err != nil {
		if errors.Is(err, "SERVICE_UNAVAILABLE") {
			return err
		}
		return errors.Internal("Failed to update product", err)
	}

	return nil
}

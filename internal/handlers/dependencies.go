package handlers

import (
	"context"
	"io"

	"github.com/mangashelf/mangashelf/models"
	"github.com/mangashelf/mangashelf/supabase"
)

// CatalogStore is the subset of the Supabase client the handlers read and write through.
type CatalogStore interface {
	List(ctx context.Context, table string, query supabase.Query, out any) error
	Get(ctx context.Context, table, column, value string, out any) error
	Insert(ctx context.Context, table string, record any) error
	Update(ctx context.Context, table, id string, record any) error
	Delete(ctx context.Context, table, id string) error
}

type ReviewSummarizer interface {
	SummarizeReviews(ctx context.Context, req models.SummarizeRequest) (models.SummarizeResult, error)
}

type ImageUploader interface {
	Upload(ctx context.Context, objectName, contentType string, r io.Reader) (string, error)
}

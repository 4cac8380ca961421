package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/dvloznov/ledger-assistant/internal/domain"
)

type CategoryRow struct {
	CategoryID string              `bigquery:"category_id"` // REQUIRED
	Name       string              `bigquery:"name"`        // REQUIRED
	OwnerID    bigquery.NullString `bigquery:"owner_id"`    // NULLABLE; NULL marks a global category
}

// FindCategoryByName matches case-insensitively among categories owned
// by the user or global. Returns (nil, nil) when nothing matches.
func (r *Repository) FindCategoryByName(ctx context.Context, name, userID string) (*domain.Category, error) {
	q := r.client.Query(fmt.Sprintf(`
		SELECT
			category_id,
			name,
			owner_id
		FROM %s
		WHERE LOWER(name) = LOWER(@name)
		  AND (owner_id IS NULL OR owner_id = @owner)
		LIMIT 1
	`, r.qualified(categoriesTable)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "name", Value: name},
		{Name: "owner", Value: userID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("FindCategoryByName: query read: %w", err)
	}

	var row CategoryRow
	err = it.Next(&row)
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("FindCategoryByName: iter next: %w", err)
	}

	cat := &domain.Category{ID: row.CategoryID, Name: row.Name}
	if row.OwnerID.Valid {
		owner := row.OwnerID.StringVal
		cat.OwnerID = &owner
	}
	return cat, nil
}

// ListCategoryNames returns the names visible to the user, for the
// closed set embedded in the extraction prompt.
func (r *Repository) ListCategoryNames(ctx context.Context, userID string) ([]string, error) {
	q := r.client.Query(fmt.Sprintf(`
		SELECT name
		FROM %s
		WHERE owner_id IS NULL OR owner_id = @owner
		ORDER BY name
	`, r.qualified(categoriesTable)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "owner", Value: userID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListCategoryNames: query read: %w", err)
	}

	var names []string
	for {
		var row struct {
			Name string `bigquery:"name"`
		}
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListCategoryNames: iter next: %w", err)
		}
		names = append(names, row.Name)
	}
	return names, nil
}

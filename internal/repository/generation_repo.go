package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/timmy/promptgen/internal/apperr"
	"github.com/timmy/promptgen/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GenerationRepository persists prompt generation records.
type GenerationRepository struct {
	db *gorm.DB
}

// NewGenerationRepository creates a new GenerationRepository.
// Parameters:
//   - db: GORM database handle used for queries.
//
// Returns:
//   - *GenerationRepository: repository instance bound to db.
func NewGenerationRepository(db *gorm.DB) *GenerationRepository {
	return &GenerationRepository{db: db}
}

// Create inserts a new generation record, assigning its ID when empty.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - rec: record to persist; ID and CreatedAt are filled in.
//
// Returns:
//   - error: persistence error if the insert fails, including a duplicate storage path.
func (r *GenerationRepository) Create(ctx context.Context, rec *domain.GenerationRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return apperr.Persistence("failed to save generation record", err)
	}
	return nil
}

// List returns one page of the owner's records filtered, sorted and
// paginated by q. Records of other owners are never visible.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - ownerID: owner whose records are listed.
//   - q: search, sort and page specification.
//
// Returns:
//   - domain.Page[domain.GenerationRecord]: the page and the total match count.
//   - error: persistence error if a query fails.
func (r *GenerationRepository) List(ctx context.Context, ownerID string, q domain.ListQuery) (domain.Page[domain.GenerationRecord], error) {
	page := domain.Page[domain.GenerationRecord]{Number: q.Page.Number, Size: q.Page.Size}

	scope := func(db *gorm.DB) *gorm.DB {
		db = db.Where("user_id = ?", ownerID)
		if q.Search != "" {
			db = db.Where(`LOWER(generated_prompt) LIKE LOWER(?) ESCAPE '\'`, "%"+escapeLike(q.Search)+"%")
		}
		return db
	}

	if err := r.db.WithContext(ctx).
		Model(&domain.GenerationRecord{}).
		Scopes(scope).
		Count(&page.Total).Error; err != nil {
		return page, apperr.Persistence("failed to count generation records", err)
	}

	if page.Total == 0 {
		page.Items = []domain.GenerationRecord{}
		return page, nil
	}

	if err := r.db.WithContext(ctx).
		Scopes(scope).
		Order(clause.OrderByColumn{Column: clause.Column{Name: string(q.Sort.Field)}, Desc: q.Sort.Desc}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: q.Sort.Desc}).
		Limit(q.Page.Size).
		Offset(q.Page.Offset()).
		Find(&page.Items).Error; err != nil {
		return page, apperr.Persistence("failed to list generation records", err)
	}

	return page, nil
}

// ExistingStoragePaths reports which of paths are referenced by a record.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - paths: candidate storage paths.
//
// Returns:
//   - map[string]bool: set of paths that have a record.
//   - error: persistence error if the lookup fails.
func (r *GenerationRepository) ExistingStoragePaths(ctx context.Context, paths []string) (map[string]bool, error) {
	const batchSize = 500

	existing := make(map[string]bool, len(paths))
	for start := 0; start < len(paths); start += batchSize {
		end := min(start+batchSize, len(paths))

		var found []string
		if err := r.db.WithContext(ctx).
			Model(&domain.GenerationRecord{}).
			Where("image_path IN ?", paths[start:end]).
			Pluck("image_path", &found).Error; err != nil {
			return nil, apperr.Persistence("failed to look up storage paths", err)
		}
		for _, p := range found {
			existing[p] = true
		}
	}
	return existing, nil
}

// escapeLike escapes LIKE wildcards so search text matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// Package console is a generic record browser: list, filter and search over
// typed records, driven entirely by per-entity declarative configuration.
// It knows nothing about any specific entity.
package console

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"
)

// Definition declares how an entity appears in the console.
type Definition struct {
	// Name is the URL slug for the entity, e.g. "stores".
	Name string
	// Table is the backing table.
	Table string
	// ListDisplay are the columns shown in listings (id is always included).
	ListDisplay []string
	// ListFilter are the columns accepted as exact-match filters.
	ListFilter []string
	// SearchFields are the columns matched by substring search.
	SearchFields []string
	// Ordering is the default ORDER BY clause; "id" when empty.
	Ordering string
	// Inline optionally embeds dependent rows on the detail view.
	Inline *Inline
}

// Inline embeds rows of another table on a record's detail view, the way an
// order shows its line items.
type Inline struct {
	Name        string
	Table       string
	ForeignKey  string
	ListDisplay []string
}

// Registry holds the known entity definitions.
type Registry struct {
	defs map[string]Definition
}

func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]Definition)}
}

func (r *Registry) Register(def Definition) error {
	if def.Name == "" || def.Table == "" {
		return fmt.Errorf("console: definition requires name and table")
	}
	if _, exists := r.defs[def.Name]; exists {
		return fmt.Errorf("console: %q already registered", def.Name)
	}
	r.defs[def.Name] = def
	return nil
}

func (r *Registry) Get(name string) (Definition, bool) {
	def, ok := r.defs[name]
	return def, ok
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BrowseRequest carries the caller's filter, search and paging parameters.
type BrowseRequest struct {
	// Filters maps column name to accepted values; only columns named in the
	// definition's ListFilter are applied, everything else is ignored.
	Filters map[string][]string
	// Search is matched as a substring against every SearchFields column.
	Search string
	Limit  int
}

// Browse lists records for a definition. Filters apply as exact matches,
// search as an OR'd substring match.
func Browse(ctx context.Context, db *gorm.DB, def Definition, req BrowseRequest) ([]map[string]any, error) {
	stmt := db.WithContext(ctx).Table(def.Table).Select(selectColumns(def.ListDisplay))

	for _, column := range def.ListFilter {
		values, ok := req.Filters[column]
		if !ok || len(values) == 0 {
			continue
		}
		if len(values) == 1 {
			stmt = stmt.Where(fmt.Sprintf("%s = ?", column), values[0])
		} else {
			stmt = stmt.Where(fmt.Sprintf("%s IN ?", column), values)
		}
	}

	if search := strings.TrimSpace(req.Search); search != "" && len(def.SearchFields) > 0 {
		clauses := make([]string, 0, len(def.SearchFields))
		args := make([]any, 0, len(def.SearchFields))
		for _, column := range def.SearchFields {
			clauses = append(clauses, fmt.Sprintf("%s LIKE ?", column))
			args = append(args, "%"+search+"%")
		}
		stmt = stmt.Where(strings.Join(clauses, " OR "), args...)
	}

	ordering := def.Ordering
	if ordering == "" {
		ordering = "id"
	}
	stmt = stmt.Order(ordering)

	if req.Limit > 0 {
		stmt = stmt.Limit(req.Limit)
	}

	var rows []map[string]any
	if err := stmt.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Detail fetches a single record, plus inline rows when configured.
func Detail(ctx context.Context, db *gorm.DB, def Definition, id string) (map[string]any, []map[string]any, error) {
	var row map[string]any
	err := db.WithContext(ctx).
		Table(def.Table).
		Where("id = ?", id).
		Take(&row).Error
	if err != nil {
		return nil, nil, err
	}

	if def.Inline == nil {
		return row, nil, nil
	}

	var inline []map[string]any
	err = db.WithContext(ctx).
		Table(def.Inline.Table).
		Select(selectColumns(def.Inline.ListDisplay)).
		Where(fmt.Sprintf("%s = ?", def.Inline.ForeignKey), id).
		Order("id").
		Find(&inline).Error
	if err != nil {
		return nil, nil, err
	}
	return row, inline, nil
}

func selectColumns(listDisplay []string) string {
	columns := []string{"id"}
	for _, column := range listDisplay {
		if column == "id" {
			continue
		}
		columns = append(columns, column)
	}
	return strings.Join(columns, ", ")
}

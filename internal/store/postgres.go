package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/lib/pq"

	"materials-quote-service/internal/domain"
)

// Predefined errors for store operations
var (
	ErrCatalogEmpty = errors.New("store: catalog snapshot is empty")
)

const catalogColumns = `code, supplier, name, price, unit, category, subcategory, units_per_package, package_unit_type`

// PostgresStore implements CatalogStorer using PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgresStore instance.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// LoadCatalog reads every active catalog row, optionally restricted to some
// suppliers, in a stable order so index positions are reproducible.
func (s *PostgresStore) LoadCatalog(ctx context.Context, params LoadCatalogParams) ([]domain.RawCatalogRecord, error) {
	var (
		rows *sql.Rows
		err  error
	)
	suppliers := cleanSuppliers(params.Suppliers)
	if len(suppliers) == 0 {
		query := `
		SELECT ` + catalogColumns + `
		FROM catalog.items
		WHERE active
		ORDER BY supplier, code;
	`
		rows, err = s.db.QueryContext(ctx, query)
	} else {
		query := `
		SELECT ` + catalogColumns + `
		FROM catalog.items
		WHERE active AND supplier = ANY($1)
		ORDER BY supplier, code;
	`
		rows, err = s.db.QueryContext(ctx, query, pq.Array(suppliers))
	}
	if err != nil {
		return nil, fmt.Errorf("store: LoadCatalog failed to query items: %w", err)
	}
	defer rows.Close()

	records := make([]domain.RawCatalogRecord, 0, 1024)
	for rows.Next() {
		var (
			rec         domain.RawCatalogRecord
			category    sql.NullString
			subcategory sql.NullString
			perPackage  sql.NullInt64
			packageUnit sql.NullString
		)
		if err := rows.Scan(
			&rec.Code,
			&rec.Supplier,
			&rec.Name,
			&rec.Price,
			&rec.Unit,
			&category,
			&subcategory,
			&perPackage,
			&packageUnit,
		); err != nil {
			return nil, fmt.Errorf("store: LoadCatalog failed to scan item row: %w", err)
		}
		rec.Category = category.String
		rec.Subcategory = subcategory.String
		rec.UnitsPerPackage = int(perPackage.Int64)
		rec.PackageUnitType = packageUnit.String
		records = append(records, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("store: LoadCatalog iteration error: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrCatalogEmpty
	}
	log.Printf("INFO: Loaded %d catalog rows (suppliers: %v)", len(records), suppliers)
	return records, nil
}

func cleanSuppliers(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Ping checks that the database is reachable.
func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("store: ping failed: %w", err)
	}
	return nil
}

// Close closes the underlying database connection pool.
func (s *PostgresStore) Close() error {
	if s.db != nil {
		log.Println("INFO: Closing database connection pool.")
		return s.db.Close()
	}
	return nil
}

package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"

	"github.com/skydeals/skydeals-api/internal/domain"
	"github.com/skydeals/skydeals-api/internal/platform/logger"
	"github.com/skydeals/skydeals-api/internal/store"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var pgDialect = goqu.Dialect("postgres")

// aircraftSearchSchema is the allow-list of columns callers may reference
// in search filters, sorts and projections. Everything else is rejected.
var aircraftSearchSchema = Schema{
	Filter: map[string]Kind{
		"aircraft_name": KindText,
		"serial_number": KindText,
		"manufacturer":  KindText,
		"model":         KindText,
		"category":      KindText,
		"year":          KindText,
		"city":          KindText,
		"country":       KindText,
		"province":      KindText,
		"price":         KindNumeric,
		"is_approved":   KindBool,
	},
	Sort: []string{
		"aircraft_name", "manufacturer", "model", "category", "year",
		"price", "created_at", "updated_at",
	},
	Project: []string{
		"aircraft_name", "serial_number", "manufacturer", "model",
		"category", "year", "description", "price", "images", "video",
		"address", "country", "city", "province", "postal_code",
		"is_approved", "user_id", "created_at", "updated_at",
	},
}

// AircraftStore implements store.AircraftStore backed by PostgreSQL.
type AircraftStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewAircraftStore creates a PostgreSQL implementation of
// store.AircraftStore. The connection is initialized and managed by the
// caller.
func NewAircraftStore(db *sqlx.DB, log *slog.Logger) *AircraftStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &AircraftStore{
		db:     db,
		logger: log.With(slog.String("component", "aircraft_store")),
	}
}

var _ store.AircraftStore = (*AircraftStore)(nil)

const aircraftColumns = `
	id, user_id, aircraft_name, serial_number, manufacturer, model,
	category, year, description, price, images, video, address, country,
	city, province, postal_code, spec_sheet, is_approved,
	created_at, updated_at`

// aircraftRow mirrors the aircrafts table; images and spec_sheet are JSONB
// payloads decoded when converting to the domain type.
type aircraftRow struct {
	ID           uuid.UUID `db:"id"`
	UserID       uuid.UUID `db:"user_id"`
	Name         string    `db:"aircraft_name"`
	SerialNumber string    `db:"serial_number"`
	Manufacturer string    `db:"manufacturer"`
	Model        string    `db:"model"`
	Category     string    `db:"category"`
	Year         string    `db:"year"`
	Description  string    `db:"description"`
	Price        float64   `db:"price"`
	Images       []byte    `db:"images"`
	Video        string    `db:"video"`
	Address      string    `db:"address"`
	Country      string    `db:"country"`
	City         string    `db:"city"`
	Province     string    `db:"province"`
	PostalCode   string    `db:"postal_code"`
	SpecSheet    []byte    `db:"spec_sheet"`
	IsApproved   bool      `db:"is_approved"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r *aircraftRow) toDomain() (*domain.Aircraft, error) {
	a := &domain.Aircraft{
		ID:           r.ID,
		UserID:       r.UserID,
		Name:         r.Name,
		SerialNumber: r.SerialNumber,
		Manufacturer: r.Manufacturer,
		Model:        r.Model,
		Category:     r.Category,
		Year:         r.Year,
		Description:  r.Description,
		Price:        r.Price,
		Video:        r.Video,
		Address:      r.Address,
		Country:      r.Country,
		City:         r.City,
		Province:     r.Province,
		PostalCode:   r.PostalCode,
		IsApproved:   r.IsApproved,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	if len(r.Images) > 0 {
		if err := json.Unmarshal(r.Images, &a.Images); err != nil {
			return nil, fmt.Errorf("decode images: %w", err)
		}
	}
	if len(r.SpecSheet) > 0 {
		if err := json.Unmarshal(r.SpecSheet, &a.SpecSheet); err != nil {
			return nil, fmt.Errorf("decode spec sheet: %w", err)
		}
	}
	return a, nil
}

// Create implements store.AircraftStore.Create.
func (s *AircraftStore) Create(ctx context.Context, aircraft *domain.Aircraft) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := aircraft.Validate(); err != nil {
		return err
	}

	images, err := json.Marshal(aircraft.Images)
	if err != nil {
		return fmt.Errorf("encode images: %w", err)
	}
	specSheet, err := json.Marshal(aircraft.SpecSheet)
	if err != nil {
		return fmt.Errorf("encode spec sheet: %w", err)
	}

	query := `
		INSERT INTO aircrafts (` + aircraftColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18, $19, $20, $21)
	`
	_, err = s.db.ExecContext(ctx, query,
		aircraft.ID, aircraft.UserID, aircraft.Name, aircraft.SerialNumber,
		aircraft.Manufacturer, aircraft.Model, aircraft.Category,
		aircraft.Year, aircraft.Description, aircraft.Price, images,
		aircraft.Video, aircraft.Address, aircraft.Country, aircraft.City,
		aircraft.Province, aircraft.PostalCode, specSheet,
		aircraft.IsApproved, aircraft.CreatedAt, aircraft.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create aircraft",
			slog.String("error", err.Error()),
			slog.String("aircraft_id", aircraft.ID.String()))
		return MapError(err)
	}

	log.Info("aircraft created",
		slog.String("aircraft_id", aircraft.ID.String()),
		slog.String("user_id", aircraft.UserID.String()))
	return nil
}

// GetByID implements store.AircraftStore.GetByID.
func (s *AircraftStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Aircraft, error) {
	var row aircraftRow
	err := s.db.GetContext(ctx, &row,
		`SELECT `+aircraftColumns+` FROM aircrafts WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrAircraftNotFound
		}
		return nil, MapError(err)
	}
	return row.toDomain()
}

// Delete implements store.AircraftStore.Delete.
func (s *AircraftStore) Delete(ctx context.Context, id uuid.UUID) (*domain.Aircraft, error) {
	var row aircraftRow
	err := s.db.GetContext(ctx, &row,
		`DELETE FROM aircrafts WHERE id = $1 RETURNING `+aircraftColumns, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrAircraftNotFound
		}
		return nil, MapError(err)
	}
	return row.toDomain()
}

// SetApproved implements store.AircraftStore.SetApproved.
func (s *AircraftStore) SetApproved(ctx context.Context, id uuid.UUID, approved bool) (*domain.Aircraft, error) {
	var row aircraftRow
	err := s.db.GetContext(ctx, &row, `
		UPDATE aircrafts SET is_approved = $2, updated_at = $3
		WHERE id = $1
		RETURNING `+aircraftColumns,
		id, approved, time.Now().UTC())
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrAircraftNotFound
		}
		return nil, MapError(err)
	}
	return row.toDomain()
}

// Search implements store.AircraftStore.Search: it stages the caller's
// query through the feature pipeline, executes the paginated page, and
// counts against the post-filter snapshot so the total reflects the whole
// filtered set.
func (s *AircraftStore) Search(ctx context.Context, q store.SearchQuery) (*store.SearchResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	ds := pgDialect.From("aircrafts")
	if q.NameContains != "" {
		ds = ds.Where(goqu.C("aircraft_name").ILike("%" + q.NameContains + "%"))
	}
	if q.Category != "" && q.Category != "all" {
		ds = ds.Where(goqu.C("category").ILike(q.Category))
	}
	if q.ApprovedOnly {
		ds = ds.Where(goqu.C("is_approved").IsTrue())
	}

	features := NewFeatures(ds, q.Params, aircraftSearchSchema).
		Filter().
		Sort().
		Paginate().
		Select()

	snapshot, err := features.FilteredSnapshot()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidQuery, err)
	}
	staged, err := features.Dataset()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidQuery, err)
	}

	countSQL, countArgs, err := snapshot.Select(goqu.COUNT(goqu.Star())).Prepared(true).ToSQL()
	if err != nil {
		return nil, MapError(err)
	}
	var total int64
	if err := s.db.GetContext(ctx, &total, countSQL, countArgs...); err != nil {
		return nil, MapError(err)
	}

	pageSQL, pageArgs, err := staged.Prepared(true).ToSQL()
	if err != nil {
		return nil, MapError(err)
	}

	rows, err := s.db.QueryxContext(ctx, pageSQL, pageArgs...)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	records := make([]store.Record, 0, 16)
	for rows.Next() {
		rec := store.Record{}
		if err := rows.MapScan(rec); err != nil {
			return nil, MapError(err)
		}
		normalizeRecord(rec)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	log.Debug("aircraft search executed",
		slog.Int64("total_results", total),
		slog.Int("page_size", len(records)))

	return &store.SearchResult{TotalResults: total, Data: records}, nil
}

// ListRecent implements store.AircraftStore.ListRecent.
func (s *AircraftStore) ListRecent(ctx context.Context, limit int) ([]*domain.Aircraft, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.list(ctx, `
		SELECT `+aircraftColumns+` FROM aircrafts
		WHERE is_approved = TRUE
		ORDER BY created_at DESC
		LIMIT $1`, limit)
}

// ListUnapproved implements store.AircraftStore.ListUnapproved.
func (s *AircraftStore) ListUnapproved(ctx context.Context) ([]*domain.Aircraft, error) {
	return s.list(ctx, `
		SELECT `+aircraftColumns+` FROM aircrafts
		WHERE is_approved = FALSE
		ORDER BY created_at DESC`)
}

// ListRelated implements store.AircraftStore.ListRelated.
func (s *AircraftStore) ListRelated(ctx context.Context, id uuid.UUID, limit int) ([]*domain.Aircraft, error) {
	if limit <= 0 {
		limit = 10
	}
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, `
		SELECT `+aircraftColumns+` FROM aircrafts
		WHERE id <> $1 AND category = $2 AND manufacturer = $3
			AND model = $4 AND is_approved = TRUE
		LIMIT $5`,
		id, current.Category, current.Manufacturer, current.Model, limit)
}

// ListByOwner implements store.AircraftStore.ListByOwner.
func (s *AircraftStore) ListByOwner(ctx context.Context, userID uuid.UUID, approvedOnly bool) ([]*domain.Aircraft, error) {
	if approvedOnly {
		return s.list(ctx, `
			SELECT `+aircraftColumns+` FROM aircrafts
			WHERE user_id = $1 AND is_approved = TRUE
			ORDER BY created_at DESC`, userID)
	}
	return s.list(ctx, `
		SELECT `+aircraftColumns+` FROM aircrafts
		WHERE user_id = $1
		ORDER BY created_at DESC`, userID)
}

func (s *AircraftStore) list(ctx context.Context, query string, args ...any) ([]*domain.Aircraft, error) {
	var rows []aircraftRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, MapError(err)
	}
	out := make([]*domain.Aircraft, 0, len(rows))
	for i := range rows {
		a, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// normalizeRecord rewrites driver-level values into JSON-friendly ones:
// JSONB columns arrive as raw bytes and are decoded in place, any other
// byte slice becomes a string.
func normalizeRecord(rec store.Record) {
	for k, v := range rec {
		b, ok := v.([]byte)
		if !ok {
			continue
		}
		var decoded any
		if err := json.Unmarshal(b, &decoded); err == nil {
			rec[k] = decoded
		} else {
			rec[k] = string(b)
		}
	}
}

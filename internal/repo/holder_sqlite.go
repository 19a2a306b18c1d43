package repo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/petclinic/records/internal/domain"
)

// querier is the interface both *sql.DB and *sql.Tx implement.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// sqliteHolderRepo is the SQLite implementation of HolderRepo.
// Dates are stored as YYYY-MM-DD text.
type sqliteHolderRepo struct {
	db *sql.DB
}

// NewSQLiteHolderRepo constructs a HolderRepo backed by a SQLite database
// opened with OpenSQLite and migrated with the sqlite migrations.
func NewSQLiteHolderRepo(db *sql.DB) HolderRepo {
	return &sqliteHolderRepo{db: db}
}

// FindPetTypes returns all pet types ordered by name.
func (r *sqliteHolderRepo) FindPetTypes(ctx context.Context) ([]domain.PetType, error) {
	const q = `SELECT id, name FROM pet_types ORDER BY name`

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.HolderRepo.FindPetTypes: %w", err)
	}
	defer rows.Close()

	types := []domain.PetType{}
	for rows.Next() {
		var pt domain.PetType
		if err := rows.Scan(&pt.ID, &pt.Name); err != nil {
			return nil, fmt.Errorf("repo.HolderRepo.FindPetTypes: scan: %w", err)
		}
		types = append(types, pt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.HolderRepo.FindPetTypes: rows: %w", err)
	}
	return types, nil
}

// FindByLastName returns one page of holders whose last_name starts with prefix.
// SQLite's LIKE ignores ASCII case, so the prefix is compared with substr instead.
func (r *sqliteHolderRepo) FindByLastName(ctx context.Context, prefix string, p domain.PaginationParams) ([]*domain.Holder, int64, error) {
	holders, total, err := r.findPage(ctx, prefix, p)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.HolderRepo.FindByLastName: %w", err)
	}
	return holders, total, nil
}

// FindAll returns one page of all holders.
func (r *sqliteHolderRepo) FindAll(ctx context.Context, p domain.PaginationParams) ([]*domain.Holder, int64, error) {
	holders, total, err := r.findPage(ctx, "", p)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.HolderRepo.FindAll: %w", err)
	}
	return holders, total, nil
}

func (r *sqliteHolderRepo) findPage(ctx context.Context, prefix string, p domain.PaginationParams) ([]*domain.Holder, int64, error) {
	const countQ = `
		SELECT count(*)
		FROM holders
		WHERE substr(last_name, 1, length(?1)) = ?1`

	const pageQ = `
		SELECT id, first_name, last_name, address, city, telephone
		FROM holders
		WHERE substr(last_name, 1, length(?1)) = ?1
		ORDER BY id
		LIMIT ?2 OFFSET ?3`

	var total int64
	if err := r.db.QueryRowContext(ctx, countQ, prefix).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, pageQ, prefix, p.Limit, p.Offset())
	if err != nil {
		return nil, 0, err
	}
	holders := []*domain.Holder{}
	for rows.Next() {
		h, err := scanHolder(rows)
		if err != nil {
			rows.Close()
			return nil, 0, fmt.Errorf("scan: %w", err)
		}
		holders = append(holders, h)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, 0, fmt.Errorf("rows: %w", err)
	}

	// The pool has a single connection; the holder rows must be closed
	// before the pets query can run.
	if err := r.loadPets(ctx, holders); err != nil {
		return nil, 0, err
	}
	return holders, total, nil
}

// FindByID retrieves a holder by primary key together with its pets and visits.
func (r *sqliteHolderRepo) FindByID(ctx context.Context, id int) (*domain.Holder, error) {
	const q = `
		SELECT id, first_name, last_name, address, city, telephone
		FROM holders
		WHERE id = ?`

	h, err := scanHolder(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, fmt.Errorf("repo.HolderRepo.FindByID: %w", err)
	}
	if err := r.loadPets(ctx, []*domain.Holder{h}); err != nil {
		return nil, fmt.Errorf("repo.HolderRepo.FindByID: %w", err)
	}
	if err := r.loadVisits(ctx, h); err != nil {
		return nil, fmt.Errorf("repo.HolderRepo.FindByID: %w", err)
	}
	return h, nil
}

func (r *sqliteHolderRepo) loadPets(ctx context.Context, holders []*domain.Holder) error {
	if len(holders) == 0 {
		return nil
	}
	byID, ids := holderIndex(holders)
	q := `
		SELECT p.id, p.name, p.birth_date, p.owner_id, t.id, t.name
		FROM pets p
		JOIN pet_types t ON t.id = p.type_id
		WHERE p.owner_id IN (` + placeholders(len(ids)) + `)
		ORDER BY p.name, p.id`

	rows, err := r.db.QueryContext(ctx, q, intArgs(ids)...)
	if err != nil {
		return fmt.Errorf("load pets: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			p         domain.Pet
			birthDate string
		)
		if err := rows.Scan(&p.ID, &p.Name, &birthDate, &p.OwnerID, &p.Type.ID, &p.Type.Name); err != nil {
			return fmt.Errorf("load pets: scan: %w", err)
		}
		if p.BirthDate, err = time.Parse(dateLayout, birthDate); err != nil {
			return fmt.Errorf("load pets: birth_date of pet %d: %w", p.ID, err)
		}
		h := byID[p.OwnerID]
		h.Pets = append(h.Pets, &p)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load pets: rows: %w", err)
	}
	return nil
}

func (r *sqliteHolderRepo) loadVisits(ctx context.Context, h *domain.Holder) error {
	if len(h.Pets) == 0 {
		return nil
	}
	byID, ids := petIndex(h)
	q := `
		SELECT id, pet_id, visit_date, description
		FROM visits
		WHERE pet_id IN (` + placeholders(len(ids)) + `)
		ORDER BY visit_date, id`

	rows, err := r.db.QueryContext(ctx, q, intArgs(ids)...)
	if err != nil {
		return fmt.Errorf("load visits: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			v    domain.Visit
			date string
		)
		if err := rows.Scan(&v.ID, &v.PetID, &date, &v.Description); err != nil {
			return fmt.Errorf("load visits: scan: %w", err)
		}
		if v.Date, err = time.Parse(dateLayout, date); err != nil {
			return fmt.Errorf("load visits: visit_date of visit %d: %w", v.ID, err)
		}
		pet := byID[v.PetID]
		pet.Visits = append(pet.Visits, &v)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load visits: rows: %w", err)
	}
	return nil
}

// Save upserts the whole aggregate inside one transaction.
func (r *sqliteHolderRepo) Save(ctx context.Context, h *domain.Holder) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return saveError("repo.HolderRepo.Save: begin", err)
	}
	defer func() { _ = tx.Rollback() }()

	pending, err := writeAggregate(ctx, sqliteWriter{q: tx}, h)
	if err != nil {
		return saveError("repo.HolderRepo.Save", err)
	}
	if err := tx.Commit(); err != nil {
		return saveError("repo.HolderRepo.Save: commit", err)
	}
	pending.apply()
	return nil
}

// sqliteWriter runs the aggregate write statements inside one transaction.
type sqliteWriter struct {
	q querier
}

func (w sqliteWriter) insertHolder(ctx context.Context, h *domain.Holder) (int, error) {
	const q = `
		INSERT INTO holders (first_name, last_name, address, city, telephone)
		VALUES (?, ?, ?, ?, ?)`

	return w.insert(ctx, q, h.FirstName, h.LastName, h.Address, h.City, h.Telephone)
}

func (w sqliteWriter) updateHolder(ctx context.Context, h *domain.Holder) error {
	const q = `
		UPDATE holders
		SET first_name = ?, last_name = ?, address = ?, city = ?, telephone = ?
		WHERE id = ?`

	return w.update(ctx, q, h.FirstName, h.LastName, h.Address, h.City, h.Telephone, h.ID)
}

func (w sqliteWriter) insertPet(ctx context.Context, ownerID int, p *domain.Pet) (int, error) {
	const q = `
		INSERT INTO pets (name, birth_date, type_id, owner_id)
		VALUES (?, ?, ?, ?)`

	return w.insert(ctx, q, p.Name, domain.Day(p.BirthDate).Format(dateLayout), p.Type.ID, ownerID)
}

func (w sqliteWriter) updatePet(ctx context.Context, ownerID int, p *domain.Pet) error {
	const q = `
		UPDATE pets
		SET name = ?, birth_date = ?, type_id = ?, owner_id = ?
		WHERE id = ?`

	return w.update(ctx, q, p.Name, domain.Day(p.BirthDate).Format(dateLayout), p.Type.ID, ownerID, p.ID)
}

func (w sqliteWriter) insertVisit(ctx context.Context, petID int, v *domain.Visit) (int, error) {
	const q = `
		INSERT INTO visits (pet_id, visit_date, description)
		VALUES (?, ?, ?)`

	return w.insert(ctx, q, petID, domain.Day(v.Date).Format(dateLayout), v.Description)
}

func (w sqliteWriter) updateVisit(ctx context.Context, petID int, v *domain.Visit) error {
	const q = `
		UPDATE visits
		SET pet_id = ?, visit_date = ?, description = ?
		WHERE id = ?`

	return w.update(ctx, q, petID, domain.Day(v.Date).Format(dateLayout), v.Description, v.ID)
}

func (w sqliteWriter) insert(ctx context.Context, q string, args ...any) (int, error) {
	res, err := w.q.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return int(id), nil
}

func (w sqliteWriter) update(ctx context.Context, q string, args ...any) error {
	res, err := w.q.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// placeholders returns "?, ?, ?" with n markers for an IN list.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func intArgs(ids []int) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

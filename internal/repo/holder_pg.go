package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/petclinic/records/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, *pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup. Begin on a pgx.Tx opens a
// savepoint, so Save stays atomic inside a test transaction too.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// pgHolderRepo is the Postgres implementation of HolderRepo.
type pgHolderRepo struct {
	db db
}

// NewHolderRepo constructs a HolderRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewHolderRepo(db db) HolderRepo {
	return &pgHolderRepo{db: db}
}

// FindPetTypes returns all pet types ordered by name.
func (r *pgHolderRepo) FindPetTypes(ctx context.Context) ([]domain.PetType, error) {
	const q = `SELECT id, name FROM pet_types ORDER BY name`

	rows, err := r.db.Query(ctx, q)
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
// Wildcards in prefix are escaped so the match is a literal prefix.
func (r *pgHolderRepo) FindByLastName(ctx context.Context, prefix string, p domain.PaginationParams) ([]*domain.Holder, int64, error) {
	holders, total, err := r.findPage(ctx, prefix, p)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.HolderRepo.FindByLastName: %w", err)
	}
	return holders, total, nil
}

// FindAll returns one page of all holders.
func (r *pgHolderRepo) FindAll(ctx context.Context, p domain.PaginationParams) ([]*domain.Holder, int64, error) {
	holders, total, err := r.findPage(ctx, "", p)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.HolderRepo.FindAll: %w", err)
	}
	return holders, total, nil
}

func (r *pgHolderRepo) findPage(ctx context.Context, prefix string, p domain.PaginationParams) ([]*domain.Holder, int64, error) {
	const countQ = `
		SELECT count(*)
		FROM holders
		WHERE last_name LIKE @pattern ESCAPE '\'`

	const pageQ = `
		SELECT id, first_name, last_name, address, city, telephone
		FROM holders
		WHERE last_name LIKE @pattern ESCAPE '\'
		ORDER BY id
		LIMIT @limit OFFSET @offset`

	pattern := escapeLike(prefix) + "%"

	var total int64
	if err := r.db.QueryRow(ctx, countQ, pgx.NamedArgs{"pattern": pattern}).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count: %w", err)
	}

	rows, err := r.db.Query(ctx, pageQ, pgx.NamedArgs{
		"pattern": pattern,
		"limit":   p.Limit,
		"offset":  p.Offset(),
	})
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	holders := []*domain.Holder{}
	for rows.Next() {
		h, err := scanHolder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan: %w", err)
		}
		holders = append(holders, h)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows: %w", err)
	}

	if err := r.loadPets(ctx, holders); err != nil {
		return nil, 0, err
	}
	return holders, total, nil
}

// FindByID retrieves a holder by primary key together with its pets and visits.
func (r *pgHolderRepo) FindByID(ctx context.Context, id int) (*domain.Holder, error) {
	const q = `
		SELECT id, first_name, last_name, address, city, telephone
		FROM holders
		WHERE id = @id`

	h, err := scanHolder(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
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

// loadPets fetches the pets of all given holders in one query and attaches
// them ordered by name.
func (r *pgHolderRepo) loadPets(ctx context.Context, holders []*domain.Holder) error {
	if len(holders) == 0 {
		return nil
	}
	const q = `
		SELECT p.id, p.name, p.birth_date, p.owner_id, t.id, t.name
		FROM pets p
		JOIN pet_types t ON t.id = p.type_id
		WHERE p.owner_id = ANY(@owner_ids)
		ORDER BY p.name, p.id`

	byID, ids := holderIndex(holders)
	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"owner_ids": ids})
	if err != nil {
		return fmt.Errorf("load pets: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			p         domain.Pet
			birthDate pgtype.Date
		)
		if err := rows.Scan(&p.ID, &p.Name, &birthDate, &p.OwnerID, &p.Type.ID, &p.Type.Name); err != nil {
			return fmt.Errorf("load pets: scan: %w", err)
		}
		p.BirthDate = birthDate.Time
		h := byID[p.OwnerID]
		h.Pets = append(h.Pets, &p)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load pets: rows: %w", err)
	}
	return nil
}

// loadVisits fetches the visits of every pet of h ordered by date.
func (r *pgHolderRepo) loadVisits(ctx context.Context, h *domain.Holder) error {
	if len(h.Pets) == 0 {
		return nil
	}
	const q = `
		SELECT id, pet_id, visit_date, description
		FROM visits
		WHERE pet_id = ANY(@pet_ids)
		ORDER BY visit_date, id`

	byID, ids := petIndex(h)
	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"pet_ids": ids})
	if err != nil {
		return fmt.Errorf("load visits: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			v    domain.Visit
			date pgtype.Date
		)
		if err := rows.Scan(&v.ID, &v.PetID, &date, &v.Description); err != nil {
			return fmt.Errorf("load visits: scan: %w", err)
		}
		v.Date = date.Time
		pet := byID[v.PetID]
		pet.Visits = append(pet.Visits, &v)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load visits: rows: %w", err)
	}
	return nil
}

// Save upserts the whole aggregate inside one transaction.
func (r *pgHolderRepo) Save(ctx context.Context, h *domain.Holder) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return saveError("repo.HolderRepo.Save: begin", err)
	}
	// Rollback after a successful Commit is a no-op.
	defer func() { _ = tx.Rollback(ctx) }()

	pending, err := writeAggregate(ctx, pgWriter{tx: tx}, h)
	if err != nil {
		return saveError("repo.HolderRepo.Save", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return saveError("repo.HolderRepo.Save: commit", err)
	}
	pending.apply()
	return nil
}

// pgWriter runs the aggregate write statements inside one pgx transaction.
type pgWriter struct {
	tx pgx.Tx
}

func (w pgWriter) insertHolder(ctx context.Context, h *domain.Holder) (int, error) {
	const q = `
		INSERT INTO holders (first_name, last_name, address, city, telephone)
		VALUES (@first_name, @last_name, @address, @city, @telephone)
		RETURNING id`

	var id int
	err := w.tx.QueryRow(ctx, q, holderArgs(h)).Scan(&id)
	return id, err
}

func (w pgWriter) updateHolder(ctx context.Context, h *domain.Holder) error {
	const q = `
		UPDATE holders
		SET first_name = @first_name,
		    last_name  = @last_name,
		    address    = @address,
		    city       = @city,
		    telephone  = @telephone
		WHERE id = @id`

	args := holderArgs(h)
	args["id"] = h.ID
	return execOne(ctx, w.tx, q, args)
}

func (w pgWriter) insertPet(ctx context.Context, ownerID int, p *domain.Pet) (int, error) {
	const q = `
		INSERT INTO pets (name, birth_date, type_id, owner_id)
		VALUES (@name, @birth_date, @type_id, @owner_id)
		RETURNING id`

	var id int
	err := w.tx.QueryRow(ctx, q, petArgs(ownerID, p)).Scan(&id)
	return id, err
}

func (w pgWriter) updatePet(ctx context.Context, ownerID int, p *domain.Pet) error {
	const q = `
		UPDATE pets
		SET name       = @name,
		    birth_date = @birth_date,
		    type_id    = @type_id,
		    owner_id   = @owner_id
		WHERE id = @id`

	args := petArgs(ownerID, p)
	args["id"] = p.ID
	return execOne(ctx, w.tx, q, args)
}

func (w pgWriter) insertVisit(ctx context.Context, petID int, v *domain.Visit) (int, error) {
	const q = `
		INSERT INTO visits (pet_id, visit_date, description)
		VALUES (@pet_id, @visit_date, @description)
		RETURNING id`

	var id int
	err := w.tx.QueryRow(ctx, q, visitArgs(petID, v)).Scan(&id)
	return id, err
}

func (w pgWriter) updateVisit(ctx context.Context, petID int, v *domain.Visit) error {
	const q = `
		UPDATE visits
		SET pet_id      = @pet_id,
		    visit_date  = @visit_date,
		    description = @description
		WHERE id = @id`

	args := visitArgs(petID, v)
	args["id"] = v.ID
	return execOne(ctx, w.tx, q, args)
}

// execOne runs an UPDATE and reports domain.ErrNotFound when it touched no row.
func execOne(ctx context.Context, tx pgx.Tx, q string, args pgx.NamedArgs) error {
	tag, err := tx.Exec(ctx, q, args)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func holderArgs(h *domain.Holder) pgx.NamedArgs {
	return pgx.NamedArgs{
		"first_name": h.FirstName,
		"last_name":  h.LastName,
		"address":    h.Address,
		"city":       h.City,
		"telephone":  h.Telephone,
	}
}

func petArgs(ownerID int, p *domain.Pet) pgx.NamedArgs {
	return pgx.NamedArgs{
		"name":       p.Name,
		"birth_date": pgtype.Date{Time: domain.Day(p.BirthDate), Valid: true},
		"type_id":    p.Type.ID,
		"owner_id":   ownerID,
	}
}

func visitArgs(petID int, v *domain.Visit) pgx.NamedArgs {
	return pgx.NamedArgs{
		"pet_id":      petID,
		"visit_date":  pgtype.Date{Time: domain.Day(v.Date), Valid: true},
		"description": v.Description,
	}
}

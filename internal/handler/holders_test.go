package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petclinic/records/internal/domain"
	"github.com/petclinic/records/internal/handler"
	"github.com/petclinic/records/internal/service"
)

// mockHolderServicer is a test double for handler.HolderServicer.
// Set only the method fields your test needs.
type mockHolderServicer struct {
	petTypes  func(ctx context.Context) ([]domain.PetType, error)
	search    func(ctx context.Context, lastName string, page int) (domain.Page[*domain.Holder], error)
	get       func(ctx context.Context, id int) (*domain.Holder, error)
	create    func(ctx context.Context, in service.HolderInput) (*domain.Holder, error)
	update    func(ctx context.Context, id int, in service.HolderInput) (*domain.Holder, error)
	addPet    func(ctx context.Context, holderID int, in service.PetInput) (*domain.Pet, error)
	updatePet func(ctx context.Context, holderID, petID int, in service.PetInput) (*domain.Pet, error)
	addVisit  func(ctx context.Context, holderID, petID int, in service.VisitInput) (*domain.Visit, error)
}

func (m *mockHolderServicer) PetTypes(ctx context.Context) ([]domain.PetType, error) {
	return m.petTypes(ctx)
}
func (m *mockHolderServicer) Search(ctx context.Context, lastName string, page int) (domain.Page[*domain.Holder], error) {
	return m.search(ctx, lastName, page)
}
func (m *mockHolderServicer) Get(ctx context.Context, id int) (*domain.Holder, error) {
	return m.get(ctx, id)
}
func (m *mockHolderServicer) Create(ctx context.Context, in service.HolderInput) (*domain.Holder, error) {
	return m.create(ctx, in)
}
func (m *mockHolderServicer) Update(ctx context.Context, id int, in service.HolderInput) (*domain.Holder, error) {
	return m.update(ctx, id, in)
}
func (m *mockHolderServicer) AddPet(ctx context.Context, holderID int, in service.PetInput) (*domain.Pet, error) {
	return m.addPet(ctx, holderID, in)
}
func (m *mockHolderServicer) UpdatePet(ctx context.Context, holderID, petID int, in service.PetInput) (*domain.Pet, error) {
	return m.updatePet(ctx, holderID, petID, in)
}
func (m *mockHolderServicer) AddVisit(ctx context.Context, holderID, petID int, in service.VisitInput) (*domain.Visit, error) {
	return m.addVisit(ctx, holderID, petID, in)
}

// compile-time check: mockHolderServicer must satisfy handler.HolderServicer.
var _ handler.HolderServicer = (*mockHolderServicer)(nil)

// ---- helpers ---------------------------------------------------------------

// newHTTPHandler wires a Server with the given mock into a chi router the
// same way main does, minus the middleware.
func newHTTPHandler(svc handler.HolderServicer) http.Handler {
	return handler.NewRouter(handler.NewServer(svc, nil, nil))
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func serve(t *testing.T, svc handler.HolderServicer, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == nil {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, jsonBody(t, body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	newHTTPHandler(svc).ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) handler.ErrorResponse {
	t.Helper()
	var resp handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func holderFixture() *domain.Holder {
	h := &domain.Holder{
		ID: 6, FirstName: "Jean", LastName: "Coleman", Address: "105 N. Lake St.", City: "Monona", Telephone: "6085552654",
	}
	h.AddPet(&domain.Pet{
		ID:        7,
		Name:      "Samantha",
		BirthDate: time.Date(2012, 9, 4, 0, 0, 0, 0, time.UTC),
		Type:      domain.PetType{ID: 1, Name: "cat"},
		Visits: []*domain.Visit{
			{ID: 1, PetID: 7, Date: time.Date(2013, 1, 1, 0, 0, 0, 0, time.UTC), Description: "rabies shot"},
		},
	})
	return h
}

func searchResult(total int64, holders ...*domain.Holder) func(context.Context, string, int) (domain.Page[*domain.Holder], error) {
	return func(_ context.Context, _ string, page int) (domain.Page[*domain.Holder], error) {
		p := domain.NewPaginationParams(&page, domain.HolderPageSize)
		return domain.NewPage(holders, p, total), nil
	}
}

// ---- GET /pettypes ---------------------------------------------------------

func TestListPetTypes_200(t *testing.T) {
	svc := &mockHolderServicer{
		petTypes: func(context.Context) ([]domain.PetType, error) {
			return []domain.PetType{{ID: 5, Name: "bird"}, {ID: 1, Name: "cat"}}, nil
		},
	}

	rec := serve(t, svc, http.MethodGet, "/pettypes", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp []handler.PetType
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, []handler.PetType{{ID: 5, Name: "bird"}, {ID: 1, Name: "cat"}}, resp)
}

// ---- GET /holders ----------------------------------------------------------

func TestListHolders_200(t *testing.T) {
	var gotLastName string
	var gotPage int
	a, b := holderFixture(), &domain.Holder{ID: 4, LastName: "Davis"}
	svc := &mockHolderServicer{
		search: func(ctx context.Context, lastName string, page int) (domain.Page[*domain.Holder], error) {
			gotLastName, gotPage = lastName, page
			return searchResult(7, a, b)(ctx, lastName, page)
		},
	}

	rec := serve(t, svc, http.MethodGet, "/holders?lastName=D&page=2", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "D", gotLastName)
	assert.Equal(t, 2, gotPage)

	var resp handler.HolderPage
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Data, 2)
	assert.Equal(t, handler.Pagination{Page: 2, Limit: 5, Total: 7, TotalPages: 2}, resp.Pagination)
	assert.Equal(t, "Samantha", resp.Data[0].Pets[0].Name)
	assert.Equal(t, "cat", resp.Data[0].Pets[0].Type)
	assert.Equal(t, "2012-09-04", resp.Data[0].Pets[0].BirthDate.String())
	assert.NotNil(t, resp.Data[1].Pets, "pets encode as [] not null")
}

func TestListHolders_DefaultsToFirstPageAndAllNames(t *testing.T) {
	var gotLastName = "unset"
	var gotPage int
	svc := &mockHolderServicer{
		search: func(ctx context.Context, lastName string, page int) (domain.Page[*domain.Holder], error) {
			gotLastName, gotPage = lastName, page
			return searchResult(10, &domain.Holder{ID: 1}, &domain.Holder{ID: 2})(ctx, lastName, page)
		},
	}

	rec := serve(t, svc, http.MethodGet, "/holders", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "", gotLastName)
	assert.Equal(t, 1, gotPage)
}

func TestListHolders_302_SingleMatch(t *testing.T) {
	svc := &mockHolderServicer{search: searchResult(1, holderFixture())}

	rec := serve(t, svc, http.MethodGet, "/holders?lastName=Coleman", nil)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/holders/6", rec.Header().Get("Location"))
}

func TestListHolders_404_NoMatch(t *testing.T) {
	svc := &mockHolderServicer{search: searchResult(0)}

	rec := serve(t, svc, http.MethodGet, "/holders?lastName=Daviss", nil)

	require.Equal(t, http.StatusNotFound, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "not_found", resp.Error.Code)
	require.Len(t, resp.Error.Fields, 1)
	assert.Equal(t, handler.FieldError{Field: "lastName", Code: domain.CodeNotFound, Message: "not found"}, resp.Error.Fields[0])
}

func TestListHolders_400_BadPage(t *testing.T) {
	svc := &mockHolderServicer{}

	rec := serve(t, svc, http.MethodGet, "/holders?page=abc", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "bad_request", decodeError(t, rec).Error.Code)
}

func TestListHolders_500_ServiceError(t *testing.T) {
	svc := &mockHolderServicer{
		search: func(context.Context, string, int) (domain.Page[*domain.Holder], error) {
			return domain.Page[*domain.Holder]{}, errors.New("connection reset")
		},
	}

	rec := serve(t, svc, http.MethodGet, "/holders", nil)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "internal_error", resp.Error.Code)
	assert.NotContains(t, resp.Error.Message, "connection reset")
}

// ---- POST /holders ---------------------------------------------------------

func TestCreateHolder_201(t *testing.T) {
	var got service.HolderInput
	svc := &mockHolderServicer{
		create: func(_ context.Context, in service.HolderInput) (*domain.Holder, error) {
			got = in
			return &domain.Holder{ID: 11, FirstName: in.FirstName, LastName: in.LastName}, nil
		},
	}

	rec := serve(t, svc, http.MethodPost, "/holders", map[string]any{
		"firstName": "Sam",
		"lastName":  "Schultz",
		"address":   "4, Evans Street",
		"city":      "Wollongong",
		"telephone": "4444444444",
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "/holders/11", rec.Header().Get("Location"))
	assert.Equal(t, service.HolderInput{
		FirstName: "Sam", LastName: "Schultz", Address: "4, Evans Street", City: "Wollongong", Telephone: "4444444444",
	}, got)

	var resp handler.Holder
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 11, resp.ID)
	assert.Equal(t, "Schultz", resp.LastName)
}

func TestCreateHolder_422_ValidationError(t *testing.T) {
	svc := &mockHolderServicer{
		create: func(context.Context, service.HolderInput) (*domain.Holder, error) {
			v := &domain.ValidationError{}
			v.Reject("telephone", domain.CodeDigits, "numeric value out of bounds")
			return nil, v
		},
	}

	rec := serve(t, svc, http.MethodPost, "/holders", map[string]any{"telephone": "abc"})

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "validation_error", resp.Error.Code)
	require.Len(t, resp.Error.Fields, 1)
	assert.Equal(t, "telephone", resp.Error.Fields[0].Field)
	assert.Equal(t, domain.CodeDigits, resp.Error.Fields[0].Code)
}

func TestCreateHolder_400_MalformedBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/holders", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()

	newHTTPHandler(&mockHolderServicer{}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateHolder_413_BodyTooLarge(t *testing.T) {
	h := newHTTPHandler(&mockHolderServicer{})
	limited := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, 8)
		h.ServeHTTP(w, r)
	})
	req := httptest.NewRequest(http.MethodPost, "/holders", jsonBody(t, map[string]any{"firstName": "Sam"}))
	rec := httptest.NewRecorder()

	limited.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

// ---- GET/PUT /holders/{holderId} -------------------------------------------

func TestGetHolder_200(t *testing.T) {
	svc := &mockHolderServicer{
		get: func(_ context.Context, id int) (*domain.Holder, error) {
			require.Equal(t, 6, id)
			return holderFixture(), nil
		},
	}

	rec := serve(t, svc, http.MethodGet, "/holders/6", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp handler.Holder
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Coleman", resp.LastName)
	require.Len(t, resp.Pets, 1)
	assert.Equal(t, 6, resp.Pets[0].OwnerID)
	require.Len(t, resp.Pets[0].Visits, 1)
	assert.Equal(t, "2013-01-01", resp.Pets[0].Visits[0].Date.String())
}

func TestGetHolder_404(t *testing.T) {
	svc := &mockHolderServicer{
		get: func(_ context.Context, id int) (*domain.Holder, error) {
			return nil, fmt.Errorf("repo.HolderRepo.FindByID: %w", domain.ErrNotFound)
		},
	}

	rec := serve(t, svc, http.MethodGet, "/holders/999", nil)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "holder not found", decodeError(t, rec).Error.Message)
}

func TestGetHolder_400_NonNumericID(t *testing.T) {
	rec := serve(t, &mockHolderServicer{}, http.MethodGet, "/holders/abc", nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(t, rec).Error.Message, "holderId")
}

func TestUpdateHolder_200(t *testing.T) {
	var gotID int
	svc := &mockHolderServicer{
		update: func(_ context.Context, id int, in service.HolderInput) (*domain.Holder, error) {
			gotID = id
			h := holderFixture()
			h.LastName = in.LastName
			return h, nil
		},
	}

	rec := serve(t, svc, http.MethodPut, "/holders/6", map[string]any{"lastName": "ColemanX"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 6, gotID)
	var resp handler.Holder
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "ColemanX", resp.LastName)
}

func TestUpdateHolder_404(t *testing.T) {
	svc := &mockHolderServicer{
		update: func(context.Context, int, service.HolderInput) (*domain.Holder, error) {
			return nil, domain.ErrNotFound
		},
	}

	rec := serve(t, svc, http.MethodPut, "/holders/999", map[string]any{"lastName": "X"})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// ---- pets ------------------------------------------------------------------

func TestCreatePet_201(t *testing.T) {
	var got service.PetInput
	svc := &mockHolderServicer{
		addPet: func(_ context.Context, holderID int, in service.PetInput) (*domain.Pet, error) {
			got = in
			return &domain.Pet{ID: 14, Name: in.Name, BirthDate: in.BirthDate, Type: domain.PetType{ID: 2, Name: "dog"}, OwnerID: holderID}, nil
		},
	}

	rec := serve(t, svc, http.MethodPost, "/holders/6/pets", map[string]any{
		"name":      "bowser",
		"birthDate": "2020-03-01",
		"type":      "dog",
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "/holders/6/pets/14", rec.Header().Get("Location"))
	assert.Equal(t, "bowser", got.Name)
	assert.Equal(t, "dog", got.Type)
	assert.Equal(t, time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC), got.BirthDate)

	var resp handler.Pet
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 14, resp.ID)
	assert.Equal(t, 6, resp.OwnerID)
	assert.NotNil(t, resp.Visits)
}

func TestCreatePet_422_Duplicate(t *testing.T) {
	svc := &mockHolderServicer{
		addPet: func(context.Context, int, service.PetInput) (*domain.Pet, error) {
			v := &domain.ValidationError{}
			v.Reject("name", domain.CodeDuplicate, "already exists")
			return nil, v
		},
	}

	rec := serve(t, svc, http.MethodPost, "/holders/6/pets", map[string]any{"name": "Max", "birthDate": "2020-03-01", "type": "cat"})

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decodeError(t, rec)
	require.Len(t, resp.Error.Fields, 1)
	assert.Equal(t, handler.FieldError{Field: "name", Code: domain.CodeDuplicate, Message: "already exists"}, resp.Error.Fields[0])
}

func TestCreatePet_400_BadDate(t *testing.T) {
	rec := serve(t, &mockHolderServicer{}, http.MethodPost, "/holders/6/pets", map[string]any{"name": "x", "birthDate": "03/01/2020"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdatePet_200(t *testing.T) {
	var gotHolder, gotPet int
	svc := &mockHolderServicer{
		updatePet: func(_ context.Context, holderID, petID int, in service.PetInput) (*domain.Pet, error) {
			gotHolder, gotPet = holderID, petID
			return &domain.Pet{ID: petID, Name: in.Name, Type: domain.PetType{ID: 5, Name: "bird"}, OwnerID: holderID}, nil
		},
	}

	rec := serve(t, svc, http.MethodPut, "/holders/6/pets/7", map[string]any{"name": "SamanthaX", "birthDate": "2012-09-04", "type": "bird"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 6, gotHolder)
	assert.Equal(t, 7, gotPet)
}

func TestUpdatePet_404(t *testing.T) {
	svc := &mockHolderServicer{
		updatePet: func(context.Context, int, int, service.PetInput) (*domain.Pet, error) {
			return nil, domain.ErrNotFound
		},
	}

	rec := serve(t, svc, http.MethodPut, "/holders/6/pets/1", map[string]any{"name": "Leo"})

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "holder or pet not found", decodeError(t, rec).Error.Message)
}

// ---- visits ----------------------------------------------------------------

func TestCreateVisit_201(t *testing.T) {
	var got service.VisitInput
	svc := &mockHolderServicer{
		addVisit: func(_ context.Context, holderID, petID int, in service.VisitInput) (*domain.Visit, error) {
			got = in
			return &domain.Visit{ID: 5, PetID: petID, Date: *in.Date, Description: in.Description}, nil
		},
	}

	rec := serve(t, svc, http.MethodPost, "/holders/6/pets/7/visits", map[string]any{"date": "2013-01-02", "description": "test"})

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, got.Date)
	assert.Equal(t, time.Date(2013, 1, 2, 0, 0, 0, 0, time.UTC), *got.Date)

	var resp handler.Visit
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 5, resp.ID)
	assert.Equal(t, 7, resp.PetID)
	assert.Equal(t, "2013-01-02", resp.Date.String())
}

func TestCreateVisit_OmittedDate(t *testing.T) {
	var got service.VisitInput
	svc := &mockHolderServicer{
		addVisit: func(_ context.Context, _, petID int, in service.VisitInput) (*domain.Visit, error) {
			got = in
			return &domain.Visit{ID: 5, PetID: petID, Date: time.Now(), Description: in.Description}, nil
		},
	}

	rec := serve(t, svc, http.MethodPost, "/holders/6/pets/7/visits", map[string]any{"description": "checkup"})

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Nil(t, got.Date)
}

func TestCreateVisit_404_PetOfAnotherHolder(t *testing.T) {
	svc := &mockHolderServicer{
		addVisit: func(context.Context, int, int, service.VisitInput) (*domain.Visit, error) {
			return nil, fmt.Errorf("pet 1 of holder 6: %w", domain.ErrNotFound)
		},
	}

	rec := serve(t, svc, http.MethodPost, "/holders/6/pets/1/visits", map[string]any{"description": "checkup"})

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "holder or pet not found", decodeError(t, rec).Error.Message)
}

func TestCreateVisit_404_UnknownHolder(t *testing.T) {
	svc := &mockHolderServicer{
		addVisit: func(context.Context, int, int, service.VisitInput) (*domain.Visit, error) {
			return nil, fmt.Errorf("holder 999: %w", domain.ErrNotFound)
		},
	}

	rec := serve(t, svc, http.MethodPost, "/holders/999/pets/1/visits", map[string]any{"description": "checkup"})

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "holder or pet not found", decodeError(t, rec).Error.Message)
}

func TestCreateVisit_500_Persistence(t *testing.T) {
	svc := &mockHolderServicer{
		addVisit: func(context.Context, int, int, service.VisitInput) (*domain.Visit, error) {
			return nil, fmt.Errorf("repo.HolderRepo.Save: %w", domain.ErrPersistence)
		},
	}

	rec := serve(t, svc, http.MethodPost, "/holders/6/pets/7/visits", map[string]any{"description": "checkup"})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

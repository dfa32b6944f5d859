package repo

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"

	"tripplanner/internal/domain"
)

var tripColumns = []string{"id", "user_email", "user_selection", "trip_data", "created_at", "updated_at"}

const tripID = "3b241101-e2bb-4255-8caf-4136c566a962"

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock
}

func parisSelection() domain.TripSelection {
	return domain.TripSelection{Location: "Paris", NoOfDays: 3, Budget: domain.BudgetModerate, Travels: domain.TravelCouple}
}

func TestTripRepositoryCreateAndGet(t *testing.T) {
	mock := newMock(t)
	repo := NewTripRepository(mock)

	sel := parisSelection()
	selJSON, _ := json.Marshal(sel)
	data := []byte(`{"itinerary":[{"day":1}]}`)
	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`insert into trips`).
		WithArgs("a@b.com", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(tripColumns).AddRow(tripID, "a@b.com", selJSON, data, now, now))

	created, err := repo.Create(context.Background(), &domain.Trip{UserSelection: sel, UserEmail: "a@b.com", TripData: data})
	if err != nil {
		t.Fatalf("create trip: %v", err)
	}
	if created.ID != tripID || !created.CreatedAt.Equal(now) {
		t.Fatalf("unexpected created trip: %+v", created)
	}

	mock.ExpectQuery(`from trips\s+where id = \$1::uuid`).
		WithArgs(tripID).
		WillReturnRows(pgxmock.NewRows(tripColumns).AddRow(tripID, "a@b.com", selJSON, data, now, now))

	loaded, err := repo.GetByID(context.Background(), tripID)
	if err != nil {
		t.Fatalf("get trip: %v", err)
	}
	if loaded.UserSelection != sel || loaded.UserEmail != "a@b.com" {
		t.Fatalf("round trip mismatch: %+v", loaded)
	}
	if string(loaded.TripData) != string(data) {
		t.Fatalf("TripData = %s, want %s", loaded.TripData, data)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTripRepositoryGetNotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewTripRepository(mock)

	mock.ExpectQuery(`from trips`).WithArgs(tripID).WillReturnError(pgx.ErrNoRows)

	if _, err := repo.GetByID(context.Background(), tripID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("GetByID error = %v, want ErrNotFound", err)
	}
	if _, err := repo.GetByID(context.Background(), "not-a-uuid"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("GetByID malformed id error = %v, want ErrNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTripRepositoryCreateStoreFailure(t *testing.T) {
	mock := newMock(t)
	repo := NewTripRepository(mock)

	mock.ExpectQuery(`insert into trips`).WillReturnError(errors.New("connection refused"))

	_, err := repo.Create(context.Background(), &domain.Trip{UserSelection: parisSelection(), UserEmail: "a@b.com"})
	if !domain.IsPersistence(err) {
		t.Fatalf("Create error = %v, want PersistenceError", err)
	}
}

func TestTripRepositoryUpdate(t *testing.T) {
	mock := newMock(t)
	repo := NewTripRepository(mock)

	selJSON, _ := json.Marshal(parisSelection())
	created := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	updated := created.Add(time.Hour)
	email := "c@d.com"

	mock.ExpectQuery(`update trips`).
		WithArgs(tripID, nil, pgxmock.AnyArg(), "c@d.com").
		WillReturnRows(pgxmock.NewRows(tripColumns).AddRow(tripID, email, selJSON, []byte(`{"hotels":[]}`), created, updated))

	trip, err := repo.Update(context.Background(), tripID, domain.TripPatch{
		UserEmail: &email,
		TripData:  json.RawMessage(`{"hotels":[]}`),
	})
	if err != nil {
		t.Fatalf("update trip: %v", err)
	}
	if trip.UserEmail != email || !trip.UpdatedAt.After(trip.CreatedAt) {
		t.Fatalf("unexpected updated trip: %+v", trip)
	}

	mock.ExpectQuery(`update trips`).
		WithArgs(tripID, nil, nil, nil).
		WillReturnError(pgx.ErrNoRows)
	if _, err := repo.Update(context.Background(), tripID, domain.TripPatch{}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Update missing error = %v, want ErrNotFound", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTripRepositoryDeleteIsIdempotent(t *testing.T) {
	mock := newMock(t)
	repo := NewTripRepository(mock)

	mock.ExpectExec(`delete from trips`).WithArgs(tripID).WillReturnResult(pgxmock.NewResult("DELETE", 0))

	if err := repo.Delete(context.Background(), tripID); err != nil {
		t.Fatalf("delete trip: %v", err)
	}
	if err := repo.Delete(context.Background(), "missing"); err != nil {
		t.Fatalf("delete malformed id: %v", err)
	}

	mock.ExpectExec(`delete from trips`).WithArgs(tripID).WillReturnError(errors.New("boom"))
	if err := repo.Delete(context.Background(), tripID); !domain.IsPersistence(err) {
		t.Fatalf("Delete error = %v, want PersistenceError", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTripRepositoryListByUser(t *testing.T) {
	mock := newMock(t)
	repo := NewTripRepository(mock)

	selJSON, _ := json.Marshal(parisSelection())
	newer := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
	older := newer.Add(-48 * time.Hour)

	mock.ExpectQuery(`order by created_at desc`).
		WithArgs("a@b.com").
		WillReturnRows(pgxmock.NewRows(tripColumns).
			AddRow("11111111-1111-4111-8111-111111111111", "a@b.com", selJSON, []byte(`{}`), newer, newer).
			AddRow("22222222-2222-4222-8222-222222222222", "a@b.com", selJSON, []byte(`{}`), older, older))

	trips, err := repo.ListByUser(context.Background(), "a@b.com")
	if err != nil {
		t.Fatalf("list trips: %v", err)
	}
	if len(trips) != 2 {
		t.Fatalf("len(trips) = %d, want 2", len(trips))
	}
	if !trips[0].CreatedAt.After(trips[1].CreatedAt) {
		t.Fatal("expected trips ordered by createdAt descending")
	}

	mock.ExpectQuery(`order by created_at desc`).
		WithArgs("nobody@b.com").
		WillReturnRows(pgxmock.NewRows(tripColumns))

	empty, err := repo.ListByUser(context.Background(), "nobody@b.com")
	if err != nil {
		t.Fatalf("list trips: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", empty)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/ride-dispatch/internal/domain"
	"github.com/pkordes/ride-dispatch/internal/notify"
	"github.com/pkordes/ride-dispatch/internal/service"
)

// validInput returns a two-day trip: 280 km, 2026-09-01 09:00 to 2026-09-02 18:00.
func validInput(categoryID uuid.UUID) service.CreateBookingInput {
	return service.CreateBookingInput{
		PickupLocation: "Mumbai",
		DropLocation:   "Pune",
		Distance:       280,
		PickupDate:     time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC),
		RideEndDate:    time.Date(2026, 9, 2, 18, 0, 0, 0, time.UTC),
		MaleCount:      2,
		FemaleCount:    1,
		KidsCount:      1,
		CategoryID:     categoryID,
		ACType:         domain.ACTypeAC,
	}
}

// echoBookingRepo echoes the booking it receives, the way the real repo
// returns the inserted row. Useful for tests that only exercise validation
// and derivation logic.
func echoBookingRepo() *mockBookingRepo {
	return &mockBookingRepo{
		create: func(_ context.Context, b domain.Booking, _ domain.HistoryEntry) (domain.Booking, error) {
			b.ID = uuid.New()
			b.Status = domain.StatusInReview
			return b, nil
		},
	}
}

func sedanCategory(id uuid.UUID) *mockCategoryRepo {
	return &mockCategoryRepo{
		getByID: func(_ context.Context, got uuid.UUID) (domain.VehicleCategory, error) {
			if got != id {
				return domain.VehicleCategory{}, domain.ErrNotFound
			}
			return domain.VehicleCategory{ID: id, Name: "Sedan", MinPricePerKm: 12}, nil
		},
	}
}

func newBookingService(bookings *mockBookingRepo, categories *mockCategoryRepo) *service.BookingService {
	return service.NewBookingService(bookings, categories, notify.Nop{}, discardLogger())
}

// ---- Create tests ----------------------------------------------------------

func TestBookingService_Create_DerivesPriceAndCounts(t *testing.T) {
	categoryID := uuid.New()
	svc := newBookingService(echoBookingRepo(), sedanCategory(categoryID))

	got, err := svc.Create(context.Background(), passenger(), validInput(categoryID))

	require.NoError(t, err)
	assert.Equal(t, 2, got.JourneyDays, "33 hours rounds up to 2 days")
	assert.Equal(t, 4, got.TotalPassengers)
	// 12 per km × 280 km × 2 days
	assert.InDelta(t, 6720.0, got.InitialPrice, 0.001)
	assert.Equal(t, domain.StatusInReview, got.Status)
}

func TestBookingService_Create_RecordsHistory(t *testing.T) {
	categoryID := uuid.New()
	var entry domain.HistoryEntry
	bookings := &mockBookingRepo{
		create: func(_ context.Context, b domain.Booking, e domain.HistoryEntry) (domain.Booking, error) {
			entry = e
			return b, nil
		},
	}
	svc := newBookingService(bookings, sedanCategory(categoryID))

	_, err := svc.Create(context.Background(), passenger(), validInput(categoryID))

	require.NoError(t, err)
	assert.Equal(t, "Booking created", entry.Event)
	assert.Equal(t, domain.RolePassenger, entry.Role)
}

func TestBookingService_Create_OnlyPassengers(t *testing.T) {
	categoryID := uuid.New()
	svc := newBookingService(echoBookingRepo(), sedanCategory(categoryID))

	for _, actor := range []domain.Actor{rider(), admin()} {
		_, err := svc.Create(context.Background(), actor, validInput(categoryID))
		assert.ErrorIs(t, err, domain.ErrForbidden, "role %s", actor.Role)
	}
}

func TestBookingService_Create_Validation(t *testing.T) {
	categoryID := uuid.New()
	svc := newBookingService(echoBookingRepo(), sedanCategory(categoryID))

	tests := []struct {
		name   string
		mutate func(*service.CreateBookingInput)
	}{
		{"blank pickup", func(in *service.CreateBookingInput) { in.PickupLocation = "  " }},
		{"blank drop", func(in *service.CreateBookingInput) { in.DropLocation = "" }},
		{"end before pickup", func(in *service.CreateBookingInput) {
			in.RideEndDate = in.PickupDate.Add(-time.Hour)
		}},
		{"negative distance", func(in *service.CreateBookingInput) { in.Distance = -1 }},
		{"negative count", func(in *service.CreateBookingInput) { in.KidsCount = -1 }},
		{"missing category", func(in *service.CreateBookingInput) { in.CategoryID = uuid.Nil }},
		{"bad ac type", func(in *service.CreateBookingInput) { in.ACType = "chilled" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput(categoryID)
			tt.mutate(&input)

			_, err := svc.Create(context.Background(), passenger(), input)

			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestBookingService_Create_UnknownCategory(t *testing.T) {
	svc := newBookingService(echoBookingRepo(), sedanCategory(uuid.New()))

	_, err := svc.Create(context.Background(), passenger(), validInput(uuid.New()))

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ---- visibility tests ------------------------------------------------------

func TestBookingService_GetByID_Scoping(t *testing.T) {
	owner := passenger()
	boundRider := rider()
	offeredRider := rider()

	booking := domain.Booking{
		ID:            uuid.New(),
		PassengerID:   owner.ID,
		Status:        domain.StatusOfferSent,
		OfferedRiders: []uuid.UUID{offeredRider.ID},
	}
	bookings := &mockBookingRepo{
		getByID: func(_ context.Context, _ uuid.UUID) (domain.Booking, error) { return booking, nil },
	}
	svc := newBookingService(bookings, nil)

	_, err := svc.GetByID(context.Background(), owner, booking.ID)
	assert.NoError(t, err, "owner sees own booking")

	_, err = svc.GetByID(context.Background(), admin(), booking.ID)
	assert.NoError(t, err, "admin sees everything")

	_, err = svc.GetByID(context.Background(), offeredRider, booking.ID)
	assert.NoError(t, err, "offered rider sees the booking")

	_, err = svc.GetByID(context.Background(), passenger(), booking.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden, "stranger passenger blocked")

	_, err = svc.GetByID(context.Background(), boundRider, booking.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden, "unrelated rider blocked")
}

func TestBookingService_List_AdminOnly(t *testing.T) {
	svc := newBookingService(&mockBookingRepo{
		list: func(_ context.Context, _ domain.BookingFilter) ([]domain.Booking, error) { return nil, nil },
	}, nil)

	got, err := svc.List(context.Background(), admin(), domain.BookingFilter{})
	require.NoError(t, err)
	assert.NotNil(t, got, "nil slice normalized for JSON encoding")

	_, err = svc.List(context.Background(), passenger(), domain.BookingFilter{})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestBookingService_List_RejectsUnknownStatusFilter(t *testing.T) {
	svc := newBookingService(&mockBookingRepo{}, nil)

	_, err := svc.List(context.Background(), admin(), domain.BookingFilter{Status: "limbo"})

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestBookingService_ListForPassenger_SelfOrAdmin(t *testing.T) {
	owner := passenger()
	svc := newBookingService(&mockBookingRepo{
		list: func(_ context.Context, f domain.BookingFilter) ([]domain.Booking, error) {
			assert.Equal(t, owner.ID, f.PassengerID)
			return []domain.Booking{{PassengerID: owner.ID}}, nil
		},
	}, nil)

	_, err := svc.ListForPassenger(context.Background(), owner, owner.ID)
	assert.NoError(t, err)

	_, err = svc.ListForPassenger(context.Background(), admin(), owner.ID)
	assert.NoError(t, err)

	_, err = svc.ListForPassenger(context.Background(), passenger(), owner.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// ---- UpdateStatus tests ----------------------------------------------------

func TestBookingService_UpdateStatus_RiderStartsRide(t *testing.T) {
	caller := rider()
	bookings := &mockBookingRepo{
		updateStatus: func(_ context.Context, id uuid.UUID, from, to domain.Status, riderID *uuid.UUID, entry domain.HistoryEntry) (domain.Booking, error) {
			assert.Equal(t, domain.StatusRiderAssigned, from)
			assert.Equal(t, domain.StatusInProcess, to)
			require.NotNil(t, riderID, "rider transitions must bind to the caller")
			assert.Equal(t, caller.ID, *riderID)
			assert.Equal(t, "Status updated", entry.Event)
			return domain.Booking{ID: id, Status: to, RiderID: riderID}, nil
		},
	}
	svc := newBookingService(bookings, nil)

	got, err := svc.UpdateStatus(context.Background(), caller, uuid.New(), domain.StatusInProcess)

	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProcess, got.Status)
}

func TestBookingService_UpdateStatus_RiderCompletesRide(t *testing.T) {
	caller := rider()
	bookings := &mockBookingRepo{
		updateStatus: func(_ context.Context, id uuid.UUID, from, to domain.Status, riderID *uuid.UUID, _ domain.HistoryEntry) (domain.Booking, error) {
			assert.Equal(t, domain.StatusInProcess, from)
			assert.Equal(t, domain.StatusCompleted, to)
			return domain.Booking{ID: id, Status: to, RiderID: riderID}, nil
		},
	}
	svc := newBookingService(bookings, nil)

	got, err := svc.UpdateStatus(context.Background(), caller, uuid.New(), domain.StatusCompleted)

	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, got.Status)
}

func TestBookingService_UpdateStatus_RiderCannotSkip(t *testing.T) {
	svc := newBookingService(&mockBookingRepo{}, nil)

	_, err := svc.UpdateStatus(context.Background(), rider(), uuid.New(), domain.StatusRiderAssigned)

	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestBookingService_UpdateStatus_AdminForwardOnly(t *testing.T) {
	booking := domain.Booking{ID: uuid.New(), Status: domain.StatusInProcess}
	bookings := &mockBookingRepo{
		getByID: func(_ context.Context, _ uuid.UUID) (domain.Booking, error) { return booking, nil },
		updateStatus: func(_ context.Context, id uuid.UUID, from, to domain.Status, _ *uuid.UUID, _ domain.HistoryEntry) (domain.Booking, error) {
			return domain.Booking{ID: id, Status: to}, nil
		},
	}
	svc := newBookingService(bookings, nil)

	got, err := svc.UpdateStatus(context.Background(), admin(), booking.ID, domain.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, got.Status)

	_, err = svc.UpdateStatus(context.Background(), admin(), booking.ID, domain.StatusInReview)
	assert.ErrorIs(t, err, domain.ErrInvalidState, "backward moves rejected")
}

func TestBookingService_UpdateStatus_CancelledNotATarget(t *testing.T) {
	svc := newBookingService(&mockBookingRepo{}, nil)

	_, err := svc.UpdateStatus(context.Background(), admin(), uuid.New(), domain.StatusCancelled)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestBookingService_UpdateStatus_PassengerForbidden(t *testing.T) {
	svc := newBookingService(&mockBookingRepo{}, nil)

	_, err := svc.UpdateStatus(context.Background(), passenger(), uuid.New(), domain.StatusInProcess)

	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// ---- Cancel tests ----------------------------------------------------------

func TestBookingService_Cancel_PassengerInReview(t *testing.T) {
	owner := passenger()
	booking := domain.Booking{ID: uuid.New(), PassengerID: owner.ID, Status: domain.StatusInReview}

	bookings := &mockBookingRepo{
		getByID: func(_ context.Context, _ uuid.UUID) (domain.Booking, error) { return booking, nil },
		cancel: func(_ context.Context, id uuid.UUID, by domain.Role, reason string, allowed []domain.Status, _ domain.HistoryEntry) (domain.Booking, error) {
			assert.Equal(t, domain.RolePassenger, by)
			assert.Equal(t, []domain.Status{domain.StatusInReview}, allowed)
			assert.Equal(t, "changed plans", reason)
			cancelled := booking
			cancelled.Status = domain.StatusCancelled
			cancelled.CancelledBy = &by
			return cancelled, nil
		},
	}
	svc := newBookingService(bookings, nil)

	got, err := svc.Cancel(context.Background(), owner, booking.ID, "changed plans")

	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, got.Status)
}

func TestBookingService_Cancel_PassengerDefaultReason(t *testing.T) {
	owner := passenger()
	booking := domain.Booking{ID: uuid.New(), PassengerID: owner.ID, Status: domain.StatusInReview}

	bookings := &mockBookingRepo{
		getByID: func(_ context.Context, _ uuid.UUID) (domain.Booking, error) { return booking, nil },
		cancel: func(_ context.Context, _ uuid.UUID, _ domain.Role, reason string, _ []domain.Status, _ domain.HistoryEntry) (domain.Booking, error) {
			assert.Equal(t, "No reason provided", reason)
			return booking, nil
		},
	}
	svc := newBookingService(bookings, nil)

	_, err := svc.Cancel(context.Background(), owner, booking.ID, "   ")

	require.NoError(t, err)
}

func TestBookingService_Cancel_PassengerBlockedAfterCommitment(t *testing.T) {
	owner := passenger()
	riderID := uuid.New()
	booking := domain.Booking{
		ID: uuid.New(), PassengerID: owner.ID,
		Status: domain.StatusRiderAssigned, RiderID: &riderID,
	}
	svc := newBookingService(&mockBookingRepo{
		getByID: func(_ context.Context, _ uuid.UUID) (domain.Booking, error) { return booking, nil },
	}, nil)

	_, err := svc.Cancel(context.Background(), owner, booking.ID, "")

	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestBookingService_Cancel_PassengerNotOwner(t *testing.T) {
	booking := domain.Booking{ID: uuid.New(), PassengerID: uuid.New(), Status: domain.StatusInReview}
	svc := newBookingService(&mockBookingRepo{
		getByID: func(_ context.Context, _ uuid.UUID) (domain.Booking, error) { return booking, nil },
	}, nil)

	_, err := svc.Cancel(context.Background(), passenger(), booking.ID, "")

	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestBookingService_Cancel_RiderReopens(t *testing.T) {
	caller := rider()
	bookings := &mockBookingRepo{
		cancelByRider: func(_ context.Context, id, riderID uuid.UUID, cancelEntry, reopenEntry domain.HistoryEntry) (domain.Booking, error) {
			assert.Equal(t, caller.ID, riderID)
			assert.Equal(t, "Booking cancelled", cancelEntry.Event)
			assert.Equal(t, "Booking reopened", reopenEntry.Event)
			return domain.Booking{ID: id, Status: domain.StatusInReview}, nil
		},
	}
	svc := newBookingService(bookings, nil)

	got, err := svc.Cancel(context.Background(), caller, uuid.New(), "vehicle breakdown")

	require.NoError(t, err)
	assert.Equal(t, domain.StatusInReview, got.Status, "rider cancel reopens for re-dispatch")
	assert.Nil(t, got.RiderID)
}

func TestBookingService_Cancel_AdminAnyActiveState(t *testing.T) {
	bookings := &mockBookingRepo{
		cancel: func(_ context.Context, id uuid.UUID, by domain.Role, _ string, allowed []domain.Status, _ domain.HistoryEntry) (domain.Booking, error) {
			assert.Equal(t, domain.RoleAdmin, by)
			assert.Contains(t, allowed, domain.StatusInProcess)
			assert.NotContains(t, allowed, domain.StatusCompleted)
			return domain.Booking{ID: id, Status: domain.StatusCancelled}, nil
		},
	}
	svc := newBookingService(bookings, nil)

	got, err := svc.Cancel(context.Background(), admin(), uuid.New(), "fraud")

	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, got.Status)
}

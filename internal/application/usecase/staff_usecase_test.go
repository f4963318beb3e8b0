package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Agenda-api/internal/application/bizctx"
	"github.com/jhoicas/Agenda-api/internal/application/dto"
	"github.com/jhoicas/Agenda-api/internal/application/usecase"
	"github.com/jhoicas/Agenda-api/internal/domain"
	"github.com/jhoicas/Agenda-api/internal/domain/entity"
	"github.com/jhoicas/Agenda-api/internal/infrastructure/memory"
)

func seedStaff() *memory.Store {
	s := seedBusinesses()
	s.AddStaff(&entity.Staff{ID: "s-1", BizID: bizB1, BranchID: "br-1", UserID: strPtr(userU), FullName: "Ana", IsActive: true})
	s.AddStaff(&entity.Staff{ID: "s-2", BizID: bizB1, BranchID: "br-2", FullName: "Luis", IsActive: false})
	s.AddStaff(&entity.Staff{ID: "s-3", BizID: bizB2, BranchID: "br-3", FullName: "Eva", IsActive: true})
	return s
}

func newStaffUC(s *memory.Store) *usecase.StaffUseCase {
	return usecase.NewStaffUseCase(s.Staff(), s.Bookings())
}

func TestStaffList_Filtros(t *testing.T) {
	s := seedStaff()
	uc := newStaffUC(s)
	ctx := context.Background()

	out, err := uc.List(ctx, bizB1, dto.StaffListRequest{})
	require.NoError(t, err)
	require.Len(t, out.Items, 2)
	assert.Equal(t, "s-1", out.Items[0].ID)

	yes := true
	out, err = uc.List(ctx, bizB1, dto.StaffListRequest{Active: &yes})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "Ana", out.Items[0].FullName)

	out, err = uc.List(ctx, bizB1, dto.StaffListRequest{BranchID: "br-2"})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "s-2", out.Items[0].ID)
}

func TestStaffInitSchedule(t *testing.T) {
	s := seedStaff()
	uc := newStaffUC(s)

	out, err := uc.InitSchedule(context.Background(), bizB1, "s-2")
	require.NoError(t, err)
	assert.Equal(t, 6, out.Created)
	assert.Equal(t, "s-2", out.StaffID)

	for _, id := range []string{"s-3", "s-404"} {
		_, err = uc.InitSchedule(context.Background(), bizB1, id)
		assert.True(t, domain.IsContextCode(err, domain.CodeNoStaffAccess), id)
	}
	assert.Equal(t, 1, s.Calls("InitSchedule"), "solo se llama al procedimiento con staff del negocio")
}

func TestStaffMyBookings(t *testing.T) {
	s := seedStaff()
	s.AddService("svc-1", decimal.NewFromInt(20000), 30*time.Minute)
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	s.Now = func() time.Time { return day.Add(-24 * time.Hour) }

	hold := func(staffID string, at time.Time) {
		_, err := s.Bookings().HoldSlot(context.Background(), entity.HoldSlotInput{
			BizID: bizB1, BranchID: "br-1", ServiceID: "svc-1", StaffID: staffID, ClientID: userV, StartAt: at,
		})
		require.NoError(t, err)
	}
	hold("s-1", day.Add(10*time.Hour))
	hold("s-1", day.Add(34*time.Hour)) // otro día
	hold("s-2", day.Add(10*time.Hour))

	sc := &bizctx.StaffContext{UserID: userU, StaffID: "s-1", BizID: bizB1, BranchID: "br-1"}
	out, err := newStaffUC(s).MyBookings(context.Background(), sc, dto.BookingListRequest{Date: "2026-03-10"})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "s-1", out.Items[0].StaffID)

	all, err := newStaffUC(s).MyBookings(context.Background(), sc, dto.BookingListRequest{})
	require.NoError(t, err)
	assert.Len(t, all.Items, 2)

	_, err = newStaffUC(s).MyBookings(context.Background(), sc, dto.BookingListRequest{Date: "10/03/2026"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	resp := usecase.StaffContextResponse(sc)
	assert.True(t, resp.OK)
	assert.Equal(t, "br-1", resp.BranchID)
}

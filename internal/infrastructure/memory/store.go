// Package memory implementa los puertos de persistencia y sesión en memoria.
// Es un doble de prueba: cmd/api siempre usa PostgreSQL y este paquete solo lo importan tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Agenda-api/internal/application/session"
	"github.com/jhoicas/Agenda-api/internal/domain"
	"github.com/jhoicas/Agenda-api/internal/domain/entity"
	"github.com/jhoicas/Agenda-api/internal/domain/repository"
)

// HoldTTL vigencia de una reserva temporal en memoria.
const HoldTTL = 10 * time.Minute

// Store guarda todo el estado en mapas protegidos por un mutex.
// Failures permite inyectar errores por operación ("ListUserRoles", "InsertUserRole", ...).
type Store struct {
	mu          sync.RWMutex
	tokens      map[string]*entity.User
	businesses  map[string]*entity.Business
	roles       map[string]string // roleID -> key
	userRoles   []entity.UserRole
	current     map[string]entity.CurrentBusinessSelection
	superAdmins map[string]bool
	staff       map[string]*entity.Staff
	bookings    map[string]*entity.Booking
	prices      map[string]decimal.Decimal // serviceID -> precio
	durations   map[string]time.Duration   // serviceID -> duración
	idem        map[string]idemEntry
	calls       map[string]int
	Failures    map[string]error
	Now         func() time.Time
}

// NewStore crea un Store vacío con los roles estándar sembrados.
func NewStore() *Store {
	s := &Store{
		tokens:      map[string]*entity.User{},
		businesses:  map[string]*entity.Business{},
		roles:       map[string]string{},
		current:     map[string]entity.CurrentBusinessSelection{},
		superAdmins: map[string]bool{},
		staff:       map[string]*entity.Staff{},
		bookings:    map[string]*entity.Booking{},
		prices:      map[string]decimal.Decimal{},
		durations:   map[string]time.Duration{},
		idem:        map[string]idemEntry{},
		calls:       map[string]int{},
		Failures:    map[string]error{},
		Now:         time.Now,
	}
	for _, key := range []string{entity.RoleOwner, entity.RoleAdmin, entity.RoleManager, entity.RoleStaff, entity.RoleClient} {
		s.roles["role-"+key] = key
	}
	return s
}

// ── Siembra ───────────────────────────────────────────────────────────────────

// AddSession registra un token de acceso válido para el usuario.
func (s *Store) AddSession(token string, user *entity.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = user
}

// AddBusiness registra un negocio.
func (s *Store) AddBusiness(b *entity.Business) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.businesses[b.ID] = b
}

// AddUserRole asigna roleKey al usuario en bizID ("" = sin negocio explícito).
func (s *Store) AddUserRole(userID, bizID, roleKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var biz *string
	if bizID != "" {
		biz = &bizID
	}
	s.userRoles = append(s.userRoles, entity.UserRole{UserID: userID, BizID: biz, RoleID: "role-" + roleKey, RoleKey: roleKey})
}

// RemoveRole elimina la clave de rol de la tabla roles (simula instalaciones sin "staff").
func (s *Store) RemoveRole(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.roles, "role-"+key)
}

// SetCurrentPointer fija el puntero de negocio actual sin validación.
func (s *Store) SetCurrentPointer(userID, bizID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current[userID] = entity.CurrentBusinessSelection{UserID: userID, BizID: bizID, UpdatedAt: s.Now()}
}

// AddSuperAdmin marca al usuario como super-admin.
func (s *Store) AddSuperAdmin(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.superAdmins[userID] = true
}

// AddStaff registra un empleado.
func (s *Store) AddStaff(st *entity.Staff) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staff[st.ID] = st
}

// AddService registra precio y duración de un servicio.
func (s *Store) AddService(serviceID string, price decimal.Decimal, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prices[serviceID] = price
	s.durations[serviceID] = d
}

// UserRoles devuelve una copia de todas las filas user_roles.
func (s *Store) UserRoles() []entity.UserRole {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entity.UserRole(nil), s.userRoles...)
}

// Booking devuelve una copia de la reserva (nil si no existe).
func (s *Store) Booking(id string) *entity.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil
	}
	cp := *b
	return &cp
}

// Calls devuelve cuántas veces se invocó la operación.
func (s *Store) Calls(op string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.calls[op]
}

// enter registra la llamada y devuelve el error inyectado, si lo hay. Requiere s.mu tomado.
func (s *Store) enter(op string) error {
	s.calls[op]++
	return s.Failures[op]
}

// ── Adaptadores por puerto ────────────────────────────────────────────────────

// Sessions devuelve el accessor de sesión.
func (s *Store) Sessions() session.Accessor { return sessionAccessor{s} }

// Businesses devuelve el repositorio de negocios.
func (s *Store) Businesses() repository.BusinessRepository { return businessRepo{s} }

// Current devuelve el repositorio del puntero de negocio actual.
func (s *Store) Current() repository.CurrentBusinessRepository { return currentRepo{s} }

// Roles devuelve el repositorio de roles.
func (s *Store) Roles() repository.RoleRepository { return roleRepo{s} }

// Admins devuelve el repositorio de chequeos de plataforma.
func (s *Store) Admins() repository.AdminRepository { return adminRepo{s} }

// Staff devuelve el repositorio de empleados.
func (s *Store) Staff() repository.StaffRepository { return staffRepo{s} }

// Bookings devuelve el repositorio de reservas.
func (s *Store) Bookings() repository.BookingRepository { return bookingRepo{s} }

// Idempotency adapta el Store al puerto IdempotencyStore.
func (s *Store) Idempotency() repository.IdempotencyStore { return idemStore{s} }

type sessionAccessor struct{ s *Store }

func (a sessionAccessor) CurrentUser(_ context.Context, token string) (*entity.User, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	if err := a.s.enter("CurrentUser"); err != nil {
		return nil, err
	}
	if token == "" {
		return nil, nil
	}
	u, ok := a.s.tokens[token]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

type businessRepo struct{ s *Store }

func (r businessRepo) GetByID(_ context.Context, id string) (*entity.Business, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("Business.GetByID"); err != nil {
		return nil, err
	}
	return copyBusiness(r.s.businesses[id]), nil
}

func (r businessRepo) GetBySlug(_ context.Context, slug string) (*entity.Business, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("Business.GetBySlug"); err != nil {
		return nil, err
	}
	for _, b := range r.s.businesses {
		if b.Slug == slug {
			return copyBusiness(b), nil
		}
	}
	return nil, nil
}

func (r businessRepo) First(_ context.Context) (*entity.Business, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("Business.First"); err != nil {
		return nil, err
	}
	all := r.s.sortedBusinesses(func(*entity.Business) bool { return true })
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

func (r businessRepo) ListOwnedBy(_ context.Context, userID string) ([]*entity.Business, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("Business.ListOwnedBy"); err != nil {
		return nil, err
	}
	return r.s.sortedBusinesses(func(b *entity.Business) bool { return b.IsOwnedBy(userID) }), nil
}

func (r businessRepo) ListByIDs(_ context.Context, ids []string) ([]*entity.Business, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("Business.ListByIDs"); err != nil {
		return nil, err
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	return r.s.sortedBusinesses(func(b *entity.Business) bool { return want[b.ID] }), nil
}

func (r businessRepo) List(_ context.Context, limit, offset int) ([]*entity.Business, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("Business.List"); err != nil {
		return nil, err
	}
	all := r.s.sortedBusinesses(func(*entity.Business) bool { return true })
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (s *Store) sortedBusinesses(keep func(*entity.Business) bool) []*entity.Business {
	var out []*entity.Business
	for _, b := range s.businesses {
		if keep(b) {
			out = append(out, copyBusiness(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func copyBusiness(b *entity.Business) *entity.Business {
	if b == nil {
		return nil
	}
	cp := *b
	return &cp
}

type currentRepo struct{ s *Store }

func (r currentRepo) Get(_ context.Context, userID string) (*entity.CurrentBusinessSelection, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("Current.Get"); err != nil {
		return nil, err
	}
	sel, ok := r.s.current[userID]
	if !ok {
		return nil, nil
	}
	return &sel, nil
}

func (r currentRepo) Set(_ context.Context, userID, bizID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("Current.Set"); err != nil {
		return err
	}
	r.s.current[userID] = entity.CurrentBusinessSelection{UserID: userID, BizID: bizID, UpdatedAt: r.s.Now()}
	return nil
}

type roleRepo struct{ s *Store }

func (r roleRepo) ListUserRoles(_ context.Context, userID string) ([]entity.UserRole, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("ListUserRoles"); err != nil {
		return nil, err
	}
	var out []entity.UserRole
	for _, ur := range r.s.userRoles {
		if ur.UserID == userID {
			out = append(out, ur)
		}
	}
	return out, nil
}

func (r roleRepo) HasRoleIn(_ context.Context, userID, bizID string, roleKeys []string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("HasRoleIn"); err != nil {
		return false, err
	}
	for _, ur := range r.s.userRoles {
		if ur.UserID != userID || !ur.ScopedTo(bizID) {
			continue
		}
		for _, k := range roleKeys {
			if ur.RoleKey == k {
				return true, nil
			}
		}
	}
	return false, nil
}

func (r roleRepo) RoleIDByKey(_ context.Context, key string) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("RoleIDByKey"); err != nil {
		return "", err
	}
	for id, k := range r.s.roles {
		if k == key {
			return id, nil
		}
	}
	return "", nil
}

func (r roleRepo) HasUserRole(_ context.Context, userID, bizID, roleID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("HasUserRole"); err != nil {
		return false, err
	}
	return r.s.hasUserRole(userID, bizID, roleID), nil
}

func (r roleRepo) InsertUserRole(_ context.Context, ur entity.UserRole) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("InsertUserRole"); err != nil {
		return err
	}
	bizID := ""
	if ur.BizID != nil {
		bizID = *ur.BizID
	}
	if r.s.hasUserRole(ur.UserID, bizID, ur.RoleID) {
		return domain.ErrDuplicate
	}
	if ur.RoleKey == "" {
		ur.RoleKey = r.s.roles[ur.RoleID]
	}
	r.s.userRoles = append(r.s.userRoles, ur)
	return nil
}

func (s *Store) hasUserRole(userID, bizID, roleID string) bool {
	for _, ur := range s.userRoles {
		if ur.UserID == userID && ur.RoleID == roleID && ur.ScopedTo(bizID) {
			return true
		}
	}
	return false
}

type adminRepo struct{ s *Store }

func (r adminRepo) IsSuperAdmin(_ context.Context, userID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("IsSuperAdmin"); err != nil {
		return false, err
	}
	return r.s.superAdmins[userID], nil
}

type staffRepo struct{ s *Store }

func (r staffRepo) ListActiveByUserID(_ context.Context, userID string) ([]*entity.Staff, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("ListActiveByUserID"); err != nil {
		return nil, err
	}
	var out []*entity.Staff
	for _, st := range r.s.staff {
		if st.IsActive && st.UserID != nil && *st.UserID == userID {
			cp := *st
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r staffRepo) GetByID(_ context.Context, id string) (*entity.Staff, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("Staff.GetByID"); err != nil {
		return nil, err
	}
	st, ok := r.s.staff[id]
	if !ok {
		return nil, nil
	}
	cp := *st
	return &cp, nil
}

func (r staffRepo) ListByBiz(_ context.Context, bizID string, f repository.StaffFilter, limit, offset int) ([]*entity.Staff, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("Staff.ListByBiz"); err != nil {
		return nil, err
	}
	var out []*entity.Staff
	for _, st := range r.s.staff {
		if st.BizID != bizID {
			continue
		}
		if f.BranchID != "" && st.BranchID != f.BranchID {
			continue
		}
		if f.Active != nil && st.IsActive != *f.Active {
			continue
		}
		cp := *st
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if offset >= len(out) {
		return nil, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], nil
}

func (r staffRepo) InitSchedule(_ context.Context, staffID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("InitSchedule"); err != nil {
		return 0, err
	}
	if _, ok := r.s.staff[staffID]; !ok {
		return 0, domain.ErrNotFound
	}
	// lunes a sábado, como la función SQL
	return 6, nil
}

type bookingRepo struct{ s *Store }

func (r bookingRepo) HoldSlot(_ context.Context, in entity.HoldSlotInput) (*entity.HoldResult, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("HoldSlot"); err != nil {
		return nil, err
	}
	price, ok := r.s.prices[in.ServiceID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	now := r.s.Now()
	end := in.StartAt.Add(r.s.durations[in.ServiceID])
	for _, b := range r.s.bookings {
		if b.StaffID != in.StaffID || b.Status == entity.BookingStatusCancelled {
			continue
		}
		if b.Status == entity.BookingStatusHold && b.HoldExpires != nil && !b.HoldExpires.After(now) {
			continue
		}
		if in.StartAt.Before(b.EndAt) && b.StartAt.Before(end) {
			return nil, domain.ErrSlotUnavailable
		}
	}
	expires := now.Add(HoldTTL)
	client := in.ClientID
	b := &entity.Booking{
		ID:          uuid.NewString(),
		BizID:       in.BizID,
		BranchID:    in.BranchID,
		ServiceID:   in.ServiceID,
		StaffID:     in.StaffID,
		ClientID:    &client,
		StartAt:     in.StartAt,
		EndAt:       end,
		Status:      entity.BookingStatusHold,
		HoldExpires: &expires,
		Price:       price,
		CreatedAt:   now,
	}
	r.s.bookings[b.ID] = b
	return &entity.HoldResult{BookingID: b.ID, ExpiresAt: expires, Price: price}, nil
}

func (r bookingRepo) ConfirmBooking(_ context.Context, bookingID, clientID string) (*entity.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("ConfirmBooking"); err != nil {
		return nil, err
	}
	b, ok := r.s.bookings[bookingID]
	if !ok || b.ClientID == nil || *b.ClientID != clientID {
		return nil, domain.ErrNotFound
	}
	switch b.Status {
	case entity.BookingStatusConfirmed:
		cp := *b
		return &cp, nil
	case entity.BookingStatusCancelled:
		return nil, domain.ErrSlotUnavailable
	}
	if b.HoldExpires != nil && !b.HoldExpires.After(r.s.Now()) {
		return nil, domain.ErrHoldExpired
	}
	b.Status = entity.BookingStatusConfirmed
	b.HoldExpires = nil
	cp := *b
	return &cp, nil
}

func (r bookingRepo) ListByBiz(_ context.Context, bizID string, f repository.BookingFilter) ([]*entity.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("Booking.ListByBiz"); err != nil {
		return nil, err
	}
	dayStart := f.Day.UTC().Truncate(24 * time.Hour)
	dayEnd := dayStart.Add(24 * time.Hour)
	var out []*entity.Booking
	for _, b := range r.s.bookings {
		if b.BizID != bizID || b.Status == entity.BookingStatusCancelled {
			continue
		}
		if !f.Day.IsZero() && (b.StartAt.Before(dayStart) || !b.StartAt.Before(dayEnd)) {
			continue
		}
		if f.BranchID != "" && b.BranchID != f.BranchID {
			continue
		}
		if f.StaffID != "" && b.StaffID != f.StaffID {
			continue
		}
		cp := *b
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartAt.Before(out[j].StartAt) })
	return out, nil
}

type idemEntry struct {
	rec     repository.IdempotencyRecord
	expires time.Time
}

type idemStore struct{ s *Store }

func (r idemStore) Get(_ context.Context, key string) (*repository.IdempotencyRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("Idempotency.Get"); err != nil {
		return nil, err
	}
	e, ok := r.s.idem[key]
	if !ok || !e.expires.After(r.s.Now()) {
		return nil, nil
	}
	rec := e.rec
	return &rec, nil
}

func (r idemStore) Reserve(_ context.Context, key, fingerprint string, ttl time.Duration) (*repository.IdempotencyRecord, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("Idempotency.Reserve"); err != nil {
		return nil, false, err
	}
	now := r.s.Now()
	if e, ok := r.s.idem[key]; ok && e.expires.After(now) {
		rec := e.rec
		return &rec, false, nil
	}
	r.s.idem[key] = idemEntry{rec: repository.IdempotencyRecord{Fingerprint: fingerprint}, expires: now.Add(ttl)}
	return nil, true, nil
}

func (r idemStore) Complete(_ context.Context, key string, rec repository.IdempotencyRecord, ttl time.Duration) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("Idempotency.Complete"); err != nil {
		return err
	}
	r.s.idem[key] = idemEntry{rec: rec, expires: r.s.Now().Add(ttl)}
	return nil
}

func (r idemStore) Release(_ context.Context, key string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("Idempotency.Release"); err != nil {
		return err
	}
	delete(r.s.idem, key)
	return nil
}

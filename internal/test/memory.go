package test

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	domainErrors "github.com/polkiloo/foodbridge/internal/domain/errors"
	"github.com/polkiloo/foodbridge/internal/domain/model"
	"github.com/polkiloo/foodbridge/internal/domain/repository"
)

type memoryTxKey struct{}

type memoryState struct {
	donations   map[int64]model.Donation
	orders      map[int64]model.ReceiverOrder
	deliveries  map[int64]model.Delivery
	locations   map[int64]model.OrganizationLocation
	allocations []model.Allocation
	ratings     []model.DonorRating
	nextID      int64
}

func (s memoryState) clone() memoryState {
	return memoryState{
		donations:   maps.Clone(s.donations),
		orders:      maps.Clone(s.orders),
		deliveries:  maps.Clone(s.deliveries),
		locations:   maps.Clone(s.locations),
		allocations: slices.Clone(s.allocations),
		ratings:     slices.Clone(s.ratings),
		nextID:      s.nextID,
	}
}

// MemoryStore is a transactional in-memory implementation of every repository.
// Transactions are serialized by one mutex and restore a snapshot when fn fails,
// which gives the same all-or-nothing and row lock guarantees the database does.
type MemoryStore struct {
	mu    sync.Mutex
	state memoryState

	// Fail makes the named operation (for example "donations.Update") return the error.
	Fail map[string]error
	// Now stamps created rows; time.Now is used when nil.
	Now func() time.Time

	Commits   int
	Rollbacks int
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: memoryState{
		donations:  make(map[int64]model.Donation),
		orders:     make(map[int64]model.ReceiverOrder),
		deliveries: make(map[int64]model.Delivery),
		locations:  make(map[int64]model.OrganizationLocation),
		nextID:     1,
	}}
}

// WithinTransaction runs fn atomically. Nested calls join the running transaction.
func (s *MemoryStore) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if inMemoryTx(ctx) {
		return fn(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.state.clone()
	if err := fn(context.WithValue(ctx, memoryTxKey{}, true)); err != nil {
		s.state = snapshot
		s.Rollbacks++
		return err
	}
	s.Commits++
	return nil
}

func inMemoryTx(ctx context.Context) bool {
	v, _ := ctx.Value(memoryTxKey{}).(bool)
	return v
}

func (s *MemoryStore) guard(ctx context.Context) func() {
	if inMemoryTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *MemoryStore) fail(op string) error {
	if s.Fail == nil {
		return nil
	}
	return s.Fail[op]
}

func (s *MemoryStore) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *MemoryStore) id() int64 {
	id := s.state.nextID
	s.state.nextID++
	return id
}

// Donations returns the donation repository view.
func (s *MemoryStore) Donations() repository.DonationRepository { return &memoryDonations{s} }

// Orders returns the order repository view.
func (s *MemoryStore) Orders() repository.OrderRepository { return &memoryOrders{s} }

// Allocations returns the allocation repository view.
func (s *MemoryStore) Allocations() repository.AllocationRepository { return &memoryAllocations{s} }

// Deliveries returns the delivery repository view.
func (s *MemoryStore) Deliveries() repository.DeliveryRepository { return &memoryDeliveries{s} }

// Locations returns the location repository view.
func (s *MemoryStore) Locations() repository.LocationRepository { return &memoryLocations{s} }

// Ratings returns the rating repository view.
func (s *MemoryStore) Ratings() repository.RatingRepository { return &memoryRatings{s} }

// SeedDonation stores d, assigning an id when it has none.
func (s *MemoryStore) SeedDonation(d model.Donation) model.Donation {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d.ID == 0 {
		d.ID = s.id()
	}
	s.state.donations[d.ID] = d
	return d
}

// SeedOrder stores o, assigning an id when it has none.
func (s *MemoryStore) SeedOrder(o model.ReceiverOrder) model.ReceiverOrder {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o.ID == 0 {
		o.ID = s.id()
	}
	s.state.orders[o.ID] = o
	return o
}

// SeedLocation stores an organization location at the given point.
func (s *MemoryStore) SeedLocation(organizationID int64, lat, lng float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.locations[organizationID] = model.OrganizationLocation{OrganizationID: organizationID, Lat: &lat, Lng: &lng}
}

// SeedRating stores a rating row as is.
func (s *MemoryStore) SeedRating(r model.DonorRating) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == 0 {
		r.ID = s.id()
	}
	s.state.ratings = append(s.state.ratings, r)
}

// Donation returns the stored donation.
func (s *MemoryStore) Donation(id int64) model.Donation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.donations[id]
}

// Order returns the stored order.
func (s *MemoryStore) Order(id int64) model.ReceiverOrder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.orders[id]
}

// AllocationsOf returns allocation rows of an order.
func (s *MemoryStore) AllocationsOf(orderID int64) []model.Allocation {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Allocation
	for _, a := range s.state.allocations {
		if a.OrderID == orderID {
			out = append(out, a)
		}
	}
	return out
}

// DeliveryOf returns the delivery of an order, if any.
func (s *MemoryStore) DeliveryOf(orderID int64) (model.Delivery, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.state.deliveries {
		if d.OrderID == orderID {
			return d, true
		}
	}
	return model.Delivery{}, false
}

func sortedValues[V any](m map[int64]V) []V {
	keys := slices.Sorted(maps.Keys(m))
	out := make([]V, 0, len(keys))
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out
}

type memoryDonations struct{ s *MemoryStore }

func (r *memoryDonations) Create(ctx context.Context, in model.NewDonation) (*model.Donation, error) {
	defer r.s.guard(ctx)()
	if err := r.s.fail("donations.Create"); err != nil {
		return nil, err
	}
	now := r.s.now()
	d := model.Donation{
		ID:         r.s.id(),
		DonorID:    in.DonorID,
		Item:       in.Item,
		Note:       in.Note,
		Quantity:   in.Quantity,
		PreparedAt: in.PreparedAt,
		ExpiresAt:  in.ExpiresAt,
		PickupLat:  in.PickupLat,
		PickupLng:  in.PickupLng,
		Status:     model.DonationStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	r.s.state.donations[d.ID] = d
	return &d, nil
}

func (r *memoryDonations) Get(ctx context.Context, id int64) (*model.Donation, error) {
	defer r.s.guard(ctx)()
	d, ok := r.s.state.donations[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return &d, nil
}

func (r *memoryDonations) GetForUpdate(ctx context.Context, id int64) (*model.Donation, error) {
	return r.Get(ctx, id)
}

func (r *memoryDonations) Update(ctx context.Context, d *model.Donation) error {
	defer r.s.guard(ctx)()
	if err := r.s.fail("donations.Update"); err != nil {
		return err
	}
	if _, ok := r.s.state.donations[d.ID]; !ok {
		return domainErrors.ErrNotFound
	}
	r.s.state.donations[d.ID] = *d
	return nil
}

func (r *memoryDonations) LockAllocatable(ctx context.Context, organizationID int64, item string) ([]model.Donation, error) {
	defer r.s.guard(ctx)()
	var out []model.Donation
	for _, d := range sortedValues(r.s.state.donations) {
		if !d.ClaimedBy(organizationID) || !strings.EqualFold(d.Item, item) || d.Remaining <= 0 {
			continue
		}
		if d.Status == model.DonationStatusAccepted || d.Status == model.DonationStatusPartial {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *memoryDonations) LockExpired(ctx context.Context, now time.Time, limit int) ([]model.Donation, error) {
	defer r.s.guard(ctx)()
	var out []model.Donation
	for _, d := range sortedValues(r.s.state.donations) {
		if len(out) == limit {
			break
		}
		if d.Open() && now.After(d.ExpiresAt) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *memoryDonations) ListPending(ctx context.Context, now time.Time) ([]model.Donation, error) {
	defer r.s.guard(ctx)()
	var out []model.Donation
	for _, d := range sortedValues(r.s.state.donations) {
		if d.Status == model.DonationStatusPending && !d.ExpiresAt.Before(now) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *memoryDonations) ListByOrganization(ctx context.Context, organizationID int64) ([]model.Donation, error) {
	defer r.s.guard(ctx)()
	var out []model.Donation
	for _, d := range sortedValues(r.s.state.donations) {
		if d.ClaimedBy(organizationID) && (d.Status == model.DonationStatusAccepted || d.Status == model.DonationStatusPartial) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *memoryDonations) available(d model.Donation, item string, now time.Time) bool {
	return strings.EqualFold(d.Item, item) &&
		(d.Status == model.DonationStatusAccepted || d.Status == model.DonationStatusPartial) &&
		d.Remaining > 0 && !d.ExpiresAt.Before(now)
}

func (r *memoryDonations) AvailableStock(ctx context.Context, item string, organizationID *int64, now time.Time) (int, error) {
	defer r.s.guard(ctx)()
	total := 0
	for _, d := range r.s.state.donations {
		if !r.available(d, item, now) {
			continue
		}
		if organizationID != nil && !d.ClaimedBy(*organizationID) {
			continue
		}
		total += d.Remaining
	}
	return total, nil
}

func (r *memoryDonations) StockByOrganization(ctx context.Context, item string, now time.Time) ([]model.OrganizationStock, error) {
	defer r.s.guard(ctx)()
	byOrg := make(map[int64]int)
	for _, d := range r.s.state.donations {
		if r.available(d, item, now) && d.OrganizationID != nil {
			byOrg[*d.OrganizationID] += d.Remaining
		}
	}
	out := make([]model.OrganizationStock, 0, len(byOrg))
	for _, org := range slices.Sorted(maps.Keys(byOrg)) {
		out = append(out, model.OrganizationStock{OrganizationID: org, Item: item, Remaining: byOrg[org]})
	}
	return out, nil
}

type memoryOrders struct{ s *MemoryStore }

func (r *memoryOrders) Create(ctx context.Context, in model.NewOrder) (*model.ReceiverOrder, error) {
	defer r.s.guard(ctx)()
	if err := r.s.fail("orders.Create"); err != nil {
		return nil, err
	}
	now := r.s.now()
	o := model.ReceiverOrder{
		ID:             r.s.id(),
		ReceiverID:     in.ReceiverID,
		OrganizationID: in.OrganizationID,
		Item:           in.Item,
		Quantity:       in.Quantity,
		DeliveryLat:    in.DeliveryLat,
		DeliveryLng:    in.DeliveryLng,
		Status:         model.OrderStatusRequested,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	r.s.state.orders[o.ID] = o
	return &o, nil
}

func (r *memoryOrders) Get(ctx context.Context, id int64) (*model.ReceiverOrder, error) {
	defer r.s.guard(ctx)()
	o, ok := r.s.state.orders[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return &o, nil
}

func (r *memoryOrders) GetForUpdate(ctx context.Context, id int64) (*model.ReceiverOrder, error) {
	return r.Get(ctx, id)
}

func (r *memoryOrders) Update(ctx context.Context, o *model.ReceiverOrder) error {
	defer r.s.guard(ctx)()
	if err := r.s.fail("orders.Update"); err != nil {
		return err
	}
	if _, ok := r.s.state.orders[o.ID]; !ok {
		return domainErrors.ErrNotFound
	}
	r.s.state.orders[o.ID] = *o
	return nil
}

type memoryAllocations struct{ s *MemoryStore }

func (r *memoryAllocations) Create(ctx context.Context, a model.Allocation) (*model.Allocation, error) {
	defer r.s.guard(ctx)()
	if err := r.s.fail("allocations.Create"); err != nil {
		return nil, err
	}
	a.ID = r.s.id()
	r.s.state.allocations = append(r.s.state.allocations, a)
	return &a, nil
}

func (r *memoryAllocations) ListByOrder(ctx context.Context, orderID int64) ([]model.Allocation, error) {
	defer r.s.guard(ctx)()
	var out []model.Allocation
	for _, a := range r.s.state.allocations {
		if a.OrderID == orderID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *memoryAllocations) DeliveredToReceiver(ctx context.Context, donationID, receiverID int64) (bool, error) {
	defer r.s.guard(ctx)()
	for _, a := range r.s.state.allocations {
		if a.DonationID != donationID {
			continue
		}
		o := r.s.state.orders[a.OrderID]
		if o.ReceiverID == receiverID && o.Status == model.OrderStatusDelivered {
			return true, nil
		}
	}
	return false, nil
}

type memoryDeliveries struct{ s *MemoryStore }

func (r *memoryDeliveries) Ensure(ctx context.Context, orderID, organizationID int64) (*model.Delivery, error) {
	defer r.s.guard(ctx)()
	if err := r.s.fail("deliveries.Ensure"); err != nil {
		return nil, err
	}
	for _, d := range r.s.state.deliveries {
		if d.OrderID == orderID {
			return &d, nil
		}
	}
	now := r.s.now()
	d := model.Delivery{
		ID:             r.s.id(),
		OrderID:        orderID,
		OrganizationID: organizationID,
		Status:         model.DeliveryStatusPickedUp,
		StartedAt:      now,
		UpdatedAt:      now,
	}
	r.s.state.deliveries[d.ID] = d
	return &d, nil
}

func (r *memoryDeliveries) Get(ctx context.Context, id int64) (*model.Delivery, error) {
	defer r.s.guard(ctx)()
	d, ok := r.s.state.deliveries[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return &d, nil
}

func (r *memoryDeliveries) GetForUpdate(ctx context.Context, id int64) (*model.Delivery, error) {
	return r.Get(ctx, id)
}

func (r *memoryDeliveries) GetByOrder(ctx context.Context, orderID int64) (*model.Delivery, error) {
	defer r.s.guard(ctx)()
	for _, d := range r.s.state.deliveries {
		if d.OrderID == orderID {
			return &d, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

func (r *memoryDeliveries) Update(ctx context.Context, d *model.Delivery) error {
	defer r.s.guard(ctx)()
	if err := r.s.fail("deliveries.Update"); err != nil {
		return err
	}
	if _, ok := r.s.state.deliveries[d.ID]; !ok {
		return domainErrors.ErrNotFound
	}
	r.s.state.deliveries[d.ID] = *d
	return nil
}

type memoryLocations struct{ s *MemoryStore }

func (r *memoryLocations) Upsert(ctx context.Context, loc model.OrganizationLocation) (*model.OrganizationLocation, error) {
	defer r.s.guard(ctx)()
	if err := r.s.fail("locations.Upsert"); err != nil {
		return nil, err
	}
	r.s.state.locations[loc.OrganizationID] = loc
	return &loc, nil
}

func (r *memoryLocations) List(ctx context.Context) ([]model.OrganizationLocation, error) {
	defer r.s.guard(ctx)()
	if err := r.s.fail("locations.List"); err != nil {
		return nil, err
	}
	return sortedValues(r.s.state.locations), nil
}

type memoryRatings struct{ s *MemoryStore }

func (r *memoryRatings) Upsert(ctx context.Context, rating model.DonorRating) (*model.DonorRating, error) {
	defer r.s.guard(ctx)()
	if err := r.s.fail("ratings.Upsert"); err != nil {
		return nil, err
	}
	for i, existing := range r.s.state.ratings {
		if existing.DonationID == rating.DonationID && existing.RaterID == rating.RaterID && existing.RaterRole == rating.RaterRole {
			rating.ID = existing.ID
			r.s.state.ratings[i] = rating
			return &rating, nil
		}
	}
	rating.ID = r.s.id()
	r.s.state.ratings = append(r.s.state.ratings, rating)
	return &rating, nil
}

func (r *memoryRatings) Averages(ctx context.Context, donorID int64) (model.RatingAverages, error) {
	defer r.s.guard(ctx)()
	var (
		avg                 model.RatingAverages
		orgTotal, recvTotal int
	)
	for _, rating := range r.s.state.ratings {
		if rating.DonorID != donorID {
			continue
		}
		switch rating.RaterRole {
		case model.RaterRoleOrganization:
			orgTotal += rating.Stars
			avg.OrganizationCount++
		case model.RaterRoleReceiver:
			recvTotal += rating.Stars
			avg.ReceiverCount++
		}
	}
	if avg.OrganizationCount > 0 {
		avg.Organization = float64(orgTotal) / float64(avg.OrganizationCount)
	}
	if avg.ReceiverCount > 0 {
		avg.Receiver = float64(recvTotal) / float64(avg.ReceiverCount)
	}
	return avg, nil
}

var _ repository.Factory = (*MemoryStore)(nil)
var _ repository.Transactor = (*MemoryStore)(nil)

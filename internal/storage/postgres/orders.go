package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/foodbridge/internal/domain/errors"
	"github.com/polkiloo/foodbridge/internal/domain/model"
)

const orderColumns = `id, receiver_id, organization_id, item, quantity, delivery_lat, delivery_lng, status, created_at, updated_at`

const allocationColumns = `id, order_id, donation_id, donor_id, quantity, created_at`

const deliveryColumns = `id, order_id, organization_id, status, live_lat, live_lng, started_at, delivered_at, updated_at`

type orderRepository struct {
	storage *Storage
}

type allocationRepository struct {
	storage *Storage
}

type deliveryRepository struct {
	storage *Storage
}

func scanOrder(row rowScanner) (model.ReceiverOrder, error) {
	var o model.ReceiverOrder
	err := row.Scan(&o.ID, &o.ReceiverID, &o.OrganizationID, &o.Item, &o.Quantity, &o.DeliveryLat, &o.DeliveryLng, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

func scanAllocation(row rowScanner) (model.Allocation, error) {
	var a model.Allocation
	err := row.Scan(&a.ID, &a.OrderID, &a.DonationID, &a.DonorID, &a.Quantity, &a.CreatedAt)
	return a, err
}

func scanDelivery(row rowScanner) (model.Delivery, error) {
	var d model.Delivery
	err := row.Scan(&d.ID, &d.OrderID, &d.OrganizationID, &d.Status, &d.LiveLat, &d.LiveLng, &d.StartedAt, &d.DeliveredAt, &d.UpdatedAt)
	return d, err
}

// --- OrderRepository implementation ---

func (r *orderRepository) Create(ctx context.Context, in model.NewOrder) (*model.ReceiverOrder, error) {
	const query = `INSERT INTO receiver_orders (receiver_id, organization_id, item, quantity, delivery_lat, delivery_lng, status)
                   VALUES ($1, $2, $3, $4, $5, $6, $7)
                   RETURNING ` + orderColumns
	o, err := scanOrder(r.storage.conn(ctx).QueryRow(ctx, query,
		in.ReceiverID, in.OrganizationID, in.Item, in.Quantity, in.DeliveryLat, in.DeliveryLng, model.OrderStatusRequested))
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepository) Get(ctx context.Context, id int64) (*model.ReceiverOrder, error) {
	const query = `SELECT ` + orderColumns + ` FROM receiver_orders WHERE id=$1`
	o, err := scanOrder(r.storage.conn(ctx).QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}

func (r *orderRepository) GetForUpdate(ctx context.Context, id int64) (*model.ReceiverOrder, error) {
	const query = `SELECT ` + orderColumns + ` FROM receiver_orders WHERE id=$1 FOR UPDATE`
	o, err := scanOrder(r.storage.conn(ctx).QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}

func (r *orderRepository) Update(ctx context.Context, o *model.ReceiverOrder) error {
	const query = `UPDATE receiver_orders SET status=$2, organization_id=$3, updated_at=$4 WHERE id=$1`
	tag, err := r.storage.conn(ctx).Exec(ctx, query, o.ID, o.Status, o.OrganizationID, o.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

// --- AllocationRepository implementation ---

func (r *allocationRepository) Create(ctx context.Context, a model.Allocation) (*model.Allocation, error) {
	const query = `INSERT INTO allocations (order_id, donation_id, donor_id, quantity, created_at)
                   VALUES ($1, $2, $3, $4, $5)
                   RETURNING id`
	if err := r.storage.conn(ctx).QueryRow(ctx, query, a.OrderID, a.DonationID, a.DonorID, a.Quantity, a.CreatedAt).Scan(&a.ID); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *allocationRepository) ListByOrder(ctx context.Context, orderID int64) ([]model.Allocation, error) {
	const query = `SELECT ` + allocationColumns + ` FROM allocations WHERE order_id=$1 ORDER BY id`
	rows, err := r.storage.conn(ctx).Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanAllocation)
}

func (r *allocationRepository) DeliveredToReceiver(ctx context.Context, donationID, receiverID int64) (bool, error) {
	const query = `SELECT EXISTS (
                       SELECT 1 FROM allocations a
                       JOIN receiver_orders o ON o.id = a.order_id
                       WHERE a.donation_id=$1 AND o.receiver_id=$2 AND o.status='DELIVERED'
                   )`
	var ok bool
	if err := r.storage.conn(ctx).QueryRow(ctx, query, donationID, receiverID).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

// --- DeliveryRepository implementation ---

func (r *deliveryRepository) Ensure(ctx context.Context, orderID, organizationID int64) (*model.Delivery, error) {
	const query = `INSERT INTO deliveries (order_id, organization_id, status)
                   VALUES ($1, $2, $3)
                   ON CONFLICT (order_id) DO NOTHING
                   RETURNING ` + deliveryColumns
	d, err := scanDelivery(r.storage.conn(ctx).QueryRow(ctx, query, orderID, organizationID, model.DeliveryStatusPickedUp))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return r.GetByOrder(ctx, orderID)
		}
		return nil, err
	}
	return &d, nil
}

func (r *deliveryRepository) Get(ctx context.Context, id int64) (*model.Delivery, error) {
	const query = `SELECT ` + deliveryColumns + ` FROM deliveries WHERE id=$1`
	d, err := scanDelivery(r.storage.conn(ctx).QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err)
	}
	return &d, nil
}

func (r *deliveryRepository) GetForUpdate(ctx context.Context, id int64) (*model.Delivery, error) {
	const query = `SELECT ` + deliveryColumns + ` FROM deliveries WHERE id=$1 FOR UPDATE`
	d, err := scanDelivery(r.storage.conn(ctx).QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err)
	}
	return &d, nil
}

func (r *deliveryRepository) GetByOrder(ctx context.Context, orderID int64) (*model.Delivery, error) {
	const query = `SELECT ` + deliveryColumns + ` FROM deliveries WHERE order_id=$1`
	d, err := scanDelivery(r.storage.conn(ctx).QueryRow(ctx, query, orderID))
	if err != nil {
		return nil, notFound(err)
	}
	return &d, nil
}

func (r *deliveryRepository) Update(ctx context.Context, d *model.Delivery) error {
	const query = `UPDATE deliveries SET status=$2, live_lat=$3, live_lng=$4, delivered_at=$5, updated_at=$6 WHERE id=$1`
	tag, err := r.storage.conn(ctx).Exec(ctx, query, d.ID, d.Status, d.LiveLat, d.LiveLng, d.DeliveredAt, d.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

package postgres

import (
	"context"
	"time"

	domainErrors "github.com/polkiloo/foodbridge/internal/domain/errors"
	"github.com/polkiloo/foodbridge/internal/domain/model"
)

const donationColumns = `id, donor_id, item, note, quantity, remaining, prepared_at, expires_at,
       pickup_lat, pickup_lng, status, organization_id, created_at, updated_at`

// openStatuses lists donation states that still hold or await stock.
const openStatuses = `('PENDING', 'ACCEPTED', 'PARTIAL')`

// stockStatuses lists donation states that hold allocatable stock.
const stockStatuses = `('ACCEPTED', 'PARTIAL')`

type donationRepository struct {
	storage *Storage
}

func scanDonation(row rowScanner) (model.Donation, error) {
	var d model.Donation
	err := row.Scan(&d.ID, &d.DonorID, &d.Item, &d.Note, &d.Quantity, &d.Remaining, &d.PreparedAt, &d.ExpiresAt,
		&d.PickupLat, &d.PickupLng, &d.Status, &d.OrganizationID, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}

func (r *donationRepository) Create(ctx context.Context, in model.NewDonation) (*model.Donation, error) {
	const query = `INSERT INTO donations (donor_id, item, note, quantity, prepared_at, expires_at, pickup_lat, pickup_lng, status)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
                   RETURNING ` + donationColumns
	d, err := scanDonation(r.storage.conn(ctx).QueryRow(ctx, query,
		in.DonorID, in.Item, in.Note, in.Quantity, in.PreparedAt, in.ExpiresAt, in.PickupLat, in.PickupLng, model.DonationStatusPending))
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *donationRepository) Get(ctx context.Context, id int64) (*model.Donation, error) {
	const query = `SELECT ` + donationColumns + ` FROM donations WHERE id=$1`
	d, err := scanDonation(r.storage.conn(ctx).QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err)
	}
	return &d, nil
}

func (r *donationRepository) GetForUpdate(ctx context.Context, id int64) (*model.Donation, error) {
	const query = `SELECT ` + donationColumns + ` FROM donations WHERE id=$1 FOR UPDATE`
	d, err := scanDonation(r.storage.conn(ctx).QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err)
	}
	return &d, nil
}

func (r *donationRepository) Update(ctx context.Context, d *model.Donation) error {
	const query = `UPDATE donations SET remaining=$2, status=$3, organization_id=$4, updated_at=$5 WHERE id=$1`
	tag, err := r.storage.conn(ctx).Exec(ctx, query, d.ID, d.Remaining, d.Status, d.OrganizationID, d.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (r *donationRepository) LockAllocatable(ctx context.Context, organizationID int64, item string) ([]model.Donation, error) {
	const query = `SELECT ` + donationColumns + ` FROM donations
                   WHERE organization_id=$1 AND LOWER(item)=LOWER($2)
                     AND status IN ` + stockStatuses + ` AND remaining > 0
                   ORDER BY id
                   FOR UPDATE`
	rows, err := r.storage.conn(ctx).Query(ctx, query, organizationID, item)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanDonation)
}

func (r *donationRepository) LockExpired(ctx context.Context, now time.Time, limit int) ([]model.Donation, error) {
	const query = `SELECT ` + donationColumns + ` FROM donations
                   WHERE status IN ` + openStatuses + ` AND expires_at < $1
                   ORDER BY id
                   LIMIT $2
                   FOR UPDATE SKIP LOCKED`
	rows, err := r.storage.conn(ctx).Query(ctx, query, now, limit)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanDonation)
}

func (r *donationRepository) ListPending(ctx context.Context, now time.Time) ([]model.Donation, error) {
	const query = `SELECT ` + donationColumns + ` FROM donations
                   WHERE status='PENDING' AND expires_at >= $1
                   ORDER BY id`
	rows, err := r.storage.conn(ctx).Query(ctx, query, now)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanDonation)
}

func (r *donationRepository) ListByOrganization(ctx context.Context, organizationID int64) ([]model.Donation, error) {
	const query = `SELECT ` + donationColumns + ` FROM donations
                   WHERE organization_id=$1 AND status IN ` + stockStatuses + `
                   ORDER BY id`
	rows, err := r.storage.conn(ctx).Query(ctx, query, organizationID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanDonation)
}

func (r *donationRepository) AvailableStock(ctx context.Context, item string, organizationID *int64, now time.Time) (int, error) {
	const query = `SELECT COALESCE(SUM(remaining), 0) FROM donations
                   WHERE LOWER(item)=LOWER($1) AND status IN ` + stockStatuses + `
                     AND remaining > 0 AND expires_at >= $2
                     AND ($3::BIGINT IS NULL OR organization_id=$3)`
	var total int64
	if err := r.storage.conn(ctx).QueryRow(ctx, query, item, now, organizationID).Scan(&total); err != nil {
		return 0, err
	}
	return int(total), nil
}

func (r *donationRepository) StockByOrganization(ctx context.Context, item string, now time.Time) ([]model.OrganizationStock, error) {
	const query = `SELECT organization_id, SUM(remaining) FROM donations
                   WHERE LOWER(item)=LOWER($1) AND status IN ` + stockStatuses + `
                     AND remaining > 0 AND expires_at >= $2 AND organization_id IS NOT NULL
                   GROUP BY organization_id
                   ORDER BY organization_id`
	rows, err := r.storage.conn(ctx).Query(ctx, query, item, now)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(row rowScanner) (model.OrganizationStock, error) {
		s := model.OrganizationStock{Item: item}
		var remaining int64
		if err := row.Scan(&s.OrganizationID, &remaining); err != nil {
			return s, err
		}
		s.Remaining = int(remaining)
		return s, nil
	})
}

package postgres

import (
	"context"

	"github.com/polkiloo/foodbridge/internal/domain/model"
)

type locationRepository struct {
	storage *Storage
}

type ratingRepository struct {
	storage *Storage
}

func scanLocation(row rowScanner) (model.OrganizationLocation, error) {
	var l model.OrganizationLocation
	err := row.Scan(&l.OrganizationID, &l.Lat, &l.Lng, &l.Label, &l.UpdatedAt)
	return l, err
}

// --- LocationRepository implementation ---

func (r *locationRepository) Upsert(ctx context.Context, loc model.OrganizationLocation) (*model.OrganizationLocation, error) {
	const query = `INSERT INTO organization_locations (organization_id, lat, lng, label, updated_at)
                   VALUES ($1, $2, $3, $4, $5)
                   ON CONFLICT (organization_id) DO UPDATE
                   SET lat = EXCLUDED.lat, lng = EXCLUDED.lng, label = EXCLUDED.label, updated_at = EXCLUDED.updated_at
                   RETURNING organization_id, lat, lng, label, updated_at`
	l, err := scanLocation(r.storage.conn(ctx).QueryRow(ctx, query, loc.OrganizationID, loc.Lat, loc.Lng, loc.Label, loc.UpdatedAt))
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *locationRepository) List(ctx context.Context) ([]model.OrganizationLocation, error) {
	const query = `SELECT organization_id, lat, lng, label, updated_at FROM organization_locations ORDER BY organization_id`
	rows, err := r.storage.conn(ctx).Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanLocation)
}

// --- RatingRepository implementation ---

func (r *ratingRepository) Upsert(ctx context.Context, rating model.DonorRating) (*model.DonorRating, error) {
	const query = `INSERT INTO donor_ratings (donation_id, donor_id, rater_id, rater_role, stars, comment, created_at)
                   VALUES ($1, $2, $3, $4, $5, $6, $7)
                   ON CONFLICT (donation_id, rater_id, rater_role) DO UPDATE
                   SET stars = EXCLUDED.stars, comment = EXCLUDED.comment, created_at = EXCLUDED.created_at
                   RETURNING id`
	err := r.storage.conn(ctx).QueryRow(ctx, query,
		rating.DonationID, rating.DonorID, rating.RaterID, rating.RaterRole, rating.Stars, rating.Comment, rating.CreatedAt).Scan(&rating.ID)
	if err != nil {
		return nil, err
	}
	return &rating, nil
}

func (r *ratingRepository) Averages(ctx context.Context, donorID int64) (model.RatingAverages, error) {
	const query = `SELECT
                       COALESCE(AVG(stars) FILTER (WHERE rater_role='ORGANIZATION'), 0)::DOUBLE PRECISION,
                       COUNT(*) FILTER (WHERE rater_role='ORGANIZATION'),
                       COALESCE(AVG(stars) FILTER (WHERE rater_role='RECEIVER'), 0)::DOUBLE PRECISION,
                       COUNT(*) FILTER (WHERE rater_role='RECEIVER')
                   FROM donor_ratings WHERE donor_id=$1`
	var (
		avg                model.RatingAverages
		orgCount, recvCount int64
	)
	err := r.storage.conn(ctx).QueryRow(ctx, query, donorID).Scan(&avg.Organization, &orgCount, &avg.Receiver, &recvCount)
	if err != nil {
		return model.RatingAverages{}, err
	}
	avg.OrganizationCount = int(orgCount)
	avg.ReceiverCount = int(recvCount)
	return avg, nil
}

package database

import (
	"time"

	"github.com/edgard/construfacil/internal/store"
)

// professionalRow is the professionals table layout. created_at holds unix
// nanoseconds so TTL cutoffs compare as integers.
type professionalRow struct {
	Seq       int64   `db:"seq"`
	ID        string  `db:"id"`
	OwnerID   string  `db:"owner_id"`
	Name      string  `db:"name"`
	Trade     string  `db:"trade"`
	Contact   string  `db:"contact"`
	Desc      string  `db:"description"`
	Lat       float64 `db:"lat"`
	Lng       float64 `db:"lng"`
	CreatedAt int64   `db:"created_at"`
}

func rowFromProfessional(p store.Professional) professionalRow {
	return professionalRow{
		ID:        p.ID,
		OwnerID:   p.OwnerID,
		Name:      p.Name,
		Trade:     p.Trade,
		Contact:   p.Contact,
		Desc:      p.Desc,
		Lat:       p.Lat,
		Lng:       p.Lng,
		CreatedAt: p.CreatedAt.UnixNano(),
	}
}

func (r professionalRow) professional() store.Professional {
	return store.Professional{
		ID:        r.ID,
		OwnerID:   r.OwnerID,
		Name:      r.Name,
		Trade:     r.Trade,
		Contact:   r.Contact,
		Desc:      r.Desc,
		Lat:       r.Lat,
		Lng:       r.Lng,
		CreatedAt: time.Unix(0, r.CreatedAt).UTC(),
	}
}

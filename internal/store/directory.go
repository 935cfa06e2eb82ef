package store

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidListing is returned when a registration fails validation.
var ErrInvalidListing = errors.New("invalid professional listing")

// Professional is a directory listing. Each owner has at most one.
type Professional struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Name      string    `json:"name"`
	Trade     string    `json:"trade"`
	Contact   string    `json:"contact"`
	Desc      string    `json:"desc"`
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	CreatedAt time.Time `json:"createdAt"`
}

// Registration is the request to create or replace an owner's listing.
// Coordinates are pointers so a missing value can be told apart from zero.
type Registration struct {
	OwnerID string   `json:"ownerId" validate:"required"`
	Name    string   `json:"name"    validate:"required"`
	Trade   string   `json:"trade"   validate:"required"`
	Contact string   `json:"contact" validate:"required"`
	Desc    string   `json:"desc"`
	Lat     *float64 `json:"lat"     validate:"required,latitude"`
	Lng     *float64 `json:"lng"     validate:"required,longitude"`
}

// Directory is the professional directory. Implementations must keep the
// one-listing-per-owner invariant and be safe for concurrent use.
type Directory interface {
	// List returns every current listing in insertion order.
	List(ctx context.Context) ([]Professional, error)

	// Register validates reg, removes any listing owned by reg.OwnerID and
	// inserts a fresh one. Validation failures wrap ErrInvalidListing and
	// leave the directory untouched.
	Register(ctx context.Context, reg Registration) (*Professional, error)

	// DeleteByOwner removes the owner's listings and returns how many were
	// removed. Unknown owners yield 0 and no error.
	DeleteByOwner(ctx context.Context, ownerID string) (int, error)

	// EvictExpired removes listings older than the directory TTL at now.
	EvictExpired(ctx context.Context, now time.Time) (int, error)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Normalize trims the string fields of reg and validates it. The returned
// error wraps ErrInvalidListing and reads well enough to show to a caller.
func (reg *Registration) Normalize() error {
	reg.OwnerID = strings.TrimSpace(reg.OwnerID)
	reg.Name = strings.TrimSpace(reg.Name)
	reg.Trade = strings.TrimSpace(reg.Trade)
	reg.Contact = strings.TrimSpace(reg.Contact)
	reg.Desc = strings.TrimSpace(reg.Desc)

	err := validate.Struct(reg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidListing, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		case "latitude", "longitude":
			msgs = append(msgs, fe.Field()+" must be a valid "+fe.Tag())
		default:
			msgs = append(msgs, fe.Field()+" is invalid")
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalidListing, strings.Join(msgs, ", "))
}

// NewProfessional builds the listing for a validated registration.
func NewProfessional(reg Registration, now time.Time) Professional {
	now = now.UTC()
	return Professional{
		ID:        NewID(now),
		OwnerID:   reg.OwnerID,
		Name:      reg.Name,
		Trade:     reg.Trade,
		Contact:   reg.Contact,
		Desc:      reg.Desc,
		Lat:       *reg.Lat,
		Lng:       *reg.Lng,
		CreatedAt: now,
	}
}

// MemoryDirectory is the default Directory, held in process memory.
type MemoryDirectory struct {
	mu       sync.RWMutex
	listings []Professional
	ttl      time.Duration
	now      func() time.Time
}

const defaultDirectoryTTL = 30 * 24 * time.Hour

// NewMemoryDirectory creates an empty in-memory directory. A nil now uses
// time.Now.
func NewMemoryDirectory(ttl time.Duration, now func() time.Time) *MemoryDirectory {
	if ttl <= 0 {
		ttl = defaultDirectoryTTL
	}
	if now == nil {
		now = time.Now
	}
	return &MemoryDirectory{ttl: ttl, now: now}
}

// List implements Directory.
func (d *MemoryDirectory) List(_ context.Context) ([]Professional, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]Professional, len(d.listings))
	copy(out, d.listings)
	return out, nil
}

// Register implements Directory.
func (d *MemoryDirectory) Register(_ context.Context, reg Registration) (*Professional, error) {
	if err := reg.Normalize(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.removeOwnerLocked(reg.OwnerID)
	p := NewProfessional(reg, d.now())
	d.listings = append(d.listings, p)
	return &p, nil
}

// DeleteByOwner implements Directory.
func (d *MemoryDirectory) DeleteByOwner(_ context.Context, ownerID string) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.removeOwnerLocked(strings.TrimSpace(ownerID)), nil
}

// EvictExpired implements Directory.
func (d *MemoryDirectory) EvictExpired(_ context.Context, now time.Time) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.filterLocked(func(p Professional) bool {
		return !Expired(p.CreatedAt, now, d.ttl)
	}), nil
}

func (d *MemoryDirectory) removeOwnerLocked(ownerID string) int {
	return d.filterLocked(func(p Professional) bool {
		return p.OwnerID != ownerID
	})
}

// filterLocked keeps the listings for which keep returns true and reports
// how many were dropped. d.mu must be held for writing.
func (d *MemoryDirectory) filterLocked(keep func(Professional) bool) int {
	kept := d.listings[:0]
	for _, p := range d.listings {
		if keep(p) {
			kept = append(kept, p)
		}
	}
	removed := len(d.listings) - len(kept)
	clear(d.listings[len(kept):])
	d.listings = kept
	return removed
}

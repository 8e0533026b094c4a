package catalog

import (
	"context"
	"io"
	"log/slog"

	"class-booking/internal/domain/booking"
	"class-booking/internal/domain/slot"
	"class-booking/internal/infra/converter"
	"class-booking/internal/pkg/errs"
	"class-booking/internal/usecase/shared"

	"github.com/go-playground/validator/v10"
)

// RowError describes one spreadsheet row that was not imported. Row is 1-based.
type RowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

type ImportResult struct {
	Imported int        `json:"imported"`
	Skipped  []RowError `json:"skipped"`
}

//go:generate mockgen -source=catalog.go -destination=../../../tests/mock/catalog/catalog.go -package=catalogmock

type Catalog interface {
	CreateSlot(ctx context.Context, day, time string, slotsLeft int) (*slot.Slot, error)
	ListSlots(ctx context.Context) ([]*slot.Slot, error)
	ImportSlots(ctx context.Context, r io.Reader) (*ImportResult, error)
	ExportSlots(ctx context.Context, w io.Writer) (int, error)
	ListBookings(ctx context.Context) ([]*booking.Record, error)
	ExportBookings(ctx context.Context, w io.Writer) (int, error)
}

type catalogImpl struct {
	docs               shared.DocumentStore
	slotsCollection    string
	bookingsCollection string
	validate           *validator.Validate
	logger             *slog.Logger
}

func NewCatalog(docs shared.DocumentStore, slotsCollection, bookingsCollection string, logger *slog.Logger) Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &catalogImpl{
		docs:               docs,
		slotsCollection:    slotsCollection,
		bookingsCollection: bookingsCollection,
		validate:           validator.New(),
		logger:             logger.With(slog.String("component", "catalog")),
	}
}

type slotInput struct {
	Day       string `validate:"required,max=64"`
	Time      string `validate:"required,max=64"`
	SlotsLeft int    `validate:"gte=0"`
}

func (c *catalogImpl) CreateSlot(ctx context.Context, day, tm string, slotsLeft int) (*slot.Slot, error) {
	in := slotInput{Day: day, Time: tm, SlotsLeft: slotsLeft}
	if err := c.validate.Struct(in); err != nil {
		return nil, errs.Mark(err, errs.ErrDomainValidation)
	}
	// Validate through the entity before writing; the id is filled in afterwards.
	draft, err := slot.NewSlot("new", day, tm, slotsLeft)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDomainValidation)
	}

	id, err := c.docs.Insert(ctx, c.slotsCollection, converter.SlotToFields(draft.Day(), draft.Time(), draft.SlotsLeft()))
	if err != nil {
		return nil, errs.Mark(errs.Wrap(err, "insert slot"), errs.ErrStoreOperationFailed)
	}
	return slot.NewSlot(id, draft.Day(), draft.Time(), draft.SlotsLeft().Int())
}

func (c *catalogImpl) ListSlots(ctx context.Context) ([]*slot.Slot, error) {
	docs, err := c.docs.ListAll(ctx, c.slotsCollection)
	if err != nil {
		return nil, &shared.FetchError{Op: "list", Collection: c.slotsCollection, Err: err}
	}
	slots := make([]*slot.Slot, 0, len(docs))
	for _, doc := range docs {
		s, err := converter.SlotFromDocument(doc)
		if err != nil {
			c.logger.Warn("skipping malformed slot document",
				slog.String("id", doc.ID),
				slog.String("error", err.Error()))
			continue
		}
		slots = append(slots, s)
	}
	return slots, nil
}

func (c *catalogImpl) ListBookings(ctx context.Context) ([]*booking.Record, error) {
	docs, err := c.docs.ListAll(ctx, c.bookingsCollection)
	if err != nil {
		return nil, &shared.FetchError{Op: "list", Collection: c.bookingsCollection, Err: err}
	}
	records := make([]*booking.Record, 0, len(docs))
	for _, doc := range docs {
		r, err := converter.BookingFromDocument(doc)
		if err != nil {
			c.logger.Warn("skipping malformed booking document",
				slog.String("id", doc.ID),
				slog.String("error", err.Error()))
			continue
		}
		records = append(records, r)
	}
	return records, nil
}

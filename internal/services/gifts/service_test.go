package gifts

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"

	pgrepo "github.com/aeshtlv/GiftTinder/internal/repo/postgres"
)

type stubGiftStore struct {
	byOwner map[int64][]pgrepo.GiftRecord

	replaceErr error
}

func newStubGiftStore() *stubGiftStore {
	return &stubGiftStore{byOwner: map[int64][]pgrepo.GiftRecord{}}
}

func (s *stubGiftStore) ReplaceForOwner(_ context.Context, _ pgx.Tx, ownerTelegramID int64, gifts []pgrepo.GiftInput) (int, error) {
	if s.replaceErr != nil {
		return 0, s.replaceErr
	}

	records := make([]pgrepo.GiftRecord, 0, len(gifts))
	for i, gift := range gifts {
		if gift.Name == "" {
			continue
		}
		records = append(records, pgrepo.GiftRecord{
			ID:              int64(i + 1),
			OwnerTelegramID: ownerTelegramID,
			GiftID:          gift.GiftID,
			Name:            gift.Name,
			Description:     gift.Description,
			ImageURL:        gift.ImageURL,
			IsVisible:       gift.IsVisible,
		})
	}
	s.byOwner[ownerTelegramID] = records
	return len(records), nil
}

func (s *stubGiftStore) ListVisibleByOwner(_ context.Context, ownerTelegramID int64) ([]pgrepo.GiftRecord, error) {
	records := s.byOwner[ownerTelegramID]
	visible := make([]pgrepo.GiftRecord, 0, len(records))
	for _, record := range records {
		if record.IsVisible {
			visible = append(visible, record)
		}
	}
	return visible, nil
}

func newTestService(store GiftStore, cfg Config) *Service {
	s := NewService(Dependencies{GiftStore: store, Config: cfg})
	s.runTx = func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
		return fn(ctx, nil)
	}
	return s
}

func TestReplaceForOwnerSwapsCollection(t *testing.T) {
	store := newStubGiftStore()
	service := newTestService(store, Config{})
	ctx := context.Background()

	stored, err := service.ReplaceForOwner(ctx, 42, []Descriptor{
		{GiftID: "g-1", Name: "Star", IsVisible: true},
		{GiftID: "g-2", Name: "Heart", IsVisible: true},
	})
	if err != nil {
		t.Fatalf("first replace: %v", err)
	}
	if stored != 2 {
		t.Fatalf("stored = %d, want 2", stored)
	}

	stored, err = service.ReplaceForOwner(ctx, 42, []Descriptor{
		{GiftID: "g-3", Name: "Cake", IsVisible: true},
	})
	if err != nil {
		t.Fatalf("second replace: %v", err)
	}
	if stored != 1 {
		t.Fatalf("stored after swap = %d, want 1", stored)
	}

	gifts, err := service.ListVisibleForOwner(ctx, 42)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(gifts) != 1 || gifts[0].Name != "Cake" {
		t.Fatalf("collection not swapped wholesale: %+v", gifts)
	}
}

func TestReplaceForOwnerCapsCollection(t *testing.T) {
	store := newStubGiftStore()
	service := newTestService(store, Config{MaxGiftsPerUser: 3})
	ctx := context.Background()

	descriptors := make([]Descriptor, 0, 5)
	for i := 0; i < 5; i++ {
		descriptors = append(descriptors, Descriptor{
			GiftID:    fmt.Sprintf("g-%d", i),
			Name:      fmt.Sprintf("Gift %d", i),
			IsVisible: true,
		})
	}

	stored, err := service.ReplaceForOwner(ctx, 7, descriptors)
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if stored != 3 {
		t.Fatalf("stored = %d, want cap of 3", stored)
	}
}

func TestReplaceForOwnerEmptyCollection(t *testing.T) {
	store := newStubGiftStore()
	service := newTestService(store, Config{})
	ctx := context.Background()

	if _, err := service.ReplaceForOwner(ctx, 9, []Descriptor{{GiftID: "g-1", Name: "Star", IsVisible: true}}); err != nil {
		t.Fatalf("seed replace: %v", err)
	}

	stored, err := service.ReplaceForOwner(ctx, 9, nil)
	if err != nil {
		t.Fatalf("empty replace: %v", err)
	}
	if stored != 0 {
		t.Fatalf("stored = %d, want 0", stored)
	}

	gifts, err := service.ListVisibleForOwner(ctx, 9)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(gifts) != 0 {
		t.Fatalf("expected empty collection, got %+v", gifts)
	}
}

func TestReplaceForOwnerValidation(t *testing.T) {
	service := newTestService(newStubGiftStore(), Config{})

	if _, err := service.ReplaceForOwner(context.Background(), 0, nil); !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestListVisibleSkipsHiddenGifts(t *testing.T) {
	store := newStubGiftStore()
	service := newTestService(store, Config{})
	ctx := context.Background()

	if _, err := service.ReplaceForOwner(ctx, 11, []Descriptor{
		{GiftID: "g-1", Name: "Shown", IsVisible: true},
		{GiftID: "g-2", Name: "Hidden", IsVisible: false},
	}); err != nil {
		t.Fatalf("replace: %v", err)
	}

	gifts, err := service.ListVisibleForOwner(ctx, 11)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(gifts) != 1 || gifts[0].Name != "Shown" {
		t.Fatalf("hidden gifts leaked: %+v", gifts)
	}
}

// Package items implements the rules for reporting and moderating items.
package items

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/erazemk/najdeno/internal/auth"
	"github.com/erazemk/najdeno/internal/imaging"
	"github.com/erazemk/najdeno/internal/media"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

// Service coordinates item storage, image uploads and staff checks.
type Service struct {
	DB    *sql.DB
	Media *media.Store
}

// CreatePublic stores an item reported by a visitor. Public reports are
// always filed as found items.
func (s *Service) CreatePublic(ctx context.Context, in Input) (*model.Item, error) {
	in = in.Normalize()
	in.Category = model.CategoryFound
	in.Status = ""
	return s.create(ctx, in, "")
}

// CreateAdmin stores an item entered from the admin panel. An empty category
// defaults to found.
func (s *Service) CreateAdmin(ctx context.Context, sess *auth.Session, in Input) (*model.Item, error) {
	if err := auth.RequireStaff(sess); err != nil {
		return nil, err
	}
	in = in.Normalize()
	if in.Category == "" {
		in.Category = model.CategoryFound
	}
	return s.create(ctx, in, sess.Username)
}

func (s *Service) create(ctx context.Context, in Input, actor string) (*model.Item, error) {
	if verr := Validate(in); verr != nil {
		return nil, verr
	}

	imageRef, err := s.saveImage(in)
	if err != nil {
		return nil, err
	}

	item, err := store.CreateItem(ctx, s.DB, model.Item{
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Location:    in.Location,
		ContactInfo: in.ContactInfo,
		Image:       imageRef,
		Status:      in.Status,
	})
	if err != nil {
		s.discardImage(imageRef)
		return nil, err
	}

	slog.Info("item created", "item", item.ID, "category", item.Category, "user", actor)
	return item, nil
}

// Update overwrites an item with a full submission. An empty status keeps the
// stored one and a new image replaces the previous file. Values the
// submission leaves out are kept by the store, never read back and rewritten.
func (s *Service) Update(ctx context.Context, sess *auth.Session, id int64, in Input) (*model.Item, error) {
	if err := auth.RequireStaff(sess); err != nil {
		return nil, err
	}

	in = in.Normalize()
	if verr := Validate(in); verr != nil {
		return nil, verr
	}

	imageRef, err := s.saveImage(in)
	if err != nil {
		return nil, err
	}

	item, replaced, err := store.UpdateItem(ctx, s.DB, id, model.Item{
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Location:    in.Location,
		ContactInfo: in.ContactInfo,
		Image:       imageRef,
		Status:      in.Status,
	})
	if err != nil {
		s.discardImage(imageRef)
		return nil, err
	}
	s.discardImage(replaced)

	slog.Info("item updated", "item", id, "user", sess.Username)
	return item, nil
}

// Delete removes an item and its image.
func (s *Service) Delete(ctx context.Context, sess *auth.Session, id int64) error {
	if err := auth.RequireStaff(sess); err != nil {
		return err
	}

	item, err := store.DeleteItem(ctx, s.DB, id)
	if err != nil {
		return err
	}
	s.discardImage(item.Image)

	slog.Info("item deleted", "item", id, "user", sess.Username)
	return nil
}

// ToggleStatus flips an item between Pending and Claimed and returns the new
// status.
func (s *Service) ToggleStatus(ctx context.Context, sess *auth.Session, id int64) (string, error) {
	if err := auth.RequireStaff(sess); err != nil {
		return "", err
	}

	status, err := store.ToggleItemStatus(ctx, s.DB, id)
	if err != nil {
		return "", err
	}

	slog.Info("item status changed", "item", id, "status", status, "user", sess.Username)
	return status, nil
}

// RemoveImage detaches the photo from an item and deletes the file.
func (s *Service) RemoveImage(ctx context.Context, sess *auth.Session, id int64) error {
	if err := auth.RequireStaff(sess); err != nil {
		return err
	}

	previous, err := store.UpdateItemField(ctx, s.DB, id, "image", "")
	if err != nil {
		return err
	}
	if previous == "" {
		return nil
	}
	s.discardImage(previous)

	slog.Info("item image removed", "item", id, "user", sess.Username)
	return nil
}

// Get returns a single item.
func (s *Service) Get(ctx context.Context, id int64) (*model.Item, error) {
	return store.GetItem(ctx, s.DB, id)
}

// List returns items newest first. The store matches the category filter
// literally; callers drop values that are not a known category.
func (s *Service) List(ctx context.Context, filter model.ItemFilter) ([]model.Item, error) {
	return store.ListItems(ctx, s.DB, filter)
}

// Counts returns item totals per category and status.
func (s *Service) Counts(ctx context.Context) (store.ItemCounts, error) {
	return store.CountItems(ctx, s.DB)
}

// saveImage processes and stores the upload, if any. Unreadable or
// unsupported images are reported as a validation error on the image field.
func (s *Service) saveImage(in Input) (string, error) {
	if in.Image == nil {
		return "", nil
	}
	if s.Media == nil {
		return "", errors.New("image uploads are not configured")
	}

	result, err := imaging.Process(in.Image)
	if err != nil {
		slog.Warn("rejected item image", "error", err)
		return "", &ValidationError{Fields: map[string]string{
			"image": "Upload a valid image. The file you uploaded was either not an image or a corrupted image.",
		}}
	}

	ref, err := s.Media.SaveItemImage(result.Data)
	if err != nil {
		return "", fmt.Errorf("saving item image: %w", err)
	}
	return ref, nil
}

func (s *Service) discardImage(ref string) {
	if ref == "" || s.Media == nil {
		return
	}
	if err := s.Media.Remove(ref); err != nil {
		slog.Warn("removing item image", "image", ref, "error", err)
	}
}

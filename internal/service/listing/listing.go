// Package listing orchestrates the aircraft listing lifecycle: media
// upload, persistence, moderation, and seller notifications.
package listing

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/skydeals/skydeals-api/internal/domain"
	"github.com/skydeals/skydeals-api/internal/platform/mail"
	"github.com/skydeals/skydeals-api/internal/platform/media"
	"github.com/skydeals/skydeals-api/internal/platform/metrics"
	"github.com/skydeals/skydeals-api/internal/store"
)

const (
	// MaxImages is the most images one listing may carry.
	MaxImages = 10

	// MaxImageBytes caps a single image upload at 5 MB.
	MaxImageBytes = 5 << 20

	// MaxVideoBytes caps the optional video upload at 50 MB.
	MaxVideoBytes = 50 << 20

	imageFolder = "skydeals/images"
	videoFolder = "skydeals/videos"
)

var (
	ErrUnsupportedImage = errors.New("not an image, please upload only PNG or JPEG images")
	ErrUnsupportedVideo = errors.New("not a video, please upload only MP4 videos")
	ErrImageTooLarge    = errors.New("image exceeds the 5 MB size limit")
	ErrVideoTooLarge    = errors.New("video exceeds the 50 MB size limit")
	ErrTooManyImages    = errors.New("a listing may carry at most 10 images")
	ErrTooManyVideos    = errors.New("a listing may carry at most one video")
)

var allowedImageTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
}

// Upload is one multipart file destined for the media host.
type Upload struct {
	ContentType string
	Data        []byte
}

// CreateInput carries the validated listing fields plus the raw uploads.
type CreateInput struct {
	Name         string
	SerialNumber string
	Manufacturer string
	Model        string
	Category     string
	Year         string
	Description  string
	Price        float64
	Address      string
	Country      string
	City         string
	Province     string
	PostalCode   string
	SpecSheet    map[string]string

	Images []Upload
	Video  *Upload
}

// Notifier queues non-critical notification emails; delivery failures are
// logged and swallowed by the implementation.
type Notifier interface {
	Notify(ctx context.Context, msg mail.Message)
}

// Service implements the listing lifecycle.
type Service struct {
	aircrafts store.AircraftStore
	users     store.UserStore
	uploader  media.Uploader
	notifier  Notifier
}

// NewService creates a listing service.
func NewService(
	aircrafts store.AircraftStore,
	users store.UserStore,
	uploader media.Uploader,
	notifier Notifier,
) *Service {
	return &Service{
		aircrafts: aircrafts,
		users:     users,
		uploader:  uploader,
		notifier:  notifier,
	}
}

// Create validates the uploads, stores them on the media host, persists the
// listing unapproved, and queues the submission notification. A forbidden
// file type or size aborts the whole operation; nothing is persisted.
func (s *Service) Create(ctx context.Context, owner *domain.User, in CreateInput) (*domain.Aircraft, error) {
	if err := validateUploads(in); err != nil {
		metrics.ListingOperations.WithLabelValues("create", "rejected").Inc()
		return nil, err
	}

	imageURLs, videoURL, err := s.uploadMedia(ctx, in)
	if err != nil {
		metrics.ListingOperations.WithLabelValues("create", "upload_failed").Inc()
		return nil, err
	}

	aircraft := domain.NewAircraft(owner.ID)
	aircraft.Name = in.Name
	aircraft.SerialNumber = in.SerialNumber
	aircraft.Manufacturer = in.Manufacturer
	aircraft.Model = in.Model
	aircraft.Category = in.Category
	aircraft.Year = in.Year
	aircraft.Description = in.Description
	aircraft.Price = in.Price
	aircraft.Address = in.Address
	aircraft.Country = in.Country
	aircraft.City = in.City
	aircraft.Province = in.Province
	aircraft.PostalCode = in.PostalCode
	aircraft.SpecSheet = in.SpecSheet
	aircraft.Images = imageURLs
	aircraft.Video = videoURL

	if err := s.aircrafts.Create(ctx, aircraft); err != nil {
		metrics.ListingOperations.WithLabelValues("create", "error").Inc()
		return nil, fmt.Errorf("persisting listing: %w", err)
	}
	metrics.ListingOperations.WithLabelValues("create", "ok").Inc()

	if msg, err := mail.ListingCreated(owner.Email, owner.Name, aircraft.Name); err == nil {
		s.notifier.Notify(ctx, msg)
	}

	return aircraft, nil
}

// Delete removes a listing and returns the deleted row.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) (*domain.Aircraft, error) {
	aircraft, err := s.aircrafts.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	metrics.ListingOperations.WithLabelValues("delete", "ok").Inc()
	return aircraft, nil
}

// Approve marks a listing approved and notifies the seller.
func (s *Service) Approve(ctx context.Context, id uuid.UUID) (*domain.Aircraft, error) {
	aircraft, err := s.aircrafts.SetApproved(ctx, id, true)
	if err != nil {
		return nil, err
	}
	metrics.ListingOperations.WithLabelValues("approve", "ok").Inc()
	s.notifyModeration(ctx, aircraft, true)
	return aircraft, nil
}

// Reject removes an unapproved listing and notifies the seller.
func (s *Service) Reject(ctx context.Context, id uuid.UUID) (*domain.Aircraft, error) {
	aircraft, err := s.aircrafts.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	metrics.ListingOperations.WithLabelValues("reject", "ok").Inc()
	s.notifyModeration(ctx, aircraft, false)
	return aircraft, nil
}

func (s *Service) notifyModeration(ctx context.Context, aircraft *domain.Aircraft, approved bool) {
	owner, err := s.users.GetByID(ctx, aircraft.UserID)
	if err != nil {
		return
	}
	if msg, err := mail.ListingModerated(owner.Email, owner.Name, aircraft.Name, approved); err == nil {
		s.notifier.Notify(ctx, msg)
	}
}

// validateUploads enforces the media filter before anything touches the
// media host. Rejection is terminal for the whole request.
func validateUploads(in CreateInput) error {
	if len(in.Images) > MaxImages {
		return ErrTooManyImages
	}
	for _, img := range in.Images {
		if !allowedImageTypes[img.ContentType] {
			return fmt.Errorf("%w (got %s)", ErrUnsupportedImage, img.ContentType)
		}
		if len(img.Data) > MaxImageBytes {
			return ErrImageTooLarge
		}
	}
	if in.Video != nil {
		if in.Video.ContentType != "video/mp4" {
			return fmt.Errorf("%w (got %s)", ErrUnsupportedVideo, in.Video.ContentType)
		}
		if len(in.Video.Data) > MaxVideoBytes {
			return ErrVideoTooLarge
		}
	}
	return nil
}

func (s *Service) uploadMedia(ctx context.Context, in CreateInput) ([]string, string, error) {
	imageURLs := make([]string, 0, len(in.Images))
	for _, img := range in.Images {
		url, err := s.uploader.Upload(ctx, media.Asset{
			Folder:      imageFolder,
			ContentType: img.ContentType,
			Data:        img.Data,
		})
		if err != nil {
			return nil, "", err
		}
		metrics.MediaUploadBytes.WithLabelValues("image").Observe(float64(len(img.Data)))
		imageURLs = append(imageURLs, url)
	}

	var videoURL string
	if in.Video != nil {
		url, err := s.uploader.Upload(ctx, media.Asset{
			Folder:      videoFolder,
			ContentType: in.Video.ContentType,
			Data:        in.Video.Data,
		})
		if err != nil {
			return nil, "", err
		}
		metrics.MediaUploadBytes.WithLabelValues("video").Observe(float64(len(in.Video.Data)))
		videoURL = url
	}
	return imageURLs, videoURL, nil
}

package api

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/skydeals/skydeals-api/internal/api/shared"
	"github.com/skydeals/skydeals-api/internal/service/listing"
	"github.com/skydeals/skydeals-api/internal/store"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	// maxMultipartMemory bounds the in-memory portion of multipart parsing.
	maxMultipartMemory = 64 << 20

	recentAdsLimit  = 8
	relatedAdsLimit = 4
)

// AircraftHandler serves the listing endpoints.
type AircraftHandler struct {
	aircrafts store.AircraftStore
	users     store.UserStore
	listings  *listing.Service
}

// NewAircraftHandler creates an AircraftHandler.
func NewAircraftHandler(aircrafts store.AircraftStore, users store.UserStore, listings *listing.Service) *AircraftHandler {
	return &AircraftHandler{aircrafts: aircrafts, users: users, listings: listings}
}

// Search handles GET /aircrafts: public search over approved listings.
// The reserved parameters page, sort, limit and fields drive the query
// pipeline; search and category are endpoint-level filters; everything
// else must name an allow-listed filter field.
func (h *AircraftHandler) Search(w http.ResponseWriter, r *http.Request) error {
	params := r.URL.Query()
	search := params.Get("search")
	category := params.Get("category")
	params.Del("search")
	params.Del("category")

	result, err := h.aircrafts.Search(r.Context(), store.SearchQuery{
		Params:       params,
		NameContains: search,
		Category:     category,
		ApprovedOnly: true,
	})
	if err != nil {
		return err
	}

	shared.RespondWithJSON(w, r, http.StatusOK, SearchResponse{
		Status:       "success",
		TotalResults: result.TotalResults,
		Length:       len(result.Data),
		Data:         result.Data,
	})
	return nil
}

// Get handles GET /aircrafts/{id}. The detail view carries the seller's
// contact details so buyers can reach out; a listing whose owner account
// has since been removed is served without them.
func (h *AircraftHandler) Get(w http.ResponseWriter, r *http.Request) error {
	id, err := parseID(r)
	if err != nil {
		return err
	}
	aircraft, err := h.aircrafts.GetByID(r.Context(), id)
	if err != nil {
		return err
	}

	detail := ListingDetail{Aircraft: aircraft}
	if owner, err := h.users.GetByID(r.Context(), aircraft.UserID); err == nil {
		detail.Seller = &SellerContact{
			Name:  owner.Name,
			Email: owner.Email,
			Phone: owner.Phone,
		}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, shared.Success(detail))
	return nil
}

// Create handles POST /aircrafts (sellers, multipart). Listing fields
// arrive as form values, media as file parts named "images" and "video".
func (h *AircraftHandler) Create(w http.ResponseWriter, r *http.Request) error {
	principal, ok := shared.PrincipalFrom(r.Context())
	if !ok {
		return NewError(http.StatusUnauthorized, "You are not logged in. Please log in to get access")
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return NewError(http.StatusBadRequest, "Invalid multipart form")
	}

	in, err := decodeCreateInput(r)
	if err != nil {
		return err
	}

	aircraft, err := h.listings.Create(r.Context(), principal, in)
	if err != nil {
		return err
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, shared.Success(aircraft))
	return nil
}

// Delete handles DELETE /aircrafts/{id} (owner only, enforced upstream).
func (h *AircraftHandler) Delete(w http.ResponseWriter, r *http.Request) error {
	id, err := parseID(r)
	if err != nil {
		return err
	}
	deleted, err := h.listings.Delete(r.Context(), id)
	if err != nil {
		return err
	}
	shared.RespondWithJSON(w, r, http.StatusOK, shared.Success(deleted))
	return nil
}

// Approve handles PATCH /aircrafts/approve-listing/{id} (admin only).
func (h *AircraftHandler) Approve(w http.ResponseWriter, r *http.Request) error {
	id, err := parseID(r)
	if err != nil {
		return err
	}
	aircraft, err := h.listings.Approve(r.Context(), id)
	if err != nil {
		return err
	}
	shared.RespondWithJSON(w, r, http.StatusOK, shared.NewEnvelope("Listing Approved", aircraft))
	return nil
}

// Reject handles PATCH /aircrafts/reject-listing/{id} (admin only). The
// listing is removed and the seller notified.
func (h *AircraftHandler) Reject(w http.ResponseWriter, r *http.Request) error {
	id, err := parseID(r)
	if err != nil {
		return err
	}
	aircraft, err := h.listings.Reject(r.Context(), id)
	if err != nil {
		return err
	}
	shared.RespondWithJSON(w, r, http.StatusOK, shared.NewEnvelope("Listing Rejected", aircraft))
	return nil
}

// RecentAds handles GET /aircrafts/recent-ads.
func (h *AircraftHandler) RecentAds(w http.ResponseWriter, r *http.Request) error {
	ads, err := h.aircrafts.ListRecent(r.Context(), recentAdsLimit)
	if err != nil {
		return err
	}
	shared.RespondWithJSON(w, r, http.StatusOK, shared.Success(ads))
	return nil
}

// UnapprovedAds handles GET /aircrafts/unapproved-ads (admin only).
func (h *AircraftHandler) UnapprovedAds(w http.ResponseWriter, r *http.Request) error {
	ads, err := h.aircrafts.ListUnapproved(r.Context())
	if err != nil {
		return err
	}
	shared.RespondWithJSON(w, r, http.StatusOK, shared.Success(ads))
	return nil
}

// RelatedAds handles GET /aircrafts/related-ads/{id}.
func (h *AircraftHandler) RelatedAds(w http.ResponseWriter, r *http.Request) error {
	id, err := parseID(r)
	if err != nil {
		return err
	}
	ads, err := h.aircrafts.ListRelated(r.Context(), id, relatedAdsLimit)
	if err != nil {
		return err
	}
	shared.RespondWithJSON(w, r, http.StatusOK, shared.Success(ads))
	return nil
}

func parseID(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, InvalidIDError("id", raw)
	}
	return id, nil
}

// decodeCreateInput maps the multipart form onto the listing input.
func decodeCreateInput(r *http.Request) (listing.CreateInput, error) {
	form := r.MultipartForm

	price, err := strconv.ParseFloat(r.FormValue("price"), 64)
	if err != nil {
		return listing.CreateInput{}, NewError(http.StatusBadRequest, "Invalid price: must be a number")
	}

	in := listing.CreateInput{
		Name:         r.FormValue("aircraft_name"),
		SerialNumber: r.FormValue("serial_number"),
		Manufacturer: r.FormValue("manufacturer"),
		Model:        r.FormValue("model"),
		Category:     r.FormValue("category"),
		Year:         r.FormValue("year"),
		Description:  r.FormValue("description"),
		Price:        price,
		Address:      r.FormValue("address"),
		Country:      r.FormValue("country"),
		City:         r.FormValue("city"),
		Province:     r.FormValue("province"),
		PostalCode:   r.FormValue("postal_code"),
	}

	if raw := r.FormValue("spec_sheet"); raw != "" {
		if err := json.UnmarshalFromString(raw, &in.SpecSheet); err != nil {
			return listing.CreateInput{}, NewError(http.StatusBadRequest, "Invalid spec_sheet: must be a JSON object of strings")
		}
	}

	for _, fh := range form.File["images"] {
		upload, err := readUpload(fh, listing.MaxImageBytes)
		if err != nil {
			return listing.CreateInput{}, err
		}
		in.Images = append(in.Images, upload)
	}

	if videos := form.File["video"]; len(videos) > 1 {
		return listing.CreateInput{}, listing.ErrTooManyVideos
	} else if len(videos) == 1 {
		upload, err := readUpload(videos[0], listing.MaxVideoBytes)
		if err != nil {
			return listing.CreateInput{}, err
		}
		in.Video = &upload
	}

	return in, nil
}

// readUpload buffers one file part, reading at most one byte past the cap
// so the size check in the listing service can reject oversize files
// without the handler slurping arbitrarily large bodies.
func readUpload(fh *multipart.FileHeader, maxBytes int) (listing.Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return listing.Upload{}, fmt.Errorf("opening upload %s: %w", fh.Filename, err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(io.LimitReader(f, int64(maxBytes)+1))
	if err != nil {
		return listing.Upload{}, fmt.Errorf("reading upload %s: %w", fh.Filename, err)
	}

	contentType := http.DetectContentType(data)
	if contentType == "application/octet-stream" {
		if declared := fh.Header.Get("Content-Type"); declared != "" {
			contentType = declared
		}
	}

	return listing.Upload{ContentType: contentType, Data: data}, nil
}

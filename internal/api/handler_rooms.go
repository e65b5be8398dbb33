package api

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"hotel-ops-backend/internal/filestore"
	"hotel-ops-backend/internal/model"
	"hotel-ops-backend/internal/service"
)

// photoExtensions lists the accepted room photo file types.
var photoExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// createRoomForm is the multipart body of POST /api/rooms.
type createRoomForm struct {
	RoomNumber    string           `form:"roomNumber" binding:"required"`
	Description   *string          `form:"description"`
	Type          model.RoomType   `form:"type" binding:"required,enum"`
	Status        model.RoomStatus `form:"status" binding:"required,enum"`
	PricePerNight decimal.Decimal  `form:"pricePerNight" binding:"gte=0"`
}

// updateRoomForm is the multipart body of PUT /api/rooms/:id. Only description, status
// and photo take effect.
type updateRoomForm struct {
	RoomNumber    string           `form:"roomNumber"`
	Description   *string          `form:"description"`
	Type          model.RoomType   `form:"type"`
	Status        model.RoomStatus `form:"status" binding:"required,enum"`
	PricePerNight decimal.Decimal  `form:"pricePerNight"`
}

// ListRooms handles GET /api/rooms.
func (h *Handler) ListRooms(c *gin.Context) {
	var filter service.RoomFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		badRequest(c, err)
		return
	}
	replyPaged(c, h.rooms.List(c.Request.Context(), filter))
}

// GetRoom handles GET /api/rooms/:id.
func (h *Handler) GetRoom(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	reply(c, h.rooms.GetByID(c.Request.Context(), id))
}

// CreateRoom handles POST /api/rooms.
func (h *Handler) CreateRoom(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadLen)

	var form createRoomForm
	if err := c.ShouldBind(&form); err != nil {
		badRequest(c, err)
		return
	}

	in := service.RoomInput{
		RoomNumber:    form.RoomNumber,
		Description:   form.Description,
		Type:          form.Type,
		Status:        form.Status,
		PricePerNight: form.PricePerNight,
	}
	h.withPhoto(c, &in, func() { reply(c, h.rooms.Create(c.Request.Context(), in)) })
}

// UpdateRoom handles PUT /api/rooms/:id.
func (h *Handler) UpdateRoom(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadLen)

	var form updateRoomForm
	if err := c.ShouldBind(&form); err != nil {
		badRequest(c, err)
		return
	}

	in := service.RoomInput{
		RoomNumber:    form.RoomNumber,
		Description:   form.Description,
		Type:          form.Type,
		Status:        form.Status,
		PricePerNight: form.PricePerNight,
	}
	h.withPhoto(c, &in, func() { reply(c, h.rooms.Update(c.Request.Context(), id, in)) })
}

// DeleteRoom handles DELETE /api/rooms/:id.
func (h *Handler) DeleteRoom(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	reply(c, h.rooms.Delete(c.Request.Context(), id))
}

// withPhoto attaches the optional "photo" form file to in and runs next while the
// upload is open.
func (h *Handler) withPhoto(c *gin.Context, in *service.RoomInput, next func()) {
	fh, err := c.FormFile("photo")
	if errors.Is(err, http.ErrMissingFile) {
		next()
		return
	}
	if err != nil {
		badRequest(c, fmt.Errorf("invalid photo: %w", err))
		return
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !photoExtensions[ext] {
		badRequest(c, fmt.Errorf("unsupported photo type %q", ext))
		return
	}

	f, err := fh.Open()
	if err != nil {
		badRequest(c, fmt.Errorf("invalid photo: %w", err))
		return
	}
	defer func(f multipart.File) {
		if err := f.Close(); err != nil {
			h.log.WithError(err).Warn("failed to close uploaded photo")
		}
	}(f)

	in.Photo = &filestore.Upload{Filename: fh.Filename, Body: f}
	next()
}

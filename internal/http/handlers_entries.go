package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"strings"

	"workboard/internal/core"
	"workboard/internal/dashboard"
	applog "workboard/internal/log"
	"workboard/internal/services"
	"workboard/internal/store"
)

// maxImageBytes bounds project image uploads.
const maxImageBytes = 5 << 20

// entryView is the API shape of an entry. Image bytes are served separately.
type entryView struct {
	ID            core.EntryID `json:"id"`
	DesignerName  string       `json:"designerName"`
	WorkTopic     string       `json:"workTopic"`
	Date          core.Date    `json:"date"`
	DateDisplay   string       `json:"dateDisplay"`
	Company       string       `json:"company"`
	PaymentAmount core.Money   `json:"paymentAmount"`
	PaymentText   string       `json:"paymentDisplay"`
	Status        core.Status  `json:"status"`
	HasImage      bool         `json:"hasImage"`
}

func toView(e core.WorkEntry) entryView {
	return entryView{
		ID:            e.ID,
		DesignerName:  e.DesignerName,
		WorkTopic:     e.WorkTopic,
		Date:          e.Date,
		DateDisplay:   e.Date.Long(),
		Company:       e.Company,
		PaymentAmount: e.Payment,
		PaymentText:   core.FormatINR(e.Payment),
		Status:        e.Status,
		HasImage:      e.ProjectImage != nil,
	}
}

func toViews(entries []core.WorkEntry) []entryView {
	out := make([]entryView, len(entries))
	for i, e := range entries {
		out[i] = toView(e)
	}
	return out
}

type listResponse struct {
	Entries []entryView `json:"entries"`
	Count   int         `json:"count"`
	Query   string      `json:"query,omitempty"`
	State   string      `json:"state"`
}

type summaryResponse struct {
	dashboard.Summary
	TotalDisplay string `json:"totalDisplay"`
	State        string `json:"state"`
}

// errorFor maps service errors to HTTP responses.
func errorFor(err error) *ResponseBuilder {
	switch {
	case errors.Is(err, store.ErrNotReady):
		return ServiceUnavailableError("Dashboard data is still loading", 1)
	case errors.Is(err, core.ErrNotFound):
		return NotFoundError("Entry not found")
	case errors.Is(err, core.ErrInvalidEntry):
		return UnprocessableEntityError(err.Error())
	default:
		return InternalServerError("Internal server error")
	}
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	q := filterQuery(r)
	entries := s.svc.List(r.Context(), q)
	NewResponse().JSON(listResponse{
		Entries: toViews(entries),
		Count:   len(entries),
		Query:   q,
		State:   s.svc.Store().State().String(),
	}).Write(w)
}

func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	e, err := s.svc.Get(r.Context(), core.EntryID(r.PathValue("id")))
	if err != nil {
		errorFor(err).Write(w)
		return
	}
	NewResponse().JSON(toView(e)).Write(w)
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := applog.FromContext(ctx)

	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		logger.WarnContext(ctx, "Parse body error", applog.FieldError, err, applog.FieldOperation, applog.OpParse)
		BadRequestError("Invalid request body").Write(w)
		return
	}
	n, err := ParseNewEntry(p)
	if err != nil {
		logger.InfoContext(ctx, "Rejected entry", applog.FieldError, err, applog.FieldOperation, applog.OpValidate)
		errorFor(err).Write(w)
		return
	}

	id, err := s.svc.Add(ctx, n)
	if err != nil {
		s.logFailure(ctx, "Failed to add entry", err, applog.OpCreate, "")
		errorFor(err).Write(w)
		return
	}

	NewResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/entries/"+string(id)).
		TriggerToast(services.AddedToast(n)).
		TriggerEntriesChanged(s.svc.Store().Version()).
		JSON(map[string]core.EntryID{"id": id}).
		Write(w)
}

func (s *Server) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := core.EntryID(r.PathValue("id"))

	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError("Invalid request body").Write(w)
		return
	}
	n, err := ParseNewEntry(p)
	if err != nil {
		errorFor(err).Write(w)
		return
	}

	// Images only change through the image route.
	n.ProjectImage = nil
	e, err := s.svc.UpdateFields(ctx, id, n)
	if err != nil {
		s.logFailure(ctx, "Failed to update entry", err, applog.OpUpdate, id)
		errorFor(err).Write(w)
		return
	}

	NewResponse().
		TriggerToast(services.UpdatedToast(e)).
		TriggerEntriesChanged(s.svc.Store().Version()).
		JSON(toView(e)).
		Write(w)
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := core.EntryID(r.PathValue("id"))
	if err := s.svc.Delete(ctx, id); err != nil {
		s.logFailure(ctx, "Failed to delete entry", err, applog.OpDelete, id)
		errorFor(err).Write(w)
		return
	}
	NewResponse().
		Status(http.StatusNoContent).
		TriggerToast(services.DeletedToast()).
		TriggerEntriesChanged(s.svc.Store().Version()).
		Write(w)
}

// handleUploadImage accepts a multipart "image" field and attaches it in the
// background. The response does not wait for the attach.
func (s *Server) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := applog.FromContext(ctx)
	id := core.EntryID(r.PathValue("id"))

	if _, err := s.svc.Get(ctx, id); err != nil {
		if s.svc.Store().State() != store.StateReady {
			err = store.ErrNotReady
		}
		errorFor(err).Write(w)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes+(64<<10))
	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		logger.WarnContext(ctx, "Parse multipart error", applog.FieldError, err, applog.FieldEntryID, id)
		BadRequestError("Invalid image upload").Write(w)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, _, err := r.FormFile("image")
	if err != nil {
		BadRequestError("Missing image field").Write(w)
		return
	}
	data, err := io.ReadAll(io.LimitReader(file, maxImageBytes+1))
	file.Close()
	if err != nil {
		InternalServerError("Failed to read image").Write(w)
		return
	}
	if len(data) > maxImageBytes {
		ErrorResponse(http.StatusRequestEntityTooLarge, "Image too large").Write(w)
		return
	}
	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		UnsupportedMediaTypeError("Project image must be an image file").Write(w)
		return
	}

	s.svc.AttachImage(ctx, id, decodedImage(data, contentType))

	NewResponse().
		Status(http.StatusAccepted).
		JSON(map[string]string{"id": string(id), "status": "attaching"}).
		Write(w)
}

// decodedImage returns a reader that checks the bytes decode as an image.
func decodedImage(data []byte, contentType string) store.ImageReader {
	return func(ctx context.Context) (*core.Image, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
			// Formats without a registered decoder (e.g. webp) are stored as sent.
			if !errors.Is(err, image.ErrFormat) {
				return nil, fmt.Errorf("decode image: %w", err)
			}
		}
		return &core.Image{ContentType: contentType, Data: data}, nil
	}
}

func (s *Server) handleGetImage(w http.ResponseWriter, r *http.Request) {
	e, err := s.svc.Get(r.Context(), core.EntryID(r.PathValue("id")))
	if err != nil {
		errorFor(err).Write(w)
		return
	}
	if e.ProjectImage == nil {
		NotFoundError("Entry has no project image").Write(w)
		return
	}
	w.Header().Set("Content-Type", e.ProjectImage.ContentType)
	w.Header().Set("Cache-Control", "private, max-age=60")
	_, _ = w.Write(e.ProjectImage.Data)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	sum := s.svc.Summary(r.Context())
	NewResponse().JSON(summaryResponse{
		Summary:      sum,
		TotalDisplay: core.FormatINR(sum.Total),
		State:        s.svc.Store().State().String(),
	}).Write(w)
}

// handleExport downloads the entries matching ?q= as CSV.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	q := filterQuery(r)
	name := sanitizeFilename(r.URL.Query().Get("filename"), s.exportFilename)
	body := s.svc.ExportCSV(r.Context(), q)

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Header().Set("Cache-Control", "no-store")
	_, _ = io.WriteString(w, body)
}

func (s *Server) logFailure(ctx context.Context, msg string, err error, op string, id core.EntryID) {
	fields := applog.NewFields()
	if id != "" {
		fields[applog.FieldEntryID] = string(id)
	}
	if errors.Is(err, core.ErrNotFound) || errors.Is(err, store.ErrNotReady) {
		applog.FromContext(ctx).InfoContext(ctx, msg, fields.WithError(err).WithOperation(op).ToSlice()...)
		return
	}
	applog.NewStructuredLogger(applog.FromContext(ctx)).LogError(ctx, msg, err, op, fields)
}

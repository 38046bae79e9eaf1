package billing

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/finledger/finledger/internal/platform/httpx"
	"github.com/finledger/finledger/internal/shared"
)

// PDFRenderer turns a finalized document into a printable PDF.
type PDFRenderer interface {
	Render(ctx context.Context, d Document) ([]byte, error)
}

// Handler serves one document type; the router mounts an instance each under
// /bills, /invoices, and /vendor-credits.
type Handler struct {
	logger  *slog.Logger
	service *Service
	docType DocType
	pdf     PDFRenderer
}

func NewHandler(logger *slog.Logger, service *Service, docType DocType, pdf PDFRenderer) *Handler {
	return &Handler{logger: logger, service: service, docType: docType, pdf: pdf}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Post("/{id}/confirm", h.Confirm)
	r.Post("/{id}/void", h.Void)
	r.Get("/{id}/pdf", h.PDF)
}

func (h *Handler) docID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid document id")
		return 0, false
	}
	return id, true
}

// get loads the document and enforces that it belongs to this handler's type,
// so a bill id requested under /invoices comes back 404.
func (h *Handler) get(ctx context.Context, id int64) (Document, error) {
	d, err := h.service.Get(ctx, id)
	if err != nil {
		return Document{}, err
	}
	if d.Type != h.docType {
		return Document{}, shared.ErrNotFound
	}
	return d, nil
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	if perPage < 1 || perPage > 100 {
		perPage = 25
	}
	partyID, _ := strconv.ParseInt(r.URL.Query().Get("party_id"), 10, 64)

	docs, total, err := h.service.List(r.Context(), ListFilters{
		Type:    h.docType,
		Status:  Status(r.URL.Query().Get("status")),
		PartyID: partyID,
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		h.logger.Error("list documents failed", "error", err, "type", h.docType)
		httpx.RespondError(w, err)
		return
	}
	if docs == nil {
		docs = []Document{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"documents":  docs,
		"pagination": shared.NewPagination(page, perPage, total),
	})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.docID(w, r)
	if !ok {
		return
	}
	d, err := h.get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, d)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var form DocumentForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}

	d, err := h.service.Create(r.Context(), h.docType, form)
	if err != nil {
		h.logger.Error("create document failed", "error", err, "type", h.docType)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, d)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.docID(w, r)
	if !ok {
		return
	}
	if _, err := h.get(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}

	var form DocumentForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}

	d, err := h.service.Update(r.Context(), id, form)
	if err != nil {
		h.logger.Error("update document failed", "error", err, "type", h.docType, "id", id)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, d)
}

func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	id, ok := h.docID(w, r)
	if !ok {
		return
	}
	if _, err := h.get(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}

	d, err := h.service.Confirm(r.Context(), id)
	if err != nil {
		h.logger.Error("confirm document failed", "error", err, "type", h.docType, "id", id)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, d)
}

func (h *Handler) Void(w http.ResponseWriter, r *http.Request) {
	id, ok := h.docID(w, r)
	if !ok {
		return
	}
	if _, err := h.get(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}

	d, err := h.service.Void(r.Context(), id)
	if err != nil {
		h.logger.Error("void document failed", "error", err, "type", h.docType, "id", id)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, d)
}

func (h *Handler) PDF(w http.ResponseWriter, r *http.Request) {
	if h.pdf == nil {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "pdf rendering is not configured")
		return
	}
	id, ok := h.docID(w, r)
	if !ok {
		return
	}
	d, err := h.get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	pdf, err := h.pdf.Render(r.Context(), d)
	if err != nil {
		h.logger.Error("render pdf failed", "error", err, "type", h.docType, "id", id)
		httpx.Problem(w, http.StatusBadGateway, "Bad Gateway", "pdf rendering failed")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+d.Number+`.pdf"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

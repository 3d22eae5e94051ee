package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"mime"
	"net/http"
	"strings"

	"shrikavin.dev/internal/middleware"
	"shrikavin.dev/internal/models"
	"shrikavin.dev/internal/render"
	"shrikavin.dev/internal/services"
)

const maxContactBody = 64 << 10

const (
	noticeInvalid = "Please fill in all required fields."
	noticePending = "Your previous message is still being sent."
	noticeFailed  = "Sorry, your message could not be sent. Please try again later."
	noticeLimited = "You have sent too many messages. Please try again later."
)

// ContactHandler accepts contact form submissions
type ContactHandler struct {
	contactService *services.ContactService
	renderer       *render.Renderer
	logger         *log.Logger
}

// NewContactHandler creates a new ContactHandler
func NewContactHandler(cs *services.ContactService, renderer *render.Renderer, logger *log.Logger) *ContactHandler {
	if logger == nil {
		logger = log.Default()
	}
	return &ContactHandler{contactService: cs, renderer: renderer, logger: logger}
}

type contactResponse struct {
	Message string            `json:"message,omitempty"`
	ID      string            `json:"id,omitempty"`
	Error   string            `json:"error,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Submit handles POST /api/contact. JSON requests get JSON back; form
// posts get the re-rendered form fragment.
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxContactBody)
	asJSON := isJSON(r.Header.Get("Content-Type"))

	draft, err := decodeDraft(r, asJSON)
	if err != nil {
		if asJSON || wantsJSON(r) {
			respondError(w, http.StatusBadRequest, "Invalid request body")
		} else {
			h.respondForm(w, http.StatusBadRequest, render.ContactForm{Status: "error", Notice: noticeInvalid})
		}
		return
	}

	msg, err := h.contactService.Submit(r.Context(), draft, middleware.ClientIP(r))
	status, body, form := h.outcome(draft, msg, err)

	if asJSON || wantsJSON(r) {
		respondJSON(w, status, body)
		return
	}
	h.respondForm(w, status, form)
}

// Limited answers a rate-limited submission in the same format Submit
// would have used, keeping the visitor's input on the form
func (h *ContactHandler) Limited(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxContactBody)
	asJSON := isJSON(r.Header.Get("Content-Type"))
	if asJSON || wantsJSON(r) {
		respondError(w, http.StatusTooManyRequests, "too many messages, please try again later")
		return
	}
	draft, _ := decodeDraft(r, false)
	h.respondForm(w, http.StatusTooManyRequests, render.ContactForm{Values: draft, Status: "error", Notice: noticeLimited})
}

// outcome maps a submission result to a status, a JSON body and a form
// state. A successful send clears the form.
func (h *ContactHandler) outcome(draft models.ContactDraft, msg *models.ContactMessage, err error) (int, contactResponse, render.ContactForm) {
	var verr *services.ValidationError
	switch {
	case err == nil:
		return http.StatusOK,
			contactResponse{Message: services.SuccessMessage, ID: msg.ID.String()},
			render.ContactForm{Status: "success", Notice: services.SuccessMessage}
	case errors.As(err, &verr):
		return http.StatusBadRequest,
			contactResponse{Error: "Invalid contact form", Fields: verr.Fields},
			render.ContactForm{Values: draft, Errors: verr.Fields, Status: "error", Notice: noticeInvalid}
	case errors.Is(err, services.ErrSubmissionPending):
		return http.StatusConflict,
			contactResponse{Error: err.Error()},
			render.ContactForm{Values: draft, Status: "error", Notice: noticePending}
	case errors.Is(err, services.ErrDeliveryFailed):
		return http.StatusBadGateway,
			contactResponse{Error: noticeFailed},
			render.ContactForm{Values: draft, Status: "error", Notice: noticeFailed}
	default:
		h.logger.Printf("Error handling contact submission: %v", err)
		return http.StatusInternalServerError,
			contactResponse{Error: "Internal server error"},
			render.ContactForm{Values: draft, Status: "error", Notice: noticeFailed}
	}
}

func (h *ContactHandler) respondForm(w http.ResponseWriter, status int, form render.ContactForm) {
	var buf bytes.Buffer
	if err := h.renderer.ContactForm(&buf, form); err != nil {
		h.logger.Printf("Error rendering contact form: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeHTML(w, status, buf.Bytes())
}

func decodeDraft(r *http.Request, asJSON bool) (models.ContactDraft, error) {
	var d models.ContactDraft
	if asJSON {
		err := json.NewDecoder(r.Body).Decode(&d)
		return d, err
	}
	if err := r.ParseForm(); err != nil {
		return d, err
	}
	d.Name = r.PostForm.Get("name")
	d.Email = r.PostForm.Get("email")
	d.Subject = r.PostForm.Get("subject")
	d.Message = r.PostForm.Get("message")
	return d, nil
}

func isJSON(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	return err == nil && mt == "application/json"
}

func wantsJSON(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
}

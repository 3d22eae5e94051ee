package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"shrikavin.dev/internal/cache"
	"shrikavin.dev/internal/mailer"
	"shrikavin.dev/internal/models"
)

// SuccessMessage is shown after a message was delivered
const SuccessMessage = "Thank you for your message! I'll get back to you soon."

var (
	// ErrSubmissionPending is returned while the same client already has a
	// submission in flight
	ErrSubmissionPending = errors.New("a submission is already in progress")

	// ErrDeliveryFailed is returned when the message was stored but could
	// not be delivered
	ErrDeliveryFailed = errors.New("message could not be delivered")
)

// ValidationError lists the offending fields of a draft
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return "invalid contact form: " + strings.Join(names, ", ")
}

// MessageStore persists accepted submissions
type MessageStore interface {
	SaveMessage(ctx context.Context, msg models.ContactMessage) error
	MarkDelivered(ctx context.Context, id uuid.UUID, at time.Time) error
}

// ContactService runs the contact form pipeline
type ContactService struct {
	store    MessageStore
	mailer   mailer.Mailer
	guard    cache.Guard
	guardTTL time.Duration
	salt     string
	logger   *log.Logger
	now      func() time.Time
}

// ContactOptions tunes a ContactService
type ContactOptions struct {
	GuardTTL time.Duration
	Salt     string
	Logger   *log.Logger
}

// NewContactService creates a new ContactService
func NewContactService(store MessageStore, m mailer.Mailer, guard cache.Guard, opts ContactOptions) *ContactService {
	if opts.GuardTTL <= 0 {
		opts.GuardTTL = 30 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if guard == nil {
		guard = cache.NewMemory()
	}
	return &ContactService{
		store:    store,
		mailer:   m,
		guard:    guard,
		guardTTL: opts.GuardTTL,
		salt:     opts.Salt,
		logger:   opts.Logger,
		now:      time.Now,
	}
}

// Submit validates, stores and delivers one message. Only one submission
// per client may be in flight at a time.
func (s *ContactService) Submit(ctx context.Context, draft models.ContactDraft, clientIP string) (*models.ContactMessage, error) {
	draft.Normalize()
	if err := draft.Validate(); err != nil {
		return nil, toValidationError(err)
	}

	clientHash := s.hashClient(clientIP)
	token, acquired, err := s.guard.Acquire(ctx, clientHash, s.guardTTL)
	switch {
	case err != nil:
		// an unreachable guard store must not take the form down
		s.logger.Printf("Submission guard unavailable, continuing without it: %v", err)
	case !acquired:
		return nil, ErrSubmissionPending
	default:
		defer func() {
			// release must outlive a cancelled request
			if err := s.guard.Release(context.WithoutCancel(ctx), clientHash, token); err != nil {
				s.logger.Printf("Error releasing submission guard: %v", err)
			}
		}()
	}

	msg := models.NewContactMessage(draft, clientHash, s.now())
	if err := s.store.SaveMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("save message: %w", err)
	}

	if err := s.mailer.Send(ctx, msg); err != nil {
		s.logger.Printf("Error delivering message %s: %v", msg.ID, err)
		return nil, fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}

	deliveredAt := s.now().UTC()
	if err := s.store.MarkDelivered(ctx, msg.ID, deliveredAt); err != nil {
		s.logger.Printf("Error marking message %s delivered: %v", msg.ID, err)
	} else {
		msg.DeliveredAt = &deliveredAt
	}
	return &msg, nil
}

func (s *ContactService) hashClient(ip string) string {
	sum := sha256.Sum256([]byte(s.salt + "|" + ip))
	return hex.EncodeToString(sum[:16])
}

func toValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate draft: %w", err)
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		name := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			fields[name] = fmt.Sprintf("%s is required", name)
		case "email":
			fields[name] = "please enter a valid email address"
		case "max":
			fields[name] = fmt.Sprintf("%s must be at most %s characters", name, fe.Param())
		default:
			fields[name] = fmt.Sprintf("%s is invalid", name)
		}
	}
	return &ValidationError{Fields: fields}
}

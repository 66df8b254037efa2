package waitlist

import (
	"context"

	"github.com/akeren/aimaker-waitlist/internal/log"
	apperrors "github.com/akeren/aimaker-waitlist/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/akeren/aimaker-waitlist/domain/waitlist"

type WaitlistService interface {
	// Join runs one submission to a terminal state. The returned state is
	// StateSucceeded with a response, or StateFailed with an AppError.
	Join(ctx context.Context, email string) (SubmissionState, *JoinResponse, error)

	// List returns every member in insertion order.
	List(ctx context.Context) (*ListResponse, error)

	// Ping checks the active backend.
	Ping(ctx context.Context) error

	// Backend names the active storage backend.
	Backend() string
}

type waitlistService struct {
	logger     *log.Logger
	repository WaitlistRepository
	metrics    *SubmissionMetrics
	tracer     trace.Tracer
}

func NewWaitlistService(logger *log.Logger, repository WaitlistRepository, metrics *SubmissionMetrics) WaitlistService {
	if metrics == nil {
		metrics = NewSubmissionMetrics(nil)
	}

	return &waitlistService{
		logger:     logger,
		repository: repository,
		metrics:    metrics,
		tracer:     otel.Tracer(tracerName),
	}
}

var allowedTransitions = map[SubmissionState][]SubmissionState{
	StateIdle:       {StateValidating},
	StateValidating: {StateChecking, StateFailed},
	StateChecking:   {StatePersisting, StateFailed},
	StatePersisting: {StateSucceeded, StateFailed},
}

func canTransition(from, to SubmissionState) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type submission struct {
	state  SubmissionState
	logger *log.Logger
}

func (sub *submission) moveTo(next SubmissionState) {
	if !canTransition(sub.state, next) {
		sub.logger.Error("Illegal submission transition", "from", sub.state.String(), "to", next.String())
	}
	sub.logger.Debug("Submission transition", "from", sub.state.String(), "to", next.String())
	sub.state = next
}

func (s *waitlistService) Join(ctx context.Context, email string) (SubmissionState, *JoinResponse, error) {
	ctx, span := s.tracer.Start(ctx, "waitlist.join",
		trace.WithAttributes(attribute.String("waitlist.backend", s.repository.Name())),
	)
	defer span.End()

	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)
	sub := &submission{state: StateIdle, logger: logger}

	sub.moveTo(StateValidating)
	if !IsValidEmail(email) {
		return s.fail(span, sub, OutcomeInvalidEmail, apperrors.NewInvalidRequestError(MessageInvalidEmail, nil))
	}

	sub.moveTo(StateChecking)
	exists, err := s.repository.Exists(ctx, email)
	if err != nil {
		logger.Error("Failed to check waitlist membership", "backend", s.repository.Name(), "error", err)
		return s.fail(span, sub, OutcomeStorageError, asStorageError(err))
	}
	if exists {
		return s.fail(span, sub, OutcomeDuplicate, newDuplicateError(nil))
	}

	sub.moveTo(StatePersisting)
	user, err := s.repository.Append(ctx, email)
	if err != nil {
		// A concurrent writer can win between the check and the append.
		if apperrors.IsConflict(err) {
			return s.fail(span, sub, OutcomeDuplicate, err)
		}
		logger.Error("Failed to persist waitlist entry", "backend", s.repository.Name(), "error", err)
		return s.fail(span, sub, OutcomeStorageError, asStorageError(err))
	}

	sub.moveTo(StateSucceeded)
	s.metrics.Observe(OutcomeJoined)
	span.SetAttributes(attribute.String("waitlist.outcome", OutcomeJoined))
	logger.Info("Waitlist entry created", "backend", s.repository.Name())

	response := ToJoinResponse(user)
	return sub.state, &response, nil
}

func (s *waitlistService) fail(span trace.Span, sub *submission, outcome string, err error) (SubmissionState, *JoinResponse, error) {
	sub.moveTo(StateFailed)
	s.metrics.Observe(outcome)

	span.SetAttributes(attribute.String("waitlist.outcome", outcome))
	if outcome == OutcomeStorageError {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
	}

	return sub.state, nil, err
}

func (s *waitlistService) List(ctx context.Context) (*ListResponse, error) {
	ctx, span := s.tracer.Start(ctx, "waitlist.list")
	defer span.End()

	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	emails, err := s.repository.List(ctx)
	if err != nil {
		logger.Error("Failed to list waitlist", "backend", s.repository.Name(), "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "list failed")
		return nil, asStorageError(err)
	}

	response := ToListResponse(emails)
	span.SetAttributes(attribute.Int("waitlist.count", response.Count))
	return &response, nil
}

func (s *waitlistService) Ping(ctx context.Context) error {
	return s.repository.Ping(ctx)
}

func (s *waitlistService) Backend() string {
	return s.repository.Name()
}

// asStorageError keeps classified errors and wraps anything a backend failed to classify.
func asStorageError(err error) error {
	if apperrors.GetErrorType(err) == apperrors.ErrorTypeUnknown {
		return newBackendError(false, err)
	}
	return err
}

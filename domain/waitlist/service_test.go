package waitlist

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/akeren/aimaker-waitlist/internal/log"
	"github.com/akeren/aimaker-waitlist/internal/models"
	apperrors "github.com/akeren/aimaker-waitlist/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestService(t *testing.T) (*MockWaitlistRepository, WaitlistService, *prometheus.Registry) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	mockRepo := NewMockWaitlistRepository(ctrl)
	mockRepo.EXPECT().Name().Return("mock").AnyTimes()

	reg := prometheus.NewRegistry()
	service := NewWaitlistService(log.NewLoggerWithJSONOutput(), mockRepo, NewSubmissionMetrics(reg))
	return mockRepo, service, reg
}

func submissionCount(t *testing.T, reg *prometheus.Registry, outcome string) float64 {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)

	for _, family := range families {
		if family.GetName() != "waitlist_submissions_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "outcome" && label.GetValue() == outcome {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestJoin_Success(t *testing.T) {
	mockRepo, service, reg := newTestService(t)

	joinedAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	mockRepo.EXPECT().Exists(gomock.Any(), "a@b.com").Return(false, nil)
	mockRepo.EXPECT().Append(gomock.Any(), "a@b.com").Return(&models.WaitlistUser{Email: "a@b.com", CreatedAt: joinedAt}, nil)

	state, response, err := service.Join(context.Background(), "a@b.com")

	require.NoError(t, err)
	assert.Equal(t, StateSucceeded, state)
	assert.Equal(t, "a@b.com", response.Email)
	assert.Equal(t, "2026-01-02T03:04:05Z", response.JoinedAt)
	assert.Equal(t, float64(1), submissionCount(t, reg, OutcomeJoined))
}

func TestJoin_InvalidEmailNeverTouchesStorage(t *testing.T) {
	_, service, reg := newTestService(t)

	for _, email := range []string{"", "not-an-email"} {
		state, response, err := service.Join(context.Background(), email)

		assert.Equal(t, StateFailed, state)
		assert.Nil(t, response)
		assert.Equal(t, apperrors.ErrorTypeInvalidRequest, apperrors.GetErrorType(err))
		assert.Equal(t, MessageInvalidEmail, apperrors.GetHumanReadableMessage(err))
	}
	assert.Equal(t, float64(2), submissionCount(t, reg, OutcomeInvalidEmail))
}

func TestJoin_Duplicate(t *testing.T) {
	mockRepo, service, reg := newTestService(t)

	mockRepo.EXPECT().Exists(gomock.Any(), "a@b.com").Return(true, nil)

	state, response, err := service.Join(context.Background(), "a@b.com")

	assert.Equal(t, StateFailed, state)
	assert.Nil(t, response)
	assert.True(t, apperrors.IsConflict(err))
	assert.Equal(t, MessageDuplicate, apperrors.GetHumanReadableMessage(err))
	assert.Equal(t, float64(1), submissionCount(t, reg, OutcomeDuplicate))
}

func TestJoin_ConcurrentWriterWinsBetweenCheckAndAppend(t *testing.T) {
	mockRepo, service, reg := newTestService(t)

	mockRepo.EXPECT().Exists(gomock.Any(), "a@b.com").Return(false, nil)
	mockRepo.EXPECT().Append(gomock.Any(), "a@b.com").Return(nil, newDuplicateError(nil))

	state, _, err := service.Join(context.Background(), "a@b.com")

	assert.Equal(t, StateFailed, state)
	assert.True(t, apperrors.IsConflict(err))
	assert.Equal(t, float64(1), submissionCount(t, reg, OutcomeDuplicate))
	assert.Equal(t, float64(0), submissionCount(t, reg, OutcomeStorageError))
}

func TestJoin_CheckFailure(t *testing.T) {
	mockRepo, service, reg := newTestService(t)

	mockRepo.EXPECT().Exists(gomock.Any(), "a@b.com").Return(false, apperrors.NewDatabaseError(MessageConnectionError, errors.New("dial tcp: connection refused")))

	state, _, err := service.Join(context.Background(), "a@b.com")

	assert.Equal(t, StateFailed, state)
	assert.True(t, apperrors.IsStorageFailure(err))
	assert.Equal(t, MessageConnectionError, apperrors.GetHumanReadableMessage(err))
	assert.Equal(t, float64(1), submissionCount(t, reg, OutcomeStorageError))
}

func TestJoin_UnclassifiedAppendFailureIsWrapped(t *testing.T) {
	mockRepo, service, _ := newTestService(t)

	mockRepo.EXPECT().Exists(gomock.Any(), "a@b.com").Return(false, nil)
	mockRepo.EXPECT().Append(gomock.Any(), "a@b.com").Return(nil, errors.New("disk full"))

	state, _, err := service.Join(context.Background(), "a@b.com")

	assert.Equal(t, StateFailed, state)
	assert.Equal(t, apperrors.ErrorTypeStorageUnavailable, apperrors.GetErrorType(err))
	assert.Equal(t, MessageUnexpected, apperrors.GetHumanReadableMessage(err))
	assert.Equal(t, "disk full", apperrors.GetErrorDetail(err))
}

func TestList_ReturnsEmailsInOrder(t *testing.T) {
	mockRepo, service, _ := newTestService(t)

	mockRepo.EXPECT().List(gomock.Any()).Return([]string{"a@b.com", "c@d.com"}, nil)

	response, err := service.List(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"a@b.com", "c@d.com"}, response.Emails)
	assert.Equal(t, 2, response.Count)
}

func TestList_EmptyIsNotNil(t *testing.T) {
	mockRepo, service, _ := newTestService(t)

	mockRepo.EXPECT().List(gomock.Any()).Return(nil, nil)

	response, err := service.List(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, response.Emails)
	assert.Equal(t, 0, response.Count)
}

func TestList_Failure(t *testing.T) {
	mockRepo, service, _ := newTestService(t)

	mockRepo.EXPECT().List(gomock.Any()).Return(nil, errors.New("boom"))

	response, err := service.List(context.Background())

	assert.Nil(t, response)
	assert.True(t, apperrors.IsStorageFailure(err))
}

func TestPingAndBackendDelegate(t *testing.T) {
	mockRepo, service, _ := newTestService(t)

	mockRepo.EXPECT().Ping(gomock.Any()).Return(nil)

	assert.NoError(t, service.Ping(context.Background()))
	assert.Equal(t, "mock", service.Backend())
}

func TestCanTransition(t *testing.T) {
	assert.True(t, canTransition(StateIdle, StateValidating))
	assert.True(t, canTransition(StateChecking, StateFailed))
	assert.True(t, canTransition(StatePersisting, StateSucceeded))
	assert.False(t, canTransition(StateIdle, StateSucceeded))
	assert.False(t, canTransition(StateSucceeded, StateFailed))
	assert.False(t, canTransition(StateFailed, StateValidating))
}

func TestSubmissionState(t *testing.T) {
	assert.Equal(t, "persisting", StatePersisting.String())
	assert.Equal(t, "unknown", SubmissionState(42).String())
	assert.True(t, StateFailed.IsTerminal())
	assert.False(t, StateChecking.IsTerminal())
}

func TestNewSubmissionMetrics_ReusesRegisteredCollector(t *testing.T) {
	reg := prometheus.NewRegistry()

	first := NewSubmissionMetrics(reg)
	second := NewSubmissionMetrics(reg)
	first.Observe(OutcomeJoined)
	second.Observe(OutcomeJoined)

	assert.Equal(t, float64(2), submissionCount(t, reg, OutcomeJoined))

	var nilMetrics *SubmissionMetrics
	assert.NotPanics(t, func() { nilMetrics.Observe(OutcomeJoined) })
}

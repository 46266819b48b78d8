package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/unicampus/internal/app/models"
	"github.com/yigit/unicampus/internal/app/models/dto"
	"github.com/yigit/unicampus/internal/app/repositories"
	"github.com/yigit/unicampus/internal/pkg/apperrors"
	"github.com/yigit/unicampus/internal/pkg/events"
)

type fakeNotificationRepo struct {
	repositories.INotificationRepository
	created  []*models.Notification
	readBy   map[int64]int64
	lastList repositories.NotificationFilter
}

func (f *fakeNotificationRepo) CreateMany(ctx context.Context, ns []*models.Notification) error {
	for _, n := range ns {
		n.ID = int64(len(f.created) + 1)
		f.created = append(f.created, n)
	}
	return nil
}

func (f *fakeNotificationRepo) ListByUser(ctx context.Context, filter repositories.NotificationFilter) ([]*models.Notification, int64, error) {
	f.lastList = filter
	return []*models.Notification{}, 0, nil
}

func (f *fakeNotificationRepo) MarkRead(ctx context.Context, id, userID int64) error {
	owner, ok := f.readBy[id]
	if !ok || owner != userID {
		return apperrors.ErrNotificationNotFound
	}
	return nil
}

func newNotificationFixture() (NotificationService, *fakeNotificationRepo, *fakeUserRepo, *fakePusher, *fakePublisher) {
	repo := &fakeNotificationRepo{readBy: map[int64]int64{5: 131}}
	users := newFakeUserRepo()
	users.byRole[models.RoleFaculty] = []int64{104, 105}
	pusher, publisher := &fakePusher{}, &fakePublisher{}
	svc := NewNotificationService(repo, users, pusher, publisher, &fakeAudit{}, zerolog.Nop())
	return svc, repo, users, pusher, publisher
}

func TestSendNotificationToRole(t *testing.T) {
	svc, repo, _, pusher, publisher := newNotificationFixture()

	resp, err := svc.Send(adminCtx(), &dto.CreateNotificationRequest{Title: "Meeting", Message: "Faculty meeting at 3pm", Role: "faculty"})
	require.NoError(t, err)

	assert.Equal(t, 2, resp.Recipients)
	require.Len(t, repo.created, 2)
	assert.Equal(t, models.NotificationInfo, repo.created[0].Type)
	assert.Equal(t, []pushed{{UserID: 104, EventType: PushNotification}, {UserID: 105, EventType: PushNotification}}, pusher.sent)
	assert.Equal(t, []string{events.NotificationCreated, events.NotificationCreated}, publisher.types())
}

func TestSendNotificationToUsersDeduplicates(t *testing.T) {
	svc, repo, _, _, _ := newNotificationFixture()

	resp, err := svc.Send(adminCtx(), &dto.CreateNotificationRequest{Title: "Hi", Message: "m", Type: "ALERT", UserIDs: []int64{7, 7, 8}})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Recipients)
	assert.Equal(t, models.NotificationAlert, repo.created[1].Type)
}

func TestSendNotificationAudience(t *testing.T) {
	svc, _, _, _, _ := newNotificationFixture()

	_, err := svc.Send(adminCtx(), &dto.CreateNotificationRequest{Title: "Hi", Message: "m"})
	require.ErrorIs(t, err, apperrors.ErrBadRequest)

	_, err = svc.Send(adminCtx(), &dto.CreateNotificationRequest{Title: "Hi", Message: "m", UserIDs: []int64{7}, Role: "ADMIN"})
	require.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestNotificationInboxUsesCaller(t *testing.T) {
	svc, repo, _, _, _ := newNotificationFixture()

	_, err := svc.List(studentCtx(131), true, 2, 20)
	require.NoError(t, err)
	assert.Equal(t, repositories.NotificationFilter{UserID: 131, UnreadOnly: true, Page: 2, Size: 20}, repo.lastList)

	require.NoError(t, svc.MarkRead(studentCtx(131), 5))
	require.ErrorIs(t, svc.MarkRead(studentCtx(132), 5), apperrors.ErrNotificationNotFound)
}

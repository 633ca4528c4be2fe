package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/bandstand-io/bandstand/internal/domain"
	"github.com/bandstand-io/bandstand/internal/store"
)

// NotificationService is the per-member inbox over the notifications
// written by the task notifier.
type NotificationService struct {
	store *store.Store
	hub   *Hub
}

func NewNotificationService(s *store.Store, hub *Hub) *NotificationService {
	return &NotificationService{store: s, hub: hub}
}

// ListForMember returns a member's notifications, newest first.
func (s *NotificationService) ListForMember(ctx context.Context, groupID, memberID string, unreadOnly bool) ([]domain.Notification, error) {
	all, err := s.store.Notifications.List(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	inbox := make([]domain.Notification, 0, len(all))
	for i := range all {
		if all[i].MemberID != memberID {
			continue
		}
		if unreadOnly && all[i].Read() {
			continue
		}
		inbox = append(inbox, all[i])
	}
	sort.SliceStable(inbox, func(i, j int) bool {
		return inbox[i].CreatedAt.After(inbox[j].CreatedAt)
	})
	return inbox, nil
}

// MarkRead marks one of the member's notifications as read. Marking an
// already-read notification again is a no-op.
func (s *NotificationService) MarkRead(ctx context.Context, groupID, memberID, id string) (*domain.Notification, error) {
	notification, err := s.get(ctx, groupID, memberID, id)
	if err != nil {
		return nil, err
	}
	if notification.Read() {
		return notification, nil
	}
	now := time.Now().UTC()
	notification.ReadAt = &now
	if err := s.store.Notifications.Save(ctx, notification.ID, notification); err != nil {
		return nil, fmt.Errorf("save notification: %w", err)
	}
	s.hub.Publish(Event{GroupID: groupID, Kind: KindNotification, Action: ActionUpdated, EntityID: id})
	return notification, nil
}

// MarkAllRead marks every unread notification of the member as read and
// returns how many were touched.
func (s *NotificationService) MarkAllRead(ctx context.Context, groupID, memberID string) (int, error) {
	unread, err := s.ListForMember(ctx, groupID, memberID, true)
	if err != nil {
		return 0, err
	}
	now := time.Now().UTC()
	for i := range unread {
		unread[i].ReadAt = &now
		if err := s.store.Notifications.Save(ctx, unread[i].ID, &unread[i]); err != nil {
			return i, fmt.Errorf("save notification %s: %w", unread[i].ID, err)
		}
		s.hub.Publish(Event{GroupID: groupID, Kind: KindNotification, Action: ActionUpdated, EntityID: unread[i].ID})
	}
	return len(unread), nil
}

func (s *NotificationService) get(ctx context.Context, groupID, memberID, id string) (*domain.Notification, error) {
	notification, err := s.store.Notifications.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get notification: %w", err)
	}
	// A member can only touch their own inbox.
	if notification.GroupID != groupID || notification.MemberID != memberID {
		return nil, fmt.Errorf("notification %s: %w", id, store.ErrNotFound)
	}
	return notification, nil
}

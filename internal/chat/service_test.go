package chat

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cravecart/cravecart-backend/pkg/db/models"
	"github.com/cravecart/cravecart-backend/pkg/enums"
	pkgerrors "github.com/cravecart/cravecart-backend/pkg/errors"
	"github.com/cravecart/cravecart-backend/pkg/pagination"
)

type stubRepo struct {
	rooms    map[uuid.UUID]*models.ChatRoom
	messages []models.ChatMessage
}

func newStubRepo() *stubRepo {
	return &stubRepo{rooms: map[uuid.UUID]*models.ChatRoom{}}
}

func (r *stubRepo) FindRoom(_ context.Context, customerID, sellerID uuid.UUID) (*models.ChatRoom, error) {
	for _, room := range r.rooms {
		if room.CustomerID == customerID && room.SellerID == sellerID {
			return room, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubRepo) FindRoomByID(_ context.Context, id uuid.UUID) (*models.ChatRoom, error) {
	if room, ok := r.rooms[id]; ok {
		return room, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubRepo) CreateRoom(_ context.Context, room *models.ChatRoom) error {
	room.ID = uuid.New()
	room.CreatedAt = time.Now()
	r.rooms[room.ID] = room
	return nil
}

func (r *stubRepo) ListRoomsByUser(_ context.Context, userID uuid.UUID) ([]models.ChatRoom, error) {
	var out []models.ChatRoom
	for _, room := range r.rooms {
		if room.CustomerID == userID || room.SellerID == userID {
			out = append(out, *room)
		}
	}
	return out, nil
}

func (r *stubRepo) CreateMessage(_ context.Context, message *models.ChatMessage) error {
	message.ID = uuid.New()
	message.CreatedAt = time.Now()
	r.messages = append(r.messages, *message)
	return nil
}

func (r *stubRepo) ListMessages(_ context.Context, roomID uuid.UUID, _ *pagination.Cursor, limit int) ([]models.ChatMessage, error) {
	var out []models.ChatMessage
	for i := len(r.messages) - 1; i >= 0 && len(out) < limit; i-- {
		if r.messages[i].RoomID == roomID {
			out = append(out, r.messages[i])
		}
	}
	return out, nil
}

type stubUsers struct {
	users map[uuid.UUID]*models.User
}

func (s *stubUsers) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if user, ok := s.users[id]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func setup(t *testing.T) (Service, *stubRepo, uuid.UUID, uuid.UUID) {
	t.Helper()
	repo := newStubRepo()
	customerID := uuid.New()
	sellerID := uuid.New()
	users := &stubUsers{users: map[uuid.UUID]*models.User{
		customerID: {ID: customerID, UserType: enums.UserTypeCustomer, IsActive: true},
		sellerID:   {ID: sellerID, UserType: enums.UserTypeSeller, IsActive: true},
	}}
	svc, err := NewService(repo, users)
	if err != nil {
		t.Fatalf("building service: %v", err)
	}
	return svc, repo, customerID, sellerID
}

func TestOpenRoom_CreatesOncePerPair(t *testing.T) {
	svc, repo, customerID, sellerID := setup(t)

	first, err := svc.OpenRoom(context.Background(), customerID, enums.UserTypeCustomer, OpenRoomRequest{PeerID: sellerID})
	if err != nil {
		t.Fatalf("open room: %v", err)
	}
	// the seller opening the same pair gets the same room back
	second, err := svc.OpenRoom(context.Background(), sellerID, enums.UserTypeSeller, OpenRoomRequest{PeerID: customerID})
	if err != nil {
		t.Fatalf("reopen room: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected one room per pair, got %s and %s", first.ID, second.ID)
	}
	if len(repo.rooms) != 1 {
		t.Fatalf("expected 1 room, got %d", len(repo.rooms))
	}
}

func TestOpenRoom_RejectsWrongPeerType(t *testing.T) {
	svc, _, customerID, _ := setup(t)

	_, err := svc.OpenRoom(context.Background(), customerID, enums.UserTypeCustomer, OpenRoomRequest{PeerID: customerID})
	if err == nil {
		t.Fatal("expected validation error for self room")
	}

	otherCustomer := uuid.New()
	_, err = svc.OpenRoom(context.Background(), customerID, enums.UserTypeCustomer, OpenRoomRequest{PeerID: otherCustomer})
	if err == nil {
		t.Fatal("expected not found for unknown peer")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestSendMessage_OnlyParticipants(t *testing.T) {
	svc, _, customerID, sellerID := setup(t)
	room, err := svc.OpenRoom(context.Background(), customerID, enums.UserTypeCustomer, OpenRoomRequest{PeerID: sellerID})
	if err != nil {
		t.Fatalf("open room: %v", err)
	}

	if _, err := svc.SendMessage(context.Background(), customerID, room.ID, SendMessageRequest{Body: "is the kitchen open?"}); err != nil {
		t.Fatalf("send message: %v", err)
	}

	outsider := uuid.New()
	_, err = svc.SendMessage(context.Background(), outsider, room.ID, SendMessageRequest{Body: "hello"})
	if err == nil {
		t.Fatal("expected not found for non-participant")
	}
}

func TestSendMessage_RejectsEmptyBody(t *testing.T) {
	svc, _, customerID, sellerID := setup(t)
	room, err := svc.OpenRoom(context.Background(), customerID, enums.UserTypeCustomer, OpenRoomRequest{PeerID: sellerID})
	if err != nil {
		t.Fatalf("open room: %v", err)
	}

	_, err = svc.SendMessage(context.Background(), customerID, room.ID, SendMessageRequest{Body: "   "})
	if err == nil {
		t.Fatal("expected validation error for blank body")
	}
}

func TestListMessages_NewestFirst(t *testing.T) {
	svc, _, customerID, sellerID := setup(t)
	room, err := svc.OpenRoom(context.Background(), customerID, enums.UserTypeCustomer, OpenRoomRequest{PeerID: sellerID})
	if err != nil {
		t.Fatalf("open room: %v", err)
	}
	for _, body := range []string{"first", "second", "third"} {
		if _, err := svc.SendMessage(context.Background(), customerID, room.ID, SendMessageRequest{Body: body}); err != nil {
			t.Fatalf("send %q: %v", body, err)
		}
	}

	page, err := svc.ListMessages(context.Background(), sellerID, room.ID, pagination.Params{Limit: 10})
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(page.Messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(page.Messages))
	}
	if page.Messages[0].Body != "third" {
		t.Fatalf("expected newest first, got %q", page.Messages[0].Body)
	}
}

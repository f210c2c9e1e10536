package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cravecart/cravecart-backend/pkg/db"
	"github.com/cravecart/cravecart-backend/pkg/db/models"
	"github.com/cravecart/cravecart-backend/pkg/enums"
	pkgerrors "github.com/cravecart/cravecart-backend/pkg/errors"
	"github.com/cravecart/cravecart-backend/pkg/pagination"
)

const maxMessageLength = 2000

// Service defines buyer/seller messaging operations.
type Service interface {
	OpenRoom(ctx context.Context, userID uuid.UUID, userType enums.UserType, req OpenRoomRequest) (*RoomDTO, error)
	ListRooms(ctx context.Context, userID uuid.UUID) ([]RoomDTO, error)
	SendMessage(ctx context.Context, userID, roomID uuid.UUID, req SendMessageRequest) (*MessageDTO, error)
	ListMessages(ctx context.Context, userID, roomID uuid.UUID, page pagination.Params) (*MessagePage, error)
}

type repository interface {
	FindRoom(ctx context.Context, customerID, sellerID uuid.UUID) (*models.ChatRoom, error)
	FindRoomByID(ctx context.Context, id uuid.UUID) (*models.ChatRoom, error)
	CreateRoom(ctx context.Context, room *models.ChatRoom) error
	ListRoomsByUser(ctx context.Context, userID uuid.UUID) ([]models.ChatRoom, error)
	CreateMessage(ctx context.Context, message *models.ChatMessage) error
	ListMessages(ctx context.Context, roomID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.ChatMessage, error)
}

type userResolver interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type service struct {
	repo  repository
	users userResolver
}

// NewService builds the chat service.
func NewService(repo repository, users userResolver) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("chat repository is required")
	}
	if users == nil {
		return nil, fmt.Errorf("user resolver is required")
	}
	return &service{repo: repo, users: users}, nil
}

// OpenRoom returns the existing room for the caller and peer, creating it
// on first contact. Either side may open the room.
func (s *service) OpenRoom(ctx context.Context, userID uuid.UUID, userType enums.UserType, req OpenRoomRequest) (*RoomDTO, error) {
	if req.PeerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "peer id is required")
	}
	if req.PeerID == userID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot open a room with yourself")
	}

	var customerID, sellerID uuid.UUID
	var peerType enums.UserType
	switch userType {
	case enums.UserTypeCustomer:
		customerID, sellerID = userID, req.PeerID
		peerType = enums.UserTypeSeller
	case enums.UserTypeSeller:
		customerID, sellerID = req.PeerID, userID
		peerType = enums.UserTypeCustomer
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid user type")
	}

	peer, err := s.users.FindByID(ctx, req.PeerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load peer")
	}
	if peer.UserType != peerType || !peer.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}

	room, err := s.repo.FindRoom(ctx, customerID, sellerID)
	if err == nil {
		return roomFromModel(room), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load room")
	}

	created := &models.ChatRoom{CustomerID: customerID, SellerID: sellerID}
	if err := s.repo.CreateRoom(ctx, created); err != nil {
		// Two first messages can race; the loser rereads the winner's room.
		if db.IsUniqueViolation(err, "idx_chat_rooms_pair") {
			room, findErr := s.repo.FindRoom(ctx, customerID, sellerID)
			if findErr != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, findErr, "load room after conflict")
			}
			return roomFromModel(room), nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create room")
	}
	return roomFromModel(created), nil
}

func (s *service) ListRooms(ctx context.Context, userID uuid.UUID) ([]RoomDTO, error) {
	rooms, err := s.repo.ListRoomsByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list rooms")
	}
	out := make([]RoomDTO, 0, len(rooms))
	for i := range rooms {
		out = append(out, *roomFromModel(&rooms[i]))
	}
	return out, nil
}

func (s *service) SendMessage(ctx context.Context, userID, roomID uuid.UUID, req SendMessageRequest) (*MessageDTO, error) {
	body := strings.TrimSpace(req.Body)
	if body == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message body is required")
	}
	if len(body) > maxMessageLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message body is too long")
	}

	if _, err := s.memberRoom(ctx, userID, roomID); err != nil {
		return nil, err
	}

	message := &models.ChatMessage{RoomID: roomID, SenderID: userID, Body: body}
	if err := s.repo.CreateMessage(ctx, message); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create message")
	}
	return messageFromModel(message), nil
}

func (s *service) ListMessages(ctx context.Context, userID, roomID uuid.UUID, page pagination.Params) (*MessagePage, error) {
	if _, err := s.memberRoom(ctx, userID, roomID); err != nil {
		return nil, err
	}
	cursor, err := pagination.Parse(page.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(page.Limit)

	rows, err := s.repo.ListMessages(ctx, roomID, cursor, pagination.LimitWithBuffer(page.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list messages")
	}

	next := ""
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next = pagination.Encode(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	out := make([]MessageDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *messageFromModel(&rows[i]))
	}
	return &MessagePage{Messages: out, NextCursor: next}, nil
}

// memberRoom loads the room and hides it from non-participants.
func (s *service) memberRoom(ctx context.Context, userID, roomID uuid.UUID) (*models.ChatRoom, error) {
	room, err := s.repo.FindRoomByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "room not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load room")
	}
	if room.CustomerID != userID && room.SellerID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "room not found")
	}
	return room, nil
}

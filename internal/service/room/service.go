// Package room 实现房间和历史消息查询
package room

import (
	"strconv"
	"time"

	"github.com/infernocadet/secure-message-chat/internal/dao/repository"
	"github.com/infernocadet/secure-message-chat/internal/dto/respond"
	"github.com/infernocadet/secure-message-chat/pkg/errorx"
)

type Service struct {
	rooms    repository.RoomRepository
	messages repository.MessageRepository
}

func NewService(rooms repository.RoomRepository, messages repository.MessageRepository) *Service {
	return &Service{rooms: rooms, messages: messages}
}

// GetRoomList 查询用户所在的持久房间列表
func (s *Service) GetRoomList(username string) ([]respond.RoomRespond, error) {
	rooms, err := s.rooms.FindRoomsByUsername(username)
	if err != nil {
		return nil, err
	}
	list := make([]respond.RoomRespond, 0, len(rooms))
	for _, r := range rooms {
		members, err := s.rooms.FindMemberUsernames(r.Uuid)
		if err != nil {
			return nil, err
		}
		list = append(list, respond.RoomRespond{
			RoomID:  r.Uuid,
			Name:    r.Name,
			Members: members,
		})
	}
	return list, nil
}

// GetMessageList 查询房间历史消息，按发送顺序返回
// 只有房间的持久成员可以读取历史
func (s *Service) GetMessageList(username, roomUuid string) ([]respond.MessageRespond, error) {
	if _, err := s.rooms.FindByUuid(roomUuid); err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.Newf(errorx.CodeNotFound, "房间 %s 不存在", roomUuid)
		}
		return nil, err
	}
	members, err := s.rooms.FindMemberUsernames(roomUuid)
	if err != nil {
		return nil, err
	}
	isMember := false
	for _, m := range members {
		if m == username {
			isMember = true
			break
		}
	}
	if !isMember {
		return nil, errorx.New(errorx.CodeUnauthorized, "你不是该房间的成员")
	}

	messages, err := s.messages.FindByRoomUuid(roomUuid)
	if err != nil {
		return nil, err
	}
	list := make([]respond.MessageRespond, 0, len(messages))
	for _, m := range messages {
		sendAt := ""
		if m.SendAt.Valid {
			sendAt = m.SendAt.Time.Format(time.RFC3339)
		}
		list = append(list, respond.MessageRespond{
			ID:      strconv.FormatInt(m.Uuid, 10),
			Sender:  m.Sender,
			Content: m.Content,
			SendAt:  sendAt,
		})
	}
	return list, nil
}

// Package friend 实现好友申请、好友关系管理和相关实时推送
package friend

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/infernocadet/secure-message-chat/internal/dao/redis"
	"github.com/infernocadet/secure-message-chat/internal/dao/repository"
	"github.com/infernocadet/secure-message-chat/internal/dto/respond"
	"github.com/infernocadet/secure-message-chat/internal/model"
	"github.com/infernocadet/secure-message-chat/internal/service/chat"
	"github.com/infernocadet/secure-message-chat/pkg/errorx"
)

const friendCachePrefix = "friend_relation:"

// Notifier 实时推送接口，由聊天中枢实现
// 好友服务只依赖推送能力，不依赖 Hub 的其余部分
type Notifier interface {
	NotifyUser(username, event string, payload any) bool
	IsOnline(username string) bool
}

type Service struct {
	users    repository.UserRepository
	friends  repository.FriendRepository
	requests repository.FriendRequestRepository
	cache    redis.AsyncCacheService
	notifier Notifier
}

func NewService(repos *repository.Repositories, cache redis.AsyncCacheService, notifier Notifier) *Service {
	return &Service{
		users:    repos.User,
		friends:  repos.Friend,
		requests: repos.FriendRequest,
		cache:    cache,
		notifier: notifier,
	}
}

// GetFriendList 查询好友列表，优先读缓存，未命中时回源并异步回填
func (s *Service) GetFriendList(ctx context.Context, username string) ([]respond.FriendInfoRespond, error) {
	usernames, err := s.cache.GetSetMembers(ctx, friendCachePrefix+username)
	if err != nil {
		zap.L().Warn("读取好友缓存失败，回源数据库", zap.String("username", username), zap.Error(err))
		usernames = nil
	}
	if len(usernames) == 0 {
		usernames, err = s.friends.FindFriendUsernames(username)
		if err != nil {
			return nil, err
		}
		if len(usernames) > 0 {
			members := make([]interface{}, 0, len(usernames))
			for _, name := range usernames {
				members = append(members, name)
			}
			key := friendCachePrefix + username
			s.cache.SubmitTask(func() {
				ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
				defer cancel()
				if err := s.cache.AddToSet(ctx, key, members...); err != nil {
					zap.L().Warn("回填好友缓存失败", zap.String("key", key), zap.Error(err))
				}
			})
		}
	}

	users, err := s.users.FindByUsernames(usernames)
	if err != nil {
		return nil, err
	}
	list := make([]respond.FriendInfoRespond, 0, len(users))
	for _, u := range users {
		list = append(list, respond.FriendInfoRespond{
			Username: u.Username,
			Role:     u.Role,
			Online:   s.notifier.IsOnline(u.Username),
		})
	}
	return list, nil
}

// GetFriendRequests 查询收到和发出的待处理申请
func (s *Service) GetFriendRequests(username string) (*respond.FriendRequestsRespond, error) {
	incoming, err := s.requests.FindPendingByReceiver(username)
	if err != nil {
		return nil, err
	}
	sent, err := s.requests.FindPendingBySender(username)
	if err != nil {
		return nil, err
	}
	result := &respond.FriendRequestsRespond{
		Incoming: make([]respond.IncomingRequestRespond, 0, len(incoming)),
		Sent:     make([]respond.SentRequestRespond, 0, len(sent)),
	}
	for _, r := range incoming {
		result.Incoming = append(result.Incoming, respond.IncomingRequestRespond{
			RequestID: r.ID,
			Sender:    r.Sender,
		})
	}
	for _, r := range sent {
		result.Sent = append(result.Sent, respond.SentRequestRespond{
			RequestID: r.ID,
			Receiver:  r.Receiver,
		})
	}
	return result, nil
}

// Apply 发起好友申请
// 同一对用户之间最多存在一条待处理申请（不区分方向），已是好友不能重复申请
// 创建成功后实时推送接收者的申请列表和发送者的已发出列表
func (s *Service) Apply(ctx context.Context, sender, receiver string) (uint, error) {
	if sender == receiver {
		return 0, errorx.New(errorx.CodeInvalidParam, "不能添加自己为好友")
	}
	if _, err := s.users.FindByUsername(receiver); err != nil {
		if errorx.IsNotFound(err) {
			return 0, errorx.Newf(errorx.CodeUserNotExist, "用户 %s 不存在", receiver)
		}
		return 0, err
	}
	exists, err := s.friends.Exists(sender, receiver)
	if err != nil {
		return 0, err
	}
	if exists {
		return 0, errorx.New(errorx.CodeAlreadyFriends, "你们已经是好友")
	}
	if _, err := s.requests.FindPendingBetween(sender, receiver); err == nil {
		return 0, errorx.New(errorx.CodeRequestExists, "已存在待处理的好友申请")
	} else if !errorx.IsNotFound(err) {
		return 0, err
	}

	req := &model.FriendRequest{
		Sender:   sender,
		Receiver: receiver,
		Status:   model.FriendRequestPending,
	}
	if err := s.requests.Create(req); err != nil {
		return 0, err
	}

	s.notifier.NotifyUser(receiver, chat.EvtUpdateFriendRequests, chat.FriendRequestPayload{
		RequestID: req.ID,
		Sender:    sender,
	})
	s.notifier.NotifyUser(sender, chat.EvtUpdateSentRequests, chat.FriendRequestPayload{
		RequestID: req.ID,
		Receiver:  receiver,
	})
	zap.L().Info("好友申请已创建",
		zap.String("sender", sender), zap.String("receiver", receiver), zap.Uint("request_id", req.ID))
	return req.ID, nil
}

// Accept 通过好友申请，只有接收者可以操作
// 双向好友关系和申请删除在同一事务内完成；成功后失效双方缓存并推送双方
func (s *Service) Accept(ctx context.Context, receiver string, requestID uint) (string, error) {
	req, err := s.requests.FindByID(requestID)
	if err != nil {
		if errorx.IsNotFound(err) {
			return "", errorx.New(errorx.CodeNotFound, "好友申请不存在")
		}
		return "", err
	}
	if req.Receiver != receiver {
		return "", errorx.New(errorx.CodeNotReceiver, "只有接收者可以处理该申请")
	}
	if err := s.requests.Accept(req); err != nil {
		return "", err
	}

	s.invalidateFriendCache(req.Sender, req.Receiver)
	s.notifier.NotifyUser(req.Sender, chat.EvtUpdateFriendsList, chat.FriendsListPayload{NewFriend: req.Receiver})
	s.notifier.NotifyUser(req.Receiver, chat.EvtUpdateFriendsList, chat.FriendsListPayload{NewFriend: req.Sender})
	s.notifier.NotifyUser(req.Sender, chat.EvtUpdateSentRequestsStatus, chat.RequestStatusPayload{
		RequestID: req.ID,
		NewStatus: "accepted",
	})
	// 双方都在线时互相补发一次上线通知，新好友立即出现在在线列表里
	if s.notifier.IsOnline(req.Sender) && s.notifier.IsOnline(req.Receiver) {
		s.notifier.NotifyUser(req.Sender, chat.EvtFriendOnline, chat.PresencePayload{Username: req.Receiver})
		s.notifier.NotifyUser(req.Receiver, chat.EvtFriendOnline, chat.PresencePayload{Username: req.Sender})
	}
	zap.L().Info("好友申请已通过",
		zap.String("sender", req.Sender), zap.String("receiver", req.Receiver))
	return req.Sender, nil
}

// Reject 拒绝好友申请，只有接收者可以操作
func (s *Service) Reject(receiver string, requestID uint) error {
	req, err := s.requests.FindByID(requestID)
	if err != nil {
		if errorx.IsNotFound(err) {
			return errorx.New(errorx.CodeNotFound, "好友申请不存在")
		}
		return err
	}
	if req.Receiver != receiver {
		return errorx.New(errorx.CodeNotReceiver, "只有接收者可以处理该申请")
	}
	if err := s.requests.UpdateStatus(req.ID, model.FriendRequestRejected); err != nil {
		return err
	}
	s.notifier.NotifyUser(req.Sender, chat.EvtUpdateSentRequestsStatus, chat.RequestStatusPayload{
		RequestID: req.ID,
		NewStatus: "rejected",
	})
	return nil
}

// Remove 删除好友，双向关系一并删除
func (s *Service) Remove(ctx context.Context, username, friendUsername string) error {
	if err := s.friends.DeleteBidirectional(username, friendUsername); err != nil {
		if errorx.IsNotFound(err) {
			return errorx.Newf(errorx.CodeNotFound, "%s 不是你的好友", friendUsername)
		}
		return err
	}
	s.invalidateFriendCache(username, friendUsername)
	s.notifier.NotifyUser(friendUsername, chat.EvtUpdateFriendsList, chat.FriendsListPayload{RemovedFriend: username})
	s.notifier.NotifyUser(username, chat.EvtUpdateFriendsList, chat.FriendsListPayload{RemovedFriend: friendUsername})
	zap.L().Info("好友关系已删除",
		zap.String("username", username), zap.String("friend", friendUsername))
	return nil
}

// invalidateFriendCache 异步失效双方的好友缓存
func (s *Service) invalidateFriendCache(a, b string) {
	keys := []string{friendCachePrefix + a, friendCachePrefix + b}
	s.cache.SubmitTask(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		for _, key := range keys {
			if err := s.cache.Delete(ctx, key); err != nil {
				zap.L().Warn("失效好友缓存失败", zap.String("key", key), zap.Error(err))
			}
		}
	})
}

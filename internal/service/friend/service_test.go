package friend

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/infernocadet/secure-message-chat/internal/dao/repository"
	"github.com/infernocadet/secure-message-chat/internal/model"
	"github.com/infernocadet/secure-message-chat/internal/service/chat"
	"github.com/infernocadet/secure-message-chat/pkg/errorx"
	"github.com/infernocadet/secure-message-chat/pkg/util/snowflake"
)

func TestMain(m *testing.M) {
	snowflake.Init(1)
	os.Exit(m.Run())
}

// fakeNotifier 记录推送事件的测试替身
type fakeNotifier struct {
	mu     sync.Mutex
	online map[string]bool
	pushes []push
}

type push struct {
	username string
	event    string
	payload  any
}

func newFakeNotifier(online ...string) *fakeNotifier {
	n := &fakeNotifier{online: make(map[string]bool)}
	for _, username := range online {
		n.online[username] = true
	}
	return n
}

func (n *fakeNotifier) NotifyUser(username, event string, payload any) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.online[username] {
		return false
	}
	n.pushes = append(n.pushes, push{username: username, event: event, payload: payload})
	return true
}

func (n *fakeNotifier) IsOnline(username string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.online[username]
}

func (n *fakeNotifier) countPushes(username, event string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	count := 0
	for _, p := range n.pushes {
		if p.username == username && p.event == event {
			count++
		}
	}
	return count
}

// fakeCache 内存缓存替身，SubmitTask 同步执行以便断言
type fakeCache struct {
	mu   sync.Mutex
	sets map[string]map[string]struct{}
	kv   map[string]string
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		sets: make(map[string]map[string]struct{}),
		kv:   make(map[string]string),
	}
}

func (c *fakeCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.kv[key] = value
	return nil
}

func (c *fakeCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.kv[key], nil
}

func (c *fakeCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.kv, key)
	delete(c.sets, key)
	return nil
}

func (c *fakeCache) AddToSet(ctx context.Context, key string, members ...interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	set, ok := c.sets[key]
	if !ok {
		set = make(map[string]struct{})
		c.sets[key] = set
	}
	for _, m := range members {
		set[m.(string)] = struct{}{}
	}
	return nil
}

func (c *fakeCache) GetSetMembers(ctx context.Context, key string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var members []string
	for m := range c.sets[key] {
		members = append(members, m)
	}
	return members, nil
}

func (c *fakeCache) RemoveFromSet(ctx context.Context, key string, members ...interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, m := range members {
		delete(c.sets[key], m.(string))
	}
	return nil
}

func (c *fakeCache) SubmitTask(action func()) {
	action()
}

func (c *fakeCache) hasSet(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.sets[key]
	return ok
}

func newTestService(t *testing.T, notifier *fakeNotifier, cache *fakeCache) (*Service, *repository.Repositories) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	err = db.AutoMigrate(
		&model.UserInfo{},
		&model.Friend{},
		&model.FriendRequest{},
	)
	if err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	repos := repository.NewRepositories(db)
	return NewService(repos, cache, notifier), repos
}

func mustCreateUser(t *testing.T, repos *repository.Repositories, username string) {
	t.Helper()
	u := &model.UserInfo{Username: username, RawPassword: "test-password"}
	if err := repos.User.Create(u); err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
}

func TestApplyPushesBothSides(t *testing.T) {
	notifier := newFakeNotifier("alice", "bob")
	svc, repos := newTestService(t, notifier, newFakeCache())
	mustCreateUser(t, repos, "alice")
	mustCreateUser(t, repos, "bob")

	requestID, err := svc.Apply(context.Background(), "alice", "bob")
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if requestID == 0 {
		t.Fatalf("expected a request id")
	}
	if n := notifier.countPushes("bob", chat.EvtUpdateFriendRequests); n != 1 {
		t.Fatalf("expected receiver push, got %d", n)
	}
	if n := notifier.countPushes("alice", chat.EvtUpdateSentRequests); n != 1 {
		t.Fatalf("expected sender push, got %d", n)
	}
}

func TestApplyRejectsDuplicatesAndSelf(t *testing.T) {
	notifier := newFakeNotifier("alice", "bob")
	svc, repos := newTestService(t, notifier, newFakeCache())
	mustCreateUser(t, repos, "alice")
	mustCreateUser(t, repos, "bob")

	if _, err := svc.Apply(context.Background(), "alice", "alice"); errorx.GetCode(err) != errorx.CodeInvalidParam {
		t.Fatalf("expected CodeInvalidParam for self apply, got %v", err)
	}
	if _, err := svc.Apply(context.Background(), "alice", "ghost"); errorx.GetCode(err) != errorx.CodeUserNotExist {
		t.Fatalf("expected CodeUserNotExist, got %v", err)
	}

	if _, err := svc.Apply(context.Background(), "alice", "bob"); err != nil {
		t.Fatalf("apply: %v", err)
	}
	// 同一对用户之间最多一条待处理申请，反向申请同样被拒
	if _, err := svc.Apply(context.Background(), "alice", "bob"); errorx.GetCode(err) != errorx.CodeRequestExists {
		t.Fatalf("expected CodeRequestExists, got %v", err)
	}
	if _, err := svc.Apply(context.Background(), "bob", "alice"); errorx.GetCode(err) != errorx.CodeRequestExists {
		t.Fatalf("expected CodeRequestExists for reverse apply, got %v", err)
	}
}

func TestApplyRejectsExistingFriends(t *testing.T) {
	notifier := newFakeNotifier("alice", "bob")
	svc, repos := newTestService(t, notifier, newFakeCache())
	mustCreateUser(t, repos, "alice")
	mustCreateUser(t, repos, "bob")
	if err := repos.Friend.CreateBidirectional("alice", "bob"); err != nil {
		t.Fatalf("make friends: %v", err)
	}

	if _, err := svc.Apply(context.Background(), "alice", "bob"); errorx.GetCode(err) != errorx.CodeAlreadyFriends {
		t.Fatalf("expected CodeAlreadyFriends, got %v", err)
	}
}

func TestAcceptOnlyByReceiver(t *testing.T) {
	notifier := newFakeNotifier("alice", "bob")
	svc, repos := newTestService(t, notifier, newFakeCache())
	mustCreateUser(t, repos, "alice")
	mustCreateUser(t, repos, "bob")

	requestID, err := svc.Apply(context.Background(), "alice", "bob")
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	if _, err := svc.Accept(context.Background(), "alice", requestID); errorx.GetCode(err) != errorx.CodeNotReceiver {
		t.Fatalf("expected CodeNotReceiver, got %v", err)
	}
	if _, err := svc.Accept(context.Background(), "bob", 9999); errorx.GetCode(err) != errorx.CodeNotFound {
		t.Fatalf("expected CodeNotFound, got %v", err)
	}
}

func TestAcceptEstablishesFriendshipAndPushes(t *testing.T) {
	notifier := newFakeNotifier("alice", "bob")
	cache := newFakeCache()
	svc, repos := newTestService(t, notifier, cache)
	mustCreateUser(t, repos, "alice")
	mustCreateUser(t, repos, "bob")

	requestID, err := svc.Apply(context.Background(), "alice", "bob")
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	// 预先放一份缓存，验证通过申请后被失效
	if err := cache.AddToSet(context.Background(), friendCachePrefix+"alice", "stale"); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	newFriend, err := svc.Accept(context.Background(), "bob", requestID)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if newFriend != "alice" {
		t.Fatalf("expected new friend alice, got %s", newFriend)
	}

	ok, err := repos.Friend.Exists("bob", "alice")
	if err != nil || !ok {
		t.Fatalf("expected friendship after accept, ok=%v err=%v", ok, err)
	}
	if n := notifier.countPushes("alice", chat.EvtUpdateFriendsList); n != 1 {
		t.Fatalf("expected sender friends-list push, got %d", n)
	}
	if n := notifier.countPushes("bob", chat.EvtUpdateFriendsList); n != 1 {
		t.Fatalf("expected receiver friends-list push, got %d", n)
	}
	// 双方在线时互相补发上线通知
	if n := notifier.countPushes("alice", chat.EvtFriendOnline); n != 1 {
		t.Fatalf("expected friendOnline push to sender, got %d", n)
	}
	if cache.hasSet(friendCachePrefix + "alice") {
		t.Fatalf("expected alice's friend cache to be invalidated")
	}
}

func TestRejectNotifiesSender(t *testing.T) {
	notifier := newFakeNotifier("alice", "bob")
	svc, repos := newTestService(t, notifier, newFakeCache())
	mustCreateUser(t, repos, "alice")
	mustCreateUser(t, repos, "bob")

	requestID, err := svc.Apply(context.Background(), "alice", "bob")
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if err := svc.Reject("bob", requestID); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if n := notifier.countPushes("alice", chat.EvtUpdateSentRequestsStatus); n != 1 {
		t.Fatalf("expected status push to sender, got %d", n)
	}
	// 拒绝后可以重新申请
	if _, err := svc.Apply(context.Background(), "alice", "bob"); err != nil {
		t.Fatalf("re-apply after reject: %v", err)
	}
}

func TestRemoveFriend(t *testing.T) {
	notifier := newFakeNotifier("alice", "bob")
	cache := newFakeCache()
	svc, repos := newTestService(t, notifier, cache)
	mustCreateUser(t, repos, "alice")
	mustCreateUser(t, repos, "bob")
	if err := repos.Friend.CreateBidirectional("alice", "bob"); err != nil {
		t.Fatalf("make friends: %v", err)
	}

	if err := svc.Remove(context.Background(), "alice", "bob"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	ok, err := repos.Friend.Exists("bob", "alice")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if ok {
		t.Fatalf("expected friendship to be gone")
	}
	if n := notifier.countPushes("bob", chat.EvtUpdateFriendsList); n != 1 {
		t.Fatalf("expected removal push, got %d", n)
	}
	if n := notifier.countPushes("alice", chat.EvtUpdateFriendsList); n != 1 {
		t.Fatalf("expected removal push to remover, got %d", n)
	}

	if err := svc.Remove(context.Background(), "alice", "bob"); errorx.GetCode(err) != errorx.CodeNotFound {
		t.Fatalf("expected CodeNotFound for repeated remove, got %v", err)
	}
}

func TestGetFriendListFillsCache(t *testing.T) {
	notifier := newFakeNotifier("alice", "bob")
	cache := newFakeCache()
	svc, repos := newTestService(t, notifier, cache)
	mustCreateUser(t, repos, "alice")
	mustCreateUser(t, repos, "bob")
	mustCreateUser(t, repos, "carol")
	if err := repos.Friend.CreateBidirectional("alice", "bob"); err != nil {
		t.Fatalf("make friends: %v", err)
	}
	if err := repos.Friend.CreateBidirectional("alice", "carol"); err != nil {
		t.Fatalf("make friends: %v", err)
	}

	list, err := svc.GetFriendList(context.Background(), "alice")
	if err != nil {
		t.Fatalf("get friend list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 friends, got %d", len(list))
	}
	for _, f := range list {
		wantOnline := f.Username == "bob"
		if f.Online != wantOnline {
			t.Fatalf("friend %s: expected online=%v, got %v", f.Username, wantOnline, f.Online)
		}
	}
	// 回源后缓存被回填
	if !cache.hasSet(friendCachePrefix + "alice") {
		t.Fatalf("expected friend cache to be filled")
	}
}

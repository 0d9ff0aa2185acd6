package chat

import (
	"strings"
	"testing"

	"github.com/infernocadet/secure-message-chat/pkg/errorx"
)

func TestRequestJoinWaitingThenReady(t *testing.T) {
	hub, repos := newTestHub(t)
	mustCreateUser(t, repos, "alice")
	mustCreateUser(t, repos, "bob")

	aliceConn := newFakeConn("conn-a")
	bobConn := newFakeConn("conn-b")
	hub.Connect("alice", "", aliceConn)
	hub.Connect("bob", "", bobConn)

	roomID, err := hub.RequestJoin("alice", aliceConn, "bob")
	if err != nil {
		t.Fatalf("request join: %v", err)
	}
	if roomID == "" {
		t.Fatalf("expected a room id")
	}

	// 发起者先收到 waiting
	var waiting WaitingPayload
	roundTrip(t, mustLastEvent(t, aliceConn, EvtWaiting).Payload, &waiting)
	if waiting.RoomID != roomID || waiting.Peer != "bob" {
		t.Fatalf("unexpected waiting payload: %+v", waiting)
	}

	// 第二方加入后双方都收到 roomReady，initiator 指向最先发起的一方
	readyRoomID, err := hub.RequestJoin("bob", bobConn, "alice")
	if err != nil {
		t.Fatalf("second join: %v", err)
	}
	if readyRoomID != roomID {
		t.Fatalf("expected same room id, got %s and %s", roomID, readyRoomID)
	}
	for _, conn := range []*fakeConn{aliceConn, bobConn} {
		var ready RoomReadyPayload
		roundTrip(t, mustLastEvent(t, conn, EvtRoomReady).Payload, &ready)
		if ready.RoomID != roomID {
			t.Fatalf("conn %s: unexpected room id %s", conn.id, ready.RoomID)
		}
		if ready.Initiator != "alice" || ready.Peer != "bob" {
			t.Fatalf("conn %s: unexpected roles %+v", conn.id, ready)
		}
	}
}

func TestRequestJoinUnknownPeer(t *testing.T) {
	hub, repos := newTestHub(t)
	mustCreateUser(t, repos, "alice")

	aliceConn := newFakeConn("conn-a")
	hub.Connect("alice", "", aliceConn)

	_, err := hub.RequestJoin("alice", aliceConn, "ghost")
	if errorx.GetCode(err) != errorx.CodeUnknownUser {
		t.Fatalf("expected CodeUnknownUser, got %v", err)
	}
}

func TestRequestJoinWhileInAnotherRoom(t *testing.T) {
	hub, repos := newTestHub(t)
	mustCreateUser(t, repos, "alice")
	mustCreateUser(t, repos, "bob")
	mustCreateUser(t, repos, "carol")

	aliceConn := newFakeConn("conn-a")
	carolConn := newFakeConn("conn-c")
	hub.Connect("alice", "", aliceConn)
	hub.Connect("carol", "", carolConn)

	if _, err := hub.RequestJoin("alice", aliceConn, "bob"); err != nil {
		t.Fatalf("request join: %v", err)
	}

	// 发起者已有房间（即使对端未加入）
	if _, err := hub.RequestJoin("alice", aliceConn, "carol"); errorx.GetCode(err) != errorx.CodeAlreadyInRoom {
		t.Fatalf("expected CodeAlreadyInRoom for busy initiator, got %v", err)
	}

	// 对端已被其他房间预留
	if _, err := hub.RequestJoin("carol", carolConn, "alice"); errorx.GetCode(err) != errorx.CodeAlreadyInRoom {
		t.Fatalf("expected CodeAlreadyInRoom for busy peer, got %v", err)
	}
}

func TestRequestJoinIdempotentForInitiator(t *testing.T) {
	hub, repos := newTestHub(t)
	mustCreateUser(t, repos, "alice")
	mustCreateUser(t, repos, "bob")

	aliceConn := newFakeConn("conn-a")
	hub.Connect("alice", "", aliceConn)

	first, err := hub.RequestJoin("alice", aliceConn, "bob")
	if err != nil {
		t.Fatalf("first join: %v", err)
	}
	second, err := hub.RequestJoin("alice", aliceConn, "bob")
	if err != nil {
		t.Fatalf("repeat join: %v", err)
	}
	if first != second {
		t.Fatalf("expected same room id, got %s and %s", first, second)
	}
	// 重复请求静默成功，不再发送第二个 waiting
	if n := aliceConn.countEvent(EvtWaiting); n != 1 {
		t.Fatalf("expected exactly one waiting frame, got %d", n)
	}
}

func TestRequestJoinAlreadyConnected(t *testing.T) {
	hub, repos := newTestHub(t)
	mustCreateUser(t, repos, "alice")
	mustCreateUser(t, repos, "bob")

	aliceConn := newFakeConn("conn-a")
	bobConn := newFakeConn("conn-b")
	hub.Connect("alice", "", aliceConn)
	hub.Connect("bob", "", bobConn)

	if _, err := hub.RequestJoin("alice", aliceConn, "bob"); err != nil {
		t.Fatalf("first join: %v", err)
	}
	if _, err := hub.RequestJoin("bob", bobConn, "alice"); err != nil {
		t.Fatalf("second join: %v", err)
	}

	_, err := hub.RequestJoin("alice", aliceConn, "bob")
	if errorx.GetCode(err) != errorx.CodeAlreadyConnected {
		t.Fatalf("expected CodeAlreadyConnected, got %v", err)
	}
}

func TestRoomReuseAfterLeave(t *testing.T) {
	hub, repos := newTestHub(t)
	mustCreateUser(t, repos, "alice")
	mustCreateUser(t, repos, "bob")

	aliceConn := newFakeConn("conn-a")
	bobConn := newFakeConn("conn-b")
	hub.Connect("alice", "", aliceConn)
	hub.Connect("bob", "", bobConn)

	roomID, err := hub.RequestJoin("alice", aliceConn, "bob")
	if err != nil {
		t.Fatalf("first join: %v", err)
	}
	if _, err := hub.RequestJoin("bob", bobConn, "alice"); err != nil {
		t.Fatalf("second join: %v", err)
	}

	hub.Leave("alice", roomID)
	hub.Leave("bob", roomID)

	// 双方离开后瞬时状态被丢弃，同一参与者集合复用持久房间 id 并重新走等待流程
	again, err := hub.RequestJoin("bob", bobConn, "alice")
	if err != nil {
		t.Fatalf("rejoin after leave: %v", err)
	}
	if again != roomID {
		t.Fatalf("expected durable room id %s to be reused, got %s", roomID, again)
	}
	var waiting WaitingPayload
	roundTrip(t, mustLastEvent(t, bobConn, EvtWaiting).Payload, &waiting)
	if waiting.RoomID != roomID || waiting.Peer != "alice" {
		t.Fatalf("unexpected waiting payload after rejoin: %+v", waiting)
	}
}

func TestLeaveIsIdempotent(t *testing.T) {
	hub, repos := newTestHub(t)
	mustCreateUser(t, repos, "alice")
	mustCreateUser(t, repos, "bob")

	aliceConn := newFakeConn("conn-a")
	bobConn := newFakeConn("conn-b")
	hub.Connect("alice", "", aliceConn)
	hub.Connect("bob", "", bobConn)

	roomID, err := hub.RequestJoin("alice", aliceConn, "bob")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if _, err := hub.RequestJoin("bob", bobConn, "alice"); err != nil {
		t.Fatalf("second join: %v", err)
	}

	hub.Leave("alice", roomID)
	before := bobConn.countEvent(EvtIncoming)
	hub.Leave("alice", roomID)
	hub.Leave("alice", "no-such-room")
	if after := bobConn.countEvent(EvtIncoming); after != before {
		t.Fatalf("repeated leave must be a no-op, frames went from %d to %d", before, after)
	}
}

func TestSendSanitizesPersistsAndEchoes(t *testing.T) {
	hub, repos := newTestHub(t)
	mustCreateUser(t, repos, "alice")
	mustCreateUser(t, repos, "bob")

	aliceConn := newFakeConn("conn-a")
	bobConn := newFakeConn("conn-b")
	hub.Connect("alice", "", aliceConn)
	hub.Connect("bob", "", bobConn)

	roomID, err := hub.RequestJoin("alice", aliceConn, "bob")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if _, err := hub.RequestJoin("bob", bobConn, "alice"); err != nil {
		t.Fatalf("second join: %v", err)
	}

	if err := hub.Send("alice", roomID, `hello <script>alert(1)</script>world`); err != nil {
		t.Fatalf("send: %v", err)
	}

	// 双方（包括发送者）都收到净化后的消息
	for _, conn := range []*fakeConn{aliceConn, bobConn} {
		var incoming IncomingPayload
		roundTrip(t, mustLastEvent(t, conn, EvtIncoming).Payload, &incoming)
		if incoming.Sender != "alice" {
			t.Fatalf("conn %s: unexpected sender %q", conn.id, incoming.Sender)
		}
		if strings.Contains(incoming.Message, "<script>") {
			t.Fatalf("conn %s: message not sanitized: %q", conn.id, incoming.Message)
		}
	}

	// 消息已净化落库
	messages, err := repos.Message.FindByRoomUuid(roomID)
	if err != nil {
		t.Fatalf("find messages: %v", err)
	}
	if len(messages) != 1 {
		t.Fatalf("expected 1 persisted message, got %d", len(messages))
	}
	if strings.Contains(messages[0].Content, "<script>") {
		t.Fatalf("persisted message not sanitized: %q", messages[0].Content)
	}
	if messages[0].Sender != "alice" || messages[0].RoomUuid != roomID {
		t.Fatalf("unexpected persisted message: %+v", messages[0])
	}
}

func TestSendRejectsOversizedMessage(t *testing.T) {
	hub, repos := newTestHub(t)
	mustCreateUser(t, repos, "alice")
	mustCreateUser(t, repos, "bob")

	aliceConn := newFakeConn("conn-a")
	hub.Connect("alice", "", aliceConn)
	roomID, err := hub.RequestJoin("alice", aliceConn, "bob")
	if err != nil {
		t.Fatalf("join: %v", err)
	}

	err = hub.Send("alice", roomID, strings.Repeat("x", 501))
	if errorx.GetCode(err) != errorx.CodeInvalidParam {
		t.Fatalf("expected CodeInvalidParam for oversized message, got %v", err)
	}
	if err := hub.Send("alice", roomID, ""); errorx.GetCode(err) != errorx.CodeInvalidParam {
		t.Fatalf("expected CodeInvalidParam for empty message, got %v", err)
	}
}

func TestDisconnectCleansUpRoomAndPresence(t *testing.T) {
	hub, repos := newTestHub(t)
	mustCreateUser(t, repos, "alice")
	mustCreateUser(t, repos, "bob")
	if err := repos.Friend.CreateBidirectional("alice", "bob"); err != nil {
		t.Fatalf("make friends: %v", err)
	}

	aliceConn := newFakeConn("conn-a")
	bobConn := newFakeConn("conn-b")
	hub.Connect("alice", "", aliceConn)
	hub.Connect("bob", "", bobConn)

	roomID, err := hub.RequestJoin("alice", aliceConn, "bob")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if _, err := hub.RequestJoin("bob", bobConn, "alice"); err != nil {
		t.Fatalf("second join: %v", err)
	}

	hub.Disconnect(bobConn.id)

	// 房间内收到断开通知，好友收到下线通知
	var incoming IncomingPayload
	roundTrip(t, mustLastEvent(t, aliceConn, EvtIncoming).Payload, &incoming)
	if !strings.Contains(incoming.Message, "bob") || incoming.Color != "red" {
		t.Fatalf("unexpected disconnect notice: %+v", incoming)
	}
	var presence PresencePayload
	roundTrip(t, mustLastEvent(t, aliceConn, EvtFriendOffline).Payload, &presence)
	if presence.Username != "bob" {
		t.Fatalf("unexpected offline payload: %+v", presence)
	}
	if hub.IsOnline("bob") {
		t.Fatalf("expected bob to be offline")
	}

	// alice 仍在房间内，离开后瞬时状态被丢弃
	hub.Leave("alice", roomID)
	if _, ok := hub.registry.CurrentRoom("alice"); ok {
		t.Fatalf("expected alice to have no current room")
	}
	if _, ok := hub.registry.CurrentRoom("bob"); ok {
		t.Fatalf("expected bob's reservation to be cleared")
	}
}

func TestPresenceBroadcastToFriendsOnly(t *testing.T) {
	hub, repos := newTestHub(t)
	mustCreateUser(t, repos, "alice")
	mustCreateUser(t, repos, "bob")
	mustCreateUser(t, repos, "carol")
	if err := repos.Friend.CreateBidirectional("alice", "bob"); err != nil {
		t.Fatalf("make friends: %v", err)
	}

	aliceConn := newFakeConn("conn-a")
	hub.Connect("alice", "", aliceConn)

	// 好友上线：双方都收到 friendOnline（新连接被回灌在线好友）
	bobConn := newFakeConn("conn-b")
	hub.Connect("bob", "", bobConn)

	var presence PresencePayload
	roundTrip(t, mustLastEvent(t, aliceConn, EvtFriendOnline).Payload, &presence)
	if presence.Username != "bob" {
		t.Fatalf("expected alice to see bob online, got %+v", presence)
	}
	roundTrip(t, mustLastEvent(t, bobConn, EvtFriendOnline).Payload, &presence)
	if presence.Username != "alice" {
		t.Fatalf("expected bob to be seeded with alice online, got %+v", presence)
	}

	// 非好友上线不产生任何通知
	carolConn := newFakeConn("conn-c")
	hub.Connect("carol", "", carolConn)
	if n := aliceConn.countEvent(EvtFriendOnline); n != 1 {
		t.Fatalf("expected no presence frame for non-friend, got %d", n)
	}
}

func TestReconnectKeepsUserOnline(t *testing.T) {
	hub, repos := newTestHub(t)
	mustCreateUser(t, repos, "alice")

	conn1 := newFakeConn("conn-1")
	conn2 := newFakeConn("conn-2")
	hub.Connect("alice", "", conn1)
	hub.Connect("alice", "", conn2)

	// 旧连接的断开不影响重连后的会话
	hub.Disconnect(conn1.id)
	if !hub.IsOnline("alice") {
		t.Fatalf("expected alice to stay online after stale conn closed")
	}
}

func TestRelayEncryptedKeySkipsSender(t *testing.T) {
	hub, repos := newTestHub(t)
	mustCreateUser(t, repos, "alice")
	mustCreateUser(t, repos, "bob")

	aliceConn := newFakeConn("conn-a")
	bobConn := newFakeConn("conn-b")
	hub.Connect("alice", "", aliceConn)
	hub.Connect("bob", "", bobConn)

	roomID, err := hub.RequestJoin("alice", aliceConn, "bob")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if _, err := hub.RequestJoin("bob", bobConn, "alice"); err != nil {
		t.Fatalf("second join: %v", err)
	}

	hub.RelayEncryptedKey("alice", roomID, "sealed-key")

	var payload EncryptedKeyPayload
	roundTrip(t, mustLastEvent(t, bobConn, EvtReceiveEncryptedKey).Payload, &payload)
	if payload.Sender != "alice" || payload.EncryptedKey != "sealed-key" {
		t.Fatalf("unexpected key payload: %+v", payload)
	}
	if n := aliceConn.countEvent(EvtReceiveEncryptedKey); n != 0 {
		t.Fatalf("sender must not receive its own key, got %d frames", n)
	}

	// 密钥只转发不落库
	messages, err := repos.Message.FindByRoomUuid(roomID)
	if err != nil {
		t.Fatalf("find messages: %v", err)
	}
	if len(messages) != 0 {
		t.Fatalf("expected no persisted messages, got %d", len(messages))
	}
}

func TestHandleFrameUnknownEvent(t *testing.T) {
	hub, repos := newTestHub(t)
	mustCreateUser(t, repos, "alice")

	aliceConn := newFakeConn("conn-a")
	hub.Connect("alice", "", aliceConn)

	hub.HandleFrame(aliceConn, "alice", []byte(`{"event":"teleport","payload":{}}`))
	if n := aliceConn.countEvent(EvtError); n != 1 {
		t.Fatalf("expected one error frame, got %d", n)
	}

	hub.HandleFrame(aliceConn, "alice", []byte(`not json`))
	if n := aliceConn.countEvent(EvtError); n != 2 {
		t.Fatalf("expected two error frames, got %d", n)
	}
}

func TestHandleFrameDispatchesRequestJoin(t *testing.T) {
	hub, repos := newTestHub(t)
	mustCreateUser(t, repos, "alice")
	mustCreateUser(t, repos, "bob")

	aliceConn := newFakeConn("conn-a")
	hub.Connect("alice", "", aliceConn)

	hub.HandleFrame(aliceConn, "alice", []byte(`{"event":"requestJoin","payload":{"peer":"bob"}}`))
	if n := aliceConn.countEvent(EvtWaiting); n != 1 {
		t.Fatalf("expected a waiting frame, got events %v", aliceConn.eventNames())
	}

	// 配对错误以 error 事件回发，不中断连接
	hub.HandleFrame(aliceConn, "alice", []byte(`{"event":"requestJoin","payload":{"peer":"ghost"}}`))
	if n := aliceConn.countEvent(EvtError); n != 1 {
		t.Fatalf("expected an error frame, got events %v", aliceConn.eventNames())
	}
}

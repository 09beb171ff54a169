package ws

import (
	"encoding/json"
	"testing"
	"time"

	"go.uber.org/zap"
)

func recvMessage(t *testing.T, c *client) Message {
	t.Helper()
	select {
	case data := <-c.send:
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("unmarshal pushed message: %v", err)
		}
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for pushed message")
		return Message{}
	}
}

func TestGreetSendsSnapshot(t *testing.T) {
	h := NewHub(zap.NewNop())
	h.SetSnapshot(func() Snapshot {
		return Snapshot{Vehicles: []string{"v1"}, Status: "idle"}
	})

	c := &client{hub: h, send: make(chan []byte, 1)}
	h.greet(c)

	msg := recvMessage(t, c)
	if msg.Type != MsgTypeInit {
		t.Fatalf("expected init message, got %q", msg.Type)
	}
}

func TestGreetWithoutSnapshotIsSilent(t *testing.T) {
	h := NewHub(zap.NewNop())
	c := &client{hub: h, send: make(chan []byte, 1)}
	h.greet(c)

	select {
	case <-c.send:
		t.Fatal("expected no message when no snapshot source is set")
	default:
	}
}

func TestPublishReachesRegisteredClients(t *testing.T) {
	h := NewHub(zap.NewNop())
	go h.Run()

	c := &client{hub: h, send: make(chan []byte, 4)}
	h.register <- c

	h.PublishProgress(map[string]int{"processed_files": 1})
	msg := recvMessage(t, c)
	if msg.Type != MsgTypeAnalysisProgress {
		t.Fatalf("expected progress message, got %q", msg.Type)
	}

	h.PublishError("boom")
	msg = recvMessage(t, c)
	if msg.Type != MsgTypeAnalysisError {
		t.Fatalf("expected error message, got %q", msg.Type)
	}

	h.unregister <- c
}

func TestSlowClientDisconnected(t *testing.T) {
	h := NewHub(zap.NewNop())
	go h.Run()

	// 无缓冲通道模拟打满的发送缓冲
	c := &client{hub: h, send: make(chan []byte)}
	h.register <- c

	h.PublishComplete(map[string]int{"vehicles": 1})

	deadline := time.Now().Add(time.Second)
	for h.ClientCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("expected slow client to be dropped")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

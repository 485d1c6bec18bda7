package websocket

import (
	"sync"
	"testing"
	"time"
)

// Clients with unbuffered send channels force Run's broadcast branch to evict
// them while readers poll the client map from other goroutines.
func TestBroadcastEvictsSlowClientsUnderConcurrentReads(t *testing.T) {
	h := NewHub()
	go h.Run()

	for i := 0; i < 8; i++ {
		h.register <- &Client{hub: h, send: make(chan []byte), accountID: uint(i % 2)}
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			h.Broadcast(Message{Type: "ping", Data: i})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			h.GetClientCount()
			h.BroadcastToAccount(1, Message{Type: "ping", Data: i})
		}
	}()
	wg.Wait()

	deadline := time.Now().Add(2 * time.Second)
	for h.GetClientCount() > 0 {
		if time.Now().After(deadline) {
			t.Fatalf("slow clients not evicted, %d still registered", h.GetClientCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestBroadcastToAccountDeliversOnlyToMatchingAccount(t *testing.T) {
	h := NewHub()
	go h.Run()

	mine := &Client{hub: h, send: make(chan []byte, 4), accountID: 7}
	other := &Client{hub: h, send: make(chan []byte, 4), accountID: 8}
	h.register <- mine
	h.register <- other
	for h.GetClientCount() < 2 {
		time.Sleep(time.Millisecond)
	}

	h.BroadcastToAccount(7, Message{Type: "notification", Data: "hello"})

	select {
	case <-mine.send:
	case <-time.After(time.Second):
		t.Fatal("account 7 never received its message")
	}
	select {
	case msg := <-other.send:
		t.Fatalf("account 8 received unexpected message %s", msg)
	default:
	}
}

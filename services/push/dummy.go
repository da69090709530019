package pushsvc

import (
	"context"
	"sync"

	"github.com/trezcool/darasa/core/notification"
)

// DummyGateway captures messages instead of delivering them; used in tests.
type DummyGateway struct {
	mu   sync.Mutex
	sent []notification.Message
}

var _ notification.Gateway = (*DummyGateway)(nil)

func NewDummyGateway() *DummyGateway {
	return &DummyGateway{}
}

func (gw *DummyGateway) Send(ctx context.Context, msg notification.Message) error {
	gw.mu.Lock()
	defer gw.mu.Unlock()
	gw.sent = append(gw.sent, msg)
	return nil
}

func (gw *DummyGateway) SentMessages() []notification.Message {
	gw.mu.Lock()
	defer gw.mu.Unlock()
	return append([]notification.Message(nil), gw.sent...)
}

func (gw *DummyGateway) Clear() {
	gw.mu.Lock()
	defer gw.mu.Unlock()
	gw.sent = nil
}

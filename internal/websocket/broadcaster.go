package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vaishnav-mv/LudusCode-Backend/internal/models"
	"github.com/vaishnav-mv/LudusCode-Backend/pkg/logger"
)

const duelChannelPrefix = "duel:"

// DuelBroadcaster 듀얼 스냅샷을 Redis Pub/Sub으로 전파하고
// duel:* 채널을 구독해 이 인스턴스의 Hub로 중계한다
// 여러 서버 인스턴스가 떠 있어도 관전자는 어느 인스턴스에 붙었든 같은 업데이트를 받는다
type DuelBroadcaster struct {
	client *redis.Client
	hub    *Hub

	pubsub *redis.PubSub
	wg     sync.WaitGroup
	mu     sync.Mutex
}

func NewDuelBroadcaster(client *redis.Client, hub *Hub) *DuelBroadcaster {
	return &DuelBroadcaster{
		client: client,
		hub:    hub,
	}
}

// PublishDuel 듀얼 스냅샷 발행 (fire-and-forget)
// Redis가 죽어 있으면 로컬 Hub로만 전달한다
func (b *DuelBroadcaster) PublishDuel(duel *models.Duel) {
	data, err := json.Marshal(duel)
	if err != nil {
		logger.Error("Failed to marshal duel for broadcast", "duelId", duel.ID, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := b.client.Publish(ctx, duelChannelPrefix+duel.ID, data).Err(); err != nil {
		logger.Warn("Failed to publish duel update, falling back to local hub",
			"duelId", duel.ID,
			"error", err,
		)
		b.hub.SendDuelUpdate(duel)
	}
}

// Start duel:* 채널 구독 및 Hub 중계 시작
func (b *DuelBroadcaster) Start(ctx context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.pubsub != nil {
		return
	}

	b.pubsub = b.client.PSubscribe(ctx, duelChannelPrefix+"*")

	b.wg.Add(1)
	go b.relayLoop()

	logger.Info("DuelBroadcaster subscribed", "pattern", duelChannelPrefix+"*")
}

// Stop 구독 종료
func (b *DuelBroadcaster) Stop() {
	b.mu.Lock()
	pubsub := b.pubsub
	b.pubsub = nil
	b.mu.Unlock()

	if pubsub == nil {
		return
	}

	if err := pubsub.Close(); err != nil {
		logger.Warn("Failed to close duel subscription", "error", err)
	}
	b.wg.Wait()
	logger.Info("DuelBroadcaster stopped")
}

// relayLoop Redis에서 받은 스냅샷을 Hub로 중계
func (b *DuelBroadcaster) relayLoop() {
	defer b.wg.Done()

	b.mu.Lock()
	pubsub := b.pubsub
	b.mu.Unlock()
	if pubsub == nil {
		return
	}

	for msg := range pubsub.Channel() {
		var duel models.Duel
		if err := json.Unmarshal([]byte(msg.Payload), &duel); err != nil {
			logger.Error("Failed to unmarshal duel update", "channel", msg.Channel, "error", err)
			continue
		}
		b.hub.SendDuelUpdate(&duel)
	}
}

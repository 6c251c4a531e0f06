package bus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// TopicSignal은 모든 계정이 구독하는 브로드캐스트 토픽입니다
const TopicSignal = "signal"

// TopicOrderPrefix는 계정 전용 주문 토픽의 접두사입니다
const TopicOrderPrefix = "order"

// OrderTopic은 계정 별칭에 대한 주문 토픽 이름을 반환합니다
func OrderTopic(alias string) string {
	return TopicOrderPrefix + ":" + alias
}

// Message는 버스에서 수신한 메시지 한 건입니다
type Message struct {
	Topic   string
	Payload []byte
}

// Bus는 Redis Pub/Sub 기반 메시지 버스입니다.
// 전달은 최대 1회(at-most-once)이며 영속성은 보장하지 않습니다
type Bus struct {
	client *redis.Client
}

// New는 Redis URL로 새로운 버스를 생성합니다
func New(url string) (*Bus, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis URL 파싱 실패: %w", err)
	}
	return &Bus{client: redis.NewClient(opt)}, nil
}

// Ping은 버스 연결을 확인합니다
func (b *Bus) Ping(ctx context.Context) error {
	if err := b.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis 연결 실패: %w", err)
	}
	return nil
}

// Publish는 값을 JSON으로 직렬화해 토픽에 발행합니다
func (b *Bus) Publish(ctx context.Context, topic string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("메시지 직렬화 실패: %w", err)
	}
	if err := b.client.Publish(ctx, topic, payload).Err(); err != nil {
		return fmt.Errorf("메시지 발행 실패 [토픽: %s]: %w", topic, err)
	}
	return nil
}

// Subscribe는 토픽들을 구독하고 수신 채널을 반환합니다.
// 컨텍스트가 취소되면 구독이 해제되고 채널이 닫힙니다
func (b *Bus) Subscribe(ctx context.Context, topics ...string) (<-chan Message, error) {
	pubsub := b.client.Subscribe(ctx, topics...)

	// 구독이 실제로 성립했는지 확인
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("토픽 구독 실패: %w", err)
	}

	out := make(chan Message)
	go func() {
		defer close(out)
		defer pubsub.Close()

		in := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-in:
				if !ok {
					return
				}
				select {
				case out <- Message{Topic: msg.Channel, Payload: []byte(msg.Payload)}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

// Close는 버스 연결을 종료합니다
func (b *Bus) Close() error {
	return b.client.Close()
}

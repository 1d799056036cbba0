package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/yeremiapane/bakery-app/utils"
)

const relayChannel = "bakery:events"

// relayEnvelope membungkus frame dengan id instance pengirim supaya
// instance tidak memproses ulang frame miliknya sendiri.
type relayEnvelope struct {
	Origin  string          `json:"origin"`
	Payload json.RawMessage `json:"payload"`
}

// Relay meneruskan frame event lewat redis pub/sub untuk deployment
// multi-instance. Registry hub tetap process-local; relay hanya
// memastikan frame sampai ke device yang terkoneksi di instance lain.
type Relay struct {
	rdb    *redis.Client
	origin string
	cancel context.CancelFunc
}

func NewRelay(redisURL string) (*Relay, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)

	// Test connection
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Relay{
		rdb:    rdb,
		origin: uuid.NewString(),
	}, nil
}

// Publish mengirim satu frame ke channel relay
func (r *Relay) Publish(payload []byte) error {
	env, err := json.Marshal(relayEnvelope{
		Origin:  r.origin,
		Payload: payload,
	})
	if err != nil {
		return err
	}
	return r.rdb.Publish(context.Background(), relayChannel, env).Err()
}

// Subscribe menjalankan loop penerima; frame dari instance lain
// diteruskan ke handler. Berhenti saat Close dipanggil.
func (r *Relay) Subscribe(handler func(payload []byte)) {
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel

	sub := r.rdb.Subscribe(ctx, relayChannel)

	go func() {
		defer sub.Close()
		for {
			msg, err := sub.ReceiveMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				utils.ErrorLogger.Printf("Relay receive error: %v", err)
				continue
			}

			var env relayEnvelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				utils.ErrorLogger.Printf("Relay: invalid envelope: %v", err)
				continue
			}
			if env.Origin == r.origin {
				continue
			}
			handler(env.Payload)
		}
	}()
}

// Close menghentikan subscriber dan menutup koneksi redis
func (r *Relay) Close() {
	if r.cancel != nil {
		r.cancel()
	}
	r.rdb.Close()
}

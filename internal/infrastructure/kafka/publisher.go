// Package kafka publica los eventos de stock en un tópico de Kafka para que
// otros servicios (auditoría, compras, licitaciones) reaccionen a los cambios.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/jhoicas/stock-ledger-api/internal/application/stock"
)

var _ stock.EventPublisher = (*Publisher)(nil)

// ErrQueueFull la cola local está llena y el evento se descartó.
var ErrQueueFull = errors.New("cola de eventos kafka llena")

// ErrClosed el publicador ya se cerró.
var ErrClosed = errors.New("publicador kafka cerrado")

const (
	defaultQueueSize = 1024
	maxBatch         = 100
)

// messageWriter lo que el publicador usa de *kafka.Writer.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher escribe cada stock.Event como un mensaje JSON. La llave es
// tenant/entidad para que los eventos de una misma entidad queden en orden.
// Publish solo encola; una goroutine escribe en lotes y registra las fallas
// en warn, así un broker lento no retiene la respuesta HTTP.
type Publisher struct {
	writer  messageWriter
	timeout time.Duration
	log     zerolog.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan kafka.Message
	done   chan struct{}
}

// NewPublisher construye el publicador sobre los brokers y el tópico dados.
func NewPublisher(brokers []string, topic string, queueSize int, log zerolog.Logger) *Publisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    maxBatch,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Compression:  kafka.Snappy,
	}
	return newPublisher(writer, queueSize, log)
}

func newPublisher(w messageWriter, queueSize int, log zerolog.Logger) *Publisher {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	p := &Publisher{
		writer:  w,
		timeout: 5 * time.Second,
		log:     log,
		queue:   make(chan kafka.Message, queueSize),
		done:    make(chan struct{}),
	}
	go p.loop()
	return p
}

// Publish serializa y encola el evento. No espera al broker.
func (p *Publisher) Publish(_ context.Context, e stock.Event) error {
	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal stock event: %w", err)
	}

	message := kafka.Message{
		Key:   []byte(e.TenantID + "/" + e.EntityID),
		Value: value,
		Time:  e.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(e.Type)},
			{Key: "tenant-id", Value: []byte(e.TenantID)},
		},
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	select {
	case p.queue <- message:
		return nil
	default:
		return fmt.Errorf("%w: evento %s de %s", ErrQueueFull, e.Type, e.EntityID)
	}
}

// loop toma lo que haya en la cola (hasta maxBatch) y lo escribe de una vez.
func (p *Publisher) loop() {
	defer close(p.done)
	batch := make([]kafka.Message, 0, maxBatch)
	for msg := range p.queue {
		batch = append(batch[:0], msg)
	drain:
		for len(batch) < maxBatch {
			select {
			case m, ok := <-p.queue:
				if !ok {
					break drain
				}
				batch = append(batch, m)
			default:
				break drain
			}
		}
		p.write(batch)
	}
}

func (p *Publisher) write(batch []kafka.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	if err := p.writer.WriteMessages(ctx, batch...); err != nil {
		p.log.Warn().Err(err).Int("messages", len(batch)).Msg("write stock events to kafka")
	}
}

// Close deja de aceptar eventos, escribe lo encolado y cierra el writer.
func (p *Publisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	<-p.done
	return p.writer.Close()
}

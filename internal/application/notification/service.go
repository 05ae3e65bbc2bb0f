// Package notification envía alertas de stock bajo y cambios de pedido con límite de frecuencia.
package notification

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/jhoicas/Suministros-api/internal/application/inventory"
	"github.com/jhoicas/Suministros-api/internal/application/order"
	"github.com/jhoicas/Suministros-api/internal/domain/entity"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

var (
	_ inventory.AlertNotifier = (*Service)(nil)
	_ order.Notifier          = (*Service)(nil)
)

// Message mensaje ya formateado.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender entrega un mensaje (SMTP o log).
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Config límites del notificador.
type Config struct {
	Recipient   string        // destinatario de alertas y respaldo para pedidos sin correo
	MinInterval time.Duration // intervalo mínimo entre envíos
	HourlyCap   int           // máximo de envíos por destinatario en una hora
	QueueSize   int
	DedupeTTL   time.Duration // ventana en la que no se repite la alerta de un mismo producto
}

// Service cola de salida con un único worker. Se construye una vez por proceso y se cierra al apagar.
type Service struct {
	sender  Sender
	cfg     Config
	log     zerolog.Logger
	limiter *rate.Limiter
	alerted *expirable.LRU[string, struct{}]

	mu     sync.Mutex
	closed bool
	sent   map[string][]time.Time

	queue chan Message
	wg    sync.WaitGroup
	now   func() time.Time
}

// New construye el servicio; Start lanza el worker.
func New(sender Sender, cfg Config, log zerolog.Logger) *Service {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 100
	}
	if cfg.DedupeTTL <= 0 {
		cfg.DedupeTTL = time.Hour
	}
	limit := rate.Inf
	if cfg.MinInterval > 0 {
		limit = rate.Every(cfg.MinInterval)
	}
	return &Service{
		sender:  sender,
		cfg:     cfg,
		log:     log.With().Str("component", "notification").Logger(),
		limiter: rate.NewLimiter(limit, 1),
		alerted: expirable.NewLRU[string, struct{}](1024, nil, cfg.DedupeTTL),
		sent:    make(map[string][]time.Time),
		queue:   make(chan Message, cfg.QueueSize),
		now:     time.Now,
	}
}

// Start procesa la cola hasta Close o hasta que ctx se cancele.
func (s *Service) Start(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for msg := range s.queue {
			if err := s.limiter.Wait(ctx); err != nil {
				s.log.Warn().Err(err).Str("to", msg.To).Msg("notificación descartada")
				continue
			}
			if !s.allow(msg.To) {
				s.log.Warn().Str("to", msg.To).Int("hourly_cap", s.cfg.HourlyCap).Msg("tope horario alcanzado; notificación descartada")
				continue
			}
			if err := s.sender.Send(ctx, msg); err != nil {
				s.log.Error().Err(err).Str("to", msg.To).Str("subject", msg.Subject).Msg("error enviando notificación")
			}
		}
	}()
}

// Close deja de aceptar mensajes y espera a que la cola se vacíe.
func (s *Service) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.queue)
	s.mu.Unlock()
	s.wg.Wait()
}

// LowStock alerta de producto en o bajo el punto de reorden, una vez por ventana de deduplicación.
func (s *Service) LowStock(_ context.Context, p *entity.Product, b *entity.StockBalance) error {
	if s.cfg.Recipient == "" {
		return nil
	}
	if _, seen := s.alerted.Get(p.ID); seen {
		return nil
	}
	s.alerted.Add(p.ID, struct{}{})
	var body strings.Builder
	fmt.Fprintf(&body, "Producto: %s - %s\n", p.Code(), p.DisplayName())
	fmt.Fprintf(&body, "Disponible: %s %s\n", b.Available().StringFixed(2), p.UnitMeasure)
	fmt.Fprintf(&body, "Reservado: %s\n", b.Reserved.StringFixed(2))
	fmt.Fprintf(&body, "Punto de reorden: %s\n", p.ReorderPoint.StringFixed(2))
	fmt.Fprintf(&body, "Stock mínimo: %s\n", p.MinStock.StringFixed(2))
	s.enqueue(Message{
		To:      s.cfg.Recipient,
		Subject: fmt.Sprintf("Stock bajo: %s", p.Code()),
		Body:    body.String(),
	})
	return nil
}

// OrderChanged avisa al solicitante la creación o el cierre de su pedido.
func (s *Service) OrderChanged(_ context.Context, o *entity.Order) error {
	to := o.RequesterEmail
	if to == "" {
		to = s.cfg.Recipient
	}
	if to == "" {
		return nil
	}
	var body strings.Builder
	fmt.Fprintf(&body, "Pedido %s\nEstado: %s\nSector: %s\n\n", o.Number, o.Status, o.Sector)
	for _, it := range o.Items {
		fmt.Fprintf(&body, "- %s %s x %s\n", it.ProductCode, it.Description, it.Quantity.StringFixed(2))
	}
	fmt.Fprintf(&body, "\nTotal: %s\n", o.TotalValue.StringFixed(2))
	if !o.StockReservationOK && o.Status == entity.OrderRequested {
		body.WriteString("Atención: no todo el stock pudo reservarse.\n")
	}
	s.enqueue(Message{
		To:      to,
		Subject: fmt.Sprintf("Pedido %s: %s", o.Number, o.Status),
		Body:    body.String(),
	})
	return nil
}

func (s *Service) enqueue(msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		s.log.Warn().Str("subject", msg.Subject).Msg("notificador cerrado; mensaje descartado")
		return
	}
	select {
	case s.queue <- msg:
	default:
		s.log.Warn().Str("subject", msg.Subject).Msg("cola de notificaciones llena; mensaje descartado")
	}
}

// allow ventana deslizante de una hora por destinatario.
func (s *Service) allow(to string) bool {
	if s.cfg.HourlyCap <= 0 {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	cutoff := now.Add(-time.Hour)
	kept := s.sent[to][:0]
	for _, t := range s.sent[to] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	if len(kept) >= s.cfg.HourlyCap {
		s.sent[to] = kept
		return false
	}
	s.sent[to] = append(kept, now)
	return true
}

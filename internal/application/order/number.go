package order

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jhoicas/Suministros-api/internal/domain"
	"github.com/jhoicas/Suministros-api/internal/domain/entity"
)

// NumberLockKey clave que serializa la numeración de pedidos.
const NumberLockKey = "order-number"

const maxNumberAttempts = 5

// numberPattern acepta el formato normal PREFIXyyyyMMdd-NNN y el de respaldo PREFIXyyyyMMdd-NNN-XXXX.
func numberPattern(dayPrefix string) *regexp.Regexp {
	return regexp.MustCompile(`^` + regexp.QuoteMeta(dayPrefix) + `(\d+)(?:-[0-9A-F]+)?$`)
}

// nextSequence mayor secuencia del día + 1.
func nextSequence(numbers []string, dayPrefix string) int {
	re := numberPattern(dayPrefix)
	max := 0
	for _, n := range numbers {
		m := re.FindStringSubmatch(n)
		if m == nil {
			continue
		}
		if seq, err := strconv.Atoi(m[1]); err == nil && seq > max {
			max = seq
		}
	}
	return max + 1
}

func formatNumber(dayPrefix string, seq int) string {
	return fmt.Sprintf("%s%03d", dayPrefix, seq)
}

func fallbackSuffix() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:4])
}

// insertNumbered asigna el número y persiste el pedido bajo el bloqueo de numeración.
// Si el bloqueo no llega a tiempo usa el número siguiente con sufijo aleatorio, que no colisiona con el formato normal.
func (s *Service) insertNumbered(ctx context.Context, o *entity.Order) error {
	dayPrefix := s.cfg.NumberPrefix + o.RequestedAt.Format("20060102") + "-"

	release, err := s.locks.Acquire(ctx, NumberLockKey, s.cfg.LockTimeout)
	switch {
	case err == nil:
		defer release()
		numbers, err := s.orders.NumbersWithPrefix(ctx, dayPrefix)
		if err != nil {
			return err
		}
		o.Number = formatNumber(dayPrefix, nextSequence(numbers, dayPrefix))
		return s.orders.Create(ctx, o)
	case errors.Is(err, domain.ErrLockTimeout):
		s.log.Warn().Str("order_id", o.ID).Msg("bloqueo de numeración no disponible; se usa número con sufijo")
	default:
		return err
	}

	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		numbers, err := s.orders.NumbersWithPrefix(ctx, dayPrefix)
		if err != nil {
			return err
		}
		o.Number = formatNumber(dayPrefix, nextSequence(numbers, dayPrefix)) + "-" + fallbackSuffix()
		err = s.orders.Create(ctx, o)
		if !errors.Is(err, domain.ErrDuplicate) {
			return err
		}
	}
	return fmt.Errorf("%w: no se pudo asignar un número único", domain.ErrDuplicate)
}

package register

import (
	"context"

	"github.com/tu-usuario/pos-caja/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD con los
// repositorios de caja atados a esa tx. El cierre y los asientos necesitan
// leer la sesión bloqueada y escribir en el mismo alcance transaccional.
type TxRunner interface {
	RunRegister(ctx context.Context, fn func(
		sessionRepo repository.RegisterSessionRepository,
		ledgerRepo repository.RegisterLedgerRepository,
	) error) error
}

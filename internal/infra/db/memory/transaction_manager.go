package memory

import (
	"context"

	"github.com/jackc/pgx/v4"

	"media-production-workflow/internal/domain/ports/repository"
)

var _ repository.TransactionManager = (*TxManager)(nil)

// TxManager serializes transactional blocks behind one process-wide
// mutex and passes a nil tx handle; the repositories' non-transactional
// path is already atomic per call, so exclusion across the whole block
// is all a transaction adds here. There is no rollback: a failed block
// may leave earlier writes applied, which is acceptable for a
// single-writer snapshot store. txOpt is accepted for interface
// compatibility and ignored.
type TxManager struct {
	s *Store
}

func NewTxManager(s *Store) *TxManager { return &TxManager{s: s} }

func (m *TxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	m.s.txMu.Lock()
	defer m.s.txMu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx, repository.NoTX)
}

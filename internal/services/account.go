package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/lumora-ai/lumora-server/internal/store"
	"github.com/lumora-ai/lumora-server/internal/vectorindex"
)

// AccountService handles account-scoped cleanup: when a user is removed,
// their entries, sessions and every vector record they own are deleted.
type AccountService struct {
	st        store.Store
	idx       vectorindex.Index
	namespace string
	log       zerolog.Logger
}

func NewAccountService(st store.Store, idx vectorindex.Index, namespace string, log zerolog.Logger) *AccountService {
	if namespace == "" {
		namespace = "default"
	}
	return &AccountService{st: st, idx: idx, namespace: namespace, log: log.With().Str("component", "account-service").Logger()}
}

// DeleteUserData removes all records owned by userID. The vector bulk
// delete runs last so a record-store failure leaves no dangling index
// state to re-create.
func (s *AccountService) DeleteUserData(ctx context.Context, userID string) error {
	if err := s.st.Entries().DeleteByUser(ctx, userID); err != nil {
		return err
	}
	if err := s.st.Sessions().DeleteByUser(ctx, userID); err != nil {
		return err
	}
	if s.idx != nil {
		if err := s.idx.DeleteByUser(ctx, s.namespace, userID); err != nil {
			return err
		}
	}
	s.log.Info().Str("userId", userID).Msg("user data deleted")
	return nil
}

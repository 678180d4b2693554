package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/metaloot/registry/internal/storage/storagetest"
)

type StorageSuite struct {
	storagetest.StoreSuite
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.Store = New()
	s.Ctx = context.Background()
}

func (s *StorageSuite) TestCancelledContext() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Store.Update(ctx, nil)
	s.ErrorIs(err, context.Canceled)
}

// Package storagetest holds the behaviour every storage.Store backend must share.
package storagetest

import (
	"context"
	"errors"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/suite"

	"github.com/metaloot/registry/internal/model"
	"github.com/metaloot/registry/internal/storage"
)

// StoreSuite runs the arena contract against the store returned by NewStore.
// Backend test suites embed it and set NewStore in SetupTest.
type StoreSuite struct {
	suite.Suite
	Store storage.Store
	Ctx   context.Context
}

var errAbort = errors.New("abort")

func (s *StoreSuite) address(b byte) solana.PublicKey {
	var key solana.PublicKey
	key[0] = b
	key[31] = b
	return key
}

func (s *StoreSuite) account(b byte, lamports uint64) *model.Account {
	return &model.Account{
		Address:  s.address(b),
		Owner:    solana.SystemProgramID,
		Lamports: lamports,
		Data:     []byte{b, b},
	}
}

func (s *StoreSuite) create(acct *model.Account) {
	err := s.Store.Update(s.Ctx, func(tx storage.Tx) error {
		return tx.Create(acct)
	})
	s.Require().NoError(err)
}

func (s *StoreSuite) get(addr solana.PublicKey) (*model.Account, error) {
	var acct *model.Account
	err := s.Store.View(s.Ctx, func(tx storage.Tx) error {
		var err error
		acct, err = tx.Get(addr)
		return err
	})
	return acct, err
}

// Create / Get tests

func (s *StoreSuite) TestCreateAndGet() {
	s.create(s.account(1, 100))

	acct, err := s.get(s.address(1))
	s.Require().NoError(err)
	s.Equal(uint64(100), acct.Lamports)
	s.Equal(solana.SystemProgramID, acct.Owner)
	s.Equal([]byte{1, 1}, acct.Data)
}

func (s *StoreSuite) TestGetMissingAccount() {
	_, err := s.get(s.address(9))
	s.ErrorIs(err, model.ErrAccountNotFound)
}

func (s *StoreSuite) TestCreateOnOccupiedAddressFails() {
	s.create(s.account(1, 100))

	err := s.Store.Update(s.Ctx, func(tx storage.Tx) error {
		return tx.Create(s.account(1, 5))
	})
	s.ErrorIs(err, model.ErrAlreadyExists)

	acct, err := s.get(s.address(1))
	s.Require().NoError(err)
	s.Equal(uint64(100), acct.Lamports)
}

func (s *StoreSuite) TestCreateTwiceInOneUnitFails() {
	err := s.Store.Update(s.Ctx, func(tx storage.Tx) error {
		if err := tx.Create(s.account(1, 1)); err != nil {
			return err
		}
		return tx.Create(s.account(1, 2))
	})
	s.ErrorIs(err, model.ErrAlreadyExists)

	_, err = s.get(s.address(1))
	s.ErrorIs(err, model.ErrAccountNotFound)
}

// Put tests

func (s *StoreSuite) TestPutOverwritesExisting() {
	s.create(s.account(1, 100))

	err := s.Store.Update(s.Ctx, func(tx storage.Tx) error {
		acct, err := tx.Get(s.address(1))
		if err != nil {
			return err
		}
		acct.Lamports = 40
		return tx.Put(acct)
	})
	s.Require().NoError(err)

	acct, err := s.get(s.address(1))
	s.Require().NoError(err)
	s.Equal(uint64(40), acct.Lamports)
}

func (s *StoreSuite) TestPutMissingAccountFails() {
	err := s.Store.Update(s.Ctx, func(tx storage.Tx) error {
		return tx.Put(s.account(3, 1))
	})
	s.ErrorIs(err, model.ErrAccountNotFound)
}

// Atomicity tests

func (s *StoreSuite) TestFailedUnitAppliesNothing() {
	s.create(s.account(1, 100))

	err := s.Store.Update(s.Ctx, func(tx storage.Tx) error {
		acct, err := tx.Get(s.address(1))
		if err != nil {
			return err
		}
		acct.Lamports = 0
		if err := tx.Put(acct); err != nil {
			return err
		}
		if err := tx.Create(s.account(2, 100)); err != nil {
			return err
		}
		return errAbort
	})
	s.ErrorIs(err, errAbort)

	acct, err := s.get(s.address(1))
	s.Require().NoError(err)
	s.Equal(uint64(100), acct.Lamports)
	_, err = s.get(s.address(2))
	s.ErrorIs(err, model.ErrAccountNotFound)
}

func (s *StoreSuite) TestUnitSeesItsOwnWrites() {
	err := s.Store.Update(s.Ctx, func(tx storage.Tx) error {
		if err := tx.Create(s.account(1, 7)); err != nil {
			return err
		}
		exists, err := tx.Exists(s.address(1))
		if err != nil {
			return err
		}
		s.True(exists)
		acct, err := tx.Get(s.address(1))
		if err != nil {
			return err
		}
		s.Equal(uint64(7), acct.Lamports)
		return nil
	})
	s.Require().NoError(err)
}

func (s *StoreSuite) TestGetReturnsCopy() {
	s.create(s.account(1, 100))

	err := s.Store.Update(s.Ctx, func(tx storage.Tx) error {
		acct, err := tx.Get(s.address(1))
		if err != nil {
			return err
		}
		acct.Data[0] = 0xff
		acct.Lamports = 1
		return nil
	})
	s.Require().NoError(err)

	acct, err := s.get(s.address(1))
	s.Require().NoError(err)
	s.Equal([]byte{1, 1}, acct.Data)
	s.Equal(uint64(100), acct.Lamports)
}

func (s *StoreSuite) TestViewRejectsWrites() {
	err := s.Store.View(s.Ctx, func(tx storage.Tx) error {
		return tx.Create(s.account(1, 1))
	})
	s.ErrorIs(err, storage.ErrReadOnly)
}

// Replay protection tests

func (s *StoreSuite) TestMarkProcessedRejectsReplay() {
	s.Require().NoError(s.Store.MarkProcessed(s.Ctx, "tx-1"))
	s.Require().NoError(s.Store.MarkProcessed(s.Ctx, "tx-2"))

	err := s.Store.MarkProcessed(s.Ctx, "tx-1")
	s.ErrorIs(err, model.ErrDuplicateTransaction)
}

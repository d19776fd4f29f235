package redis

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/zn-har/Bingo/internal/model"
	"github.com/zn-har/Bingo/internal/storage"
	"github.com/zn-har/Bingo/internal/storage/storagetest"
)

type StorageSuite struct {
	storagetest.Suite
	mini *miniredis.Miniredis
}

func TestStorageSuite(t *testing.T) {
	s := new(StorageSuite)
	s.NewStorage = func() storage.Storage {
		s.mini = miniredis.RunT(s.T())
		client := redis.NewClient(&redis.Options{Addr: s.mini.Addr()})
		return NewWithClient(client, DefaultConfig())
	}
	suite.Run(t, s)
}

func (s *StorageSuite) TestPlayerKeys() {
	player := &model.Player{ID: "p1", Name: "Alice", Phone: "5551234567", CreatedAt: time.Now().UTC()}
	s.Require().NoError(s.Storage.CreatePlayer(s.Ctx, player))

	s.True(s.mini.Exists(playerKey("p1")))
	id, err := s.mini.Get(phoneIndexKey("5551234567"))
	s.Require().NoError(err)
	s.Equal("p1", id)
}

func (s *StorageSuite) TestDuplicateTaskLeavesTargetUnclaimed() {
	tasks := model.DefaultTasks()
	s.Require().NoError(s.Storage.SaveTasks(s.Ctx, tasks))

	first := &model.ScanRecord{ScannerID: "a", TargetID: "b", TaskID: tasks[0].ID, Timestamp: time.Now().UTC()}
	s.Require().NoError(s.Storage.CreateScan(s.Ctx, first, true))

	// Rejected on the task guard; target c must stay unclaimed.
	dup := &model.ScanRecord{ScannerID: "a", TargetID: "c", TaskID: tasks[0].ID, Timestamp: time.Now().UTC()}
	s.ErrorIs(s.Storage.CreateScan(s.Ctx, dup, true), model.ErrDuplicateTask)

	scanned, err := s.Storage.HasScannedTarget(s.Ctx, "a", "c")
	s.Require().NoError(err)
	s.False(scanned)
}

func (s *StorageSuite) TestLedgerBumpsVersion() {
	err := s.Storage.UpdateLedger(s.Ctx, func(tx storage.LedgerTx) error {
		return tx.AddWinner(s.Ctx, &model.Winner{PlayerID: "a", WinType: model.WinRow, WonAt: time.Now().UTC()})
	})
	s.Require().NoError(err)

	version, err := s.mini.Get(ledgerVersionKey())
	s.Require().NoError(err)
	s.Equal("1", version)
}

func (s *StorageSuite) TestLedgerWithoutWritesSkipsCommit() {
	err := s.Storage.UpdateLedger(s.Ctx, func(tx storage.LedgerTx) error {
		_, err := tx.GetGameState(s.Ctx)
		return err
	})
	s.Require().NoError(err)
	s.False(s.mini.Exists(ledgerVersionKey()))
}

var errConnectionLost = errors.New("connection lost")

// failingTxHook fails every MULTI/EXEC round trip while armed
type failingTxHook struct {
	armed *atomic.Bool
}

func (h failingTxHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (h failingTxHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return next
}

func (h failingTxHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		if h.armed.Load() {
			return errConnectionLost
		}
		return next(ctx, cmds)
	}
}

func (s *StorageSuite) storageWithFailingTx() (*Storage, *atomic.Bool) {
	armed := &atomic.Bool{}
	client := redis.NewClient(&redis.Options{Addr: s.mini.Addr()})
	client.AddHook(failingTxHook{armed: armed})
	s.T().Cleanup(func() { _ = client.Close() })
	return NewWithClient(client, DefaultConfig()), armed
}

func (s *StorageSuite) TestFailedScanWriteLeavesNoClaims() {
	tasks := model.DefaultTasks()
	s.Require().NoError(s.Storage.SaveTasks(s.Ctx, tasks))
	store, armed := s.storageWithFailingTx()

	armed.Store(true)
	scan := &model.ScanRecord{ScannerID: "a", TargetID: "b", TaskID: tasks[3].ID, Timestamp: time.Now().UTC()}
	s.ErrorIs(store.CreateScan(s.Ctx, scan, true), errConnectionLost)

	completed, err := store.HasCompletedTask(s.Ctx, "a", tasks[3].ID)
	s.Require().NoError(err)
	s.False(completed)
	scanned, err := store.HasScannedTarget(s.Ctx, "a", "b")
	s.Require().NoError(err)
	s.False(scanned)
	positions, err := store.CompletedPositions(s.Ctx, "a")
	s.Require().NoError(err)
	s.Empty(positions)
	scans, err := store.ListScansByScanner(s.Ctx, "a")
	s.Require().NoError(err)
	s.Empty(scans)

	// The same scan goes through once the connection recovers
	armed.Store(false)
	retry := &model.ScanRecord{ScannerID: "a", TargetID: "b", TaskID: tasks[3].ID, Timestamp: time.Now().UTC()}
	s.Require().NoError(store.CreateScan(s.Ctx, retry, true))
	positions, err = store.CompletedPositions(s.Ctx, "a")
	s.Require().NoError(err)
	s.Equal([]int{tasks[3].Position}, positions)
}

func (s *StorageSuite) TestFailedPlayerWriteLeavesNoPhoneIndex() {
	store, armed := s.storageWithFailingTx()

	armed.Store(true)
	player := &model.Player{ID: "p1", Name: "Alice", Phone: "5551234567", CreatedAt: time.Now().UTC()}
	s.ErrorIs(store.CreatePlayer(s.Ctx, player), errConnectionLost)
	s.False(s.mini.Exists(phoneIndexKey("5551234567")))
	s.False(s.mini.Exists(playerKey("p1")))

	armed.Store(false)
	s.Require().NoError(store.CreatePlayer(s.Ctx, player))
	found, err := store.GetPlayerByPhone(s.Ctx, "5551234567")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("p1"), found.ID)
}

func (s *StorageSuite) TestKeysFromIndexIDsMatchTypedKeys() {
	s.Equal(scanKey(42), scanKeyFromString("42"))
	s.Equal(winnerKey(7), winnerKeyFromString("7"))
}

package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/lunfardo314/fairwheel/commitment"
	"github.com/lunfardo314/fairwheel/util/testutil"
	"github.com/lunfardo314/fairwheel/wheel"
	"github.com/stretchr/testify/require"
)

func sampleAccount(i uint64) *wheel.Account {
	var secret commitment.Secret = testutil.DeterministicBytes32(i, "secret")
	return &wheel.Account{
		Initialized:   true,
		Authority:     testutil.DeterministicBytes32(i, "authority"),
		Prizes:        wheel.NewPrizeTable([]string{"Gold", "Silver"}, []uint8{30, 70}),
		TotalSpins:    i,
		LastSequence:  100 + i,
		LastBeacon:    testutil.DeterministicBytes32(i, "beacon"),
		Commitment:    commitment.Commit(secret),
		HasCommitment: true,
		Committer:     testutil.DeterministicBytes32(i, "committer"),
		Window:        wheel.RevealWindow{Min: 101 + i, Max: 250 + i},
	}
}

func testAccountStore(t *testing.T, s AccountStore) {
	t.Run("not found", func(t *testing.T) {
		_, err := s.Load(AccountIDFromName("absent"))
		require.True(t, errors.Is(err, ErrNotFound))

		acc, err := LoadOrNew(s, AccountIDFromName("absent"))
		require.NoError(t, err)
		require.False(t, acc.Initialized)
	})
	t.Run("save load", func(t *testing.T) {
		for i := uint64(1); i <= 5; i++ {
			require.NoError(t, s.Save(AccountIDFromName(string(rune('a'+i))), sampleAccount(i)))
		}
		for i := uint64(1); i <= 5; i++ {
			acc, err := s.Load(AccountIDFromName(string(rune('a' + i))))
			require.NoError(t, err)
			require.EqualValues(t, sampleAccount(i), acc)
		}
	})
	t.Run("overwrite", func(t *testing.T) {
		id := AccountIDFromName("overwrite")
		require.NoError(t, s.Save(id, sampleAccount(1)))
		require.NoError(t, s.Save(id, sampleAccount(2)))
		acc, err := s.Load(id)
		require.NoError(t, err)
		require.EqualValues(t, 2, acc.TotalSpins)
	})
	t.Run("for each", func(t *testing.T) {
		n := 0
		err := s.ForEach(func(id AccountID, acc *wheel.Account) bool {
			require.True(t, acc.Initialized)
			n++
			return true
		})
		require.NoError(t, err)
		require.EqualValues(t, 6, n)

		n = 0
		err = s.ForEach(func(_ AccountID, _ *wheel.Account) bool {
			n++
			return false
		})
		require.NoError(t, err)
		require.EqualValues(t, 1, n)
	})
	t.Run("delete", func(t *testing.T) {
		id := AccountIDFromName("overwrite")
		require.NoError(t, s.Delete(id))
		_, err := s.Load(id)
		require.True(t, errors.Is(err, ErrNotFound))
	})
}

func TestInMemory(t *testing.T) {
	s := NewInMemory()
	testAccountStore(t, s)
	require.NoError(t, s.Close())
}

func TestBadger(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "wheeldb")
	s, err := Open(TypeBadger, dir)
	require.NoError(t, err)
	testAccountStore(t, s)
	require.NoError(t, s.Close())

	t.Run("reopen", func(t *testing.T) {
		s, err := OpenBadger(dir)
		require.NoError(t, err)
		acc, err := s.Load(AccountIDFromName(string(rune('a' + 1))))
		require.NoError(t, err)
		require.EqualValues(t, sampleAccount(1), acc)
		require.NoError(t, s.Close())
	})
}

func TestBolt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wheel.db")
	s, err := Open(TypeBolt, path)
	require.NoError(t, err)
	testAccountStore(t, s)
	require.NoError(t, s.Close())

	t.Run("reopen", func(t *testing.T) {
		s, err := OpenBolt(path)
		require.NoError(t, err)
		acc, err := s.Load(AccountIDFromName(string(rune('a' + 3))))
		require.NoError(t, err)
		require.EqualValues(t, sampleAccount(3), acc)
		require.NoError(t, s.Close())
	})
}

func TestOpen(t *testing.T) {
	_, err := Open("mysql", "x")
	require.Error(t, err)
	_, err = Open(TypeBolt, "")
	require.Error(t, err)
	s, err := Open(TypeMemory, "")
	require.NoError(t, err)
	require.NoError(t, s.Close())
}

func TestParseAccountID(t *testing.T) {
	id := AccountIDFromName("main")
	require.EqualValues(t, id, ParseAccountID("main"))
	require.EqualValues(t, id, ParseAccountID(id.String()))
	require.NotEqualValues(t, id, ParseAccountID("main2"))
}

func TestCorrupted(t *testing.T) {
	s := NewInMemory()
	id := AccountIDFromName("corrupted")
	batch := s.kv.BatchedWriter()
	batch.Set(accountKey(id), []byte{wheel.EncodingVersion, 0xff})
	require.NoError(t, batch.Commit())
	_, err := s.Load(id)
	require.True(t, errors.Is(err, wheel.ErrCorruptedAccount))
}

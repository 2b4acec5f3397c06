package storage

import (
	"bytes"
	"errors"
	"fmt"
	"testing"
)

// testDB runs the shared suite against a DB implementation.
func testDB(t *testing.T, db DB) {
	t.Helper()

	t.Run("PutGet", func(t *testing.T) {
		if err := db.Put([]byte("acct/a"), []byte("one")); err != nil {
			t.Fatalf("Put() error: %v", err)
		}
		val, err := db.Get([]byte("acct/a"))
		if err != nil {
			t.Fatalf("Get() error: %v", err)
		}
		if !bytes.Equal(val, []byte("one")) {
			t.Errorf("Get() = %q, want %q", val, "one")
		}
	})

	t.Run("GetMissing", func(t *testing.T) {
		if _, err := db.Get([]byte("acct/missing")); !errors.Is(err, ErrNotFound) {
			t.Errorf("Get() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("HasAndDelete", func(t *testing.T) {
		db.Put([]byte("acct/b"), []byte("two"))
		if ok, _ := db.Has([]byte("acct/b")); !ok {
			t.Fatal("Has() = false for existing key")
		}
		if err := db.Delete([]byte("acct/b")); err != nil {
			t.Fatalf("Delete() error: %v", err)
		}
		if ok, _ := db.Has([]byte("acct/b")); ok {
			t.Error("Has() = true after Delete")
		}
		if err := db.Delete([]byte("acct/never")); err != nil {
			t.Errorf("Delete() of missing key error: %v", err)
		}
	})

	t.Run("ValueIsCopied", func(t *testing.T) {
		v := []byte{1, 2, 3}
		db.Put([]byte("acct/c"), v)
		v[0] = 9
		got, _ := db.Get([]byte("acct/c"))
		if got[0] != 1 {
			t.Error("stored value aliases caller buffer")
		}
	})

	t.Run("ForEachOrdered", func(t *testing.T) {
		for _, k := range []string{"ord/3", "ord/1", "ord/2"} {
			db.Put([]byte(k), []byte(k))
		}
		db.Put([]byte("other/1"), []byte("x"))

		var keys []string
		err := db.ForEach([]byte("ord/"), func(key, value []byte) error {
			keys = append(keys, string(key))
			return nil
		})
		if err != nil {
			t.Fatalf("ForEach() error: %v", err)
		}
		if fmt.Sprint(keys) != "[ord/1 ord/2 ord/3]" {
			t.Errorf("ForEach() keys = %v", keys)
		}
	})

	t.Run("ForEachStops", func(t *testing.T) {
		stop := errors.New("stop")
		n := 0
		err := db.ForEach([]byte("ord/"), func(key, value []byte) error {
			n++
			return stop
		})
		if !errors.Is(err, stop) || n != 1 {
			t.Errorf("ForEach() = %v after %d calls, want stop after 1", err, n)
		}
	})

	t.Run("Batch", func(t *testing.T) {
		batcher, ok := db.(Batcher)
		if !ok {
			t.Skip("store has no batches")
		}
		db.Put([]byte("batch/old"), []byte("x"))

		b := batcher.NewBatch()
		b.Put([]byte("batch/new1"), []byte("1"))
		b.Put([]byte("batch/new2"), []byte("2"))
		b.Delete([]byte("batch/old"))

		if ok, _ := db.Has([]byte("batch/new1")); ok {
			t.Fatal("batch write visible before Commit")
		}
		if err := b.Commit(); err != nil {
			t.Fatalf("Commit() error: %v", err)
		}
		for _, k := range []string{"batch/new1", "batch/new2"} {
			if ok, _ := db.Has([]byte(k)); !ok {
				t.Errorf("%s missing after Commit", k)
			}
		}
		if ok, _ := db.Has([]byte("batch/old")); ok {
			t.Error("batch/old still present after Commit")
		}
	})
}

func TestMemoryDB(t *testing.T) {
	db := NewMemory()
	defer db.Close()
	testDB(t, db)
}

func TestBadgerDB(t *testing.T) {
	db, err := NewBadger(t.TempDir())
	if err != nil {
		t.Fatalf("NewBadger() error: %v", err)
	}
	defer db.Close()
	testDB(t, db)
}

func TestBadgerDB_InMemory(t *testing.T) {
	db, err := NewBadgerInMemory()
	if err != nil {
		t.Fatalf("NewBadgerInMemory() error: %v", err)
	}
	defer db.Close()
	testDB(t, db)
}

func TestBadgerDB_Persistence(t *testing.T) {
	dir := t.TempDir()

	db1, err := NewBadger(dir)
	if err != nil {
		t.Fatalf("NewBadger() error: %v", err)
	}
	b := db1.NewBatch()
	b.Put([]byte("acct/persist"), []byte("data"))
	if err := b.Commit(); err != nil {
		t.Fatalf("Commit() error: %v", err)
	}
	db1.Close()

	db2, err := NewBadger(dir)
	if err != nil {
		t.Fatalf("NewBadger() reopen error: %v", err)
	}
	defer db2.Close()

	val, err := db2.Get([]byte("acct/persist"))
	if err != nil {
		t.Fatalf("Get() after reopen error: %v", err)
	}
	if !bytes.Equal(val, []byte("data")) {
		t.Errorf("persisted value = %q, want %q", val, "data")
	}
}

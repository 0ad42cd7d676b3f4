package store

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/starford/keepnote/internal/apperr"
)

func testSQLite(t *testing.T) *SQLite {
	t.Helper()
	dbFile, err := os.CreateTemp("", "keepnote-store-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	st, err := OpenSQLite(dbFile.Name())
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestOpenSQLiteDSNWithParams(t *testing.T) {
	dbFile, err := os.CreateTemp("", "keepnote-store-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	// A dsn that already carries options must still get the pragmas appended.
	st, err := OpenSQLite(dbFile.Name() + "?cache=shared")
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	ctx := context.Background()
	if err := st.Insert(ctx, BucketUsers, "alice", []byte("a")); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if _, err := st.Get(ctx, BucketUsers, "alice"); err != nil {
		t.Fatalf("Get: %v", err)
	}
}

func TestInsertAndGet(t *testing.T) {
	st := testSQLite(t)
	ctx := context.Background()

	if err := st.Insert(ctx, BucketUsers, "alice", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	doc, err := st.Get(ctx, BucketUsers, "alice")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(doc.Data) != `{"a":1}` {
		t.Errorf("data = %s", doc.Data)
	}
	if doc.Version != 1 {
		t.Errorf("version = %d, want 1", doc.Version)
	}
}

func TestGetMissing(t *testing.T) {
	st := testSQLite(t)
	_, err := st.Get(context.Background(), BucketUsers, "nobody")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestInsertDuplicate(t *testing.T) {
	st := testSQLite(t)
	ctx := context.Background()

	if err := st.Insert(ctx, BucketUsers, "alice", []byte("a")); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	err := st.Insert(ctx, BucketUsers, "alice", []byte("b"))
	if !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("err = %v, want ErrAlreadyExists", err)
	}
}

func TestBucketsAreIndependent(t *testing.T) {
	st := testSQLite(t)
	ctx := context.Background()

	if err := st.Insert(ctx, BucketUsers, "alice", []byte("u")); err != nil {
		t.Fatalf("Insert users: %v", err)
	}
	if err := st.Insert(ctx, BucketNotebooks, "alice", []byte("n")); err != nil {
		t.Fatalf("same key in another bucket should not conflict: %v", err)
	}
}

func TestReplaceBumpsVersion(t *testing.T) {
	st := testSQLite(t)
	ctx := context.Background()

	if err := st.Insert(ctx, BucketNotebooks, "u1", []byte("v1")); err != nil {
		t.Fatal(err)
	}
	if err := st.Replace(ctx, BucketNotebooks, "u1", []byte("v2"), 1); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	doc, err := st.Get(ctx, BucketNotebooks, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if string(doc.Data) != "v2" {
		t.Errorf("data = %s, want v2", doc.Data)
	}
	if doc.Version != 2 {
		t.Errorf("version = %d, want 2", doc.Version)
	}
}

func TestReplaceStaleVersion(t *testing.T) {
	st := testSQLite(t)
	ctx := context.Background()

	if err := st.Insert(ctx, BucketNotebooks, "u1", []byte("v1")); err != nil {
		t.Fatal(err)
	}
	if err := st.Replace(ctx, BucketNotebooks, "u1", []byte("v2"), 1); err != nil {
		t.Fatal(err)
	}

	// A second writer still holding version 1 must lose.
	err := st.Replace(ctx, BucketNotebooks, "u1", []byte("v2b"), 1)
	if !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("err = %v, want ErrConflict", err)
	}
	doc, _ := st.Get(ctx, BucketNotebooks, "u1")
	if string(doc.Data) != "v2" {
		t.Errorf("stale write must not land, data = %s", doc.Data)
	}
}

func TestReplaceMissing(t *testing.T) {
	st := testSQLite(t)
	err := st.Replace(context.Background(), BucketNotebooks, "ghost", []byte("x"), 1)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	st := testSQLite(t)
	ctx := context.Background()

	if err := st.Insert(ctx, BucketCategories, "c1", []byte("x")); err != nil {
		t.Fatal(err)
	}
	if err := st.Delete(ctx, BucketCategories, "c1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := st.Get(ctx, BucketCategories, "c1"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("after delete, err = %v, want ErrNotFound", err)
	}
	if err := st.Delete(ctx, BucketCategories, "c1"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second delete, err = %v, want ErrNotFound", err)
	}
}

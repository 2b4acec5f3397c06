package storage

// Table is one keyspace of a shared DB. Keys are stored under the table's
// prefix and reported without it.
type Table struct {
	db     DB
	prefix []byte
}

// NewTable returns the table of db stored under prefix.
func NewTable(db DB, prefix []byte) *Table {
	return &Table{db: db, prefix: append([]byte(nil), prefix...)}
}

func (t *Table) key(key []byte) []byte {
	out := make([]byte, 0, len(t.prefix)+len(key))
	out = append(out, t.prefix...)
	return append(out, key...)
}

// Get returns the value stored at key or ErrNotFound.
func (t *Table) Get(key []byte) ([]byte, error) {
	return t.db.Get(t.key(key))
}

// Put stores value at key outside of any batch.
func (t *Table) Put(key, value []byte) error {
	return t.db.Put(t.key(key), value)
}

// Delete removes key outside of any batch.
func (t *Table) Delete(key []byte) error {
	return t.db.Delete(t.key(key))
}

// Has reports whether key is stored.
func (t *Table) Has(key []byte) (bool, error) {
	return t.db.Has(t.key(key))
}

// ForEach visits the table's keys starting with prefix in key order.
func (t *Table) ForEach(prefix []byte, fn func(key, value []byte) error) error {
	n := len(t.prefix)
	return t.db.ForEach(t.key(prefix), func(key, value []byte) error {
		return fn(key[n:], value)
	})
}

// In returns a view of batch that writes into this table. Views of several
// tables over one batch commit together.
func (t *Table) In(batch Batch) Batch {
	return tableBatch{Batch: batch, table: t}
}

type tableBatch struct {
	Batch
	table *Table
}

func (b tableBatch) Put(key, value []byte) error {
	return b.Batch.Put(b.table.key(key), value)
}

func (b tableBatch) Delete(key []byte) error {
	return b.Batch.Delete(b.table.key(key))
}

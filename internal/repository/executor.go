// internal/repository/executor.go
package repository

// Executor defines the store operations repositories need.
// Both *memdb.DB and *memdb.Tx implement these methods, so a repository
// can run against the live store or inside a staged transaction.
type Executor interface {
	Get(bucket, key string) (any, bool)
	Put(bucket, key string, value any)
	List(bucket string) []any
	Len(bucket string) int
}

// Bucket names shared by the memory repositories.
const (
	BucketUsers        = "users"
	BucketAccounts     = "accounts"
	BucketTransactions = "transactions"
)
